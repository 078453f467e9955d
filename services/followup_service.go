// services/followup_service.go
package services

import (
	"fmt"
	"log"
	"os"
	"time"

	"bidcraft-backend/models"

	"github.com/robfig/cron/v3"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/gorm"
)

// followUpAfterDays is how long a sent proposal sits without a reply before
// the contractor gets nudged.
const followUpAfterDays = 7

type FollowUpService struct {
	db     *gorm.DB
	client *twilio.RestClient
}

func NewFollowUpService(db *gorm.DB) *FollowUpService {
	// Initialize Twilio client
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	return &FollowUpService{
		db: db,
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
	}
}

func (s *FollowUpService) StartScheduler() {
	c := cron.New()

	// Run every day at 9 AM
	c.AddFunc("0 9 * * *", func() {
		s.SendDailyFollowUps()
	})

	c.Start()
	log.Println("Follow-up scheduler started")
}

func (s *FollowUpService) SendDailyFollowUps() {
	log.Println("Starting daily follow-up processing...")

	var contractors []models.User
	if err := s.db.Find(&contractors, "is_active = ?", true).Error; err != nil {
		log.Printf("Failed to fetch contractors: %v", err)
		return
	}

	for _, contractor := range contractors {
		s.ProcessContractorFollowUps(&contractor)
	}

	log.Println("Daily follow-up processing completed")
}

func (s *FollowUpService) ProcessContractorFollowUps(contractor *models.User) {
	proposals, err := s.staleProposals(contractor.ID.String())
	if err != nil {
		log.Printf("Contractor %s: Failed to get stale proposals: %v", contractor.ID, err)
		return
	}

	for i := range proposals {
		s.sendFollowUp(contractor, &proposals[i])
	}
}

// staleProposals returns sent proposals older than the follow-up window that
// have not been followed up yet.
func (s *FollowUpService) staleProposals(contractorID string) ([]models.Proposal, error) {
	cutoff := time.Now().AddDate(0, 0, -followUpAfterDays)

	var proposals []models.Proposal
	err := s.db.
		Where("contractor_id = ? AND status = ? AND sent_at <= ?", contractorID, models.StatusSent, cutoff).
		Where("id NOT IN (?)", s.db.Model(&models.FollowUpLog{}).
			Select("proposal_id").
			Where("contractor_id = ? AND status = ?", contractorID, "sent")).
		Find(&proposals).Error
	return proposals, err
}

func (s *FollowUpService) sendFollowUp(contractor *models.User, proposal *models.Proposal) {
	message := fmt.Sprintf(
		"BidCraft: proposal %s for %s was sent to %s %d+ days ago with no response. Time to follow up?",
		proposal.ProposalNumber, proposal.ProjectName, proposal.ClientName, followUpAfterDays)

	logEntry := models.FollowUpLog{
		ContractorID: contractor.ID,
		ProposalID:   proposal.ID,
		Message:      message,
		Channel:      "sms",
		SentAt:       time.Now(),
	}

	if !contractor.SMSNotifications || contractor.Phone == "" {
		logEntry.Status = "failed"
		logEntry.ErrorMessage = "SMS notifications disabled or no phone on file"
	} else if err := s.sendSMS(contractor.Phone, message); err != nil {
		log.Printf("Contractor %s: Failed to send follow-up for %s: %v", contractor.ID, proposal.ID, err)
		logEntry.Status = "failed"
		logEntry.ErrorMessage = err.Error()
	} else {
		logEntry.Status = "sent"
	}

	if err := s.db.Create(&logEntry).Error; err != nil {
		log.Printf("Contractor %s: Failed to log follow-up for %s: %v", contractor.ID, proposal.ID, err)
	}
}

func (s *FollowUpService) sendSMS(to, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(os.Getenv("TWILIO_FROM_NUMBER"))
	params.SetBody(body)

	_, err := s.client.Api.CreateMessage(params)
	return err
}
