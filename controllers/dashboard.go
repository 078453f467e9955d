package controllers

import (
	"net/http"
	"time"

	"bidcraft-backend/config"
	"bidcraft-backend/models"
	"bidcraft-backend/services"
	"bidcraft-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DashboardOverview struct {
	TotalProposals  int64            `json:"totalProposals"`
	StatusFunnel    map[string]int64 `json:"statusFunnel"`
	PipelineValue   float64          `json:"pipelineValue"`
	SentThisMonth   float64          `json:"sentThisMonth"`
	RecentProposals []RecentProposal `json:"recentProposals"`
}

type RecentProposal struct {
	ID          uuid.UUID             `json:"id"`
	ProjectName string                `json:"projectName"`
	ClientName  string                `json:"clientName"`
	Status      models.ProposalStatus `json:"status"`
	TotalAmount float64               `json:"totalAmount"`
	Progress    float64               `json:"progress"`
	UpdatedAt   string                `json:"updatedAt"` // e.g. "Today", "3 days ago"
}

func GetDashboardOverview(c *gin.Context) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}
	contractorUUID, err := uuid.Parse(userID.(string))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid user ID format")
		return
	}

	// Total proposals
	var totalProposals int64
	config.DB.Model(&models.Proposal{}).
		Where("contractor_id = ?", contractorUUID).Count(&totalProposals)

	// Status funnel
	funnel := map[string]int64{}
	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	config.DB.Model(&models.Proposal{}).
		Select("status, COUNT(*) as count").
		Where("contractor_id = ?", contractorUUID).
		Group("status").Scan(&counts)
	for _, sc := range counts {
		funnel[sc.Status] = sc.Count
	}

	// Pipeline value: everything not yet sent
	var pipelineValue float64
	config.DB.Model(&models.Proposal{}).
		Where("contractor_id = ? AND status <> ?", contractorUUID, models.StatusSent).
		Select("COALESCE(SUM(total_amount), 0)").Scan(&pipelineValue)

	// Value sent this month
	now := time.Now()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	var sentThisMonth float64
	config.DB.Model(&models.Proposal{}).
		Where("contractor_id = ? AND status = ? AND sent_at >= ?", contractorUUID, models.StatusSent, firstOfMonth).
		Select("COALESCE(SUM(total_amount), 0)").Scan(&sentThisMonth)

	// Recent proposals (last 5 touched)
	var recent []models.Proposal
	config.DB.Where("contractor_id = ?", contractorUUID).
		Order("updated_at desc").Limit(5).Find(&recent)

	recentProposals := make([]RecentProposal, 0, len(recent))
	for i := range recent {
		p := &recent[i]
		recentProposals = append(recentProposals, RecentProposal{
			ID:          p.ID,
			ProjectName: p.ProjectName,
			ClientName:  p.ClientName,
			Status:      p.Status,
			TotalAmount: p.TotalAmount,
			Progress:    services.ProgressPercentage(p),
			UpdatedAt:   utils.RelativeDayLabel(p.UpdatedAt, now),
		})
	}

	c.JSON(http.StatusOK, DashboardOverview{
		TotalProposals:  totalProposals,
		StatusFunnel:    funnel,
		PipelineValue:   pipelineValue,
		SentThisMonth:   sentThisMonth,
		RecentProposals: recentProposals,
	})
}
