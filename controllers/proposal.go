// controllers/proposal.go
package controllers

import (
	"errors"
	"net/http"
	"time"

	"bidcraft-backend/config"
	"bidcraft-backend/models"
	"bidcraft-backend/services"
	"bidcraft-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateProposalInput defines the expected JSON structure for creating a proposal
type CreateProposalInput struct {
	ProjectType        models.ProjectType `json:"projectType" binding:"required,oneof=storefront_installation curtain_wall glass_doors glass_railings showers glass_canopies custom_installation"`
	ClientName         string             `json:"clientName" binding:"required"`
	ClientContactName  string             `json:"clientContactName"`
	ClientEmail        string             `json:"clientEmail"`
	ClientPhone        string             `json:"clientPhone"`
	ClientAddress      string             `json:"clientAddress"`
	ProjectName        string             `json:"projectName" binding:"required"`
	ProjectAddress     string             `json:"projectAddress"`
	ProjectDescription string             `json:"projectDescription"`
	TaxRate            float64            `json:"taxRate" binding:"min=0,max=100"`
}

// UpdateProposalInput defines the expected JSON structure for updating a proposal
type UpdateProposalInput struct {
	ProjectType        *models.ProjectType `json:"projectType" binding:"omitempty,oneof=storefront_installation curtain_wall glass_doors glass_railings showers glass_canopies custom_installation"`
	ClientName         *string             `json:"clientName"`
	ClientContactName  *string             `json:"clientContactName"`
	ClientEmail        *string             `json:"clientEmail"`
	ClientPhone        *string             `json:"clientPhone"`
	ClientAddress      *string             `json:"clientAddress"`
	ProjectName        *string             `json:"projectName"`
	ProjectAddress     *string             `json:"projectAddress"`
	ProjectDescription *string             `json:"projectDescription"`
	TaxRate            *float64            `json:"taxRate" binding:"omitempty,min=0,max=100"`
	InternalNotes      *string             `json:"internalNotes"`
}

// TransitionInput defines the JSON body for a status transition request
type TransitionInput struct {
	To    models.ProposalStatus `json:"to" binding:"required"`
	Notes string                `json:"notes"`
}

// ReviewInput defines the JSON body for marking a proposal reviewed
type ReviewInput struct {
	Notes string `json:"notes"`
}

// recalcTotals recomputes the proposal's derived money fields from its line
// items and writes them back on the struct. The caller persists.
func recalcTotals(tx *gorm.DB, proposal *models.Proposal) error {
	var items []models.LineItem
	if err := tx.Where("proposal_id = ?", proposal.ID).
		Order("order_index asc, created_at asc").
		Find(&items).Error; err != nil {
		return err
	}

	calc := services.CalculatePricing(items, proposal.TaxRate)
	proposal.Subtotal = calc.Subtotal
	proposal.TaxAmount = calc.TaxAmount
	proposal.TotalAmount = calc.Total
	return nil
}

// CreateProposal creates a new proposal in draft with zero monetary fields
func CreateProposal(c *gin.Context) {
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

	var input CreateProposalInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	proposal := models.Proposal{
		ContractorID:       contractorUUID,
		ProjectType:        input.ProjectType,
		Status:             models.StatusDraft,
		ClientName:         input.ClientName,
		ClientContactName:  input.ClientContactName,
		ClientEmail:        input.ClientEmail,
		ClientPhone:        input.ClientPhone,
		ClientAddress:      input.ClientAddress,
		ProjectName:        input.ProjectName,
		ProjectAddress:     input.ProjectAddress,
		ProjectDescription: input.ProjectDescription,
		TaxRate:            input.TaxRate,
	}

	proposal.ProposalNumber = "PRO-" + time.Now().Format("20060102") + "-" + utils.GenerateRandomString(6)

	if err := config.DB.Create(&proposal).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create proposal")
		return
	}

	c.JSON(http.StatusCreated, proposal)
}

// GetProposals retrieves all proposals for the contractor, optionally filtered
// by status and project type
func GetProposals(c *gin.Context) {
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

	query := config.DB.Where("contractor_id = ?", contractorUUID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if projectType := c.Query("projectType"); projectType != "" {
		query = query.Where("project_type = ?", projectType)
	}

	var proposals []models.Proposal
	if err := query.Order("updated_at desc").Find(&proposals).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve proposals")
		return
	}

	c.JSON(http.StatusOK, proposals)
}

// GetProposal retrieves a specific proposal with its line items
func GetProposal(c *gin.Context) {
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

	proposalUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid proposal ID format")
		return
	}

	var proposal models.Proposal
	if err := config.DB.Preload("LineItems", func(db *gorm.DB) *gorm.DB {
		return db.Order("line_items.order_index asc, line_items.created_at asc")
	}).Where("contractor_id = ? AND id = ?", contractorUUID, proposalUUID).
		First(&proposal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Proposal not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, proposal)
}

// UpdateProposal updates proposal fields and recomputes totals when the tax
// rate changes. Sent proposals are immutable.
func UpdateProposal(c *gin.Context) {
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

	proposalUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid proposal ID format")
		return
	}

	var input UpdateProposalInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var proposal models.Proposal
	if err := tx.Where("contractor_id = ? AND id = ?", contractorUUID, proposalUUID).
		First(&proposal).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Proposal not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if proposal.Status == models.StatusSent {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusConflict, "Sent proposals cannot be modified")
		return
	}

	if input.ProjectType != nil {
		proposal.ProjectType = *input.ProjectType
	}
	if input.ClientName != nil {
		proposal.ClientName = *input.ClientName
	}
	if input.ClientContactName != nil {
		proposal.ClientContactName = *input.ClientContactName
	}
	if input.ClientEmail != nil {
		proposal.ClientEmail = *input.ClientEmail
	}
	if input.ClientPhone != nil {
		proposal.ClientPhone = *input.ClientPhone
	}
	if input.ClientAddress != nil {
		proposal.ClientAddress = *input.ClientAddress
	}
	if input.ProjectName != nil {
		proposal.ProjectName = *input.ProjectName
	}
	if input.ProjectAddress != nil {
		proposal.ProjectAddress = *input.ProjectAddress
	}
	if input.ProjectDescription != nil {
		proposal.ProjectDescription = *input.ProjectDescription
	}
	if input.InternalNotes != nil {
		proposal.InternalNotes = *input.InternalNotes
	}

	if input.TaxRate != nil {
		proposal.TaxRate = *input.TaxRate
		if err := recalcTotals(tx, &proposal); err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to recalculate totals")
			return
		}
	}

	if err := tx.Save(&proposal).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update proposal")
		return
	}

	tx.Commit()

	c.JSON(http.StatusOK, proposal)
}

// DeleteProposal deletes a proposal and all its line items
func DeleteProposal(c *gin.Context) {
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

	proposalUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid proposal ID format")
		return
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var proposal models.Proposal
	if err := tx.Where("contractor_id = ? AND id = ?", contractorUUID, proposalUUID).
		First(&proposal).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Proposal not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	// Proposal owns its line items: delete them in the same transaction
	if err := tx.Where("proposal_id = ?", proposal.ID).Delete(&models.LineItem{}).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete line items")
		return
	}

	if err := tx.Delete(&proposal).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete proposal")
		return
	}

	tx.Commit()

	c.JSON(http.StatusOK, gin.H{"message": "Proposal deleted successfully"})
}

// ReviewProposal marks a proposal in review as reviewed, recording notes and
// the review timestamp required by the ready_to_send transition
func ReviewProposal(c *gin.Context) {
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

	proposalUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid proposal ID format")
		return
	}

	var input ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var proposal models.Proposal
	if err := config.DB.Where("contractor_id = ? AND id = ?", contractorUUID, proposalUUID).
		First(&proposal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Proposal not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if proposal.Status != models.StatusReview {
		utils.RespondWithError(c, http.StatusConflict, "Only proposals under review can be marked reviewed")
		return
	}

	now := time.Now()
	proposal.ReviewedAt = &now
	proposal.ReviewNotes = input.Notes

	if err := config.DB.Save(&proposal).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update proposal")
		return
	}

	c.JSON(http.StatusOK, proposal)
}

// TransitionProposal validates and applies a status transition. Totals are
// recomputed from the line items before validation so the workflow engine
// never sees stale amounts.
func TransitionProposal(c *gin.Context) {
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

	proposalUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid proposal ID format")
		return
	}

	var input TransitionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var proposal models.Proposal
	if err := tx.Where("contractor_id = ? AND id = ?", contractorUUID, proposalUUID).
		First(&proposal).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Proposal not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	// Refresh derived totals before validating so total_amount gates run
	// against the authoritative line items
	if err := recalcTotals(tx, &proposal); err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to recalculate totals")
		return
	}

	result := services.ValidateTransition(proposal.Status, input.To, &proposal)
	if !result.IsValid {
		tx.Rollback()
		c.JSON(http.StatusUnprocessableEntity, result)
		return
	}

	now := time.Now()
	proposal.Status = input.To
	if input.To == models.StatusSent {
		proposal.SentAt = &now
	}
	if input.Notes != "" {
		proposal.InternalNotes = input.Notes
	}

	if err := tx.Save(&proposal).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update proposal")
		return
	}

	tx.Commit()

	c.JSON(http.StatusOK, gin.H{
		"proposal": proposal,
		"warnings": result.Warnings,
	})
}

// GetProposalWorkflow reports the workflow position of a proposal: next
// states with their requirements, progress, and reconstructed history
func GetProposalWorkflow(c *gin.Context) {
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

	proposalUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid proposal ID format")
		return
	}

	var proposal models.Proposal
	if err := config.DB.Where("contractor_id = ? AND id = ?", contractorUUID, proposalUUID).
		First(&proposal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Proposal not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	nextStates := services.NextPossibleStates(&proposal)
	requirements := make(map[models.ProposalStatus]services.TransitionRequirements, len(nextStates))
	for _, next := range nextStates {
		requirements[next] = services.GetTransitionRequirements(proposal.Status, next)
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       proposal.Status,
		"nextStates":   nextStates,
		"requirements": requirements,
		"progress":     services.ProgressPercentage(&proposal),
		"isComplete":   services.IsComplete(&proposal),
		"history":      services.WorkflowHistory(&proposal),
	})
}

// GetProposalPricing returns the full pricing snapshot for a proposal without
// persisting anything
func GetProposalPricing(c *gin.Context) {
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

	proposalUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid proposal ID format")
		return
	}

	var proposal models.Proposal
	if err := config.DB.Where("contractor_id = ? AND id = ?", contractorUUID, proposalUUID).
		First(&proposal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Proposal not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	var items []models.LineItem
	if err := config.DB.Where("proposal_id = ?", proposal.ID).
		Order("order_index asc, created_at asc").
		Find(&items).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve line items")
		return
	}

	c.JSON(http.StatusOK, services.CalculatePricing(items, proposal.TaxRate))
}
