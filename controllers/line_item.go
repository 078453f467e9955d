// controllers/line_item.go
package controllers

import (
	"errors"
	"net/http"

	"bidcraft-backend/config"
	"bidcraft-backend/models"
	"bidcraft-backend/services"
	"bidcraft-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateLineItemInput defines the expected JSON structure for adding a line item
type CreateLineItemInput struct {
	Category    models.LineItemCategory `json:"category" binding:"required,oneof=material labor equipment overhead profit custom"`
	Description string                  `json:"description" binding:"required"`
	Quantity    float64                 `json:"quantity" binding:"required,gt=0"`
	Unit        string                  `json:"unit"`
	UnitPrice   float64                 `json:"unitPrice" binding:"required,gt=0"`
	// Total is optional; when set together with isManualOverride the stored
	// total keeps the user's value instead of quantity * unitPrice
	Total            *float64   `json:"total"`
	IsManualOverride bool       `json:"isManualOverride"`
	MaterialID       *uuid.UUID `json:"materialId"`
	OrderIndex       *int       `json:"orderIndex"`
}

// UpdateLineItemInput defines the expected JSON structure for updating a line item
type UpdateLineItemInput struct {
	Category         *models.LineItemCategory `json:"category" binding:"omitempty,oneof=material labor equipment overhead profit custom"`
	Description      *string                  `json:"description"`
	Quantity         *float64                 `json:"quantity" binding:"omitempty,gt=0"`
	Unit             *string                  `json:"unit"`
	UnitPrice        *float64                 `json:"unitPrice" binding:"omitempty,gt=0"`
	Total            *float64                 `json:"total"`
	IsManualOverride *bool                    `json:"isManualOverride"`
	OrderIndex       *int                     `json:"orderIndex"`
}

// lockProposalForItems loads the proposal and rejects edits on sent proposals.
func lockProposalForItems(tx *gorm.DB, c *gin.Context) (*models.Proposal, bool) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return nil, false
	}

	contractorUUID, err := uuid.Parse(userID.(string))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid user ID format")
		return nil, false
	}

	proposalUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid proposal ID format")
		return nil, false
	}

	var proposal models.Proposal
	if err := tx.Where("contractor_id = ? AND id = ?", contractorUUID, proposalUUID).
		First(&proposal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Proposal not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}

	if proposal.Status == models.StatusSent {
		utils.RespondWithError(c, http.StatusConflict, "Sent proposals cannot be modified")
		return nil, false
	}

	return &proposal, true
}

// CreateLineItem adds a line item to a proposal and recomputes its totals
func CreateLineItem(c *gin.Context) {
	var input CreateLineItemInput
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

	proposal, ok := lockProposalForItems(tx, c)
	if !ok {
		tx.Rollback()
		return
	}

	// Validate the referenced catalog material belongs to this contractor
	if input.MaterialID != nil {
		var material models.Material
		if err := tx.Where("contractor_id = ? AND id = ?", proposal.ContractorID, *input.MaterialID).
			First(&material).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondWithError(c, http.StatusBadRequest, "Material not found")
			} else {
				utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			}
			return
		}
	}

	unit := input.Unit
	if unit == "" {
		unit = "each"
	}

	total := services.LineItemTotal(input.Quantity, input.UnitPrice)
	if input.IsManualOverride && input.Total != nil {
		total = *input.Total
	}

	orderIndex := 0
	if input.OrderIndex != nil {
		orderIndex = *input.OrderIndex
	} else {
		// Append after the current last item
		var maxIndex int64
		tx.Model(&models.LineItem{}).
			Where("proposal_id = ?", proposal.ID).
			Select("COALESCE(MAX(order_index), -1)").Scan(&maxIndex)
		orderIndex = int(maxIndex) + 1
	}

	item := models.LineItem{
		ProposalID:       proposal.ID,
		Category:         input.Category,
		Description:      input.Description,
		Quantity:         input.Quantity,
		Unit:             unit,
		UnitPrice:        input.UnitPrice,
		Total:            total,
		IsManualOverride: input.IsManualOverride,
		MaterialID:       input.MaterialID,
		OrderIndex:       orderIndex,
	}

	if err := tx.Create(&item).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create line item")
		return
	}

	if err := recalcTotals(tx, proposal); err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to recalculate totals")
		return
	}
	if err := tx.Save(proposal).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update proposal totals")
		return
	}

	tx.Commit()

	c.JSON(http.StatusCreated, gin.H{
		"item":        item,
		"subtotal":    proposal.Subtotal,
		"taxAmount":   proposal.TaxAmount,
		"totalAmount": proposal.TotalAmount,
	})
}

// UpdateLineItem updates a line item in place and recomputes proposal totals
func UpdateLineItem(c *gin.Context) {
	itemUUID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid line item ID format")
		return
	}

	var input UpdateLineItemInput
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

	proposal, ok := lockProposalForItems(tx, c)
	if !ok {
		tx.Rollback()
		return
	}

	var item models.LineItem
	if err := tx.Where("proposal_id = ? AND id = ?", proposal.ID, itemUUID).
		First(&item).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Line item not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Category != nil {
		item.Category = *input.Category
	}
	if input.Description != nil {
		item.Description = *input.Description
	}
	if input.Quantity != nil {
		item.Quantity = *input.Quantity
	}
	if input.Unit != nil {
		item.Unit = *input.Unit
	}
	if input.UnitPrice != nil {
		item.UnitPrice = *input.UnitPrice
	}
	if input.IsManualOverride != nil {
		item.IsManualOverride = *input.IsManualOverride
	}
	if input.OrderIndex != nil {
		item.OrderIndex = *input.OrderIndex
	}

	// Keep the stored total in step with quantity and price unless the user
	// has pinned it with a manual override
	if item.IsManualOverride && input.Total != nil {
		item.Total = *input.Total
	} else if !item.IsManualOverride {
		item.Total = services.LineItemTotal(item.Quantity, item.UnitPrice)
	}

	if err := tx.Save(&item).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update line item")
		return
	}

	if err := recalcTotals(tx, proposal); err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to recalculate totals")
		return
	}
	if err := tx.Save(proposal).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update proposal totals")
		return
	}

	tx.Commit()

	c.JSON(http.StatusOK, gin.H{
		"item":        item,
		"subtotal":    proposal.Subtotal,
		"taxAmount":   proposal.TaxAmount,
		"totalAmount": proposal.TotalAmount,
	})
}

// DeleteLineItem removes a line item and recomputes proposal totals
func DeleteLineItem(c *gin.Context) {
	itemUUID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid line item ID format")
		return
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	proposal, ok := lockProposalForItems(tx, c)
	if !ok {
		tx.Rollback()
		return
	}

	result := tx.Where("proposal_id = ? AND id = ?", proposal.ID, itemUUID).
		Delete(&models.LineItem{})
	if result.Error != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete line item")
		return
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusNotFound, "Line item not found")
		return
	}

	if err := recalcTotals(tx, proposal); err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to recalculate totals")
		return
	}
	if err := tx.Save(proposal).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update proposal totals")
		return
	}

	tx.Commit()

	c.JSON(http.StatusOK, gin.H{
		"message":     "Line item deleted successfully",
		"subtotal":    proposal.Subtotal,
		"taxAmount":   proposal.TaxAmount,
		"totalAmount": proposal.TotalAmount,
	})
}
