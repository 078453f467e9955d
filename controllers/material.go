// controllers/material.go
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

// CreateMaterialInput defines the expected JSON structure for creating a material
type CreateMaterialInput struct {
	Name           string                  `json:"name" binding:"required"`
	Category       models.LineItemCategory `json:"category" binding:"omitempty,oneof=material labor equipment overhead profit custom"`
	Unit           string                  `json:"unit" binding:"required"`
	SuggestedPrice float64                 `json:"suggestedPrice" binding:"required,min=0"`
	Supplier       string                  `json:"supplier"`
	Specs          models.JSONB            `json:"specs"`
}

// UpdateMaterialInput defines the expected JSON structure for updating a material
type UpdateMaterialInput struct {
	Name           *string                  `json:"name"`
	Category       *models.LineItemCategory `json:"category" binding:"omitempty,oneof=material labor equipment overhead profit custom"`
	Unit           *string                  `json:"unit"`
	SuggestedPrice *float64                 `json:"suggestedPrice" binding:"omitempty,min=0"`
	Supplier       *string                  `json:"supplier"`
	Specs          *models.JSONB            `json:"specs"`
	IsActive       *bool                    `json:"isActive"`
}

// CreateMaterial creates a new catalog material for the contractor
func CreateMaterial(c *gin.Context) {
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

	var input CreateMaterialInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	category := input.Category
	if category == "" {
		category = models.CategoryMaterial
	}
	specs := input.Specs
	if specs == nil {
		specs = models.JSONB{}
	}

	material := models.Material{
		ContractorID:   contractorUUID,
		Name:           input.Name,
		Category:       category,
		Unit:           input.Unit,
		SuggestedPrice: input.SuggestedPrice,
		Supplier:       input.Supplier,
		Specs:          specs,
		IsActive:       true,
	}

	if err := config.DB.Create(&material).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create material")
		return
	}

	c.JSON(http.StatusCreated, material)
}

// GetMaterials retrieves the contractor's material catalog
func GetMaterials(c *gin.Context) {
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

	var materials []models.Material
	if err := config.DB.Where("contractor_id = ?", contractorUUID).
		Order("name asc").Find(&materials).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve materials")
		return
	}

	c.JSON(http.StatusOK, materials)
}

// GetMaterial retrieves a specific material by ID
func GetMaterial(c *gin.Context) {
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

	materialUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid material ID format")
		return
	}

	var material models.Material
	if err := config.DB.Where("contractor_id = ? AND id = ?", contractorUUID, materialUUID).
		First(&material).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Material not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, material)
}

// UpdateMaterial updates an existing material
func UpdateMaterial(c *gin.Context) {
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

	materialUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid material ID format")
		return
	}

	var input UpdateMaterialInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var material models.Material
	if err := config.DB.Where("contractor_id = ? AND id = ?", contractorUUID, materialUUID).
		First(&material).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Material not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Name != nil {
		material.Name = *input.Name
	}
	if input.Category != nil {
		material.Category = *input.Category
	}
	if input.Unit != nil {
		material.Unit = *input.Unit
	}
	if input.SuggestedPrice != nil {
		material.SuggestedPrice = *input.SuggestedPrice
	}
	if input.Supplier != nil {
		material.Supplier = *input.Supplier
	}
	if input.Specs != nil {
		material.Specs = *input.Specs
	}
	if input.IsActive != nil {
		material.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&material).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update material")
		return
	}

	c.JSON(http.StatusOK, material)
}

// DeleteMaterial soft deletes a material
func DeleteMaterial(c *gin.Context) {
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

	materialUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid material ID format")
		return
	}

	result := config.DB.Where("contractor_id = ? AND id = ?", contractorUUID, materialUUID).
		Delete(&models.Material{})
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete material")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Material not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Material deleted successfully"})
}

// SuggestMaterialPrice returns the built-in suggested unit price for a common
// glazing material, 0 when unknown
func SuggestMaterialPrice(c *gin.Context) {
	name := c.Query("name")
	unit := c.Query("unit")
	if name == "" || unit == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "name and unit query parameters are required")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"name":           name,
		"unit":           unit,
		"suggestedPrice": services.SuggestedPrice(name, unit),
	})
}
