package controllers

import (
	"net/http"

	"bidcraft-backend/config"
	"bidcraft-backend/models"
	"bidcraft-backend/utils"

	"github.com/gin-gonic/gin"
)

type UpdateProfileInput struct {
	Name             *string `json:"name"`
	Phone            *string `json:"phone"`
	CompanyName      *string `json:"companyName"`
	CompanyAddress   *string `json:"companyAddress"`
	LogoURL          *string `json:"logoUrl"`
	SMSNotifications *bool   `json:"smsNotifications"`
}

func GetProfile(c *gin.Context) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "User not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"name":             user.Name,
		"email":            user.Email,
		"phone":            user.Phone,
		"companyName":      user.CompanyName,
		"companyAddress":   user.CompanyAddress,
		"logoUrl":          user.LogoURL,
		"smsNotifications": user.SMSNotifications,
	})
}

func UpdateProfile(c *gin.Context) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}

	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "User not found")
		return
	}

	if input.Phone != nil && *input.Phone != "" && !utils.ValidatePhone(*input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.CompanyName != nil {
		user.CompanyName = *input.CompanyName
	}
	if input.CompanyAddress != nil {
		user.CompanyAddress = *input.CompanyAddress
	}
	if input.LogoURL != nil {
		user.LogoURL = *input.LogoURL
	}
	if input.SMSNotifications != nil {
		user.SMSNotifications = *input.SMSNotifications
	}

	if err := config.DB.Save(&user).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully"})
}
