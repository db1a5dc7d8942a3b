package handlers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/twilio/twilio-go"
	verify "github.com/twilio/twilio-go/rest/verify/v2"

	"github.com/ibunity/backend/internal/models"
)

// SendPhoneVerification starts a Twilio Verify SMS challenge for the caller's
// phone number.
func (h *AuthHandler) SendPhoneVerification(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Phone string `json:"phone" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Phone number is required"})
		return
	}

	serviceSid := os.Getenv("TWILIO_VERIFY_SERVICE_SID")
	if serviceSid == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification is not configured"})
		return
	}

	client := twilio.NewRestClient()
	params := &verify.CreateVerificationParams{}
	params.SetTo(input.Phone)
	params.SetChannel("sms")

	if _, err := client.VerifyV2.CreateVerification(serviceSid, params); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send verification code"})
		return
	}

	// Remember the pending number so the check step can't verify a different one
	h.db.Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{"phone": input.Phone, "phone_verified": false})

	c.JSON(http.StatusOK, gin.H{"message": "Verification code sent"})
}

// CheckPhoneVerification completes the Twilio Verify challenge and marks the
// user's phone as verified.
func (h *AuthHandler) CheckPhoneVerification(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Verification code is required"})
		return
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if user.Phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No pending phone verification"})
		return
	}

	serviceSid := os.Getenv("TWILIO_VERIFY_SERVICE_SID")
	if serviceSid == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification is not configured"})
		return
	}

	client := twilio.NewRestClient()
	params := &verify.CreateVerificationCheckParams{}
	params.SetTo(user.Phone)
	params.SetCode(input.Code)

	resp, err := client.VerifyV2.CreateVerificationCheck(serviceSid, params)
	if err != nil || resp.Status == nil || *resp.Status != "approved" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid verification code"})
		return
	}

	if err := h.db.Model(&user).UpdateColumn("phone_verified", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Phone verified"})
}
