package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ibunity/backend/internal/models"
)

type NotificationHandler struct {
	db *gorm.DB
}

func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{db: db}
}

// List returns the caller's newest notifications; clients poll this.
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var notifications []models.Notification
	h.db.Preload("NotifyBy").
		Where("notify_to_id = ?", userID).
		Order("created_at DESC").
		Limit(50).
		Find(&notifications)

	if notifications == nil {
		notifications = []models.Notification{}
	}
	c.JSON(http.StatusOK, notifications)
}

// UnreadCount returns how many notifications the caller has not read yet.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var count int64
	h.db.Model(&models.Notification{}).
		Where("notify_to_id = ? AND is_read = ?", userID, false).
		Count(&count)

	c.JSON(http.StatusOK, gin.H{"unread": count})
}

// Read marks one notification as read.
func (h *NotificationHandler) Read(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	id := c.Param("id")

	var notification models.Notification
	if err := h.db.Where("id = ? AND notify_to_id = ?", id, userID).First(&notification).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	notification.IsRead = true
	h.db.Save(&notification)

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// ReadAll marks every unread notification of the caller as read.
func (h *NotificationHandler) ReadAll(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	h.db.Model(&models.Notification{}).
		Where("notify_to_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)

	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}

// Delete removes one of the caller's notifications.
func (h *NotificationHandler) Delete(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	id := c.Param("id")

	var notification models.Notification
	if err := h.db.Where("id = ? AND notify_to_id = ?", id, userID).First(&notification).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	h.db.Delete(&notification)
	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}
