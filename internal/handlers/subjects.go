package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ibunity/backend/internal/models"
)

type SubjectHandler struct {
	db *gorm.DB
}

func NewSubjectHandler(db *gorm.DB) *SubjectHandler {
	return &SubjectHandler{db: db}
}

// ListSubjects returns all subjects, optionally filtered by curriculum or group
func (h *SubjectHandler) ListSubjects(c *gin.Context) {
	query := h.db.Order("name asc")
	if curriculum := c.Query("curriculum"); curriculum != "" {
		query = query.Where("curriculum = ?", curriculum)
	}
	if group := c.Query("group"); group != "" {
		query = query.Where(`"group" = ?`, group)
	}

	var subjects []models.Subject
	if err := query.Find(&subjects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch subjects"})
		return
	}
	if subjects == nil {
		subjects = []models.Subject{}
	}

	c.JSON(http.StatusOK, subjects)
}

// GetSubject returns a subject with its recent posts
func (h *SubjectHandler) GetSubject(c *gin.Context) {
	subjectID := c.Param("id")

	var subject models.Subject
	if err := h.db.First(&subject, subjectID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subject not found"})
		return
	}

	var posts []models.Post
	h.db.Where("subject_id = ?", subject.ID).Preload("Author").
		Order("created_at desc").Limit(30).Find(&posts)
	if posts == nil {
		posts = []models.Post{}
	}

	isMember := false
	if userID, ok := extractUserID(c); ok {
		var member models.SubjectMember
		err := h.db.Where("user_id = ? AND subject_id = ?", userID, subject.ID).First(&member).Error
		isMember = err == nil
	}

	c.JSON(http.StatusOK, gin.H{
		"subject":   subject,
		"posts":     posts,
		"is_member": isMember,
	})
}

// JoinSubject adds the caller to a subject; the membership row and the
// member counter move together.
func (h *SubjectHandler) JoinSubject(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var subject models.Subject
	if err := h.db.First(&subject, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subject not found"})
		return
	}

	var existing models.SubjectMember
	if err := h.db.Where("user_id = ? AND subject_id = ?", userID, subject.ID).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Already joined this subject"})
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		member := models.SubjectMember{UserID: userID, SubjectID: subject.ID}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}
		return tx.Model(&models.Subject{}).Where("id = ?", subject.ID).
			UpdateColumn("member_count", gorm.Expr("member_count + 1")).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join subject"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Successfully joined subject"})
}

// LeaveSubject removes the caller from a subject.
func (h *SubjectHandler) LeaveSubject(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var member models.SubjectMember
	if err := h.db.Where("user_id = ? AND subject_id = ?", userID, c.Param("id")).First(&member).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Not a member of this subject"})
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&member).Error; err != nil {
			return err
		}
		return tx.Model(&models.Subject{}).Where("id = ?", member.SubjectID).
			UpdateColumn("member_count", gorm.Expr("member_count - 1")).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to leave subject"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Successfully left subject"})
}
