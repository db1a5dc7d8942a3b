package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ibunity/backend/internal/models"
	"github.com/ibunity/backend/internal/storage"
)

type SubmissionHandler struct {
	db    *gorm.DB
	store *storage.Store
}

func NewSubmissionHandler(db *gorm.DB, store *storage.Store) *SubmissionHandler {
	return &SubmissionHandler{db: db, store: store}
}

// CreateSubmission accepts a coursework upload with its proof-of-grade file.
func (h *SubmissionHandler) CreateSubmission(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	title := c.PostForm("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}
	subjectID, err := strconv.Atoi(c.PostForm("subject_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "subject_id is required"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Coursework file is required"})
		return
	}
	proof, err := c.FormFile("proof")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Proof file is required"})
		return
	}

	filePath, err := h.store.Save(storage.PrefixCoursework, file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store coursework"})
		return
	}
	proofPath, err := h.store.Save(storage.PrefixProof, proof)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store proof"})
		return
	}

	submission := models.Submission{
		UserID:    userID,
		SubjectID: subjectID,
		Kind:      "coursework",
		Title:     title,
		Grade:     c.PostForm("grade"),
		FilePath:  filePath,
		ProofPath: proofPath,
		Status:    "pending",
	}
	if err := h.db.Create(&submission).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create submission"})
		return
	}

	c.JSON(http.StatusCreated, submission)
}

// ListSubmissions returns the caller's submissions; admins see everything.
func (h *SubmissionHandler) ListSubmissions(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	query := h.db.Preload("Subject").Order("created_at desc")
	if !isAdmin(c) {
		query = query.Where("user_id = ?", userID)
	}

	var submissions []models.Submission
	if err := query.Find(&submissions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch submissions"})
		return
	}
	if submissions == nil {
		submissions = []models.Submission{}
	}

	c.JSON(http.StatusOK, submissions)
}

// UpdateSubmissionStatus approves or rejects a submission (admin only).
func (h *SubmissionHandler) UpdateSubmissionStatus(c *gin.Context) {
	if !isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
		return
	}

	var input struct {
		Status string `json:"status" binding:"required,oneof=pending approved rejected"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status must be pending, approved or rejected"})
		return
	}

	var submission models.Submission
	if err := h.db.First(&submission, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return
	}

	submission.Status = input.Status
	if err := h.db.Save(&submission).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update submission"})
		return
	}

	c.JSON(http.StatusOK, submission)
}
