package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ibunity/backend/internal/models"
)

type DifficultyHandler struct {
	db *gorm.DB
}

func NewDifficultyHandler(db *gorm.DB) *DifficultyHandler {
	return &DifficultyHandler{db: db}
}

// VoteDifficulty records the caller's difficulty rating for a post. One row
// per (user, post); voting again replaces the bucket.
func (h *DifficultyHandler) VoteDifficulty(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Bucket string `json:"bucket" binding:"required,oneof=easy medium hard"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bucket must be easy, medium or hard"})
		return
	}

	var post models.Post
	if err := h.db.First(&post, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	var existing models.DifficultyVote
	err := h.db.Where("user_id = ? AND post_id = ?", userID, post.ID).First(&existing).Error
	if err == nil {
		existing.Bucket = input.Bucket
		h.db.Save(&existing)
		c.JSON(http.StatusOK, gin.H{"message": "Difficulty vote updated"})
		return
	}

	vote := models.DifficultyVote{PostID: post.ID, UserID: userID, Bucket: input.Bucket}
	if err := h.db.Create(&vote).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record difficulty vote"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Difficulty vote recorded"})
}

// GetDifficulty returns per-bucket counts, percentages and the display label
// for a post's difficulty votes.
func (h *DifficultyHandler) GetDifficulty(c *gin.Context) {
	var post models.Post
	if err := h.db.First(&post, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	var total, easy, medium, hard int64
	h.db.Model(&models.DifficultyVote{}).Where("post_id = ?", post.ID).Count(&total)
	h.db.Model(&models.DifficultyVote{}).Where("post_id = ? AND bucket = ?", post.ID, models.DifficultyEasy).Count(&easy)
	h.db.Model(&models.DifficultyVote{}).Where("post_id = ? AND bucket = ?", post.ID, models.DifficultyMedium).Count(&medium)
	h.db.Model(&models.DifficultyVote{}).Where("post_id = ? AND bucket = ?", post.ID, models.DifficultyHard).Count(&hard)

	c.JSON(http.StatusOK, gin.H{
		"total": total,
		"counts": gin.H{
			"easy":   easy,
			"medium": medium,
			"hard":   hard,
		},
		"percentages": gin.H{
			"easy":   percentage(easy, total),
			"medium": percentage(medium, total),
			"hard":   percentage(hard, total),
		},
		"label": difficultyLabel(easy, medium, hard, total),
	})
}

func percentage(count, total int64) int {
	if total == 0 {
		return 0
	}
	return int(count * 100 / total)
}

// difficultyLabel picks the plurality bucket. Ties go to whichever bucket is
// checked first in the fixed Easy, Medium, Hard order; zero votes yields the
// literal "Not" rather than a division-by-zero artifact.
func difficultyLabel(easy, medium, hard, total int64) string {
	if total == 0 {
		return "Not"
	}
	max := easy
	if medium > max {
		max = medium
	}
	if hard > max {
		max = hard
	}
	switch {
	case easy == max:
		return "Easy"
	case medium == max:
		return "Medium"
	default:
		return "Hard"
	}
}
