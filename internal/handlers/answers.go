package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ibunity/backend/internal/htmlutil"
	"github.com/ibunity/backend/internal/models"
	"github.com/ibunity/backend/internal/votes"
)

type AnswerHandler struct {
	db    *gorm.DB
	votes *votes.Service
}

func NewAnswerHandler(db *gorm.DB, voteService *votes.Service) *AnswerHandler {
	return &AnswerHandler{db: db, votes: voteService}
}

// GetAnswers returns all answers for a post
func (h *AnswerHandler) GetAnswers(c *gin.Context) {
	postID := c.Param("id")
	var answers []models.Answer

	if err := h.db.Where("post_id = ?", postID).Preload("Author").
		Order("vote_status desc").Order("created_at asc").Find(&answers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch answers"})
		return
	}

	var responses []gin.H
	userID, authed := extractUserID(c)
	for _, answer := range answers {
		myVote := 0
		if authed {
			myVote = h.votes.StatusFor(userID, models.VoteKindAnswer, answer.ID)
		}
		responses = append(responses, gin.H{
			"id":          answer.ID,
			"body":        answer.Body,
			"author_id":   answer.AuthorID,
			"post_id":     answer.PostID,
			"author":      answer.Author,
			"vote_status": answer.VoteStatus,
			"reply_count": answer.ReplyCount,
			"my_vote":     myVote,
			"created_at":  answer.CreatedAt,
			"updated_at":  answer.UpdatedAt,
		})
	}

	if responses == nil {
		responses = []gin.H{}
	}

	c.JSON(http.StatusOK, responses)
}

// CreateAnswer creates a new answer on a post. The answer row, the post's
// answer counter and the notification to the post author share one transaction.
func (h *AnswerHandler) CreateAnswer(c *gin.Context) {
	var input struct {
		Body string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	authorID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	postID := c.Param("id")
	var post models.Post
	if err := h.db.First(&post, postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	var author models.User
	if err := h.db.First(&author, authorID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	answer := models.Answer{
		Body:     input.Body,
		PostID:   post.ID,
		AuthorID: authorID,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&answer).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Post{}).Where("id = ?", post.ID).
			UpdateColumn("answer_count", gorm.Expr("answer_count + 1")).Error; err != nil {
			return err
		}
		body := fmt.Sprintf("%s answered your question %s", author.DisplayName,
			htmlutil.Anchor(fmt.Sprintf("/posts/%d#answer-%d", post.ID, answer.ID), post.Title))
		return notifyInTx(tx, post.AuthorID, authorID, models.NotificationTypeAnswer, body)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create answer"})
		return
	}

	h.db.Preload("Author").First(&answer, answer.ID)
	c.JSON(http.StatusCreated, answer)
}

// UpdateAnswer updates an answer (owner only)
func (h *AnswerHandler) UpdateAnswer(c *gin.Context) {
	answerID := c.Param("id")

	authorID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Body string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var answer models.Answer
	if err := h.db.First(&answer, answerID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Answer not found"})
		return
	}

	if answer.AuthorID != authorID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only edit your own answers"})
		return
	}

	answer.Body = input.Body
	h.db.Save(&answer)
	h.db.Preload("Author").First(&answer, answer.ID)

	c.JSON(http.StatusOK, answer)
}

// DeleteAnswer deletes an answer, its replies and every vote on them (owner
// only), and decrements the post's answer counter in the same transaction.
func (h *AnswerHandler) DeleteAnswer(c *gin.Context) {
	answerID := c.Param("id")

	authorID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var answer models.Answer
	if err := h.db.First(&answer, answerID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Answer not found"})
		return
	}

	if answer.AuthorID != authorID && !isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own answers"})
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		var replyIDs []int
		if err := tx.Model(&models.AnswerReply{}).Where("answer_id = ?", answer.ID).
			Pluck("id", &replyIDs).Error; err != nil {
			return err
		}
		if len(replyIDs) > 0 {
			if err := tx.Where("kind = ? AND target_id IN ?", models.VoteKindReply, replyIDs).
				Delete(&models.Vote{}).Error; err != nil {
				return err
			}
			if err := tx.Where("answer_id = ?", answer.ID).Delete(&models.AnswerReply{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("kind = ? AND target_id = ?", models.VoteKindAnswer, answer.ID).
			Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Post{}).Where("id = ?", answer.PostID).
			UpdateColumn("answer_count", gorm.Expr("answer_count - 1")).Error; err != nil {
			return err
		}
		return tx.Delete(&answer).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete answer"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Answer deleted successfully"})
}

// VoteAnswer applies an up/down vote through the shared vote engine.
func (h *AnswerHandler) VoteAnswer(c *gin.Context) {
	voterID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	answerID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}

	var input struct {
		Value int `json:"value" binding:"required,oneof=-1 1"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Vote value must be -1 or 1"})
		return
	}

	result, err := h.votes.Cast(voterID, models.VoteKindAnswer, answerID, input.Value)
	switch {
	case err == votes.ErrTargetNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "Answer not found"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to vote"})
		return
	}

	c.JSON(http.StatusOK, result)
}
