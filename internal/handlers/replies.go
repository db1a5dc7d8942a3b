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

type ReplyHandler struct {
	db    *gorm.DB
	votes *votes.Service
}

func NewReplyHandler(db *gorm.DB, voteService *votes.Service) *ReplyHandler {
	return &ReplyHandler{db: db, votes: voteService}
}

// GetReplies returns one level of the reply tree under an answer: top-level
// replies by default, or the children of ?parent=<id>. Deeper levels are
// fetched lazily by the client, never recursively here.
func (h *ReplyHandler) GetReplies(c *gin.Context) {
	answerID := c.Param("id")

	query := h.db.Where("answer_id = ?", answerID).Preload("Author").Order("created_at asc")
	if parent := c.Query("parent"); parent != "" {
		query = query.Where("parent_reply_id = ?", parent)
	} else {
		query = query.Where("parent_reply_id IS NULL")
	}

	var replies []models.AnswerReply
	if err := query.Find(&replies).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch replies"})
		return
	}
	if replies == nil {
		replies = []models.AnswerReply{}
	}

	c.JSON(http.StatusOK, replies)
}

// CreateReply creates a reply on an answer, optionally nested under another
// reply. Depth is capped; the reply row, the counters and the notification to
// the parent's author share one transaction.
func (h *ReplyHandler) CreateReply(c *gin.Context) {
	var input struct {
		Body          string `json:"body" binding:"required"`
		ParentReplyID *int   `json:"parent_reply_id,omitempty"`
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

	answerID := c.Param("id")
	var answer models.Answer
	if err := h.db.First(&answer, answerID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Answer not found"})
		return
	}

	depth := 1
	notifyTo := answer.AuthorID
	var parent models.AnswerReply
	if input.ParentReplyID != nil {
		if err := h.db.First(&parent, *input.ParentReplyID).Error; err != nil || parent.AnswerID != answer.ID {
			c.JSON(http.StatusNotFound, gin.H{"error": "Parent reply not found"})
			return
		}
		depth = parent.Depth + 1
		notifyTo = parent.AuthorID
	}
	if depth > models.MaxReplyDepth {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Reply nesting limit reached"})
		return
	}

	var author models.User
	if err := h.db.First(&author, authorID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	var post models.Post
	if err := h.db.First(&post, answer.PostID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	reply := models.AnswerReply{
		AnswerID:      answer.ID,
		ParentReplyID: input.ParentReplyID,
		Depth:         depth,
		AuthorID:      authorID,
		Body:          input.Body,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&reply).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Answer{}).Where("id = ?", answer.ID).
			UpdateColumn("reply_count", gorm.Expr("reply_count + 1")).Error; err != nil {
			return err
		}
		if input.ParentReplyID != nil {
			if err := tx.Model(&models.AnswerReply{}).Where("id = ?", *input.ParentReplyID).
				UpdateColumn("child_count", gorm.Expr("child_count + 1")).Error; err != nil {
				return err
			}
		}
		body := fmt.Sprintf("%s replied to you on %s", author.DisplayName,
			htmlutil.Anchor(fmt.Sprintf("/posts/%d#reply-%d", post.ID, reply.ID), post.Title))
		return notifyInTx(tx, notifyTo, authorID, models.NotificationTypeReply, body)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create reply"})
		return
	}

	h.db.Preload("Author").First(&reply, reply.ID)
	c.JSON(http.StatusCreated, reply)
}

// UpdateReply updates a reply (owner only)
func (h *ReplyHandler) UpdateReply(c *gin.Context) {
	replyID := c.Param("id")

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

	var reply models.AnswerReply
	if err := h.db.First(&reply, replyID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reply not found"})
		return
	}

	if reply.AuthorID != authorID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only edit your own replies"})
		return
	}

	reply.Body = input.Body
	h.db.Save(&reply)
	h.db.Preload("Author").First(&reply, reply.ID)

	c.JSON(http.StatusOK, reply)
}

// DeleteReply deletes a reply and its subtree (owner only) and fixes the
// counters in the same transaction.
func (h *ReplyHandler) DeleteReply(c *gin.Context) {
	replyID := c.Param("id")

	authorID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var reply models.AnswerReply
	if err := h.db.First(&reply, replyID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reply not found"})
		return
	}

	if reply.AuthorID != authorID && !isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own replies"})
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		// Collect the subtree breadth-first; the depth cap bounds the loop.
		ids := []int{reply.ID}
		frontier := []int{reply.ID}
		for len(frontier) > 0 {
			var children []int
			if err := tx.Model(&models.AnswerReply{}).Where("parent_reply_id IN ?", frontier).
				Pluck("id", &children).Error; err != nil {
				return err
			}
			ids = append(ids, children...)
			frontier = children
		}

		if err := tx.Where("kind = ? AND target_id IN ?", models.VoteKindReply, ids).
			Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", ids).Delete(&models.AnswerReply{}).Error; err != nil {
			return err
		}
		if reply.ParentReplyID != nil {
			if err := tx.Model(&models.AnswerReply{}).Where("id = ?", *reply.ParentReplyID).
				UpdateColumn("child_count", gorm.Expr("child_count - 1")).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.Answer{}).Where("id = ?", reply.AnswerID).
			UpdateColumn("reply_count", gorm.Expr("reply_count - ?", len(ids))).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete reply"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reply deleted successfully"})
}

// VoteReply applies an up/down vote through the shared vote engine.
func (h *ReplyHandler) VoteReply(c *gin.Context) {
	voterID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	replyID, err := strconv.Atoi(c.Param("id"))
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

	result, err := h.votes.Cast(voterID, models.VoteKindReply, replyID, input.Value)
	switch {
	case err == votes.ErrTargetNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "Reply not found"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to vote"})
		return
	}

	c.JSON(http.StatusOK, result)
}
