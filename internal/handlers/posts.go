package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ibunity/backend/internal/cache"
	"github.com/ibunity/backend/internal/htmlutil"
	"github.com/ibunity/backend/internal/models"
	"github.com/ibunity/backend/internal/storage"
	"github.com/ibunity/backend/internal/votes"
)

type PostHandler struct {
	db    *gorm.DB
	store *storage.Store
	votes *votes.Service
	feed  *cache.Cache
}

func NewPostHandler(db *gorm.DB, store *storage.Store, voteService *votes.Service, feedCache *cache.Cache) *PostHandler {
	return &PostHandler{db: db, store: store, votes: voteService, feed: feedCache}
}

// GetPost returns a single post by ID with its rendered body
func (h *PostHandler) GetPost(c *gin.Context) {
	postID := c.Param("id")
	var post models.Post

	if err := h.db.Preload("Author").Preload("Subject").First(&post, postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	myVote := 0
	if userID, ok := extractUserID(c); ok {
		myVote = h.votes.StatusFor(userID, models.VoteKindPost, post.ID)
	}

	c.JSON(http.StatusOK, gin.H{
		"id":           post.ID,
		"title":        post.Title,
		"body":         post.Body,
		"body_html":    htmlutil.RenderMarkdown(post.Body),
		"attachment":   post.Attachment,
		"subject":      post.Subject,
		"author":       post.Author,
		"author_id":    post.AuthorID,
		"grade":        post.Grade,
		"criteria":     post.Criteria,
		"post_type":    post.PostType,
		"dp_level":     post.DPLevel,
		"paper":        post.Paper,
		"vote_status":  post.VoteStatus,
		"answer_count": post.AnswerCount,
		"my_vote":      myVote,
		"created_at":   post.CreatedAt,
		"updated_at":   post.UpdatedAt,
	})
}

// CreatePost creates a new post (PROTECTED - requires authentication).
// Accepts multipart form data with an optional attachment.
func (h *PostHandler) CreatePost(c *gin.Context) {
	authorID, ok := extractUserID(c)
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

	var subject models.Subject
	if err := h.db.First(&subject, subjectID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subject not found"})
		return
	}

	post := models.Post{
		SubjectID: subject.ID,
		AuthorID:  authorID,
		Title:     title,
		Body:      c.PostForm("body"),
		Grade:     c.PostForm("grade"),
		Criteria:  c.PostForm("criteria"),
		PostType:  c.PostForm("post_type"),
		DPLevel:   c.PostForm("dp_level"),
		Paper:     c.PostForm("paper"),
	}

	// Post row and the subject's post counter move together
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&post).Error; err != nil {
			return err
		}
		return tx.Model(&models.Subject{}).Where("id = ?", subject.ID).
			UpdateColumn("post_count", gorm.Expr("post_count + 1")).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	if file, err := c.FormFile("attachment"); err == nil {
		path, err := h.store.SavePostAttachment(post.ID, file)
		if err != nil {
			log.Printf("Failed to store attachment for post %d: %v", post.ID, err)
		} else {
			h.db.Model(&post).UpdateColumn("attachment", path)
			post.Attachment = path
		}
	}

	h.invalidatePublicFeed(subject.Curriculum)

	h.db.Preload("Author").Preload("Subject").First(&post, post.ID)
	c.JSON(http.StatusCreated, post)
}

// UpdatePost updates an existing post (PROTECTED - requires ownership)
func (h *PostHandler) UpdatePost(c *gin.Context) {
	postID := c.Param("id")

	currentUserID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Title    string `json:"title"`
		Body     string `json:"body"`
		Grade    string `json:"grade"`
		Criteria string `json:"criteria"`
		PostType string `json:"post_type"`
		DPLevel  string `json:"dp_level"`
		Paper    string `json:"paper"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var post models.Post
	if err := h.db.First(&post, postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	// Check ownership
	if post.AuthorID != currentUserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only edit your own posts"})
		return
	}

	if input.Title != "" {
		post.Title = input.Title
	}
	if input.Body != "" {
		post.Body = input.Body
	}
	if input.Grade != "" {
		post.Grade = input.Grade
	}
	if input.Criteria != "" {
		post.Criteria = input.Criteria
	}
	if input.PostType != "" {
		post.PostType = input.PostType
	}
	if input.DPLevel != "" {
		post.DPLevel = input.DPLevel
	}
	if input.Paper != "" {
		post.Paper = input.Paper
	}

	h.db.Save(&post)
	h.db.Preload("Author").Preload("Subject").First(&post, post.ID)

	c.JSON(http.StatusOK, post)
}

// DeletePost deletes a post with everything hanging off it (PROTECTED -
// requires ownership). The post row, its answers and replies, every vote and
// difficulty vote referencing them, and the subject's post counter all change
// in one transaction; the stored attachment goes after commit.
func (h *PostHandler) DeletePost(c *gin.Context) {
	postID := c.Param("id")

	currentUserID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var post models.Post
	if err := h.db.First(&post, postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	// Check ownership
	if post.AuthorID != currentUserID && !isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own posts"})
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		var answerIDs []int
		if err := tx.Model(&models.Answer{}).Where("post_id = ?", post.ID).
			Pluck("id", &answerIDs).Error; err != nil {
			return err
		}

		if len(answerIDs) > 0 {
			var replyIDs []int
			if err := tx.Model(&models.AnswerReply{}).Where("answer_id IN ?", answerIDs).
				Pluck("id", &replyIDs).Error; err != nil {
				return err
			}
			if len(replyIDs) > 0 {
				if err := tx.Where("kind = ? AND target_id IN ?", models.VoteKindReply, replyIDs).
					Delete(&models.Vote{}).Error; err != nil {
					return err
				}
				if err := tx.Where("answer_id IN ?", answerIDs).Delete(&models.AnswerReply{}).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("kind = ? AND target_id IN ?", models.VoteKindAnswer, answerIDs).
				Delete(&models.Vote{}).Error; err != nil {
				return err
			}
			if err := tx.Where("post_id = ?", post.ID).Delete(&models.Answer{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("kind = ? AND target_id = ?", models.VoteKindPost, post.ID).
			Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.DifficultyVote{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Subject{}).Where("id = ?", post.SubjectID).
			UpdateColumn("post_count", gorm.Expr("post_count - 1")).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}

	if err := h.store.DeletePostDir(post.ID); err != nil {
		log.Printf("Failed to delete stored files for post %d: %v", post.ID, err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

// VotePost applies an up/down vote through the shared vote engine and returns
// the authoritative new vote_status.
func (h *PostHandler) VotePost(c *gin.Context) {
	h.castVote(c, models.VoteKindPost)
}

func (h *PostHandler) castVote(c *gin.Context, kind models.VoteKind) {
	voterID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	targetID, err := strconv.Atoi(c.Param("id"))
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

	result, err := h.votes.Cast(voterID, kind, targetID, input.Value)
	switch {
	case err == votes.ErrTargetNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to vote"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetUserPosts returns all posts by a specific user
func (h *PostHandler) GetUserPosts(c *gin.Context) {
	userID := c.Param("id")
	var posts []models.Post

	if err := h.db.Preload("Author").Preload("Subject").Where("author_id = ?", userID).
		Order("created_at desc").Find(&posts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user posts"})
		return
	}

	c.JSON(http.StatusOK, posts)
}
