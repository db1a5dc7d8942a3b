package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ibunity/backend/internal/cache"
	"github.com/ibunity/backend/internal/models"
	"github.com/ibunity/backend/internal/storage"
	"github.com/ibunity/backend/internal/votes"
)

// Handler combines all handler types
type Handler struct {
	Auth         *AuthHandler
	Post         *PostHandler
	Answer       *AnswerHandler
	Reply        *ReplyHandler
	Subject      *SubjectHandler
	Notification *NotificationHandler
	Difficulty   *DifficultyHandler
	Content      *ContentHandler
	Payment      *PaymentHandler
	Submission   *SubmissionHandler
	User         *UserHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(db *gorm.DB, store *storage.Store, feedCache *cache.Cache) *Handler {
	voteService := votes.NewService(db)

	return &Handler{
		Auth:         NewAuthHandler(db),
		Post:         NewPostHandler(db, store, voteService, feedCache),
		Answer:       NewAnswerHandler(db, voteService),
		Reply:        NewReplyHandler(db, voteService),
		Subject:      NewSubjectHandler(db),
		Notification: NewNotificationHandler(db),
		Difficulty:   NewDifficultyHandler(db),
		Content:      NewContentHandler(db, store),
		Payment:      NewPaymentHandler(db),
		Submission:   NewSubmissionHandler(db, store),
		User:         NewUserHandler(db),
	}
}

func extractUserID(c *gin.Context) (int, bool) {
	raw, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	switch v := raw.(type) {
	case int:
		return v, true
	case uint:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func isAdmin(c *gin.Context) bool {
	role, _ := c.Get("role")
	return role == "admin"
}

// notifyInTx writes a notification inside the caller's transaction; writes to
// yourself are dropped.
func notifyInTx(tx *gorm.DB, toID, byID int, typ models.NotificationType, body string) error {
	if toID == byID {
		return nil
	}
	notification := models.Notification{
		NotifyToID: toID,
		NotifyByID: byID,
		Type:       typ,
		Body:       body,
	}
	if err := tx.Create(&notification).Error; err != nil {
		return fmt.Errorf("error creating notification: %w", err)
	}
	return nil
}
