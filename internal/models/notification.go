package models

import "time"

type NotificationType string

const (
	NotificationTypePostVote   NotificationType = "post_vote"
	NotificationTypeAnswerVote NotificationType = "answer_vote"
	NotificationTypeReplyVote  NotificationType = "reply_vote"
	NotificationTypeAnswer     NotificationType = "answer"
	NotificationTypeReply      NotificationType = "reply"
	NotificationTypePurchase   NotificationType = "purchase"
)

// Notification is a denormalized fan-out row written as a side effect of votes,
// answers, replies and purchases. Recipients are keyed by user id; never updated
// after creation except to flip IsRead.
type Notification struct {
	ID         int              `gorm:"primaryKey" json:"id"`
	NotifyToID int              `gorm:"not null;index" json:"notify_to_id"`
	NotifyByID int              `gorm:"index" json:"notify_by_id"`
	NotifyBy   User             `gorm:"foreignKey:NotifyByID" json:"notify_by"`
	Type       NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	Body       string           `gorm:"type:text" json:"body"` // sanitized HTML with embedded anchor
	IsRead     bool             `gorm:"default:false;index" json:"is_read"`
	CreatedAt  time.Time        `json:"created_at"`
}
