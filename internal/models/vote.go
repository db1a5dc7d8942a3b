package models

import "time"

// VoteKind names the entity a vote targets.
type VoteKind string

const (
	VoteKindPost   VoteKind = "post"
	VoteKindAnswer VoteKind = "answer"
	VoteKindReply  VoteKind = "reply"
)

// Vote is a single user's vote on a single votable entity. At most one row per
// (user, kind, target): created on first vote, flipped in place, deleted on retract.
type Vote struct {
	ID       int      `gorm:"primaryKey" json:"id"`
	UserID   int      `gorm:"uniqueIndex:idx_user_vote;not null" json:"user_id"`
	Kind     VoteKind `gorm:"uniqueIndex:idx_user_vote;type:varchar(10);not null" json:"kind"`
	TargetID int      `gorm:"uniqueIndex:idx_user_vote;not null" json:"target_id"`
	Value    int      `gorm:"not null" json:"value"` // 1 or -1

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
