package models

import "time"

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// DifficultyVote is one user's difficulty rating of a post. One row per
// (user, post); re-voting replaces the bucket.
type DifficultyVote struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	PostID    int       `gorm:"uniqueIndex:idx_user_difficulty;not null" json:"post_id"`
	UserID    int       `gorm:"uniqueIndex:idx_user_difficulty;not null" json:"user_id"`
	Bucket    string    `gorm:"type:varchar(10);not null" json:"bucket"`
	CreatedAt time.Time `json:"created_at"`
}
