package models

import "time"

// Submission is user-submitted coursework pending review, with a proof-of-grade
// file alongside the coursework itself.
type Submission struct {
	ID        int     `gorm:"primaryKey" json:"id"`
	UserID    int     `gorm:"index" json:"user_id"`
	User      User    `gorm:"foreignKey:UserID" json:"user"`
	SubjectID int     `gorm:"index" json:"subject_id"`
	Subject   Subject `gorm:"foreignKey:SubjectID" json:"subject"`

	Kind  string `gorm:"default:coursework" json:"kind"`
	Title string `gorm:"not null" json:"title"`
	Grade string `json:"grade"`

	FilePath  string `json:"-"` // submissions/coursework/...
	ProofPath string `json:"-"` // submissions/proof/...

	Status string `gorm:"default:pending" json:"status"` // "pending", "approved", "rejected"

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
