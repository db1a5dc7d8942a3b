package models

import "time"

// Subject is an IB subject (e.g. "Mathematics AA"). Posts belong to exactly one subject.
type Subject struct {
	ID          int    `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"unique;not null" json:"name"`
	Group       string `json:"group"`      // IB subject group, e.g. "Sciences"
	Curriculum  string `json:"curriculum"` // "DP" or "MYP"
	Description string `json:"description"`

	MemberCount int `gorm:"default:0" json:"member_count"`
	PostCount   int `gorm:"default:0" json:"post_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SubjectMember records that a user joined a subject. The personalized feed is
// built from these rows.
type SubjectMember struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	UserID    int       `gorm:"uniqueIndex:idx_subject_member" json:"user_id"`
	SubjectID int       `gorm:"uniqueIndex:idx_subject_member" json:"subject_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user"`
	Subject   Subject   `gorm:"foreignKey:SubjectID" json:"subject"`
	CreatedAt time.Time `json:"created_at"`
}
