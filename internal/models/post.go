package models

import "time"

type Post struct {
	ID        int     `gorm:"primaryKey" json:"id"`
	SubjectID int     `gorm:"index" json:"subject_id"`
	Subject   Subject `gorm:"foreignKey:SubjectID" json:"subject"`
	AuthorID  int     `gorm:"index" json:"author_id"`
	Author    User    `gorm:"foreignKey:AuthorID" json:"author"`

	Title      string `gorm:"not null" json:"title"`
	Body       string `gorm:"type:text" json:"body"`
	Attachment string `json:"attachment"` // stored object path under posts/{id}/

	// Filterable metadata, all optional
	Grade    string `json:"grade"`     // "1".."7"
	Criteria string `json:"criteria"`  // MYP criteria, e.g. "A,B"
	PostType string `json:"post_type"` // "question", "resource", "discussion"
	DPLevel  string `json:"dp_level"`  // "SL" or "HL"
	Paper    string `json:"paper"`     // "P1", "P2", "P3"

	// Denormalized aggregates. VoteStatus is the signed sum of all vote rows for
	// this post and is only ever changed in the same transaction as the vote row.
	VoteStatus  int `gorm:"default:0" json:"vote_status"`
	AnswerCount int `gorm:"default:0" json:"answer_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
