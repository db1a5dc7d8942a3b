package models

import "time"

type Answer struct {
	ID       int  `gorm:"primaryKey" json:"id"`
	PostID   int  `gorm:"index" json:"post_id"`
	Post     Post `gorm:"foreignKey:PostID" json:"-"`
	AuthorID int  `gorm:"index" json:"author_id"`
	Author   User `gorm:"foreignKey:AuthorID" json:"author"`

	Body string `gorm:"type:text;not null" json:"body"`

	VoteStatus int `gorm:"default:0" json:"vote_status"`
	ReplyCount int `gorm:"default:0" json:"reply_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
