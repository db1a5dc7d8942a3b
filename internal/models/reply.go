package models

import "time"

// MaxReplyDepth caps the reply tree. Replies are an adjacency list loaded one
// level at a time; creating a reply below the cap is rejected at the handler.
const MaxReplyDepth = 6

type AnswerReply struct {
	ID            int  `gorm:"primaryKey" json:"id"`
	AnswerID      int  `gorm:"index" json:"answer_id"`
	ParentReplyID *int `gorm:"index" json:"parent_reply_id,omitempty"` // nil for top-level replies
	Depth         int  `gorm:"default:1" json:"depth"`
	AuthorID      int  `gorm:"index" json:"author_id"`
	Author        User `gorm:"foreignKey:AuthorID" json:"author"`

	Body string `gorm:"type:text;not null" json:"body"`

	VoteStatus int `gorm:"default:0" json:"vote_status"`
	ChildCount int `gorm:"default:0" json:"child_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
