package models

import "time"

type User struct {
	ID          int    `gorm:"primaryKey" json:"id"`
	Username    string `gorm:"unique;not null" json:"username"`
	Email       string `gorm:"unique;not null" json:"email"`
	Password    string `gorm:"not null" json:"-"`
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio"`
	Avatar      string `json:"avatar"` // Stores avatar ID (1-6) or URL

	Phone         string `gorm:"index" json:"-"`
	PhoneVerified bool   `gorm:"default:false" json:"phone_verified"`

	Role       string `gorm:"default:member" json:"role"`   // "member" or "admin"
	Curriculum string `gorm:"default:DP" json:"curriculum"` // "DP" or "MYP"

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Curriculum  string `json:"curriculum"`
	Avatar      string `json:"avatar"` // Optional avatar selection
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token   string `json:"token"`
	User    User   `json:"user"`
	Message string `json:"message"`
}
