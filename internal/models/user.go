package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User is the relational user record (PostgreSQL). Content entities live
// elsewhere; the notification layer only needs identity and display fields.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"size:50;uniqueIndex"`
	Email     string    `json:"email" gorm:"uniqueIndex"`
	Avatar    string    `json:"avatar"`
	IsAdmin   bool      `json:"is_admin" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserCompact is the slim projection embedded in delivered notifications
type UserCompact struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}

// ToCompact returns the slim projection of a user
func (u *User) ToCompact() UserCompact {
	return UserCompact{ID: u.ID, Username: u.Username, Avatar: u.Avatar}
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID  uint   `json:"user_id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin,omitempty"`
	jwt.RegisteredClaims
}
