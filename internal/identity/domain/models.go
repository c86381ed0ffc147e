// Package domain contains core types for the identity service.
package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// User represents a platform account. Accounts are managed upstream; the
// verification flow only reads them.
type User struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	Username  string       `gorm:"type:text;not null;uniqueIndex"`
	FirstName string       `gorm:"column:first_name;type:text;not null;default:''"`
	LastName  string       `gorm:"column:last_name;type:text;not null;default:''"`
	Email     string       `gorm:"column:email;type:text;not null;default:''"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// Session represents a persisted login session for the push channel.
type Session struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	UserID    snowflake.ID `gorm:"column:user_id;not null;index"`
	TokenHash string       `gorm:"column:token_hash;type:text;not null;uniqueIndex"`
	ExpiresAt time.Time    `gorm:"column:expires_at;not null;index"`
	CreatedAt time.Time    `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Session) TableName() string { return "sessions" }

var (
	ErrInvalidSession = errors.New("invalid_session")
	ErrSessionExpired = errors.New("session_expired")
)
