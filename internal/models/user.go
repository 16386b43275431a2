package models

import (
	"time"
)

// User is an account holding a monetary balance. Users are never hard-deleted,
// and Balance is mutated only through the ledger engine, never by direct writes.
type User struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Handle    string    `gorm:"uniqueIndex;not null" json:"handle"`
	Password  string    `gorm:"not null" json:"-"`
	Role      string    `gorm:"not null;default:'USER'" json:"role"`
	Balance   float64   `gorm:"not null;default:0" json:"balance"`
	Family    string    `json:"family,omitempty"`
	Class     string    `json:"class,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RefreshToken is a persisted refresh token bound to a user session.
type RefreshToken struct {
	ID        uint      `gorm:"primarykey"`
	Token     string    `gorm:"uniqueIndex;not null"`
	UserID    uint      `gorm:"not null;index"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}
