package models

import "time"

// User represents an account holder. Every income, expense and savings goal
// belongs to exactly one user.
type User struct {
	Base
	Username            string     `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email               string     `gorm:"size:255" json:"email"`
	Password            string     `gorm:"not null" json:"-"`
	IsActive            bool       `gorm:"default:true" json:"is_active"`
	RefreshTokenHash    string     `gorm:"size:64" json:"-"`
	FailedLoginAttempts int        `gorm:"default:0" json:"-"`
	LockedUntil         *time.Time `json:"-"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`
}
