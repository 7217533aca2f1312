package model

import "time"

// PasswordReset holds the hashed 6-digit reset code for an email. At most
// one row per email exists at any time, a new request overwrites the old
// one. Rows older than the reset TTL are dead and get cleaned up.
type PasswordReset struct {
	Email     string `gorm:"primaryKey"`
	CodeHash  string `gorm:"not null"`
	CreatedAt time.Time
}
