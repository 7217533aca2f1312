package model

import "time"

// AuthToken is a single opaque bearer session. Only the SHA-256 hash of
// the token ever touches the database. A nil ExpiresAt means the token
// never expires (register flow).
type AuthToken struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	UserID    string `gorm:"index;not null"`
	TokenHash string `gorm:"uniqueIndex;not null"`
	ExpiresAt *time.Time
	CreatedAt time.Time
}
