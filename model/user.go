// Package model defines database models
package model

import "time"

type User struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Email        string    `gorm:"unique; not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	AuthTokens []AuthToken `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Favorites  []Favorite  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
