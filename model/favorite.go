package model

import "time"

// Favorite is a saved asteroid for one user. The composite unique index
// on (user_id, asteroid_id) is what makes store an upsert and backstops
// the toggle race.
type Favorite struct {
	ID         uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     string  `gorm:"uniqueIndex:idx_user_asteroid;not null" json:"-"`
	AsteroidID string  `gorm:"uniqueIndex:idx_user_asteroid;not null" json:"asteroid_id"`
	Name       string  `gorm:"not null" json:"name"`
	Type       *string `json:"type"`
	Distance   *string `json:"distance"`
	Value      *string `json:"value"`
	Notes      *string `json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
