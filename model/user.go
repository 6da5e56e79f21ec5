package model

import "time"

// User is an account record. Email and Phone are optional but must be unique
// when present (nullable columns keep the unique index sparse); at least one
// of the two is required at registration, which the service layer enforces.
type User struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null;size:50" json:"username"`
	Email        *string   `gorm:"uniqueIndex;size:255" json:"email,omitempty"`
	Phone        *uint64   `gorm:"uniqueIndex" json:"phone,omitempty"`
	PasswordHash string    `gorm:"not null;size:100" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
