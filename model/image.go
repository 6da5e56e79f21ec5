package model

import "time"

// Image is one gallery entry. ImageURL is the durable URL returned by the
// object store; the bytes themselves never touch this database. Position is
// the display rank within the owner's gallery - ascending, not necessarily
// dense (deletes leave gaps).
type Image struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	UserID    uint64    `gorm:"not null;index" json:"user_id"`
	Title     string    `gorm:"not null;size:255" json:"title"`
	ImageURL  string    `gorm:"not null;size:512" json:"image_url"`
	Position  int       `gorm:"not null;default:0" json:"order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
