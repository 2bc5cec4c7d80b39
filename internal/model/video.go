package model

import "time"

type Video struct {
	ID     uint   `gorm:"primaryKey;autoIncrement;index" json:"id"`
	UserID string `gorm:"not null;index" json:"-"`

	Title string `gorm:"size:255;not null" json:"title"`

	// Blobs live in the object store, the record only keeps their keys.
	// Full URLs get built per request because they depend on the host
	// the client reached us through
	VideoKey string  `gorm:"not null" json:"-"`
	ThumbKey *string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}
