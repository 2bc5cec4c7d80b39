// Package model defines database models
package model

type User struct {
	ID           string `gorm:"primaryKey"`
	Username     string `gorm:"unique;not null"`
	Email        string `gorm:"not null"`
	PasswordHash string `gorm:"not null"`

	Videos []Video `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
