// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents a registered author. Users are created once at
// registration and never mutated or deleted afterwards.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"unique;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Name      string    `gorm:"not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
