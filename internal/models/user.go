// Package models contains data models for the site server.
package models

import "time"

// User is the account row owned by the auth collaborator.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:uuid"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for the User model.
func (User) TableName() string {
	return "users"
}

// Principal is the resolved identity of the caller.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}
