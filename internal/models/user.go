package models

import (
	"time"
)

type User struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Profile holds the non-authentication attributes of a user. Exactly one row
// per user, created in the same transaction as the user itself.
type Profile struct {
	UserID     string    `json:"-" db:"user_id"`
	Phone      *string   `json:"phone" db:"phone"`
	ProfilePic *string   `json:"profile_pic" db:"profile_pic"`
	Bio        *string   `json:"bio" db:"bio"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
