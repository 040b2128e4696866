package models

import "time"

type Role struct {
	ID          int       `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description *string   `json:"description" db:"description"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// UserRole maps one user to one role. A pair only ever gets a single row:
// revoking flips is_active off, re-assigning flips it back on and refreshes
// the timestamps, so the assignment history survives role churn.
type UserRole struct {
	ID         int        `json:"id" db:"id"`
	UserID     string     `json:"user_id" db:"user_id"`
	RoleID     int        `json:"role_id" db:"role_id"`
	IsActive   bool       `json:"is_active" db:"is_active"`
	AssignedAt time.Time  `json:"assigned_at" db:"assigned_at"`
	RevokedAt  *time.Time `json:"revoked_at" db:"revoked_at"`
	AssignedBy *string    `json:"assigned_by" db:"assigned_by"`
	Note       *string    `json:"note" db:"note"`
}

const (
	DefaultMemberRoleSlug = "member"
	AdminRoleSlug         = "admin"
)
