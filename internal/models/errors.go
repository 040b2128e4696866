package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConflict signals a uniqueness violation (role name/slug, user email).
	ErrConflict = errors.New("resource already exists")
	// ErrRoleInactive signals an operation against a soft-disabled role.
	ErrRoleInactive = errors.New("role is inactive")
	// ErrInvalidCredentials is deliberately generic: callers must not learn
	// which of identifier/password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken covers malformed, expired and blacklisted tokens alike.
	ErrInvalidToken = errors.New("invalid token")
	ErrNotFound     = errors.New("not found")
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries field-scoped messages back to the caller.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}
