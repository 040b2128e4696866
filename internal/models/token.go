package models

import (
	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims is the payload of both access and refresh tokens. Roles is a
// snapshot of the active role slugs at issuance time, carried for display
// only; authorization decisions re-read the ledger.
type Claims struct {
	jwt.RegisteredClaims
	TokenType string   `json:"token_type"`
	UserID    string   `json:"user_id"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	Roles     []string `json:"roles"`
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}
