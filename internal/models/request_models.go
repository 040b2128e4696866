package models

type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// LoginRequest accepts either a username or an email in Username; the
// service resolves emails to usernames before verifying the credential.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

type LogoutRequest struct {
	Refresh string `json:"refresh"`
}

type CreateRoleRequest struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description"`
}

type SetRoleActiveRequest struct {
	Active *bool `json:"active"`
}

type AssignRoleRequest struct {
	UserID string  `json:"user_id"`
	Note   *string `json:"note"`
}

type RevokeRoleRequest struct {
	UserID string `json:"user_id"`
}

type UpdateProfileRequest struct {
	Phone *string `json:"phone"`
	Bio   *string `json:"bio"`
}

// MeResponse is the session-read body: identity plus a live role list
// re-queried from the ledger, never taken from the token snapshot.
type MeResponse struct {
	ID        string   `json:"id"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Profile   *Profile `json:"profile"`
	Roles     []*Role  `json:"roles"`
}
