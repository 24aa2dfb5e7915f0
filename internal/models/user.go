package models

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// CurrentUser is the caller as described by the validated bearer token.
// Accounts live in the external identity provider; only the id is stored here.
type CurrentUser struct {
	ID         string   `json:"id"` // uuid ("sub")
	Email      string   `json:"email"`
	Role       UserRole `json:"role"`
	HasProfile bool     `json:"has_profile"`
}
