// Package domain contains entity types without logic, just meta-data
// and construction-time validation.
package domain

import "errors"

const entityIDLen = 24

var (
	ErrMissingID   = errors.New("id missing or not a string")
	ErrBadIDFormat = errors.New("id must be a 24-character hex string")
)

// UserID is the upstream account identifier (a Mongo-style object id).
type UserID string

// OnlineUser is a denormalized snapshot of a user's identity taken at join
// time. It is not kept in sync with later profile edits.
type OnlineUser struct {
	ID    UserID `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewOnlineUser is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewOnlineUser(id, name, email string) (OnlineUser, error) {
	if err := ValidateEntityID(id); err != nil {
		return OnlineUser{}, err
	}
	return OnlineUser{ID: UserID(id), Name: name, Email: email}, nil
}

// ValidateEntityID checks the strict identifier format shared by users,
// projects and workspaces: exactly 24 hex characters.
func ValidateEntityID(id string) error {
	if id == "" {
		return ErrMissingID
	}
	if len(id) != entityIDLen {
		return ErrBadIDFormat
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return ErrBadIDFormat
		}
	}
	return nil
}
