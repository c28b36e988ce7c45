package services

import (
	"errors"

	"filepower/backend/app/models"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrForbidden          = errors.New("forbidden")
	ErrTooLarge           = errors.New("file too large")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Actor is the signed-in user a mutation is attributed to.
type Actor struct {
	ID    string
	Email string
	Role  string
}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

// Result is returned by every mutation: the record it touched and the
// folders whose listing changed. A nil entry in Affected is the root.
type Result[T any] struct {
	Record   T
	Affected []*string
}

func affected(ids ...*string) []*string {
	out := make([]*string, 0, len(ids))
	seen := make(map[string]bool)
	for _, id := range ids {
		key := "\x00root"
		if id != nil {
			key = *id
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, id)
	}
	return out
}
