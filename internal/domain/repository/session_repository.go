// Package repository defines the persistence ports of the domain layer.
package repository

import (
	"context"

	"vigil/internal/domain/entity"
	"vigil/internal/errors"
)

// ErrSessionNotFound is returned when no session has ever been persisted.
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository persists the logged-in flag and the authenticated profile
// across restarts. The flag and the profile are stored under independent keys
// but must always be written and cleared together.
type SessionRepository interface {
	// Load returns the persisted session. A store that holds no session
	// returns ErrSessionNotFound.
	Load(ctx context.Context) (*entity.Session, error)

	// Save atomically persists both the flag and the profile. Saving a
	// session that violates entity.Session.Valid is rejected.
	Save(ctx context.Context, session *entity.Session) error

	// Clear atomically removes both keys. Clearing an empty store is a no-op.
	Clear(ctx context.Context) error
}
