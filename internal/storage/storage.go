// Package storage holds what the session stores share.
package storage

import (
	"errors"

	"github.com/jaminalder/tictactoe-rounds/internal/domain"
)

var (
	// ErrSessionNotFound is returned by stores when no snapshot exists for an id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrConflict is returned when an update keeps losing to concurrent writers.
	ErrConflict = errors.New("session changed concurrently")
)

// UpdateFunc receives the stored snapshot, with found=false when there is
// none, and returns the replacement and whether it should be written.
// Stores may call it more than once per update.
type UpdateFunc func(m domain.Match, found bool) (domain.Match, bool)
