// Package storage persists decks, study sessions and user statistics
// behind a small key-value port.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key or entity does not exist.
var ErrNotFound = errors.New("not found")

// Keys used by the repositories.
const (
	DecksKey      = "flashcard-decks"
	FirstVisitKey = "flashcard-first-visit"
	SessionsKey   = "flashcard-study-sessions"
	UserStatsKey  = "flashcard-user-stats"
)

// KV is a byte-oriented key-value store.
type KV interface {
	// Get returns ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
