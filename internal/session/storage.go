// Package session holds the persisted auth state for the three actors
// (admin, customer, supplier) keyed by the sid cookie. Persistence sits
// behind the Storage port so drivers (memory, sqlite, redis) can be swapped
// in tests and deployments.
package session

import (
	"context"
	"errors"
	"time"
)

// TTL matches the 7-day token cookie expiry.
const TTL = 7 * 24 * time.Hour

var ErrNoSession = errors.New("session: not found")

// Record is one actor's persisted session state. Identity is the raw JSON
// of the actor profile so the port stays shape-agnostic.
type Record struct {
	Token    string    `json:"token"`
	Identity []byte    `json:"identity"`
	SavedAt  time.Time `json:"savedAt"`
}

// Storage is the persistence port. Keys are "<actor>:<sid>".
type Storage interface {
	Get(ctx context.Context, key string) (*Record, error)
	Put(ctx context.Context, key string, rec *Record) error
	Delete(ctx context.Context, key string) error
}
