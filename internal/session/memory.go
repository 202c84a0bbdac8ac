package session

import (
	"context"
	"sync"
	"time"
)

// Memory is the in-process Storage driver. Default for tests and single
// instance deployments without DB_DSN/REDIS_ADDR.
type Memory struct {
	mu   sync.RWMutex
	recs map[string]*Record
}

func NewMemory() *Memory {
	return &Memory{recs: make(map[string]*Record)}
}

func (m *Memory) Get(_ context.Context, key string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.recs[key]
	if !ok {
		return nil, ErrNoSession
	}
	if time.Since(rec.SavedAt) > TTL {
		return nil, ErrNoSession
	}
	cp := *rec
	return &cp, nil
}

func (m *Memory) Put(_ context.Context, key string, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	if cp.SavedAt.IsZero() {
		cp.SavedAt = time.Now()
	}
	m.recs[key] = &cp
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.recs, key)
	return nil
}
