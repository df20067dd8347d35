// Package store is a pluggable persistence layer for the managed token.
// The in-memory default is fine for long-lived services; the file store lets
// short-lived CLI invocations reuse an unexpired token across restarts.
package store

import (
	"context"
	"sync"
	"time"
)

// Entry is the persisted token snapshot.
type Entry struct {
	AccessToken string    `json:"accessToken"`
	IssuedAt    time.Time `json:"issuedAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Store persists the managed token between refreshes.
type Store interface {
	Lookup(ctx context.Context) (*Entry, bool, error)
	Save(ctx context.Context, entry *Entry) error
	Clear(ctx context.Context) error
}

type memoryStore struct {
	mu    sync.RWMutex
	entry *Entry
}

func (m *memoryStore) Lookup(ctx context.Context) (*Entry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.entry == nil {
		return nil, false, nil
	}
	entry := *m.entry
	return &entry, true, nil
}

func (m *memoryStore) Save(ctx context.Context, entry *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := *entry
	m.entry = &snapshot
	return nil
}

func (m *memoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entry = nil
	return nil
}

// NewMemoryStore returns an in-memory Store.
func NewMemoryStore() Store {
	return &memoryStore{}
}
