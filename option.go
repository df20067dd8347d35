package jwtbearer

import (
	"time"

	"go.uber.org/zap"

	"github.com/viant/jwtbearer/store"
)

// Option customizes a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for background refresh outcomes.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithAsserter sets a custom assertion signer.
func WithAsserter(asserter Asserter) Option {
	return func(m *Manager) {
		m.asserter = asserter
	}
}

// WithExchanger sets a custom token exchange client.
func WithExchanger(exchanger Exchanger) Option {
	return func(m *Manager) {
		m.exchanger = exchanger
	}
}

// WithStore sets a persistence layer for the managed token; the manager
// restores a persisted token on construction, saves on successful refresh and
// clears on revoke.
func WithStore(aStore store.Store) Option {
	return func(m *Manager) {
		m.store = aStore
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}
