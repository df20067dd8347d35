package jwtbearer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/viant/jwtbearer/backoff"
	"github.com/viant/jwtbearer/exchange"
	"github.com/viant/jwtbearer/signer"
	"github.com/viant/jwtbearer/store"
)

// Asserter produces signed identity assertions; each call yields a fresh one.
type Asserter interface {
	Sign(ctx context.Context) (string, error)
}

// Exchanger performs the network legs of the flow.
type Exchanger interface {
	Exchange(ctx context.Context, assertion string) (*exchange.Response, error)
	Revoke(ctx context.Context, accessToken string) error
}

// Manager owns the managed token: it acquires it with a signed assertion,
// serves it to concurrent readers, refreshes it ahead of expiry and revokes
// it on demand. Readers never block on a refresh in progress; they keep
// receiving the last known valid token until the refresh completes.
type Manager struct {
	config    *Config
	asserter  Asserter
	exchanger Exchanger
	store     store.Store
	logger    *zap.Logger
	now       func() time.Time

	mu      sync.RWMutex
	token   *Token
	revoked bool

	// acquireMu serializes mutations (Refresh, Revoke); refreshing is the
	// single-flight guard that makes RefreshIfExpiring a cheap no-op while a
	// refresh is already under way.
	acquireMu  sync.Mutex
	refreshing atomic.Bool

	schedulerMu sync.Mutex
	cancel      context.CancelFunc
	done        chan struct{}
}

// New creates a Manager. The freshness scheduler is not running until Start
// is called.
func New(ctx context.Context, config *Config, options ...Option) (*Manager, error) {
	config.Init()
	if err := config.ResolveSecrets(ctx); err != nil {
		return nil, err
	}
	ret := &Manager{
		config: config,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, option := range options {
		option(ret)
	}
	if ret.asserter == nil {
		if err := config.Validate(); err != nil {
			return nil, err
		}
		aSigner, err := signer.New(ctx, &config.Signing)
		if err != nil {
			return nil, err
		}
		ret.asserter = aSigner
	}
	if ret.exchanger == nil {
		var clientOptions []exchange.Option
		if config.Auth.Timeout > 0 {
			clientOptions = append(clientOptions, exchange.WithTimeout(config.Auth.Timeout))
		}
		ret.exchanger = exchange.New(config.Auth.AuthEndpoint, config.Auth.RevokeEndpoint,
			config.Auth.ClientID, config.Auth.ClientSecret, clientOptions...)
	}
	if ret.store != nil {
		entry, ok, err := ret.store.Lookup(ctx)
		switch {
		case err != nil:
			ret.logger.Warn("failed to restore cached token", zap.Error(err))
		case ok:
			ret.token = &Token{
				AccessToken: entry.AccessToken,
				IssuedAt:    entry.IssuedAt,
				ExpiresAt:   entry.ExpiresAt,
			}
		}
	}
	return ret, nil
}

// Token returns the current access token. It fails with ErrNotAuthenticated
// before the first successful exchange and with ErrRevoked after revocation.
func (m *Manager) Token(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.revoked {
		return "", ErrRevoked
	}
	if m.token == nil {
		return "", ErrNotAuthenticated
	}
	return m.token.AccessToken, nil
}

// Snapshot returns a copy of the current token and whether one is held.
func (m *Manager) Snapshot() (Token, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.token == nil {
		return Token{}, false
	}
	return *m.token, true
}

// Refresh runs one full exchange-with-backoff cycle and atomically replaces
// the managed token on success. On backoff exhaustion it returns
// *AcquisitionError and leaves any previous token untouched.
func (m *Manager) Refresh(ctx context.Context) (*Token, error) {
	m.acquireMu.Lock()
	defer m.acquireMu.Unlock()
	m.mu.RLock()
	revoked := m.revoked
	m.mu.RUnlock()
	if revoked {
		return nil, ErrRevoked
	}
	token, err := m.acquire(ctx)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	m.persist(ctx, token)
	snapshot := *token
	return &snapshot, nil
}

func (m *Manager) persist(ctx context.Context, token *Token) {
	if m.store == nil {
		return
	}
	entry := &store.Entry{
		AccessToken: token.AccessToken,
		IssuedAt:    token.IssuedAt,
		ExpiresAt:   token.ExpiresAt,
	}
	if err := m.store.Save(ctx, entry); err != nil {
		m.logger.Warn("failed to persist token", zap.Error(err))
	}
}

// RefreshIfExpiring refreshes the token when it is inside the configured
// freshness threshold of its expiry. It is a no-op that completes immediately
// when the token is fresh or another refresh is already in flight; repeated
// calls on a fresh token never trigger redundant exchanges.
func (m *Manager) RefreshIfExpiring(ctx context.Context) error {
	m.mu.RLock()
	revoked := m.revoked
	token := m.token
	m.mu.RUnlock()
	if revoked {
		return ErrRevoked
	}
	if token != nil && !token.ExpiresWithin(m.now(), m.config.RefreshThreshold()) {
		return nil
	}
	if !m.refreshing.CompareAndSwap(false, true) {
		return nil
	}
	defer m.refreshing.Store(false)
	_, err := m.Refresh(ctx)
	return err
}

// Revoke sends a revocation request for the current token. On transport
// success the token is considered destroyed regardless of the server's stated
// result. On transport failure it returns *RevocationError and the local
// token remains valid.
func (m *Manager) Revoke(ctx context.Context) error {
	m.acquireMu.Lock()
	defer m.acquireMu.Unlock()
	m.mu.RLock()
	revoked := m.revoked
	token := m.token
	m.mu.RUnlock()
	if revoked {
		return ErrRevoked
	}
	if token == nil {
		return ErrNotAuthenticated
	}
	if err := m.exchanger.Revoke(ctx, token.AccessToken); err != nil {
		return &RevocationError{Cause: err}
	}
	m.mu.Lock()
	m.revoked = true
	m.token = nil
	m.mu.Unlock()
	if m.store != nil {
		if err := m.store.Clear(ctx); err != nil {
			m.logger.Warn("failed to clear persisted token", zap.Error(err))
		}
	}
	m.logger.Info("token revoked")
	return nil
}

func (m *Manager) acquire(ctx context.Context) (*Token, error) {
	cycle := backoff.New(m.config.Backoff)
	var lastErr error
	for {
		token, err := m.attempt(ctx)
		if err == nil {
			return token, nil
		}
		var signingErr *signer.SigningError
		if errors.As(err, &signingErr) {
			// key or claim configuration defect, retrying cannot help
			return nil, err
		}
		lastErr = err
		m.logger.Warn("token exchange attempt failed",
			zap.Int("attempt", cycle.Attempts()), zap.Error(err))
		delay, ok := cycle.Next()
		if !ok {
			break
		}
		if err := sleep(ctx, delay); err != nil {
			lastErr = err
			break
		}
	}
	return nil, &AcquisitionError{Attempts: cycle.Attempts(), Cause: lastErr}
}

// attempt signs a fresh assertion and performs a single exchange; the
// assertion is never reused across attempts.
func (m *Manager) attempt(ctx context.Context) (*Token, error) {
	assertion, err := m.asserter.Sign(ctx)
	if err != nil {
		return nil, err
	}
	response, err := m.exchanger.Exchange(ctx, assertion)
	if err != nil {
		return nil, err
	}
	now := m.now()
	return &Token{
		AccessToken: response.AccessToken,
		IssuedAt:    now,
		ExpiresAt:   now.Add(time.Duration(response.ExpiresIn) * time.Second),
	}, nil
}

func sleep(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
