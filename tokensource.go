package jwtbearer

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// tokenSource adapts a Manager to oauth2.TokenSource so the managed
// credential plugs into oauth2.NewClient and friends.
type tokenSource struct {
	ctx     context.Context
	manager *Manager
}

// TokenSource returns an oauth2.TokenSource backed by the manager. The source
// serves the current token while it is outside the freshness threshold and
// refreshes it otherwise.
func (m *Manager) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &tokenSource{ctx: ctx, manager: m}
}

// Token implements oauth2.TokenSource. A failed refresh is surfaced only when
// no valid token is held; while the current token has not expired it keeps
// being served so callers stay authenticated through transient outages.
func (ts *tokenSource) Token() (*oauth2.Token, error) {
	m := ts.manager
	refreshErr := m.RefreshIfExpiring(ts.ctx)
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.revoked {
		return nil, ErrRevoked
	}
	if m.token != nil && m.token.Valid(m.now()) {
		if refreshErr != nil {
			m.logger.Warn("failed to refresh token, serving current one", zap.Error(refreshErr))
		}
		return m.token.OAuth2Token(), nil
	}
	if refreshErr != nil {
		return nil, refreshErr
	}
	return nil, ErrNotAuthenticated
}
