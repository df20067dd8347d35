package jwtbearer

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Start launches the freshness scheduler: a periodic check that refreshes the
// token when it is inside the configured threshold of expiry. The loop stops
// when ctx is cancelled, Close is called, or the token is revoked. The
// scheduler never retries on its own; retry discipline belongs to the
// exchange cycle. A failed background refresh is logged and the previous
// token stays in service.
func (m *Manager) Start(ctx context.Context) {
	m.schedulerMu.Lock()
	defer m.schedulerMu.Unlock()
	if m.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	go m.refreshLoop(ctx, m.done)
}

func (m *Manager) refreshLoop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(m.config.CheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.RefreshIfExpiring(ctx); err != nil {
				if errors.Is(err, ErrRevoked) {
					return
				}
				m.logger.Warn("background token refresh failed", zap.Error(err))
			}
		}
	}
}

// Close stops the freshness scheduler and waits for it to exit. It is safe to
// call when the scheduler was never started.
func (m *Manager) Close() error {
	m.schedulerMu.Lock()
	defer m.schedulerMu.Unlock()
	if m.cancel == nil {
		return nil
	}
	m.cancel()
	<-m.done
	m.cancel = nil
	m.done = nil
	return nil
}
