package jwtbearer

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/jwtbearer/exchange"
)

func TestManager_TokenSource(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	exchanger := &fakeExchanger{fallback: okResult("tok1", 3600)}
	manager := newTestManager(t, exchanger, WithClock(clock.Now))

	source := manager.TokenSource(context.Background())

	// first use acquires the token
	token, err := source.Token()
	require.Nil(t, err)
	assert.Equal(t, "tok1", token.AccessToken)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.Equal(t, 1, exchanger.exchangeCalls())

	// fresh token is served without another exchange
	token, err = source.Token()
	require.Nil(t, err)
	assert.Equal(t, "tok1", token.AccessToken)
	assert.Equal(t, 1, exchanger.exchangeCalls())

	// inside the freshness threshold the source refreshes
	clock.Advance(3595001 * time.Millisecond)
	_, err = source.Token()
	require.Nil(t, err)
	assert.Equal(t, 2, exchanger.exchangeCalls())
}

func TestManager_TokenSourceServesValidTokenOnRefreshFailure(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	exchanger := &fakeExchanger{
		script:   []exchangeResult{okResult("tok1", 3600)},
		fallback: exchangeResult{err: &exchange.TransportError{URL: "http://auth", StatusCode: http.StatusBadGateway}},
	}
	manager := newTestManager(t, exchanger, WithClock(clock.Now))
	source := manager.TokenSource(context.Background())

	_, err := source.Token()
	require.Nil(t, err)

	// inside the threshold but not expired: the failed refresh is absorbed
	// and the current token keeps being served
	clock.Advance(3595001 * time.Millisecond)
	token, err := source.Token()
	require.Nil(t, err)
	assert.Equal(t, "tok1", token.AccessToken)

	// once the token expires a failing refresh surfaces the error
	clock.Advance(10 * time.Second)
	_, err = source.Token()
	require.NotNil(t, err)
	var acquisitionErr *AcquisitionError
	assert.ErrorAs(t, err, &acquisitionErr)
}

func TestManager_TokenSourceAfterRevoke(t *testing.T) {
	exchanger := &fakeExchanger{fallback: okResult("tok1", 3600)}
	manager := newTestManager(t, exchanger)
	source := manager.TokenSource(context.Background())

	_, err := source.Token()
	require.Nil(t, err)
	require.Nil(t, manager.Revoke(context.Background()))

	_, err = source.Token()
	assert.ErrorIs(t, err, ErrRevoked)
}
