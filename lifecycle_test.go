package jwtbearer

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/jwtbearer/backoff"
	"github.com/viant/jwtbearer/mock"
	"github.com/viant/jwtbearer/signer"
)

// Full lifecycle against the mock authorization service: real signer, real
// exchange client, acquisition, read, revoke.
func TestManager_Lifecycle(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.Nil(t, err)
	privatePEM := string(pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}))
	publicDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.Nil(t, err)
	publicPEM := string(pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: publicDER,
	}))

	service, err := mock.New(mock.WithExpiresIn(3600))
	require.Nil(t, err)
	defer service.Close()

	config := &Config{
		Auth: AuthConfig{
			ClientID:       service.ClientID,
			ClientSecret:   service.ClientSecret,
			AuthEndpoint:   service.TokenURL(),
			RevokeEndpoint: service.RevokeURL(),
		},
		Signing: signer.Config{
			Issuer:     service.ClientID,
			Subject:    service.ClientID,
			Audience:   service.TokenURL(),
			PrivateKey: privatePEM,
			PublicKey:  publicPEM,
		},
		Backoff: backoff.Config{
			InitialDelay: time.Millisecond,
			MaxDelay:     5 * time.Millisecond,
			CallRetryMax: 4,
		},
		MinutesUntilTokenRefresh: 5,
	}

	ctx := context.Background()
	manager, err := New(ctx, config)
	require.Nil(t, err)

	token, err := manager.Refresh(ctx)
	require.Nil(t, err)
	assert.Equal(t, 3600*time.Second, token.ExpiresAt.Sub(token.IssuedAt))

	// the minted access token is a JWT signed by the mock service
	parsed, err := jwt.Parse(token.AccessToken, func(parsedToken *jwt.Token) (interface{}, error) {
		return &service.PrivateKey.PublicKey, nil
	}, jwt.WithValidMethods([]string{"RS256"}))
	require.Nil(t, err)
	assert.True(t, parsed.Valid)

	current, err := manager.Token(ctx)
	require.Nil(t, err)
	assert.Equal(t, token.AccessToken, current)

	require.Nil(t, manager.Revoke(ctx))
	assert.Equal(t, []string{token.AccessToken}, service.Revoked())
	_, err = manager.Token(ctx)
	assert.ErrorIs(t, err, ErrRevoked)
}
