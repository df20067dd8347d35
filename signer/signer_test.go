package signer

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKeyPair(t *testing.T) (privatePEM, publicPEM string, publicKey *rsa.PublicKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.Nil(t, err)
	privatePEM = string(pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}))
	publicDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.Nil(t, err)
	publicPEM = string(pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: publicDER,
	}))
	return privatePEM, publicPEM, &key.PublicKey
}

func TestSigner_Sign(t *testing.T) {
	privatePEM, publicPEM, publicKey := testKeyPair(t)
	ctx := context.Background()
	aSigner, err := New(ctx, &Config{
		Claims:     map[string]interface{}{"scope": "system/*.read"},
		Issuer:     "client-1",
		Subject:    "client-1",
		Audience:   "https://auth.example.com/token",
		PrivateKey: privatePEM,
		PublicKey:  publicPEM,
		TTL:        2 * time.Minute,
	})
	require.Nil(t, err)

	first, err := aSigner.Sign(ctx)
	require.Nil(t, err)
	second, err := aSigner.Sign(ctx)
	require.Nil(t, err)
	assert.NotEqual(t, first, second, "each assertion carries a fresh jti")

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(first, claims, func(token *jwt.Token) (interface{}, error) {
		return publicKey, nil
	}, jwt.WithValidMethods([]string{"RS256"}))
	require.Nil(t, err)
	assert.Equal(t, "client-1", claims["iss"])
	assert.Equal(t, "system/*.read", claims["scope"])
	assert.NotEmpty(t, claims["jti"])

	iat, ok := claims["iat"].(float64)
	require.True(t, ok)
	exp, ok := claims["exp"].(float64)
	require.True(t, ok)
	assert.Equal(t, float64(120), exp-iat)
}

func TestSigner_SignDistinctJti(t *testing.T) {
	privatePEM, publicPEM, publicKey := testKeyPair(t)
	ctx := context.Background()
	aSigner, err := New(ctx, &Config{PrivateKey: privatePEM, PublicKey: publicPEM})
	require.Nil(t, err)

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		assertion, err := aSigner.Sign(ctx)
		require.Nil(t, err)
		claims := jwt.MapClaims{}
		_, err = jwt.ParseWithClaims(assertion, claims, func(token *jwt.Token) (interface{}, error) {
			return publicKey, nil
		})
		require.Nil(t, err)
		jti, _ := claims["jti"].(string)
		assert.False(t, seen[jti], "jti reused across attempts")
		seen[jti] = true
	}
}

func TestSigner_KeyMismatch(t *testing.T) {
	privatePEM, _, _ := testKeyPair(t)
	_, otherPublicPEM, _ := testKeyPair(t)
	ctx := context.Background()
	aSigner, err := New(ctx, &Config{PrivateKey: privatePEM, PublicKey: otherPublicPEM})
	require.Nil(t, err)

	_, err = aSigner.Sign(ctx)
	require.NotNil(t, err)
	var signingErr *SigningError
	assert.ErrorAs(t, err, &signingErr)
}

func TestSigner_KeyFromURL(t *testing.T) {
	privatePEM, publicPEM, _ := testKeyPair(t)
	dir := t.TempDir()
	privatePath := filepath.Join(dir, "private.pem")
	publicPath := filepath.Join(dir, "public.pem")
	require.Nil(t, os.WriteFile(privatePath, []byte(privatePEM), 0600))
	require.Nil(t, os.WriteFile(publicPath, []byte(publicPEM), 0644))

	ctx := context.Background()
	aSigner, err := New(ctx, &Config{PrivateKeyURL: privatePath, PublicKeyURL: publicPath})
	require.Nil(t, err)
	assertion, err := aSigner.Sign(ctx)
	require.Nil(t, err)
	assert.NotEmpty(t, assertion)
}

func TestNew_Invalid(t *testing.T) {
	privatePEM, publicPEM, _ := testKeyPair(t)
	ctx := context.Background()
	testCases := []struct {
		description string
		config      *Config
	}{
		{description: "missing private key", config: &Config{PublicKey: publicPEM}},
		{description: "missing public key", config: &Config{PrivateKey: privatePEM}},
		{description: "unsupported algorithm", config: &Config{PrivateKey: privatePEM, PublicKey: publicPEM, Algorithm: "HS256"}},
		{description: "garbage private key", config: &Config{PrivateKey: "not a pem", PublicKey: publicPEM}},
	}
	for _, testCase := range testCases {
		_, err := New(ctx, testCase.config)
		assert.NotNil(t, err, testCase.description)
		var signingErr *SigningError
		assert.ErrorAs(t, err, &signingErr, testCase.description)
	}
}
