// Package signer builds and signs the short-lived identity assertion that is
// exchanged for an access token. Every assertion carries a fresh jti so a
// retried exchange never replays a previous assertion.
package signer

import (
	"context"
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/viant/afs"
)

// DefaultTTL bounds the assertion validity window.
const DefaultTTL = 5 * time.Minute

// DefaultAlgorithm is the signing algorithm used unless configured otherwise.
const DefaultAlgorithm = "RS256"

// Config defines the claim set and key material for assertion signing.
type Config struct {
	Claims        map[string]interface{} `yaml:"claims,omitempty" json:"claims,omitempty"`
	Issuer        string                 `yaml:"issuer,omitempty" json:"issuer,omitempty" long:"issuer" description:"assertion iss claim"`
	Subject       string                 `yaml:"subject,omitempty" json:"subject,omitempty" long:"subject" description:"assertion sub claim"`
	Audience      string                 `yaml:"audience,omitempty" json:"audience,omitempty" long:"audience" description:"assertion aud claim"`
	Algorithm     string                 `yaml:"algorithm,omitempty" json:"algorithm,omitempty" long:"algorithm" description:"signing algorithm"`
	TTL           time.Duration          `yaml:"ttl,omitempty" json:"ttl,omitempty" long:"assertion-ttl" description:"assertion validity window"`
	PrivateKey    string                 `yaml:"privateKey,omitempty" json:"privateKey,omitempty"`
	PrivateKeyURL string                 `yaml:"privateKeyURL,omitempty" json:"privateKeyURL,omitempty" long:"private-key-url" description:"PEM private key location"`
	PublicKey     string                 `yaml:"publicKey,omitempty" json:"publicKey,omitempty"`
	PublicKeyURL  string                 `yaml:"publicKeyURL,omitempty" json:"publicKeyURL,omitempty" long:"public-key-url" description:"PEM public key location"`
}

// Init fills zero values with defaults.
func (c *Config) Init() {
	if c.Algorithm == "" {
		c.Algorithm = DefaultAlgorithm
	}
	if c.TTL <= 0 {
		c.TTL = DefaultTTL
	}
}

// Validate checks that key material is configured.
func (c *Config) Validate() error {
	if c.PrivateKey == "" && c.PrivateKeyURL == "" {
		return fmt.Errorf("signer: private key was empty")
	}
	if c.PublicKey == "" && c.PublicKeyURL == "" {
		return fmt.Errorf("signer: public key was empty")
	}
	return nil
}

// SigningError indicates a key or claim configuration defect. Exchange cycles
// treat it as non-retryable.
type SigningError struct {
	Cause error
}

// Error implements error.
func (e *SigningError) Error() string {
	return fmt.Sprintf("signing failed: %v", e.Cause)
}

// Unwrap returns the underlying cause.
func (e *SigningError) Unwrap() error {
	return e.Cause
}

// Signer signs assertions and verifies its own output against the public key
// before releasing it, so a key mismatch is caught locally instead of as an
// opaque exchange rejection.
type Signer struct {
	config     *Config
	method     jwt.SigningMethod
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
}

// New creates a Signer, loading PEM key material from the configured inline
// values or URLs.
func New(ctx context.Context, config *Config) (*Signer, error) {
	config.Init()
	if err := config.Validate(); err != nil {
		return nil, &SigningError{Cause: err}
	}
	method := jwt.GetSigningMethod(config.Algorithm)
	if _, ok := method.(*jwt.SigningMethodRSA); !ok {
		return nil, &SigningError{Cause: fmt.Errorf("unsupported algorithm: %v", config.Algorithm)}
	}
	fs := afs.New()
	privatePEM := []byte(config.PrivateKey)
	if len(privatePEM) == 0 {
		data, err := fs.DownloadWithURL(ctx, config.PrivateKeyURL)
		if err != nil {
			return nil, &SigningError{Cause: fmt.Errorf("failed to load private key from %v: %w", config.PrivateKeyURL, err)}
		}
		privatePEM = data
	}
	publicPEM := []byte(config.PublicKey)
	if len(publicPEM) == 0 {
		data, err := fs.DownloadWithURL(ctx, config.PublicKeyURL)
		if err != nil {
			return nil, &SigningError{Cause: fmt.Errorf("failed to load public key from %v: %w", config.PublicKeyURL, err)}
		}
		publicPEM = data
	}
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privatePEM)
	if err != nil {
		return nil, &SigningError{Cause: fmt.Errorf("invalid private key: %w", err)}
	}
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicPEM)
	if err != nil {
		return nil, &SigningError{Cause: fmt.Errorf("invalid public key: %w", err)}
	}
	return &Signer{
		config:     config,
		method:     method,
		privateKey: privateKey,
		publicKey:  publicKey,
	}, nil
}

// Sign builds the claim set with a fresh jti, signs it and verifies the
// result with the public key. Each call yields a distinct assertion.
func (s *Signer) Sign(ctx context.Context) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{}
	for key, value := range s.config.Claims {
		claims[key] = value
	}
	if s.config.Issuer != "" {
		claims["iss"] = s.config.Issuer
	}
	if s.config.Subject != "" {
		claims["sub"] = s.config.Subject
	}
	if s.config.Audience != "" {
		claims["aud"] = s.config.Audience
	}
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(s.config.TTL).Unix()
	claims["jti"] = uuid.New().String()

	token := jwt.NewWithClaims(s.method, claims)
	assertion, err := token.SignedString(s.privateKey)
	if err != nil {
		return "", &SigningError{Cause: err}
	}
	if err := s.verify(assertion); err != nil {
		return "", &SigningError{Cause: err}
	}
	return assertion, nil
}

func (s *Signer) verify(assertion string) error {
	parsed, err := jwt.Parse(assertion, func(token *jwt.Token) (interface{}, error) {
		return s.publicKey, nil
	}, jwt.WithValidMethods([]string{s.config.Algorithm}))
	if err != nil {
		return fmt.Errorf("assertion verification failed: %w", err)
	}
	if !parsed.Valid {
		return fmt.Errorf("assertion verification failed")
	}
	return nil
}
