package mock

import (
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/viant/afs/url"
)

// AuthorizationService is a mock authorization server for the JWT-bearer
// flow. Zero-value handlers fall back to the defaults; tests may override
// TokenHandler or RevokeHandler for bespoke behavior.
type AuthorizationService struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	ExpiresIn    int
	PrivateKey   *rsa.PrivateKey

	TokenHandler  http.HandlerFunc
	RevokeHandler http.HandlerFunc

	mu          sync.Mutex
	tokenCalls  int
	revokeCalls int
	queued      []queuedResponse
	revoked     []string
	server      *httptest.Server
}

type queuedResponse struct {
	status int
	body   string
}

// Option customizes the mock service.
type Option func(*AuthorizationService)

// WithClientCredentials sets the expected client credentials.
func WithClientCredentials(clientID, clientSecret string) Option {
	return func(s *AuthorizationService) {
		s.ClientID = clientID
		s.ClientSecret = clientSecret
	}
}

// WithExpiresIn sets the expires_in value of minted tokens.
func WithExpiresIn(seconds int) Option {
	return func(s *AuthorizationService) {
		s.ExpiresIn = seconds
	}
}

// New starts a mock authorization service on an httptest server.
func New(options ...Option) (*AuthorizationService, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}
	ret := &AuthorizationService{
		ClientID:     "test_client_id",
		ClientSecret: "test_client_secret",
		ExpiresIn:    3600,
		PrivateKey:   privateKey,
	}
	for _, option := range options {
		option(ret)
	}
	ret.server = httptest.NewServer(&Handler{Service: ret})
	ret.Issuer = ret.server.URL
	return ret, nil
}

// TokenURL returns the token exchange endpoint.
func (s *AuthorizationService) TokenURL() string {
	return url.Join(s.Issuer, "token")
}

// RevokeURL returns the revocation endpoint.
func (s *AuthorizationService) RevokeURL() string {
	return url.Join(s.Issuer, "revoke")
}

// EnqueueResponse scripts the next token endpoint response; queued responses
// are served in order before the default minting behavior resumes.
func (s *AuthorizationService) EnqueueResponse(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queued = append(s.queued, queuedResponse{status: status, body: body})
}

// TokenCalls returns how many times the token endpoint was hit.
func (s *AuthorizationService) TokenCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokenCalls
}

// RevokeCalls returns how many times the revoke endpoint was hit.
func (s *AuthorizationService) RevokeCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revokeCalls
}

// Revoked returns the tokens submitted for revocation.
func (s *AuthorizationService) Revoked() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.revoked...)
}

func (s *AuthorizationService) dequeue() (queuedResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queued) == 0 {
		return queuedResponse{}, false
	}
	next := s.queued[0]
	s.queued = s.queued[1:]
	return next, true
}

// Close shuts the underlying httptest server down.
func (s *AuthorizationService) Close() {
	s.server.Close()
}
