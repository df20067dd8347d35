// Package exchange performs the network leg of the JWT-bearer flow: trading a
// signed assertion for an access token and revoking a previously issued one.
// Both calls are single fallible operations; retry discipline lives with the
// caller.
package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// GrantType identifies the JWT-bearer grant on the token exchange request.
const GrantType = "urn:ietf:params:oauth:grant-type:jwt-bearer"

// DefaultTimeout bounds a single exchange or revoke round-trip.
const DefaultTimeout = 30 * time.Second

// maxBodySize caps how much of a response body is read.
const maxBodySize = 1 << 20

// TransportError indicates the exchange endpoint could not be reached or
// answered outside the success range. It is retryable within the caller's
// backoff budget.
type TransportError struct {
	URL        string
	StatusCode int
	Cause      error
}

// Error implements error.
func (e *TransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("transport error calling %v: %v", e.URL, e.Cause)
	}
	return fmt.Sprintf("transport error calling %v: status %v", e.URL, e.StatusCode)
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// MalformedResponseError indicates the exchange endpoint answered with a
// success status but the body was not a usable token response. Callers treat
// it the same as a transport failure.
type MalformedResponseError struct {
	Reason string
	Body   string
}

// Error implements error.
func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed token response: %v", e.Reason)
}

// Response is the token exchange response shape.
type Response struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope,omitempty"`
}

// Client exchanges signed assertions for access tokens against a fixed
// authorization endpoint pair.
type Client struct {
	tokenURL     string
	revokeURL    string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	timeout      time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for both endpoints.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the per-call timeout. It takes effect regardless of
// option order, including on a client supplied via WithHTTPClient.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// New creates an exchange Client.
func New(tokenURL, revokeURL, clientID, clientSecret string, options ...Option) *Client {
	ret := &Client{
		tokenURL:     tokenURL,
		revokeURL:    revokeURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: DefaultTimeout},
	}
	for _, option := range options {
		option(ret)
	}
	if ret.timeout > 0 {
		ret.httpClient.Timeout = ret.timeout
	}
	return ret
}

// Exchange trades a signed assertion for an access token. A non-success
// status or unreachable endpoint yields *TransportError; a success status
// with an unusable body yields *MalformedResponseError.
func (c *Client) Exchange(ctx context.Context, assertion string) (*Response, error) {
	form := url.Values{
		"grant_type":    []string{GrantType},
		"client_id":     []string{c.clientID},
		"client_secret": []string{c.clientSecret},
		"assertion":     []string{assertion},
	}
	body, err := c.postForm(ctx, c.tokenURL, form)
	if err != nil {
		return nil, err
	}
	response := &Response{}
	if err := json.Unmarshal(body, response); err != nil {
		return nil, &MalformedResponseError{Reason: err.Error(), Body: string(body)}
	}
	if response.AccessToken == "" {
		return nil, &MalformedResponseError{Reason: "response was missing access_token", Body: string(body)}
	}
	return response, nil
}

// Revoke asks the authorization endpoint to destroy the given access token.
// Any success status counts as revoked; the server's stated result is not
// inspected.
func (c *Client) Revoke(ctx context.Context, accessToken string) error {
	form := url.Values{
		"client_id":     []string{c.clientID},
		"client_secret": []string{c.clientSecret},
		"token":         []string{accessToken},
	}
	_, err := c.postForm(ctx, c.revokeURL, form)
	return err
}

func (c *Client) postForm(ctx context.Context, URL string, form url.Values) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, URL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &TransportError{URL: URL, Cause: err}
	}
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	request.Header.Set("Accept", "application/json")
	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, &TransportError{URL: URL, Cause: err}
	}
	defer response.Body.Close()
	body, err := io.ReadAll(io.LimitReader(response.Body, maxBodySize))
	if err != nil {
		return nil, &TransportError{URL: URL, Cause: err}
	}
	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return nil, &TransportError{URL: URL, StatusCode: response.StatusCode}
	}
	return body, nil
}
