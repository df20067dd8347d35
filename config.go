package jwtbearer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/viant/afs"
	"github.com/viant/scy"
	_ "github.com/viant/scy/kms/blowfish"

	"github.com/viant/jwtbearer/backoff"
	"github.com/viant/jwtbearer/signer"
)

const (
	// DefaultCheckInterval is the freshness scheduler period.
	DefaultCheckInterval = 60 * time.Second

	// DefaultMinutesUntilTokenRefresh is the freshness threshold applied when
	// none is configured.
	DefaultMinutesUntilTokenRefresh = 5
)

// AuthConfig identifies the client and the authorization endpoints.
type AuthConfig struct {
	ClientID        string        `yaml:"clientId" json:"clientId" short:"c" long:"client-id" description:"oauth client id"`
	ClientSecret    string        `yaml:"clientSecret,omitempty" json:"clientSecret,omitempty"`
	ClientSecretURL string        `yaml:"clientSecretURL,omitempty" json:"clientSecretURL,omitempty" long:"client-secret-url" description:"scy resource holding the client secret"`
	EncryptionKey   string        `yaml:"encryptionKey,omitempty" json:"encryptionKey,omitempty" short:"k" long:"key" description:"encryption key"`
	AuthEndpoint    string        `yaml:"authEndpoint" json:"authEndpoint" short:"a" long:"auth-endpoint" description:"token exchange endpoint"`
	RevokeEndpoint  string        `yaml:"revokeEndpoint,omitempty" json:"revokeEndpoint,omitempty" short:"r" long:"revoke-endpoint" description:"token revocation endpoint"`
	Timeout         time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty" long:"timeout" description:"exchange call timeout"`
}

// Config is the credential manager configuration surface.
type Config struct {
	Auth                     AuthConfig     `yaml:"auth" json:"auth"`
	Signing                  signer.Config  `yaml:"signing" json:"signing"`
	Backoff                  backoff.Config `yaml:"backoff,omitempty" json:"backoff,omitempty"`
	MinutesUntilTokenRefresh float64        `yaml:"minutesUntilTokenRefresh,omitempty" json:"minutesUntilTokenRefresh,omitempty" long:"minutes-until-token-refresh" description:"freshness threshold in minutes"`
	CheckInterval            time.Duration  `yaml:"checkInterval,omitempty" json:"checkInterval,omitempty" long:"check-interval" description:"freshness scheduler period"`
}

// Init fills zero values with defaults.
func (c *Config) Init() {
	if c.MinutesUntilTokenRefresh <= 0 {
		c.MinutesUntilTokenRefresh = DefaultMinutesUntilTokenRefresh
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = DefaultCheckInterval
	}
	c.Signing.Init()
	c.Backoff.Init()
}

// Validate checks config consistency.
func (c *Config) Validate() error {
	if c.Auth.ClientID == "" {
		return fmt.Errorf("auth.clientId was empty")
	}
	if c.Auth.ClientSecret == "" && c.Auth.ClientSecretURL == "" {
		return fmt.Errorf("auth.clientSecret was empty")
	}
	if c.Auth.AuthEndpoint == "" {
		return fmt.Errorf("auth.authEndpoint was empty")
	}
	if err := c.Signing.Validate(); err != nil {
		return err
	}
	return c.Backoff.Validate()
}

// RefreshThreshold returns the freshness threshold as a duration.
func (c *Config) RefreshThreshold() time.Duration {
	return time.Duration(c.MinutesUntilTokenRefresh * float64(time.Minute))
}

// ResolveSecrets loads the client secret from its scy resource when only a
// URL was configured.
func (c *Config) ResolveSecrets(ctx context.Context) error {
	if c.Auth.ClientSecret != "" || c.Auth.ClientSecretURL == "" {
		return nil
	}
	secrets := scy.New()
	resource := scy.NewResource("", c.Auth.ClientSecretURL, c.Auth.EncryptionKey)
	secret, err := secrets.Load(ctx, resource)
	if err != nil {
		return fmt.Errorf("failed to load client secret from %v: %w", c.Auth.ClientSecretURL, err)
	}
	c.Auth.ClientSecret = secret.String()
	return nil
}

// LoadConfig reads a JSON config document from the given URL.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %v: %w", URL, err)
	}
	config := &Config{}
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config %v: %w", URL, err)
	}
	config.Init()
	return config, nil
}
