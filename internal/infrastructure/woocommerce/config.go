package woocommerce

import (
	"errors"
	"net/url"
	"strings"
	"time"

	domain "github.com/revo/commerce-sync/internal/domain/sync"
)

const (
	// DefaultTimeout is the per-attempt HTTP timeout
	DefaultTimeout = 15 * time.Second
	// DefaultMaxAttempts is how many times one logical request is tried
	DefaultMaxAttempts = 3
)

// Errors for store client configuration
var (
	ErrConfigMissingBaseURL = errors.New("woocommerce: base URL is required")
	ErrConfigInvalidBaseURL = errors.New("woocommerce: base URL is not a valid http(s) URL")
)

// Config holds the connection settings for one external store
type Config struct {
	// BaseURL is the store root, without the API namespace
	BaseURL string
	// Credentials is the consumer key/secret pair
	Credentials domain.Credentials
	// AuthMode selects how credentials are transported
	AuthMode domain.AuthMode
	// Timeout is the per-attempt timeout
	Timeout time.Duration
	// MaxAttempts bounds retries for one logical request
	MaxAttempts int
}

// NewConfig creates a store client configuration with defaults
func NewConfig(baseURL string, creds domain.Credentials) *Config {
	return &Config{
		BaseURL:     baseURL,
		Credentials: creds,
		AuthMode:    domain.AuthModeBasicHTTPS,
		Timeout:     DefaultTimeout,
		MaxAttempts: DefaultMaxAttempts,
	}
}

// Validate normalizes the base URL, applies defaults, and checks required fields
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return ErrConfigMissingBaseURL
	}
	normalized, err := NormalizeStoreURL(c.BaseURL)
	if err != nil {
		return err
	}
	c.BaseURL = normalized

	if err := c.Credentials.Validate(); err != nil {
		return err
	}
	if c.AuthMode == "" {
		c.AuthMode = domain.AuthModeBasicHTTPS
	}
	// Unrecognized modes are tolerated at request time (treated as Basic),
	// but an explicit invalid value on construction is a caller bug.
	if !c.AuthMode.IsValid() {
		return domain.ErrInvalidAuthMode
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	return nil
}

// NormalizeStoreURL canonicalizes a store URL as tenants type them: scheme
// defaults to https, trailing slashes are stripped, query and fragment are
// discarded.
func NormalizeStoreURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrConfigMissingBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", ErrConfigInvalidBaseURL
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", ErrConfigInvalidBaseURL
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.Path = strings.TrimRight(u.Path, "/")
	return u.String(), nil
}
