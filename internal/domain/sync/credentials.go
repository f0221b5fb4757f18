package sync

import "strings"

// ---------------------------------------------------------------------------
// AuthMode represents how credentials are presented to the external store
// ---------------------------------------------------------------------------

// AuthMode represents how credentials are presented to the external store
type AuthMode string

const (
	// AuthModeBasicHTTPS sends credentials as an HTTP Basic Authorization header
	AuthModeBasicHTTPS AuthMode = "basic_https"
	// AuthModeOAuth1 is accepted for stores provisioned with OAuth 1.0a; requests
	// are still transported with a Basic header, matching the platform's
	// key/secret compatibility mode
	AuthModeOAuth1 AuthMode = "oauth1"
	// AuthModeQuerystringFallback appends credentials as query parameters.
	// Escape hatch for stores behind proxies that strip Authorization headers;
	// must remain opt-in.
	AuthModeQuerystringFallback AuthMode = "querystring_fallback"
)

// IsValid returns true if the auth mode is valid
func (m AuthMode) IsValid() bool {
	switch m {
	case AuthModeBasicHTTPS, AuthModeOAuth1, AuthModeQuerystringFallback:
		return true
	}
	return false
}

// String returns the string representation of AuthMode
func (m AuthMode) String() string {
	return string(m)
}

// ---------------------------------------------------------------------------
// Credentials
// ---------------------------------------------------------------------------

// Credentials holds the consumer key/secret pair for one external store.
// Read-only to the sync engine; created and rotated by tenant admin action.
type Credentials struct {
	ConsumerKey    string
	ConsumerSecret string
}

// Validate checks that both halves of the credential pair are present
func (c Credentials) Validate() error {
	if c.ConsumerKey == "" {
		return ErrCredentialsMissingKey
	}
	if c.ConsumerSecret == "" {
		return ErrCredentialsMissingSecret
	}
	return nil
}

// Redacted returns a log-safe representation of the consumer key.
// Secrets never appear in logs in plaintext.
func (c Credentials) Redacted() string {
	if c.ConsumerKey == "" {
		return "(unset)"
	}
	if len(c.ConsumerKey) < 3 {
		// too short to show any prefix without giving the key away
		return strings.Repeat("*", len(c.ConsumerKey))
	}
	if len(c.ConsumerKey) <= 8 {
		return c.ConsumerKey[:2] + strings.Repeat("*", len(c.ConsumerKey)-2)
	}
	return c.ConsumerKey[:6] + "..." + strings.Repeat("*", 4)
}
