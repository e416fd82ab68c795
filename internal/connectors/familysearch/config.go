package familysearch

import "time"

const (
	// DefaultTimeout is the default HTTP request timeout and retry backoff.
	DefaultTimeout = 60 * time.Second

	// MaxRetries is the maximum number of retries for transient errors.
	MaxRetries = 3

	// MaxLoginAttempts bounds the login loop.
	MaxLoginAttempts = 3

	// ProactiveRate throttles API calls so large trees do not hammer the
	// service.
	ProactiveRate = 5.0

	defaultAPIBase   = "https://api.familysearch.org"
	defaultWWWBase   = "https://www.familysearch.org"
	defaultIdentBase = "https://ident.familysearch.org"

	// clientID and redirectURI are the public OAuth2 parameters of the
	// FamilySearch reference auth flow.
	clientID    = "a02j000000KTRjpAAH"
	redirectURI = "https://misbach.github.io/fs-auth/index_raw.html"

	acceptGedcomX = "application/x-gedcomx-v1+json"
	acceptAtom    = "application/x-gedcomx-atom+json"
)

// Config holds credentials and endpoints for a FamilySearch session.
// Zero-value endpoint fields fall back to the production hosts; tests point
// them at local servers.
type Config struct {
	Username string
	Password string
	Timeout  time.Duration

	APIBase   string
	WWWBase   string
	IdentBase string
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.Timeout == 0 {
		out.Timeout = DefaultTimeout
	}
	if out.APIBase == "" {
		out.APIBase = defaultAPIBase
	}
	if out.WWWBase == "" {
		out.WWWBase = defaultWWWBase
	}
	if out.IdentBase == "" {
		out.IdentBase = defaultIdentBase
	}
	return out
}
