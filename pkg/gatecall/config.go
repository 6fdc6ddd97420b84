package gatecall

import (
	"fmt"
	"net/url"
	"time"

	"github.com/bft-labs/gatecall/internal/app"
	"github.com/bft-labs/gatecall/internal/domain"
)

// Config holds the dispatcher settings.
type Config struct {
	// PollInterval is the time between scheduler ticks while requests wait
	// for the gate. Default: 1s
	PollInterval time.Duration

	// DefaultRetries is how many ticks a request may wait when the send does
	// not set Retries. Default: 5
	DefaultRetries int

	// HTTPTimeout bounds each call of the default HTTP client. Zero means no
	// timeout. Ignored when WithHTTPClient or WithTransport is used.
	// DefaultConfig sets 30s; SetDefaults keeps zero.
	HTTPTimeout time.Duration

	// BaseURL is prepended to request URLs starting with "/".
	BaseURL string

	// DefaultHeaders are applied to every send that does not replace them
	// with Headers(). Default: Content-Type: application/json
	DefaultHeaders map[string]string

	// ShutdownTimeout bounds how long Stop waits for in-flight calls.
	// Default: 30s
	ShutdownTimeout time.Duration
}

// DefaultHTTPTimeout is the HTTPTimeout set by DefaultConfig.
const DefaultHTTPTimeout = 30 * time.Second

// DefaultConfig returns a Config with every default applied, including a
// DefaultHTTPTimeout bound on HTTP calls.
func DefaultConfig() Config {
	c := Config{HTTPTimeout: DefaultHTTPTimeout}
	c.SetDefaults()
	return c
}

// SetDefaults fills zero-valued fields with their defaults. HTTPTimeout is
// left alone since zero disables the timeout.
func (c *Config) SetDefaults() {
	if c.PollInterval == 0 {
		c.PollInterval = app.DefaultPollInterval
	}
	if c.DefaultRetries == 0 {
		c.DefaultRetries = domain.DefaultRetries
	}
	if c.DefaultHeaders == nil {
		c.DefaultHeaders = domain.DefaultHeaders()
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = app.ShutdownTimeout
	}
}

// Validate reports configuration errors. All errors wrap ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: poll interval must be positive", ErrInvalidConfig)
	}
	if c.DefaultRetries < 1 {
		return fmt.Errorf("%w: default retries must be at least 1", ErrInvalidConfig)
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("%w: http timeout must not be negative", ErrInvalidConfig)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: shutdown timeout must be positive", ErrInvalidConfig)
	}
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil {
			return fmt.Errorf("%w: base url: %v", ErrInvalidConfig, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("%w: base url must use http or https, got %q", ErrInvalidConfig, c.BaseURL)
		}
		if u.Host == "" {
			return fmt.Errorf("%w: base url has no host", ErrInvalidConfig)
		}
	}
	return nil
}
