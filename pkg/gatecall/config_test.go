package gatecall

import (
	"errors"
	"testing"
	"time"
)

func TestConfig_SetDefaults(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.PollInterval != time.Second {
		t.Errorf("PollInterval = %v, want 1s", cfg.PollInterval)
	}
	if cfg.DefaultRetries != 5 {
		t.Errorf("DefaultRetries = %d, want 5", cfg.DefaultRetries)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("HTTPTimeout = %v, want 30s", cfg.HTTPTimeout)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 30s", cfg.ShutdownTimeout)
	}
	if cfg.DefaultHeaders["Content-Type"] != "application/json" {
		t.Errorf("DefaultHeaders = %v", cfg.DefaultHeaders)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestConfig_SetDefaultsKeepsValues(t *testing.T) {
	cfg := Config{PollInterval: 50 * time.Millisecond, DefaultRetries: 9, DefaultHeaders: map[string]string{}}
	cfg.SetDefaults()

	if cfg.PollInterval != 50*time.Millisecond || cfg.DefaultRetries != 9 {
		t.Errorf("explicit values overwritten: %+v", cfg)
	}
	if len(cfg.DefaultHeaders) != 0 {
		t.Errorf("explicit empty headers replaced: %v", cfg.DefaultHeaders)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"negative poll interval", func(c *Config) { c.PollInterval = -time.Second }},
		{"negative retries", func(c *Config) { c.DefaultRetries = -1 }},
		{"negative http timeout", func(c *Config) { c.HTTPTimeout = -time.Second }},
		{"negative shutdown timeout", func(c *Config) { c.ShutdownTimeout = -time.Second }},
		{"base url scheme", func(c *Config) { c.BaseURL = "ftp://host" }},
		{"base url host", func(c *Config) { c.BaseURL = "http://" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}

	cfg := DefaultConfig()
	cfg.BaseURL = "https://api.example.com/v1"
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid base url rejected: %v", err)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(Config{BaseURL: "not a url"})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("New() err = %v, want ErrInvalidConfig", err)
	}
}

func TestConfig_ZeroHTTPTimeoutDisablesTimeout(t *testing.T) {
	cfg := Config{}
	cfg.SetDefaults()
	if cfg.HTTPTimeout != 0 {
		t.Errorf("SetDefaults() HTTPTimeout = %v, want 0", cfg.HTTPTimeout)
	}

	d, err := New(Config{HTTPTimeout: 0})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if d.config.HTTPTimeout != 0 {
		t.Errorf("New() HTTPTimeout = %v, want 0", d.config.HTTPTimeout)
	}
	if c := newHTTPClient(d.config); c.Timeout != 0 {
		t.Errorf("client Timeout = %v, want 0", c.Timeout)
	}

	if c := newHTTPClient(DefaultConfig()); c.Timeout != DefaultHTTPTimeout {
		t.Errorf("default client Timeout = %v, want %v", c.Timeout, DefaultHTTPTimeout)
	}
}
