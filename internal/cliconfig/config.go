package cliconfig

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultRedisAddr is used when a redis key is configured without an address.
const DefaultRedisAddr = "localhost:6379"

// Config holds CLI configuration for gatecall.
type Config struct {
	BaseURL string
	Headers map[string]string

	Retries      int
	PollInterval time.Duration
	HTTPTimeout  time.Duration
	Wait         time.Duration

	TokenFile string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisKey      string

	Breaker      bool
	CPUThreshold float64

	LogLevel string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Retries:      5,
		PollInterval: time.Second,
		HTTPTimeout:  30 * time.Second,
		Wait:         0, // wait until the outcome is known
		RedisAddr:    DefaultRedisAddr,
		LogLevel:     "info",
	}
}

// Validate checks the configuration for errors and normalizes derived values.
func (c *Config) Validate() error {
	if c.Retries < 1 {
		return fmt.Errorf("retries must be at least 1")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("http timeout must not be negative")
	}
	if c.Wait < 0 {
		return fmt.Errorf("wait must not be negative")
	}
	if c.CPUThreshold < 0 || c.CPUThreshold > 1 {
		return fmt.Errorf("cpu threshold must be within [0, 1]")
	}

	c.BaseURL = strings.TrimRight(c.BaseURL, "/")

	if c.RedisKey != "" && c.RedisAddr == "" {
		c.RedisAddr = DefaultRedisAddr
	}

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	return nil
}

// Level returns the parsed log level, falling back to info.
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// ParseHeader splits a curl-style "Name: value" header.
func ParseHeader(s string) (string, string, error) {
	name, value, ok := strings.Cut(s, ":")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", fmt.Errorf("invalid header %q: want \"Name: value\"", s)
	}
	return name, strings.TrimSpace(value), nil
}

// MergeHeaders parses each header and sets it on cfg, overriding any value
// already present under the same name.
func MergeHeaders(cfg *Config, headers []string) error {
	for _, h := range headers {
		name, value, err := ParseHeader(h)
		if err != nil {
			return err
		}
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string)
		}
		cfg.Headers[name] = value
	}
	return nil
}

// HeaderList renders the headers as sorted "Name: value" lines.
func (c Config) HeaderList() []string {
	out := make([]string, 0, len(c.Headers))
	for k, v := range c.Headers {
		out = append(out, k+": "+v)
	}
	sort.Strings(out)
	return out
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setFloat sets a float64 value if positive and flag not changed.
func (s *configSetter) setFloat(flag string, value float64, dst *float64) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setHeaders merges headers into dst per name. Flag headers are merged last
// by MergeHeaders.
func (s *configSetter) setHeaders(value map[string]string, dst *map[string]string) {
	if len(value) == 0 {
		return
	}
	if *dst == nil {
		*dst = make(map[string]string, len(value))
	}
	for k, v := range value {
		(*dst)[k] = v
	}
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setFloatFromString parses a string to float64 and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setFloatFromString(flag, value string, dst *float64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if f <= 0 {
		return nil
	}
	*dst = f
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
