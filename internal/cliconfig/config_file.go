package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	BaseURL       string            `toml:"base_url"`
	Headers       map[string]string `toml:"headers"`
	Retries       int               `toml:"retries"`
	PollInterval  string            `toml:"poll_interval"`
	HTTPTimeout   string            `toml:"http_timeout"`
	Wait          string            `toml:"wait"`
	TokenFile     string            `toml:"token_file"`
	RedisAddr     string            `toml:"redis_addr"`
	RedisPassword string            `toml:"redis_password"`
	RedisDB       int               `toml:"redis_db"`
	RedisKey      string            `toml:"redis_key"`
	Breaker       *bool             `toml:"breaker"`
	CPUThreshold  float64           `toml:"cpu_threshold"`
	LogLevel      string            `toml:"log_level"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.gatecall/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".gatecall", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("base-url", fc.BaseURL, &cfg.BaseURL)
	s.setString("token-file", fc.TokenFile, &cfg.TokenFile)
	s.setString("redis-addr", fc.RedisAddr, &cfg.RedisAddr)
	s.setString("redis-password", fc.RedisPassword, &cfg.RedisPassword)
	s.setString("redis-key", fc.RedisKey, &cfg.RedisKey)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setHeaders(fc.Headers, &cfg.Headers)

	if err := s.setDuration("poll", fc.PollInterval, &cfg.PollInterval); err != nil {
		return err
	}
	if err := s.setDuration("timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("wait", fc.Wait, &cfg.Wait); err != nil {
		return err
	}

	s.setInt("retries", fc.Retries, &cfg.Retries)
	s.setInt("redis-db", fc.RedisDB, &cfg.RedisDB)
	s.setFloat("cpu-threshold", fc.CPUThreshold, &cfg.CPUThreshold)
	s.setBool("breaker", fc.Breaker, &cfg.Breaker)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
