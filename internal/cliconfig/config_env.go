package cliconfig

import (
	"os"
	"strings"
)

// EnvPrefix prefixes every environment variable read by ApplyEnvConfig.
const EnvPrefix = "GATECALL_"

func getenv(name string) string {
	return os.Getenv(EnvPrefix + name)
}

// ApplyEnvConfig applies GATECALL_* environment variables to cfg.
// Explicitly changed flags take precedence over the environment.
// GATECALL_HEADERS holds "Name: value" pairs separated by ";".
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("base-url", getenv("BASE_URL"), &cfg.BaseURL)
	s.setString("token-file", getenv("TOKEN_FILE"), &cfg.TokenFile)
	s.setString("redis-addr", getenv("REDIS_ADDR"), &cfg.RedisAddr)
	s.setString("redis-password", getenv("REDIS_PASSWORD"), &cfg.RedisPassword)
	s.setString("redis-key", getenv("REDIS_KEY"), &cfg.RedisKey)
	s.setString("log-level", getenv("LOG_LEVEL"), &cfg.LogLevel)

	if raw := getenv("HEADERS"); raw != "" {
		headers := make(map[string]string)
		for _, part := range strings.Split(raw, ";") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			name, value, err := ParseHeader(part)
			if err != nil {
				return err
			}
			headers[name] = value
		}
		s.setHeaders(headers, &cfg.Headers)
	}

	if err := s.setDuration("poll", getenv("POLL_INTERVAL"), &cfg.PollInterval); err != nil {
		return err
	}
	if err := s.setDuration("timeout", getenv("HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("wait", getenv("WAIT"), &cfg.Wait); err != nil {
		return err
	}

	if err := s.setIntFromString("retries", getenv("RETRIES"), &cfg.Retries); err != nil {
		return err
	}
	if err := s.setIntFromString("redis-db", getenv("REDIS_DB"), &cfg.RedisDB); err != nil {
		return err
	}
	if err := s.setFloatFromString("cpu-threshold", getenv("CPU_THRESHOLD"), &cfg.CPUThreshold); err != nil {
		return err
	}
	s.setBoolFromString("breaker", getenv("BREAKER"), &cfg.Breaker)

	return nil
}
