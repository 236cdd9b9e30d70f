package goLicense

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MrEthical07/goLicense/jwt"
)

// Config controls an Engine. Use [DefaultConfig] as a starting point.
type Config struct {
	// Algorithm is used for every Issue, Parse and Check call. RS256 unless set.
	Algorithm  jwt.Method
	Audit      AuditConfig
	Metrics    MetricsConfig
	Revocation RevocationConfig
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// RevocationConfig controls the redis-backed revocation list.
type RevocationConfig struct {
	RedisPrefix string
	// FailOpen lets Check accept a license when the revocation store errors.
	FailOpen bool
}

// DefaultConfig returns the configuration used by [New].
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Algorithm: jwt.MethodRS256,
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
		Revocation: RevocationConfig{
			RedisPrefix: "gl",
			FailOpen:    false,
		},
	}
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("nil config")
	}
	if _, err := jwt.ParseMethod(string(c.Algorithm)); err != nil {
		return fmt.Errorf("Algorithm: %w", err)
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}
	prefix := c.Revocation.RedisPrefix
	if strings.TrimSpace(prefix) == "" {
		return errors.New("Revocation RedisPrefix must not be empty")
	}
	if strings.ContainsAny(prefix, " \t\r\n") {
		return errors.New("Revocation RedisPrefix must not contain whitespace")
	}
	return nil
}
