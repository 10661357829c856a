// Package config holds settings for the upload command-line tool.
package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/studyvault/internal/flagx"
)

// Config holds runtime settings for the uploader.
//
// Fields:
//   - ServerURL: base URL of the coordinator HTTP API.
//   - Token: optional bearer token for attribution.
//   - SessionID: session the artifacts belong to.
//   - MimeType: declared type; empty means detect per file.
//   - Timeout: per-request HTTP timeout.
type Config struct {
	ServerURL string
	Token     string
	SessionID string
	MimeType  string
	Timeout   time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.Timeout = 30 * time.Second
}

// LoadConfig applies defaults, the optional JSON file and then flags.
// It returns the positional arguments (file paths) left after the flags.
func LoadConfig(args []string) (*Config, []string, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, flagx.ConfigPath(args)); err != nil {
		return nil, nil, fmt.Errorf("json config: %w", err)
	}
	rest, err := parseFlags(cfg, args)
	if err != nil {
		return nil, nil, fmt.Errorf("flags: %w", err)
	}
	if cfg.SessionID == "" {
		return nil, nil, fmt.Errorf("session id is required")
	}
	return cfg, rest, nil
}
