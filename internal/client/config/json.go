package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/studyvault/internal/timex"
)

// JsonConfig is the on-disk shape of the uploader config file.
type JsonConfig struct {
	ServerURL *string         `json:"server_url"`
	Token     *string         `json:"token"`
	SessionID *string         `json:"session_id"`
	MimeType  *string         `json:"mime_type"`
	Timeout   *timex.Duration `json:"timeout"`
}

func parseJson(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return err
	}

	if c.ServerURL != nil {
		cfg.ServerURL = *c.ServerURL
	}
	if c.Token != nil {
		cfg.Token = *c.Token
	}
	if c.SessionID != nil {
		cfg.SessionID = *c.SessionID
	}
	if c.MimeType != nil {
		cfg.MimeType = *c.MimeType
	}
	if c.Timeout != nil {
		cfg.Timeout = c.Timeout.Duration
	}
	return nil
}
