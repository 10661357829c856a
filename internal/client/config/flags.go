package config

import (
	"flag"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string          coordinator base URL
//	-t string          bearer token
//	-s string          session id
//	-mime string       declared mime type for every file
//	-timeout duration  per-request timeout
//	-c, -config string JSON config path (consumed by flagx.ConfigPath)
func parseFlags(cfg *Config, args []string) ([]string, error) {
	fs := flag.NewFlagSet("uploader", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "coordinator base URL")
	fs.StringVar(&cfg.Token, "t", cfg.Token, "bearer token")
	fs.StringVar(&cfg.SessionID, "s", cfg.SessionID, "session id")
	fs.StringVar(&cfg.MimeType, "mime", cfg.MimeType, "mime type (detected when empty)")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "request timeout")

	var ignored string
	fs.StringVar(&ignored, "c", "", "path to config file")
	fs.StringVar(&ignored, "config", "", "path to config file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return fs.Args(), nil
}
