package main

import (
	"context"
	"encoding/json"
	"log"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dmitrijs2005/studyvault/internal/client/client"
	"github.com/dmitrijs2005/studyvault/internal/client/config"
)

func detectMime(path string, data []byte) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return http.DetectContentType(data)
}

func main() {

	cfg, paths, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}
	if len(paths) == 0 {
		log.Fatalf("usage: uploader -s <session> [flags] file...")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := client.NewHTTPClient(cfg.ServerURL, cfg.Token, cfg.Timeout)
	if err := c.Ping(ctx); err != nil {
		log.Fatalf("coordinator at %s is not healthy: %v", cfg.ServerURL, err)
	}
	enc := json.NewEncoder(os.Stdout)

	failed := false
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			log.Printf("%s: %v", p, err)
			failed = true
			continue
		}

		mimeType := cfg.MimeType
		if mimeType == "" {
			mimeType = detectMime(p, data)
		}

		f, err := c.Upload(ctx, cfg.SessionID, filepath.Base(p), mimeType, data)
		if err != nil {
			log.Printf("%s: %v", p, err)
			failed = true
			continue
		}
		_ = enc.Encode(f)
	}

	if failed {
		os.Exit(1)
	}
}
