// Package client talks to the coordinator's HTTP API and performs the
// three-step upload: request a grant, PUT the bytes to object storage, then
// report completion.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/studyvault/internal/netx"
)

// Grant is a write capability returned by POST /uploads/grant.
type Grant struct {
	PresignedURL    string            `json:"presignedUrl"`
	FileID          string            `json:"fileId"`
	StorageKey      string            `json:"storageKey"`
	ExpiresAt       time.Time         `json:"expiresAt"`
	RequiredHeaders map[string]string `json:"requiredHeaders"`
}

// File is the client view of a finalized record.
type File struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Size        int64     `json:"size"`
	UploadDate  time.Time `json:"uploadDate"`
	SessionID   string    `json:"sessionId"`
	URL         string    `json:"url"`
	DownloadURL string    `json:"downloadUrl"`
	IsActive    bool      `json:"isActive"`
}

type grantRequest struct {
	FileName  string `json:"fileName"`
	MimeType  string `json:"mimeType"`
	SizeBytes int64  `json:"sizeBytes"`
	SessionID string `json:"sessionId"`
}

type finalizeRequest struct {
	FileID     string `json:"fileId"`
	FileName   string `json:"fileName"`
	MimeType   string `json:"mimeType"`
	SizeBytes  int64  `json:"sizeBytes"`
	SessionID  string `json:"sessionId"`
	StorageKey string `json:"storageKey"`
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type HTTPClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewHTTPClient builds a client for the coordinator at baseURL. token, when
// non-empty, is sent as a bearer token on API calls but never to object
// storage.
func NewHTTPClient(baseURL, token string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e errorBody
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&e)
		return &APIError{Status: resp.StatusCode, Code: e.Error, Message: e.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// Ping checks GET /healthz.
func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

func (c *HTTPClient) Grant(ctx context.Context, sessionID, fileName, mimeType string, size int64) (*Grant, error) {
	g := &Grant{}
	err := c.do(ctx, http.MethodPost, "/uploads/grant", grantRequest{
		FileName:  fileName,
		MimeType:  mimeType,
		SizeBytes: size,
		SessionID: sessionID,
	}, g)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (c *HTTPClient) Finalize(ctx context.Context, g *Grant, sessionID, fileName, mimeType string, size int64) (*File, error) {
	f := &File{}
	err := c.do(ctx, http.MethodPost, "/uploads/finalize", finalizeRequest{
		FileID:     g.FileID,
		FileName:   fileName,
		MimeType:   mimeType,
		SizeBytes:  size,
		SessionID:  sessionID,
		StorageKey: g.StorageKey,
	}, f)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Upload runs grant, PUT and finalize for one artifact.
func (c *HTTPClient) Upload(ctx context.Context, sessionID, fileName, mimeType string, data []byte) (*File, error) {
	size := int64(len(data))

	g, err := c.Grant(ctx, sessionID, fileName, mimeType, size)
	if err != nil {
		return nil, fmt.Errorf("grant: %w", err)
	}

	if err := netx.PutPresigned(ctx, c.http, g.PresignedURL, g.RequiredHeaders, data); err != nil {
		return nil, fmt.Errorf("put: %w", err)
	}

	f, err := c.Finalize(ctx, g, sessionID, fileName, mimeType, size)
	if err != nil {
		return nil, fmt.Errorf("finalize: %w", err)
	}
	return f, nil
}

func (c *HTTPClient) ListSession(ctx context.Context, sessionID string, includeInactive bool) ([]File, error) {
	path := "/files/" + url.PathEscape(sessionID)
	if includeInactive {
		path += "?includeInactive=" + strconv.FormatBool(includeInactive)
	}

	var list []File
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Retire soft-deletes a record and its bytes.
func (c *HTTPClient) Retire(ctx context.Context, recordID string) error {
	return c.do(ctx, http.MethodDelete, "/files/"+url.PathEscape(recordID), nil, nil)
}
