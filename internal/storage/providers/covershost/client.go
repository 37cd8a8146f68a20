// Package covershost implements storage.Client against a plain HTTP cover
// host: objects are served at <base>/<path> and their metadata as JSON at
// <base>/meta/<path>.
package covershost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avasilyev/shelfserve/internal/storage"
)

var ErrNotFound = errors.New("object not found")

// Client implements storage.Client for an HTTP cover host.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a new cover host client. token may be empty for hosts
// that do not require authentication.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// metadataResponse is the JSON shape returned by the metadata endpoint.
type metadataResponse struct {
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ModifiedAt  time.Time `json:"modified_at"`
	ContentHash string    `json:"content_hash,omitempty"`
}

func (c *Client) GetMetadata(ctx context.Context, path string) (*storage.FileInfo, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/meta/"+escapePath(path))
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("metadata request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("metadata request failed: status %d", resp.StatusCode)
	}

	var meta metadataResponse
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}

	return &storage.FileInfo{
		Name:        meta.Name,
		Path:        path,
		Size:        meta.Size,
		ModifiedAt:  meta.ModifiedAt,
		ContentHash: meta.ContentHash,
	}, nil
}

func (c *Client) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/"+escapePath(path))
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return resp.Body, nil
	case http.StatusNotFound:
		resp.Body.Close()
		return nil, ErrNotFound
	default:
		resp.Body.Close()
		return nil, fmt.Errorf("download failed: status %d", resp.StatusCode)
	}
}

func (c *Client) Exists(ctx context.Context, path string) (bool, error) {
	req, err := c.newRequest(ctx, http.MethodHead, "/"+escapePath(path))
	if err != nil {
		return false, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("existence check failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("existence check failed: status %d", resp.StatusCode)
	}
}

// ObjectURL returns the public URL of an object, for redirect fallbacks.
func (c *Client) ObjectURL(path string) string {
	return c.baseURL + "/" + escapePath(path)
}

// escapePath escapes each segment of an object key. url.PathEscape alone
// would turn the "/" separators into %2F, which static hosts do not decode.
func escapePath(path string) string {
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}

func (c *Client) newRequest(ctx context.Context, method, path string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("User-Agent", "ShelfServe/1.0")
	return req, nil
}
