package supastore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pulppixels/pulppixels-backend/pkg/config"
	"github.com/pulppixels/pulppixels-backend/pkg/logger"
)

const (
	pingTimeout        = 5 * time.Second
	defaultContentType = "application/octet-stream"
)

// Client talks to the Supabase Storage HTTP API with the service role key.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	serviceKey    string
	defaultBucket string
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// SignedURL is a time-limited download link to a stored object.
type SignedURL struct {
	URL       string
	ExpiresAt time.Time
}

// NewClient validates the storage configuration and verifies bucket access.
func NewClient(ctx context.Context, cfg config.StorageConfig, logg *logger.Logger) (*Client, error) {
	if cfg.ProjectURL == "" {
		return nil, errors.New("storage project url is required")
	}
	if cfg.ServiceRoleKey == "" {
		return nil, errors.New("storage service role key is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}

	client := &Client{
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		baseURL:       strings.TrimRight(cfg.ProjectURL, "/") + "/storage/v1",
		serviceKey:    cfg.ServiceRoleKey,
		defaultBucket: cfg.Bucket,
	}

	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("storage health check failed: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "supabase storage client initialized")
	}

	return client, nil
}

// DefaultBucket returns the configured bucket name.
func (c *Client) DefaultBucket() string {
	if c == nil {
		return ""
	}
	return c.defaultBucket
}

func (c *Client) Close() error {
	return nil
}

// Ping verifies the service role key can read bucket metadata.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.httpClient == nil {
		return errors.New("storage client not initialized")
	}
	if c.defaultBucket == "" {
		return errors.New("storage bucket not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	u := fmt.Sprintf("%s/bucket/%s", c.baseURL, url.PathEscape(c.defaultBucket))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if len(b) > 0 {
			return fmt.Errorf("storage bucket check failed: %s: %s", resp.Status, strings.TrimSpace(string(b)))
		}
		return fmt.Errorf("storage bucket check failed: %s", resp.Status)
	}

	return nil
}

// Upload stores an object at the given path in the default bucket. Existing
// objects at the same path are replaced.
func (c *Client) Upload(ctx context.Context, path string, contentType string, body io.Reader) error {
	if c == nil {
		return errors.New("storage client not initialized")
	}
	path = strings.TrimLeft(strings.TrimSpace(path), "/")
	if path == "" {
		return errors.New("object path is required")
	}
	if contentType == "" {
		contentType = defaultContentType
	}

	u := fmt.Sprintf("%s/object/%s/%s", c.baseURL, url.PathEscape(c.defaultBucket), escapeObjectPath(path))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, body)
	if err != nil {
		return err
	}
	c.authorize(req)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("uploading object %q: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("uploading object %q: %s", path, readErrorBody(resp))
	}
	return nil
}

// Remove deletes the objects at the given paths from the default bucket.
func (c *Client) Remove(ctx context.Context, paths ...string) error {
	if c == nil {
		return errors.New("storage client not initialized")
	}
	if len(paths) == 0 {
		return nil
	}

	payload, err := json.Marshal(map[string]any{"prefixes": paths})
	if err != nil {
		return err
	}

	u := fmt.Sprintf("%s/object/%s", c.baseURL, url.PathEscape(c.defaultBucket))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	c.authorize(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("removing objects: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("removing objects: %s", readErrorBody(resp))
	}
	return nil
}

// CreateSignedURL mints a time-limited download link for the object at path.
func (c *Client) CreateSignedURL(ctx context.Context, path string, expiry time.Duration) (*SignedURL, error) {
	if c == nil {
		return nil, errors.New("storage client not initialized")
	}
	path = strings.TrimLeft(strings.TrimSpace(path), "/")
	if path == "" {
		return nil, errors.New("object path is required")
	}
	if expiry <= 0 {
		return nil, fmt.Errorf("signed url expiry must be positive, got %s", expiry)
	}

	payload, err := json.Marshal(map[string]any{"expiresIn": int64(expiry.Seconds())})
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/object/sign/%s/%s", c.baseURL, url.PathEscape(c.defaultBucket), escapeObjectPath(path))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	c.authorize(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("signing object %q: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("signing object %q: %s", path, readErrorBody(resp))
	}

	var signResp struct {
		SignedURL string `json:"signedURL"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&signResp); err != nil {
		return nil, fmt.Errorf("decoding sign response: %w", err)
	}
	if signResp.SignedURL == "" {
		return nil, errors.New("sign response missing signedURL")
	}

	return &SignedURL{
		URL:       c.baseURL + "/" + strings.TrimLeft(signResp.SignedURL, "/"),
		ExpiresAt: time.Now().UTC().Add(expiry),
	}, nil
}

// PublicURL returns the unauthenticated preview URL for an object. The bucket
// must allow public reads for the link to resolve.
func (c *Client) PublicURL(path string) string {
	if c == nil {
		return ""
	}
	path = strings.TrimLeft(strings.TrimSpace(path), "/")
	return fmt.Sprintf("%s/object/public/%s/%s", c.baseURL, url.PathEscape(c.defaultBucket), escapeObjectPath(path))
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)
}

func escapeObjectPath(path string) string {
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}

func readErrorBody(resp *http.Response) string {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	if len(b) > 0 {
		return fmt.Sprintf("%s: %s", resp.Status, strings.TrimSpace(string(b)))
	}
	return resp.Status
}
