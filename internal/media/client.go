// Package media talks to the external media host's admin API. The platform
// never stores video bytes itself; lessons and courses hold opaque handles
// (public IDs) that resolve on the host.
package media

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/lumenlearn/backend/config"
)

// FetchError wraps any failure to retrieve video metadata from the media
// host. It never leaves the enrichment path.
type FetchError struct {
	VideoRef string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch metadata for %q: %v", e.VideoRef, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// VideoMetadata is the subset of host metadata the platform consumes.
type VideoMetadata struct {
	DurationSeconds int
}

// MetadataFetcher fetches video metadata from the media host.
type MetadataFetcher interface {
	FetchVideoMetadata(ctx context.Context, videoRef string) (*VideoMetadata, error)
}

// Client calls the media host admin API over HTTP with basic auth.
// Credentials are injected once at startup via config.MediaConfig.
type Client struct {
	cfg        config.MediaConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a media host client from injected configuration.
func NewClient(cfg config.MediaConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// resourceBody mirrors the host's video resource response; duration arrives
// as float seconds.
type resourceBody struct {
	Duration *float64 `json:"duration"`
}

// FetchVideoMetadata queries the host for a video resource and returns its
// duration in whole seconds (fractions truncated). All failures come back as
// *FetchError.
func (c *Client) FetchVideoMetadata(ctx context.Context, videoRef string) (*VideoMetadata, error) {
	if videoRef == "" {
		return nil, &FetchError{VideoRef: videoRef, Err: fmt.Errorf("empty video ref")}
	}

	url := fmt.Sprintf("%s/v1_1/%s/resources/video/upload/%s", c.cfg.BaseURL, c.cfg.CloudName, videoRef)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{VideoRef: videoRef, Err: err}
	}
	req.SetBasicAuth(c.cfg.APIKey, c.cfg.APISecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{VideoRef: videoRef, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{VideoRef: videoRef, Err: fmt.Errorf("host returned status %d", resp.StatusCode)}
	}

	var body resourceBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &FetchError{VideoRef: videoRef, Err: fmt.Errorf("decode response: %w", err)}
	}
	if body.Duration == nil {
		return nil, &FetchError{VideoRef: videoRef, Err: fmt.Errorf("response missing duration")}
	}

	return &VideoMetadata{DurationSeconds: int(*body.Duration)}, nil
}
