package figma

import (
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

	"github.com/patrickmn/go-cache"
)

// Version is the current version of the importer.
const Version = "0.3.0"

const (
	figmaAPIBase = "https://api.figma.com/v1"

	defaultRequestTimeout = 60 * time.Second
	maxRetries            = 3
)

// APIError is returned when the Figma API answers with a non-200 status code.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the request may succeed when repeated (rate limit or server error).
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Client represents a Figma API client with configured HTTP settings for reliable communication
// with the Figma API. It includes retry logic and optimized transport settings for handling large files.
type Client struct {
	accessToken    string
	baseURL        string
	httpClient     *http.Client
	requestTimeout time.Duration
	retryDelay     time.Duration
	documents      *cache.Cache
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL, e.g. to point the client at a test server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRequestTimeout bounds every single network call made by the client.
// A zero or negative value keeps the default.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.requestTimeout = d
		}
	}
}

// WithRetryDelay sets the base delay between GetFile attempts. The n-th retry waits n*delay.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// WithDocumentCache keeps parsed documents in memory for ttl, so repeated imports
// from the same file within one process fetch the document once.
func WithDocumentCache(ttl time.Duration) Option {
	return func(c *Client) {
		if ttl > 0 {
			c.documents = cache.New(ttl, 2*ttl)
		}
	}
}

// NewClient creates a new Figma API client with the provided personal access token.
// The client is configured with optimized HTTP transport settings including connection pooling
// and disabled HTTP/2 (for large file stability).
func NewClient(accessToken string, opts ...Option) *Client {
	// Configure transport for better handling of large files
	transport := &http.Transport{
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		DisableCompression:  false,
		DisableKeepAlives:   false,
		MaxIdleConnsPerHost: 10,
		// Disable HTTP/2 to avoid stream errors with large files
		ForceAttemptHTTP2: false,
	}

	c := &Client{
		accessToken: accessToken,
		baseURL:     figmaAPIBase,
		httpClient: &http.Client{
			Timeout:   10 * time.Minute, // upper bound, per-call timeouts are applied through the context
			Transport: transport,
		},
		requestTimeout: defaultRequestTimeout,
		retryDelay:     2 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// GetFile retrieves the complete file data, including the document tree, from the Figma API.
// Implements automatic retry logic (up to 3 attempts) with linear backoff for handling rate limits
// and temporary failures. The request retries on 429 (rate limit) and 5xx (server error) responses.
func (c *Client) GetFile(ctx context.Context, fileKey string) (*FileResponse, error) {
	if c.documents != nil {
		if cached, ok := c.documents.Get(fileKey); ok {
			return cached.(*FileResponse), nil
		}
	}

	endpoint := fmt.Sprintf("%s/files/%s", c.baseURL, url.PathEscape(fileKey))

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		body, err := c.get(ctx, endpoint, true)
		if err == nil {
			var fileResp FileResponse
			if err := json.Unmarshal(body, &fileResp); err != nil {
				return nil, fmt.Errorf("failed to parse response: %w", err)
			}

			if c.documents != nil {
				c.documents.Set(fileKey, &fileResp, cache.DefaultExpiration)
			}
			return &fileResp, nil
		}

		lastErr = fmt.Errorf("attempt %d: %w", attempt, err)

		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.Retryable() {
			return nil, lastErr
		}
		if ctx.Err() != nil {
			return nil, lastErr
		}

		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return nil, lastErr
			case <-time.After(time.Duration(attempt) * c.retryDelay):
			}
		}
	}

	return nil, lastErr
}

// GetImages asks the render API to export the given nodes in a single batched request.
// All nodes share the same format and scale. The returned map contains a temporary
// download URL per node; nodes Figma could not render map to an empty string.
func (c *Client) GetImages(ctx context.Context, fileKey string, ids []string, format string, scale float64) (*ImagesResponse, error) {
	query := url.Values{}
	query.Set("ids", strings.Join(ids, ","))
	query.Set("format", format)
	query.Set("scale", strconv.FormatFloat(scale, 'f', -1, 64))

	endpoint := fmt.Sprintf("%s/images/%s?%s", c.baseURL, url.PathEscape(fileKey), query.Encode())

	body, err := c.get(ctx, endpoint, true)
	if err != nil {
		return nil, err
	}

	var imgResp ImagesResponse
	if err := json.Unmarshal(body, &imgResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if imgResp.Err != "" {
		return nil, fmt.Errorf("render API error: %s", imgResp.Err)
	}
	if imgResp.Images == nil {
		imgResp.Images = make(map[string]string)
	}

	return &imgResp, nil
}

// Download fetches the binary content behind an image URL returned by GetImages.
// Image URLs are pre-signed, so no authentication header is sent.
func (c *Client) Download(ctx context.Context, imageURL string) ([]byte, error) {
	return c.get(ctx, imageURL, false)
}

// get performs a GET request bounded by the client's request timeout and returns the body.
func (c *Client) get(ctx context.Context, endpoint string, authenticated bool) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if authenticated {
		req.Header.Set("X-Figma-Token", c.accessToken)
		// Disable HTTP/2 to avoid stream errors with large files
		req.Header.Set("Connection", "close")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}
