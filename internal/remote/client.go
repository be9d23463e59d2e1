package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Config holds the configuration shared by the upstream clients
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
	// BaseBackoff is the first retry delay; it doubles on every attempt.
	BaseBackoff time.Duration
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:     baseURL,
		Timeout:     30 * time.Second,
		RetryCount:  3,
		BaseBackoff: time.Second,
	}
}

// client is the retrying HTTP core the face and store clients share
type client struct {
	service    string
	httpClient *http.Client
	config     Config
	logger     *slog.Logger
}

func newClient(service string, config Config, logger *slog.Logger) *client {
	if config.BaseBackoff <= 0 {
		config.BaseBackoff = time.Second
	}
	return &client{
		service: service,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config: config,
		logger: logger,
	}
}

// payload is a request body that can be replayed on every attempt
type payload struct {
	body        []byte
	contentType string
}

func jsonPayload(v any) (payload, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return payload{}, fmt.Errorf("marshal request: %w", err)
	}
	return payload{body: b, contentType: "application/json"}, nil
}

// formFile is the image part of a multipart request
type formFile struct {
	field    string
	filename string
	data     []byte
}

func multipartPayload(file formFile, fields map[string]string) (payload, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return payload{}, fmt.Errorf("write field %s: %w", k, err)
		}
	}

	part, err := w.CreateFormFile(file.field, file.filename)
	if err != nil {
		return payload{}, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(file.data); err != nil {
		return payload{}, fmt.Errorf("write form file: %w", err)
	}
	if err := w.Close(); err != nil {
		return payload{}, fmt.Errorf("close multipart writer: %w", err)
	}

	return payload{body: buf.Bytes(), contentType: w.FormDataContentType()}, nil
}

// maxBackoff is the maximum backoff duration for retries
const maxBackoff = 30 * time.Second

// calculateBackoff returns base, 2*base, 4*base ... capped at maxBackoff
func calculateBackoff(attempt int, base time.Duration) time.Duration {
	if attempt <= 1 {
		return base
	}
	d := base
	for i := 1; i < attempt && i < 6; i++ {
		d *= 2
	}
	return min(d, maxBackoff)
}

// doRequestWithRetry executes an HTTP POST with retry logic. Transport
// failures and 5xx answers are retried; 4xx answers are returned at once.
func (c *client) doRequestWithRetry(ctx context.Context, path string, body payload, result any) error {
	var lastErr error

	for attempt := 0; attempt <= c.config.RetryCount; attempt++ {
		if attempt > 0 {
			backoff := calculateBackoff(attempt, c.config.BaseBackoff)
			c.logger.Warn("retrying upstream request",
				"service", c.service,
				"path", path,
				"attempt", attempt,
				"backoff", backoff,
				"error", lastErr,
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		lastErr = c.doRequest(ctx, path, body, result)
		if lastErr == nil {
			return nil
		}

		// Don't retry on context errors
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if isClientError(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("%w: %s: %w", ErrUnavailable, c.service, lastErr)
}

// doRequest executes a single HTTP request
func (c *client) doRequest(ctx context.Context, path string, body payload, result any) error {
	url := strings.TrimRight(c.config.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body.body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", body.contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return &StatusError{Service: c.service, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
	}

	return nil
}
