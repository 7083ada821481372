// Package simpaskor provides an HTTP client for the public Simpaskor schedule.
package simpaskor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxBodyBytes bounds how much of the upstream response is buffered.
const maxBodyBytes = 4 << 20

// ErrBodyTooLarge is returned when the upstream body exceeds the buffer limit.
var ErrBodyTooLarge = errors.New("schedule response too large")

// Schedule is an upstream response passed through verbatim.
type Schedule struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// OK reports whether the upstream answered with a 2xx status.
func (s *Schedule) OK() bool {
	return s.StatusCode >= 200 && s.StatusCode < 300
}

// ScheduleFetcher fetches the Simpaskor schedule.
type ScheduleFetcher interface {
	GetSchedule(ctx context.Context) (*Schedule, error)
}

// Client calls the Simpaskor landing page endpoint.
type Client struct {
	url        string
	httpClient *http.Client
	maxBody    int64
}

// NewClient creates a Client for url; every call waits at most timeout.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		maxBody:    maxBodyBytes,
	}
}

// GetSchedule fetches the schedule. Any HTTP response, including non-2xx,
// is returned as a Schedule; an error means the upstream could not be reached.
func (c *Client) GetSchedule(ctx context.Context) (*Schedule, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching schedule: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("reading schedule response: %w", err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, c.maxBody)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	return &Schedule{StatusCode: resp.StatusCode, ContentType: contentType, Body: body}, nil
}
