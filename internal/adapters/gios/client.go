package gios

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ghalamif/giosaqi/internal/domain"
	"github.com/ghalamif/giosaqi/internal/ports"
)

const (
	DefaultBaseURL = "https://api.gios.gov.pl/pjp-api/rest"
	// DefaultTimeout bounds every single API call.
	DefaultTimeout = 10 * time.Second
)

// Option customizes a Client.
type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// Client talks to the GIOS "pjp-api" REST service.
type Client struct {
	http      *http.Client
	baseURL   string
	timeout   time.Duration
	userAgent string
}

// NewClient wraps the shared HTTP client. A nil hc falls back to a client
// with default transport settings.
func NewClient(hc *http.Client, opts ...Option) *Client {
	if hc == nil {
		hc = &http.Client{}
	}
	c := &Client{
		http:      hc,
		baseURL:   DefaultBaseURL,
		timeout:   DefaultTimeout,
		userAgent: "giosaqi",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Station looks the id up in the full station list.
func (c *Client) Station(ctx context.Context, stationID string) (*domain.Station, error) {
	var stations []domain.Station
	found, err := c.getJSON(ctx, "findAll", "/station/findAll", &stations)
	if err != nil || !found {
		return nil, err
	}

	want := strings.TrimSpace(stationID)
	for i := range stations {
		if strconv.FormatInt(stations[i].ID, 10) == want {
			st := stations[i]
			return &st, nil
		}
	}
	return nil, nil
}

func (c *Client) Sensors(ctx context.Context, stationID string) ([]domain.SensorInfo, error) {
	var sensors []domain.SensorInfo
	path := "/station/sensors/" + strings.TrimSpace(stationID)
	found, err := c.getJSON(ctx, "sensors", path, &sensors)
	if err != nil || !found {
		return nil, err
	}
	return sensors, nil
}

// SensorData fetches the reading series. A nil id is sent as "null", which
// the API answers with an error status, i.e. an absent series.
func (c *Client) SensorData(ctx context.Context, sensorID *int64) (*domain.Series, error) {
	id := "null"
	if sensorID != nil {
		id = strconv.FormatInt(*sensorID, 10)
	}

	var series domain.Series
	found, err := c.getJSON(ctx, "getData", "/data/getData/"+id, &series)
	if err != nil || !found {
		return nil, err
	}
	return &series, nil
}

func (c *Client) getJSON(ctx context.Context, op, path string, out any) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return false, fmt.Errorf("gios %s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, classify(ctx, op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return false, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, classify(ctx, op, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return false, fmt.Errorf("gios %s: decode response: %w", op, err)
	}
	return true, nil
}

// classify maps transport errors onto the two transient failure kinds.
// Cancellation of the caller's context is passed through untouched.
func classify(ctx context.Context, op string, err error) error {
	if errors.Is(err, context.Canceled) && ctx.Err() == context.Canceled {
		return fmt.Errorf("gios %s: %w", op, err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &ports.ClientError{Kind: ports.FailureTimeout, Op: op, Err: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &ports.ClientError{Kind: ports.FailureTimeout, Op: op, Err: err}
	}
	return &ports.ClientError{Kind: ports.FailureConnectivity, Op: op, Err: err}
}

var _ ports.Client = (*Client)(nil)
