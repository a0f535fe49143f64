// Package fetchclient performs the single outbound GET behind every widget
// refresh and field lookup.
package fetchclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/GregMSThompson/findash-backend/internal/errs"
	"github.com/GregMSThompson/findash-backend/internal/metrics"
	"github.com/GregMSThompson/findash-backend/internal/providers"
	"github.com/GregMSThompson/findash-backend/pkg/logger"
)

const (
	UserAgent = "FinDash-Dashboard/1.0"

	DefaultTimeout = 30 * time.Second

	// MaxBodyBytes caps how much of an upstream response is read.
	MaxBodyBytes = 8 << 20
)

type Client struct {
	httpClient *http.Client
	maxBody    int64
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMaxBody overrides MaxBodyBytes.
func WithMaxBody(n int64) Option {
	return func(c *Client) { c.maxBody = n }
}

func New(timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		maxBody:    MaxBodyBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get fetches rawURL once, bypassing caches, and returns the JSON body.
// Failures are *errs.TransportError, *errs.HTTPError or *errs.ParseError.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	log := logger.FromContext(ctx)
	host := hostOf(rawURL)
	start := time.Now()

	body, outcome, err := c.get(ctx, rawURL)
	metrics.RecordFetch(providers.ForHost(host), outcome, time.Since(start))
	if err != nil {
		log.Debug("fetch failed", "host", host, "outcome", outcome, "error", err)
		return nil, err
	}
	log.Debug("fetch ok", "host", host, "bytes", len(body), "duration", time.Since(start))
	return body, nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "transport", errs.NewTransportError(err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "transport", errs.NewTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, "http_" + strconv.Itoa(resp.StatusCode), errs.NewHTTPError(resp.StatusCode, statusText(resp))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, "transport", errs.NewTransportError(err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, "parse", errs.NewParseError("response body exceeds size limit", nil)
	}
	if !gjson.ValidBytes(body) {
		return nil, "parse", errs.NewParseError("response is not valid JSON", nil)
	}
	return body, "ok", nil
}

// TestEndpoint checks that url answers with a JSON object or array, and
// returns the body so the caller can offer its fields.
func (c *Client) TestEndpoint(ctx context.Context, rawURL string) ([]byte, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, errs.NewValidationError("Please enter an API URL")
	}
	if !strings.HasPrefix(rawURL, "http") {
		return nil, errs.NewValidationError("URL must start with http:// or https://")
	}
	body, err := c.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() && !root.IsArray() {
		return nil, errs.NewValidationError("API did not return a JSON object")
	}
	return body, nil
}

// statusText returns the reason phrase of the status line.
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// IsUpstream reports whether err came from the remote side of a fetch.
func IsUpstream(err error) bool {
	var (
		t *errs.TransportError
		h *errs.HTTPError
		p *errs.ParseError
	)
	return errors.As(err, &t) || errors.As(err, &h) || errors.As(err, &p)
}
