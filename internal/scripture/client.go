package scripture

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/versemark/versemark-server/internal/domain"
	"github.com/versemark/versemark-server/internal/ratelimit"
)

const (
	defaultTimeout = 15 * time.Second
	defaultBurst   = 5
	maxBodyBytes   = 1 << 20
)

// Client errors.
var (
	ErrRateLimited = errors.New("scripture api rate limited")
	ErrServer      = errors.New("scripture api server error")
)

// Client fetches verse text from a remote scripture API:
//
//	GET {base}/{version}/{book}/{chapter}/{verse} → {"text": "..."}
type Client struct {
	baseURL string
	http    *http.Client
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// NewClient creates a rate-limited client for baseURL.
func NewClient(baseURL string, rps float64, logger *slog.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
		limiter: ratelimit.New(rps, defaultBurst),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close releases the rate limiter.
func (c *Client) Close() {
	c.limiter.Stop()
}

type verseResponse struct {
	Text string `json:"text"`
}

// GetVerseText implements Lookup.
func (c *Client) GetVerseText(ctx context.Context, ref domain.VerseRef) (string, error) {
	body, err := c.doRequest(ctx, ref)
	if err != nil {
		return "", err
	}

	var resp verseResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode verse %s: %w", ref, err)
	}

	text := PlainText(resp.Text)
	if text == "" {
		return "", fmt.Errorf("%s: empty text: %w", ref, ErrVerseNotFound)
	}
	return text, nil
}

func (c *Client) verseURL(ref domain.VerseRef) (string, error) {
	return url.JoinPath(c.baseURL,
		url.PathEscape(ref.Version),
		url.PathEscape(ref.BookID),
		strconv.Itoa(ref.Chapter),
		strconv.Itoa(ref.Verse),
	)
}

// doRequest executes one GET with rate limiting and maps the status code to an error.
func (c *Client) doRequest(ctx context.Context, ref domain.VerseRef) ([]byte, error) {
	u, err := c.verseURL(ref)
	if err != nil {
		return nil, fmt.Errorf("build url: %w", err)
	}

	// One bucket per API host; all verse lookups share it.
	if err := c.limiter.Wait(ctx, c.baseURL); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Versemark/1.0")

	c.logger.Debug("scripture request", "verse", ref.String())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", ref, ErrVerseNotFound)
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	default:
		if resp.StatusCode >= 500 {
			return nil, fmt.Errorf("%w: status %d", ErrServer, resp.StatusCode)
		}
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
}
