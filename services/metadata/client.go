package metadata

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
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"cinelist/internal/cache"
	"cinelist/internal/retry"
	"cinelist/models"
)

const (
	DefaultBaseURL       = "http://www.omdbapi.com"
	DefaultTimeout       = 5 * time.Second
	DefaultRetryAttempts = 3
	DefaultRetryDelay    = time.Second

	maxBodyBytes = 4 << 20
)

// Config configures a Client.
type Config struct {
	BaseURL string
	APIKey  string
	// Timeout bounds each attempt.
	Timeout time.Duration
	// RetryAttempts is the number of attempts made after the first one.
	RetryAttempts int
	RetryDelay    time.Duration
	// RequestsPerSecond throttles outbound requests. Zero disables throttling.
	RequestsPerSecond float64
	// CacheTTL controls how long successful responses are reused. Zero uses
	// the cache default; negative disables caching.
	CacheTTL time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. Its Timeout is left untouched.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

// WithTimer replaces the retry wait primitive.
func WithTimer(t retry.Timer) Option {
	return func(c *Client) { c.timer = t }
}

// WithClock sets the clock used by the response cache.
func WithClock(now cache.Clock) Option {
	return func(c *Client) { c.now = now }
}

// Client talks to an OMDb-compatible HTTP API. Every call is one logical GET
// that may be retried on transport failures and rate limiting.
type Client struct {
	baseURL    string
	apiKey     string
	httpc      *http.Client
	retryDelay time.Duration
	maxRetries int
	timer      retry.Timer
	now        cache.Clock

	// callBudget bounds one shared call including every retry and wait.
	callBudget time.Duration

	limiter  *rate.Limiter
	group    singleflight.Group
	cache    *cache.TTL[[]byte]
	cacheTTL time.Duration

	log *slog.Logger
}

// NewClient creates a client. Zero values in cfg fall back to the package
// defaults, except RetryAttempts where zero means no retries.
func NewClient(cfg Config, opts ...Option) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	delay := cfg.RetryDelay
	switch {
	case delay == 0:
		delay = DefaultRetryDelay
	case delay < 0:
		delay = 0
	}
	attempts := cfg.RetryAttempts
	if attempts < 0 {
		attempts = 0
	}

	c := &Client{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		httpc:      &http.Client{Timeout: timeout},
		retryDelay: delay,
		maxRetries: attempts,
		callBudget: time.Duration(attempts+1)*timeout + time.Duration(attempts)*2*delay,
		cacheTTL:   cfg.CacheTTL,
		log:        slog.Default().With("component", "metadata-client"),
	}
	if cfg.RequestsPerSecond > 0 {
		burst := int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cacheTTL >= 0 {
		c.cache = cache.NewTTL[[]byte](c.now, c.cacheTTL)
	}
	return c
}

// SearchByTitle searches titles matching query. An empty mediaType searches
// every type.
func (c *Client) SearchByTitle(ctx context.Context, query string, mediaType models.MediaType, page int) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("s", query)
	setType(params, mediaType)
	params.Set("page", strconv.Itoa(normalizePage(page)))

	var out SearchResponse
	if err := c.getJSON(ctx, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchByYear lists titles released in year.
func (c *Client) SearchByYear(ctx context.Context, year string, mediaType models.MediaType, page int) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("y", year)
	setType(params, mediaType)
	params.Set("page", strconv.Itoa(normalizePage(page)))

	var out SearchResponse
	if err := c.getJSON(ctx, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetDetailsByID fetches the full record of a movie or series.
func (c *Client) GetDetailsByID(ctx context.Context, id string, mediaType models.MediaType) (*TitleResponse, error) {
	params := url.Values{}
	params.Set("i", id)
	params.Set("plot", "full")
	setType(params, mediaType)

	var out TitleResponse
	if err := c.getJSON(ctx, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSeasonDetails lists the episodes of one season of a series.
func (c *Client) GetSeasonDetails(ctx context.Context, id string, season int) (*SeasonResponse, error) {
	params := url.Values{}
	params.Set("i", id)
	params.Set("Season", strconv.Itoa(season))

	var out SeasonResponse
	if err := c.getJSON(ctx, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetEpisodeDetails fetches a single episode of a series.
func (c *Client) GetEpisodeDetails(ctx context.Context, id string, season, episode int) (*TitleResponse, error) {
	params := url.Values{}
	params.Set("i", id)
	params.Set("Season", strconv.Itoa(season))
	params.Set("Episode", strconv.Itoa(episode))

	var out TitleResponse
	if err := c.getJSON(ctx, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) getJSON(ctx context.Context, params url.Values, dest any) error {
	body, err := c.get(ctx, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// get performs one logical request. Identical concurrent requests share a
// single upstream call and successful bodies are cached by their canonical
// query string.
//
// The shared call is detached from the caller that started it: a caller whose
// context ends stops waiting and gets its own context error, while the call
// keeps running for everyone else, bounded by callBudget.
func (c *Client) get(ctx context.Context, params url.Values) ([]byte, error) {
	key := params.Encode()
	if c.cache != nil {
		if body, ok := c.cache.Get(key); ok {
			return body, nil
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ch := c.group.DoChan(key, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.callBudget)
		defer cancel()
		body, err := c.fetchWithRetry(callCtx, params)
		if err != nil {
			return nil, err
		}
		if c.cache != nil {
			c.cache.Set(key, body)
		}
		return body, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			c.log.Debug("collapsed duplicate provider request", "query", key)
		}
		return res.Val.([]byte), nil
	}
}

func (c *Client) fetchWithRetry(ctx context.Context, params url.Values) ([]byte, error) {
	var body []byte
	policy := retry.Policy{
		MaxRetries: c.maxRetries,
		Backoff:    c.backoff,
		Retryable:  isRetryable,
		Timer:      c.timer,
		OnRetry: func(attempt int, err error, wait time.Duration) {
			c.log.Warn("provider request failed, retrying",
				"attempt", attempt, "max_retries", c.maxRetries, "wait", wait, "error", err)
		},
	}
	err := retry.Do(ctx, policy, func(ctx context.Context) error {
		b, err := c.fetchOnce(ctx, params)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// backoff waits retryDelay between attempts, twice as long after a 429.
func (c *Client) backoff(_ int, err error) time.Duration {
	if errors.Is(err, ErrRateLimited) {
		return 2 * c.retryDelay
	}
	return c.retryDelay
}

func (c *Client) fetchOnce(ctx context.Context, params url.Values) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build provider request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &RateLimitedError{RetryAfter: resp.Header.Get("Retry-After")}
	case resp.StatusCode >= 500:
		return nil, &TransportError{StatusCode: resp.StatusCode}
	case resp.StatusCode >= 400:
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(body), 200)}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if env.Error != "" || strings.EqualFold(env.Response, "False") {
		msg := env.Error
		if msg == "" {
			msg = "unknown provider error"
		}
		return nil, &ProviderError{Message: msg}
	}
	return body, nil
}

func setType(params url.Values, mediaType models.MediaType) {
	if mediaType != "" {
		params.Set("type", string(mediaType))
	}
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n]
}
