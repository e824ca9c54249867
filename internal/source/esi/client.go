// Package esi talks to an ESI-style character API and provides the built-in
// endpoint descriptors.
package esi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"account_sync/internal/domain"
	"account_sync/internal/endpoint"
	"account_sync/internal/metrics"
)

const (
	breakerName     = "esi"
	maxBodySize     = 16 << 20
	errorLimitReset = "X-Esi-Error-Limit-Reset"
	pagesHeader     = "X-Pages"
)

// TokenProvider resolves the access token for an account.
type TokenProvider interface {
	Token(ctx context.Context, account domain.SyncAccount) (string, error)
}

// EnvTokenProvider reads the token from the environment variable named by
// the account's credential reference.
type EnvTokenProvider struct{}

func (EnvTokenProvider) Token(_ context.Context, account domain.SyncAccount) (string, error) {
	if account.CredentialRef == "" {
		return "", errors.New("account has no credential reference")
	}
	token := os.Getenv(account.CredentialRef)
	if token == "" {
		return "", fmt.Errorf("credential %s is not set", account.CredentialRef)
	}
	return token, nil
}

type BreakerConfig struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	FailureRatio float64
	MinRequests  uint32
}

type Config struct {
	BaseURL           string
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64
	Breaker           BreakerConfig
}

// Client issues authenticated GET requests. All requests share one rate
// limiter and one circuit breaker; the breaker only counts transient
// failures, so a revoked grant on one account cannot open it.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	tokens     TokenProvider
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[endpoint.FetchResult]
	logger     *slog.Logger
}

func New(cfg Config, tokens TokenProvider, logger *slog.Logger) *Client {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := max(int(cfg.RequestsPerSecond), 1)

	logger = logger.With("source", breakerName)
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	settings := gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: cfg.Breaker.MaxRequests,
		Interval:    cfg.Breaker.Interval,
		Timeout:     cfg.Breaker.Timeout,
		IsSuccessful: func(err error) bool {
			return err == nil || domain.IsPermanent(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "from", from.String(), "to", to.String())
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	}
	// Without a ratio the library default applies: more than five consecutive failures.
	if cfg.Breaker.FailureRatio > 0 {
		settings.ReadyToTrip = func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.Breaker.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.Breaker.FailureRatio
		}
	}
	breaker := gobreaker.NewCircuitBreaker[endpoint.FetchResult](settings)

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		tokens:    tokens,
		limiter:   rate.NewLimiter(limit, burst),
		breaker:   breaker,
		logger:    logger,
	}
}

// Get fetches one resource for account. When the response announces more
// than one page, every page is fetched and the JSON arrays are concatenated,
// so callers always see the complete set.
func (c *Client) Get(ctx context.Context, account domain.SyncAccount, path string) (endpoint.FetchResult, error) {
	token, err := c.tokens.Token(ctx, account)
	if err != nil {
		return endpoint.FetchResult{}, domain.NewPermanentError(0, fmt.Errorf("resolve token: %w", err))
	}

	first, pages, err := c.getPage(ctx, token, path, 1)
	if err != nil {
		return endpoint.FetchResult{}, err
	}
	if pages <= 1 {
		return first, nil
	}

	items, err := decodeArray(first.Payload)
	if err != nil {
		return endpoint.FetchResult{}, err
	}
	expires := first.Expires

	for page := 2; page <= pages; page++ {
		next, _, err := c.getPage(ctx, token, path, page)
		if err != nil {
			return endpoint.FetchResult{}, fmt.Errorf("page %d: %w", page, err)
		}
		more, err := decodeArray(next.Payload)
		if err != nil {
			return endpoint.FetchResult{}, fmt.Errorf("page %d: %w", page, err)
		}
		items = append(items, more...)
		expires = earliest(expires, next.Expires)

		c.logger.Debug("fetched page", "path", path, "page", page, "pages", pages)
	}

	payload, err := json.Marshal(items)
	if err != nil {
		return endpoint.FetchResult{}, fmt.Errorf("encode pages: %w", err)
	}
	return endpoint.FetchResult{Payload: payload, Expires: expires}, nil
}

func (c *Client) getPage(ctx context.Context, token, path string, page int) (endpoint.FetchResult, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return endpoint.FetchResult{}, 0, fmt.Errorf("rate limit: %w", err)
	}

	url := c.baseURL + path
	if page > 1 {
		url += "?page=" + strconv.Itoa(page)
	}

	pages := 1
	result, err := c.breaker.Execute(func() (endpoint.FetchResult, error) {
		res, n, err := c.doRequest(ctx, token, url)
		pages = n
		return res, err
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return endpoint.FetchResult{}, 0, domain.NewTransientError(0, err)
	}
	return result, pages, err
}

func (c *Client) doRequest(ctx context.Context, token, url string) (endpoint.FetchResult, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return endpoint.FetchResult{}, 0, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RemoteResponses.WithLabelValues("error").Inc()
		return endpoint.FetchResult{}, 0, domain.NewTransientError(0, fmt.Errorf("execute request: %w", err))
	}
	defer resp.Body.Close()

	metrics.RemoteResponses.WithLabelValues(statusClass(resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		return endpoint.FetchResult{}, 0, classify(resp)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return endpoint.FetchResult{}, 0, domain.NewTransientError(resp.StatusCode, fmt.Errorf("read body: %w", err))
	}

	pages := 1
	if v := resp.Header.Get(pagesHeader); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			pages = n
		}
	}

	return endpoint.FetchResult{Payload: body, Expires: parseExpires(resp.Header)}, pages, nil
}

// classify maps a non-200 response onto the remote error taxonomy.
func classify(resp *http.Response) error {
	msg := readErrorMessage(resp.Body)
	err := fmt.Errorf("unexpected status: %d: %s", resp.StatusCode, msg)

	switch {
	case resp.StatusCode == 420 || resp.StatusCode == http.StatusTooManyRequests:
		re := domain.NewTransientError(resp.StatusCode, err)
		re.RetryAfter = retryAfter(resp.Header)
		return re
	case resp.StatusCode >= 500:
		return domain.NewTransientError(resp.StatusCode, err)
	case resp.StatusCode >= 400:
		return domain.NewPermanentError(resp.StatusCode, err)
	default:
		return domain.NewTransientError(resp.StatusCode, err)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func readErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return "no body"
	}
	var body errorBody
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return strings.TrimSpace(string(data))
}

func retryAfter(h http.Header) time.Duration {
	for _, name := range []string{"Retry-After", errorLimitReset} {
		if v := h.Get(name); v != "" {
			if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
				return time.Duration(secs) * time.Second
			}
		}
	}
	return 0
}

func parseExpires(h http.Header) *time.Time {
	v := h.Get("Expires")
	if v == "" {
		return nil
	}
	t, err := http.ParseTime(v)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

func decodeArray(payload []byte) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, fmt.Errorf("%w: paged response is not an array: %v", domain.ErrMalformedPayload, err)
	}
	return items, nil
}

func earliest(a, b *time.Time) *time.Time {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case b.Before(*a):
		return b
	}
	return a
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

func stateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
