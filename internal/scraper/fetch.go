package scraper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/niftydata/fundamentals-api/internal/apperror"
)

const (
	defaultMaxRetries = 5
	defaultBackoff    = 500 * time.Millisecond
	maxBackoff        = 30 * time.Second

	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// Fetcher wraps an http.Client with a token-bucket rate limit and retry with
// exponential backoff. Responses with status 429 or 5xx are retried; a 429's
// Retry-After header is honored when present.
type Fetcher struct {
	client     *http.Client
	limiter    *rate.Limiter
	maxRetries int
	backoff    time.Duration
}

type FetcherOption func(*Fetcher)

func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) { f.client = c }
}

func WithRateLimit(rps float64) FetcherOption {
	return func(f *Fetcher) { f.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

func WithMaxRetries(n int) FetcherOption {
	return func(f *Fetcher) { f.maxRetries = n }
}

func WithBackoff(d time.Duration) FetcherOption {
	return func(f *Fetcher) { f.backoff = d }
}

func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:     &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(2), 1),
		maxRetries: defaultMaxRetries,
		backoff:    defaultBackoff,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Get fetches a URL and returns the response body. It retries transient
// upstream failures and returns the last error once retries are exhausted.
func (f *Fetcher) Get(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, f.retryDelay(attempt, lastErr)); err != nil {
				return nil, err
			}
		}
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, err := f.fetch(ctx, url, headers)
		if err == nil {
			return body, nil
		}
		if !retryable(err) {
			return nil, apperror.New(apperror.Upstream, fmt.Sprintf("fetch %s: %v", url, err))
		}

		lastErr = err
		slog.Warn("fetch retry", "url", url, "attempt", attempt+1, "error", err)
	}

	return nil, apperror.New(apperror.Upstream, fmt.Sprintf("fetch %s: retries exhausted: %v", url, lastErr))
}

func (f *Fetcher) fetch(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := f.client.Do(req)
	if err != nil {
		return nil, &statusError{status: 0, cause: err}
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil, &statusError{
			status:     res.StatusCode,
			retryAfter: parseRetryAfter(res.Header.Get("Retry-After")),
		}
	}

	return io.ReadAll(res.Body)
}

// retryDelay doubles the base backoff per attempt, with jitter. A 429 that
// carried a Retry-After header takes precedence, plus a little extra to be
// polite to the upstream.
func (f *Fetcher) retryDelay(attempt int, lastErr error) time.Duration {
	if se, ok := lastErr.(*statusError); ok && se.retryAfter > 0 {
		return se.retryAfter + time.Duration(rand.Int63n(int64(time.Second)))
	}

	d := f.backoff << (attempt - 1)
	if se, ok := lastErr.(*statusError); ok && se.status == http.StatusTooManyRequests {
		d *= 2
	}
	if d > maxBackoff {
		d = maxBackoff
	}
	return d + time.Duration(rand.Int63n(int64(f.backoff)))
}

type statusError struct {
	status     int
	retryAfter time.Duration
	cause      error
}

func (e *statusError) Error() string {
	if e.cause != nil {
		return e.cause.Error()
	}
	return fmt.Sprintf("unexpected status %d", e.status)
}

func (e *statusError) Unwrap() error { return e.cause }

func retryable(err error) bool {
	se, ok := err.(*statusError)
	if !ok {
		return false
	}
	switch se.status {
	case 0: // transport error
		return true
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
