package news

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"slices"
	"time"

	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/internal/model"
	"github.com/cenkalti/backoff/v5"
)

const (
	DefaultMaxAttempts = 5
	DefaultBaseDelay   = time.Second
	DefaultTimeout     = 30 * time.Second
	DefaultUserAgent   = "YahooFinanceClient/1.0 (+https://github.com/yourrepo)"

	// MaxBackoffWait caps the exponential part of a retry wait.
	MaxBackoffWait = 10 * time.Minute

	defaultAccept       = "application/rss+xml, application/xml;q=0.9, text/html;q=0.8, text/plain;q=0.7, */*;q=0.5"
	defaultMaxBodyBytes = 10 << 20
)

var (
	ErrRetriesExhausted = errors.New("retries exhausted")
	ErrStatus           = errors.New("unexpected http status")
	ErrBodyTooLarge     = errors.New("response body too large")
)

// FetchError is returned by BackoffClient.Fetch for every failure path.
type FetchError struct {
	URL        string
	Attempts   int
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s (attempt %d, status %d): %v", e.URL, e.Attempts, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s (attempt %d): %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// RetryPolicy names the status codes a caller considers transient.
type RetryPolicy struct {
	Name     string
	Statuses []int
}

func (p RetryPolicy) Retryable(status int) bool {
	return slices.Contains(p.Statuses, status)
}

var (
	RSSPolicy  = RetryPolicy{Name: "rss", Statuses: []int{http.StatusTooManyRequests}}
	PagePolicy = RetryPolicy{Name: "page", Statuses: []int{http.StatusTooManyRequests, http.StatusServiceUnavailable}}
	APIPolicy  = RetryPolicy{Name: "api", Statuses: []int{http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout}}
)

// AttemptObserver is notified of every HTTP attempt. A panicking observer is
// recovered and ignored.
type AttemptObserver interface {
	ObserveAttempt(policy string, attempt model.FetchAttempt)
}

type ObserverFunc func(policy string, attempt model.FetchAttempt)

func (f ObserverFunc) ObserveAttempt(policy string, attempt model.FetchAttempt) {
	f(policy, attempt)
}

// LogObserver writes one structured line per attempt.
type LogObserver struct {
	Logger *slog.Logger
}

func (o LogObserver) ObserveAttempt(policy string, a model.FetchAttempt) {
	attrs := []any{
		"policy", policy,
		"url", a.URL,
		"attempt", a.AttemptNumber,
		"status", a.HTTPStatus,
		"outcome", a.Outcome,
	}
	switch a.Outcome {
	case model.OutcomeSuccess:
		o.Logger.Debug("fetch attempt", attrs...)
	case model.OutcomeRetry:
		o.Logger.Warn("fetch attempt backing off", append(attrs, "wait", a.Wait.String())...)
	default:
		if a.Err != nil {
			attrs = append(attrs, "error", a.Err)
		}
		o.Logger.Error("fetch attempt failed", attrs...)
	}
}

// Limiter paces outbound requests. Wait blocks until a request to rawURL may
// be issued or ctx is done.
type Limiter interface {
	Wait(ctx context.Context, rawURL string) error
}

type BackoffConfig struct {
	MaxAttempts  int
	BaseDelay    time.Duration
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
}

// BackoffClient issues GET requests and retries statuses the caller declared
// transient. It holds no per-request state and is safe for concurrent use;
// it has no cookie jar, so nothing set by one response reaches another request.
type BackoffClient struct {
	httpClient *http.Client
	cfg        BackoffConfig
	limiter    Limiter
	observers  []AttemptObserver

	jitter     func() float64
	jitterSpan time.Duration
}

type Option func(*BackoffClient)

func WithLimiter(l Limiter) Option {
	return func(c *BackoffClient) { c.limiter = l }
}

func WithObserver(o AttemptObserver) Option {
	return func(c *BackoffClient) { c.observers = append(c.observers, o) }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *BackoffClient) { c.httpClient = hc }
}

func NewBackoffClient(cfg BackoffConfig, opts ...Option) *BackoffClient {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}

	c := &BackoffClient{
		cfg:        cfg,
		jitter:     rand.Float64,
		jitterSpan: time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Transport: newTransport(), Timeout: cfg.Timeout}
	}
	if len(c.observers) == 0 {
		c.observers = []AttemptObserver{LogObserver{Logger: slog.Default()}}
	}
	return c
}

func newTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DisableCompression:  true,
	}
}

// Backoff returns the wait before retrying after attempt k (1-indexed):
// base*2^(k-1) plus up to one second of jitter. The exponential part is
// capped at MaxBackoffWait.
func (c *BackoffClient) Backoff(attempt int) time.Duration {
	exp := float64(c.cfg.BaseDelay) * math.Pow(2, float64(attempt-1))
	exp = min(exp, float64(MaxBackoffWait))
	return time.Duration(exp + c.jitter()*float64(c.jitterSpan))
}

// attemptBackOff feeds BackoffClient.Backoff to backoff.Retry.
type attemptBackOff struct {
	client  *BackoffClient
	attempt int
}

func (b *attemptBackOff) NextBackOff() time.Duration {
	b.attempt++
	return b.client.Backoff(b.attempt)
}

func (b *attemptBackOff) Reset() {
	b.attempt = 0
}

// retryableStatus is the error an attempt returns when policy allows a retry.
type retryableStatus struct {
	status int
}

func (e *retryableStatus) Error() string {
	return fmt.Sprintf("retryable status %d", e.status)
}

// Fetch returns the body of url. Statuses in policy are retried with backoff
// up to MaxAttempts; anything else that is not 2xx, and any transport error,
// fails on first occurrence.
func (c *BackoffClient) Fetch(ctx context.Context, url string, policy RetryPolicy) ([]byte, error) {
	var attempt, lastStatus int

	op := func() ([]byte, error) {
		attempt++
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx, url); err != nil {
				c.observe(policy, model.FetchAttempt{URL: url, AttemptNumber: attempt, Outcome: model.OutcomeCanceled, Err: err})
				return nil, backoff.Permanent(&FetchError{URL: url, Attempts: attempt, StatusCode: lastStatus, Err: fmt.Errorf("rate limiting: %w", err)})
			}
		}

		body, status, err := c.do(ctx, url)
		lastStatus = status
		if err != nil {
			outcome := model.OutcomeFailed
			if ctx.Err() != nil {
				outcome = model.OutcomeCanceled
			}
			c.observe(policy, model.FetchAttempt{URL: url, AttemptNumber: attempt, HTTPStatus: status, Outcome: outcome, Err: err})
			return nil, backoff.Permanent(&FetchError{URL: url, Attempts: attempt, StatusCode: status, Err: err})
		}

		if status >= 200 && status < 300 {
			c.observe(policy, model.FetchAttempt{URL: url, AttemptNumber: attempt, HTTPStatus: status, Outcome: model.OutcomeSuccess})
			return body, nil
		}

		if !policy.Retryable(status) {
			err := fmt.Errorf("%w: %d", ErrStatus, status)
			c.observe(policy, model.FetchAttempt{URL: url, AttemptNumber: attempt, HTTPStatus: status, Outcome: model.OutcomeFailed, Err: err})
			return nil, backoff.Permanent(&FetchError{URL: url, Attempts: attempt, StatusCode: status, Err: err})
		}
		return nil, &retryableStatus{status: status}
	}

	body, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(&attemptBackOff{client: c}),
		backoff.WithMaxTries(uint(c.cfg.MaxAttempts)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, wait time.Duration) {
			c.observe(policy, model.FetchAttempt{URL: url, AttemptNumber: attempt, HTTPStatus: lastStatus, Outcome: model.OutcomeRetry, Wait: wait})
		}),
	)
	if err == nil {
		return body, nil
	}

	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return nil, fetchErr
	}

	var retryable *retryableStatus
	if errors.As(err, &retryable) {
		c.observe(policy, model.FetchAttempt{URL: url, AttemptNumber: attempt, HTTPStatus: retryable.status, Outcome: model.OutcomeExhausted, Err: ErrRetriesExhausted})
		return nil, &FetchError{URL: url, Attempts: attempt, StatusCode: retryable.status, Err: ErrRetriesExhausted}
	}

	// ctx ended while waiting between attempts
	c.observe(policy, model.FetchAttempt{URL: url, AttemptNumber: attempt, HTTPStatus: lastStatus, Outcome: model.OutcomeCanceled, Err: err})
	return nil, &FetchError{URL: url, Attempts: attempt, StatusCode: lastStatus, Err: fmt.Errorf("backoff interrupted: %w", err)}
}

func (c *BackoffClient) do(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", defaultAccept)
	req.Header.Set("Accept-Encoding", "identity")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// drain so the connection can go back to the pool
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, resp.StatusCode, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxBodyBytes+1))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > c.cfg.MaxBodyBytes {
		return nil, resp.StatusCode, fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, c.cfg.MaxBodyBytes)
	}
	return body, resp.StatusCode, nil
}

func (c *BackoffClient) observe(policy RetryPolicy, attempt model.FetchAttempt) {
	for _, o := range c.observers {
		notify(o, policy.Name, attempt)
	}
}

func notify(o AttemptObserver, policy string, attempt model.FetchAttempt) {
	defer func() {
		_ = recover()
	}()
	o.ObserveAttempt(policy, attempt)
}
