// Package providers contains one thin client per upstream data provider plus
// the shared HTTP fetch/retry machinery they are built on. Upstream response
// shapes live only in this package; the rest of the system sees the internal
// entities of internal/models.
package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/semaphore"

	"github.com/parlaylab/sports-mcp/internal/models"
)

const (
	defaultUserAgent = "sports-mcp/1.0"
	maxAttempts      = 4
	bodyPrefixBytes  = 180
)

// retryDelays is the backoff schedule between attempts: 0.8s, 1.6s, 3.2s.
var retryDelays = [maxAttempts - 1]time.Duration{
	800 * time.Millisecond,
	1600 * time.Millisecond,
	3200 * time.Millisecond,
}

// ResponseCache is the optional same-day URL cache consulted before GETs.
type ResponseCache interface {
	Get(ctx context.Context, url string) ([]byte, bool)
	Set(ctx context.Context, url string, body []byte)
}

// ClientOptions configures a provider client. Sem is the process-wide
// outbound concurrency gate shared by every provider.
type ClientOptions struct {
	Timeout time.Duration
	Headers map[string]string
	Query   url.Values
	Breaker *gobreaker.CircuitBreaker
	Sem     *semaphore.Weighted
	Cache   ResponseCache
	Logger  *logrus.Logger
}

// Client performs single HTTP calls against one upstream with auth injection,
// per-call timeout, retry/backoff, and circuit breaking. It is safe for
// concurrent use and holds no per-request state.
type Client struct {
	name       string
	httpClient *http.Client
	logger     *logrus.Logger
	breaker    *gobreaker.CircuitBreaker
	sem        *semaphore.Weighted
	cache      ResponseCache
	timeout    time.Duration
	headers    map[string]string
	query      url.Values
	sleep      func(ctx context.Context, d time.Duration) error
}

func NewClient(name string, opts ClientOptions) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}
	return &Client{
		name:       name,
		httpClient: &http.Client{Timeout: timeout + time.Second},
		logger:     logger,
		breaker:    opts.Breaker,
		sem:        opts.Sem,
		cache:      opts.Cache,
		timeout:    timeout,
		headers:    opts.Headers,
		query:      opts.Query,
		sleep:      sleepCtx,
	}
}

// SetSleep overrides the backoff delay source. Tests use it to run the retry
// schedule against a recorded clock.
func (c *Client) SetSleep(fn func(ctx context.Context, d time.Duration) error) {
	c.sleep = fn
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// GetJSON fetches a URL and decodes the JSON body into out. Responses may be
// served from the URL cache when one is configured.
func (c *Client) GetJSON(ctx context.Context, rawURL string, out interface{}) error {
	full, err := c.withAuth(rawURL)
	if err != nil {
		// The URL is built in-process, never caller-supplied.
		return &models.InternalError{Detail: err.Error()}
	}
	if body, ok := c.cacheGet(ctx, full); ok {
		return decodeJSON(body, out)
	}
	body, err := c.do(ctx, http.MethodGet, full, nil)
	if err != nil {
		return err
	}
	c.cacheSet(ctx, full, body)
	return decodeJSON(body, out)
}

// PostJSON sends a JSON payload and decodes the JSON response into out. POSTs
// are never cached.
func (c *Client) PostJSON(ctx context.Context, rawURL string, payload, out interface{}) error {
	full, err := c.withAuth(rawURL)
	if err != nil {
		return &models.InternalError{Detail: err.Error()}
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return &models.InternalError{Detail: err.Error()}
	}
	body, err := c.do(ctx, http.MethodPost, full, encoded)
	if err != nil {
		return err
	}
	return decodeJSON(body, out)
}

// withAuth merges the provider's auth query parameters into the URL. Header
// auth is applied per request instead.
func (c *Client) withAuth(rawURL string) (string, error) {
	if len(c.query) == 0 {
		return rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, vs := range c.query {
		for _, v := range vs {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) cacheGet(ctx context.Context, url string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	return c.cache.Get(ctx, url)
}

func (c *Client) cacheSet(ctx context.Context, url string, body []byte) {
	if c.cache == nil {
		return
	}
	c.cache.Set(ctx, url, body)
}

// do runs one logical upstream call: semaphore permit, circuit breaker, and
// up to maxAttempts HTTP attempts with exponential backoff. Only 429, 500,
// 502, 503, 504 and transport-level failures are retried; any other non-2xx
// status is terminal.
func (c *Client) do(ctx context.Context, method, fullURL string, payload []byte) ([]byte, error) {
	if c.sem != nil {
		if err := c.sem.Acquire(ctx, 1); err != nil {
			return nil, &models.UpstreamTransientError{Reason: "request cancelled before dispatch"}
		}
		defer c.sem.Release(1)
	}

	run := func() (interface{}, error) {
		return c.attemptLoop(ctx, method, fullURL, payload)
	}

	var result interface{}
	var err error
	if c.breaker != nil {
		result, err = c.breaker.Execute(run)
	} else {
		result, err = run()
	}
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &models.UpstreamTransientError{Reason: fmt.Sprintf("%s circuit breaker open", c.name)}
		}
		return nil, err
	}
	return result.([]byte), nil
}

func (c *Client) attemptLoop(ctx context.Context, method, fullURL string, payload []byte) ([]byte, error) {
	var lastStatus int
	var lastReason string

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			if err := c.sleep(ctx, retryDelays[attempt-1]); err != nil {
				return nil, &models.UpstreamTransientError{Status: lastStatus, Reason: "request cancelled during backoff"}
			}
		}

		body, status, err := c.attempt(ctx, method, fullURL, payload)
		if err == nil {
			return body, nil
		}

		var transient *models.UpstreamTransientError
		if errors.As(err, &transient) {
			lastStatus = transient.Status
			lastReason = transient.Reason
			c.logger.WithFields(logrus.Fields{
				"provider": c.name,
				"attempt":  attempt + 1,
				"status":   status,
				"url":      redactURL(fullURL),
			}).Warn("Upstream attempt failed, will retry")
			continue
		}
		// Terminal: 4xx other than 429, or a decode failure.
		return nil, err
	}

	return nil, &models.UpstreamTransientError{Status: lastStatus, Reason: fmt.Sprintf("%s after %d attempts", lastReason, maxAttempts)}
}

// attempt performs exactly one HTTP round trip under the per-call timeout.
func (c *Client) attempt(ctx context.Context, method, fullURL string, payload []byte) ([]byte, int, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(callCtx, method, fullURL, reqBody)
	if err != nil {
		return nil, 0, &models.InternalError{Detail: err.Error()}
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		reason := "connection failed"
		if callCtx.Err() == context.DeadlineExceeded {
			reason = "timeout"
		}
		return nil, 0, &models.UpstreamTransientError{Reason: reason}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, resp.StatusCode, &models.UpstreamTransientError{Status: resp.StatusCode, Reason: "body read failed"}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, resp.StatusCode, nil
	}
	if retryableStatus(resp.StatusCode) {
		return nil, resp.StatusCode, &models.UpstreamTransientError{Status: resp.StatusCode, Reason: "server error"}
	}
	return nil, resp.StatusCode, &models.UpstreamHTTPError{Status: resp.StatusCode, BodyPrefix: prefix(body)}
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func decodeJSON(body []byte, out interface{}) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &models.UpstreamDecodeError{Reason: err.Error()}
	}
	return nil
}

func prefix(body []byte) string {
	if len(body) > bodyPrefixBytes {
		body = body[:bodyPrefixBytes]
	}
	return string(body)
}

// redactURL strips the query string so auth tokens never reach the logs.
func redactURL(raw string) string {
	if u, err := url.Parse(raw); err == nil {
		u.RawQuery = ""
		return u.String()
	}
	return ""
}
