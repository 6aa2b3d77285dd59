package util

import (
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/shopmonkeyus/go-common/logger"
)

const maxAttempts = 3

// HTTPRetry retries a request on transient transport failures and retryable
// status codes with jittered backoff.
type HTTPRetry struct {
	attempts int
	req      *http.Request
	client   *http.Client
	logger   logger.Logger
}

func (r *HTTPRetry) shouldRetry(resp *http.Response, err error) bool {
	if err != nil {
		msg := err.Error()
		if strings.Contains(msg, "connection reset") || strings.Contains(msg, "connection refused") {
			return r.attempts <= maxAttempts
		}
	}
	if resp != nil {
		switch resp.StatusCode {
		case http.StatusRequestTimeout, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout, http.StatusTooManyRequests:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return r.attempts <= maxAttempts
		}
	}
	return false
}

func (r *HTTPRetry) Do() (*http.Response, error) {
	r.attempts++
	resp, err := r.client.Do(r.req)
	if r.shouldRetry(resp, err) {
		jitter := time.Millisecond*100 + time.Duration(rand.Int63n(int64(500*time.Millisecond)*int64(r.attempts)))
		if r.logger != nil {
			var code int
			if resp != nil {
				code = resp.StatusCode
			}
			r.logger.Trace("request failed (path: %s) (status: %d), retrying request in %v", r.req.URL.String(), code, jitter)
		}
		time.Sleep(jitter)
		return r.Do()
	}
	return resp, err
}

type HTTPRetryOption func(*HTTPRetry)

func WithLogger(logger logger.Logger) HTTPRetryOption {
	return func(r *HTTPRetry) {
		r.logger = logger
	}
}

// WithClient overrides the HTTP client used for the request.
func WithClient(client *http.Client) HTTPRetryOption {
	return func(r *HTTPRetry) {
		r.client = client
	}
}

// NewHTTPRetry creates a new utility for retrying HTTP requests.
func NewHTTPRetry(req *http.Request, opts ...HTTPRetryOption) *HTTPRetry {
	retry := HTTPRetry{
		req:    req,
		client: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(&retry)
	}
	return &retry
}
