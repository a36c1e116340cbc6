package httputil

import (
	"context"
	"net/http"
	"time"
)

const DefaultTimeout = 30 * time.Second

// UserAgent is sent with every outbound request.
const UserAgent = "homeenergy/1.0"

// NewClient returns an HTTP client with the standard timeout. A zero
// timeout selects DefaultTimeout.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
	}
}

// NewRequest builds a GET request carrying the standard headers.
func NewRequest(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgent)
	return req, nil
}
