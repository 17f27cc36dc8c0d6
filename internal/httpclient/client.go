package httpclient

import (
	"net/http"
	"time"
)

// DefaultTimeout bounds a whole request/response exchange
const DefaultTimeout = 30 * time.Second

// NewDefaultHTTPClient creates a simple HTTP client with a timeout. Zero disables the timeout.
func NewDefaultHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
	}
}
