package client

import (
	"net/http"
	"time"
)

// Doer executes a single HTTP request. *http.Client satisfies it, as does any
// wrapper that adds tracing, retries or test doubles.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// defaultTimeout bounds requests made through DefaultTransport.
const defaultTimeout = 30 * time.Second

// DefaultTransport returns the HTTP client used when no WithHTTPClient option
// is supplied to New.
func DefaultTransport() *http.Client {
	return &http.Client{Timeout: defaultTimeout}
}
