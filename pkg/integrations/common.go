package integrations

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

const httpTimeout = 10 * time.Second

// downloadTimeout bounds archive downloads, which are far larger than
// metadata documents.
const downloadTimeout = 2 * time.Minute

var (
	// ErrNotFound is returned when an upstream resource doesn't exist.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// JSONHeaders are sent by clients that only fetch JSON documents.
var JSONHeaders = map[string]string{"Accept": "application/json"}

// NewHTTPClient creates an HTTP client with a standard timeout for metadata requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// NewDownloadClient creates an HTTP client for archive downloads.
func NewDownloadClient() *http.Client {
	return &http.Client{Timeout: downloadTimeout}
}

// JoinURL joins base and path segments with single slashes.
func JoinURL(base string, parts ...string) string {
	out := strings.TrimRight(base, "/")
	for _, p := range parts {
		out += "/" + strings.Trim(p, "/")
	}
	return out
}
