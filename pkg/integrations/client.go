package integrations

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/PrismLauncher/mcmeta/pkg/buildinfo"
	"github.com/PrismLauncher/mcmeta/pkg/cache"
	mcerrors "github.com/PrismLauncher/mcmeta/pkg/errors"
	"github.com/PrismLauncher/mcmeta/pkg/httputil"
	"github.com/PrismLauncher/mcmeta/pkg/observability"
)

// Client provides shared HTTP functionality for all upstream clients.
// It handles response caching, retry logic, rate limiting and common
// request headers.
type Client struct {
	http      *http.Client
	cache     cache.Cache
	keyer     cache.Keyer
	namespace string
	ttl       time.Duration
	headers   map[string]string
	limiter   *rate.Limiter
	slots     *semaphore.Weighted
}

// NewClient creates a Client that caches responses in c under namespace for
// ttl. Headers are applied to all requests made through this client.
// Pass nil for headers if no default headers are needed.
func NewClient(c cache.Cache, namespace string, ttl time.Duration, headers map[string]string) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		http:      NewHTTPClient(),
		cache:     c,
		keyer:     cache.NewDefaultKeyer(),
		namespace: namespace,
		ttl:       ttl,
		headers:   headers,
	}
}

// SetRateLimit caps outgoing requests at rps per second. Zero or less
// removes the cap.
func (c *Client) SetRateLimit(rps float64) {
	if rps <= 0 {
		c.limiter = nil
		return
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
}

// SetSlots bounds in-flight requests by s. Clients sharing s share the bound.
// Nil removes it.
func (c *Client) SetSlots(s *semaphore.Weighted) {
	c.slots = s
}

// SetKeyer replaces the cache key builder.
func (c *Client) SetKeyer(k cache.Keyer) {
	if k != nil {
		c.keyer = k
	}
}

// SetHTTPClient replaces the underlying HTTP client.
func (c *Client) SetHTTPClient(h *http.Client) {
	c.http = h
}

// Cached returns the body stored under key, or calls fetch with retries and
// caches what it returns. If refresh is true the cache is bypassed.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, fetch func() ([]byte, error)) ([]byte, error) {
	ck := c.keyer.HTTPKey(c.namespace, key)
	if !refresh {
		if data, ok, _ := c.cache.Get(ctx, ck); ok {
			observability.Cache().OnCacheHit(ctx, c.namespace)
			return data, nil
		}
		observability.Cache().OnCacheMiss(ctx, c.namespace)
	}

	var data []byte
	err := httputil.RetryWithBackoff(ctx, func() error {
		var err error
		data, err = fetch()
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, ck, data, c.ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, c.namespace, len(data))
	}
	return data, nil
}

// FetchCached GETs url through the response cache under key.
func (c *Client) FetchCached(ctx context.Context, key, url string, refresh bool) ([]byte, error) {
	return c.Cached(ctx, key, refresh, func() ([]byte, error) {
		return c.GetBytes(ctx, url)
	})
}

// Download GETs url with retries and no caching. Used for archives.
func (c *Client) Download(ctx context.Context, url string) ([]byte, error) {
	var data []byte
	err := httputil.RetryWithBackoff(ctx, func() error {
		var err error
		data, err = c.GetBytes(ctx, url)
		return err
	})
	return data, err
}

// GetBytes performs a single HTTP GET request and returns the body. The
// slot, if any, is held until the body has been read.
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	if c.slots != nil {
		if err := c.slots.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer c.slots.Release(1)
	}
	body, err := c.doRequest(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, classifyTransport(url, err)
	}
	return data, nil
}

func (c *Client) doRequest(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, mcerrors.Wrap(mcerrors.ErrCodeRateLimited, err, "wait for %s", rawURL)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, mcerrors.Wrap(mcerrors.ErrCodeInvalidInput, err, "build request")
	}
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	host, path := hostPath(rawURL)
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, http.MethodGet, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, http.MethodGet, host, path, err)
		return nil, classifyTransport(rawURL, err)
	}
	hooks.OnResponse(ctx, http.MethodGet, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp); err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: %w", rawURL, err)
	}
	return resp.Body, nil
}

func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return mcerrors.Wrap(mcerrors.ErrCodeNotFound, ErrNotFound, "status %d", code)
	case code == http.StatusTooManyRequests, code == http.StatusServiceUnavailable:
		ec := mcerrors.ErrCodeRateLimited
		if code != http.StatusTooManyRequests {
			ec = mcerrors.ErrCodeNetwork
		}
		return &httputil.RetryableError{
			Err:   mcerrors.Wrap(ec, ErrNetwork, "status %d", code),
			After: httputil.RetryAfter(resp.Header.Get("Retry-After"), time.Now()),
		}
	case code >= 500:
		return &httputil.RetryableError{Err: mcerrors.Wrap(mcerrors.ErrCodeNetwork, ErrNetwork, "status %d", code)}
	default:
		return mcerrors.Wrap(mcerrors.ErrCodeNetwork, ErrNetwork, "status %d", code)
	}
}

// classifyTransport turns a client or body-read error into a retryable,
// Transient-class error. Timeouts keep their own code.
func classifyTransport(rawURL string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	code := mcerrors.ErrCodeNetwork
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		code = mcerrors.ErrCodeTimeout
	}
	return &httputil.RetryableError{Err: mcerrors.Wrap(code, fmt.Errorf("%w: %v", ErrNetwork, err), "GET %s", rawURL)}
}

func hostPath(rawURL string) (string, string) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", rawURL
	}
	return u.Host, u.Path
}
