package integrations

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/PrismLauncher/mcmeta/pkg/cache"
	mcerrors "github.com/PrismLauncher/mcmeta/pkg/errors"
	"github.com/PrismLauncher/mcmeta/pkg/httputil"
)

func newTestClient(t *testing.T, server *httptest.Server, headers map[string]string) *Client {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	client := NewClient(c, "test", time.Hour, headers)
	if server != nil {
		client.http = server.Client()
	}
	return client
}

func TestNewClient(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	defer c.Close()

	headers := map[string]string{"Accept": "application/json"}
	client := NewClient(c, "test", time.Hour, headers)

	if client == nil {
		t.Fatal("NewClient() returned nil")
	}
	if client.http == nil {
		t.Error("NewClient() http client is nil")
	}
	if client.cache != c {
		t.Error("NewClient() cache not set correctly")
	}
	if client.headers["Accept"] != "application/json" {
		t.Error("NewClient() headers not set correctly")
	}
}

func TestNewClientNilCache(t *testing.T) {
	client := NewClient(nil, "test", time.Hour, nil)
	if client.cache == nil {
		t.Fatal("nil cache should fall back to a null cache")
	}
	if client.headers != nil {
		t.Error("NewClient() should allow nil headers")
	}
}

func TestClientGetBytes(t *testing.T) {
	var agent, accept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		agent = r.Header.Get("User-Agent")
		accept = r.Header.Get("Accept")
		w.Write([]byte(`{"message": "hello"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server, map[string]string{"Accept": "application/json"})
	data, err := client.GetBytes(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("GetBytes() error: %v", err)
	}
	if string(data) != `{"message": "hello"}` {
		t.Errorf("GetBytes() = %q", data)
	}
	if !strings.HasPrefix(agent, "mcmeta/") {
		t.Errorf("User-Agent = %q", agent)
	}
	if accept != "application/json" {
		t.Errorf("Accept = %q, default header not sent", accept)
	}
}

func TestClientGet404IsDataError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(t, server, nil)

	_, err := client.GetBytes(context.Background(), server.URL)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetBytes() error = %v, want ErrNotFound", err)
	}
	if mcerrors.ClassOf(err) != mcerrors.DataError {
		t.Errorf("class = %s, want data_error", mcerrors.ClassOf(err))
	}
}

func TestClientGet500IsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, server, nil)

	_, err := client.GetBytes(context.Background(), server.URL)
	if err == nil {
		t.Fatal("GetBytes() should return error for 500")
	}
	if !httputil.IsRetryable(err) {
		t.Errorf("GetBytes() error should be retryable, got %T", err)
	}
	if mcerrors.ClassOf(err) != mcerrors.Transient {
		t.Errorf("class = %s, want transient", mcerrors.ClassOf(err))
	}
}

func TestClientTimeoutIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := newTestClient(t, server, nil)
	client.http.Timeout = 20 * time.Millisecond

	_, err := client.GetBytes(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected timeout")
	}
	if mcerrors.GetCode(err) != mcerrors.ErrCodeTimeout {
		t.Errorf("code = %s, want TIMEOUT", mcerrors.GetCode(err))
	}
	if mcerrors.ClassOf(err) != mcerrors.Transient {
		t.Errorf("class = %s", mcerrors.ClassOf(err))
	}
}

func TestClientFetchCached(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"v":1}`))
	}))
	defer server.Close()

	client := newTestClient(t, server, nil)
	ctx := context.Background()

	for range 3 {
		data, err := client.FetchCached(ctx, "doc", server.URL, false)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != `{"v":1}` {
			t.Errorf("data = %s", data)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("upstream hits = %d, want 1", hits.Load())
	}

	if _, err := client.FetchCached(ctx, "doc", server.URL, true); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 2 {
		t.Errorf("refresh did not bypass cache: hits = %d", hits.Load())
	}
}

func TestClientCachedFetchError(t *testing.T) {
	client := newTestClient(t, nil, nil)

	calls := 0
	_, err := client.Cached(context.Background(), "missing", false, func() ([]byte, error) {
		calls++
		return nil, ErrNotFound
	})
	if err == nil {
		t.Error("Cached() should return error when fetch fails")
	}
	if calls != 1 {
		t.Errorf("non-retryable error fetched %d times", calls)
	}
}

func TestClientRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := newTestClient(t, server, nil)
	client.SetRateLimit(20)

	start := time.Now()
	for range 3 {
		if _, err := client.GetBytes(context.Background(), server.URL); err != nil {
			t.Fatal(err)
		}
	}
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Errorf("3 requests at 20 rps took %v", elapsed)
	}

	client.SetRateLimit(0)
	if client.limiter != nil {
		t.Error("SetRateLimit(0) should remove the limiter")
	}
}

func TestClientSharedSlots(t *testing.T) {
	var inFlight, peak atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	slots := semaphore.NewWeighted(2)
	a := newTestClient(t, server, nil)
	b := newTestClient(t, server, nil)
	a.SetSlots(slots)
	b.SetSlots(slots)

	var wg sync.WaitGroup
	for i := range 12 {
		c := a
		if i%2 == 1 {
			c = b
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.GetBytes(context.Background(), server.URL); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if got := peak.Load(); got > 2 {
		t.Errorf("peak in-flight requests = %d, want <= 2", got)
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		name      string
		code      int
		wantErr   bool
		wantClass mcerrors.Class
		retryable bool
		header    string
		wantAfter time.Duration
	}{
		{name: "200 OK", code: 200},
		{name: "404 Not Found", code: 404, wantErr: true, wantClass: mcerrors.DataError},
		{name: "429 Too Many Requests", code: 429, wantErr: true, wantClass: mcerrors.Transient, retryable: true},
		{name: "429 with Retry-After", code: 429, wantErr: true, wantClass: mcerrors.Transient, retryable: true, header: "2", wantAfter: 2 * time.Second},
		{name: "500 Internal Server Error", code: 500, wantErr: true, wantClass: mcerrors.Transient, retryable: true},
		{name: "503 Service Unavailable", code: 503, wantErr: true, wantClass: mcerrors.Transient, retryable: true},
		{name: "403 Forbidden", code: 403, wantErr: true, wantClass: mcerrors.Transient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{StatusCode: tt.code, Header: http.Header{}}
			if tt.header != "" {
				resp.Header.Set("Retry-After", tt.header)
			}
			err := checkStatus(resp)
			if !tt.wantErr {
				if err != nil {
					t.Errorf("checkStatus() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("checkStatus() should return error")
			}
			if got := mcerrors.ClassOf(err); got != tt.wantClass {
				t.Errorf("class = %s, want %s", got, tt.wantClass)
			}
			if got := httputil.IsRetryable(err); got != tt.retryable {
				t.Errorf("retryable = %v, want %v", got, tt.retryable)
			}
			var re *httputil.RetryableError
			if errors.As(err, &re) && re.After != tt.wantAfter {
				t.Errorf("After = %s, want %s", re.After, tt.wantAfter)
			}
		})
	}
}

func TestJoinURL(t *testing.T) {
	tests := []struct {
		base  string
		parts []string
		want  string
	}{
		{"https://files.minecraftforge.net/", []string{"/maven/", "promotions_slim.json"}, "https://files.minecraftforge.net/maven/promotions_slim.json"},
		{"https://example.com", nil, "https://example.com"},
	}
	for _, tt := range tests {
		if got := JoinURL(tt.base, tt.parts...); got != tt.want {
			t.Errorf("JoinURL(%q, %v) = %q, want %q", tt.base, tt.parts, got, tt.want)
		}
	}
}
