package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/datacleaner/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(r.RemoteAddr))
})

// ============================================================================
// TrustedRealIP
// ============================================================================

func TestTrustedRealIP(t *testing.T) {
	tests := []struct {
		name    string
		trusted []string
		remote  string
		headers map[string]string
		want    string
	}{
		{"no proxies configured", nil, "203.0.113.9:4000", map[string]string{"X-Real-IP": "1.2.3.4"}, "203.0.113.9:4000"},
		{"untrusted source ignored", []string{"10.0.0.0/8"}, "203.0.113.9:4000", map[string]string{"X-Real-IP": "1.2.3.4"}, "203.0.113.9:4000"},
		{"trusted x-real-ip", []string{"10.0.0.0/8"}, "10.1.2.3:4000", map[string]string{"X-Real-IP": "1.2.3.4"}, "1.2.3.4"},
		{"trusted xff first hop", []string{"10.0.0.1"}, "10.0.0.1:4000", map[string]string{"X-Forwarded-For": "5.6.7.8, 10.0.0.1"}, "5.6.7.8"},
		{"garbage header kept out", []string{"10.0.0.0/8"}, "10.1.2.3:4000", map[string]string{"X-Real-IP": "not-an-ip"}, "10.1.2.3:4000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()

			TrustedRealIP(tt.trusted)(okHandler).ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Body.String())
		})
	}
}

func TestParseTrustedProxies(t *testing.T) {
	nets := ParseTrustedProxies([]string{"10.0.0.0/8", " 192.168.1.5 ", "::1", "bogus", ""})
	require.Len(t, nets, 3)
	assert.True(t, nets[1].Contains(hostIP("192.168.1.5")))
	assert.False(t, nets[1].Contains(hostIP("192.168.1.6")))
}

// ============================================================================
// RateLimiter
// ============================================================================

func TestRateLimiter_Middleware(t *testing.T) {
	rl := NewRateLimiter(2)
	h := rl.Middleware(okHandler)

	do := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, do("198.51.100.1:1000").Code)
	assert.Equal(t, http.StatusOK, do("198.51.100.1:1001").Code)

	rec := do("198.51.100.1:1002")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), `"code":"RATE001"`)

	// Other clients have their own bucket.
	assert.Equal(t, http.StatusOK, do("198.51.100.2:1000").Code)
}

func TestRateLimiter_Sweep(t *testing.T) {
	rl := NewRateLimiter(10)
	rl.Allow("a")
	rl.Allow("b")

	assert.Equal(t, 2, rl.Sweep(time.Now().Add(-time.Hour)))
	assert.Equal(t, 0, rl.Sweep(time.Now().Add(time.Second)))
}

func TestRateLimiter_RunCleanupStops(t *testing.T) {
	rl := NewRateLimiter(10)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rl.RunCleanup(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunCleanup did not return after cancel")
	}
}

// ============================================================================
// Headers
// ============================================================================

func TestSecurityHeaders(t *testing.T) {
	for _, csp := range []bool{true, false} {
		rec := httptest.NewRecorder()
		SecurityHeaders(csp)(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
		assert.Equal(t, csp, rec.Header().Get("Content-Security-Policy") != "")
	}
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"http://localhost:3000/"})(okHandler)

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/uploads", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("other origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/uploads", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/clean/process", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", "POST")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
	})
}

// ============================================================================
// Logger
// ============================================================================

func TestLogger_LevelFollowsStatus(t *testing.T) {
	var buf bytes.Buffer
	base := logging.New(&buf, "debug", "text")

	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/clean/download", nil)
	req = req.WithContext(logging.WithLogger(req.Context(), base))
	h.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	assert.True(t, strings.Contains(out, "level="+slog.LevelWarn.String()), out)
	assert.Contains(t, out, "status=404")
	assert.Contains(t, out, "path=/clean/download")
}
