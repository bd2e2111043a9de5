package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xRealIP    string
		want       string
	}{
		{
			name:       "direct connection",
			remoteAddr: "203.0.113.7:4921",
			want:       "203.0.113.7",
		},
		{
			name:       "forwarded header from trusted proxy",
			remoteAddr: "10.0.0.5:8080",
			xff:        "203.0.113.7, 10.0.0.5",
			want:       "203.0.113.7",
		},
		{
			name:       "forwarded header from untrusted peer is ignored",
			remoteAddr: "203.0.113.9:443",
			xff:        "198.51.100.1",
			want:       "203.0.113.9",
		},
		{
			name:       "real ip header from trusted proxy",
			remoteAddr: "192.168.1.1:1234",
			xRealIP:    "203.0.113.7",
			want:       "203.0.113.7",
		},
		{
			name:       "garbage forwarded value falls back to peer",
			remoteAddr: "127.0.0.1:9000",
			xff:        "not-an-ip",
			want:       "127.0.0.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xRealIP != "" {
				req.Header.Set("X-Real-IP", tt.xRealIP)
			}
			if got := extractClientIP(req); got != tt.want {
				t.Errorf("extractClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectSuspiciousRequest(t *testing.T) {
	tests := []struct {
		name   string
		method string
		target string
		want   bool
	}{
		{"normal page", http.MethodGet, "/dashboard", false},
		{"normal partial", http.MethodGet, "/ui/transactions?page=2", false},
		{"path traversal", http.MethodGet, "/static/../../etc/passwd", true},
		{"wordpress probe", http.MethodGet, "/wp-admin/setup.php", true},
		{"sql injection in query", http.MethodGet, "/ui/transactions?page=1%20union%20select", true},
		{"trace method", "TRACE", "/", true},
		{"oversized url", http.MethodGet, "/?q=" + strings.Repeat("a", 3000), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var metrics securityMetrics
			req := httptest.NewRequest(tt.method, tt.target, nil)
			if got := detectSuspiciousRequest(req, &metrics); got != tt.want {
				t.Errorf("detectSuspiciousRequest() = %v, want %v", got, tt.want)
			}
			if tt.want && metrics.suspiciousRequests != 1 {
				t.Errorf("suspiciousRequests = %d, want 1", metrics.suspiciousRequests)
			}
		})
	}
}

func TestRateLimiterWindow(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	var metrics securityMetrics
	for i := 0; i < writeRequestsPerMinute; i++ {
		if !rl.allow("203.0.113.7", &metrics) {
			t.Fatalf("request %d unexpectedly limited", i+1)
		}
	}
	if rl.allow("203.0.113.7", &metrics) {
		t.Error("request past the limit was allowed")
	}
	if metrics.rateLimitHits != 1 {
		t.Errorf("rateLimitHits = %d, want 1", metrics.rateLimitHits)
	}

	if !rl.allow("203.0.113.8", &metrics) {
		t.Error("different client was limited")
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	rl.mu.Lock()
	rl.clients["203.0.113.7"] = &clientInfo{
		windowStart: time.Now().Add(-2 * time.Minute),
		requests:    writeRequestsPerMinute,
	}
	rl.mu.Unlock()

	if !rl.allow("203.0.113.7", nil) {
		t.Error("request after window expiry was limited")
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  hello  ", "hello"},
		{"a\x00b\x07c", "abc"},
		{"keeps\ttabs\nand\rnewlines", "keeps\ttabs\nand\rnewlines"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := sanitizeInput(tt.in); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGenerateRequestID(t *testing.T) {
	a := generateRequestID()
	b := generateRequestID()
	if !strings.HasPrefix(a, "req_") {
		t.Errorf("unexpected prefix: %q", a)
	}
	if a == b {
		t.Error("request IDs collided")
	}
}
