package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTrustedRealIP(t *testing.T) {
	tests := []struct {
		name       string
		trusted    []string
		remoteAddr string
		realIP     string
		forwarded  string
		want       string
	}{
		{
			name:       "trusted proxy with X-Real-IP",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.0.0.5:443",
			realIP:     "203.0.113.7",
			want:       "203.0.113.7",
		},
		{
			name:       "trusted proxy with forwarded chain",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.0.0.5:443",
			forwarded:  "198.51.100.4, 10.0.0.5",
			want:       "198.51.100.4",
		},
		{
			name:       "X-Real-IP wins over X-Forwarded-For",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.0.0.5:443",
			realIP:     "203.0.113.7",
			forwarded:  "198.51.100.4",
			want:       "203.0.113.7",
		},
		{
			name:       "untrusted client cannot spoof",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "192.0.2.10:443",
			realIP:     "203.0.113.7",
			want:       "192.0.2.10:443",
		},
		{
			name:       "bare IP widened to single host",
			trusted:    []string{"10.0.0.5"},
			remoteAddr: "10.0.0.5:443",
			realIP:     "203.0.113.7",
			want:       "203.0.113.7",
		},
		{
			name:       "invalid header value ignored",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.0.0.5:443",
			realIP:     "not-an-ip",
			want:       "10.0.0.5:443",
		},
		{
			name:       "no trusted proxies configured",
			trusted:    nil,
			remoteAddr: "10.0.0.5:443",
			realIP:     "203.0.113.7",
			want:       "10.0.0.5:443",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			handler := TrustedRealIP(tt.trusted)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				got = r.RemoteAddr
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}

			handler.ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.want {
				t.Errorf("RemoteAddr seen by handler = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseTrustedNets_SkipsInvalid(t *testing.T) {
	nets := parseTrustedNets([]string{"10.0.0.0/8", "garbage", "", " 192.0.2.1 "})
	if len(nets) != 2 {
		t.Fatalf("parsed %d networks, want 2", len(nets))
	}
}
