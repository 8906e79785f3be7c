package reqinfo

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMiddleware_GeneratesRequestID(t *testing.T) {
	var got Info
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = From(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("User-Agent", "curl/8")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got.RequestID == "" {
		t.Fatal("expected a generated request id")
	}
	if rec.Header().Get(HeaderRequestID) != got.RequestID {
		t.Errorf("response header %q != context id %q", rec.Header().Get(HeaderRequestID), got.RequestID)
	}
	if got.UserAgent != "curl/8" {
		t.Errorf("user agent = %q", got.UserAgent)
	}
}

func TestMiddleware_KeepsCallerRequestID(t *testing.T) {
	var got Info
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = From(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got.RequestID != "abc-123" {
		t.Errorf("request id = %q, want abc-123", got.RequestID)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.2:5000", "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.4"}, "10.0.0.2:5000", "198.51.100.4"},
		{"remote addr", nil, "192.0.2.1:1234", "192.0.2.1:1234"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := ClientIP(req); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
