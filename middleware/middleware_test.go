package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"igbridge/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, getClientIP(c)) })
	return r
}

func doGet(r http.Handler, remote string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = remote
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestGetClientIP(t *testing.T) {
	r := newEngine()
	tests := map[string]struct {
		headers map[string]string
		want    string
	}{
		"remote addr":         {want: "10.0.0.1"},
		"forwarded list":      {headers: map[string]string{"X-Forwarded-For": "203.0.113.7, 10.1.1.1"}, want: "203.0.113.7"},
		"real ip":             {headers: map[string]string{"X-Real-IP": " 198.51.100.2 "}, want: "198.51.100.2"},
		"garbage is ignored":  {headers: map[string]string{"X-Forwarded-For": "not-an-ip"}, want: "10.0.0.1"},
		"forwarded over real": {headers: map[string]string{"X-Forwarded-For": "203.0.113.7", "X-Real-IP": "198.51.100.2"}, want: "203.0.113.7"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := doGet(r, "10.0.0.1:5555", tc.headers).Body.String(); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	r := newEngine(RateLimitMiddleware(3, zap.NewNop()))

	for i := 0; i < 3; i++ {
		if rec := doGet(r, "10.0.0.1:1", nil); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}
	rec := doGet(r, "10.0.0.1:1", nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after the burst, got %d", rec.Code)
	}
	var body utils.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode 429 body %q: %v", rec.Body.String(), err)
	}
	if body.Message != "Rate limit exceeded" {
		t.Fatalf("unexpected 429 body %+v", body)
	}
	if rec := doGet(r, "10.0.0.2:1", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected other clients to be unaffected, got %d", rec.Code)
	}
}

func TestRequestLogger_RequestID(t *testing.T) {
	r := newEngine(RequestLogger(zap.NewNop()))

	rec := doGet(r, "10.0.0.1:1", nil)
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Fatalf("expected a generated request id")
	}

	rec = doGet(r, "10.0.0.1:1", map[string]string{RequestIDHeader: "req-42"})
	if got := rec.Header().Get(RequestIDHeader); got != "req-42" {
		t.Fatalf("expected caller request id to be echoed, got %q", got)
	}
}
