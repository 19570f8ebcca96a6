package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestIsAllowedOrigin(t *testing.T) {
	tests := []struct {
		name           string
		origin         string
		allowedOrigins []string
		want           bool
	}{
		{
			name:           "exact match",
			origin:         "https://tracker.example.com",
			allowedOrigins: []string{"https://tracker.example.com"},
			want:           true,
		},
		{
			name:           "wildcard port match",
			origin:         "http://localhost:5173",
			allowedOrigins: []string{"http://localhost:*"},
			want:           true,
		},
		{
			name:           "multiple allowed origins - matches second",
			origin:         "https://tracker.example.com",
			allowedOrigins: []string{"http://localhost:*", "https://tracker.example.com"},
			want:           true,
		},
		{
			name:           "no match",
			origin:         "http://evil.com",
			allowedOrigins: []string{"http://localhost:*"},
			want:           false,
		},
		{
			name:           "empty origin",
			origin:         "",
			allowedOrigins: []string{"*"},
			want:           false,
		},
		{
			name:           "empty allowed list",
			origin:         "http://localhost:3000",
			allowedOrigins: []string{},
			want:           false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := isAllowedOrigin(tt.origin, tt.allowedOrigins)
			if got != tt.want {
				t.Errorf("isAllowedOrigin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		origin     string
		method     string
		wantStatus int
		wantCORS   bool
	}{
		{name: "allowed origin GET", origin: "http://localhost:3000", method: http.MethodGet, wantStatus: http.StatusOK, wantCORS: true},
		{name: "allowed origin preflight", origin: "http://localhost:3000", method: http.MethodOptions, wantStatus: http.StatusNoContent, wantCORS: true},
		{name: "disallowed origin", origin: "http://evil.com", method: http.MethodGet, wantStatus: http.StatusOK, wantCORS: false},
		{name: "no origin header", origin: "", method: http.MethodGet, wantStatus: http.StatusOK, wantCORS: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(CORSMiddleware([]string{"http://localhost:*"}))
			router.GET("/test", func(c *gin.Context) {
				c.String(http.StatusOK, "OK")
			})

			req := httptest.NewRequest(tt.method, "/test", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Status = %d, want %d", w.Code, tt.wantStatus)
			}

			corsHeader := w.Header().Get("Access-Control-Allow-Origin")
			if tt.wantCORS {
				if corsHeader != tt.origin {
					t.Errorf("Access-Control-Allow-Origin = %s, want %s", corsHeader, tt.origin)
				}
				if w.Header().Get("Access-Control-Expose-Headers") != "Content-Disposition" {
					t.Errorf("Content-Disposition not exposed")
				}
			} else if corsHeader != "" {
				t.Errorf("Access-Control-Allow-Origin should not be set, got %s", corsHeader)
			}
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RateLimitMiddleware(60, 2))
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	do := func(remoteAddr string) int {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.RemoteAddr = remoteAddr
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	// burst of two, then throttled
	if got := do("10.0.0.1:1234"); got != http.StatusOK {
		t.Errorf("first request status = %d, want 200", got)
	}
	if got := do("10.0.0.1:1234"); got != http.StatusOK {
		t.Errorf("second request status = %d, want 200", got)
	}
	if got := do("10.0.0.1:1234"); got != http.StatusTooManyRequests {
		t.Errorf("third request status = %d, want 429", got)
	}

	// other clients have their own bucket
	if got := do("10.0.0.2:1234"); got != http.StatusOK {
		t.Errorf("other client status = %d, want 200", got)
	}
}

type recordingObserver struct {
	method string
	route  string
	status int
}

func (r *recordingObserver) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	r.method, r.route, r.status = method, route, status
}

func TestMetricsMiddleware(t *testing.T) {
	observer := &recordingObserver{}
	router := gin.New()
	router.Use(MetricsMiddleware(observer))
	router.GET("/logs/:date", func(c *gin.Context) {
		c.String(http.StatusTeapot, "")
	})

	req := httptest.NewRequest(http.MethodGet, "/logs/2024-03-10", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	if observer.route != "/logs/:date" {
		t.Errorf("route = %s, want the route pattern", observer.route)
	}
	if observer.status != http.StatusTeapot || observer.method != http.MethodGet {
		t.Errorf("observed %s %d, want GET 418", observer.method, observer.status)
	}
}
