package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestGetRateLimitType(t *testing.T) {
	tests := map[string]RateLimitType{
		"/health":                      RateLimitTypeHealth,
		"/ping":                        RateLimitTypeHealth,
		"/api/v1/auth/login":           RateLimitTypeAuth,
		"/api/v1/reports/history.csv":  RateLimitTypeReports,
		"/api/v1/playback/start":       RateLimitTypePlayback,
		"/api/v1/queue/:index/up":      RateLimitTypePlayback,
		"/api/v1/session":              RateLimitTypePlayback,
		"/api/v1/songs":                RateLimitTypePublic,
		"/api/v1/seats/:id/paid":       RateLimitTypeDefault,
		"/api/v1/history/:index/price": RateLimitTypeDefault,
	}
	for path, want := range tests {
		if got := getRateLimitType(path); got != want {
			t.Errorf("%s: expected %s, got %s", path, want, got)
		}
	}
}

func TestGetClientIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "forwarded", headers: map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, remote: "10.0.0.1:1234", want: "203.0.113.7"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": "198.51.100.2"}, remote: "10.0.0.1:1234", want: "198.51.100.2"},
		{name: "bad header", headers: map[string]string{"X-Forwarded-For": "nonsense"}, remote: "10.0.0.9:80", want: "10.0.0.9"},
		{name: "remote addr", remote: "192.0.2.1:5555", want: "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Request.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				c.Request.Header.Set(k, v)
			}
			if got := getClientIP(c); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestIsAllowedBypassesRedis(t *testing.T) {
	cfg := &Config{
		Enabled:         true,
		WindowDuration:  time.Minute,
		DefaultRequests: 5,
		AuthRequests:    2,
		WhitelistedIPs:  []string{"127.0.0.1"},
	}
	// a nil client proves none of these paths touch Redis
	limiter := NewRateLimiter(nil, cfg)
	ctx := context.Background()

	res, err := limiter.IsAllowed(ctx, "127.0.0.1", RateLimitTypeAuth)
	if err != nil || !res.Allowed || res.Limit != 2 {
		t.Errorf("whitelisted: expected allowed with limit 2, got %+v err=%v", res, err)
	}

	res, err = limiter.IsAllowed(ctx, "10.1.1.1", RateLimitTypeHealth)
	if err != nil || !res.Allowed {
		t.Errorf("health: expected allowed, got %+v err=%v", res, err)
	}

	cfg.Enabled = false
	res, err = limiter.IsAllowed(ctx, "10.1.1.1", RateLimitTypeDefault)
	if err != nil || !res.Allowed || res.Remaining != 5 {
		t.Errorf("disabled: expected allowed with 5 remaining, got %+v err=%v", res, err)
	}
}
