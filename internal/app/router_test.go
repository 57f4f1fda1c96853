package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRouter_Routes(t *testing.T) {
	router, _, _ := newTestServer(t)

	testCases := []struct {
		name           string
		method         string
		path           string
		body           string
		expectedStatus int
	}{
		{"health check", http.MethodGet, "/health", "", http.StatusOK},
		{"decoy", http.MethodGet, "/decoy", "", http.StatusOK},
		{"key press", http.MethodPost, "/keys", `{"token":"1"}`, http.StatusOK},
		{"lock", http.MethodPost, "/lock", "", http.StatusNoContent},
		{"unknown route", http.MethodGet, "/app", "", http.StatusNotFound},
		{"wrong method", http.MethodGet, "/keys", "", http.StatusMethodNotAllowed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			rr := httptest.NewRecorder()

			router.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)
			assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
		})
	}
}

func TestNewRouter_RateLimitsKeys(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	h, _, _ := newTestHandler(t)
	limited := NewRouter(h, RouterConfig{
		RateLimiter: NewRateLimiter(rdb, RateLimitConfig{KeyLimit: 3, Window: time.Minute}),
	})

	codes := make([]int, 0, 5)
	for range 5 {
		req := httptest.NewRequest(http.MethodPost, "/keys", strings.NewReader(`{"token":"1"}`))
		req.RemoteAddr = "10.0.0.1:1234"
		rr := httptest.NewRecorder()
		limited.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	require.Len(t, codes, 5)
	assert.Equal(t, []int{200, 200, 200, 429, 429}, codes)
	assert.True(t, mr.Exists("ratelimit:keys:10.0.0.1:1234"))
}
