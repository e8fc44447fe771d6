package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestResponseCache(t *testing.T) {
	rc := NewResponseCache(time.Minute, time.Minute)
	calls := 0

	r := gin.New()
	r.GET("/api/things", rc.Middleware(time.Minute), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"calls": calls})
	})
	r.GET("/api/broken", rc.Middleware(time.Minute), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusInternalServerError, gin.H{"error": "boom"})
	})

	w := perform(r, http.MethodGet, "/api/things", nil)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"calls":1}`, w.Body.String())

	w = perform(r, http.MethodGet, "/api/things", nil)
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"calls":1}`, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

	// A different query string is a different entry.
	w = perform(r, http.MethodGet, "/api/things?x=1", nil)
	assert.JSONEq(t, `{"calls":2}`, w.Body.String())

	w = perform(r, http.MethodGet, "/api/things", map[string]string{"Cache-Control": "no-cache"})
	assert.JSONEq(t, `{"calls":3}`, w.Body.String())

	assert.Equal(t, 2, rc.InvalidatePrefix("/api/things"))
	w = perform(r, http.MethodGet, "/api/things", nil)
	assert.JSONEq(t, `{"calls":4}`, w.Body.String())

	// Errors are never cached.
	perform(r, http.MethodGet, "/api/broken", nil)
	w = perform(r, http.MethodGet, "/api/broken", nil)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.Equal(t, 6, calls)

	rc.Flush()
	w = perform(r, http.MethodGet, "/api/things", nil)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
}

func TestResponseCache_KeyedByPath(t *testing.T) {
	rc := NewResponseCache(time.Minute, time.Minute)

	r := gin.New()
	r.GET("/a", rc.Middleware(time.Minute), func(c *gin.Context) { c.String(http.StatusOK, "A") })
	r.GET("/b", rc.Middleware(time.Minute), func(c *gin.Context) { c.String(http.StatusOK, "B") })

	w := perform(r, http.MethodGet, "/a", nil)
	assert.Equal(t, "A", w.Body.String())
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))

	w = perform(r, http.MethodGet, "/b", nil)
	assert.Equal(t, "B", w.Body.String())
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))

	w = perform(r, http.MethodGet, "/a", nil)
	assert.Equal(t, "A", w.Body.String())
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))

	assert.Equal(t, 1, rc.InvalidatePrefix("/b"))
}

func TestRateLimiter(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(1), 2, time.Minute)
	rejected := 0

	r := gin.New()
	r.Use(RateLimiter(limiter, func(c *gin.Context) { rejected++ }))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/ping", nil).Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/ping", nil).Code)

	w := perform(r, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, w.Body.String())
	assert.Equal(t, 1, rejected)
	assert.Equal(t, 1, limiter.Len())
}

func TestIPRateLimiter_SeparateBuckets(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(1), 1, time.Minute)

	assert.True(t, limiter.GetLimiter("10.0.0.1").Allow())
	assert.False(t, limiter.GetLimiter("10.0.0.1").Allow())
	assert.True(t, limiter.GetLimiter("10.0.0.2").Allow())
	assert.Same(t, limiter.GetLimiter("10.0.0.2"), limiter.GetLimiter("10.0.0.2"))
	assert.Equal(t, 2, limiter.Len())
}

func TestAccessLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	r := gin.New()
	r.Use(AccessLog(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, RequestID(c)) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := perform(r, http.MethodGet, "/ok", map[string]string{RequestIDHeader: "req-1"})
	assert.Equal(t, "req-1", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "req-1", w.Body.String())

	w = perform(r, http.MethodGet, "/missing", nil)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])
	assert.Equal(t, int64(200), entries[0].ContextMap()["status"])
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/locations/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	perform(r, http.MethodGet, "/api/locations/1", nil)
	perform(r, http.MethodGet, "/api/locations/2", nil)
	perform(r, http.MethodGet, "/nowhere", nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/api/locations/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.RequestsInFlight))

	count, err := testutil.GatherAndCount(reg, "crowd_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
