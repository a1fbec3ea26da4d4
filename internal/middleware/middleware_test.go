package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/windoze95/saltybytes-finder/internal/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func get(r *gin.Engine, header, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/ping", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIPRateLimiter(t *testing.T) {
	l := NewIPRateLimiter(2)
	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"), "third request in the same instant should be limited")
	assert.True(t, l.Allow("10.0.0.2"), "other clients have their own bucket")

	l.Cleanup(time.Hour)
	_, ok := l.limiters.Load("10.0.0.1")
	assert.True(t, ok, "recently seen clients are kept")

	l.Cleanup(-time.Second)
	_, ok = l.limiters.Load("10.0.0.1")
	assert.False(t, ok, "idle clients are dropped")
}

func TestRateLimitByIP_Envelope(t *testing.T) {
	r := newEngine(RateLimitByIP(1, time.Hour, time.Hour))

	assert.Equal(t, http.StatusOK, get(r, "", "").Code)
	w := get(r, "", "")
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "RateLimited", body["error"])
	assert.NotEmpty(t, body["details"])
}

func TestRateLimitByIP_Disabled(t *testing.T) {
	r := newEngine(RateLimitByIP(0, time.Hour, time.Hour))
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, get(r, "", "").Code)
	}
}

func TestRequireAPIKey(t *testing.T) {
	r := newEngine(RequireAPIKey("s3cret"))
	assert.Equal(t, http.StatusUnauthorized, get(r, "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, APIKeyHeader, "wrong").Code)
	assert.Equal(t, http.StatusOK, get(r, APIKeyHeader, "s3cret").Code)

	open := newEngine(RequireAPIKey(""))
	assert.Equal(t, http.StatusOK, get(open, "", "").Code)
}

func TestMetrics(t *testing.T) {
	r := newEngine(Metrics())
	before := testutil.CollectAndCount(metrics.HTTPRequestDuration)
	get(r, "", "")
	after := testutil.CollectAndCount(metrics.HTTPRequestDuration)
	assert.GreaterOrEqual(t, after, before)
	assert.GreaterOrEqual(t, after, 1)
}
