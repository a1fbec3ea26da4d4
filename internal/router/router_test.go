package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/windoze95/saltybytes-finder/internal/config"
	"github.com/windoze95/saltybytes-finder/internal/service"
	"github.com/windoze95/saltybytes-finder/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const body = `{
	"user": {"username": "u1", "allergies": ["peanuts"]},
	"request": {"ingredients_available": ["rice"], "meal_type": "Dinner"}
}`

func newRouter(t *testing.T, mutate func(*config.Config)) *gin.Engine {
	t.Helper()
	cfg := testutil.TestConfig()
	if mutate != nil {
		mutate(cfg)
	}
	svc := service.NewSearchService(cfg,
		testutil.StaticEmbedder([]float32{0.1, 0.2}),
		testutil.StaticIndex(testutil.TestMatches()))
	return SetupRouter(cfg, svc)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPing(t *testing.T) {
	w := serve(newRouter(t, nil), httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}

func TestRecommendRoute(t *testing.T) {
	r := newRouter(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/recipes/recommend", strings.NewReader(body))
	req.Header.Set("X-Request-ID", "6f1c2a9e-3b7d-4c1e-9a55-0d2f8e7b4c10")

	w := serve(r, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "6f1c2a9e-3b7d-4c1e-9a55-0d2f8e7b4c10", w.Header().Get("X-Request-ID"))
	assert.Contains(t, w.Body.String(), `"recipes"`)
	assert.NotContains(t, w.Body.String(), "Peanut")
}

func TestRecommendRoute_APIKey(t *testing.T) {
	r := newRouter(t, func(cfg *config.Config) { cfg.EnvVars.APIKey = "secret" })

	w := serve(r, httptest.NewRequest(http.MethodPost, "/v1/recipes/recommend", strings.NewReader(body)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/v1/recipes/recommend", strings.NewReader(body))
	req.Header.Set("X-API-Key", "secret")
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestMetricsRoute(t *testing.T) {
	r := newRouter(t, nil)
	serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))

	w := serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_request_duration_seconds")
}

func TestUnknownRoute(t *testing.T) {
	w := serve(newRouter(t, nil), httptest.NewRequest(http.MethodGet, "/v1/recipes", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
