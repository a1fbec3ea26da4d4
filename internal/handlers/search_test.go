package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/saltybytes-finder/internal/models"
	"github.com/windoze95/saltybytes-finder/internal/service"
	"github.com/windoze95/saltybytes-finder/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const recommendBody = `{
	"user": {"username": "u1", "allergies": ["peanuts"], "dislikes": ["mushrooms"],
	         "macros": {"protein": "high", "carbs": "low", "fats": "medium"}},
	"request": {"ingredients_available": ["rice", "chicken"], "max_time_minutes": 30,
	            "meal_type": "Dinner", "preferences": {"spice_level": "medium", "diet_type": "none"}}
}`

func newTestSearchService(embedder *testutil.MockEmbeddingProvider, index *testutil.MockVectorIndex) *service.SearchService {
	return service.NewSearchService(testutil.TestConfig(), embedder, index)
}

func serveRecommend(t *testing.T, svc *service.SearchService, body string) *httptest.ResponseRecorder {
	t.Helper()
	handler := NewSearchHandler(svc)
	r := gin.New()
	r.POST("/v1/recipes/recommend", handler.Recommend)

	req := httptest.NewRequest("POST", "/v1/recipes/recommend", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRecommend_Success(t *testing.T) {
	svc := newTestSearchService(testutil.StaticEmbedder([]float32{0.1}), testutil.StaticIndex(testutil.TestMatches()))
	w := serveRecommend(t, svc, recommendBody)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d. body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var body struct {
		Recipes []models.RecipeMatch `json:"recipes"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Recipes) != 2 {
		t.Fatalf("recipes = %d, want 2", len(body.Recipes))
	}
	if body.Recipes[0].ID != "101" || body.Recipes[1].ID != "103" {
		t.Errorf("ids = [%s %s], want [101 103]", body.Recipes[0].ID, body.Recipes[1].ID)
	}
	if body.Recipes[0].Metadata["name"] != "Chicken Fried Rice" {
		t.Errorf("metadata = %v", body.Recipes[0].Metadata)
	}
}

func TestRecommend_Failures(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		embedErr   error
		indexErr   error
		wantStatus int
		wantKind   models.ErrorKind
	}{
		{"malformed json", `{"user": `, nil, nil, http.StatusBadRequest, models.KindValidation},
		{"empty body", ``, nil, nil, http.StatusBadRequest, models.KindValidation},
		{"no ingredients", `{"user": {"username": "u1"}, "request": {"ingredients_available": []}}`, nil, nil, http.StatusBadRequest, models.KindValidation},
		{"embedding down", recommendBody, fmt.Errorf("%w: timeout", models.ErrUpstreamUnavailable), nil, http.StatusBadGateway, models.KindUpstreamUnavailable},
		{"index down", recommendBody, nil, fmt.Errorf("%w: refused", models.ErrIndexUnavailable), http.StatusBadGateway, models.KindIndexUnavailable},
		{"misconfigured", recommendBody, fmt.Errorf("%w: no endpoint", models.ErrConfiguration), nil, http.StatusInternalServerError, models.KindConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			embedder := &testutil.MockEmbeddingProvider{
				GenerateEmbeddingFunc: func(ctx context.Context, text string) ([]float32, error) {
					if tt.embedErr != nil {
						return nil, tt.embedErr
					}
					return []float32{0.1}, nil
				},
			}
			index := &testutil.MockVectorIndex{
				QueryFunc: func(ctx context.Context, vector []float32, topK int) ([]models.RecipeMatch, error) {
					if tt.indexErr != nil {
						return nil, tt.indexErr
					}
					return testutil.TestMatches(), nil
				},
			}
			w := serveRecommend(t, newTestSearchService(embedder, index), tt.body)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d. body: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			var body map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body["error"] != string(tt.wantKind) {
				t.Errorf("error = %q, want %q", body["error"], tt.wantKind)
			}
			if body["details"] == "" {
				t.Error("details should not be empty")
			}
			if tt.wantKind == models.KindValidation && (embedder.Calls() != 0 || index.Calls() != 0) {
				t.Errorf("validation failure reached downstream: embed=%d index=%d", embedder.Calls(), index.Calls())
			}
		})
	}
}
