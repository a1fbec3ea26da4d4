package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/windoze95/saltybytes-finder/internal/ai"
	"github.com/windoze95/saltybytes-finder/internal/config"
	"github.com/windoze95/saltybytes-finder/internal/logger"
	"github.com/windoze95/saltybytes-finder/internal/metrics"
	"github.com/windoze95/saltybytes-finder/internal/models"
	"github.com/windoze95/saltybytes-finder/internal/repository"
	"go.uber.org/zap"
)

// Stage names a step of the search pipeline.
type Stage string

// Pipeline stages, in order.
const (
	StageValidating Stage = "validating"
	StageComposing  Stage = "composing"
	StageEmbedding  Stage = "embedding"
	StageRetrieving Stage = "retrieving"
	StageFiltering  Stage = "filtering"
	StageDone       Stage = "done"
)

// SearchFailure is the terminal state of a failed search.
type SearchFailure struct {
	Stage   Stage
	Kind    models.ErrorKind
	Message string
}

// SearchResult is either a list of recipes or a failure, never both.
type SearchResult struct {
	Recipes []models.RecipeMatch
	Failure *SearchFailure
}

// OK reports whether the search succeeded.
func (r SearchResult) OK() bool {
	return r.Failure == nil
}

// StatusCode maps the result onto an HTTP status.
func (r SearchResult) StatusCode() int {
	if r.Failure == nil {
		return http.StatusOK
	}
	return StatusForKind(r.Failure.Kind)
}

// StatusForKind maps an error kind onto an HTTP status.
func StatusForKind(kind models.ErrorKind) int {
	switch kind {
	case models.KindValidation:
		return http.StatusBadRequest
	case models.KindUpstreamUnavailable, models.KindIndexUnavailable, models.KindMalformedResponse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type successEnvelope struct {
	Recipes []models.RecipeMatch `json:"recipes"`
}

type failureEnvelope struct {
	Error   models.ErrorKind `json:"error"`
	Details string           `json:"details"`
}

// MarshalJSON writes {"recipes": [...]} or {"error": kind, "details": msg}.
func (r SearchResult) MarshalJSON() ([]byte, error) {
	if r.Failure != nil {
		return json.Marshal(failureEnvelope{Error: r.Failure.Kind, Details: r.Failure.Message})
	}
	recipes := r.Recipes
	if recipes == nil {
		recipes = []models.RecipeMatch{}
	}
	return json.Marshal(successEnvelope{Recipes: recipes})
}

// FailureResult builds a failed result outside the pipeline, e.g. for an
// unreadable request body.
func FailureResult(stage Stage, err error) SearchResult {
	return SearchResult{Failure: &SearchFailure{
		Stage:   stage,
		Kind:    models.KindOf(err),
		Message: err.Error(),
	}}
}

// SearchService runs the recommendation pipeline:
// validate, compose, embed, retrieve, filter.
type SearchService struct {
	Cfg      *config.Config
	Embedder ai.EmbeddingProvider
	Index    repository.VectorIndex
	Filter   SafetyFilter
}

// NewSearchService creates a new SearchService.
func NewSearchService(cfg *config.Config, embedder ai.EmbeddingProvider, index repository.VectorIndex) *SearchService {
	return &SearchService{
		Cfg:      cfg,
		Embedder: embedder,
		Index:    index,
		Filter:   SafetyFilter{FailClosed: cfg.EnvVars.SafetyFailClosed},
	}
}

// Search runs one recommendation. It always returns a well-formed result;
// errors and panics from any stage become a failure.
func (s *SearchService) Search(ctx context.Context, profile models.UserProfile, req models.SearchRequest) (result SearchResult) {
	log := logger.FromContext(ctx)
	stage := StageValidating

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("panic in recipe search", zap.String("stage", string(stage)), zap.Any("panic", rec), zap.Stack("stack"))
			result = s.fail(ctx, stage, fmt.Errorf("unexpected failure during %s", stage))
		}
	}()

	if err := ValidateSearch(profile, req); err != nil {
		return s.fail(ctx, stage, err)
	}

	stage = StageComposing
	query := Compose(profile, req)
	log.Debug("composed search query", zap.String("query", logger.Truncate(query, logger.DiagnosticLimit)))

	stage = StageEmbedding
	vector, err := s.embed(ctx, query)
	if err != nil {
		return s.fail(ctx, stage, err)
	}

	stage = StageRetrieving
	matches, err := s.retrieve(ctx, vector)
	if err != nil {
		return s.fail(ctx, stage, err)
	}

	stage = StageFiltering
	start := time.Now()
	kept, excluded := s.Filter.Apply(matches, profile.Allergies, profile.Dislikes)
	metrics.ObserveStage(string(stage), start)
	for _, ex := range excluded {
		metrics.ExcludedMatches.WithLabelValues(ex.Reason).Inc()
		log.Debug("excluded recipe", zap.String("recipe_id", ex.RecipeID), zap.String("reason", ex.Reason), zap.String("token", ex.Token))
	}

	stage = StageDone
	metrics.SearchRequests.WithLabelValues("success").Inc()
	log.Info("recipe search complete",
		zap.Int("candidates", len(matches)),
		zap.Int("excluded", len(excluded)),
		zap.Int("returned", len(kept)),
	)
	return SearchResult{Recipes: kept}
}

func (s *SearchService) embed(ctx context.Context, query string) ([]float32, error) {
	if s.Embedder == nil {
		return nil, fmt.Errorf("%w: no embedding provider configured", models.ErrConfiguration)
	}
	defer metrics.ObserveStage(string(StageEmbedding), time.Now())

	ctx, cancel := withTimeout(ctx, s.Cfg.EnvVars.EmbeddingTimeout)
	defer cancel()

	vector, err := s.Embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, tagContextError(err, models.ErrUpstreamUnavailable)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: embedding is empty", models.ErrMalformedResponse)
	}
	return vector, nil
}

func (s *SearchService) retrieve(ctx context.Context, vector []float32) ([]models.RecipeMatch, error) {
	if s.Index == nil {
		return nil, fmt.Errorf("%w: no vector index configured", models.ErrConfiguration)
	}
	defer metrics.ObserveStage(string(StageRetrieving), time.Now())

	topK := s.Cfg.EnvVars.TopK
	if topK == 0 {
		topK = config.DefaultTopK
	}
	if err := repository.ValidateTopK(topK); err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, s.Cfg.EnvVars.IndexTimeout)
	defer cancel()

	matches, err := s.Index.Query(ctx, vector, topK)
	if err != nil {
		return nil, tagContextError(err, models.ErrIndexUnavailable)
	}
	if s.Cfg.EnvVars.TieBreakByID {
		sortByScoreThenID(matches)
	}
	return matches, nil
}

func (s *SearchService) fail(ctx context.Context, stage Stage, err error) SearchResult {
	result := FailureResult(stage, err)
	metrics.SearchRequests.WithLabelValues(string(result.Failure.Kind)).Inc()

	fields := []zap.Field{
		zap.String("stage", string(stage)),
		zap.String("error_kind", string(result.Failure.Kind)),
		zap.String("details", logger.Truncate(result.Failure.Message, logger.DiagnosticLimit)),
	}
	if result.Failure.Kind == models.KindValidation {
		logger.FromContext(ctx).Info("recipe search rejected", fields...)
	} else {
		logger.FromContext(ctx).Error("recipe search failed", fields...)
	}
	return result
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// tagContextError gives timeouts and cancellations without a taxonomy tag the
// sentinel of the stage they interrupted.
func tagContextError(err error, sentinel error) error {
	if models.KindOf(err) != models.KindInternal {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", sentinel, err)
	}
	return err
}

// sortByScoreThenID orders by descending score with ascending id as the
// tie-break.
func sortByScoreThenID(matches []models.RecipeMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})
}
