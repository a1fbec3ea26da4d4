package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/saltybytes-finder/internal/models"
	"github.com/windoze95/saltybytes-finder/internal/service"
)

// SearchHandler handles recipe recommendation requests.
type SearchHandler struct {
	Service *service.SearchService
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(searchService *service.SearchService) *SearchHandler {
	return &SearchHandler{Service: searchService}
}

// Recommend handles POST /v1/recipes/recommend
func (h *SearchHandler) Recommend(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = fmt.Errorf("%w: request body exceeds %d bytes", models.ErrValidation, maxBodyBytes)
		} else {
			err = fmt.Errorf("%w: failed to read request body: %v", models.ErrValidation, err)
		}
		c.JSON(http.StatusBadRequest, service.FailureResult(service.StageValidating, err))
		return
	}

	envelope, err := decodeSearchEnvelope(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, service.FailureResult(service.StageValidating, err))
		return
	}

	result := h.Service.Search(c.Request.Context(), envelope.User, envelope.Request)
	c.JSON(result.StatusCode(), result)
}
