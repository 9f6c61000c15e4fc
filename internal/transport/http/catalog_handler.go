package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"trivia-quiz-bot/internal/app"
	"trivia-quiz-bot/internal/domain"
)

const (
	defaultFetchAmount     = 5
	defaultFetchDifficulty = domain.DifficultyEasy
)

// CatalogHandler exposes the in-memory trivia catalog over REST.
type CatalogHandler struct {
	catalog *app.CatalogService
}

func NewCatalogHandler(catalog *app.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// Fetch pulls questions from the question bank, merges them into the catalog
// and returns the newly imported records.
func (h *CatalogHandler) Fetch(c *gin.Context) {
	amount, err := parseAmount(c, defaultFetchAmount)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	difficulty, err := parseDifficulty(c, defaultFetchDifficulty)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	imported, err := h.catalog.FetchAndImport(c.Request.Context(), amount, difficulty)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	results := make([]triviaQuestionResponse, 0, len(imported))
	for _, q := range imported {
		results = append(results, newTriviaQuestionResponse(q))
	}
	c.JSON(http.StatusOK, triviaListResponse{Results: results})
}

func (h *CatalogHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	q, err := h.catalog.Get(id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTriviaQuestionResponse(q))
}

func (h *CatalogHandler) Add(c *gin.Context) {
	var req triviaQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	created, err := h.catalog.Add(req.toDomain())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newTriviaQuestionResponse(created))
}

func (h *CatalogHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req triviaQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updated, err := h.catalog.Update(id, req.toDomain())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTriviaQuestionResponse(updated))
}

func (h *CatalogHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.catalog.Delete(id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
