package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"trivia-quiz-bot/internal/domain"
)

const maxFetchAmount = 50

// writeServiceError maps domain error kinds onto HTTP status codes.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrQuestionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "question not found"})
	case errors.Is(err, domain.ErrFetch):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch questions"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "request failed"})
	}
}

func parseID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a positive integer"})
		return 0, false
	}
	return id, true
}

func parseAmount(c *gin.Context, defaultValue int) (int, error) {
	value := strings.TrimSpace(c.Query("amount"))
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 || parsed > maxFetchAmount {
		return 0, domain.ValidationError("amount must be an integer between 1 and " + strconv.Itoa(maxFetchAmount))
	}
	return parsed, nil
}

func parseDifficulty(c *gin.Context, defaultValue string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(c.Query("difficulty")))
	if value == "" {
		return defaultValue, nil
	}
	if !domain.ValidDifficulty(value) {
		return "", domain.ValidationError("difficulty must be easy, medium or hard")
	}
	return value, nil
}
