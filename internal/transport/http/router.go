package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"trivia-quiz-bot/internal/app"
)

// RouterDeps groups what the REST API serves.
type RouterDeps struct {
	Catalog     *app.CatalogService
	Scores      *app.ScoreService
	Feed        *app.ResultsFeed
	CORSOrigins []string
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	if len(deps.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowHeaders:     []string{"Origin", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	catalog := NewCatalogHandler(deps.Catalog)
	trivia := r.Group("/api/trivia")
	{
		trivia.GET("", catalog.Fetch)
		trivia.GET("/:id", catalog.Get)
		trivia.POST("/add", catalog.Add)
		trivia.PUT("/:id", catalog.Update)
		trivia.DELETE("/:id", catalog.Delete)
	}

	results := NewResultsHandler(deps.Scores, deps.Feed)
	r.GET("/api/results", results.List)
	r.GET("/api/results/ws", gin.WrapF(results.ServeWS))

	return r
}
