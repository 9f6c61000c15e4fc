package http

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"trivia-quiz-bot/internal/app"
	"trivia-quiz-bot/internal/domain"
)

// ResultsHandler serves stored best scores and streams new ones over websockets.
type ResultsHandler struct {
	scores   *app.ScoreService
	feed     *app.ResultsFeed
	upgrader websocket.Upgrader
}

func NewResultsHandler(scores *app.ScoreService, feed *app.ResultsFeed) *ResultsHandler {
	return &ResultsHandler{
		scores: scores,
		feed:   feed,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// List returns every best-score record.
func (h *ResultsHandler) List(c *gin.Context) {
	scores, err := h.scores.List(c.Request.Context())
	if err != nil {
		log.Printf("[api] list results: %v", err)
		writeServiceError(c, err)
		return
	}
	if scores == nil {
		scores = []domain.BestScore{}
	}
	c.JSON(http.StatusOK, resultsResponse{Results: scores})
}

// ServeWS upgrades the request and pushes every newly persisted record to the client
// until it disconnects.
func (h *ResultsHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[api] ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates, cancel := h.feed.Subscribe()
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// Single writer goroutine; gorilla connections do not support concurrent writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("[api] ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "record", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "subscribed", Payload: subscribedPayload{Subscribers: h.feed.Subscribers()}}

	// The feed is one-way; reading only detects the client going away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
