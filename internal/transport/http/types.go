package http

import "trivia-quiz-bot/internal/domain"

// triviaQuestionRequest is the body of POST /add and PUT /{id}. An id in the
// body is ignored; ids are owned by the catalog.
type triviaQuestionRequest struct {
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Category         string   `json:"category"`
	Question         string   `json:"question" binding:"required"`
	CorrectAnswer    string   `json:"correct_answer" binding:"required"`
	IncorrectAnswers []string `json:"incorrect_answers" binding:"required,min=1,dive,required"`
}

func (r triviaQuestionRequest) toDomain() domain.Question {
	return domain.Question{
		Type:             r.Type,
		Difficulty:       r.Difficulty,
		Category:         r.Category,
		Text:             r.Question,
		CorrectAnswer:    r.CorrectAnswer,
		IncorrectAnswers: r.IncorrectAnswers,
	}
}

type triviaQuestionResponse struct {
	ID               int      `json:"id"`
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Category         string   `json:"category"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

func newTriviaQuestionResponse(q domain.CatalogQuestion) triviaQuestionResponse {
	incorrect := q.IncorrectAnswers
	if incorrect == nil {
		incorrect = []string{}
	}
	return triviaQuestionResponse{
		ID:               q.ID,
		Type:             q.Type,
		Difficulty:       q.Difficulty,
		Category:         q.Category,
		Question:         q.Text,
		CorrectAnswer:    q.CorrectAnswer,
		IncorrectAnswers: incorrect,
	}
}

// triviaListResponse keeps the question bank's envelope shape.
type triviaListResponse struct {
	ResponseCode int                      `json:"response_code"`
	Results      []triviaQuestionResponse `json:"results"`
}

type resultsResponse struct {
	Results []domain.BestScore `json:"results"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type subscribedPayload struct {
	Subscribers int `json:"subscribers"`
}
