package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"trivia-quiz-bot/internal/app"
	"trivia-quiz-bot/internal/domain"
	"trivia-quiz-bot/internal/infra/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubSource struct {
	questions      []domain.Question
	err            error
	lastAmount     int
	lastDifficulty string
	calls          int
}

func (s *stubSource) FetchQuestions(_ context.Context, amount int, difficulty string) ([]domain.Question, error) {
	s.calls++
	s.lastAmount = amount
	s.lastDifficulty = difficulty
	if s.err != nil {
		return nil, s.err
	}
	return s.questions, nil
}

type testAPI struct {
	router  *gin.Engine
	catalog *app.CatalogService
	scores  *memory.ScoreStore
}

func newTestAPI(source *stubSource) testAPI {
	catalog := app.NewCatalogService(source)
	store := memory.NewScoreStore()
	feed := app.NewResultsFeed()
	router := NewRouter(RouterDeps{
		Catalog:     catalog,
		Scores:      app.NewScoreService(store, app.PolicyImprovement, feed),
		Feed:        feed,
		CORSOrigins: []string{"http://localhost:3000"},
	})
	return testAPI{router: router, catalog: catalog, scores: store}
}

func (a testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func sampleBody() map[string]any {
	return map[string]any{
		"type":              "multiple",
		"difficulty":        "easy",
		"category":          "Math",
		"question":          "2+2?",
		"correct_answer":    "4",
		"incorrect_answers": []string{"3", "5", "22"},
	}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthz(t *testing.T) {
	api := newTestAPI(&stubSource{})
	rec := api.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestAddThenGetReturnsSameFields(t *testing.T) {
	api := newTestAPI(&stubSource{})

	rec := api.do(t, http.MethodPost, "/api/trivia/add", sampleBody())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[triviaQuestionResponse](t, rec)
	assert.Equal(t, 1, created.ID)

	rec = api.do(t, http.MethodGet, "/api/trivia/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[triviaQuestionResponse](t, rec)
	assert.Equal(t, "2+2?", got.Question)
	assert.Equal(t, "4", got.CorrectAnswer)
	assert.Equal(t, []string{"3", "5", "22"}, got.IncorrectAnswers)
	assert.Equal(t, "Math", got.Category)
}

func TestAddWithoutCorrectAnswerIsRejected(t *testing.T) {
	api := newTestAPI(&stubSource{})
	body := sampleBody()
	delete(body, "correct_answer")

	rec := api.do(t, http.MethodPost, "/api/trivia/add", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, api.catalog.List())
}

func TestAddWithEmptyIncorrectAnswersIsRejected(t *testing.T) {
	api := newTestAPI(&stubSource{})
	body := sampleBody()
	body["incorrect_answers"] = []string{}

	rec := api.do(t, http.MethodPost, "/api/trivia/add", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, api.catalog.List())
}

func TestGetUnknownAndMalformedIDs(t *testing.T) {
	api := newTestAPI(&stubSource{})

	assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodGet, "/api/trivia/42", nil).Code)
	assert.Equal(t, http.StatusBadRequest, api.do(t, http.MethodGet, "/api/trivia/abc", nil).Code)
}

func TestUpdateReplacesQuestion(t *testing.T) {
	api := newTestAPI(&stubSource{})
	require.Equal(t, http.StatusCreated, api.do(t, http.MethodPost, "/api/trivia/add", sampleBody()).Code)

	body := sampleBody()
	body["id"] = 99
	body["question"] = "3+1?"
	rec := api.do(t, http.MethodPut, "/api/trivia/1", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[triviaQuestionResponse](t, rec)
	assert.Equal(t, 1, updated.ID)
	assert.Equal(t, "3+1?", updated.Question)

	assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodPut, "/api/trivia/7", sampleBody()).Code)
}

func TestDelete(t *testing.T) {
	api := newTestAPI(&stubSource{})
	require.Equal(t, http.StatusCreated, api.do(t, http.MethodPost, "/api/trivia/add", sampleBody()).Code)

	assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodDelete, "/api/trivia/2", nil).Code)
	assert.Len(t, api.catalog.List(), 1)

	assert.Equal(t, http.StatusNoContent, api.do(t, http.MethodDelete, "/api/trivia/1", nil).Code)
	assert.Empty(t, api.catalog.List())
	assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodGet, "/api/trivia/1", nil).Code)
}

func TestFetchImportsFromQuestionBank(t *testing.T) {
	source := &stubSource{questions: []domain.Question{
		{Type: "multiple", Difficulty: "hard", Category: "Science", Text: "H2O?", CorrectAnswer: "Water", IncorrectAnswers: []string{"Salt"}},
		{Type: "multiple", Difficulty: "hard", Category: "Science", Text: "NaCl?", CorrectAnswer: "Salt", IncorrectAnswers: []string{"Water"}},
	}}
	api := newTestAPI(source)
	require.Equal(t, http.StatusCreated, api.do(t, http.MethodPost, "/api/trivia/add", sampleBody()).Code)

	rec := api.do(t, http.MethodGet, "/api/trivia?amount=2&difficulty=hard", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 2, source.lastAmount)
	assert.Equal(t, "hard", source.lastDifficulty)

	resp := decode[triviaListResponse](t, rec)
	assert.Equal(t, 0, resp.ResponseCode)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, 2, resp.Results[0].ID)
	assert.Equal(t, 3, resp.Results[1].ID)
	assert.Len(t, api.catalog.List(), 3)
}

func TestFetchDefaults(t *testing.T) {
	source := &stubSource{}
	api := newTestAPI(source)

	rec := api.do(t, http.MethodGet, "/api/trivia", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, source.lastAmount)
	assert.Equal(t, domain.DifficultyEasy, source.lastDifficulty)
	assert.Empty(t, decode[triviaListResponse](t, rec).Results)
}

func TestFetchRejectsBadParameters(t *testing.T) {
	cases := []string{
		"/api/trivia?amount=0",
		"/api/trivia?amount=51",
		"/api/trivia?amount=five",
		"/api/trivia?difficulty=extreme",
	}
	for _, path := range cases {
		t.Run(path, func(t *testing.T) {
			source := &stubSource{}
			api := newTestAPI(source)
			rec := api.do(t, http.MethodGet, path, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Zero(t, source.calls)
		})
	}
}

func TestFetchFailureIsServerError(t *testing.T) {
	source := &stubSource{err: errors.Join(domain.ErrFetch, errors.New("upstream down"))}
	api := newTestAPI(source)

	rec := api.do(t, http.MethodGet, "/api/trivia", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, api.catalog.List())
}

func TestListResults(t *testing.T) {
	api := newTestAPI(&stubSource{})

	rec := api.do(t, http.MethodGet, "/api/results", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[resultsResponse](t, rec).Results)

	ctx := context.Background()
	require.NoError(t, api.scores.Upsert(ctx, domain.BestScore{UserID: 9, CorrectAnswers: 4, TotalQuestions: 5}))
	require.NoError(t, api.scores.Upsert(ctx, domain.BestScore{UserID: 3, CorrectAnswers: 2, TotalQuestions: 5}))

	rec = api.do(t, http.MethodGet, "/api/results", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	results := decode[resultsResponse](t, rec).Results
	require.Len(t, results, 2)
	assert.Equal(t, int64(3), results[0].UserID)
	assert.Equal(t, int64(9), results[1].UserID)
}

func TestCORSPreflight(t *testing.T) {
	api := newTestAPI(&stubSource{})
	req := httptest.NewRequest(http.MethodOptions, "/api/trivia/1", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
