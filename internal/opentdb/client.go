package opentdb

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"trivia-quiz-bot/internal/domain"
)

const (
	// DefaultBaseURL is the public Open Trivia DB endpoint.
	DefaultBaseURL = "https://opentdb.com/api.php"
	// DefaultAmount is used when a caller asks for a non-positive number of questions.
	DefaultAmount = 5

	typeMultiple = "multiple"
)

// RawQuestion mirrors the question bank payload. Every string is HTML-escaped.
type RawQuestion struct {
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Category         string   `json:"category"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

type apiResponse struct {
	ResponseCode int           `json:"response_code"`
	Results      []RawQuestion `json:"results"`
}

// Query selects questions from the bank.
type Query struct {
	Amount     int
	Difficulty string
	Type       string
}

// Client talks to the question bank and normalizes what it returns.
type Client struct {
	httpClient *http.Client
	baseURL    string

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewClient builds a client. A nil httpClient falls back to a client with a 10s timeout.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// FetchQuestions returns amount multiple-choice questions, unescaped and with
// shuffled answers, in the order the bank returned them.
func (c *Client) FetchQuestions(ctx context.Context, amount int, difficulty string) ([]domain.Question, error) {
	raw, err := c.FetchRaw(ctx, Query{Amount: amount, Difficulty: difficulty, Type: typeMultiple})
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, domain.ErrFetch
	}

	questions := make([]domain.Question, 0, len(raw))
	for _, item := range raw {
		q, ok := c.normalize(item)
		if !ok {
			continue
		}
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no playable questions in %d results", domain.ErrFetch, len(raw))
	}
	return questions, nil
}

// FetchRaw performs a single request against the bank.
func (c *Client) FetchRaw(ctx context.Context, q Query) ([]RawQuestion, error) {
	if !domain.ValidDifficulty(q.Difficulty) {
		return nil, domain.ValidationError("unknown difficulty " + strconv.Quote(q.Difficulty))
	}
	if q.Amount <= 0 {
		q.Amount = DefaultAmount
	}

	params := url.Values{}
	params.Set("amount", strconv.Itoa(q.Amount))
	if q.Difficulty != "" {
		params.Set("difficulty", q.Difficulty)
	}
	if q.Type != "" {
		params.Set("type", q.Type)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrFetch, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: question bank returned status %d", domain.ErrFetch, resp.StatusCode)
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrFetch, err)
	}
	if payload.ResponseCode != 0 {
		return nil, fmt.Errorf("%w: response_code=%d", domain.ErrFetch, payload.ResponseCode)
	}
	return payload.Results, nil
}

// normalize reports false for records that cannot be offered as a choice
// between at least two answers.
func (c *Client) normalize(raw RawQuestion) (domain.Question, bool) {
	incorrect := make([]string, 0, len(raw.IncorrectAnswers))
	for _, a := range raw.IncorrectAnswers {
		incorrect = append(incorrect, html.UnescapeString(a))
	}
	correct := html.UnescapeString(raw.CorrectAnswer)
	if len(incorrect) == 0 || correct == "" {
		return domain.Question{}, false
	}

	answers := make([]string, 0, len(incorrect)+1)
	answers = append(answers, incorrect...)
	answers = append(answers, correct)
	c.shuffle(answers)

	return domain.Question{
		Type:             raw.Type,
		Difficulty:       raw.Difficulty,
		Category:         html.UnescapeString(raw.Category),
		Text:             html.UnescapeString(raw.Question),
		CorrectAnswer:    correct,
		IncorrectAnswers: incorrect,
		Answers:          answers,
	}, true
}

// shuffle is a Fisher-Yates pass; rand.Rand is not safe for concurrent use.
func (c *Client) shuffle(items []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(items) - 1; i > 0; i-- {
		j := c.rnd.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}
