package domain

import "strings"

// Difficulty levels understood by the question bank. Empty means any.
const (
	DifficultyAny    = ""
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// ValidDifficulty reports whether d is accepted by the question bank.
func ValidDifficulty(d string) bool {
	switch d {
	case DifficultyAny, DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Question is the normalized trivia question shared by the quiz flow and the catalog.
// All text is already HTML-unescaped. Answers holds the shuffled union of the
// incorrect answers and CorrectAnswer.
type Question struct {
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Category         string   `json:"category"`
	Text             string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
	Answers          []string `json:"answers,omitempty"`
}

// IsCorrect compares an answer with the correct one using exact, case-sensitive equality.
func (q Question) IsCorrect(answer string) bool {
	return answer == q.CorrectAnswer
}

// Validate checks the fields required to store a question in the catalog.
func (q Question) Validate() error {
	switch {
	case strings.TrimSpace(q.Text) == "":
		return ValidationError("question text is required")
	case strings.TrimSpace(q.CorrectAnswer) == "":
		return ValidationError("correct answer is required")
	case len(q.IncorrectAnswers) == 0:
		return ValidationError("at least one incorrect answer is required")
	}
	for _, a := range q.IncorrectAnswers {
		if strings.TrimSpace(a) == "" {
			return ValidationError("incorrect answers must not be empty")
		}
	}
	return nil
}

// Prompt is a question as presented to a player, with its position in the quiz.
type Prompt struct {
	Question Question
	Number   int // 1-based
	Total    int
}

// AnswerOutcome is returned after recording an answer. When Done is false, Next
// holds the following question. Result is set only when the answer also
// completed the quiz.
type AnswerOutcome struct {
	Done   bool
	Next   Prompt
	Result *QuizResult
}

// QuestionResult is the per-question line of a finished quiz.
type QuestionResult struct {
	Question      string `json:"question"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	Correct       bool   `json:"correct"`
}

// QuizResult summarizes a completed quiz.
type QuizResult struct {
	UserID       int64            `json:"userId"`
	Questions    []QuestionResult `json:"questions"`
	CorrectCount int              `json:"correctCount"`
	Total        int              `json:"total"`
}

// BestScore is the single persisted record per user.
type BestScore struct {
	UserID         int64 `json:"userId"`
	CorrectAnswers int   `json:"correctAnswers"`
	TotalQuestions int   `json:"totalQuestions"`
}

// ScoreOutcome describes how a finished quiz compared with the stored best score.
type ScoreOutcome struct {
	Previous    int
	HasPrevious bool
	Current     int
	Total       int
	Saved       bool
}

// Difference is the change in correct answers relative to the previous record.
func (o ScoreOutcome) Difference() int {
	return o.Current - o.Previous
}

// CatalogQuestion is a question stored in the CRUD catalog.
type CatalogQuestion struct {
	ID int `json:"id"`
	Question
}
