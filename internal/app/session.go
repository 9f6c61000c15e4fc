package app

import "trivia-quiz-bot/internal/domain"

// Session is one user's quiz in progress. It is not safe for concurrent use;
// QuizService serializes access per user.
type Session struct {
	questions []domain.Question
	current   int
	answers   []string
}

// NewSession is exported for infrastructure layers and tests that need to seed sessions.
func NewSession(questions []domain.Question) *Session {
	return &Session{
		questions: questions,
		answers:   make([]string, 0, len(questions)),
	}
}

// Len is the fixed number of questions in the session.
func (s *Session) Len() int {
	return len(s.questions)
}

// Answered is the number of recorded answers.
func (s *Session) Answered() int {
	return len(s.answers)
}

func (s *Session) prompt() domain.Prompt {
	return domain.Prompt{
		Question: s.questions[s.current],
		Number:   s.current + 1,
		Total:    len(s.questions),
	}
}

// awaiting reports whether question number (1-based) is the one expecting an answer.
func (s *Session) awaiting(number int) bool {
	return len(s.answers) < len(s.questions) && number == s.current+1
}

func (s *Session) record(answer string) (domain.AnswerOutcome, error) {
	if len(s.answers) >= len(s.questions) {
		return domain.AnswerOutcome{Done: true}, nil
	}
	s.answers = append(s.answers, answer)
	if s.current < len(s.questions)-1 {
		s.current++
		return domain.AnswerOutcome{Next: s.prompt()}, nil
	}
	return domain.AnswerOutcome{Done: true}, nil
}

func (s *Session) score() (domain.QuizResult, error) {
	if len(s.answers) < len(s.questions) {
		return domain.QuizResult{}, domain.ErrIncompleteSession
	}

	result := domain.QuizResult{
		Questions: make([]domain.QuestionResult, 0, len(s.questions)),
		Total:     len(s.questions),
	}
	for i, q := range s.questions {
		correct := q.IsCorrect(s.answers[i])
		if correct {
			result.CorrectCount++
		}
		result.Questions = append(result.Questions, domain.QuestionResult{
			Question:      q.Text,
			UserAnswer:    s.answers[i],
			CorrectAnswer: q.CorrectAnswer,
			Correct:       correct,
		})
	}
	return result, nil
}
