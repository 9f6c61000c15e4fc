package app

import (
	"context"

	"trivia-quiz-bot/internal/domain"
)

// DefaultQuizLength is the number of questions in a quiz when none is configured.
const DefaultQuizLength = 5

// SessionRepository abstracts where live quiz sessions are kept (in-memory, Redis-marked, etc).
type SessionRepository interface {
	Get(userID int64) (*Session, bool)
	Put(userID int64, session *Session)
	Remove(userID int64)
}

// QuestionSource fetches fresh questions from the question bank.
type QuestionSource interface {
	FetchQuestions(ctx context.Context, amount int, difficulty string) ([]domain.Question, error)
}

// QuizService runs the quiz session state machine for every user.
// Operations for one user are serialized; different users never block each other.
type QuizService struct {
	sessions SessionRepository
	source   QuestionSource
	amount   int
	locks    *identityLocks
}

func NewQuizService(store SessionRepository, source QuestionSource, amount int) *QuizService {
	if amount <= 0 {
		amount = DefaultQuizLength
	}
	return &QuizService{
		sessions: store,
		source:   source,
		amount:   amount,
		locks:    newIdentityLocks(),
	}
}

// Start fetches a new set of questions and replaces any session the user had.
// On failure the session store is left untouched.
func (s *QuizService) Start(ctx context.Context, userID int64) (domain.Prompt, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	questions, err := s.source.FetchQuestions(ctx, s.amount, domain.DifficultyAny)
	if err != nil {
		return domain.Prompt{}, err
	}
	if len(questions) == 0 {
		return domain.Prompt{}, domain.ErrFetch
	}

	session := NewSession(questions)
	s.sessions.Put(userID, session)
	return session.prompt(), nil
}

// CurrentQuestion returns the question the user is expected to answer next.
func (s *QuizService) CurrentQuestion(_ context.Context, userID int64) (domain.Prompt, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	session, ok := s.sessions.Get(userID)
	if !ok {
		return domain.Prompt{}, domain.ErrNoActiveSession
	}
	return session.prompt(), nil
}

// RecordAnswer stores the answer verbatim and advances the session. When the
// final question was answered the outcome reports Done and the caller should
// call Complete.
func (s *QuizService) RecordAnswer(_ context.Context, userID int64, answer string) (domain.AnswerOutcome, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	session, ok := s.sessions.Get(userID)
	if !ok {
		return domain.AnswerOutcome{}, domain.ErrNoActiveSession
	}
	return session.record(answer)
}

// Answer records the answer to question number (1-based) and, when it was the
// last question, completes the quiz in the same step. pick chooses the answer
// text from the question being answered. An answer for any other question
// returns ErrStaleAnswer and leaves the session unchanged, so a repeated tap on
// an old question never advances the quiz.
func (s *QuizService) Answer(_ context.Context, userID int64, number int, pick func(domain.Question) string) (domain.AnswerOutcome, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	session, ok := s.sessions.Get(userID)
	if !ok {
		return domain.AnswerOutcome{}, domain.ErrNoActiveSession
	}
	if !session.awaiting(number) {
		return domain.AnswerOutcome{}, domain.ErrStaleAnswer
	}

	outcome, err := session.record(pick(session.prompt().Question))
	if err != nil || !outcome.Done {
		return outcome, err
	}
	result, err := session.score()
	if err != nil {
		return outcome, err
	}
	s.sessions.Remove(userID)
	result.UserID = userID
	outcome.Result = &result
	return outcome, nil
}

// Complete scores the session and removes it. The session cannot be resumed afterwards.
// An unfinished session is left in place and ErrIncompleteSession is returned.
func (s *QuizService) Complete(_ context.Context, userID int64) (domain.QuizResult, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	session, ok := s.sessions.Get(userID)
	if !ok {
		return domain.QuizResult{}, domain.ErrNoActiveSession
	}

	result, err := session.score()
	if err != nil {
		return domain.QuizResult{}, err
	}
	s.sessions.Remove(userID)
	result.UserID = userID
	return result, nil
}
