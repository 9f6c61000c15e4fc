package app

import (
	"context"
	"fmt"
	"log"

	"trivia-quiz-bot/internal/domain"
)

// ScoreRepository persists one best-score record per user.
type ScoreRepository interface {
	GetBest(ctx context.Context, userID int64) (domain.BestScore, bool, error)
	Upsert(ctx context.Context, score domain.BestScore) error
	ListAll(ctx context.Context) ([]domain.BestScore, error)
}

// RecordPolicy decides when a finished quiz replaces the stored record.
type RecordPolicy string

const (
	// PolicyImprovement saves when there is no record yet or the new count is strictly higher.
	PolicyImprovement RecordPolicy = "improvement"
	// PolicyLegacy saves whenever a record exists, or when there is none and the count beats zero.
	// It reproduces the behavior of the first release and awaits product confirmation.
	PolicyLegacy RecordPolicy = "legacy"
)

// ParseRecordPolicy maps a config value to a policy; empty selects PolicyImprovement.
func ParseRecordPolicy(raw string) (RecordPolicy, error) {
	switch RecordPolicy(raw) {
	case "", PolicyImprovement:
		return PolicyImprovement, nil
	case PolicyLegacy:
		return PolicyLegacy, nil
	}
	return "", domain.ValidationError(fmt.Sprintf("unknown record policy %q", raw))
}

func (p RecordPolicy) shouldSave(prev domain.BestScore, hasPrev bool, current int) bool {
	if p == PolicyLegacy {
		return hasPrev || prev.CorrectAnswers < current
	}
	return !hasPrev || current > prev.CorrectAnswers
}

// ScoreService compares finished quizzes with the stored best and persists new records.
type ScoreService struct {
	repo   ScoreRepository
	policy RecordPolicy
	feed   *ResultsFeed
}

// NewScoreService wires the score store. feed may be nil.
func NewScoreService(repo ScoreRepository, policy RecordPolicy, feed *ResultsFeed) *ScoreService {
	if policy == "" {
		policy = PolicyImprovement
	}
	return &ScoreService{repo: repo, policy: policy, feed: feed}
}

// Record reads the previous best and saves result when the policy allows it.
// The returned outcome always carries the current score, even on error, so the
// caller can display it.
func (s *ScoreService) Record(ctx context.Context, result domain.QuizResult) (domain.ScoreOutcome, error) {
	outcome := domain.ScoreOutcome{Current: result.CorrectCount, Total: result.Total}

	prev, ok, err := s.repo.GetBest(ctx, result.UserID)
	if err != nil {
		return outcome, fmt.Errorf("%w: get best score: %w", domain.ErrPersistence, err)
	}
	if ok {
		outcome.Previous = prev.CorrectAnswers
		outcome.HasPrevious = true
	}

	if !s.policy.shouldSave(prev, ok, result.CorrectCount) {
		return outcome, nil
	}

	record := domain.BestScore{
		UserID:         result.UserID,
		CorrectAnswers: result.CorrectCount,
		TotalQuestions: result.Total,
	}
	if err := s.repo.Upsert(ctx, record); err != nil {
		return outcome, fmt.Errorf("%w: save best score: %w", domain.ErrPersistence, err)
	}
	outcome.Saved = true

	if s.feed != nil {
		s.feed.Publish(record)
	}
	log.Printf("[scores] user %d new record %d/%d", record.UserID, record.CorrectAnswers, record.TotalQuestions)
	return outcome, nil
}

// List returns every stored record.
func (s *ScoreService) List(ctx context.Context) ([]domain.BestScore, error) {
	scores, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list scores: %w", domain.ErrPersistence, err)
	}
	return scores, nil
}
