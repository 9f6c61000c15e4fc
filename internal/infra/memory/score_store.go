package memory

import (
	"context"
	"sort"
	"sync"

	"trivia-quiz-bot/internal/domain"
)

// ScoreStore keeps best scores in process memory. It backs the bot when no
// Postgres URL is configured and doubles as a test fake.
type ScoreStore struct {
	mu     sync.RWMutex
	scores map[int64]domain.BestScore
}

func NewScoreStore() *ScoreStore {
	return &ScoreStore{scores: make(map[int64]domain.BestScore)}
}

func (s *ScoreStore) GetBest(_ context.Context, userID int64) (domain.BestScore, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	score, ok := s.scores[userID]
	return score, ok, nil
}

// Upsert replaces the user's record entirely.
func (s *ScoreStore) Upsert(_ context.Context, score domain.BestScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[score.UserID] = score
	return nil
}

// ListAll returns records ordered by user id.
func (s *ScoreStore) ListAll(_ context.Context) ([]domain.BestScore, error) {
	s.mu.RLock()
	out := make([]domain.BestScore, 0, len(s.scores))
	for _, score := range s.scores {
		out = append(out, score)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// Ping always succeeds.
func (s *ScoreStore) Ping(context.Context) error {
	return nil
}
