package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"trivia-quiz-bot/internal/domain"
)

// ScoreStore keeps one best-score row per user in the quiz_results table.
type ScoreStore struct {
	pool *pgxpool.Pool
}

func NewScoreStore(pool *pgxpool.Pool) *ScoreStore {
	return &ScoreStore{pool: pool}
}

func (s *ScoreStore) GetBest(ctx context.Context, userID int64) (domain.BestScore, bool, error) {
	score := domain.BestScore{UserID: userID}
	err := s.pool.QueryRow(ctx,
		`SELECT correct_answers, total_questions FROM quiz_results WHERE user_id=$1`, userID,
	).Scan(&score.CorrectAnswers, &score.TotalQuestions)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.BestScore{}, false, nil
	}
	if err != nil {
		return domain.BestScore{}, false, fmt.Errorf("get best score: %w", err)
	}
	return score, true, nil
}

// Upsert replaces the user's row in a single statement.
func (s *ScoreStore) Upsert(ctx context.Context, score domain.BestScore) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO quiz_results (user_id, correct_answers, total_questions)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET correct_answers = EXCLUDED.correct_answers, total_questions = EXCLUDED.total_questions`,
		score.UserID, score.CorrectAnswers, score.TotalQuestions)
	if err != nil {
		return fmt.Errorf("upsert best score: %w", err)
	}
	return nil
}

func (s *ScoreStore) ListAll(ctx context.Context) ([]domain.BestScore, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT user_id, correct_answers, total_questions FROM quiz_results ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	defer rows.Close()

	var scores []domain.BestScore
	for rows.Next() {
		var score domain.BestScore
		if err := rows.Scan(&score.UserID, &score.CorrectAnswers, &score.TotalQuestions); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		scores = append(scores, score)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	return scores, nil
}

// Ping checks that the database answers.
func (s *ScoreStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
