package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
	"trivia-quiz-bot/internal/config"
	"trivia-quiz-bot/internal/infra/postgres"
)

// NewCheckDBCmd verifies the score database is reachable.
func NewCheckDBCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check-db",
		Short: "Check the Postgres connection",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeFn, err := openScoreStore(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer closeFn()

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				return fmt.Errorf("database unreachable: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "database connection ok")
			return nil
		},
	}
}

// NewResultsCmd prints every stored best score.
func NewResultsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "results",
		Short: "Print stored best scores",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeFn, err := openScoreStore(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer closeFn()

			scores, err := store.ListAll(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(scores) == 0 {
				fmt.Fprintln(out, "no results yet")
				return nil
			}
			fmt.Fprintf(out, "%-14s %s\n", "USER", "BEST")
			for _, s := range scores {
				fmt.Fprintf(out, "%-14d %d/%d\n", s.UserID, s.CorrectAnswers, s.TotalQuestions)
			}
			return nil
		},
	}
}

func openScoreStore(ctx context.Context, path string) (*postgres.ScoreStore, func(), error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Postgres.URL == "" {
		return nil, nil, fmt.Errorf("postgres url not configured")
	}
	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	return postgres.NewScoreStore(pool), pool.Close, nil
}
