package cli

import (
	"log"

	"github.com/spf13/cobra"
	"trivia-quiz-bot/internal/config"
	"trivia-quiz-bot/internal/infra/postgres/migrations"
)

// NewMigrateCmd applies database migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			applied, err := migrations.Apply(cmd.Context(), cfg.Postgres.URL)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				log.Printf("no new migrations")
				return nil
			}
			log.Printf("migrations applied: %v", applied)
			return nil
		},
	}
}
