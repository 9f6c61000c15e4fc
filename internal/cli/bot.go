package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"trivia-quiz-bot/internal/config"
	"trivia-quiz-bot/internal/transport/telegram"
)

// NewBotCmd runs only the Telegram bot.
func NewBotCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Start the Telegram quiz bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := withSignals(cmd.Context())
			defer stop()

			s, err := loadServices(ctx, *configPath)
			if err != nil {
				return err
			}
			defer s.Close()
			return runBot(ctx, s)
		},
	}
}

// NewStartCmd runs the bot and the REST API in one process so they share
// the catalog and the results feed.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the Telegram bot and the REST API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := withSignals(cmd.Context())
			defer stop()

			s, err := loadServices(ctx, *configPath)
			if err != nil {
				return err
			}
			defer s.Close()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return runBot(gctx, s) })
			g.Go(func() error { return runAPI(gctx, s, *port) })
			return g.Wait()
		},
	}
}

func runBot(ctx context.Context, s *services) error {
	if s.cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token not configured (set TELEGRAM_BOT_TOKEN)")
	}

	api, err := tgbotapi.NewBotAPI(s.cfg.Telegram.Token)
	if err != nil {
		return fmt.Errorf("connect telegram: %w", err)
	}
	api.Debug = s.cfg.Telegram.Debug
	log.Printf("authorized on account %s", api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = s.cfg.Telegram.PollTimeout
	if u.Timeout <= 0 {
		u.Timeout = 60
	}
	updates := api.GetUpdatesChan(u)

	go func() {
		<-ctx.Done()
		api.StopReceivingUpdates()
	}()

	bot := telegram.NewBot(api, s.quiz, s.scores, telegram.Options{
		FetchTimeout: config.TTLDuration(s.cfg.Quiz.FetchTimeout, 10*time.Second),
		ScoreTimeout: config.TTLDuration(s.cfg.Scores.Timeout, 5*time.Second),
	})
	err = bot.Run(ctx, updates)
	log.Println("bot stopped")
	return err
}

func withSignals(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
