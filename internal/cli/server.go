package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	transport "trivia-quiz-bot/internal/transport/http"
)

// NewServeCmd runs only the REST API.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the REST trivia API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := withSignals(cmd.Context())
			defer stop()

			s, err := loadServices(ctx, *configPath)
			if err != nil {
				return err
			}
			defer s.Close()
			return runAPI(ctx, s, *port)
		},
	}
}

func runAPI(ctx context.Context, s *services, portFlag string) error {
	finalPort := portFlag
	if finalPort == "" {
		finalPort = s.cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	router := transport.NewRouter(transport.RouterDeps{
		Catalog:     s.catalog,
		Scores:      s.scores,
		Feed:        s.feed,
		CORSOrigins: s.cfg.API.CORSOrigins,
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("starting trivia api on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
		return nil
	case <-ctx.Done():
		log.Println("shutting down api server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
