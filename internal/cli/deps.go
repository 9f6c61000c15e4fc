package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"trivia-quiz-bot/internal/app"
	"trivia-quiz-bot/internal/config"
	"trivia-quiz-bot/internal/infra/memory"
	"trivia-quiz-bot/internal/infra/postgres"
	"trivia-quiz-bot/internal/infra/postgres/migrations"
	redisinfra "trivia-quiz-bot/internal/infra/redis"
	"trivia-quiz-bot/internal/opentdb"
)

// services holds everything the bot and the API share within one process.
type services struct {
	cfg     config.Config
	pool    *pgxpool.Pool
	redis   *redis.Client
	quiz    *app.QuizService
	scores  *app.ScoreService
	catalog *app.CatalogService
	feed    *app.ResultsFeed
}

func loadServices(ctx context.Context, path string) (*services, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return buildServices(ctx, cfg)
}

func buildServices(ctx context.Context, cfg config.Config) (*services, error) {
	policy, err := app.ParseRecordPolicy(cfg.Quiz.RecordPolicy)
	if err != nil {
		return nil, err
	}

	s := &services{cfg: cfg, feed: app.NewResultsFeed()}

	var scoreRepo app.ScoreRepository = memory.NewScoreStore()
	if cfg.Postgres.URL != "" {
		applied, err := migrations.Apply(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		if len(applied) > 0 {
			log.Printf("applied migrations: %v", applied)
		}
		s.pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		scoreRepo = postgres.NewScoreStore(s.pool)
	} else {
		log.Printf("postgres url not configured, best scores are kept in memory")
	}

	var sessions app.SessionRepository = memory.NewSessionStore()
	if cfg.Redis.Addr != "" {
		s.redis = redis.NewClient(&redis.Options{
			Addr:                  cfg.Redis.Addr,
			Password:              cfg.Redis.Password,
			DB:                    cfg.Redis.DB,
			DialTimeout:           time.Second,
			ReadTimeout:           time.Second,
			WriteTimeout:          time.Second,
			MaxRetries:            1,
			ContextTimeoutEnabled: true,
		})
		sessions = redisinfra.NewSessionStore(s.redis, config.TTLDuration(cfg.Redis.TTL, 30*time.Minute))
		scoreRepo = redisinfra.NewScoreRepository(s.redis, scoreRepo, config.TTLDuration(cfg.Scores.CacheTTL, 10*time.Minute))
	}

	bank := opentdb.NewClient(
		&http.Client{Timeout: config.TTLDuration(cfg.QuestionBank.Timeout, 10*time.Second)},
		cfg.QuestionBank.BaseURL,
	)

	s.quiz = app.NewQuizService(sessions, bank, cfg.Quiz.Amount)
	s.scores = app.NewScoreService(scoreRepo, policy, s.feed)
	s.catalog = app.NewCatalogService(bank)
	return s, nil
}

func (s *services) Close() {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			log.Printf("close redis: %v", err)
		}
	}
	if s.pool != nil {
		s.pool.Close()
	}
}
