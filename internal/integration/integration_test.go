package integration

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"trivia-quiz-bot/internal/app"
	"trivia-quiz-bot/internal/domain"
	"trivia-quiz-bot/internal/infra/postgres"
	"trivia-quiz-bot/internal/infra/postgres/migrations"
	infraredis "trivia-quiz-bot/internal/infra/redis"
)

func TestQuizScoresPersistThroughCache(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	applied, err := migrations.Apply(ctx, pgURL)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if len(applied) == 0 {
		t.Fatalf("expected migrations to be applied on a fresh database")
	}
	again, err := migrations.Apply(ctx, pgURL)
	if err != nil {
		t.Fatalf("migrate again: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected no pending migrations, got %v", again)
	}

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()
	store := postgres.NewScoreStore(pool)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	scores := app.NewScoreService(
		infraredis.NewScoreRepository(redisClient, store, 5*time.Minute),
		app.PolicyImprovement,
		nil,
	)
	quiz := app.NewQuizService(infraredis.NewSessionStore(redisClient, 5*time.Minute), fixedSource{}, 2)

	play := func(answers ...string) domain.ScoreOutcome {
		t.Helper()
		if _, err := quiz.Start(ctx, 7); err != nil {
			t.Fatalf("start: %v", err)
		}
		for _, a := range answers {
			if _, err := quiz.RecordAnswer(ctx, 7, a); err != nil {
				t.Fatalf("answer: %v", err)
			}
		}
		result, err := quiz.Complete(ctx, 7)
		if err != nil {
			t.Fatalf("complete: %v", err)
		}
		outcome, err := scores.Record(ctx, result)
		if err != nil {
			t.Fatalf("record: %v", err)
		}
		return outcome
	}

	first := play("4", "Rome")
	if !first.Saved || first.HasPrevious || first.Current != 1 {
		t.Fatalf("unexpected first outcome: %+v", first)
	}

	second := play("4", "Paris")
	if !second.Saved || second.Previous != 1 || second.Current != 2 {
		t.Fatalf("unexpected second outcome: %+v", second)
	}

	third := play("3", "Rome")
	if third.Saved || third.Previous != 2 || third.Difference() != -2 {
		t.Fatalf("unexpected third outcome: %+v", third)
	}

	best, ok, err := store.GetBest(ctx, 7)
	if err != nil || !ok {
		t.Fatalf("get best: ok=%v err=%v", ok, err)
	}
	if best.CorrectAnswers != 2 || best.TotalQuestions != 2 {
		t.Fatalf("expected stored 2/2, got %+v", best)
	}

	if err := store.Upsert(ctx, domain.BestScore{UserID: 3, CorrectAnswers: 1, TotalQuestions: 2}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	all, err := store.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].UserID != 3 || all[1].UserID != 7 {
		t.Fatalf("unexpected list: %+v", all)
	}
	if err := store.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

type fixedSource struct{}

func (fixedSource) FetchQuestions(_ context.Context, amount int, _ string) ([]domain.Question, error) {
	questions := []domain.Question{
		{Type: "multiple", Difficulty: "easy", Category: "Math", Text: "2+2?", CorrectAnswer: "4", IncorrectAnswers: []string{"3", "5"}, Answers: []string{"3", "4", "5"}},
		{Type: "multiple", Difficulty: "easy", Category: "Geography", Text: "Capital of France?", CorrectAnswer: "Paris", IncorrectAnswers: []string{"Rome"}, Answers: []string{"Rome", "Paris"}},
	}
	if amount < len(questions) {
		questions = questions[:amount]
	}
	return questions, nil
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
