package redis

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"trivia-quiz-bot/internal/app"
	"trivia-quiz-bot/internal/domain"
)

const (
	fieldCorrect = "correct"
	fieldTotal   = "total"
	userStripes  = 64
)

// ScoreRepository caches best scores in Redis (hash per user) in front of a
// backing app.ScoreRepository and falls back to it on cache miss.
// Records are stored as: HSET quiz:score:{userID} correct {n} total {m}
type ScoreRepository struct {
	client  *redis.Client
	backing app.ScoreRepository
	ttl     time.Duration
	sf      singleflight.Group
	// users serializes cache fills with upserts for the same user so a fill
	// that read the old row cannot land after the upsert's invalidation.
	users [userStripes]sync.Mutex

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewScoreRepository(client *redis.Client, backing app.ScoreRepository, ttl time.Duration) *ScoreRepository {
	return &ScoreRepository{
		client:  client,
		backing: backing,
		ttl:     ttl,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

type cachedScore struct {
	score domain.BestScore
	found bool
}

func (r *ScoreRepository) GetBest(ctx context.Context, userID int64) (domain.BestScore, bool, error) {
	key := r.key(userID)

	if score, ok := r.fromCache(ctx, key, userID); ok {
		return score, true, nil
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if score, ok := r.fromCache(ctx, key, userID); ok {
			return cachedScore{score: score, found: true}, nil
		}

		mu := r.userLock(userID)
		mu.Lock()
		defer mu.Unlock()

		score, found, err := r.backing.GetBest(ctx, userID)
		if err != nil {
			return cachedScore{}, err
		}
		if !found {
			return cachedScore{}, nil
		}

		pipe := r.client.Pipeline()
		pipe.HSet(ctx, key, fieldCorrect, score.CorrectAnswers, fieldTotal, score.TotalQuestions)
		if ttl := r.ttlWithJitter(); ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		_, _ = pipe.Exec(ctx)

		return cachedScore{score: score, found: true}, nil
	})
	if err != nil {
		return domain.BestScore{}, false, err
	}
	cached := result.(cachedScore)
	return cached.score, cached.found, nil
}

// Upsert writes through to the backing store and drops the cached copy.
func (r *ScoreRepository) Upsert(ctx context.Context, score domain.BestScore) error {
	mu := r.userLock(score.UserID)
	mu.Lock()
	defer mu.Unlock()

	if err := r.backing.Upsert(ctx, score); err != nil {
		return err
	}
	_ = r.client.Del(ctx, r.key(score.UserID)).Err()
	return nil
}

func (r *ScoreRepository) ListAll(ctx context.Context) ([]domain.BestScore, error) {
	return r.backing.ListAll(ctx)
}

func (r *ScoreRepository) fromCache(ctx context.Context, key string, userID int64) (domain.BestScore, bool) {
	fields, err := r.client.HGetAll(ctx, key).Result()
	if err != nil || len(fields) == 0 {
		return domain.BestScore{}, false
	}
	correct, err := strconv.Atoi(fields[fieldCorrect])
	if err != nil {
		return domain.BestScore{}, false
	}
	total, err := strconv.Atoi(fields[fieldTotal])
	if err != nil {
		return domain.BestScore{}, false
	}
	return domain.BestScore{UserID: userID, CorrectAnswers: correct, TotalQuestions: total}, true
}

func (r *ScoreRepository) userLock(userID int64) *sync.Mutex {
	i := userID % userStripes
	if i < 0 {
		i = -i
	}
	return &r.users[i]
}

func (r *ScoreRepository) key(userID int64) string {
	return "quiz:score:" + strconv.FormatInt(userID, 10)
}

func (r *ScoreRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
