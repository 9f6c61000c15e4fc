package redis

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"trivia-quiz-bot/internal/app"
)

// markerTimeout bounds each marker write. The client must have
// ContextTimeoutEnabled for the bound to apply to socket reads.
const markerTimeout = time.Second

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - Sessions themselves stay in a local map; they are not serializable state
//     worth sharing and the engine serializes per user in process.
//   - Redis holds a liveness marker per user so operators can see who is mid-quiz
//     (KEYS quiz:session:*). The marker TTL is informational and never evicts a session.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[int64]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[int64]*app.Session),
	}
}

func (s *SessionStore) Get(userID int64) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[userID]
	return session, ok
}

// Put stores the session locally, then refreshes the marker outside the lock
// so a slow Redis never holds up other users.
func (s *SessionStore) Put(userID int64, session *app.Session) {
	s.mu.Lock()
	s.sessions[userID] = session
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), markerTimeout)
	defer cancel()
	// best-effort liveness marker
	_ = s.client.Set(ctx, s.key(userID), session.Len(), s.ttl).Err()
}

func (s *SessionStore) Remove(userID int64) {
	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), markerTimeout)
	defer cancel()
	_ = s.client.Del(ctx, s.key(userID)).Err()
}

func (s *SessionStore) key(userID int64) string {
	return "quiz:session:" + strconv.FormatInt(userID, 10)
}
