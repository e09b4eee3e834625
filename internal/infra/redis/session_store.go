package redis

import (
	"context"
	"sync"
	"time"

	"flag-quiz-service/internal/app"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Games themselves stay in a local map so the in-process broadcast keeps
// working; Redis only carries a liveness marker per player, refreshed on
// every lookup and removed when the session is dropped.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) GetOrCreate(playerID string, session *app.Session) *app.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[playerID]; ok {
		s.touch(playerID)
		return existing
	}
	s.sessions[playerID] = session
	// best-effort liveness marker
	if err := s.client.Set(context.Background(), SessionKey(playerID), session.CreatedAt().UTC().Format(time.RFC3339), s.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("player", playerID).Msg("mark session live")
	}
	return session
}

func (s *SessionStore) Get(playerID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[playerID]
	if ok {
		s.touch(playerID)
	}
	return session, ok
}

func (s *SessionStore) DeleteIfIdle(playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[playerID]
	if !ok {
		return
	}
	if session.IsIdle() {
		delete(s.sessions, playerID)
		_ = s.client.Del(context.Background(), SessionKey(playerID)).Err()
	}
}

func (s *SessionStore) touch(playerID string) {
	if s.ttl <= 0 {
		return
	}
	_ = s.client.Expire(context.Background(), SessionKey(playerID), s.ttl).Err()
}

// SessionKey is the liveness marker for a player's game.
func SessionKey(playerID string) string {
	return "flagquiz:session:" + playerID
}
