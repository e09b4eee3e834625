package app

import (
	"context"
	"math/rand"
	"sync/atomic"
	"time"

	"flag-quiz-service/internal/domain"
	"flag-quiz-service/internal/game"
)

// SessionRepository abstracts where live game sessions are kept (in-memory, Redis, etc).
type SessionRepository interface {
	// GetOrCreate stores session unless the player already has one, and
	// returns whichever session is now live.
	GetOrCreate(playerID string, session *Session) *Session
	Get(playerID string) (*Session, bool)
	DeleteIfIdle(playerID string)
}

// CatalogRepository loads the country catalog (from cache/backing store).
type CatalogRepository interface {
	GetCatalog(ctx context.Context) ([]string, error)
}

// GameService contains the flag quiz use cases.
type GameService struct {
	sessions         SessionRepository
	catalogs         CatalogRepository
	questionsPerGame int
	now              func() time.Time
	newRand          func() *rand.Rand
}

// Option customizes a GameService.
type Option func(*GameService)

// WithQuestionsPerGame overrides how many rounds make up one game.
func WithQuestionsPerGame(n int) Option {
	return func(s *GameService) {
		if n > 0 {
			s.questionsPerGame = n
		}
	}
}

// WithSeed makes round generation reproducible: the n-th session created
// draws from a source seeded with seed+n.
func WithSeed(seed int64) Option {
	return func(s *GameService) {
		var n atomic.Int64
		s.newRand = func() *rand.Rand {
			return rand.New(rand.NewSource(seed + n.Add(1) - 1))
		}
	}
}

// WithClock is test-only for deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *GameService) {
		s.now = now
	}
}

func NewGameService(store SessionRepository, catalogs CatalogRepository, opts ...Option) *GameService {
	s := &GameService{
		sessions:         store,
		catalogs:         catalogs,
		questionsPerGame: domain.DefaultQuestionsPerGame,
		now:              time.Now,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start returns the player's running game, dealing the first round if there is none.
func (s *GameService) Start(ctx context.Context, playerID string) (domain.Snapshot, error) {
	if session, ok := s.sessions.Get(playerID); ok {
		return session.Snapshot(), nil
	}

	// The catalog loads without holding the store lock.
	catalog, err := s.catalogs.GetCatalog(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	quiz, err := game.New(catalog, s.questionsPerGame, s.newRand())
	if err != nil {
		return domain.Snapshot{}, err
	}
	session := s.sessions.GetOrCreate(playerID, NewSessionWithClock(playerID, quiz, s.now))
	return session.Snapshot(), nil
}

// Answer scores a tap on one of the current round's flags.
func (s *GameService) Answer(_ context.Context, playerID string, index int) (domain.AnswerResult, error) {
	session, ok := s.sessions.Get(playerID)
	if !ok {
		return domain.AnswerResult{}, domain.ErrSessionNotFound
	}
	return session.answer(index)
}

// Continue acknowledges the round-complete alert. The summary is non-nil when
// that round was the last one of the game.
func (s *GameService) Continue(_ context.Context, playerID string) (domain.Snapshot, *domain.GameOverSummary, error) {
	session, ok := s.sessions.Get(playerID)
	if !ok {
		return domain.Snapshot{}, nil, domain.ErrSessionNotFound
	}
	return session.advance()
}

// Reset acknowledges the game-over summary and starts the next game.
func (s *GameService) Reset(_ context.Context, playerID string) (domain.Snapshot, error) {
	session, ok := s.sessions.Get(playerID)
	if !ok {
		return domain.Snapshot{}, domain.ErrSessionNotFound
	}
	return session.reset()
}

// Snapshot returns the current state of a player's game.
func (s *GameService) Snapshot(_ context.Context, playerID string) (domain.Snapshot, error) {
	session, ok := s.sessions.Get(playerID)
	if !ok {
		return domain.Snapshot{}, domain.ErrSessionNotFound
	}
	return session.Snapshot(), nil
}

// Subscribe returns a channel that receives state updates for a player's game.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *GameService) Subscribe(_ context.Context, playerID string) (<-chan domain.Snapshot, func(), error) {
	session, ok := s.sessions.Get(playerID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// Leave drops the player's session once nobody is watching it anymore.
func (s *GameService) Leave(_ context.Context, playerID string) {
	if _, ok := s.sessions.Get(playerID); !ok {
		return
	}
	s.sessions.DeleteIfIdle(playerID)
}
