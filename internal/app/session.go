package app

import (
	"sync"
	"time"

	"flag-quiz-service/internal/domain"
	"flag-quiz-service/internal/game"
)

// Session is one player's game plus everyone watching it.
type Session struct {
	playerID    string
	createdAt   time.Time
	now         func() time.Time
	mu          sync.Mutex
	quiz        *game.Quiz
	subscribers map[chan domain.Snapshot]struct{}
}

// NewSession is exported for infrastructure layers that need to seed sessions.
func NewSession(playerID string, quiz *game.Quiz) *Session {
	return NewSessionWithClock(playerID, quiz, time.Now)
}

// NewSessionWithClock allows deterministic timestamps in tests.
func NewSessionWithClock(playerID string, quiz *game.Quiz, now func() time.Time) *Session {
	return &Session{
		playerID:    playerID,
		createdAt:   now(),
		now:         now,
		quiz:        quiz,
		subscribers: make(map[chan domain.Snapshot]struct{}),
	}
}

// PlayerID identifies the session owner.
func (s *Session) PlayerID() string { return s.playerID }

// CreatedAt is when the first round of the session was dealt.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Snapshot returns the current state of the game.
func (s *Session) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// IsIdle reports whether no subscriber is attached to the session.
func (s *Session) IsIdle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers) == 0
}

func (s *Session) answer(index int) (domain.AnswerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.quiz.Phase() != domain.PhasePlaying {
		return domain.AnswerResult{}, domain.ErrUnexpectedPhase
	}
	if index < 0 || index >= domain.CandidatesPerRound {
		return domain.AnswerResult{}, domain.ErrInvalidAnswerIndex
	}

	outcome := s.quiz.SubmitAnswer(index)
	return domain.AnswerResult{
		Outcome:  outcome,
		Title:    outcome.Title(),
		Snapshot: s.broadcastLocked(),
	}, nil
}

func (s *Session) advance() (domain.Snapshot, *domain.GameOverSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.quiz.Phase() != domain.PhaseRoundComplete {
		return domain.Snapshot{}, nil, domain.ErrUnexpectedPhase
	}

	finalScore, over := s.quiz.Advance()
	snap := s.broadcastLocked()
	if !over {
		return snap, nil, nil
	}
	return snap, &domain.GameOverSummary{
		FinalScore: finalScore,
		Title:      snap.Title,
		Snapshot:   snap,
	}, nil
}

func (s *Session) reset() (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.quiz.Phase() != domain.PhaseGameOver {
		return domain.Snapshot{}, domain.ErrUnexpectedPhase
	}
	s.quiz.Acknowledge()
	return s.broadcastLocked(), nil
}

func (s *Session) subscribe() (<-chan domain.Snapshot, func()) {
	ch := make(chan domain.Snapshot, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := s.snapshotLocked()
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked() domain.Snapshot {
	snap := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			// Subscriber is behind; replace its oldest update with the newest.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
	return snap
}

func (s *Session) snapshotLocked() domain.Snapshot {
	snap := s.quiz.Snapshot()
	snap.PlayerID = s.playerID
	snap.UpdatedAt = s.now()
	return snap
}
