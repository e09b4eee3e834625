package app_test

import (
	"context"
	"testing"
	"time"

	"flag-quiz-service/internal/app"
	"flag-quiz-service/internal/domain"
	"flag-quiz-service/internal/infra/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// correctIndex finds the answer from the public snapshot.
func correctIndex(t *testing.T, snap domain.Snapshot) int {
	t.Helper()
	for i, c := range snap.Candidates {
		if c == snap.Prompt {
			return i
		}
	}
	t.Fatalf("prompt %q not among candidates %v", snap.Prompt, snap.Candidates)
	return -1
}

func wrongIndex(t *testing.T, snap domain.Snapshot) int {
	return (correctIndex(t, snap) + 1) % domain.CandidatesPerRound
}

func TestStartDealsFirstRound(t *testing.T) {
	ctx := context.Background()
	service := newTestService()

	snap, err := service.Start(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", snap.PlayerID)
	assert.Equal(t, domain.PhasePlaying, snap.Phase)
	assert.Len(t, snap.Candidates, domain.CandidatesPerRound)
	assert.Equal(t, 0, snap.Score)
	assert.Equal(t, domain.DefaultQuestionsPerGame, snap.QuestionsPerGame)

	again, err := service.Start(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, snap.Candidates, again.Candidates, "start must resume a running game")
}

func TestAnswerAndContinue(t *testing.T) {
	ctx := context.Background()
	service := newTestService()
	snap, err := service.Start(ctx, "p1")
	require.NoError(t, err)

	res, err := service.Answer(ctx, "p1", correctIndex(t, snap))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCorrect, res.Outcome.Kind)
	assert.Equal(t, "Correct!", res.Title)
	assert.Equal(t, 1, res.Snapshot.Score)
	assert.Equal(t, 1, res.Snapshot.QuestionsAsked)
	assert.Equal(t, domain.PhaseRoundComplete, res.Snapshot.Phase)

	next, summary, err := service.Continue(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, summary)
	assert.Equal(t, domain.PhasePlaying, next.Phase)

	res, err = service.Answer(ctx, "p1", wrongIndex(t, next))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeWrong, res.Outcome.Kind)
	assert.Equal(t, next.Candidates[wrongIndex(t, next)], res.Outcome.Country)
	assert.Equal(t, 0, res.Snapshot.Score)
}

func TestFullGameReportsFinalScore(t *testing.T) {
	ctx := context.Background()
	service := newTestService()
	snap, err := service.Start(ctx, "p1")
	require.NoError(t, err)

	var summary *domain.GameOverSummary
	for i := 0; i < domain.DefaultQuestionsPerGame; i++ {
		_, err := service.Answer(ctx, "p1", correctIndex(t, snap))
		require.NoError(t, err)
		snap, summary, err = service.Continue(ctx, "p1")
		require.NoError(t, err)
	}

	require.NotNil(t, summary)
	assert.Equal(t, domain.DefaultQuestionsPerGame, summary.FinalScore)
	assert.Equal(t, "Your final score is 8 correct answers", summary.Title)
	assert.Equal(t, domain.PhaseGameOver, snap.Phase)
	assert.True(t, snap.GameOver)
	assert.Equal(t, 0, snap.Score)
	assert.Equal(t, 0, snap.QuestionsAsked)

	_, err = service.Answer(ctx, "p1", 0)
	assert.ErrorIs(t, err, domain.ErrUnexpectedPhase)

	fresh, err := service.Reset(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.PhasePlaying, fresh.Phase)
	assert.False(t, fresh.GameOver)
}

func TestInvalidActionsReturnErrors(t *testing.T) {
	ctx := context.Background()
	service := newTestService()

	_, err := service.Answer(ctx, "nobody", 0)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	_, _, err = service.Continue(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	_, err = service.Reset(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = service.Start(ctx, "p1")
	require.NoError(t, err)

	_, err = service.Answer(ctx, "p1", 3)
	assert.ErrorIs(t, err, domain.ErrInvalidAnswerIndex)
	_, err = service.Answer(ctx, "p1", -1)
	assert.ErrorIs(t, err, domain.ErrInvalidAnswerIndex)
	_, _, err = service.Continue(ctx, "p1")
	assert.ErrorIs(t, err, domain.ErrUnexpectedPhase)
	_, err = service.Reset(ctx, "p1")
	assert.ErrorIs(t, err, domain.ErrUnexpectedPhase)

	snap, err := service.Snapshot(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 0, snap.QuestionsAsked, "rejected actions must not change the game")
}

func TestSubscribeReceivesUpdates(t *testing.T) {
	ctx := context.Background()
	service := newTestService()
	snap, err := service.Start(ctx, "p1")
	require.NoError(t, err)

	ch, cancel, err := service.Subscribe(ctx, "p1")
	require.NoError(t, err)
	defer cancel()

	<-ch // initial snapshot

	_, err = service.Answer(ctx, "p1", correctIndex(t, snap))
	require.NoError(t, err)

	update := <-ch
	assert.Equal(t, 1, update.Score)
	assert.Equal(t, domain.PhaseRoundComplete, update.Phase)
}

func TestLeaveKeepsWatchedSessions(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSessionStore()
	service := app.NewGameService(store, memory.NewCatalogRepository(memory.NewStaticCatalogLoader(domain.DefaultCatalog()), time.Minute))

	_, err := service.Start(ctx, "p1")
	require.NoError(t, err)
	_, cancel, err := service.Subscribe(ctx, "p1")
	require.NoError(t, err)

	service.Leave(ctx, "p1")
	_, ok := store.Get("p1")
	assert.True(t, ok, "session with subscribers must survive leave")

	cancel()
	service.Leave(ctx, "p1")
	_, ok = store.Get("p1")
	assert.False(t, ok)
}

func TestSeededServicesDealSameRounds(t *testing.T) {
	ctx := context.Background()
	a := newTestService(app.WithSeed(99))
	b := newTestService(app.WithSeed(99))

	for _, player := range []string{"p1", "p2"} {
		sa, err := a.Start(ctx, player)
		require.NoError(t, err)
		sb, err := b.Start(ctx, player)
		require.NoError(t, err)
		assert.Equal(t, sa.Candidates, sb.Candidates)
		assert.Equal(t, sa.Prompt, sb.Prompt)
	}
}

func TestQuestionsPerGameOption(t *testing.T) {
	ctx := context.Background()
	service := newTestService(app.WithQuestionsPerGame(1))
	snap, err := service.Start(ctx, "p1")
	require.NoError(t, err)

	_, err = service.Answer(ctx, "p1", wrongIndex(t, snap))
	require.NoError(t, err)
	_, summary, err := service.Continue(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, -1, summary.FinalScore)
}

func TestStartFailsOnSmallCatalog(t *testing.T) {
	service := app.NewGameService(memory.NewSessionStore(), memory.NewCatalogRepository(memory.NewStaticCatalogLoader([]string{"France"}), time.Minute))

	_, err := service.Start(context.Background(), "p1")
	assert.ErrorIs(t, err, domain.ErrCatalogTooSmall)
}

func TestSlowCatalogDoesNotBlockOtherPlayers(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSessionStore()
	fast := app.NewGameService(store, memory.NewCatalogRepository(memory.NewStaticCatalogLoader(domain.DefaultCatalog()), time.Minute))
	slowCatalog := &blockingCatalog{entered: make(chan struct{}), release: make(chan struct{})}
	slow := app.NewGameService(store, slowCatalog)

	_, err := fast.Start(ctx, "p1")
	require.NoError(t, err)

	started := make(chan error, 1)
	go func() {
		_, err := slow.Start(ctx, "p2")
		started <- err
	}()
	<-slowCatalog.entered

	done := make(chan error, 1)
	go func() {
		_, err := fast.Snapshot(ctx, "p1")
		done <- err
	}()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatalf("snapshot for p1 blocked behind p2's catalog load")
	}

	close(slowCatalog.release)
	require.NoError(t, <-started)
	_, ok := store.Get("p2")
	assert.True(t, ok)
}

type blockingCatalog struct {
	entered chan struct{}
	release chan struct{}
}

func (c *blockingCatalog) GetCatalog(context.Context) ([]string, error) {
	close(c.entered)
	<-c.release
	return domain.DefaultCatalog(), nil
}

func newTestService(opts ...app.Option) *app.GameService {
	fixed := time.Date(2024, 11, 22, 12, 0, 0, 0, time.UTC)
	opts = append([]app.Option{app.WithClock(func() time.Time { return fixed })}, opts...)
	catalogs := memory.NewCatalogRepository(memory.NewStaticCatalogLoader(domain.DefaultCatalog()), 5*time.Minute)
	return app.NewGameService(memory.NewSessionStore(), catalogs, opts...)
}
