// Package game holds the round lifecycle of a single flag quiz.
//
// A Quiz is not safe for concurrent use; callers serialize access.
// Methods panic on contract violations (wrong phase, index outside the
// round) because no caller can recover from them: input coming from the
// network must be validated before it reaches this package.
package game

import (
	"fmt"
	"math/rand"
	"time"

	"flag-quiz-service/internal/domain"
)

// Quiz tracks score and progress across rounds of one player's game.
type Quiz struct {
	countries []string
	limit     int
	rnd       *rand.Rand

	round      domain.Round
	phase      domain.Phase
	score      int
	asked      int
	outcome    *domain.Outcome
	gameOver   bool
	finalScore int
}

// New starts a quiz over the given catalog. questionsPerGame <= 0 falls back
// to domain.DefaultQuestionsPerGame; a nil rnd is seeded from the clock.
func New(countries []string, questionsPerGame int, rnd *rand.Rand) (*Quiz, error) {
	catalog, err := domain.NormalizeCatalog(countries)
	if err != nil {
		return nil, err
	}
	if questionsPerGame <= 0 {
		questionsPerGame = domain.DefaultQuestionsPerGame
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	q := &Quiz{
		countries: catalog,
		limit:     questionsPerGame,
		rnd:       rnd,
	}
	q.NewRound()
	return q, nil
}

// NewRound reshuffles the catalog, takes the first three countries as
// candidates and picks one of them as the answer.
func (q *Quiz) NewRound() {
	q.rnd.Shuffle(len(q.countries), func(i, j int) {
		q.countries[i], q.countries[j] = q.countries[j], q.countries[i]
	})
	var round domain.Round
	copy(round.Candidates[:], q.countries[:domain.CandidatesPerRound])
	round.Correct = q.rnd.Intn(domain.CandidatesPerRound)

	q.round = round
	q.phase = domain.PhasePlaying
}

// SubmitAnswer scores a tap on the flag at tappedIndex and completes the round.
func (q *Quiz) SubmitAnswer(tappedIndex int) domain.Outcome {
	q.mustBeIn(domain.PhasePlaying, "submit answer")
	if tappedIndex < 0 || tappedIndex >= domain.CandidatesPerRound {
		panic(fmt.Sprintf("game: answer index %d outside [0,%d)", tappedIndex, domain.CandidatesPerRound))
	}

	var outcome domain.Outcome
	if tappedIndex == q.round.Correct {
		q.score++
		outcome = domain.Outcome{Kind: domain.OutcomeCorrect}
	} else {
		q.score--
		outcome = domain.Outcome{Kind: domain.OutcomeWrong, Country: q.round.Candidates[tappedIndex]}
	}
	q.asked++
	q.outcome = &outcome
	q.phase = domain.PhaseRoundComplete
	return outcome
}

// Advance moves on after the round-complete alert. It ends the game once the
// last question has been asked and reports that via the second return value.
func (q *Quiz) Advance() (finalScore int, gameOver bool) {
	q.mustBeIn(domain.PhaseRoundComplete, "advance")
	if q.asked >= q.limit {
		return q.EndGame(), true
	}
	q.NewRound()
	return 0, false
}

// EndGame records the final score and resets the counters.
func (q *Quiz) EndGame() int {
	q.finalScore = q.score
	q.gameOver = true
	q.score = 0
	q.asked = 0
	q.phase = domain.PhaseGameOver
	return q.finalScore
}

// Acknowledge dismisses the game-over summary and deals a fresh round.
func (q *Quiz) Acknowledge() {
	q.mustBeIn(domain.PhaseGameOver, "acknowledge")
	q.gameOver = false
	q.outcome = nil
	q.NewRound()
}

func (q *Quiz) mustBeIn(phase domain.Phase, action string) {
	if q.phase != phase {
		panic(fmt.Sprintf("game: cannot %s while %s", action, q.phase))
	}
}

// Phase reports where the quiz is in its lifecycle.
func (q *Quiz) Phase() domain.Phase { return q.phase }

// Round returns the current round, including the correct index.
func (q *Quiz) Round() domain.Round { return q.round }

func (q *Quiz) Score() int          { return q.score }
func (q *Quiz) QuestionsAsked() int { return q.asked }
func (q *Quiz) IsGameOver() bool    { return q.gameOver }
func (q *Quiz) FinalScore() int     { return q.finalScore }

// QuestionsPerGame is the number of rounds in one game.
func (q *Quiz) QuestionsPerGame() int { return q.limit }

// LastOutcome returns the outcome of the latest tap, if any.
func (q *Quiz) LastOutcome() (domain.Outcome, bool) {
	if q.outcome == nil {
		return domain.Outcome{}, false
	}
	return *q.outcome, true
}

// Snapshot renders the quiz for clients. PlayerID and UpdatedAt are left to the caller.
func (q *Quiz) Snapshot() domain.Snapshot {
	snap := domain.Snapshot{
		Phase:            q.phase,
		Prompt:           q.round.Prompt(),
		Candidates:       append([]string(nil), q.round.Candidates[:]...),
		Score:            q.score,
		QuestionsAsked:   q.asked,
		QuestionsPerGame: q.limit,
		GameOver:         q.gameOver,
		FinalScore:       q.finalScore,
	}
	if q.outcome != nil {
		o := *q.outcome
		snap.LastOutcome = &o
	}

	switch q.phase {
	case domain.PhaseRoundComplete:
		snap.Title = q.outcome.Title()
		snap.Message = fmt.Sprintf("Your score is %d correct answers", q.score)
	case domain.PhaseGameOver:
		snap.Title = fmt.Sprintf("Your final score is %d correct answers", q.finalScore)
		snap.Message = "Try beating your score!"
	}
	return snap
}
