package domain

import "time"

// CandidatesPerRound is the number of flags shown in every round.
const CandidatesPerRound = 3

// DefaultQuestionsPerGame is the number of rounds after which a game ends.
const DefaultQuestionsPerGame = 8

// Phase is the position of a game in its round lifecycle.
type Phase string

const (
	PhasePlaying       Phase = "playing"
	PhaseRoundComplete Phase = "roundComplete"
	PhaseGameOver      Phase = "gameOver"
)

// OutcomeKind classifies a submitted answer.
type OutcomeKind string

const (
	OutcomeCorrect OutcomeKind = "correct"
	OutcomeWrong   OutcomeKind = "wrong"
)

// Outcome is the result of a single tap. Country is set only for wrong
// answers and names the flag that was actually tapped.
type Outcome struct {
	Kind    OutcomeKind `json:"kind"`
	Country string      `json:"country,omitempty"`
}

// Title is the alert heading shown after a tap.
func (o Outcome) Title() string {
	if o.Kind == OutcomeCorrect {
		return "Correct!"
	}
	return "Wrong! That's the flag of " + o.Country
}

// Round holds the three candidate countries and the index of the right one.
type Round struct {
	Candidates [CandidatesPerRound]string
	Correct    int
}

// Prompt is the country the player is asked to find.
func (r Round) Prompt() string {
	return r.Candidates[r.Correct]
}

// Snapshot is a read-only view of a game, safe to hand to clients.
// The correct index is deliberately absent.
type Snapshot struct {
	PlayerID         string    `json:"playerId"`
	Phase            Phase     `json:"phase"`
	Prompt           string    `json:"prompt"`
	Candidates       []string  `json:"candidates"`
	Score            int       `json:"score"`
	QuestionsAsked   int       `json:"questionsAsked"`
	QuestionsPerGame int       `json:"questionsPerGame"`
	LastOutcome      *Outcome  `json:"lastOutcome,omitempty"`
	GameOver         bool      `json:"gameOver"`
	FinalScore       int       `json:"finalScore"`
	Title            string    `json:"title,omitempty"`
	Message          string    `json:"message,omitempty"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// AnswerResult is returned to the player after a tap.
type AnswerResult struct {
	Outcome  Outcome  `json:"outcome"`
	Title    string   `json:"title"`
	Snapshot Snapshot `json:"snapshot"`
}

// GameOverSummary is the terminal signal emitted when the last round is acknowledged.
type GameOverSummary struct {
	FinalScore int      `json:"finalScore"`
	Title      string   `json:"title"`
	Snapshot   Snapshot `json:"snapshot"`
}
