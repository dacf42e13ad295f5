package model

import "time"

// GameID uniquely identifies a solo game record
type GameID string

// Outcome is the terminal result of a game
type Outcome string

const (
	OutcomePending Outcome = "pending"
	OutcomeWon     Outcome = "won"
	OutcomeLost    Outcome = "lost"
)

// Verdict is the hint produced by comparing a guess to the secret
type Verdict string

const (
	VerdictHigher  Verdict = "higher" // secret is higher than the guess
	VerdictLower   Verdict = "lower"  // secret is lower than the guess
	VerdictCorrect Verdict = "correct"
)

// CompareGuess returns the verdict for a guess against a secret number
func CompareGuess(guess, secret int) Verdict {
	switch {
	case guess == secret:
		return VerdictCorrect
	case guess < secret:
		return VerdictHigher
	default:
		return VerdictLower
	}
}

// Guess is one recorded attempt in a solo game
type Guess struct {
	Value   int
	Verdict Verdict
	At      time.Time
}

// Game is the durable record of one solo guessing session.
// The secret is fixed at creation and never recomputed.
type Game struct {
	ID      GameID
	OwnerID UserID
	Level   Level

	MaxNumber int
	Secret    int

	Guesses  []Guess
	Attempts int

	StartedAt time.Time
	EndedAt   time.Time // zero while Outcome is pending
	Outcome   Outcome
}

// Finalized reports whether the game has been sealed with a terminal outcome
func (g *Game) Finalized() bool {
	return g.Outcome != OutcomePending
}

// Duration returns the elapsed time from start to seal.
// Only meaningful once the game is finalized.
func (g *Game) Duration() time.Duration {
	if g.EndedAt.IsZero() {
		return 0
	}
	return g.EndedAt.Sub(g.StartedAt)
}
