package model

import "time"

// GuessResult is the immediate outcome of submitting one guess, returned to
// the guesser. Roster-wide announcements travel separately as Notifications.
type GuessResult struct {
	Multiplayer bool

	// Dropped is true when the guess arrived after the session was finalized
	// and was ignored without being recorded
	Dropped bool

	Verdict  Verdict
	Attempts int

	Won      bool
	Secret   int           // revealed only on a win
	Duration time.Duration // elapsed time on a win

	Unlocked []Achievement
}
