package model

import "time"

// Level is the difficulty of a game, fixing the guessing range and deadline
type Level string

const (
	LevelEasy   Level = "easy"
	LevelMedium Level = "medium"
	LevelHard   Level = "hard"
)

// RoomDeadline is the shared time limit for multiplayer rooms, regardless of level
const RoomDeadline = 120 * time.Second

// Valid reports whether the level is one of the known difficulties
func (l Level) Valid() bool {
	switch l {
	case LevelEasy, LevelMedium, LevelHard:
		return true
	}
	return false
}

// MaxNumber returns the inclusive upper bound of the guessing range (lower bound is 1)
func (l Level) MaxNumber() int {
	switch l {
	case LevelEasy:
		return 10
	case LevelMedium:
		return 50
	case LevelHard:
		return 100
	}
	return 0
}

// Deadline returns the solo session time limit for the level
func (l Level) Deadline() time.Duration {
	switch l {
	case LevelEasy:
		return 60 * time.Second
	case LevelMedium:
		return 90 * time.Second
	case LevelHard:
		return 120 * time.Second
	}
	return 0
}

// DisplayName returns the capitalized level name used in messages and records
func (l Level) DisplayName() string {
	switch l {
	case LevelEasy:
		return "Easy"
	case LevelMedium:
		return "Medium"
	case LevelHard:
		return "Hard"
	}
	return string(l)
}

// ParseLevel converts a string to a Level, or returns ErrInvalidLevel
func ParseLevel(s string) (Level, error) {
	l := Level(s)
	if !l.Valid() {
		return "", ErrInvalidLevel
	}
	return l, nil
}
