package model

import "time"

// UserID uniquely identifies a player across the system.
// It is assigned by the chat transport and treated as opaque here.
type UserID string

// User holds a player's identity and cumulative statistics.
// Created on first interaction, mutated on every game finalization, never deleted.
type User struct {
	ID          UserID
	DisplayName string

	TotalGames int
	TotalWins  int
	// BestAttempts is the fewest attempts across all winning games.
	// Zero means the user has not won yet.
	BestAttempts int

	// Achievements is the set of unlocked achievement identifiers
	Achievements []AchievementID

	CreatedAt    time.Time
	LastActiveAt time.Time
}

// HasAchievement reports whether the user already holds the given achievement
func (u *User) HasAchievement(id AchievementID) bool {
	for _, a := range u.Achievements {
		if a == id {
			return true
		}
	}
	return false
}

// WinRate returns the fraction of games won, or 0 with no games played
func (u *User) WinRate() float64 {
	if u.TotalGames == 0 {
		return 0
	}
	return float64(u.TotalWins) / float64(u.TotalGames)
}
