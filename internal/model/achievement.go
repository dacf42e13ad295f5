package model

import "time"

// AchievementID identifies an achievement rule
type AchievementID string

const (
	AchievementFirstWin            AchievementID = "FIRST_WIN"
	AchievementPerfectEasy         AchievementID = "PERFECT_EASY"
	AchievementSpeedDemon          AchievementID = "SPEED_DEMON"
	AchievementWinStreak5          AchievementID = "WIN_STREAK_5"
	AchievementHardMaster          AchievementID = "HARD_MASTER"
	AchievementLuckyNumber         AchievementID = "LUCKY_NUMBER"
	AchievementVeteran             AchievementID = "VETERAN"
	AchievementMultiplayerChampion AchievementID = "MULTIPLAYER_CHAMPION"
)

// Achievement is the display metadata for an achievement rule
type Achievement struct {
	ID          AchievementID
	Name        string
	Description string
}

// AchievementUnlock is the durable record of a user earning an achievement.
// At most one exists per (user, achievement) pair.
type AchievementUnlock struct {
	UserID        UserID
	AchievementID AchievementID
	Name          string
	Description   string
	UnlockedAt    time.Time
}
