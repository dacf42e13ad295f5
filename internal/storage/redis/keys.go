package redis

import (
	"fmt"

	"github.com/nmikhailov/guessnum/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "guessnum"

// Key generation functions for each entity type

// userKey returns the Redis key for a User
func userKey(id model.UserID) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, id)
}

// usersIndexKey returns the Redis key for the SET of all user IDs
func usersIndexKey() string {
	return fmt.Sprintf("%s:idx:users", keyPrefix)
}

// gameKey returns the Redis key for a Game
func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}

// recentGamesKey returns the Redis key for the LIST of a user's finalized
// game IDs, newest first
func recentGamesKey(id model.UserID) string {
	return fmt.Sprintf("%s:idx:recent_games:%s", keyPrefix, id)
}

// levelStatsKey returns the Redis key for the HASH of a user's win aggregates
// at one level (fields: wins, attempts_sum, best)
func levelStatsKey(id model.UserID, level model.Level) string {
	return fmt.Sprintf("%s:stat:won:%s:%s", keyPrefix, level, id)
}

// roomKey returns the Redis key for a Room
func roomKey(code model.RoomCode) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, code)
}

// achievementsKey returns the Redis key for the SET of a user's unlocked
// achievement IDs
func achievementsKey(id model.UserID) string {
	return fmt.Sprintf("%s:achievements:%s", keyPrefix, id)
}

// achievementLogKey returns the Redis key for the LIST of a user's unlock
// records, newest first
func achievementLogKey(id model.UserID) string {
	return fmt.Sprintf("%s:achievement_log:%s", keyPrefix, id)
}
