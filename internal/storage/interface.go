package storage

import (
	"context"
	"time"

	"github.com/nmikhailov/guessnum/internal/model"
)

// CounterDelta describes an aggregate update applied to a user on finalization.
// WinAttempts, when Wins > 0, lowers BestAttempts to the minimum of its current
// value and WinAttempts.
type CounterDelta struct {
	Games       int
	Wins        int
	WinAttempts int
}

// LevelStats aggregates a user's winning games at one difficulty level
type LevelStats struct {
	Level        model.Level
	Wins         int
	AvgAttempts  float64
	BestAttempts int
}

// Storage defines the interface for data persistence.
// It is the source of truth for finalized state; in-memory registries are
// advisory caches on top of it.
type Storage interface {
	// User operations
	UpsertUser(ctx context.Context, id model.UserID, displayName string, now time.Time) (*model.User, error)
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	IncrementUserCounters(ctx context.Context, id model.UserID, delta CounterDelta) (*model.User, error)
	QueryLeaderboard(ctx context.Context, limit int) ([]*model.User, error)

	// Game operations
	SaveGame(ctx context.Context, game *model.Game) error
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	AppendGuess(ctx context.Context, id model.GameID, guess model.Guess) (*model.Game, error)
	// SealGame sets the terminal outcome exactly once; a second seal attempt
	// returns model.ErrGameFinalized and leaves the record unchanged.
	SealGame(ctx context.Context, id model.GameID, outcome model.Outcome, endedAt time.Time) (*model.Game, error)
	// QueryRecentGames returns the user's finalized games, newest first
	QueryRecentGames(ctx context.Context, userID model.UserID, limit int) ([]*model.Game, error)
	CountWonGames(ctx context.Context, userID model.UserID, level model.Level) (int, error)
	// QueryLevelStats returns per-level win aggregates for the user, easiest
	// level first, omitting levels with no wins
	QueryLevelStats(ctx context.Context, userID model.UserID) ([]LevelStats, error)

	// Room operations
	SaveRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error)
	DeleteRoom(ctx context.Context, code model.RoomCode) error
	RoomExists(ctx context.Context, code model.RoomCode) (bool, error)
	AppendRoomPlayer(ctx context.Context, code model.RoomCode, player model.RoomPlayer) (*model.Room, error)
	// IncrementRoomAttempts records one attempt for the player. The increment
	// is guarded by the room status inside the write: a room that is no longer
	// playing returns model.ErrRoomFinished and stays unchanged.
	IncrementRoomAttempts(ctx context.Context, code model.RoomCode, userID model.UserID) (*model.Room, error)
	// TransitionRoomStatus atomically advances the room status from `from` to
	// `to`, recording the winner and timestamp. It reports whether this caller
	// won the transition; a false result means the room was not in `from`.
	TransitionRoomStatus(ctx context.Context, code model.RoomCode, from, to model.RoomStatus, winner model.UserID, at time.Time) (bool, error)

	// Achievement operations
	// InsertAchievementIfAbsent records an unlock unless the user already
	// holds the achievement; it reports whether the unlock was newly added.
	InsertAchievementIfAbsent(ctx context.Context, unlock *model.AchievementUnlock) (bool, error)
	// GetUserAchievements returns the user's unlock records, newest first
	GetUserAchievements(ctx context.Context, userID model.UserID) ([]*model.AchievementUnlock, error)
}
