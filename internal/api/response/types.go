package response

import (
	"time"

	"github.com/nmikhailov/guessnum/internal/model"
	"github.com/nmikhailov/guessnum/internal/services/stats"
	"github.com/nmikhailov/guessnum/internal/storage"
)

// Game represents a solo game in API responses. The secret is only included
// once the game is finalized.
type Game struct {
	ID        string    `json:"id"`
	Level     string    `json:"level"`
	MaxNumber int       `json:"max_number"`
	Attempts  int       `json:"attempts"`
	Outcome   string    `json:"outcome"`
	Secret    int       `json:"secret,omitempty"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at,omitzero"`

	// DeadlineSeconds is the session time limit for the level
	DeadlineSeconds int `json:"deadline_seconds"`
}

// GameFromModel converts a model.Game to a response Game
func GameFromModel(g *model.Game) Game {
	resp := Game{
		ID:              string(g.ID),
		Level:           string(g.Level),
		MaxNumber:       g.MaxNumber,
		Attempts:        g.Attempts,
		Outcome:         string(g.Outcome),
		StartedAt:       g.StartedAt,
		EndedAt:         g.EndedAt,
		DeadlineSeconds: int(g.Level.Deadline().Seconds()),
	}
	if g.Finalized() {
		resp.Secret = g.Secret
	}
	return resp
}

// RoomPlayer represents one roster entry
type RoomPlayer struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Attempts    int    `json:"attempts"`
}

// Room represents a room in API responses. The secret is only included once
// the room is finished.
type Room struct {
	Code      string       `json:"code"`
	HostID    string       `json:"host_id"`
	Level     string       `json:"level"`
	MaxNumber int          `json:"max_number"`
	Status    string       `json:"status"`
	Players   []RoomPlayer `json:"players"`
	WinnerID  string       `json:"winner_id,omitempty"`
	Secret    int          `json:"secret,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	StartedAt time.Time    `json:"started_at,omitzero"`
	EndedAt   time.Time    `json:"ended_at,omitzero"`
}

// RoomFromModel converts a model.Room to a response Room
func RoomFromModel(r *model.Room) Room {
	players := make([]RoomPlayer, 0, len(r.Players))
	for _, p := range r.Players {
		players = append(players, RoomPlayer{
			UserID:      string(p.UserID),
			DisplayName: p.DisplayName,
			Attempts:    p.Attempts,
		})
	}

	resp := Room{
		Code:      string(r.Code),
		HostID:    string(r.HostID),
		Level:     string(r.Level),
		MaxNumber: r.MaxNumber,
		Status:    string(r.Status),
		Players:   players,
		WinnerID:  string(r.WinnerID),
		CreatedAt: r.CreatedAt,
		StartedAt: r.StartedAt,
		EndedAt:   r.EndedAt,
	}
	if r.Status == model.RoomStatusFinished {
		resp.Secret = r.Secret
	}
	return resp
}

// Achievement represents achievement display metadata
type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AchievementFromModel converts a model.Achievement
func AchievementFromModel(a model.Achievement) Achievement {
	return Achievement{
		ID:          string(a.ID),
		Name:        a.Name,
		Description: a.Description,
	}
}

// GuessResult represents the outcome of one guess
type GuessResult struct {
	Multiplayer     bool          `json:"multiplayer"`
	Dropped         bool          `json:"dropped,omitempty"`
	Verdict         string        `json:"verdict,omitempty"`
	Attempts        int           `json:"attempts"`
	Won             bool          `json:"won"`
	Secret          int           `json:"secret,omitempty"`
	DurationSeconds float64       `json:"duration_seconds,omitempty"`
	Unlocked        []Achievement `json:"unlocked,omitempty"`
}

// GuessResultFromModel converts a model.GuessResult
func GuessResultFromModel(r *model.GuessResult) GuessResult {
	resp := GuessResult{
		Multiplayer: r.Multiplayer,
		Dropped:     r.Dropped,
		Verdict:     string(r.Verdict),
		Attempts:    r.Attempts,
		Won:         r.Won,
		Secret:      r.Secret,
	}
	if r.Won {
		resp.DurationSeconds = r.Duration.Seconds()
	}
	for _, a := range r.Unlocked {
		resp.Unlocked = append(resp.Unlocked, AchievementFromModel(a))
	}
	return resp
}

// LevelStats represents one level's win aggregates
type LevelStats struct {
	Level        string  `json:"level"`
	Wins         int     `json:"wins"`
	AvgAttempts  float64 `json:"avg_attempts"`
	BestAttempts int     `json:"best_attempts"`
}

// UserStats represents a user's statistics
type UserStats struct {
	UserID           string       `json:"user_id"`
	DisplayName      string       `json:"display_name"`
	TotalGames       int          `json:"total_games"`
	TotalWins        int          `json:"total_wins"`
	WinRate          float64      `json:"win_rate"`
	BestAttempts     int          `json:"best_attempts,omitempty"`
	AchievementCount int          `json:"achievement_count"`
	Levels           []LevelStats `json:"levels,omitempty"`
}

// UserStatsFromService converts a stats.UserStats
func UserStatsFromService(s *stats.UserStats) UserStats {
	resp := UserStats{
		UserID:           string(s.User.ID),
		DisplayName:      s.User.DisplayName,
		TotalGames:       s.User.TotalGames,
		TotalWins:        s.User.TotalWins,
		WinRate:          s.WinRate,
		BestAttempts:     s.User.BestAttempts,
		AchievementCount: s.AchievementCount,
	}
	for _, ls := range s.LevelStats {
		resp.Levels = append(resp.Levels, levelStatsFromStorage(ls))
	}
	return resp
}

func levelStatsFromStorage(ls storage.LevelStats) LevelStats {
	return LevelStats{
		Level:        string(ls.Level),
		Wins:         ls.Wins,
		AvgAttempts:  ls.AvgAttempts,
		BestAttempts: ls.BestAttempts,
	}
}

// LeaderboardEntry represents one leaderboard row
type LeaderboardEntry struct {
	Rank         int    `json:"rank"`
	UserID       string `json:"user_id"`
	DisplayName  string `json:"display_name"`
	BestAttempts int    `json:"best_attempts"`
	TotalWins    int    `json:"total_wins"`
}

// LeaderboardFromModel converts a ranked user list
func LeaderboardFromModel(users []*model.User) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(users))
	for i, u := range users {
		entries = append(entries, LeaderboardEntry{
			Rank:         i + 1,
			UserID:       string(u.ID),
			DisplayName:  u.DisplayName,
			BestAttempts: u.BestAttempts,
			TotalWins:    u.TotalWins,
		})
	}
	return entries
}

// AchievementUnlock represents one unlock record
type AchievementUnlock struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	UnlockedAt  time.Time `json:"unlocked_at"`
}

// AchievementsOverview represents a user's unlocked and locked achievements
type AchievementsOverview struct {
	Unlocked []AchievementUnlock `json:"unlocked"`
	Locked   []Achievement       `json:"locked"`
}

// AchievementsFromService converts a stats.AchievementsOverview
func AchievementsFromService(o *stats.AchievementsOverview) AchievementsOverview {
	resp := AchievementsOverview{
		Unlocked: make([]AchievementUnlock, 0, len(o.Unlocked)),
		Locked:   make([]Achievement, 0, len(o.Locked)),
	}
	for _, u := range o.Unlocked {
		resp.Unlocked = append(resp.Unlocked, AchievementUnlock{
			ID:          string(u.AchievementID),
			Name:        u.Name,
			Description: u.Description,
			UnlockedAt:  u.UnlockedAt,
		})
	}
	for _, a := range o.Locked {
		resp.Locked = append(resp.Locked, AchievementFromModel(a))
	}
	return resp
}
