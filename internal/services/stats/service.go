package stats

import (
	"context"
	"fmt"

	"github.com/nmikhailov/guessnum/internal/model"
	"github.com/nmikhailov/guessnum/internal/services/achievement"
	"github.com/nmikhailov/guessnum/internal/storage"
)

// DefaultLeaderboardSize is the leaderboard length when the caller does not ask for one
const DefaultLeaderboardSize = 10

// UserStats is a user's aggregate record with derived figures
type UserStats struct {
	User             *model.User
	WinRate          float64
	AchievementCount int
	// LevelStats holds per-level win aggregates, easiest level first
	LevelStats []storage.LevelStats
}

// AchievementsOverview splits the rule table into what the user has unlocked
// (newest first) and what remains locked (rule-table order)
type AchievementsOverview struct {
	Unlocked []*model.AchievementUnlock
	Locked   []model.Achievement
}

// Service answers read-only queries over users, leaderboards, and achievements
type Service struct {
	storage storage.Storage
}

// NewService creates a new stats Service
func NewService(store storage.Storage) *Service {
	return &Service{storage: store}
}

// GetUserStats returns the user's aggregates and per-level breakdown
func (s *Service) GetUserStats(ctx context.Context, id model.UserID) (*UserStats, error) {
	user, err := s.storage.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	levelStats, err := s.storage.QueryLevelStats(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading level stats: %w", err)
	}

	return &UserStats{
		User:             user,
		WinRate:          user.WinRate(),
		AchievementCount: len(user.Achievements),
		LevelStats:       levelStats,
	}, nil
}

// Leaderboard returns the top users having a best score, ordered by ascending
// best attempts then descending total wins
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]*model.User, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}
	return s.storage.QueryLeaderboard(ctx, limit)
}

// GetAchievements returns the user's unlock history plus the locked remainder
// of the rule table
func (s *Service) GetAchievements(ctx context.Context, id model.UserID) (*AchievementsOverview, error) {
	unlocked, err := s.storage.GetUserAchievements(ctx, id)
	if err != nil {
		return nil, err
	}

	held := make(map[model.AchievementID]bool, len(unlocked))
	for _, u := range unlocked {
		held[u.AchievementID] = true
	}

	var locked []model.Achievement
	for _, rule := range achievement.Rules() {
		if !held[rule.Achievement.ID] {
			locked = append(locked, rule.Achievement)
		}
	}

	return &AchievementsOverview{
		Unlocked: unlocked,
		Locked:   locked,
	}, nil
}
