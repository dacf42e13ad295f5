package stats

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/nmikhailov/guessnum/internal/model"
	"github.com/nmikhailov/guessnum/internal/services/achievement"
	"github.com/nmikhailov/guessnum/internal/storage"
	"github.com/nmikhailov/guessnum/internal/storage/memory"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	service *Service
	ctx     context.Context
	now     time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.service = NewService(s.storage)
	s.ctx = context.Background()
	s.now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func (s *ServiceSuite) addUser(id model.UserID, games, wins, best int) {
	_, err := s.storage.UpsertUser(s.ctx, id, string(id), s.now)
	s.Require().NoError(err)
	if games > 0 {
		_, err = s.storage.IncrementUserCounters(s.ctx, id, storage.CounterDelta{
			Games: games, Wins: wins, WinAttempts: best,
		})
		s.Require().NoError(err)
	}
}

func (s *ServiceSuite) TestGetUserStats() {
	s.addUser("u1", 4, 1, 3)

	game := &model.Game{
		ID:        "g1",
		OwnerID:   "u1",
		Level:     model.LevelEasy,
		MaxNumber: 10,
		Secret:    4,
		Attempts:  3,
		StartedAt: s.now,
		Outcome:   model.OutcomePending,
	}
	s.Require().NoError(s.storage.SaveGame(s.ctx, game))
	_, err := s.storage.SealGame(s.ctx, "g1", model.OutcomeWon, s.now)
	s.Require().NoError(err)

	stats, err := s.service.GetUserStats(s.ctx, "u1")
	s.Require().NoError(err)

	s.Equal(model.UserID("u1"), stats.User.ID)
	s.InDelta(0.25, stats.WinRate, 1e-9)
	s.Zero(stats.AchievementCount)
	s.Require().Len(stats.LevelStats, 1)
	s.Equal(model.LevelEasy, stats.LevelStats[0].Level)
	s.Equal(1, stats.LevelStats[0].Wins)
	s.Equal(3, stats.LevelStats[0].BestAttempts)
}

func (s *ServiceSuite) TestGetUserStatsUnknownUser() {
	_, err := s.service.GetUserStats(s.ctx, "nope")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *ServiceSuite) TestLeaderboardDefaultLimit() {
	for i := 1; i <= DefaultLeaderboardSize+5; i++ {
		s.addUser(model.UserID(fmt.Sprintf("u%d", i)), 1, 1, i)
	}

	leaders, err := s.service.Leaderboard(s.ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(leaders, DefaultLeaderboardSize)
	s.Equal(model.UserID("u1"), leaders[0].ID)
}

func (s *ServiceSuite) TestLeaderboardExplicitLimit() {
	s.addUser("a", 1, 1, 2)
	s.addUser("b", 1, 1, 5)
	s.addUser("c", 1, 1, 1)

	leaders, err := s.service.Leaderboard(s.ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(leaders, 2)
	s.Equal(model.UserID("c"), leaders[0].ID)
	s.Equal(model.UserID("a"), leaders[1].ID)
}

func (s *ServiceSuite) TestGetAchievements() {
	s.addUser("u1", 1, 1, 3)

	first, ok := achievement.Lookup(model.AchievementFirstWin)
	s.Require().True(ok)
	_, err := s.storage.InsertAchievementIfAbsent(s.ctx, &model.AchievementUnlock{
		UserID:        "u1",
		AchievementID: first.ID,
		Name:          first.Name,
		Description:   first.Description,
		UnlockedAt:    s.now,
	})
	s.Require().NoError(err)

	overview, err := s.service.GetAchievements(s.ctx, "u1")
	s.Require().NoError(err)

	s.Require().Len(overview.Unlocked, 1)
	s.Equal(model.AchievementFirstWin, overview.Unlocked[0].AchievementID)

	s.Len(overview.Locked, len(achievement.Rules())-1)
	for _, a := range overview.Locked {
		s.NotEqual(model.AchievementFirstWin, a.ID)
	}
}

func (s *ServiceSuite) TestGetAchievementsForFreshUser() {
	overview, err := s.service.GetAchievements(s.ctx, "fresh")
	s.Require().NoError(err)
	s.Empty(overview.Unlocked)
	s.Len(overview.Locked, len(achievement.Rules()))
}
