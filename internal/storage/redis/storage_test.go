package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/nmikhailov/guessnum/internal/model"
	"github.com/nmikhailov/guessnum/internal/storage"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
	now     time.Time
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{Addr: s.mini.Addr()})
	s.storage = NewWithClient(client, DefaultConfig())
	s.ctx = context.Background()
	s.now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func (s *StorageSuite) TearDownTest() {
	s.storage.Close()
	s.mini.Close()
}

func (s *StorageSuite) saveGame(id model.GameID, owner model.UserID, level model.Level, attempts int) *model.Game {
	game := &model.Game{
		ID:        id,
		OwnerID:   owner,
		Level:     level,
		MaxNumber: level.MaxNumber(),
		Secret:    4,
		Attempts:  attempts,
		StartedAt: s.now,
		Outcome:   model.OutcomePending,
	}
	s.Require().NoError(s.storage.SaveGame(s.ctx, game))
	return game
}

// User operations

func (s *StorageSuite) TestUpsertUserRoundTrip() {
	_, err := s.storage.UpsertUser(s.ctx, "u1", "Alice", s.now)
	s.Require().NoError(err)

	user, err := s.storage.GetUser(s.ctx, "u1")
	s.Require().NoError(err)
	s.Equal(model.UserID("u1"), user.ID)
	s.Equal("Alice", user.DisplayName)
	s.True(user.CreatedAt.Equal(s.now))
}

func (s *StorageSuite) TestUpsertUserPreservesCreationAndName() {
	_, err := s.storage.UpsertUser(s.ctx, "u1", "Alice", s.now)
	s.Require().NoError(err)

	later := s.now.Add(time.Hour)
	user, err := s.storage.UpsertUser(s.ctx, "u1", "", later)
	s.Require().NoError(err)
	s.Equal("Alice", user.DisplayName)
	s.True(user.CreatedAt.Equal(s.now))
	s.True(user.LastActiveAt.Equal(later))
}

func (s *StorageSuite) TestGetUserNotFound() {
	_, err := s.storage.GetUser(s.ctx, "nope")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *StorageSuite) TestIncrementUserCountersKeepsBestAttempts() {
	_, err := s.storage.UpsertUser(s.ctx, "u1", "Alice", s.now)
	s.Require().NoError(err)

	_, err = s.storage.IncrementUserCounters(s.ctx, "u1", storage.CounterDelta{Games: 1, Wins: 1, WinAttempts: 7})
	s.Require().NoError(err)

	user, err := s.storage.IncrementUserCounters(s.ctx, "u1", storage.CounterDelta{Games: 1, Wins: 1, WinAttempts: 3})
	s.Require().NoError(err)
	s.Equal(3, user.BestAttempts)

	user, err = s.storage.IncrementUserCounters(s.ctx, "u1", storage.CounterDelta{Games: 1, Wins: 1, WinAttempts: 10})
	s.Require().NoError(err)
	s.Equal(3, user.BestAttempts)
	s.Equal(3, user.TotalGames)
	s.Equal(3, user.TotalWins)
}

func (s *StorageSuite) TestIncrementUserCountersUnknownUser() {
	_, err := s.storage.IncrementUserCounters(s.ctx, "nope", storage.CounterDelta{Games: 1})
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *StorageSuite) TestQueryLeaderboard() {
	for _, spec := range []struct {
		id   model.UserID
		wins int
		best int
	}{
		{"no-wins", 0, 0},
		{"slow", 2, 8},
		{"fast", 1, 3},
		{"fast-many-wins", 5, 3},
	} {
		_, err := s.storage.UpsertUser(s.ctx, spec.id, string(spec.id), s.now)
		s.Require().NoError(err)
		if spec.best > 0 {
			_, err = s.storage.IncrementUserCounters(s.ctx, spec.id, storage.CounterDelta{
				Games: spec.wins, Wins: spec.wins, WinAttempts: spec.best,
			})
			s.Require().NoError(err)
		}
	}

	leaders, err := s.storage.QueryLeaderboard(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(leaders, 3)
	s.Equal(model.UserID("fast-many-wins"), leaders[0].ID)
	s.Equal(model.UserID("fast"), leaders[1].ID)
	s.Equal(model.UserID("slow"), leaders[2].ID)

	leaders, err = s.storage.QueryLeaderboard(s.ctx, 2)
	s.Require().NoError(err)
	s.Len(leaders, 2)
}

// Game operations

func (s *StorageSuite) TestGameRoundTrip() {
	s.saveGame("g1", "u1", model.LevelEasy, 0)

	game, err := s.storage.GetGame(s.ctx, "g1")
	s.Require().NoError(err)
	s.Equal(model.GameID("g1"), game.ID)
	s.Equal(4, game.Secret)
	s.False(game.Finalized())
}

func (s *StorageSuite) TestGetGameNotFound() {
	_, err := s.storage.GetGame(s.ctx, "nope")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *StorageSuite) TestAppendGuess() {
	s.saveGame("g1", "u1", model.LevelEasy, 0)

	game, err := s.storage.AppendGuess(s.ctx, "g1", model.Guess{Value: 8, Verdict: model.VerdictLower, At: s.now})
	s.Require().NoError(err)
	s.Equal(1, game.Attempts)
	s.Require().Len(game.Guesses, 1)
	s.Equal(8, game.Guesses[0].Value)
}

func (s *StorageSuite) TestAppendGuessOnSealedGame() {
	s.saveGame("g1", "u1", model.LevelEasy, 0)
	_, err := s.storage.SealGame(s.ctx, "g1", model.OutcomeLost, s.now)
	s.Require().NoError(err)

	_, err = s.storage.AppendGuess(s.ctx, "g1", model.Guess{Value: 8})
	s.ErrorIs(err, model.ErrGameFinalized)
}

func (s *StorageSuite) TestSealGameSealsExactlyOnce() {
	s.saveGame("g1", "u1", model.LevelEasy, 3)

	sealed, err := s.storage.SealGame(s.ctx, "g1", model.OutcomeWon, s.now.Add(time.Minute))
	s.Require().NoError(err)
	s.Equal(model.OutcomeWon, sealed.Outcome)

	_, err = s.storage.SealGame(s.ctx, "g1", model.OutcomeLost, s.now.Add(2*time.Minute))
	s.ErrorIs(err, model.ErrGameFinalized)

	game, err := s.storage.GetGame(s.ctx, "g1")
	s.Require().NoError(err)
	s.Equal(model.OutcomeWon, game.Outcome)
}

func (s *StorageSuite) TestSealGameUpdatesLevelStatsOnWin() {
	s.saveGame("g1", "u1", model.LevelEasy, 2)
	_, err := s.storage.SealGame(s.ctx, "g1", model.OutcomeWon, s.now)
	s.Require().NoError(err)

	s.saveGame("g2", "u1", model.LevelEasy, 6)
	_, err = s.storage.SealGame(s.ctx, "g2", model.OutcomeWon, s.now)
	s.Require().NoError(err)

	s.saveGame("g3", "u1", model.LevelEasy, 1)
	_, err = s.storage.SealGame(s.ctx, "g3", model.OutcomeLost, s.now)
	s.Require().NoError(err)

	stats, err := s.storage.QueryLevelStats(s.ctx, "u1")
	s.Require().NoError(err)
	s.Require().Len(stats, 1)
	s.Equal(model.LevelEasy, stats[0].Level)
	s.Equal(2, stats[0].Wins)
	s.InDelta(4.0, stats[0].AvgAttempts, 1e-9)
	s.Equal(2, stats[0].BestAttempts)
}

func (s *StorageSuite) TestQueryRecentGamesNewestFirst() {
	for i := 1; i <= 3; i++ {
		id := model.GameID(fmt.Sprintf("g%d", i))
		s.saveGame(id, "u1", model.LevelEasy, i)
		_, err := s.storage.SealGame(s.ctx, id, model.OutcomeWon, s.now.Add(time.Duration(i)*time.Minute))
		s.Require().NoError(err)
	}

	games, err := s.storage.QueryRecentGames(s.ctx, "u1", 2)
	s.Require().NoError(err)
	s.Require().Len(games, 2)
	s.Equal(model.GameID("g3"), games[0].ID)
	s.Equal(model.GameID("g2"), games[1].ID)
}

func (s *StorageSuite) TestRecentGamesIndexIsCapped() {
	cfg := DefaultConfig()
	cfg.RecentGamesKept = 2
	s.storage = NewWithClient(redis.NewClient(&redis.Options{Addr: s.mini.Addr()}), cfg)

	for i := 1; i <= 5; i++ {
		id := model.GameID(fmt.Sprintf("g%d", i))
		s.saveGame(id, "u1", model.LevelEasy, i)
		_, err := s.storage.SealGame(s.ctx, id, model.OutcomeWon, s.now)
		s.Require().NoError(err)
	}

	games, err := s.storage.QueryRecentGames(s.ctx, "u1", 0)
	s.Require().NoError(err)
	s.Require().Len(games, 2)
	s.Equal(model.GameID("g5"), games[0].ID)
	s.Equal(model.GameID("g4"), games[1].ID)
}

func (s *StorageSuite) TestCountWonGames() {
	count, err := s.storage.CountWonGames(s.ctx, "u1", model.LevelHard)
	s.Require().NoError(err)
	s.Zero(count)

	for i := 1; i <= 3; i++ {
		id := model.GameID(fmt.Sprintf("h%d", i))
		s.saveGame(id, "u1", model.LevelHard, i)
		_, err := s.storage.SealGame(s.ctx, id, model.OutcomeWon, s.now)
		s.Require().NoError(err)
	}
	s.saveGame("e1", "u1", model.LevelEasy, 1)
	_, err = s.storage.SealGame(s.ctx, "e1", model.OutcomeWon, s.now)
	s.Require().NoError(err)

	count, err = s.storage.CountWonGames(s.ctx, "u1", model.LevelHard)
	s.Require().NoError(err)
	s.Equal(3, count)
}

// Room operations

func (s *StorageSuite) saveRoom(code model.RoomCode, status model.RoomStatus, players ...model.UserID) *model.Room {
	room := &model.Room{
		Code:      code,
		HostID:    players[0],
		Level:     model.LevelMedium,
		MaxNumber: 50,
		Secret:    25,
		Status:    status,
		CreatedAt: s.now,
	}
	for _, p := range players {
		room.Players = append(room.Players, model.RoomPlayer{UserID: p, DisplayName: string(p), Active: true, JoinedAt: s.now})
	}
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))
	return room
}

func (s *StorageSuite) TestRoomRoundTrip() {
	s.saveRoom("ABC123", model.RoomStatusWaiting, "host")

	exists, err := s.storage.RoomExists(s.ctx, "ABC123")
	s.Require().NoError(err)
	s.True(exists)

	room, err := s.storage.GetRoom(s.ctx, "ABC123")
	s.Require().NoError(err)
	s.Equal(model.UserID("host"), room.HostID)
	s.Len(room.Players, 1)

	s.Require().NoError(s.storage.DeleteRoom(s.ctx, "ABC123"))
	_, err = s.storage.GetRoom(s.ctx, "ABC123")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestRoomHasTTL() {
	s.saveRoom("ABC123", model.RoomStatusWaiting, "host")
	ttl := s.mini.TTL(roomKey("ABC123"))
	s.Equal(DefaultConfig().RoomTTL, ttl)
}

func (s *StorageSuite) TestAppendRoomPlayer() {
	s.saveRoom("ABC123", model.RoomStatusWaiting, "host")

	room, err := s.storage.AppendRoomPlayer(s.ctx, "ABC123", model.RoomPlayer{UserID: "p2", DisplayName: "Bob", Active: true})
	s.Require().NoError(err)
	s.Len(room.Players, 2)

	_, err = s.storage.AppendRoomPlayer(s.ctx, "ABC123", model.RoomPlayer{UserID: "p2"})
	s.ErrorIs(err, model.ErrAlreadyInRoom)
}

func (s *StorageSuite) TestIncrementRoomAttempts() {
	s.saveRoom("ABC123", model.RoomStatusPlaying, "host", "p2")

	room, err := s.storage.IncrementRoomAttempts(s.ctx, "ABC123", "p2")
	s.Require().NoError(err)
	s.Equal(1, room.GetPlayer("p2").Attempts)
	s.Zero(room.GetPlayer("host").Attempts)
}

func (s *StorageSuite) TestIncrementRoomAttemptsRejectsSealedRoom() {
	s.saveRoom("ABC123", model.RoomStatusPlaying, "host", "p2")

	won, err := s.storage.TransitionRoomStatus(s.ctx, "ABC123", model.RoomStatusPlaying, model.RoomStatusFinished, "host", s.now)
	s.Require().NoError(err)
	s.Require().True(won)

	_, err = s.storage.IncrementRoomAttempts(s.ctx, "ABC123", "p2")
	s.ErrorIs(err, model.ErrRoomFinished)

	// The sealed record stays untouched
	room, err := s.storage.GetRoom(s.ctx, "ABC123")
	s.Require().NoError(err)
	s.Zero(room.GetPlayer("p2").Attempts)
}

func (s *StorageSuite) TestTransitionRoomStatusCompareAndSet() {
	s.saveRoom("ABC123", model.RoomStatusPlaying, "host", "p2")

	end := s.now.Add(time.Minute)
	won, err := s.storage.TransitionRoomStatus(s.ctx, "ABC123", model.RoomStatusPlaying, model.RoomStatusFinished, "host", end)
	s.Require().NoError(err)
	s.True(won)

	won, err = s.storage.TransitionRoomStatus(s.ctx, "ABC123", model.RoomStatusPlaying, model.RoomStatusFinished, "p2", end.Add(time.Second))
	s.Require().NoError(err)
	s.False(won)

	room, err := s.storage.GetRoom(s.ctx, "ABC123")
	s.Require().NoError(err)
	s.Equal(model.RoomStatusFinished, room.Status)
	s.Equal(model.UserID("host"), room.WinnerID)
	s.True(room.EndedAt.Equal(end))
}

func (s *StorageSuite) TestTransitionRoomStatusSetsStartedAt() {
	s.saveRoom("ABC123", model.RoomStatusWaiting, "host")

	won, err := s.storage.TransitionRoomStatus(s.ctx, "ABC123", model.RoomStatusWaiting, model.RoomStatusPlaying, "", s.now)
	s.Require().NoError(err)
	s.True(won)

	room, err := s.storage.GetRoom(s.ctx, "ABC123")
	s.Require().NoError(err)
	s.Equal(model.RoomStatusPlaying, room.Status)
	s.True(room.StartedAt.Equal(s.now))
}

func (s *StorageSuite) TestTransitionRoomStatusUnknownRoom() {
	_, err := s.storage.TransitionRoomStatus(s.ctx, "NOPE42", model.RoomStatusPlaying, model.RoomStatusFinished, "", s.now)
	s.ErrorIs(err, model.ErrRoomNotFound)
}

// Achievement operations

func (s *StorageSuite) TestInsertAchievementIfAbsent() {
	_, err := s.storage.UpsertUser(s.ctx, "u1", "Alice", s.now)
	s.Require().NoError(err)

	unlock := &model.AchievementUnlock{
		UserID:        "u1",
		AchievementID: model.AchievementFirstWin,
		Name:          "First Victory",
		Description:   "Win your first game",
		UnlockedAt:    s.now,
	}

	added, err := s.storage.InsertAchievementIfAbsent(s.ctx, unlock)
	s.Require().NoError(err)
	s.True(added)

	added, err = s.storage.InsertAchievementIfAbsent(s.ctx, unlock)
	s.Require().NoError(err)
	s.False(added)

	user, err := s.storage.GetUser(s.ctx, "u1")
	s.Require().NoError(err)
	s.Equal([]model.AchievementID{model.AchievementFirstWin}, user.Achievements)
}

func (s *StorageSuite) TestGetUserAchievementsNewestFirst() {
	for i, id := range []model.AchievementID{model.AchievementFirstWin, model.AchievementLuckyNumber} {
		_, err := s.storage.InsertAchievementIfAbsent(s.ctx, &model.AchievementUnlock{
			UserID:        "u1",
			AchievementID: id,
			UnlockedAt:    s.now.Add(time.Duration(i) * time.Minute),
		})
		s.Require().NoError(err)
	}

	unlocks, err := s.storage.GetUserAchievements(s.ctx, "u1")
	s.Require().NoError(err)
	s.Require().Len(unlocks, 2)
	s.Equal(model.AchievementLuckyNumber, unlocks[0].AchievementID)
	s.Equal(model.AchievementFirstWin, unlocks[1].AchievementID)
}
