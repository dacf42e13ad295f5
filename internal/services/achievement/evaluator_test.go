package achievement

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/nmikhailov/guessnum/internal/dependencies/mocks"
	"github.com/nmikhailov/guessnum/internal/model"
	"github.com/nmikhailov/guessnum/internal/storage"
	"github.com/nmikhailov/guessnum/internal/storage/memory"
	"github.com/nmikhailov/guessnum/internal/testutil"
)

type EvaluatorSuite struct {
	suite.Suite
	storage   *memory.Storage
	clock     *mocks.MockClock
	evaluator *Evaluator
	ctx       context.Context
}

func TestEvaluatorSuite(t *testing.T) {
	suite.Run(t, new(EvaluatorSuite))
}

func (s *EvaluatorSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.evaluator = NewEvaluator(s.storage, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

// recordWin persists a won game and folds it into the user's aggregates, the
// state the evaluator expects when it runs
func (s *EvaluatorSuite) recordWin(gameID model.GameID, userID model.UserID, level model.Level, attempts int) {
	game := &model.Game{
		ID:        gameID,
		OwnerID:   userID,
		Level:     level,
		MaxNumber: level.MaxNumber(),
		Secret:    1,
		Attempts:  attempts,
		StartedAt: s.clock.Now(),
		Outcome:   model.OutcomePending,
	}
	s.Require().NoError(s.storage.SaveGame(s.ctx, game))
	_, err := s.storage.SealGame(s.ctx, gameID, model.OutcomeWon, s.clock.Now())
	s.Require().NoError(err)
	_, err = s.storage.IncrementUserCounters(s.ctx, userID, storage.CounterDelta{Games: 1, Wins: 1, WinAttempts: attempts})
	s.Require().NoError(err)
}

func (s *EvaluatorSuite) ids(achievements []model.Achievement) []model.AchievementID {
	ids := make([]model.AchievementID, len(achievements))
	for i, a := range achievements {
		ids[i] = a.ID
	}
	return ids
}

func (s *EvaluatorSuite) TestFirstWinUnlocks() {
	_, err := s.storage.UpsertUser(s.ctx, "u1", "Alice", s.clock.Now())
	s.Require().NoError(err)
	s.recordWin("g1", "u1", model.LevelEasy, 3)

	unlocked, err := s.evaluator.Evaluate(s.ctx, Facts{
		UserID:   "u1",
		Level:    model.LevelEasy,
		Attempts: 3,
		Won:      true,
		Duration: 45 * time.Second,
	})
	s.Require().NoError(err)
	s.Equal([]model.AchievementID{model.AchievementFirstWin}, s.ids(unlocked))

	unlock, err := s.storage.GetUserAchievements(s.ctx, "u1")
	s.Require().NoError(err)
	s.Require().Len(unlock, 1)
	s.Equal("First Victory", unlock[0].Name)
	s.Equal(s.clock.Now(), unlock[0].UnlockedAt)
}

func (s *EvaluatorSuite) TestReEvaluationUnlocksNothingNew() {
	_, err := s.storage.UpsertUser(s.ctx, "u1", "Alice", s.clock.Now())
	s.Require().NoError(err)
	s.recordWin("g1", "u1", model.LevelEasy, 3)

	facts := Facts{UserID: "u1", Level: model.LevelEasy, Attempts: 3, Won: true, Duration: 45 * time.Second}

	unlocked, err := s.evaluator.Evaluate(s.ctx, facts)
	s.Require().NoError(err)
	s.Len(unlocked, 1)

	unlocked, err = s.evaluator.Evaluate(s.ctx, facts)
	s.Require().NoError(err)
	s.Empty(unlocked)
}

func (s *EvaluatorSuite) TestMultipleUnlocksInRuleTableOrder() {
	_, err := s.storage.UpsertUser(s.ctx, "u1", "Alice", s.clock.Now())
	s.Require().NoError(err)
	s.recordWin("g1", "u1", model.LevelEasy, 1)

	unlocked, err := s.evaluator.Evaluate(s.ctx, Facts{
		UserID:   "u1",
		Level:    model.LevelEasy,
		Attempts: 1,
		Won:      true,
		Duration: 5 * time.Second,
	})
	s.Require().NoError(err)
	s.Equal([]model.AchievementID{
		model.AchievementFirstWin,
		model.AchievementPerfectEasy,
		model.AchievementSpeedDemon,
		model.AchievementLuckyNumber,
	}, s.ids(unlocked))
}

func (s *EvaluatorSuite) TestWinStreakAfterFiveWins() {
	_, err := s.storage.UpsertUser(s.ctx, "u1", "Alice", s.clock.Now())
	s.Require().NoError(err)

	for i := 1; i <= StreakLength; i++ {
		s.recordWin(model.GameID(fmt.Sprintf("g%d", i)), "u1", model.LevelMedium, 4)
	}

	unlocked, err := s.evaluator.Evaluate(s.ctx, Facts{
		UserID:   "u1",
		Level:    model.LevelMedium,
		Attempts: 4,
		Won:      true,
		Duration: time.Minute,
	})
	s.Require().NoError(err)
	s.Contains(s.ids(unlocked), model.AchievementWinStreak5)
}

func (s *EvaluatorSuite) TestHardMasterCountsOnlyHardWins() {
	_, err := s.storage.UpsertUser(s.ctx, "u1", "Alice", s.clock.Now())
	s.Require().NoError(err)

	for i := 1; i <= HardWinsRequired; i++ {
		s.recordWin(model.GameID(fmt.Sprintf("h%d", i)), "u1", model.LevelHard, 6)
	}

	unlocked, err := s.evaluator.Evaluate(s.ctx, Facts{
		UserID:   "u1",
		Level:    model.LevelHard,
		Attempts: 6,
		Won:      true,
		Duration: time.Minute,
	})
	s.Require().NoError(err)
	s.Contains(s.ids(unlocked), model.AchievementHardMaster)
}

func (s *EvaluatorSuite) TestLostGameCanStillUnlockVeteran() {
	_, err := s.storage.UpsertUser(s.ctx, "u1", "Alice", s.clock.Now())
	s.Require().NoError(err)
	_, err = s.storage.IncrementUserCounters(s.ctx, "u1", storage.CounterDelta{Games: VeteranGames})
	s.Require().NoError(err)

	unlocked, err := s.evaluator.Evaluate(s.ctx, Facts{
		UserID:   "u1",
		Level:    model.LevelEasy,
		Attempts: 9,
		Won:      false,
		Duration: time.Minute,
	})
	s.Require().NoError(err)
	s.Equal([]model.AchievementID{model.AchievementVeteran}, s.ids(unlocked))
}

func (s *EvaluatorSuite) TestUnknownUserFails() {
	_, err := s.evaluator.Evaluate(s.ctx, Facts{UserID: "nope", Won: true})
	s.ErrorIs(err, model.ErrUserNotFound)
}
