package achievement

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nmikhailov/guessnum/internal/dependencies/clock"
	"github.com/nmikhailov/guessnum/internal/model"
	"github.com/nmikhailov/guessnum/internal/storage"
)

// Evaluator runs the rule table against a finalized game and records new
// unlocks. Insertion is conditional in storage, so re-evaluating the same
// facts (retries, races) never produces duplicates.
type Evaluator struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
	rules   []Rule
}

// NewEvaluator creates an Evaluator over the canonical rule table
func NewEvaluator(store storage.Storage, clk clock.Clock, logger *slog.Logger) *Evaluator {
	return &Evaluator{
		storage: store,
		clock:   clk,
		logger:  logger,
		rules:   Rules(),
	}
}

// Evaluate checks every rule against the finalized game and returns the
// achievements newly unlocked by it, in rule-table order. The caller must have
// already applied the game to the user's aggregates.
func (e *Evaluator) Evaluate(ctx context.Context, facts Facts) ([]model.Achievement, error) {
	user, err := e.storage.GetUser(ctx, facts.UserID)
	if err != nil {
		return nil, fmt.Errorf("loading user for achievement evaluation: %w", err)
	}

	recent, err := e.storage.QueryRecentGames(ctx, facts.UserID, StreakLength)
	if err != nil {
		return nil, fmt.Errorf("loading recent games for achievement evaluation: %w", err)
	}

	hardWins, err := e.storage.CountWonGames(ctx, facts.UserID, model.LevelHard)
	if err != nil {
		return nil, fmt.Errorf("counting hard wins for achievement evaluation: %w", err)
	}

	in := Input{
		Facts:       facts,
		User:        user,
		RecentGames: recent,
		HardWins:    hardWins,
	}

	var unlocked []model.Achievement
	for _, rule := range e.rules {
		if !rule.Applies(in) {
			continue
		}

		added, err := e.storage.InsertAchievementIfAbsent(ctx, &model.AchievementUnlock{
			UserID:        facts.UserID,
			AchievementID: rule.Achievement.ID,
			Name:          rule.Achievement.Name,
			Description:   rule.Achievement.Description,
			UnlockedAt:    e.clock.Now(),
		})
		if err != nil {
			return nil, fmt.Errorf("recording achievement %s: %w", rule.Achievement.ID, err)
		}
		if !added {
			continue
		}

		e.logger.Info("achievement unlocked",
			slog.String("user_id", string(facts.UserID)),
			slog.String("achievement", string(rule.Achievement.ID)),
		)
		unlocked = append(unlocked, rule.Achievement)
	}

	return unlocked, nil
}
