package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/nmikhailov/guessnum/internal/dependencies/clock"
	"github.com/nmikhailov/guessnum/internal/dependencies/random"
	"github.com/nmikhailov/guessnum/internal/model"
	"github.com/nmikhailov/guessnum/internal/registry"
	"github.com/nmikhailov/guessnum/internal/scheduler"
	"github.com/nmikhailov/guessnum/internal/services/achievement"
	"github.com/nmikhailov/guessnum/internal/storage"
	"github.com/nmikhailov/guessnum/internal/transport"
)

// Controller runs solo guessing sessions: one active game per user, a
// level-dependent deadline, and exactly-once finalization through the
// storage seal.
type Controller struct {
	storage   storage.Storage
	registry  *registry.Registry
	evaluator *achievement.Evaluator
	scheduler scheduler.Scheduler
	notifier  transport.Notifier
	clock     clock.Clock
	random    random.Random
	logger    *slog.Logger
}

// NewController creates a new session Controller
func NewController(
	store storage.Storage,
	reg *registry.Registry,
	evaluator *achievement.Evaluator,
	sched scheduler.Scheduler,
	notifier transport.Notifier,
	clk clock.Clock,
	rnd random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:   store,
		registry:  reg,
		evaluator: evaluator,
		scheduler: sched,
		notifier:  notifier,
		clock:     clk,
		random:    rnd,
		logger:    logger,
	}
}

// timerKey is the scheduler key for a solo game's deadline
func timerKey(id model.GameID) string {
	return "solo:" + string(id)
}

// Start begins a new solo session for the user at the given level. The secret
// is drawn once here and never recomputed. Returns ErrAlreadyInSession if the
// user already has an active session or room.
func (c *Controller) Start(ctx context.Context, userID model.UserID, displayName string, level model.Level) (*model.Game, error) {
	if !level.Valid() {
		return nil, model.ErrInvalidLevel
	}
	if _, ok := c.registry.Get(userID); ok {
		return nil, model.ErrAlreadyInSession
	}

	now := c.clock.Now()
	if _, err := c.storage.UpsertUser(ctx, userID, displayName, now); err != nil {
		return nil, fmt.Errorf("upserting user: %w", err)
	}

	game := &model.Game{
		ID:        model.GameID(uuid.NewString()),
		OwnerID:   userID,
		Level:     level,
		MaxNumber: level.MaxNumber(),
		Secret:    c.random.Secret(level.MaxNumber()),
		StartedAt: now,
		Outcome:   model.OutcomePending,
	}
	if err := c.storage.SaveGame(ctx, game); err != nil {
		return nil, fmt.Errorf("saving game: %w", err)
	}

	c.registry.Put(userID, registry.Entry{
		Kind:      registry.KindSolo,
		GameID:    game.ID,
		Level:     level,
		Secret:    game.Secret,
		MaxNumber: game.MaxNumber,
	})

	gameID := game.ID
	c.scheduler.Arm(timerKey(gameID), level.Deadline(), func() {
		c.Expire(context.Background(), userID, gameID)
	})

	c.logger.Info("solo session started",
		slog.String("user_id", string(userID)),
		slog.String("game_id", string(game.ID)),
		slog.String("level", string(level)),
	)

	return game, nil
}

// Guess records one attempt against the user's active solo game and returns
// the verdict. A correct guess cancels the deadline and finalizes the game as
// won; losing the race against expiry yields a dropped result, not an error.
func (c *Controller) Guess(ctx context.Context, userID model.UserID, value int) (*model.GuessResult, error) {
	entry, ok := c.registry.Get(userID)
	if !ok || entry.Kind != registry.KindSolo {
		return nil, model.ErrNoActiveSession
	}

	if value < 1 || value > entry.MaxNumber {
		return nil, model.ErrOutOfRange
	}

	verdict := model.CompareGuess(value, entry.Secret)
	game, err := c.storage.AppendGuess(ctx, entry.GameID, model.Guess{
		Value:   value,
		Verdict: verdict,
		At:      c.clock.Now(),
	})
	if err != nil {
		if errors.Is(err, model.ErrGameFinalized) || errors.Is(err, model.ErrGameNotFound) {
			// Expiry got there first; the registry entry is stale
			c.registry.DeleteSolo(userID, entry.GameID)
			return &model.GuessResult{Dropped: true}, nil
		}
		return nil, fmt.Errorf("recording guess: %w", err)
	}

	if verdict != model.VerdictCorrect {
		return &model.GuessResult{
			Verdict:  verdict,
			Attempts: game.Attempts,
		}, nil
	}

	c.scheduler.Cancel(timerKey(entry.GameID))

	sealed, unlocked, err := c.finalize(ctx, game, model.OutcomeWon)
	if err != nil {
		if errors.Is(err, model.ErrGameFinalized) {
			return &model.GuessResult{Dropped: true}, nil
		}
		return nil, err
	}

	return &model.GuessResult{
		Verdict:  model.VerdictCorrect,
		Attempts: sealed.Attempts,
		Won:      true,
		Secret:   sealed.Secret,
		Duration: sealed.Duration(),
		Unlocked: unlocked,
	}, nil
}

// Expire handles the deadline firing for a solo game. It re-reads durable
// state before acting, so a timer that raced a winning guess is a no-op.
func (c *Controller) Expire(ctx context.Context, userID model.UserID, gameID model.GameID) {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		if !errors.Is(err, model.ErrGameNotFound) {
			c.logger.Error("loading game on expiry",
				slog.String("game_id", string(gameID)),
				slog.String("error", err.Error()),
			)
		}
		return
	}
	if game.Finalized() {
		return
	}

	sealed, _, err := c.finalize(ctx, game, model.OutcomeLost)
	if err != nil {
		if !errors.Is(err, model.ErrGameFinalized) {
			c.logger.Error("finalizing expired game",
				slog.String("game_id", string(gameID)),
				slog.String("error", err.Error()),
			)
		}
		return
	}

	c.notifier.Notify(ctx, []model.Notification{{
		Recipient: userID,
		Text:      fmt.Sprintf("Time's up! The number was %d. Better luck next time!", sealed.Secret),
	}})

	c.logger.Info("solo session expired",
		slog.String("user_id", string(userID)),
		slog.String("game_id", string(gameID)),
	)
}

// finalize seals the game with the given outcome, applies user aggregates,
// clears the registry entry, and evaluates achievements. The storage seal is
// the single point of mutual exclusion: on ErrGameFinalized the caller lost
// the race and nothing has been applied by this call.
func (c *Controller) finalize(ctx context.Context, game *model.Game, outcome model.Outcome) (*model.Game, []model.Achievement, error) {
	sealed, err := c.storage.SealGame(ctx, game.ID, outcome, c.clock.Now())
	if err != nil {
		return nil, nil, err
	}

	delta := storage.CounterDelta{Games: 1}
	if outcome == model.OutcomeWon {
		delta.Wins = 1
		delta.WinAttempts = sealed.Attempts
	}
	if _, err := c.storage.IncrementUserCounters(ctx, sealed.OwnerID, delta); err != nil {
		return nil, nil, fmt.Errorf("updating user counters: %w", err)
	}

	c.registry.DeleteSolo(sealed.OwnerID, sealed.ID)

	unlocked, err := c.evaluator.Evaluate(ctx, achievement.Facts{
		UserID:   sealed.OwnerID,
		Level:    sealed.Level,
		Attempts: sealed.Attempts,
		Won:      outcome == model.OutcomeWon,
		Duration: sealed.Duration(),
	})
	if err != nil {
		// The game itself is finalized; surface the failure but do not undo
		c.logger.Error("evaluating achievements",
			slog.String("game_id", string(sealed.ID)),
			slog.String("error", err.Error()),
		)
		unlocked = nil
	}

	return sealed, unlocked, nil
}
