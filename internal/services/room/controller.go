package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nmikhailov/guessnum/internal/dependencies/clock"
	"github.com/nmikhailov/guessnum/internal/dependencies/random"
	"github.com/nmikhailov/guessnum/internal/model"
	"github.com/nmikhailov/guessnum/internal/registry"
	"github.com/nmikhailov/guessnum/internal/scheduler"
	"github.com/nmikhailov/guessnum/internal/services/achievement"
	"github.com/nmikhailov/guessnum/internal/storage"
	"github.com/nmikhailov/guessnum/internal/transport"
)

const (
	// RoomCodeLength is the length of generated room codes
	RoomCodeLength = 6
	// RoomCodeAlphabet is the characters used in room codes (avoid confusing chars)
	RoomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// Controller manages the multiplayer room lifecycle. All roster members guess
// against one shared secret under one shared deadline; the playing->finished
// status transition is the single authority on who won.
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

// NewController creates a new room Controller
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

// timerKey is the scheduler key for a room's deadline
func timerKey(code model.RoomCode) string {
	return "room:" + string(code)
}

// Create opens a new room with the host as the only roster member. The host's
// registry entry is replaced, abandoning any solo session they had pending.
func (c *Controller) Create(ctx context.Context, hostID model.UserID, displayName string, level model.Level) (*model.Room, error) {
	if !level.Valid() {
		return nil, model.ErrInvalidLevel
	}

	now := c.clock.Now()
	if _, err := c.storage.UpsertUser(ctx, hostID, displayName, now); err != nil {
		return nil, fmt.Errorf("upserting user: %w", err)
	}

	// Generate unique room code
	var code model.RoomCode
	for {
		code = model.RoomCode(c.random.String(RoomCodeLength, RoomCodeAlphabet))
		exists, err := c.storage.RoomExists(ctx, code)
		if err != nil {
			return nil, err
		}
		if !exists {
			break
		}
	}

	room := &model.Room{
		Code:      code,
		HostID:    hostID,
		Level:     level,
		MaxNumber: level.MaxNumber(),
		Secret:    c.random.Secret(level.MaxNumber()),
		Players: []model.RoomPlayer{
			{
				UserID:      hostID,
				DisplayName: displayName,
				Active:      true,
				JoinedAt:    now,
			},
		},
		Status:    model.RoomStatusWaiting,
		CreatedAt: now,
	}
	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("saving room: %w", err)
	}

	c.register(hostID, room)

	c.logger.Info("room created",
		slog.String("code", string(code)),
		slog.String("host_id", string(hostID)),
		slog.String("level", string(level)),
	)

	return room, nil
}

// GetRoom retrieves a room by code
func (c *Controller) GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	return c.storage.GetRoom(ctx, code)
}

// Join adds the player to a waiting room and notifies the host. Rooms that
// have already started are indistinguishable from unknown codes to keep
// late joiners from probing in-progress secrets.
func (c *Controller) Join(ctx context.Context, code model.RoomCode, userID model.UserID, displayName string) (*model.Room, error) {
	now := c.clock.Now()
	if _, err := c.storage.UpsertUser(ctx, userID, displayName, now); err != nil {
		return nil, fmt.Errorf("upserting user: %w", err)
	}

	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	if room.Status != model.RoomStatusWaiting {
		return nil, model.ErrRoomNotFound
	}

	updated, err := c.storage.AppendRoomPlayer(ctx, code, model.RoomPlayer{
		UserID:      userID,
		DisplayName: displayName,
		Active:      true,
		JoinedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	// Joining replaces whatever the player was registered for before
	c.register(userID, updated)

	c.notifier.Notify(ctx, []model.Notification{{
		Recipient: updated.HostID,
		Text:      fmt.Sprintf("%s joined your room! Players: %d", displayName, len(updated.Players)),
	}})

	c.logger.Info("player joined room",
		slog.String("code", string(code)),
		slog.String("user_id", string(userID)),
	)

	return updated, nil
}

// Start begins play. Only the host may start, only from waiting, and the
// transition is a compare-and-set so concurrent start requests admit one.
func (c *Controller) Start(ctx context.Context, code model.RoomCode, requesterID model.UserID) (*model.Room, error) {
	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	if room.HostID != requesterID {
		return nil, model.ErrNotHost
	}

	won, err := c.storage.TransitionRoomStatus(ctx, code, model.RoomStatusWaiting, model.RoomStatusPlaying, "", c.clock.Now())
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, model.ErrInvalidRoomState
	}

	started, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	c.scheduler.Arm(timerKey(code), model.RoomDeadline, func() {
		c.Expire(context.Background(), code)
	})

	notes := make([]model.Notification, 0, len(started.Players))
	text := fmt.Sprintf(
		"Game started! Level: %s, range 1-%d, players: %d. You have %d seconds to guess!",
		started.Level.DisplayName(), started.MaxNumber, len(started.Players), int(model.RoomDeadline.Seconds()),
	)
	for _, p := range started.Players {
		notes = append(notes, model.Notification{Recipient: p.UserID, Text: text})
	}
	c.notifier.Notify(ctx, notes)

	c.logger.Info("room started",
		slog.String("code", string(code)),
		slog.Int("players", len(started.Players)),
	)

	return started, nil
}

// Cancel dismisses a waiting room. Only the host may cancel; started rooms
// run to finalization instead.
func (c *Controller) Cancel(ctx context.Context, code model.RoomCode, requesterID model.UserID) error {
	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return err
	}
	if room.HostID != requesterID {
		return model.ErrNotHost
	}
	if room.Status != model.RoomStatusWaiting {
		return model.ErrInvalidRoomState
	}

	if err := c.storage.DeleteRoom(ctx, code); err != nil {
		return err
	}
	c.registry.DeleteRoom(code)

	var notes []model.Notification
	for _, p := range room.Players {
		if p.UserID == requesterID {
			continue
		}
		notes = append(notes, model.Notification{
			Recipient: p.UserID,
			Text:      fmt.Sprintf("Room %s was cancelled by the host.", code),
		})
	}
	if len(notes) > 0 {
		c.notifier.Notify(ctx, notes)
	}

	c.logger.Info("room cancelled", slog.String("code", string(code)))
	return nil
}

// Guess records one attempt against the room's shared secret. Guesses outside
// the playing state are dropped without recording. On an exact match the
// caller races for the playing->finished transition; only the transition
// winner finalizes, everyone else is treated as late.
func (c *Controller) Guess(ctx context.Context, code model.RoomCode, userID model.UserID, value int) (*model.GuessResult, error) {
	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		if errors.Is(err, model.ErrRoomNotFound) {
			// The room is gone but the registry still points at it
			c.registry.Delete(userID)
			return nil, model.ErrNoActiveSession
		}
		return nil, err
	}
	if room.Status != model.RoomStatusPlaying {
		return &model.GuessResult{Multiplayer: true, Dropped: true}, nil
	}

	if value < 1 || value > room.MaxNumber {
		return nil, model.ErrOutOfRange
	}

	updated, err := c.storage.IncrementRoomAttempts(ctx, code, userID)
	if err != nil {
		if errors.Is(err, model.ErrRoomFinished) {
			// Finalization got between our status read and the write
			return &model.GuessResult{Multiplayer: true, Dropped: true}, nil
		}
		return nil, fmt.Errorf("recording attempt: %w", err)
	}
	player := updated.GetPlayer(userID)
	if player == nil {
		return nil, model.ErrNoActiveSession
	}

	verdict := model.CompareGuess(value, updated.Secret)
	if verdict != model.VerdictCorrect {
		return &model.GuessResult{
			Multiplayer: true,
			Verdict:     verdict,
			Attempts:    player.Attempts,
		}, nil
	}

	sealed, err := c.storage.TransitionRoomStatus(ctx, code, model.RoomStatusPlaying, model.RoomStatusFinished, userID, c.clock.Now())
	if err != nil {
		return nil, err
	}
	if !sealed {
		// Another player finalized first; this correct guess is late
		return &model.GuessResult{Multiplayer: true, Dropped: true}, nil
	}

	c.scheduler.Cancel(timerKey(code))

	final, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	unlocked := c.finalizeWin(ctx, final, userID, player.Attempts)

	return &model.GuessResult{
		Multiplayer: true,
		Verdict:     model.VerdictCorrect,
		Attempts:    player.Attempts,
		Won:         true,
		Secret:      final.Secret,
		Duration:    final.Duration(),
		Unlocked:    unlocked,
	}, nil
}

// Expire handles the room deadline firing. The compare-and-set makes it a
// no-op when a winning guess finalized the room first.
func (c *Controller) Expire(ctx context.Context, code model.RoomCode) {
	sealed, err := c.storage.TransitionRoomStatus(ctx, code, model.RoomStatusPlaying, model.RoomStatusFinished, "", c.clock.Now())
	if err != nil {
		if !errors.Is(err, model.ErrRoomNotFound) {
			c.logger.Error("finalizing expired room",
				slog.String("code", string(code)),
				slog.String("error", err.Error()),
			)
		}
		return
	}
	if !sealed {
		return
	}

	final, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		c.logger.Error("loading expired room",
			slog.String("code", string(code)),
			slog.String("error", err.Error()),
		)
		return
	}

	for _, p := range final.Players {
		if _, err := c.storage.IncrementUserCounters(ctx, p.UserID, storage.CounterDelta{Games: 1}); err != nil {
			c.logger.Error("updating player counters on room expiry",
				slog.String("code", string(code)),
				slog.String("user_id", string(p.UserID)),
				slog.String("error", err.Error()),
			)
		}
	}

	c.registry.DeleteRoom(code)

	closest := final.ClosestPlayer()
	text := fmt.Sprintf("Time's up! The number was %d.", final.Secret)
	if closest != nil {
		text = fmt.Sprintf("Time's up! The number was %d. Closest player: %s (%d attempts)",
			final.Secret, closest.DisplayName, closest.Attempts)
	}
	notes := make([]model.Notification, 0, len(final.Players))
	for _, p := range final.Players {
		notes = append(notes, model.Notification{Recipient: p.UserID, Text: text})
	}
	c.notifier.Notify(ctx, notes)

	c.logger.Info("room expired",
		slog.String("code", string(code)),
		slog.Int("players", len(final.Players)),
	)
}

// finalizeWin applies aggregates, achievements, registry cleanup, and
// notifications after the caller won the finished transition
func (c *Controller) finalizeWin(ctx context.Context, final *model.Room, winnerID model.UserID, attempts int) []model.Achievement {
	for _, p := range final.Players {
		delta := storage.CounterDelta{Games: 1}
		if p.UserID == winnerID {
			delta.Wins = 1
			delta.WinAttempts = attempts
		}
		if _, err := c.storage.IncrementUserCounters(ctx, p.UserID, delta); err != nil {
			c.logger.Error("updating player counters on room win",
				slog.String("code", string(final.Code)),
				slog.String("user_id", string(p.UserID)),
				slog.String("error", err.Error()),
			)
		}
	}

	c.registry.DeleteRoom(final.Code)

	unlocked, err := c.evaluator.Evaluate(ctx, achievement.Facts{
		UserID:      winnerID,
		Level:       final.Level,
		Attempts:    attempts,
		Won:         true,
		Duration:    final.Duration(),
		Multiplayer: true,
	})
	if err != nil {
		c.logger.Error("evaluating achievements on room win",
			slog.String("code", string(final.Code)),
			slog.String("error", err.Error()),
		)
		unlocked = nil
	}

	winnerName := string(winnerID)
	if p := final.GetPlayer(winnerID); p != nil {
		winnerName = p.DisplayName
	}

	notes := make([]model.Notification, 0, len(final.Players))
	for _, p := range final.Players {
		if p.UserID == winnerID {
			notes = append(notes, model.Notification{
				Recipient: p.UserID,
				Text:      fmt.Sprintf("You won! You guessed %d in %d attempts.", final.Secret, attempts),
			})
			continue
		}
		notes = append(notes, model.Notification{
			Recipient: p.UserID,
			Text:      fmt.Sprintf("Game over! %s won with %d attempts. The number was %d.", winnerName, attempts, final.Secret),
		})
	}
	c.notifier.Notify(ctx, notes)

	c.logger.Info("room won",
		slog.String("code", string(final.Code)),
		slog.String("winner_id", string(winnerID)),
		slog.Int("attempts", attempts),
	)

	return unlocked
}

// register points the user's registry entry at the room
func (c *Controller) register(userID model.UserID, room *model.Room) {
	c.registry.Put(userID, registry.Entry{
		Kind:      registry.KindRoom,
		RoomCode:  room.Code,
		Level:     room.Level,
		Secret:    room.Secret,
		MaxNumber: room.MaxNumber,
	})
}
