package coordinator

import (
	"context"
	"log/slog"

	"github.com/nmikhailov/guessnum/internal/model"
	"github.com/nmikhailov/guessnum/internal/registry"
	"github.com/nmikhailov/guessnum/internal/services/room"
	"github.com/nmikhailov/guessnum/internal/services/session"
)

// Coordinator is the single entry point for participant actions. A guess
// carries no session identifier, so the coordinator routes it through the
// registry to whichever engine currently owns the player.
type Coordinator struct {
	registry *registry.Registry
	sessions *session.Controller
	rooms    *room.Controller
	logger   *slog.Logger
}

// New creates a new Coordinator
func New(
	reg *registry.Registry,
	sessions *session.Controller,
	rooms *room.Controller,
	logger *slog.Logger,
) *Coordinator {
	return &Coordinator{
		registry: reg,
		sessions: sessions,
		rooms:    rooms,
		logger:   logger,
	}
}

// StartSolo begins a solo session for the player
func (c *Coordinator) StartSolo(ctx context.Context, userID model.UserID, displayName string, level model.Level) (*model.Game, error) {
	return c.sessions.Start(ctx, userID, displayName, level)
}

// SubmitGuess routes the player's guess to their active session or room
func (c *Coordinator) SubmitGuess(ctx context.Context, userID model.UserID, value int) (*model.GuessResult, error) {
	entry, ok := c.registry.Get(userID)
	if !ok {
		return nil, model.ErrNoActiveSession
	}

	switch entry.Kind {
	case registry.KindSolo:
		return c.sessions.Guess(ctx, userID, value)
	case registry.KindRoom:
		return c.rooms.Guess(ctx, entry.RoomCode, userID, value)
	default:
		c.logger.Error("registry entry with unknown kind",
			slog.String("user_id", string(userID)),
			slog.String("kind", string(entry.Kind)),
		)
		c.registry.Delete(userID)
		return nil, model.ErrNoActiveSession
	}
}

// CreateRoom opens a multiplayer room hosted by the player
func (c *Coordinator) CreateRoom(ctx context.Context, userID model.UserID, displayName string, level model.Level) (*model.Room, error) {
	return c.rooms.Create(ctx, userID, displayName, level)
}

// JoinRoom adds the player to a waiting room, replacing any solo session they
// had registered
func (c *Coordinator) JoinRoom(ctx context.Context, code model.RoomCode, userID model.UserID, displayName string) (*model.Room, error) {
	return c.rooms.Join(ctx, code, userID, displayName)
}

// StartRoom begins play in the player's room; only the host may start
func (c *Coordinator) StartRoom(ctx context.Context, code model.RoomCode, userID model.UserID) (*model.Room, error) {
	return c.rooms.Start(ctx, code, userID)
}

// CancelRoom dismisses a waiting room; only the host may cancel
func (c *Coordinator) CancelRoom(ctx context.Context, code model.RoomCode, userID model.UserID) error {
	return c.rooms.Cancel(ctx, code, userID)
}

// ActiveEntry reports what the player is currently registered for
func (c *Coordinator) ActiveEntry(userID model.UserID) (registry.Entry, bool) {
	return c.registry.Get(userID)
}
