package model

import "time"

// RoomCode is a short human-typeable identifier for joining rooms
type RoomCode string

// RoomStatus represents the lifecycle phase of a multiplayer room.
// Transitions are one-way: waiting -> playing -> finished.
type RoomStatus string

const (
	RoomStatusWaiting  RoomStatus = "waiting"
	RoomStatusPlaying  RoomStatus = "playing"
	RoomStatusFinished RoomStatus = "finished"
)

// RoomPlayer is one roster entry in a multiplayer room
type RoomPlayer struct {
	UserID      UserID
	DisplayName string
	Attempts    int
	Active      bool
	JoinedAt    time.Time
}

// Room is the durable record of one multiplayer guessing session.
// The secret is fixed at creation and shared by the whole roster.
type Room struct {
	Code   RoomCode
	HostID UserID
	Level  Level

	MaxNumber int
	Secret    int

	// Players in join order; order is significant for timeout tie-breaks
	Players []RoomPlayer

	Status   RoomStatus
	WinnerID UserID // empty when no winner (waiting, playing, or timed out)

	CreatedAt time.Time
	StartedAt time.Time
	EndedAt   time.Time
}

// GetPlayer returns the roster entry for the given user, or nil if absent
func (r *Room) GetPlayer(id UserID) *RoomPlayer {
	for i := range r.Players {
		if r.Players[i].UserID == id {
			return &r.Players[i]
		}
	}
	return nil
}

// ClosestPlayer returns the roster member with the fewest attempts, skipping
// anyone who never guessed. Ties go to the earliest joiner (roster order).
// Nil when nobody guessed.
func (r *Room) ClosestPlayer() *RoomPlayer {
	var closest *RoomPlayer
	for i := range r.Players {
		if r.Players[i].Attempts == 0 {
			continue
		}
		if closest == nil || r.Players[i].Attempts < closest.Attempts {
			closest = &r.Players[i]
		}
	}
	return closest
}

// Duration returns the elapsed play time once the room is finished
func (r *Room) Duration() time.Duration {
	if r.EndedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}
