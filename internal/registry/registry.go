package registry

import (
	"sync"

	"github.com/nmikhailov/guessnum/internal/model"
)

// Kind distinguishes what a registry entry points at
type Kind string

const (
	KindSolo Kind = "solo"
	KindRoom Kind = "room"
)

// Entry maps a participant to their active session or room. The cached secret
// and bound make guess validation cheap; durable state is still re-read at
// every state-changing decision.
type Entry struct {
	Kind Kind

	GameID   model.GameID   // set for solo entries
	RoomCode model.RoomCode // set for room entries

	Level     model.Level
	Secret    int
	MaxNumber int
}

// Registry is the process-lifetime index from participant to active
// session/room. Entries are populated on start/join and cleared on
// finalization; they do not survive a restart.
type Registry struct {
	mu      sync.RWMutex
	entries map[model.UserID]Entry
}

// New creates an empty Registry
func New() *Registry {
	return &Registry{
		entries: make(map[model.UserID]Entry),
	}
}

// Get returns the entry for the user, if any
func (r *Registry) Get(id model.UserID) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	return e, ok
}

// Put registers or replaces the user's entry
func (r *Registry) Put(id model.UserID, e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = e
}

// Delete removes the user's entry, if any
func (r *Registry) Delete(id model.UserID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

// DeleteSolo removes the user's entry only if it still points at the given
// game, so a finalization racing a new session never evicts the new entry
func (r *Registry) DeleteSolo(id model.UserID, gameID model.GameID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[id]; ok && e.Kind == KindSolo && e.GameID == gameID {
		delete(r.entries, id)
	}
}

// DeleteRoom removes every entry pointing at the given room
func (r *Registry) DeleteRoom(code model.RoomCode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, e := range r.entries {
		if e.Kind == KindRoom && e.RoomCode == code {
			delete(r.entries, id)
		}
	}
}

// Len returns the number of registered participants
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
