package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nmikhailov/guessnum/internal/model"
	"github.com/nmikhailov/guessnum/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// All reads return copies so concurrent callers never share mutable state.
type Storage struct {
	mu sync.RWMutex

	users   map[model.UserID]*model.User
	games   map[model.GameID]*model.Game
	rooms   map[model.RoomCode]*model.Room
	unlocks map[model.UserID][]*model.AchievementUnlock
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:   make(map[model.UserID]*model.User),
		games:   make(map[model.GameID]*model.Game),
		rooms:   make(map[model.RoomCode]*model.Room),
		unlocks: make(map[model.UserID][]*model.AchievementUnlock),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) UpsertUser(ctx context.Context, id model.UserID, displayName string, now time.Time) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		user = &model.User{
			ID:        id,
			CreatedAt: now,
		}
		s.users[id] = user
	}
	if displayName != "" {
		user.DisplayName = displayName
	}
	user.LastActiveAt = now
	return cloneUser(user), nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return cloneUser(user), nil
}

func (s *Storage) IncrementUserCounters(ctx context.Context, id model.UserID, delta storage.CounterDelta) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}

	user.TotalGames += delta.Games
	user.TotalWins += delta.Wins
	if delta.Wins > 0 && delta.WinAttempts > 0 {
		if user.BestAttempts == 0 || delta.WinAttempts < user.BestAttempts {
			user.BestAttempts = delta.WinAttempts
		}
	}
	return cloneUser(user), nil
}

func (s *Storage) QueryLeaderboard(ctx context.Context, limit int) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var leaders []*model.User
	for _, u := range s.users {
		if u.BestAttempts > 0 {
			leaders = append(leaders, cloneUser(u))
		}
	}

	sort.SliceStable(leaders, func(i, j int) bool {
		if leaders[i].BestAttempts != leaders[j].BestAttempts {
			return leaders[i].BestAttempts < leaders[j].BestAttempts
		}
		return leaders[i].TotalWins > leaders[j].TotalWins
	})

	if limit > 0 && len(leaders) > limit {
		leaders = leaders[:limit]
	}
	return leaders, nil
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[game.ID] = cloneGame(game)
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return cloneGame(game), nil
}

func (s *Storage) AppendGuess(ctx context.Context, id model.GameID, guess model.Guess) (*model.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	if game.Finalized() {
		return nil, model.ErrGameFinalized
	}

	game.Guesses = append(game.Guesses, guess)
	game.Attempts++
	return cloneGame(game), nil
}

func (s *Storage) SealGame(ctx context.Context, id model.GameID, outcome model.Outcome, endedAt time.Time) (*model.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	if game.Finalized() {
		return nil, model.ErrGameFinalized
	}

	game.Outcome = outcome
	game.EndedAt = endedAt
	return cloneGame(game), nil
}

func (s *Storage) QueryRecentGames(ctx context.Context, userID model.UserID, limit int) ([]*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var games []*model.Game
	for _, g := range s.games {
		if g.OwnerID == userID && g.Finalized() {
			games = append(games, cloneGame(g))
		}
	}

	sort.Slice(games, func(i, j int) bool {
		return games[i].EndedAt.After(games[j].EndedAt)
	})

	if limit > 0 && len(games) > limit {
		games = games[:limit]
	}
	return games, nil
}

func (s *Storage) CountWonGames(ctx context.Context, userID model.UserID, level model.Level) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, g := range s.games {
		if g.OwnerID == userID && g.Level == level && g.Outcome == model.OutcomeWon {
			count++
		}
	}
	return count, nil
}

func (s *Storage) QueryLevelStats(ctx context.Context, userID model.UserID) ([]storage.LevelStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byLevel := make(map[model.Level]*storage.LevelStats)
	for _, g := range s.games {
		if g.OwnerID != userID || g.Outcome != model.OutcomeWon {
			continue
		}
		entry, ok := byLevel[g.Level]
		if !ok {
			entry = &storage.LevelStats{Level: g.Level}
			byLevel[g.Level] = entry
		}
		entry.Wins++
		entry.AvgAttempts += float64(g.Attempts)
		if entry.BestAttempts == 0 || g.Attempts < entry.BestAttempts {
			entry.BestAttempts = g.Attempts
		}
	}

	var stats []storage.LevelStats
	for _, level := range []model.Level{model.LevelEasy, model.LevelMedium, model.LevelHard} {
		entry, ok := byLevel[level]
		if !ok {
			continue
		}
		entry.AvgAttempts /= float64(entry.Wins)
		stats = append(stats, *entry)
	}
	return stats, nil
}

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.Code] = cloneRoom(room)
	return nil
}

func (s *Storage) GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[code]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return cloneRoom(room), nil
}

func (s *Storage) DeleteRoom(ctx context.Context, code model.RoomCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, code)
	return nil
}

func (s *Storage) RoomExists(ctx context.Context, code model.RoomCode) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[code]
	return ok, nil
}

func (s *Storage) AppendRoomPlayer(ctx context.Context, code model.RoomCode, player model.RoomPlayer) (*model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[code]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	if room.GetPlayer(player.UserID) != nil {
		return nil, model.ErrAlreadyInRoom
	}

	room.Players = append(room.Players, player)
	return cloneRoom(room), nil
}

func (s *Storage) IncrementRoomAttempts(ctx context.Context, code model.RoomCode, userID model.UserID) (*model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[code]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	if room.Status != model.RoomStatusPlaying {
		return nil, model.ErrRoomFinished
	}
	player := room.GetPlayer(userID)
	if player == nil {
		return nil, model.ErrUserNotFound
	}

	player.Attempts++
	return cloneRoom(room), nil
}

func (s *Storage) TransitionRoomStatus(ctx context.Context, code model.RoomCode, from, to model.RoomStatus, winner model.UserID, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[code]
	if !ok {
		return false, model.ErrRoomNotFound
	}
	if room.Status != from {
		return false, nil
	}

	room.Status = to
	switch to {
	case model.RoomStatusPlaying:
		room.StartedAt = at
	case model.RoomStatusFinished:
		room.WinnerID = winner
		room.EndedAt = at
	}
	return true, nil
}

// Achievement operations

func (s *Storage) InsertAchievementIfAbsent(ctx context.Context, unlock *model.AchievementUnlock) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[unlock.UserID]
	if !ok {
		return false, model.ErrUserNotFound
	}
	if user.HasAchievement(unlock.AchievementID) {
		return false, nil
	}

	user.Achievements = append(user.Achievements, unlock.AchievementID)
	u := *unlock
	s.unlocks[unlock.UserID] = append(s.unlocks[unlock.UserID], &u)
	return true, nil
}

func (s *Storage) GetUserAchievements(ctx context.Context, userID model.UserID) ([]*model.AchievementUnlock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.unlocks[userID]
	result := make([]*model.AchievementUnlock, 0, len(records))
	// Newest first
	for i := len(records) - 1; i >= 0; i-- {
		u := *records[i]
		result = append(result, &u)
	}
	return result, nil
}

// Clone helpers keep stored state isolated from callers

func cloneUser(u *model.User) *model.User {
	c := *u
	c.Achievements = append([]model.AchievementID(nil), u.Achievements...)
	return &c
}

func cloneGame(g *model.Game) *model.Game {
	c := *g
	c.Guesses = append([]model.Guess(nil), g.Guesses...)
	return &c
}

func cloneRoom(r *model.Room) *model.Room {
	c := *r
	c.Players = append([]model.RoomPlayer(nil), r.Players...)
	return &c
}
