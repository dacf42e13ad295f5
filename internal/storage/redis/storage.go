package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nmikhailov/guessnum/internal/model"
	"github.com/nmikhailov/guessnum/internal/storage"
)

// txRetries bounds optimistic transaction retries under contention
const txRetries = 16

// Storage is a Redis-backed implementation of the storage interface.
// Entities are stored as JSON values; every read-modify-write runs inside a
// WATCH transaction so the room status transition and game seal behave as
// compare-and-set operations.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// withWatch runs fn as an optimistic transaction over the given keys,
// retrying when a watched key changes underneath it
func (s *Storage) withWatch(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	for i := 0; i < txRetries; i++ {
		err := s.client.Watch(ctx, fn, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return redis.TxFailedErr
}

// User operations

func (s *Storage) UpsertUser(ctx context.Context, id model.UserID, displayName string, now time.Time) (*model.User, error) {
	var result *model.User

	err := s.withWatch(ctx, func(tx *redis.Tx) error {
		user, err := getJSON[model.User](ctx, tx, userKey(id))
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if user == nil {
			user = &model.User{
				ID:        id,
				CreatedAt: now,
			}
		}
		if displayName != "" {
			user.DisplayName = displayName
		}
		user.LastActiveAt = now

		data, err := json.Marshal(user)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, userKey(id), data, 0)
			pipe.SAdd(ctx, usersIndexKey(), string(id))
			return nil
		})
		if err != nil {
			return err
		}
		result = user
		return nil
	}, userKey(id))
	if err != nil {
		return nil, err
	}

	return s.fillAchievements(ctx, result)
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	data, err := s.client.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return s.fillAchievements(ctx, &user)
}

func (s *Storage) IncrementUserCounters(ctx context.Context, id model.UserID, delta storage.CounterDelta) (*model.User, error) {
	var result *model.User

	err := s.withWatch(ctx, func(tx *redis.Tx) error {
		user, err := getJSON[model.User](ctx, tx, userKey(id))
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return model.ErrUserNotFound
			}
			return err
		}

		user.TotalGames += delta.Games
		user.TotalWins += delta.Wins
		if delta.Wins > 0 && delta.WinAttempts > 0 {
			if user.BestAttempts == 0 || delta.WinAttempts < user.BestAttempts {
				user.BestAttempts = delta.WinAttempts
			}
		}

		data, err := json.Marshal(user)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, userKey(id), data, 0)
			return nil
		})
		if err != nil {
			return err
		}
		result = user
		return nil
	}, userKey(id))
	if err != nil {
		return nil, err
	}

	return s.fillAchievements(ctx, result)
}

func (s *Storage) QueryLeaderboard(ctx context.Context, limit int) ([]*model.User, error) {
	ids, err := s.client.SMembers(ctx, usersIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = userKey(model.UserID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	var leaders []*model.User
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var user model.User
		if err := json.Unmarshal([]byte(str), &user); err != nil {
			return nil, err
		}
		if user.BestAttempts > 0 {
			leaders = append(leaders, &user)
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
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, gameKey(game.ID), data, 0).Err()
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	data, err := s.client.Get(ctx, gameKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}

	var game model.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *Storage) AppendGuess(ctx context.Context, id model.GameID, guess model.Guess) (*model.Game, error) {
	var result *model.Game

	err := s.withWatch(ctx, func(tx *redis.Tx) error {
		game, err := getJSON[model.Game](ctx, tx, gameKey(id))
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return model.ErrGameNotFound
			}
			return err
		}
		if game.Finalized() {
			return model.ErrGameFinalized
		}

		game.Guesses = append(game.Guesses, guess)
		game.Attempts++

		data, err := json.Marshal(game)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, gameKey(id), data, 0)
			return nil
		})
		if err != nil {
			return err
		}
		result = game
		return nil
	}, gameKey(id))
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Storage) SealGame(ctx context.Context, id model.GameID, outcome model.Outcome, endedAt time.Time) (*model.Game, error) {
	var result *model.Game

	err := s.withWatch(ctx, func(tx *redis.Tx) error {
		game, err := getJSON[model.Game](ctx, tx, gameKey(id))
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return model.ErrGameNotFound
			}
			return err
		}
		if game.Finalized() {
			return model.ErrGameFinalized
		}

		game.Outcome = outcome
		game.EndedAt = endedAt

		data, err := json.Marshal(game)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, gameKey(id), data, 0)
			pipe.LPush(ctx, recentGamesKey(game.OwnerID), string(game.ID))
			if s.cfg.RecentGamesKept > 0 {
				pipe.LTrim(ctx, recentGamesKey(game.OwnerID), 0, int64(s.cfg.RecentGamesKept-1))
			}
			return nil
		})
		if err != nil {
			return err
		}
		result = game
		return nil
	}, gameKey(id))
	if err != nil {
		return nil, err
	}

	// Exactly one caller wins the seal, so the stats hash sees one update per
	// won game; its own WATCH guards against other games by the same user
	if outcome == model.OutcomeWon {
		if err := s.recordLevelWin(ctx, result.OwnerID, result.Level, result.Attempts); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// recordLevelWin folds a winning game into the user's per-level aggregates
func (s *Storage) recordLevelWin(ctx context.Context, userID model.UserID, level model.Level, attempts int) error {
	key := levelStatsKey(userID, level)
	return s.withWatch(ctx, func(tx *redis.Tx) error {
		wins, attemptsSum, best, err := readLevelStats(ctx, tx, key)
		if err != nil {
			return err
		}

		wins++
		attemptsSum += attempts
		if best == 0 || attempts < best {
			best = attempts
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key,
				"wins", wins,
				"attempts_sum", attemptsSum,
				"best", best,
			)
			return nil
		})
		return err
	}, key)
}

func (s *Storage) QueryRecentGames(ctx context.Context, userID model.UserID, limit int) ([]*model.Game, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	ids, err := s.client.LRange(ctx, recentGamesKey(userID), 0, stop).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = gameKey(model.GameID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	games := make([]*model.Game, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var game model.Game
		if err := json.Unmarshal([]byte(str), &game); err != nil {
			return nil, err
		}
		games = append(games, &game)
	}
	return games, nil
}

func (s *Storage) CountWonGames(ctx context.Context, userID model.UserID, level model.Level) (int, error) {
	val, err := s.client.HGet(ctx, levelStatsKey(userID, level), "wins").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return strconv.Atoi(val)
}

func (s *Storage) QueryLevelStats(ctx context.Context, userID model.UserID) ([]storage.LevelStats, error) {
	var stats []storage.LevelStats
	for _, level := range []model.Level{model.LevelEasy, model.LevelMedium, model.LevelHard} {
		fields, err := s.client.HGetAll(ctx, levelStatsKey(userID, level)).Result()
		if err != nil {
			return nil, err
		}
		if len(fields) == 0 {
			continue
		}

		wins, _ := strconv.Atoi(fields["wins"])
		attemptsSum, _ := strconv.Atoi(fields["attempts_sum"])
		best, _ := strconv.Atoi(fields["best"])
		if wins == 0 {
			continue
		}

		stats = append(stats, storage.LevelStats{
			Level:        level,
			Wins:         wins,
			AvgAttempts:  float64(attemptsSum) / float64(wins),
			BestAttempts: best,
		})
	}
	return stats, nil
}

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, roomKey(room.Code), data, s.cfg.RoomTTL).Err()
}

func (s *Storage) GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	data, err := s.client.Get(ctx, roomKey(code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRoomNotFound
		}
		return nil, err
	}

	var room model.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *Storage) DeleteRoom(ctx context.Context, code model.RoomCode) error {
	return s.client.Del(ctx, roomKey(code)).Err()
}

func (s *Storage) RoomExists(ctx context.Context, code model.RoomCode) (bool, error) {
	n, err := s.client.Exists(ctx, roomKey(code)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Storage) AppendRoomPlayer(ctx context.Context, code model.RoomCode, player model.RoomPlayer) (*model.Room, error) {
	var result *model.Room

	err := s.updateRoom(ctx, code, func(room *model.Room) error {
		if room.GetPlayer(player.UserID) != nil {
			return model.ErrAlreadyInRoom
		}
		room.Players = append(room.Players, player)
		result = room
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Storage) IncrementRoomAttempts(ctx context.Context, code model.RoomCode, userID model.UserID) (*model.Room, error) {
	var result *model.Room

	err := s.updateRoom(ctx, code, func(room *model.Room) error {
		if room.Status != model.RoomStatusPlaying {
			return model.ErrRoomFinished
		}
		player := room.GetPlayer(userID)
		if player == nil {
			return model.ErrUserNotFound
		}
		player.Attempts++
		result = room
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Storage) TransitionRoomStatus(ctx context.Context, code model.RoomCode, from, to model.RoomStatus, winner model.UserID, at time.Time) (bool, error) {
	won := false

	err := s.withWatch(ctx, func(tx *redis.Tx) error {
		room, err := getJSON[model.Room](ctx, tx, roomKey(code))
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return model.ErrRoomNotFound
			}
			return err
		}
		if room.Status != from {
			// Lost the race; not an error
			won = false
			return nil
		}

		room.Status = to
		switch to {
		case model.RoomStatusPlaying:
			room.StartedAt = at
		case model.RoomStatusFinished:
			room.WinnerID = winner
			room.EndedAt = at
		}

		data, err := json.Marshal(room)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, roomKey(code), data, s.cfg.RoomTTL)
			return nil
		})
		if err != nil {
			return err
		}
		won = true
		return nil
	}, roomKey(code))
	if err != nil {
		return false, err
	}
	return won, nil
}

// updateRoom applies fn to the room inside a WATCH transaction
func (s *Storage) updateRoom(ctx context.Context, code model.RoomCode, fn func(*model.Room) error) error {
	return s.withWatch(ctx, func(tx *redis.Tx) error {
		room, err := getJSON[model.Room](ctx, tx, roomKey(code))
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return model.ErrRoomNotFound
			}
			return err
		}

		if err := fn(room); err != nil {
			return err
		}

		data, err := json.Marshal(room)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, roomKey(code), data, s.cfg.RoomTTL)
			return nil
		})
		return err
	}, roomKey(code))
}

// Achievement operations

func (s *Storage) InsertAchievementIfAbsent(ctx context.Context, unlock *model.AchievementUnlock) (bool, error) {
	added, err := s.client.SAdd(ctx, achievementsKey(unlock.UserID), string(unlock.AchievementID)).Result()
	if err != nil {
		return false, err
	}
	if added == 0 {
		return false, nil
	}

	data, err := json.Marshal(unlock)
	if err != nil {
		return false, err
	}
	if err := s.client.LPush(ctx, achievementLogKey(unlock.UserID), data).Err(); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Storage) GetUserAchievements(ctx context.Context, userID model.UserID) ([]*model.AchievementUnlock, error) {
	values, err := s.client.LRange(ctx, achievementLogKey(userID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	unlocks := make([]*model.AchievementUnlock, 0, len(values))
	for _, v := range values {
		var unlock model.AchievementUnlock
		if err := json.Unmarshal([]byte(v), &unlock); err != nil {
			return nil, err
		}
		unlocks = append(unlocks, &unlock)
	}
	return unlocks, nil
}

// fillAchievements loads the user's unlocked achievement set
func (s *Storage) fillAchievements(ctx context.Context, user *model.User) (*model.User, error) {
	ids, err := s.client.SMembers(ctx, achievementsKey(user.ID)).Result()
	if err != nil {
		return nil, err
	}
	user.Achievements = make([]model.AchievementID, 0, len(ids))
	for _, id := range ids {
		user.Achievements = append(user.Achievements, model.AchievementID(id))
	}
	return user, nil
}

// readLevelStats reads the per-level aggregate hash inside a transaction.
// A missing hash reads as all zeroes.
func readLevelStats(ctx context.Context, tx *redis.Tx, key string) (wins, attemptsSum, best int, err error) {
	fields, err := tx.HGetAll(ctx, key).Result()
	if err != nil {
		return 0, 0, 0, err
	}
	wins, _ = strconv.Atoi(fields["wins"])
	attemptsSum, _ = strconv.Atoi(fields["attempts_sum"])
	best, _ = strconv.Atoi(fields["best"])
	return wins, attemptsSum, best, nil
}

// getJSON reads and decodes a JSON value inside a transaction
func getJSON[T any](ctx context.Context, tx *redis.Tx, key string) (*T, error) {
	data, err := tx.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}
