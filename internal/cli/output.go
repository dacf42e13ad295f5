package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Game:
		o.printGame(v)
	case GuessResult:
		o.printGuessResult(v)
	case Room:
		o.printRoom(v)
	case UserStats:
		o.printUserStats(v)
	case []LeaderboardEntry:
		o.printLeaderboard(v)
	case AchievementsOverview:
		o.printAchievements(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Game response type (matches API)
type Game struct {
	ID              string `json:"id"`
	Level           string `json:"level"`
	MaxNumber       int    `json:"max_number"`
	Attempts        int    `json:"attempts"`
	Outcome         string `json:"outcome"`
	Secret          int    `json:"secret,omitempty"`
	DeadlineSeconds int    `json:"deadline_seconds"`
}

// GuessResult response type
type GuessResult struct {
	Multiplayer     bool          `json:"multiplayer"`
	Dropped         bool          `json:"dropped,omitempty"`
	Verdict         string        `json:"verdict,omitempty"`
	Attempts        int           `json:"attempts"`
	Won             bool          `json:"won"`
	Secret          int           `json:"secret,omitempty"`
	DurationSeconds float64       `json:"duration_seconds,omitempty"`
	Unlocked        []Achievement `json:"unlocked,omitempty"`
}

// Achievement response type
type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// RoomPlayer response type
type RoomPlayer struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Attempts    int    `json:"attempts"`
}

// Room response type
type Room struct {
	Code      string       `json:"code"`
	HostID    string       `json:"host_id"`
	Level     string       `json:"level"`
	MaxNumber int          `json:"max_number"`
	Status    string       `json:"status"`
	Players   []RoomPlayer `json:"players"`
	WinnerID  string       `json:"winner_id,omitempty"`
	Secret    int          `json:"secret,omitempty"`
}

// LevelStats response type
type LevelStats struct {
	Level        string  `json:"level"`
	Wins         int     `json:"wins"`
	AvgAttempts  float64 `json:"avg_attempts"`
	BestAttempts int     `json:"best_attempts"`
}

// UserStats response type
type UserStats struct {
	UserID           string       `json:"user_id"`
	DisplayName      string       `json:"display_name"`
	TotalGames       int          `json:"total_games"`
	TotalWins        int          `json:"total_wins"`
	WinRate          float64      `json:"win_rate"`
	BestAttempts     int          `json:"best_attempts,omitempty"`
	AchievementCount int          `json:"achievement_count"`
	Levels           []LevelStats `json:"levels,omitempty"`
}

// LeaderboardEntry response type
type LeaderboardEntry struct {
	Rank         int    `json:"rank"`
	UserID       string `json:"user_id"`
	DisplayName  string `json:"display_name"`
	BestAttempts int    `json:"best_attempts"`
	TotalWins    int    `json:"total_wins"`
}

// AchievementUnlock response type
type AchievementUnlock struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	UnlockedAt  time.Time `json:"unlocked_at"`
}

// AchievementsOverview response type
type AchievementsOverview struct {
	Unlocked []AchievementUnlock `json:"unlocked"`
	Locked   []Achievement       `json:"locked"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printGame(g Game) {
	fmt.Printf("Game: %s\n", g.ID)
	fmt.Printf("Level: %s (1-%d)\n", g.Level, g.MaxNumber)
	fmt.Printf("Attempts: %d\n", g.Attempts)
	fmt.Printf("Outcome: %s\n", g.Outcome)
	if g.Secret > 0 {
		fmt.Printf("Secret: %d\n", g.Secret)
	}
	if g.Outcome == "pending" {
		fmt.Printf("Time limit: %ds\n", g.DeadlineSeconds)
	}
}

func (o *Output) printGuessResult(r GuessResult) {
	if r.Dropped {
		fmt.Println("Too late, the game is already over")
		return
	}
	switch {
	case r.Won:
		fmt.Printf("Correct! The number was %d, guessed in %d attempts", r.Secret, r.Attempts)
		if r.DurationSeconds > 0 {
			fmt.Printf(" (%.0fs)", r.DurationSeconds)
		}
		fmt.Println()
	case r.Verdict == "higher":
		fmt.Printf("Higher! (attempt %d)\n", r.Attempts)
	case r.Verdict == "lower":
		fmt.Printf("Lower! (attempt %d)\n", r.Attempts)
	}
	for _, a := range r.Unlocked {
		fmt.Printf("Achievement unlocked: %s - %s\n", a.Name, a.Description)
	}
}

func (o *Output) printRoom(r Room) {
	fmt.Printf("Room: %s\n", r.Code)
	fmt.Printf("Level: %s (1-%d)\n", r.Level, r.MaxNumber)
	fmt.Printf("Status: %s\n", r.Status)
	if r.WinnerID != "" {
		fmt.Printf("Winner: %s\n", r.WinnerID)
	}
	if r.Secret > 0 {
		fmt.Printf("Secret: %d\n", r.Secret)
	}
	fmt.Printf("Players (%d):\n", len(r.Players))
	for _, p := range r.Players {
		hostStr := ""
		if p.UserID == r.HostID {
			hostStr = " [host]"
		}
		fmt.Printf("  - %s (%s) - %d attempts%s\n", p.DisplayName, p.UserID, p.Attempts, hostStr)
	}
}

func (o *Output) printUserStats(s UserStats) {
	fmt.Printf("Player: %s (%s)\n", s.DisplayName, s.UserID)
	fmt.Printf("Games: %d\n", s.TotalGames)
	fmt.Printf("Wins: %d (%.0f%%)\n", s.TotalWins, s.WinRate*100)
	if s.BestAttempts > 0 {
		fmt.Printf("Best: %d attempts\n", s.BestAttempts)
	}
	fmt.Printf("Achievements: %d\n", s.AchievementCount)
	for _, ls := range s.Levels {
		fmt.Printf("  %s: %d wins, avg %.1f attempts, best %d\n",
			ls.Level, ls.Wins, ls.AvgAttempts, ls.BestAttempts)
	}
}

func (o *Output) printLeaderboard(entries []LeaderboardEntry) {
	if len(entries) == 0 {
		fmt.Println("No scores yet")
		return
	}
	for _, e := range entries {
		fmt.Printf("%2d. %s - best %d attempts, %d wins\n",
			e.Rank, e.DisplayName, e.BestAttempts, e.TotalWins)
	}
}

func (o *Output) printAchievements(a AchievementsOverview) {
	if len(a.Unlocked) == 0 {
		fmt.Println("No achievements unlocked yet")
	} else {
		fmt.Printf("Unlocked (%d):\n", len(a.Unlocked))
		for _, u := range a.Unlocked {
			fmt.Printf("  %s - %s (%s)\n", u.Name, u.Description, u.UnlockedAt.Format("2006-01-02"))
		}
	}
	if len(a.Locked) > 0 {
		fmt.Printf("Locked (%d):\n", len(a.Locked))
		for _, l := range a.Locked {
			fmt.Printf("  %s - %s\n", l.Name, l.Description)
		}
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
