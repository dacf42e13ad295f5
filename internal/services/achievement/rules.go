package achievement

import (
	"time"

	"github.com/nmikhailov/guessnum/internal/model"
)

// Facts describes one finalized game, the trigger for rule evaluation
type Facts struct {
	UserID      model.UserID
	Level       model.Level
	Attempts    int
	Won         bool
	Duration    time.Duration
	Multiplayer bool
}

// Input is everything a rule may inspect. User reflects aggregates as of
// after the triggering game was counted.
type Input struct {
	Facts Facts
	User  *model.User

	// RecentGames are the user's finalized solo games, newest first,
	// capped at StreakLength
	RecentGames []*model.Game

	// HardWins is the user's lifetime count of won Hard solo games
	HardWins int
}

// Rule pairs an achievement's display metadata with its unlock predicate
type Rule struct {
	Achievement model.Achievement
	Applies     func(in Input) bool
}

const (
	// StreakLength is the run of consecutive wins required for the streak award
	StreakLength = 5

	// HardWinsRequired is the won-Hard-games threshold for the mastery award
	HardWinsRequired = 10

	// VeteranGames is the lifetime games threshold for the veteran award
	VeteranGames = 50

	// SpeedDemonLimit is the win duration that counts as a speed win
	SpeedDemonLimit = 30 * time.Second
)

// Rules returns the canonical ordered rule table. Evaluation order is fixed so
// multi-unlock finalizations report achievements deterministically.
func Rules() []Rule {
	return []Rule{
		{
			Achievement: model.Achievement{
				ID:          model.AchievementFirstWin,
				Name:        "First Victory",
				Description: "Win your first game",
			},
			Applies: func(in Input) bool {
				return in.User.TotalWins == 1
			},
		},
		{
			Achievement: model.Achievement{
				ID:          model.AchievementPerfectEasy,
				Name:        "Perfect Easy",
				Description: "Win easy level in 1 attempt",
			},
			Applies: func(in Input) bool {
				return in.Facts.Won && in.Facts.Level == model.LevelEasy && in.Facts.Attempts == 1
			},
		},
		{
			Achievement: model.Achievement{
				ID:          model.AchievementSpeedDemon,
				Name:        "Speed Demon",
				Description: "Win a game in under 30 seconds",
			},
			Applies: func(in Input) bool {
				return in.Facts.Won && in.Facts.Duration < SpeedDemonLimit
			},
		},
		{
			Achievement: model.Achievement{
				ID:          model.AchievementWinStreak5,
				Name:        "5 Win Streak",
				Description: "Win 5 games in a row",
			},
			Applies: func(in Input) bool {
				if !in.Facts.Won || len(in.RecentGames) != StreakLength {
					return false
				}
				for _, g := range in.RecentGames {
					if g.Outcome != model.OutcomeWon {
						return false
					}
				}
				return true
			},
		},
		{
			Achievement: model.Achievement{
				ID:          model.AchievementHardMaster,
				Name:        "Hard Master",
				Description: "Win 10 hard level games",
			},
			Applies: func(in Input) bool {
				return in.Facts.Won && in.HardWins >= HardWinsRequired
			},
		},
		{
			Achievement: model.Achievement{
				ID:          model.AchievementLuckyNumber,
				Name:        "Lucky Number",
				Description: "Guess the number on first try",
			},
			Applies: func(in Input) bool {
				return in.Facts.Won && in.Facts.Attempts == 1
			},
		},
		{
			Achievement: model.Achievement{
				ID:          model.AchievementVeteran,
				Name:        "Veteran",
				Description: "Play 50 games",
			},
			Applies: func(in Input) bool {
				return in.User.TotalGames >= VeteranGames
			},
		},
		{
			Achievement: model.Achievement{
				ID:          model.AchievementMultiplayerChampion,
				Name:        "Multiplayer Champion",
				Description: "Win your first multiplayer game",
			},
			Applies: func(in Input) bool {
				return in.Facts.Won && in.Facts.Multiplayer
			},
		},
	}
}

// Lookup returns the display metadata for an achievement id
func Lookup(id model.AchievementID) (model.Achievement, bool) {
	for _, r := range Rules() {
		if r.Achievement.ID == id {
			return r.Achievement, true
		}
	}
	return model.Achievement{}, false
}
