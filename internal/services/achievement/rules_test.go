package achievement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmikhailov/guessnum/internal/model"
)

func ruleFor(t *testing.T, id model.AchievementID) Rule {
	t.Helper()
	for _, r := range Rules() {
		if r.Achievement.ID == id {
			return r
		}
	}
	t.Fatalf("no rule for %s", id)
	return Rule{}
}

func wonEasyInput() Input {
	return Input{
		Facts: Facts{
			UserID:   "u1",
			Level:    model.LevelEasy,
			Attempts: 3,
			Won:      true,
			Duration: time.Minute,
		},
		User: &model.User{ID: "u1", TotalGames: 10, TotalWins: 5},
	}
}

func TestFirstWinRule(t *testing.T) {
	r := ruleFor(t, model.AchievementFirstWin)

	in := wonEasyInput()
	in.User.TotalWins = 1
	assert.True(t, r.Applies(in))

	in.User.TotalWins = 2
	assert.False(t, r.Applies(in))
}

func TestPerfectEasyRule(t *testing.T) {
	r := ruleFor(t, model.AchievementPerfectEasy)

	in := wonEasyInput()
	in.Facts.Attempts = 1
	assert.True(t, r.Applies(in))

	in.Facts.Level = model.LevelMedium
	assert.False(t, r.Applies(in))

	in.Facts.Level = model.LevelEasy
	in.Facts.Attempts = 2
	assert.False(t, r.Applies(in))

	in.Facts.Attempts = 1
	in.Facts.Won = false
	assert.False(t, r.Applies(in))
}

func TestSpeedDemonRule(t *testing.T) {
	r := ruleFor(t, model.AchievementSpeedDemon)

	in := wonEasyInput()
	in.Facts.Duration = 29 * time.Second
	assert.True(t, r.Applies(in))

	in.Facts.Duration = SpeedDemonLimit
	assert.False(t, r.Applies(in))

	in.Facts.Duration = 10 * time.Second
	in.Facts.Won = false
	assert.False(t, r.Applies(in))
}

func TestWinStreakRule(t *testing.T) {
	r := ruleFor(t, model.AchievementWinStreak5)

	won := func(n int) []*model.Game {
		games := make([]*model.Game, n)
		for i := range games {
			games[i] = &model.Game{Outcome: model.OutcomeWon}
		}
		return games
	}

	in := wonEasyInput()
	in.RecentGames = won(StreakLength)
	assert.True(t, r.Applies(in))

	// Fewer finalized games than the streak length is never a streak
	in.RecentGames = won(StreakLength - 1)
	assert.False(t, r.Applies(in))

	in.RecentGames = won(StreakLength)
	in.RecentGames[2].Outcome = model.OutcomeLost
	assert.False(t, r.Applies(in))
}

func TestHardMasterRule(t *testing.T) {
	r := ruleFor(t, model.AchievementHardMaster)

	in := wonEasyInput()
	in.HardWins = HardWinsRequired
	assert.True(t, r.Applies(in))

	in.HardWins = HardWinsRequired - 1
	assert.False(t, r.Applies(in))
}

func TestLuckyNumberRule(t *testing.T) {
	r := ruleFor(t, model.AchievementLuckyNumber)

	in := wonEasyInput()
	in.Facts.Level = model.LevelHard
	in.Facts.Attempts = 1
	assert.True(t, r.Applies(in))

	in.Facts.Attempts = 2
	assert.False(t, r.Applies(in))
}

func TestVeteranRuleAppliesToLossesToo(t *testing.T) {
	r := ruleFor(t, model.AchievementVeteran)

	in := wonEasyInput()
	in.Facts.Won = false
	in.User.TotalGames = VeteranGames
	assert.True(t, r.Applies(in))

	in.User.TotalGames = VeteranGames - 1
	assert.False(t, r.Applies(in))
}

func TestMultiplayerChampionRule(t *testing.T) {
	r := ruleFor(t, model.AchievementMultiplayerChampion)

	in := wonEasyInput()
	in.Facts.Multiplayer = true
	assert.True(t, r.Applies(in))

	in.Facts.Won = false
	assert.False(t, r.Applies(in))

	in.Facts.Won = true
	in.Facts.Multiplayer = false
	assert.False(t, r.Applies(in))
}

func TestLookup(t *testing.T) {
	a, ok := Lookup(model.AchievementFirstWin)
	require.True(t, ok)
	assert.Equal(t, "First Victory", a.Name)

	_, ok = Lookup("NO_SUCH_AWARD")
	assert.False(t, ok)
}

func TestRuleTableCoversEveryAchievement(t *testing.T) {
	seen := map[model.AchievementID]bool{}
	for _, r := range Rules() {
		assert.False(t, seen[r.Achievement.ID], "duplicate rule for %s", r.Achievement.ID)
		seen[r.Achievement.ID] = true
		assert.NotEmpty(t, r.Achievement.Name)
		assert.NotEmpty(t, r.Achievement.Description)
	}
	assert.Len(t, seen, 8)
}
