package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"easy", LevelEasy, false},
		{"medium", LevelMedium, false},
		{"hard", LevelHard, false},
		{"Easy", "", true},
		{"extreme", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidLevel, "input %q", tt.input)
			continue
		}
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got)
	}
}

func TestLevelRangesAndDeadlines(t *testing.T) {
	assert.Equal(t, 10, LevelEasy.MaxNumber())
	assert.Equal(t, 50, LevelMedium.MaxNumber())
	assert.Equal(t, 100, LevelHard.MaxNumber())

	assert.Equal(t, 60*time.Second, LevelEasy.Deadline())
	assert.Equal(t, 90*time.Second, LevelMedium.Deadline())
	assert.Equal(t, 120*time.Second, LevelHard.Deadline())
}

func TestCompareGuess(t *testing.T) {
	assert.Equal(t, VerdictHigher, CompareGuess(3, 7))
	assert.Equal(t, VerdictLower, CompareGuess(9, 7))
	assert.Equal(t, VerdictCorrect, CompareGuess(7, 7))
}

func TestGameFinalized(t *testing.T) {
	g := &Game{Outcome: OutcomePending}
	assert.False(t, g.Finalized())

	g.Outcome = OutcomeWon
	assert.True(t, g.Finalized())

	g.Outcome = OutcomeLost
	assert.True(t, g.Finalized())
}

func TestGameDuration(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	g := &Game{StartedAt: start}
	assert.Equal(t, time.Duration(0), g.Duration())

	g.EndedAt = start.Add(25 * time.Second)
	assert.Equal(t, 25*time.Second, g.Duration())
}

func TestUserWinRate(t *testing.T) {
	u := &User{}
	assert.Equal(t, 0.0, u.WinRate())

	u.TotalGames = 4
	u.TotalWins = 1
	assert.InDelta(t, 0.25, u.WinRate(), 1e-9)
}

func TestUserHasAchievement(t *testing.T) {
	u := &User{Achievements: []AchievementID{AchievementFirstWin}}
	assert.True(t, u.HasAchievement(AchievementFirstWin))
	assert.False(t, u.HasAchievement(AchievementVeteran))
}

func TestClosestPlayerPrefersFewestAttempts(t *testing.T) {
	r := &Room{Players: []RoomPlayer{
		{UserID: "a", Attempts: 4},
		{UserID: "b", Attempts: 2},
		{UserID: "c", Attempts: 3},
	}}

	closest := r.ClosestPlayer()
	require.NotNil(t, closest)
	assert.Equal(t, UserID("b"), closest.UserID)
}

func TestClosestPlayerTieGoesToEarliestJoiner(t *testing.T) {
	r := &Room{Players: []RoomPlayer{
		{UserID: "a", Attempts: 4},
		{UserID: "b", Attempts: 2},
		{UserID: "c", Attempts: 2},
	}}

	closest := r.ClosestPlayer()
	require.NotNil(t, closest)
	assert.Equal(t, UserID("b"), closest.UserID)
}

func TestClosestPlayerSkipsSilentPlayers(t *testing.T) {
	r := &Room{Players: []RoomPlayer{
		{UserID: "silent", Attempts: 0},
		{UserID: "b", Attempts: 3},
	}}

	closest := r.ClosestPlayer()
	require.NotNil(t, closest)
	assert.Equal(t, UserID("b"), closest.UserID)
}

func TestClosestPlayerEmptyRoster(t *testing.T) {
	r := &Room{}
	assert.Nil(t, r.ClosestPlayer())

	r.Players = []RoomPlayer{{UserID: "silent"}}
	assert.Nil(t, r.ClosestPlayer())
}

func TestGetPlayer(t *testing.T) {
	r := &Room{Players: []RoomPlayer{
		{UserID: "a"},
		{UserID: "b"},
	}}

	assert.NotNil(t, r.GetPlayer("a"))
	assert.Nil(t, r.GetPlayer("z"))
}
