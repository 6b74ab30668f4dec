package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		xp       int
		expected int
	}{
		{0, 1},
		{500, 1},
		{999, 1},
		{1000, 2},
		{1999, 2},
		{2000, 3},
		{10500, 11},
		{-50, 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, LevelForXP(tt.xp), "xp=%d", tt.xp)
	}
}

func TestAddXP(t *testing.T) {
	t.Run("level up", func(t *testing.T) {
		profile := &UserProfile{XP: 900, Level: 1}
		leveledUp := profile.AddXP(150)

		assert.True(t, leveledUp)
		assert.Equal(t, 1050, profile.XP)
		assert.Equal(t, 2, profile.Level)
	})

	t.Run("no level up", func(t *testing.T) {
		profile := &UserProfile{XP: 100, Level: 1}
		leveledUp := profile.AddXP(50)

		assert.False(t, leveledUp)
		assert.Equal(t, 150, profile.XP)
		assert.Equal(t, 1, profile.Level)
	})

	t.Run("never below zero", func(t *testing.T) {
		profile := &UserProfile{XP: 200, Level: 1}
		leveledUp := profile.AddXP(-5000)

		assert.False(t, leveledUp)
		assert.Equal(t, 0, profile.XP)
		assert.Equal(t, 1, profile.Level)
	})
}

func TestUpdateStreak(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2025, time.March, d, 15, 30, 0, 0, time.UTC)
	}

	t.Run("first activity starts streak", func(t *testing.T) {
		profile := &UserProfile{}
		profile.UpdateStreak(day(1))

		assert.Equal(t, 1, profile.CurrentStreak)
		assert.Equal(t, 1, profile.LongestStreak)
		assert.NotNil(t, profile.LastActivityDate)
	})

	t.Run("same day is a no-op", func(t *testing.T) {
		profile := &UserProfile{}
		profile.UpdateStreak(day(1))
		profile.UpdateStreak(day(1).Add(4 * time.Hour))

		assert.Equal(t, 1, profile.CurrentStreak)
	})

	t.Run("consecutive days extend streak", func(t *testing.T) {
		profile := &UserProfile{}
		profile.UpdateStreak(day(1))
		profile.UpdateStreak(day(2))
		profile.UpdateStreak(day(3))

		assert.Equal(t, 3, profile.CurrentStreak)
		assert.Equal(t, 3, profile.LongestStreak)
	})

	t.Run("gap resets streak but keeps longest", func(t *testing.T) {
		profile := &UserProfile{}
		profile.UpdateStreak(day(1))
		profile.UpdateStreak(day(2))
		profile.UpdateStreak(day(3))
		profile.UpdateStreak(day(10))

		assert.Equal(t, 1, profile.CurrentStreak)
		assert.Equal(t, 3, profile.LongestStreak)
	})

	t.Run("consecutive days across a DST change", func(t *testing.T) {
		loc, err := time.LoadLocation("America/New_York")
		if err != nil {
			t.Skip("tzdata not available")
		}

		// Clocks spring forward on March 9, 2025, making March 9 to March 10
		// a 23-hour day. It still counts as the next calendar day.
		profile := &UserProfile{}
		profile.UpdateStreak(time.Date(2025, time.March, 9, 12, 0, 0, 0, loc))
		profile.UpdateStreak(time.Date(2025, time.March, 10, 12, 0, 0, 0, loc))

		assert.Equal(t, 2, profile.CurrentStreak)
	})
}

func TestDisplayName(t *testing.T) {
	u := &User{Username: "jdoe", FirstName: "Jane"}
	assert.Equal(t, "Jane", u.DisplayName())

	u.FirstName = ""
	assert.Equal(t, "jdoe", u.DisplayName())
}
