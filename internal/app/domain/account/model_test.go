package account

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(d int, hour int) time.Time {
	return time.Date(2026, time.March, d, hour, 0, 0, 0, time.UTC)
}

func TestStreakTouch(t *testing.T) {
	var s Streak

	s = s.Touch(day(1, 9))
	assert.Equal(t, 1, s.Current)
	assert.Equal(t, 1, s.Longest)

	s = s.Touch(day(1, 18))
	assert.Equal(t, 1, s.Current, "same day does not advance")

	s = s.Touch(day(2, 8))
	s = s.Touch(day(3, 8))
	assert.Equal(t, 3, s.Current)
	assert.Equal(t, 3, s.Longest)

	s = s.Touch(day(6, 8))
	assert.Equal(t, 1, s.Current, "gap resets")
	assert.Equal(t, 3, s.Longest)
	assert.Equal(t, day(6, 0), *s.LastActiveDate)

	s = s.Touch(day(4, 8))
	assert.Equal(t, 1, s.Current, "earlier day is ignored")
	assert.Equal(t, day(6, 0), *s.LastActiveDate)
}

func TestStatsObserve(t *testing.T) {
	var s Stats
	s = s.Observe(30, true, 75, day(1, 9))
	s = s.Observe(10, false, 72, day(1, 10))

	assert.Equal(t, 2, s.TotalSessions)
	assert.Equal(t, 30, s.TotalProductiveTime)
	assert.InDelta(t, 73.5, s.AverageScore, 0.0001)
	assert.Equal(t, 1, s.Streak.Current)
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	assert.True(t, s.AIEnabled)
	assert.Equal(t, ThemeAuto, s.Theme)
	assert.Equal(t, "09:00", s.WorkingHours.Start)
}
