package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAdvanceStreak(t *testing.T) {
	last := time.Date(2024, 3, 10, 22, 30, 0, 0, time.UTC)

	tests := []struct {
		name       string
		now        time.Time
		streak     int
		wantStreak int
		wantMoved  bool
	}{
		{"same day later hour", time.Date(2024, 3, 10, 23, 59, 0, 0, time.UTC), 4, 4, false},
		{"next day just after midnight", time.Date(2024, 3, 11, 0, 1, 0, 0, time.UTC), 4, 5, true},
		{"next day from zero", time.Date(2024, 3, 11, 12, 0, 0, 0, time.UTC), 0, 1, true},
		{"two days later resets", time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC), 9, 1, true},
		{"a month later resets", time.Date(2024, 4, 10, 8, 0, 0, 0, time.UTC), 9, 1, true},
		{"earlier timestamp is ignored", time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC), 3, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			streak, active := AdvanceStreak(last, tt.now, tt.streak, time.UTC)
			assert.Equal(t, tt.wantStreak, streak)
			if tt.wantMoved {
				assert.Equal(t, tt.now, active)
			} else {
				assert.Equal(t, last, active)
			}
		})
	}
}

func TestAdvanceStreakUsesConfiguredZone(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	// 18:00 与 20:00 UTC 在 UTC 下是同一天，在 UTC+5 下是 23:00 -> 次日 01:00
	last := time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC)
	now := time.Date(2024, 3, 10, 20, 0, 0, 0, time.UTC)

	streak, _ := AdvanceStreak(last, now, 2, time.UTC)
	assert.Equal(t, 2, streak)

	streak, active := AdvanceStreak(last, now, 2, loc)
	assert.Equal(t, 3, streak)
	assert.Equal(t, now, active)
}

func TestDaysBetweenAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	from := time.Date(2024, 3, 9, 23, 30, 0, 0, loc)
	to := time.Date(2024, 3, 10, 23, 30, 0, 0, loc)
	assert.Equal(t, 1, DaysBetween(from, to, loc))
	assert.Equal(t, 0, DaysBetween(to, to.Add(-time.Hour), loc))
}
