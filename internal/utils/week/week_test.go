package week_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/campusmatch/matchengine/internal/utils/week"
)

func TestFor_PinsToSunday(t *testing.T) {
	// Wednesday 2026-01-07 13:45 UTC → week of Sunday 2026-01-04.
	now := time.Date(2026, 1, 7, 13, 45, 0, 0, time.UTC)
	w := week.For(now)

	assert.Equal(t, time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2026, 1, 11, 0, 0, 0, 0, time.UTC), w.End)
}

func TestFor_SundayStartsItsOwnWeek(t *testing.T) {
	now := time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC)
	w := week.For(now)

	assert.Equal(t, now, w.Start)
	assert.True(t, w.Contains(now))
}

func TestContains_HalfOpenInterval(t *testing.T) {
	w := week.For(time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC))

	assert.True(t, w.Contains(w.Start))
	assert.True(t, w.Contains(w.End.Add(-time.Second)))
	assert.False(t, w.Contains(w.End))
	assert.False(t, w.Contains(w.Start.Add(-time.Second)))
}

func TestFor_NonUTCInputNormalized(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	// 02:00 Monday UTC+5 is 21:00 Sunday UTC: still Sunday's week.
	now := time.Date(2026, 1, 5, 2, 0, 0, 0, loc)
	w := week.For(now)

	assert.Equal(t, time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC), w.Start)
}
