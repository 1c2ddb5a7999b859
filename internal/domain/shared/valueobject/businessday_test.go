package valueobject

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBusinessDay(t *testing.T) {
	day, err := ParseBusinessDay("2026-03-15")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-15", day.String())
	assert.Equal(t, 24*time.Hour, day.End().Sub(day.Start()))

	_, err = ParseBusinessDay("15/03/2026")
	assert.Error(t, err)
}

func TestBusinessDayOf_Boundaries(t *testing.T) {
	day, err := ParseBusinessDay("2026-03-15")
	require.NoError(t, err)

	assert.True(t, day.Contains(day.Start()))
	assert.True(t, day.Contains(day.End().Add(-time.Second)))
	assert.False(t, day.Contains(day.End()))
	assert.False(t, day.Contains(day.Start().Add(-time.Second)))
}

func TestBusinessDay_Equal(t *testing.T) {
	a, err := ParseBusinessDay("2026-03-15")
	require.NoError(t, err)

	sameDay := BusinessDayOf(a.Start().Add(13 * time.Hour))
	assert.True(t, a.Equal(sameDay))

	nextDay := BusinessDayOf(a.End())
	assert.False(t, a.Equal(nextDay))
}

func TestBusinessDay_IsZero(t *testing.T) {
	assert.True(t, BusinessDay{}.IsZero())
	assert.False(t, CurrentBusinessDay().IsZero())
}
