package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestCountWorkingDaysSkipsWeekends(t *testing.T) {
	// Friday 2026-01-02 to Tuesday 2026-01-06
	n, err := CountWorkingDays(date(t, "2026-01-02"), date(t, "2026-01-06"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestCountWorkingDaysWeekendOnly(t *testing.T) {
	n, err := CountWorkingDays(date(t, "2026-01-03"), date(t, "2026-01-04"))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestCountWorkingDaysReversedRange(t *testing.T) {
	n, err := CountWorkingDays(date(t, "2026-01-10"), date(t, "2026-01-05"))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestWorkingDaysInMonth(t *testing.T) {
	first, last := MonthRange(2026, 2)
	assert.Equal(t, "2026-02-01", first.Format(DateLayout))
	assert.Equal(t, "2026-02-28", last.Format(DateLayout))

	n, err := CountWorkingDays(first, last)
	require.NoError(t, err)
	assert.Equal(t, 20, n)
}

func TestOverlapDaysClipsToMonth(t *testing.T) {
	first, last := MonthRange(2026, 1)
	// Thursday 2026-01-29 .. Tuesday 2026-02-03: only Jan 29, 30 fall inside January
	n, err := OverlapDays(date(t, "2026-01-29"), date(t, "2026-02-03"), first, last)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 10.13, Round2(10.125000001))
	assert.Equal(t, 3.0, Round2(2.999999))
}
