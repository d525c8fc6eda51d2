package trip

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScheduleStart(t *testing.T) {
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	t.Run("trailing token anchors to the operating day", func(t *testing.T) {
		start, err := ParseScheduleStart("Path-1 - 08:00", day)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC), start)
	})

	t.Run("single-digit hour", func(t *testing.T) {
		start, err := ParseScheduleStart("Route 7 / 9:05", day)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 3, 14, 9, 5, 0, 0, time.UTC), start)
	})

	t.Run("only the trailing token counts", func(t *testing.T) {
		start, err := ParseScheduleStart("10:00 shuttle - 16:30", day)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 3, 14, 16, 30, 0, 0, time.UTC), start)
	})

	t.Run("trailing whitespace tolerated", func(t *testing.T) {
		start, err := ParseScheduleStart("Path-2 - 23:59  ", day)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 3, 14, 23, 59, 0, 0, time.UTC), start)
	})

	t.Run("day anchored to UTC calendar date", func(t *testing.T) {
		offset := time.FixedZone("UTC+5", 5*3600)
		localDay := time.Date(2026, 3, 15, 2, 0, 0, 0, offset) // 2026-03-14 21:00 UTC
		start, err := ParseScheduleStart("Path-1 - 08:00", localDay)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC), start)
	})

	t.Run("rejects labels without a time token", func(t *testing.T) {
		for _, label := range []string{"", "Path-1", "morning run", "08:00 express"} {
			_, err := ParseScheduleStart(label, day)
			assert.ErrorIs(t, err, ErrScheduleParse, "label %q", label)
		}
	})

	t.Run("rejects out-of-range times", func(t *testing.T) {
		for _, label := range []string{"Path-1 - 24:00", "Path-1 - 12:60", "Path-1 - 99:99"} {
			_, err := ParseScheduleStart(label, day)
			assert.ErrorIs(t, err, ErrScheduleParse, "label %q", label)
		}
	})
}
