package alarm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestParseTimeOfDay covers the accepted formats and range validation.
func TestParseTimeOfDay(t *testing.T) {
	t.Parallel()

	tod, err := ParseTimeOfDay("07:05")
	require.NoError(t, err)
	require.Equal(t, TimeOfDay{Hour: 7, Minute: 5}, tod)

	tod, err = ParseTimeOfDay("23:59:30")
	require.NoError(t, err)
	require.Equal(t, "23:59", tod.String())

	for _, bad := range []string{"", "7", "24:00", "07:60", "aa:bb", "1:2:3:4"} {
		_, err = ParseTimeOfDay(bad)
		require.ErrorIs(t, err, ErrInvalidFieldValue, bad)
	}
}

// TestTimeOfDayOn anchors the time on the date of the reference instant.
func TestTimeOfDayOn(t *testing.T) {
	t.Parallel()

	ref := time.Date(2024, time.March, 4, 23, 10, 42, 5, time.UTC)
	got := TimeOfDay{Hour: 6, Minute: 30}.On(ref)

	require.Equal(t, time.Date(2024, time.March, 4, 6, 30, 0, 0, time.UTC), got)
	require.True(t, TimeOfDay{}.IsMidnight())
}

// TestNextOccurrence shifts forward to the requested weekday.
func TestNextOccurrence(t *testing.T) {
	t.Parallel()

	// Sunday evening.
	now := time.Date(2024, time.January, 7, 23, 0, 0, 0, time.UTC)
	seven := TimeOfDay{Hour: 7}

	require.Equal(t, time.Date(2024, time.January, 8, 7, 0, 0, 0, time.UTC), NextOccurrence(now, Monday, seven))
	require.Equal(t, time.Date(2024, time.January, 7, 7, 0, 0, 0, time.UTC), NextOccurrence(now, Sunday, seven))
	require.Equal(t, time.Date(2024, time.January, 13, 7, 0, 0, 0, time.UTC), NextOccurrence(now, Saturday, seven))
}
