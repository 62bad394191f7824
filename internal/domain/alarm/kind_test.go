package alarm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestParseAlarmKind covers both kinds and the empty default.
func TestParseAlarmKind(t *testing.T) {
	t.Parallel()

	k, err := ParseAlarmKind("Pandora")
	require.NoError(t, err)
	require.Equal(t, KindPandora, k)

	k, err = ParseAlarmKind("")
	require.NoError(t, err)
	require.Equal(t, KindSound, k)

	_, err = ParseAlarmKind("radio")
	require.ErrorIs(t, err, ErrInvalidFieldValue)

	require.Equal(t, "sound:birds", Content{Kind: KindSound, Subtype: "birds"}.String())
}

// TestActorClone verifies that Clone returns a deep copy and handles nil safely.
func TestActorClone(t *testing.T) {
	t.Parallel()
	require.Nil(t, (*Actor)(nil).Clone())

	a := &Actor{
		Hostname: "bedroom-pi",
		Username: "pi",
	}

	b := a.Clone()

	require.Equal(t, a, b)
	require.NotSame(t, a, b)
	require.Equal(t, "pi@bedroom-pi", b.String())
}
