package panel

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestWriteStatus(t *testing.T) {
	t.Parallel()

	idle, err := structpb.NewStruct(map[string]any{"state": "idle", "now": "2026-10-19T06:00:00Z"})
	require.NoError(t, err)

	var out strings.Builder

	require.NoError(t, WriteStatus(&out, idle))
	require.Equal(t, "idle at 2026-10-19T06:00:00Z\n", out.String())

	firing, err := structpb.NewStruct(map[string]any{
		"state": "firing",
		"now":   "2026-10-19T06:31:00Z",
		"episode": map[string]any{
			"id":         "e1",
			"day":        "mon",
			"source":     "aligned",
			"content":    "sound:birds",
			"started_at": "2026-10-19T06:30:00Z",
		},
	})
	require.NoError(t, err)

	out.Reset()

	require.NoError(t, WriteStatus(&out, firing))
	require.Contains(t, out.String(), "aligned alarm of mon playing sound:birds since 2026-10-19T06:30:00Z")
}

func TestWriteSchedule(t *testing.T) {
	t.Parallel()

	reply, err := structpb.NewStruct(map[string]any{
		"global": map[string]any{
			"snooze_seconds":             int64((10 * time.Minute).Seconds()),
			"activation_timeout_seconds": 900,
			"volume_percent":             80,
			"provider_email":             "me@example.com",
		},
		"days": []any{
			map[string]any{
				"day":                   "mon",
				"enabled":               true,
				"wake_time":             "07:00",
				"aligned_time":          "06:44",
				"max_oversleep_seconds": 900,
				"time_to_sleep_seconds": 840,
				"content_kind":          "sound",
				"content_subtype":       "birds",
			},
			map[string]any{
				"day":          "tues",
				"wake_time":    "00:00",
				"content_kind": "pandora",
			},
		},
	})
	require.NoError(t, err)

	var out strings.Builder

	require.NoError(t, WriteSchedule(&out, reply))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 8)
	require.Contains(t, lines[0], "600 s")
	require.Contains(t, lines[3], "me@example.com")
	require.Equal(t, []string{"mon", "true", "07:00", "06:44", "900", "840", "0", "sound:birds"}, strings.Fields(lines[6]))
	require.Equal(t, []string{"tues", "false", "00:00", "-", "0", "0", "0", "pandora"}, strings.Fields(lines[7]))
}
