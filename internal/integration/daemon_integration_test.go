package integration

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oshokin/sleep-alarm/internal/config"
	domain "github.com/oshokin/sleep-alarm/internal/domain/alarm"
	pb "github.com/oshokin/sleep-alarm/internal/pb/v1"
	"github.com/oshokin/sleep-alarm/internal/repository/schedule"
	"github.com/oshokin/sleep-alarm/internal/service/common"
	"github.com/oshokin/sleep-alarm/internal/service/daemon"
)

// startDaemon runs the real daemon with a temporary config and schedule file.
// Returns a stop function that waits for the daemon to shut down.
func startDaemon(t *testing.T, addr, schedulePath string) (stop func()) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	cfgPath := filepath.Join(t.TempDir(), "settings.yaml")

	require.NoError(t, config.Save(cfgPath, &config.Config{
		ServerAddress: addr,
		ScheduleFile:  schedulePath,
		Timeout:       5 * time.Second,
		Audio: config.Audio{
			SoundsDirectory: t.TempDir(),
		},
	}))

	done := make(chan error, 1)

	go func() {
		done <- daemon.Run(ctx, &daemon.Options{ConfigPath: cfgPath})
	}()

	require.Eventually(t, func() bool {
		conn, err := net.DialTimeout("tcp", addr, 50*time.Millisecond)
		if err != nil {
			return false
		}

		_ = conn.Close()

		return true
	}, 5*time.Second, 20*time.Millisecond)

	return func() {
		cancel()
		require.NoError(t, <-done)
	}
}

// TestDaemon_PanelRoundtrip drives the running daemon through the panel client.
func TestDaemon_PanelRoundtrip(t *testing.T) {
	t.Parallel()

	// Reserve a free port for the daemon.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	_ = l.Close()

	schedulePath := filepath.Join(t.TempDir(), "schedule.yaml")

	stop := startDaemon(t, addr, schedulePath)
	defer stop()

	ctx := context.Background()

	c, err := common.Dial(ctx, addr, common.WithCallTimeout(3*time.Second))
	require.NoError(t, err)

	defer func() {
		_ = c.Close()
	}()

	actor := &domain.Actor{Hostname: "test-hostname", Username: "test-user"}

	reply, err := c.GetStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, "idle", pb.String(reply, pb.KeyState))

	// Deactivate while idle is accepted by the queue and ignored by the engine.
	accepted, err := c.PressButton(ctx, actor, "deactivate")
	require.NoError(t, err)
	require.True(t, accepted)

	_, err = c.PressButton(ctx, actor, "panic")
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = c.SetField(ctx, actor, "mon", schedule.FieldWakeTime, "07:30")
	require.NoError(t, err)

	_, err = c.SetField(ctx, actor, "", schedule.FieldEnabled, "on")
	require.NoError(t, err)

	_, err = c.SetField(ctx, actor, "mon", schedule.FieldWakeTime, "7 am")
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	got, err := c.GetSchedule(ctx)
	require.NoError(t, err)

	days := got.GetFields()[pb.KeyDays].GetListValue().GetValues()
	require.Len(t, days, domain.DaysPerWeek)

	monday := days[domain.Monday].GetStructValue()
	require.Equal(t, "07:30", pb.String(monday, schedule.FieldWakeTime))
	require.True(t, pb.Bool(monday, schedule.FieldEnabled))

	// Changes are durable: a fresh store sees them.
	store, err := schedule.Open(ctx, schedulePath)
	require.NoError(t, err)

	ds, err := store.Day(ctx, domain.Monday)
	require.NoError(t, err)
	require.True(t, ds.Enabled)
	require.Equal(t, domain.TimeOfDay{Hour: 7, Minute: 30}, ds.WakeTime)
}
