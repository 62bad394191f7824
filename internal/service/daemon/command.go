package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/mitchellh/go-ps"
	"google.golang.org/grpc"

	api "github.com/oshokin/sleep-alarm/internal/api/grpc/panel"
	"github.com/oshokin/sleep-alarm/internal/clock"
	"github.com/oshokin/sleep-alarm/internal/config"
	"github.com/oshokin/sleep-alarm/internal/input"
	"github.com/oshokin/sleep-alarm/internal/logger"
	"github.com/oshokin/sleep-alarm/internal/metrics"
	"github.com/oshokin/sleep-alarm/internal/output/speaker"
	pb "github.com/oshokin/sleep-alarm/internal/pb/v1"
	"github.com/oshokin/sleep-alarm/internal/repository/schedule"
	"github.com/oshokin/sleep-alarm/internal/service/aligner"
	"github.com/oshokin/sleep-alarm/internal/service/engine"
	"github.com/oshokin/sleep-alarm/internal/service/reporter"
	"github.com/oshokin/sleep-alarm/internal/version"
)

// Options controls the sleep-alarm process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
	// ScheduleFile overrides the schedule path of the settings.
	ScheduleFile string
}

// ErrNoServerAddress indicates missing server configuration.
var ErrNoServerAddress = errors.New("no server address configured")

// Run starts the daemon and blocks until ctx is canceled or a component fails.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "sleep-alarm")
	logger.InfoKV(ctx, "Starting sleep alarm", version.LogFields()...)

	settings, err := LoadSettings(ctx, opts.ConfigPath)
	if err != nil {
		return err
	}

	if level, ok := logger.ParseLogLevel(settings.LogLevel); ok {
		logger.SetLevel(level)
	}

	if err = ensureSingleInstance(ps.Processes, executableName()); err != nil {
		return err
	}

	scheduleFile := settings.ScheduleFile
	if opts.ScheduleFile != "" {
		scheduleFile = opts.ScheduleFile
	}

	listenAddress, err := resolveListenAddress(settings.ServerAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	store, err := schedule.Open(ctx, scheduleFile)
	if err != nil {
		return err
	}

	var (
		systemClock = clock.System{}
		sink        = speaker.New(settings.Audio, store)
		queue       = input.NewQueue(systemClock, input.WithDebounce(settings.Debounce))
	)

	if sounds, err := speaker.Sounds(settings.Audio.SoundsDirectory); err != nil {
		logger.WarnKV(ctx, "Alarm sounds unavailable", "error", err)
	} else {
		logger.InfoKV(ctx, "Alarm sounds found", "sounds_dir", settings.Audio.SoundsDirectory, "sounds", sounds)
	}

	trigger, err := engine.New(engine.Dependencies{
		Store: store,
		Sink:  sink,
		Queue: queue,
		Clock: systemClock,
		Aligner: aligner.New(store, sink, systemClock, aligner.Options{
			EarliestSetTomorrowHour: settings.EarliestSetTomorrowHour,
			Feedback:                settings.Audio.Feedback,
		}),
		Reporter: reporter.New(sink, 0),
	}, engine.Options{
		CheckInterval: settings.CheckInterval,
		PollInterval:  settings.PollInterval,
	})
	if err != nil {
		return fmt.Errorf("initialise engine: %w", err)
	}

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	grpcServer := grpc.NewServer()
	pb.RegisterPanelServiceServer(grpcServer, api.NewServer(newService(queue, trigger, store, systemClock)))

	logger.InfoKV(ctx, "Sleep alarm started",
		"listen_address", listenAddress,
		"schedule_file", store.Path(),
		"metrics_address", settings.MetricsAddress)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := make(chan error, 3)

	go func() {
		errs <- serveGRPC(ctx, grpcServer, lis)
	}()

	go func() {
		errs <- trigger.Run(ctx)
	}()

	running := 2

	if settings.MetricsAddress != "" {
		running++

		go func() {
			errs <- metrics.Serve(ctx, settings.MetricsAddress)
		}()
	}

	var firstErr error

	for range running {
		if err := <-errs; err != nil && firstErr == nil {
			firstErr = err
		}

		// The first component to stop takes the others down.
		cancel()
	}

	logger.Info(ctx, "Sleep alarm stopped")

	return firstErr
}

// LoadSettings reads the settings file, falling back to defaults when it
// does not exist.
func LoadSettings(ctx context.Context, path string) (*config.Config, error) {
	settings, err := config.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.InfoKV(ctx, "Settings not found, using defaults", "path", path)

		return config.Default(), nil
	}

	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	return settings, nil
}

// serveGRPC serves until ctx is canceled and waits for a graceful stop.
func serveGRPC(ctx context.Context, grpcServer *grpc.Server, lis net.Listener) error {
	// Done channel is closed after GracefulStop finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		grpcServer.GracefulStop()
		close(done)
	}()

	if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	logger.Info(ctx, "GRPC server stopped")

	return nil
}

// resolveListenAddress determines the listen address for the gRPC server.
// If override is provided, uses it directly. Otherwise extracts port from configAddr.
// Returns appropriate listen address (e.g., ":8080" for port-only binding).
func resolveListenAddress(configAddr, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoServerAddress
	}

	host, port, err := net.SplitHostPort(configAddr)
	if err != nil {
		return "", fmt.Errorf("invalid server address format %q: %w", configAddr, err)
	}

	// A loopback address keeps the panel local; anything else binds everywhere.
	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		return configAddr, nil
	}

	return ":" + port, nil
}
