package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/sleep-alarm/internal/config"
	"github.com/oshokin/sleep-alarm/internal/input"
	"github.com/oshokin/sleep-alarm/internal/service/panel"
	"github.com/oshokin/sleep-alarm/internal/version"
)

var (
	// cfgPath stores the configuration file path.
	cfgPath string
	// serverAddress overrides the daemon address from the configuration.
	serverAddress string
	// day selects the day a set command changes.
	day string

	// rootCmd represents the base command for the remote control panel.
	rootCmd = &cobra.Command{
		Use:   "sleep-alarm-panel",
		Short: "Control the sleep alarm remotely.",
		Long: `Remote control panel for the sleep-alarm daemon.

Presses the snooze, deactivate and sleep-now buttons, shows what the alarm is
doing and reads or changes the schedule. The daemon address is loaded from the
configuration file unless --server is given.`,
	}

	pressCmd = &cobra.Command{
		Use:       "press <snooze|deactivate|sleep-now>",
		Short:     "Press a button on the alarm.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{input.Snooze.String(), input.Deactivate.String(), input.SetCycleAlignedNow.String()},
		RunE: func(cmd *cobra.Command, args []string) error {
			return panel.Press(cmd.Context(), options(cmd), args[0])
		},
	}

	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show whether an alarm is firing.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return panel.Status(cmd.Context(), options(cmd))
		},
	}

	scheduleCmd = &cobra.Command{
		Use:   "schedule",
		Short: "Show the weekly schedule.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return panel.Schedule(cmd.Context(), options(cmd))
		},
	}

	setCmd = &cobra.Command{
		Use:   "set <field> <value>",
		Short: "Change one schedule setting.",
		Long: `Changes one schedule setting.

Daily fields (enabled, wake_time, aligned_time, content_kind, ...) apply to the
day given with --day, or to every day when it is omitted. Global fields
(snooze_seconds, activation_timeout_seconds, volume_percent, ...) ignore --day.`,
		Args: cobra.ExactArgs(2), //nolint:mnd // Field and value.
		RunE: func(cmd *cobra.Command, args []string) error {
			return panel.Set(cmd.Context(), options(cmd), day, args[0], args[1])
		},
	}
)

// options builds the panel options for a subcommand.
func options(cmd *cobra.Command) *panel.Options {
	return &panel.Options{
		ConfigPath:    cfgPath,
		ServerAddress: serverAddress,
		Out:           cmd.OutOrStdout(),
	}
}

// Execute runs the sleep-alarm-panel CLI and exits with non-zero status on error.
func Execute() {
	// Setup graceful shutdown handling.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)

	version.AttachCobraVersionCommand(rootCmd)
	rootCmd.AddCommand(pressCmd, statusCmd, scheduleCmd, setCmd)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().StringVar(&serverAddress, "server", "", "daemon address, overrides configuration")

	setCmd.Flags().StringVarP(&day, "day", "d", "", "day to change (mon..sun), every day when empty")
}
