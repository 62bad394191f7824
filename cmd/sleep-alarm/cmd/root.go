package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/sleep-alarm/internal/config"
	"github.com/oshokin/sleep-alarm/internal/service/daemon"
	"github.com/oshokin/sleep-alarm/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// scheduleFile overrides the schedule path from the configuration.
	scheduleFile string

	// rootCmd represents the base command for running the alarm daemon.
	rootCmd = &cobra.Command{
		Use:   "sleep-alarm [listen-address]",
		Short: "Run the bedside alarm clock.",
		Long: `Starts the alarm daemon that fires the daily and sleep-cycle aligned alarms.

The daemon checks the schedule once a minute, plays the configured content when an
alarm is due and reacts to the snooze, deactivate and sleep-now buttons.
Remote buttons, status and schedule changes are served over gRPC; the listen
address can be provided as argument to override the configuration (e.g., :50551).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			return daemon.Run(ctx, &daemon.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
				ScheduleFile:  scheduleFile,
			})
		},
	}

	// exportCmd prints the schedule as an iCalendar feed.
	exportCmd = &cobra.Command{
		Use:   "export-ics",
		Short: "Print the alarm schedule as iCalendar.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return daemon.ExportCalendar(cmd.Context(), &daemon.Options{
				ConfigPath:   configPath,
				ScheduleFile: scheduleFile,
			}, cmd.OutOrStdout())
		},
	}

	// autostartCmd manages the login item that starts the daemon.
	autostartCmd = &cobra.Command{
		Use:       "autostart <enable|disable|status>",
		Short:     "Start the alarm automatically on login.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{daemon.AutostartEnable, daemon.AutostartDisable, daemon.AutostartStatus},
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := daemon.NewAutostartApp(configPath)
			if err != nil {
				return err
			}

			enabled, err := daemon.Autostart(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}

			state := "disabled"
			if enabled {
				state = "enabled"
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "autostart %s\n", state)

			return err
		},
	}
)

// Execute runs the sleep-alarm CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)
	rootCmd.AddCommand(exportCmd, autostartCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().
		StringVarP(&scheduleFile, "schedule-file", "s", "", "path to the schedule file, overrides configuration")
}
