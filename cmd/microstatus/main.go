package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/danielholmes839/microstatus-dtr/internal/cli"
	"github.com/danielholmes839/microstatus-dtr/internal/microstatus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "microstatus",
	Short: "Record your MicroStatus time in and time out from the terminal",
	Long: `microstatus logs into MicroStatus with your saved credentials, handles
2-step verification and clicks DTR Login or DTR Logout for you.

Run without a command to choose interactively.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		direction, err := cli.SelectDirection(cmd.Context())
		if err != nil {
			return err
		}
		return record(cmd, direction)
	},
}

var inCmd = &cobra.Command{
	Use:   "in",
	Short: "Record time in (DTR Login)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return record(cmd, microstatus.TimeIn)
	},
}

var outCmd = &cobra.Command{
	Use:   "out",
	Short: "Record time out (DTR Logout)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return record(cmd, microstatus.TimeOut)
	},
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show today's attendance log without recording anything",
	Args:  cobra.NoArgs,
	RunE:  showLog,
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Save your credentials and install the browser",
	Args:  cobra.NoArgs,
	RunE:  setup,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default ~/.microstatus/config.yaml)")
	flags.String("strategy", "", "how to record attendance: ui or api")
	flags.Bool("headed", false, "show the browser window")
	flags.BoolP("verbose", "v", false, "enable debug logging")

	setupCmd.Flags().Bool("skip-install", false, "do not download the browser")

	rootCmd.AddCommand(inCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(outCmd)
	rootCmd.AddCommand(setupCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, cli.ErrorLine(err))
		os.Exit(1)
	}
}
