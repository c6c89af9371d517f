package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"blop/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "blop",
	Short: "Policy-driven generic containers",
	Long: `blop generates and inspects policy-driven lists and vectors.

Policies decide what happens on an empty pop, an out-of-range index or a
foreign node handle: return an error, return a sentinel or abort.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupSession,
	PersistentPostRun: func(*cobra.Command, []string) { sess.close() },
}

func init() {
	rootCmd.AddCommand(genCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("log-level", "info", "minimum diagnostic level (debug|info|success|warning|error|fatal)")
	rootCmd.PersistentFlags().String("trace", "", "write trace events to file (- for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-mode", "stream", "trace mode (stream|ring|both)")
	rootCmd.PersistentFlags().Int("trace-ring-size", 0, "events kept by the trace ring (0 = default)")
}

// main runs the root command. Any command error exits with status 1; aborts
// exit with diag.ExitStatus.
func main() {
	rootCmd.Version = version.String()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
