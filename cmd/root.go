// Package cmd defines and implements the CLI commands for the symscan
// executable.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"symscan/internal/config"
	"symscan/internal/fault"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "symscan",
		Short: "Bounded URL symbol extraction for untrusted messages",
		Long: `symscan extracts URL symbols from short, untrusted text messages under
strict resource limits: at most max-size bytes of a message are considered
and at most max-urls symbols are reported. It runs either as a one-shot
parser or as a long-running server on a unix domain socket.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	cmd.PersistentFlags().Bool("extreme", false, "select the high-limit policy profile")
	cmd.PersistentFlags().Int("max-size", 0, "bound on message bytes considered (0 uses the profile)")
	cmd.PersistentFlags().Int("max-urls", 0, "bound on symbols extracted per message (0 uses the profile)")
	cmd.PersistentFlags().Bool("debug", false, "enable verbose development logging")

	cmd.AddCommand(newParseCmd(), newServeCmd())
	return cmd
}

// loadConfig layers config file, environment, and flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	return config.Load(cfgFile, cmd.Flags())
}

// Execute is the main entry point. Faults are mapped to stable process exit
// codes for the calling environment.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	kind, ok := fault.KindOf(err)
	if !ok {
		return 1
	}
	switch kind {
	case fault.KindConfig:
		return 2
	case fault.KindTransport:
		return 3
	case fault.KindScheduler:
		return 4
	default:
		return 1
	}
}
