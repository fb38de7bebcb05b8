package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"symscan/internal/extract"
	"symscan/internal/logging"
)

// newParseCmd creates the one-shot 'parse' subcommand.
func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse [message]",
		Short: "Extract URL symbols from a single message",
		Long: `Reads one message from the argument or from stdin, applies the configured
limit policy, and prints the extracted symbols on a single line.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runParse,
	}
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	policy := cfg.Policy()
	var content []byte
	if len(args) == 1 {
		content = []byte(args[0])
	} else {
		// One byte past the bound is enough; the parser truncates the
		// rest and stdin never has to fit in memory whole.
		content, err = io.ReadAll(io.LimitReader(cmd.InOrStdin(), int64(policy.MaxSize)+1))
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
	}

	parser := extract.NewParser(policy, cfg.Parser.ChunkSize, logger.Named("parser"))
	res, err := parser.Parse(cmd.Context(), content)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), extract.Format(res))
	return nil
}
