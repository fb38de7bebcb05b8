package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"symscan/internal/logging"
	"symscan/internal/metrics"
	"symscan/internal/ops"
	"symscan/internal/ratelimit"
	"symscan/internal/server"
)

// newServeCmd creates the 'serve' subcommand.
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve symbol extraction over a unix domain socket",
		Long: `Binds a unix domain socket and serves the newline-delimited protocol:
one message per line in, one result line out, in arrival order, on every
connection. Runs until interrupted, then drains in-flight sessions.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	cmd.Flags().String("socket", "", "unix socket path to listen on")
	cmd.Flags().Int("ops-port", 0, "TCP port for the health/metrics endpoint (0 disables)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	metrics.Init()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	if cfg.Ops.Port > 0 {
		opsServer := ops.New(cfg.Ops.Port, logger.Named("ops"))
		wg.Add(1)
		go func() {
			defer wg.Done()
			opsServer.Run(ctx)
		}()
	}

	srv, err := server.New(server.Config{
		SocketPath:   cfg.Socket.Path,
		DrainTimeout: cfg.DrainTimeout(),
		ChunkSize:    cfg.Parser.ChunkSize,
		Rate: ratelimit.Config{
			PerSecond: cfg.Session.RatePerSecond,
			Burst:     cfg.Session.Burst,
		},
	}, cfg.Policy(), logger.Named("server"))
	if err != nil {
		return err
	}

	err = srv.ListenAndServe(ctx)
	cancel()
	wg.Wait()
	return err
}
