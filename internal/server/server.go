// Package server accepts connections on a unix domain socket and runs one
// session per peer.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"symscan/internal/extract"
	"symscan/internal/fault"
	"symscan/internal/limits"
	"symscan/internal/ratelimit"
	"symscan/internal/session"
)

// DefaultDrainTimeout bounds how long shutdown waits for in-flight sessions
// before force-closing their connections.
const DefaultDrainTimeout = 10 * time.Second

// Config controls Server behavior.
type Config struct {
	SocketPath   string
	DrainTimeout time.Duration
	ChunkSize    int
	Rate         ratelimit.Config
}

// Server binds the listening endpoint and multiplexes sessions over it. The
// limit policy is shared read-only with every session; each session owns
// the rest of its state exclusively.
type Server struct {
	cfg    Config
	policy limits.Policy
	parser *extract.Parser
	logger *zap.Logger

	drain chan struct{}
	wg    sync.WaitGroup

	mu    sync.Mutex
	conns map[string]net.Conn
}

// New constructs a Server for the given policy.
func New(cfg Config, policy limits.Policy, logger *zap.Logger) (*Server, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if cfg.SocketPath == "" {
		return nil, fault.New(fault.KindConfig, "socket path must be set")
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = DefaultDrainTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:    cfg,
		policy: policy,
		parser: extract.NewParser(policy, cfg.ChunkSize, logger.Named("parser")),
		logger: logger,
		drain:  make(chan struct{}),
		conns:  make(map[string]net.Conn),
	}, nil
}

// ListenAndServe binds the socket and serves sessions until ctx ends, then
// drains and returns. Bind failures are fatal transport faults; per-session
// failures are contained by the sessions themselves. On a clean shutdown
// the socket file is removed and the return is nil.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if err := removeStaleSocket(s.cfg.SocketPath); err != nil {
		return err
	}
	listener, err := net.Listen("unix", s.cfg.SocketPath)
	if err != nil {
		return fault.Wrap(fault.KindTransport, "bind socket", err)
	}
	s.logger.Info("listening",
		zap.String("socket", s.cfg.SocketPath),
		zap.Int("max_size", s.policy.MaxSize),
		zap.Int("max_urls", s.policy.MaxURLs),
	)

	go func() {
		<-ctx.Done()
		if err := listener.Close(); err != nil {
			s.logger.Debug("listener close failed", zap.Error(err))
		}
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			s.logger.Warn("accept failed", zap.Error(err))
			continue
		}
		s.spawn(conn)
	}

	s.shutdown()
	if err := os.Remove(s.cfg.SocketPath); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("socket cleanup failed", zap.Error(err))
	}
	s.logger.Info("shutdown complete")
	return nil
}

// spawn registers the connection and starts its session goroutine. The
// accept loop never waits on session work.
func (s *Server) spawn(conn net.Conn) {
	id := uuid.NewString()
	s.mu.Lock()
	s.conns[id] = conn
	s.mu.Unlock()

	sess := session.New(
		conn,
		s.policy,
		s.parser,
		ratelimit.New(s.cfg.Rate),
		s.drain,
		s.logger.Named("session").With(zap.String("session_id", id)),
	)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.conns, id)
			s.mu.Unlock()
		}()
		// Sessions deliberately do not inherit the accept loop's
		// context: shutdown lets them finish their current message.
		sess.Run(context.Background())
	}()
}

// shutdown signals sessions to stop between messages, waits up to the drain
// timeout, then force-closes whatever remains.
func (s *Server) shutdown() {
	s.logger.Info("draining sessions")
	close(s.drain)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return
	case <-time.After(s.cfg.DrainTimeout):
	}

	s.mu.Lock()
	remaining := len(s.conns)
	for _, conn := range s.conns {
		if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.logger.Debug("force close failed", zap.Error(err))
		}
	}
	s.mu.Unlock()
	s.logger.Warn("drain timeout exceeded, connections force-closed", zap.Int("connections", remaining))
	<-done
}

// removeStaleSocket clears a leftover socket file from a previous run.
// Anything at the path that is not a unix socket is left alone and surfaces
// as a bind failure.
func removeStaleSocket(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fault.Wrap(fault.KindTransport, fmt.Sprintf("stat socket path %s", path), err)
	}
	if info.Mode()&os.ModeSocket == 0 {
		return nil
	}
	if err := os.Remove(path); err != nil {
		return fault.Wrap(fault.KindTransport, fmt.Sprintf("remove stale socket %s", path), err)
	}
	return nil
}
