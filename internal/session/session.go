// Package session implements the per-connection protocol loop: one
// newline-delimited message in, one formatted result line out, in order.
package session

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"time"

	"go.uber.org/zap"

	"symscan/internal/extract"
	"symscan/internal/limits"
	"symscan/internal/metrics"
	"symscan/internal/ratelimit"
)

// Session termination reasons reported to metrics.
const (
	EndEOF        = "eof"
	EndReadError  = "read_error"
	EndWriteError = "write_error"
	EndDrain      = "drain"
	EndCanceled   = "canceled"
)

// Session owns one connection's state: the stream handle, its buffered read
// cursor, and nothing else. It is driven by a single goroutine; a failure
// here never affects sibling sessions.
type Session struct {
	conn    net.Conn
	reader  *bufio.Reader
	policy  limits.Policy
	parser  *extract.Parser
	limiter *ratelimit.Limiter
	drain   <-chan struct{}
	logger  *zap.Logger
}

// New constructs a Session. The drain channel, when closed, asks the
// session to stop between messages; a nil channel disables draining.
func New(
	conn net.Conn,
	policy limits.Policy,
	parser *extract.Parser,
	limiter *ratelimit.Limiter,
	drain <-chan struct{},
	logger *zap.Logger,
) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		conn:    conn,
		reader:  bufio.NewReader(conn),
		policy:  policy,
		parser:  parser,
		limiter: limiter,
		drain:   drain,
		logger:  logger,
	}
}

// Run executes the protocol loop until the peer disconnects, the stream
// fails, or a drain is requested. The connection is closed on return. The
// next message is not read until the previous result has been written, so
// responses always match request order and backpressure falls to the
// transport.
func (s *Session) Run(ctx context.Context) {
	defer func() {
		if err := s.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.logger.Debug("connection close failed", zap.Error(err))
		}
	}()
	metrics.IncActiveSessions()
	defer metrics.DecActiveSessions()

	s.logger.Debug("session started")
	for {
		select {
		case <-s.drain:
			s.end(EndDrain, "session drained")
			return
		case <-ctx.Done():
			s.end(EndCanceled, "session canceled")
			return
		default:
		}

		line, sizeTruncated, err := s.readLine()
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				s.end(EndEOF, "peer closed connection")
			case errors.Is(err, net.ErrClosed):
				s.end(EndDrain, "connection closed during drain")
			default:
				s.logger.Warn("read failed", zap.Error(err))
				metrics.ObserveSessionEnd(EndReadError)
			}
			return
		}
		if sizeTruncated {
			metrics.ObserveTruncation("size")
		}

		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				s.end(EndCanceled, "rate limit wait interrupted")
				return
			}
		}

		start := time.Now()
		res, err := s.parser.Parse(ctx, line)
		if err != nil {
			// Only a scheduler shutdown can fail a parse.
			metrics.ObserveMessage("error", 0, time.Since(start))
			s.end(EndCanceled, "parse abandoned")
			return
		}
		if res.Truncated {
			metrics.ObserveTruncation("symbols")
		}
		metrics.ObserveMessage("ok", len(res.Symbols), time.Since(start))

		if _, err := s.conn.Write(append([]byte(extract.Format(res)), '\n')); err != nil {
			s.logger.Warn("write failed", zap.Error(err))
			metrics.ObserveSessionEnd(EndWriteError)
			return
		}
	}
}

func (s *Session) end(reason, msg string) {
	s.logger.Debug(msg)
	metrics.ObserveSessionEnd(reason)
}

// readLine reads the next newline-delimited message, keeping at most the
// policy's size bound in memory. Bytes past the bound are discarded until
// the delimiter, so an adversarial line length never grows the buffer. The
// returned flag reports whether anything was discarded. A carriage return
// directly before the delimiter is treated as framing and stripped. A
// final unbounded line before EOF is delivered as a message; the EOF
// surfaces on the next call.
func (s *Session) readLine() ([]byte, bool, error) {
	var (
		buf       []byte
		got       bool
		truncated bool
	)
	for {
		chunk, err := s.reader.ReadSlice('\n')
		if len(chunk) > 0 {
			got = true
			end := len(chunk)
			if chunk[end-1] == '\n' {
				end--
			}
			if room := s.policy.MaxSize - len(buf); end > room {
				end = room
				truncated = true
			}
			if end > 0 {
				buf = append(buf, chunk[:end]...)
			}
		}
		switch {
		case err == nil:
			// Only an untruncated line can still carry the CRLF framing
			// byte; past the bound it was discarded with the rest.
			if n := len(buf); !truncated && n > 0 && buf[n-1] == '\r' {
				buf = buf[:n-1]
			}
			return buf, truncated, nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			if got {
				return buf, truncated, nil
			}
			return nil, false, io.EOF
		default:
			return nil, false, err
		}
	}
}
