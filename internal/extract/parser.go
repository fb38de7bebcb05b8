package extract

import (
	"context"
	"runtime"

	"go.uber.org/zap"

	"symscan/internal/fault"
	"symscan/internal/limits"
)

// DefaultChunkSize is the number of bytes scanned between cooperative
// yields. With the extreme profile a single message can reach 2^30 bytes;
// chunking keeps one oversized message from monopolizing a scheduler
// thread.
const DefaultChunkSize = 64 * 1024

// Parser applies the limit policy to raw content and runs the scanner as a
// chunked, cancelable unit of work. A Parser is stateless across calls and
// safe for concurrent use.
type Parser struct {
	policy    limits.Policy
	chunkSize int
	logger    *zap.Logger
}

// NewParser constructs a Parser. A non-positive chunkSize selects
// DefaultChunkSize; a nil logger disables logging.
func NewParser(policy limits.Policy, chunkSize int, logger *zap.Logger) *Parser {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{policy: policy, chunkSize: chunkSize, logger: logger}
}

// Parse truncates content to the policy's size bound and scans the prefix,
// yielding to the scheduler between chunks. The result is identical to a
// single-shot scan of the truncated content. It fails only with a scheduler
// fault when ctx ends before the scan completes; content shape never causes
// an error.
func (p *Parser) Parse(ctx context.Context, content []byte) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fault.Wrap(fault.KindScheduler, "parse abandoned", err)
	}
	msg := p.policy.Truncate(content)
	m := newMachine(msg, p.policy.MaxURLs)
	for !m.run(p.chunkSize) {
		select {
		case <-ctx.Done():
			return Result{}, fault.Wrap(fault.KindScheduler, "parse abandoned", ctx.Err())
		default:
		}
		runtime.Gosched()
	}
	res := m.result()
	p.logger.Debug("parsed message",
		zap.Int("raw_bytes", len(content)),
		zap.Int("scanned_bytes", len(msg)),
		zap.Int("symbols", len(res.Symbols)),
		zap.Bool("truncated", res.Truncated),
	)
	return res, nil
}

// Task is a future-style handle to an in-flight parse.
type Task struct {
	done   chan struct{}
	result Result
	err    error
}

// Go starts a parse in the background and returns its Task. The caller owns
// nothing until Wait returns; content must not be mutated while the task
// runs.
func (p *Parser) Go(ctx context.Context, content []byte) *Task {
	t := &Task{done: make(chan struct{})}
	go func() {
		defer close(t.done)
		t.result, t.err = p.Parse(ctx, content)
	}()
	return t
}

// Wait blocks until the parse resolves and returns its outcome. It may be
// called any number of times.
func (t *Task) Wait() (Result, error) {
	<-t.done
	return t.result, t.err
}
