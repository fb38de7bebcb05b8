// Package limits defines the policy bounding message size and symbol count.
package limits

import (
	"fmt"

	"symscan/internal/fault"
)

// Known profile bounds. Any positive pair is a valid policy; these are the
// two profiles selectable from configuration.
const (
	DefaultMaxSize = 4096
	DefaultMaxURLs = 5
	ExtremeMaxSize = 1 << 30
	ExtremeMaxURLs = 1_000_000
)

// Policy is the immutable pair of bounds applied to every message. It is
// fixed at startup and shared read-only by all sessions.
type Policy struct {
	// MaxSize bounds how many bytes of a message are considered.
	MaxSize int
	// MaxURLs bounds how many symbols are extracted per message.
	MaxURLs int
}

// Default returns the standard profile.
func Default() Policy {
	return Policy{MaxSize: DefaultMaxSize, MaxURLs: DefaultMaxURLs}
}

// Extreme returns the high-limit profile.
func Extreme() Policy {
	return Policy{MaxSize: ExtremeMaxSize, MaxURLs: ExtremeMaxURLs}
}

// Validate rejects non-positive bounds.
func (p Policy) Validate() error {
	if p.MaxSize <= 0 {
		return fault.New(fault.KindConfig, fmt.Sprintf("max_size must be > 0, got %d", p.MaxSize))
	}
	if p.MaxURLs <= 0 {
		return fault.New(fault.KindConfig, fmt.Sprintf("max_urls must be > 0, got %d", p.MaxURLs))
	}
	return nil
}

// Truncate returns the prefix of b that fits the size bound. It never
// copies; the result aliases b.
func (p Policy) Truncate(b []byte) []byte {
	if p.MaxSize > 0 && len(b) > p.MaxSize {
		return b[:p.MaxSize]
	}
	return b
}
