// Package fault defines the closed set of failure kinds the engine reports.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can map it to behavior (exit codes,
// retry, isolation) without parsing message text.
type Kind int

const (
	// KindConfig marks invalid or missing configuration, fatal at startup.
	KindConfig Kind = iota + 1
	// KindTransport marks socket bind/accept/read/write failures.
	KindTransport
	// KindScheduler marks work abandoned because the host is shutting down.
	KindScheduler
)

// String returns the human-readable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindTransport:
		return "transport"
	case KindScheduler:
		return "scheduler"
	default:
		return "unknown"
	}
}

// Fault pairs a Kind with a human-readable message and an optional cause.
type Fault struct {
	kind Kind
	msg  string
	err  error
}

// New creates a Fault without an underlying cause.
func New(kind Kind, msg string) *Fault {
	return &Fault{kind: kind, msg: msg}
}

// Wrap creates a Fault around an underlying cause.
func Wrap(kind Kind, msg string, err error) *Fault {
	return &Fault{kind: kind, msg: msg, err: err}
}

// Kind reports the fault's classification.
func (f *Fault) Kind() Kind {
	return f.kind
}

// Error implements the error interface.
func (f *Fault) Error() string {
	if f.err == nil {
		return fmt.Sprintf("%s fault: %s", f.kind, f.msg)
	}
	return fmt.Sprintf("%s fault: %s: %v", f.kind, f.msg, f.err)
}

// Unwrap exposes the cause for errors.Is and errors.As.
func (f *Fault) Unwrap() error {
	return f.err
}

// KindOf extracts the Kind from an error chain. The second return is false
// when no Fault is present in the chain.
func KindOf(err error) (Kind, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f.kind, true
	}
	return 0, false
}

// IsKind reports whether the error chain contains a Fault of the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
