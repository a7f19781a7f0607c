// Package errs defines the five error kinds the driver and CLI front-ends
// dispatch on: each maps to one of the process exit codes.
package errs

import "fmt"

// Kind is one of the five error categories the engine classifies failures into.
type Kind int

const (
	// KindConfig is a bad CLI flag or environment value; exit 1.
	KindConfig Kind = iota
	// KindInput is an empty or otherwise unusable unit catalog; exit 1.
	KindInput
	// KindIO is an output or checkpoint read/write failure; exit 2. The
	// failing operation is not retried and the file is not reopened.
	KindIO
	// KindChecksum is a checkpoint CRC or magic mismatch, or a corrupt
	// result or chunk-manifest file. The batch driver treats a bad
	// checkpoint as "no valid checkpoint", logs a warning and continues;
	// where it is returned (aggregate reduce, chunk merge), it exits 1.
	KindChecksum
	// KindInternal is an invariant violation (e.g. a reorder buffer seeing
	// a duplicate batch id); it is a bug, not a runtime condition.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindInput:
		return "input"
	case KindIO:
		return "io"
	case KindChecksum:
		return "checksum"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// ExitCode returns the process exit code this error kind maps to.
// KindChecksum and KindInternal fall through to 1.
func (k Kind) ExitCode() int {
	switch k {
	case KindConfig, KindInput:
		return 1
	case KindIO:
		return 2
	default:
		return 1
	}
}

// Error wraps an underlying cause with a Kind, so callers can dispatch on
// kind via errors.As without string-matching messages.
type Error struct {
	Kind Kind
	Op   string // the operation that failed, e.g. "load config", "open output"
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Config wraps err as a ConfigError.
func Config(op string, err error) *Error { return &Error{Kind: KindConfig, Op: op, Err: err} }

// Input wraps err as an InputError.
func Input(op string, err error) *Error { return &Error{Kind: KindInput, Op: op, Err: err} }

// IO wraps err as an IoError.
func IO(op string, err error) *Error { return &Error{Kind: KindIO, Op: op, Err: err} }

// Checksum wraps err as a ChecksumError.
func Checksum(op string, err error) *Error { return &Error{Kind: KindChecksum, Op: op, Err: err} }

// Internal wraps err as an InternalAssert: an invariant violation treated
// as a bug. It is returned like any other error (nothing panics with it);
// the CLI front-ends exit with code 1 when they receive one.
func Internal(op string, err error) *Error { return &Error{Kind: KindInternal, Op: op, Err: err} }
