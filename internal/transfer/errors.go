package transfer

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig marks a missing or invalid setting. It is fatal for the run.
	ErrConfig = errors.New("configuration error")
	// ErrIO marks a local read/write failure, including reading a response body.
	ErrIO = errors.New("io error")
	// ErrTransport marks connection, timeout, TLS, request construction and
	// unexpected status failures.
	ErrTransport = errors.New("transport error")
)

// OpError records the operation and remote name that failed along with the
// error kind.
type OpError struct {
	Op   string
	Name string
	Kind error
	Err  error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Name, e.Kind, e.Err)
}

func (e *OpError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// NewTransportError wraps err as a transport failure of op on name.
func NewTransportError(op, name string, err error) error {
	return &OpError{Op: op, Name: name, Kind: ErrTransport, Err: err}
}

// NewIOError wraps err as a local io failure of op on name.
func NewIOError(op, name string, err error) error {
	return &OpError{Op: op, Name: name, Kind: ErrIO, Err: err}
}

// ConfigError returns an ErrConfig-kind error with the given message.
func ConfigError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
}
