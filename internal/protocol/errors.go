package protocol

import (
	"errors"
	"fmt"
)

var (
	// ErrParse matches every failure caused by inbound bytes that do not
	// conform to the expected message schema.
	ErrParse = errors.New("protocol: parse error")
	// ErrInternal matches contract breaches on locally produced values.
	ErrInternal = errors.New("protocol: internal error")
)

// ParseError reports an inbound message that could not be read.
type ParseError struct {
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("protocol: parse: %v", e.Err)
	}
	return fmt.Sprintf("protocol: parse %s: %v", e.Message, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// InternalError reports a locally produced value that breaks a contract
// the caller relies on.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("protocol: internal %s: %v", e.Op, e.Err)
}

func (e *InternalError) Unwrap() error { return e.Err }

func (e *InternalError) Is(target error) bool { return target == ErrInternal }

// NewParseError wraps err as a ParseError for message. An err that already
// carries a ParseError is returned unchanged so the innermost message name wins.
func NewParseError(message string, err error) error {
	if err == nil {
		return nil
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		return err
	}
	return &ParseError{Message: message, Err: err}
}

// NewInternalError wraps err as an InternalError for op.
func NewInternalError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &InternalError{Op: op, Err: err}
}

// AssertionError is the panic value raised by Assertf.
type AssertionError struct {
	Msg string
}

func (e AssertionError) Error() string {
	return "protocol: assertion failed: " + e.Msg
}

// Assertf panics with an AssertionError when cond is false. It guards
// invariants that only a programming error can break.
func Assertf(cond bool, format string, args ...any) {
	if cond {
		return
	}
	panic(AssertionError{Msg: fmt.Sprintf(format, args...)})
}
