package protocol

import (
	"errors"
	"testing"

	"github.com/danmuck/docsync/internal/testutil/testlog"
)

func TestParseErrorMatchesSentinelAndCause(t *testing.T) {
	testlog.Start(t)
	cause := errors.New("short value")
	err := NewParseError("WriteResponse", cause)
	if !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
	if errors.Is(err, ErrInternal) {
		t.Fatalf("parse error must not match ErrInternal")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be preserved")
	}
	if got := err.Error(); got != "protocol: parse WriteResponse: short value" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestNewParseErrorKeepsInnermostMessage(t *testing.T) {
	testlog.Start(t)
	inner := NewParseError("Timestamp", errors.New("nanos out of range"))
	outer := NewParseError("WriteResponse", inner)
	var pe *ParseError
	if !errors.As(outer, &pe) {
		t.Fatalf("expected ParseError")
	}
	if pe.Message != "Timestamp" {
		t.Fatalf("expected innermost message, got %q", pe.Message)
	}
	if NewParseError("x", nil) != nil {
		t.Fatalf("nil cause must stay nil")
	}
}

func TestInternalErrorMatchesSentinel(t *testing.T) {
	testlog.Start(t)
	err := NewInternalError("flatten", errors.New("no segments"))
	if !errors.Is(err, ErrInternal) || errors.Is(err, ErrParse) {
		t.Fatalf("unexpected classification: %v", err)
	}
}

func TestAssertfPanicsWithAssertionError(t *testing.T) {
	testlog.Start(t)
	Assertf(true, "never")

	defer func() {
		r := recover()
		ae, ok := r.(AssertionError)
		if !ok {
			t.Fatalf("expected AssertionError panic, got %#v", r)
		}
		if ae.Msg != "count 3 > 2" {
			t.Fatalf("unexpected assertion message: %q", ae.Msg)
		}
	}()
	Assertf(false, "count %d > %d", 3, 2)
}
