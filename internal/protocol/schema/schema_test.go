package schema

import (
	"errors"
	"testing"

	"github.com/danmuck/docsync/internal/protocol/wire"
	"github.com/danmuck/docsync/internal/testutil/testlog"
)

func TestValidateDocumentRequiredFields(t *testing.T) {
	testlog.Start(t)
	fields := []wire.Field{
		wire.String(DocumentName, "projects/p/databases/d/documents/rooms/a"),
		wire.Message(DocumentUpdateTime, []wire.Field{wire.Int64(TimestampSeconds, 10)}),
	}
	if err := Validate(MsgDocument, fields); err != nil {
		t.Fatalf("validate document: %v", err)
	}
}

func TestValidateUnknownFieldsIgnored(t *testing.T) {
	testlog.Start(t)
	fields := []wire.Field{
		wire.String(WriteResponseStreamID, "s1"),
		wire.Bytes(9999, []byte{0x01}),
		wire.Int32(9998, 3),
	}
	if err := Validate(MsgWriteResponse, fields); err != nil {
		t.Fatalf("validate with unknown field: %v", err)
	}
}

func TestValidateMissingRequiredDeterministic(t *testing.T) {
	testlog.Start(t)
	err := Validate(MsgDocumentDelete, []wire.Field{wire.Int32(DocumentDeleteRemovedTargetIDs, 1)})
	if err == nil {
		t.Fatalf("expected error")
	}
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if ve.FieldNum != DocumentDeleteDocument || ve.Reason != "missing required field" {
		t.Fatalf("unexpected validation error: %+v", ve)
	}
}

func TestValidateTypeMismatchDeterministic(t *testing.T) {
	testlog.Start(t)
	fields := []wire.Field{
		wire.String(WriteResponseStreamID, "s1"),
		wire.Int32(WriteResponseStreamToken, 7),
	}
	err := Validate(MsgWriteResponse, fields)
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.FieldNum != WriteResponseStreamToken || ve.Reason != "type mismatch" {
		t.Fatalf("unexpected validation error: %+v", ve)
	}
}

func TestValidateAcceptsPackedRepeatedScalars(t *testing.T) {
	testlog.Start(t)
	fields := []wire.Field{
		wire.Varint(TargetChangeType, 3),
		wire.PackedInt32s(TargetChangeTargetIDs, []int32{1, 2, 3}),
	}
	if err := Validate(MsgTargetChange, fields); err != nil {
		t.Fatalf("validate packed target ids: %v", err)
	}
	// a packed encoding of a singular scalar stays a mismatch
	err := Validate(MsgExistenceFilter, []wire.Field{wire.PackedInt32s(ExistenceFilterTargetID, []int32{1})})
	if err == nil {
		t.Fatalf("expected mismatch for packed singular field")
	}
}

func TestValidateUnknownMessageType(t *testing.T) {
	testlog.Start(t)
	err := Validate(MessageType(999), nil)
	var ve ValidationError
	if !errors.As(err, &ve) || ve.Reason != "unknown message_type" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLookupRoundTripsNames(t *testing.T) {
	testlog.Start(t)
	for _, name := range Names() {
		mt, ok := Lookup(name)
		if !ok {
			t.Fatalf("lookup %q failed", name)
		}
		if mt.String() != name {
			t.Fatalf("name mismatch: %q vs %q", mt.String(), name)
		}
	}
	if _, ok := Lookup("NoSuchMessage"); ok {
		t.Fatalf("unexpected lookup hit")
	}
}

func TestFieldSpecsReferenceKnownMessages(t *testing.T) {
	testlog.Start(t)
	for _, name := range Names() {
		mt, _ := Lookup(name)
		prev := 0
		for _, fs := range Fields(mt) {
			if int(fs.Num) <= prev {
				t.Fatalf("%s fields not ordered by number at %d", name, fs.Num)
			}
			prev = int(fs.Num)
			if fs.Kind == KindMessage {
				if _, ok := messages[fs.Message]; !ok {
					t.Fatalf("%s.%s references unknown message %d", name, fs.Name, fs.Message)
				}
			}
		}
	}
}
