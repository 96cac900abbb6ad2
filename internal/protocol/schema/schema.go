package schema

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/danmuck/docsync/internal/protocol/wire"
)

// MessageType identifies one message schema.
type MessageType uint32

// Message types of the sync service contract.
const (
	MsgTimestamp MessageType = iota + 1
	MsgStatus
	MsgDocument
	MsgFieldEntry
	MsgDocumentMask
	MsgPrecondition
	MsgFieldTransform
	MsgWrite
	MsgWriteResult
	MsgQueryTarget
	MsgDocumentsTarget
	MsgTarget
	MsgLabelEntry
	MsgListenRequest
	MsgTargetChange
	MsgDocumentChange
	MsgDocumentDelete
	MsgDocumentRemove
	MsgExistenceFilter
	MsgListenResponse
	MsgWriteRequest
	MsgWriteResponse
	MsgCommitRequest
	MsgCommitResponse
	MsgBatchGetDocumentsRequest
	MsgBatchGetDocumentsResponse
)

// Kind is the scalar or message kind of a field.
type Kind uint8

const (
	KindInt32 Kind = iota + 1
	KindInt64
	KindBool
	KindEnum
	KindString
	KindBytes
	KindMessage
)

// WireType is the protobuf wire type a singular field of kind k uses.
func (k Kind) WireType() protowire.Type {
	switch k {
	case KindInt32, KindInt64, KindBool, KindEnum:
		return protowire.VarintType
	default:
		return protowire.BytesType
	}
}

// Packable reports whether repeated fields of kind k may arrive packed.
func (k Kind) Packable() bool {
	return k.WireType() == protowire.VarintType
}

// FieldSpec declares a known field within a message type.
type FieldSpec struct {
	Num      protowire.Number
	Name     string
	Kind     Kind
	Message  MessageType
	Repeated bool
	Required bool
}

type ValidationError struct {
	MessageType MessageType
	FieldNum    protowire.Number
	Reason      string
}

func (e ValidationError) Error() string {
	if e.FieldNum == 0 {
		return fmt.Sprintf("schema: message_type=%s: %s", e.MessageType, e.Reason)
	}
	return fmt.Sprintf("schema: message_type=%s field=%d: %s", e.MessageType, e.FieldNum, e.Reason)
}

type messageSpec struct {
	name   string
	fields []FieldSpec
}

func (m MessageType) String() string {
	if spec, ok := messages[m]; ok {
		return spec.name
	}
	return fmt.Sprintf("MessageType(%d)", uint32(m))
}

// Lookup resolves a message type by its schema name.
func Lookup(name string) (MessageType, bool) {
	mt, ok := byName[name]
	return mt, ok
}

// Names lists every message name in sorted order.
func Names() []string {
	out := make([]string, 0, len(byName))
	for name := range byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Fields returns the known fields of mt ordered by field number.
func Fields(mt MessageType) []FieldSpec {
	return messages[mt].fields
}

func FieldByNum(mt MessageType, num protowire.Number) (FieldSpec, bool) {
	for _, spec := range messages[mt].fields {
		if spec.Num == num {
			return spec, true
		}
	}
	return FieldSpec{}, false
}

// Validate enforces required fields and wire types of known fields.
// Unknown field numbers are ignored so newer peers stay readable.
func Validate(mt MessageType, fields []wire.Field) error {
	spec, ok := messages[mt]
	if !ok {
		log.Debug().Uint32("message_type", uint32(mt)).Msg("schema.Validate unknown message_type")
		return ValidationError{MessageType: mt, Reason: "unknown message_type"}
	}
	seen := make(map[protowire.Number]struct{}, len(fields))
	for _, f := range fields {
		fs, known := FieldByNum(mt, f.Num)
		if !known {
			continue
		}
		if !typeAllowed(fs, f.Type) {
			log.Debug().
				Str("message_type", spec.name).
				Int32("field", int32(f.Num)).
				Int8("got", int8(f.Type)).
				Int8("want", int8(fs.Kind.WireType())).
				Msg("schema.Validate type mismatch")
			return ValidationError{MessageType: mt, FieldNum: f.Num, Reason: "type mismatch"}
		}
		seen[f.Num] = struct{}{}
	}
	for _, fs := range spec.fields {
		if !fs.Required {
			continue
		}
		if _, ok := seen[fs.Num]; !ok {
			log.Debug().
				Str("message_type", spec.name).
				Int32("field", int32(fs.Num)).
				Msg("schema.Validate missing field")
			return ValidationError{MessageType: mt, FieldNum: fs.Num, Reason: "missing required field"}
		}
	}
	return nil
}

func typeAllowed(fs FieldSpec, got protowire.Type) bool {
	want := fs.Kind.WireType()
	if got == want {
		return true
	}
	return fs.Repeated && fs.Kind.Packable() && got == protowire.BytesType
}
