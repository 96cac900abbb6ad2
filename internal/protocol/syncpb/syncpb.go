// Package syncpb defines the schema-typed wire messages of the sync service.
//
// Every message marshals to and from a flat wire.Field list in field number
// order. Unmarshalling validates nested messages against their schema and
// never retains the caller's buffer.
package syncpb

import (
	"github.com/danmuck/docsync/internal/protocol/schema"
	"github.com/danmuck/docsync/internal/protocol/wire"
	"github.com/danmuck/docsync/internal/protocol/wiretext"
	"google.golang.org/protobuf/encoding/protowire"
)

// Message is a wire value bound to one schema.
type Message interface {
	MessageType() schema.MessageType
	MarshalFields() []wire.Field
	UnmarshalFields(fields []wire.Field) error
}

// New returns an empty message for mt.
func New(mt schema.MessageType) (Message, bool) {
	switch mt {
	case schema.MsgTimestamp:
		return new(Timestamp), true
	case schema.MsgStatus:
		return new(Status), true
	case schema.MsgDocument:
		return new(Document), true
	case schema.MsgFieldEntry:
		return new(FieldEntry), true
	case schema.MsgDocumentMask:
		return new(DocumentMask), true
	case schema.MsgPrecondition:
		return new(Precondition), true
	case schema.MsgFieldTransform:
		return new(FieldTransform), true
	case schema.MsgWrite:
		return new(Write), true
	case schema.MsgWriteResult:
		return new(WriteResult), true
	case schema.MsgQueryTarget:
		return new(QueryTarget), true
	case schema.MsgDocumentsTarget:
		return new(DocumentsTarget), true
	case schema.MsgTarget:
		return new(Target), true
	case schema.MsgLabelEntry:
		return new(Label), true
	case schema.MsgListenRequest:
		return new(ListenRequest), true
	case schema.MsgTargetChange:
		return new(TargetChange), true
	case schema.MsgDocumentChange:
		return new(DocumentChange), true
	case schema.MsgDocumentDelete:
		return new(DocumentDelete), true
	case schema.MsgDocumentRemove:
		return new(DocumentRemove), true
	case schema.MsgExistenceFilter:
		return new(ExistenceFilter), true
	case schema.MsgListenResponse:
		return new(ListenResponse), true
	case schema.MsgWriteRequest:
		return new(WriteRequest), true
	case schema.MsgWriteResponse:
		return new(WriteResponse), true
	case schema.MsgCommitRequest:
		return new(CommitRequest), true
	case schema.MsgCommitResponse:
		return new(CommitResponse), true
	case schema.MsgBatchGetDocumentsRequest:
		return new(BatchGetDocumentsRequest), true
	case schema.MsgBatchGetDocumentsResponse:
		return new(BatchGetDocumentsResponse), true
	default:
		return nil, false
	}
}

func nested(num protowire.Number, m Message) wire.Field {
	return wire.Message(num, m.MarshalFields())
}

func unmarshalNested(f wire.Field, dst Message) error {
	fields, err := f.Fields()
	if err != nil {
		return err
	}
	if err := schema.Validate(dst.MessageType(), fields); err != nil {
		return err
	}
	return dst.UnmarshalFields(fields)
}

func format(m Message) string {
	return wiretext.Format(m.MessageType(), m.MarshalFields())
}

func appendStrings(out []wire.Field, num protowire.Number, vs []string) []wire.Field {
	for _, v := range vs {
		out = append(out, wire.String(num, v))
	}
	return out
}

func appendLabels(out []wire.Field, num protowire.Number, labels []*Label) []wire.Field {
	for _, l := range labels {
		out = append(out, nested(num, l))
	}
	return out
}

func decodeLabel(f wire.Field) (*Label, error) {
	l := new(Label)
	if err := unmarshalNested(f, l); err != nil {
		return nil, err
	}
	return l, nil
}

func decodeTimestamp(f wire.Field) (*Timestamp, error) {
	ts := new(Timestamp)
	if err := unmarshalNested(f, ts); err != nil {
		return nil, err
	}
	return ts, nil
}
