package syncpb

import (
	"github.com/danmuck/docsync/internal/protocol/schema"
	"github.com/danmuck/docsync/internal/protocol/wire"
)

type WriteRequest struct {
	Database    string
	StreamID    string
	Writes      []*Write
	StreamToken []byte
	Labels      []*Label
}

func (m *WriteRequest) MessageType() schema.MessageType { return schema.MsgWriteRequest }

func (m *WriteRequest) MarshalFields() []wire.Field {
	if m == nil {
		return nil
	}
	var out []wire.Field
	if m.Database != "" {
		out = append(out, wire.String(schema.WriteRequestDatabase, m.Database))
	}
	if m.StreamID != "" {
		out = append(out, wire.String(schema.WriteRequestStreamID, m.StreamID))
	}
	for _, w := range m.Writes {
		out = append(out, nested(schema.WriteRequestWrites, w))
	}
	if len(m.StreamToken) > 0 {
		out = append(out, wire.Bytes(schema.WriteRequestStreamToken, m.StreamToken))
	}
	return appendLabels(out, schema.WriteRequestLabels, m.Labels)
}

func (m *WriteRequest) UnmarshalFields(fields []wire.Field) error {
	*m = WriteRequest{}
	for _, f := range fields {
		var err error
		switch f.Num {
		case schema.WriteRequestDatabase:
			m.Database, err = f.Text()
		case schema.WriteRequestStreamID:
			m.StreamID, err = f.Text()
		case schema.WriteRequestWrites:
			w := new(Write)
			if err = unmarshalNested(f, w); err == nil {
				m.Writes = append(m.Writes, w)
			}
		case schema.WriteRequestStreamToken:
			m.StreamToken, err = f.Bytes()
		case schema.WriteRequestLabels:
			var l *Label
			if l, err = decodeLabel(f); err == nil {
				m.Labels = append(m.Labels, l)
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *WriteRequest) String() string { return format(m) }

// WriteResponse answers one WriteRequest. WriteResults align positionally
// with the request's Writes.
type WriteResponse struct {
	StreamID     string
	StreamToken  []byte
	WriteResults []*WriteResult
	CommitTime   *Timestamp
}

func (m *WriteResponse) MessageType() schema.MessageType { return schema.MsgWriteResponse }

func (m *WriteResponse) MarshalFields() []wire.Field {
	if m == nil {
		return nil
	}
	var out []wire.Field
	if m.StreamID != "" {
		out = append(out, wire.String(schema.WriteResponseStreamID, m.StreamID))
	}
	if len(m.StreamToken) > 0 {
		out = append(out, wire.Bytes(schema.WriteResponseStreamToken, m.StreamToken))
	}
	for _, r := range m.WriteResults {
		out = append(out, nested(schema.WriteResponseWriteResults, r))
	}
	if m.CommitTime != nil {
		out = append(out, nested(schema.WriteResponseCommitTime, m.CommitTime))
	}
	return out
}

func (m *WriteResponse) UnmarshalFields(fields []wire.Field) error {
	*m = WriteResponse{}
	for _, f := range fields {
		var err error
		switch f.Num {
		case schema.WriteResponseStreamID:
			m.StreamID, err = f.Text()
		case schema.WriteResponseStreamToken:
			m.StreamToken, err = f.Bytes()
		case schema.WriteResponseWriteResults:
			r := new(WriteResult)
			if err = unmarshalNested(f, r); err == nil {
				m.WriteResults = append(m.WriteResults, r)
			}
		case schema.WriteResponseCommitTime:
			m.CommitTime, err = decodeTimestamp(f)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *WriteResponse) String() string { return format(m) }
