package syncpb

import (
	"github.com/danmuck/docsync/internal/protocol/schema"
	"github.com/danmuck/docsync/internal/protocol/wire"
)

type CommitRequest struct {
	Database    string
	Writes      []*Write
	Transaction []byte
}

func (m *CommitRequest) MessageType() schema.MessageType { return schema.MsgCommitRequest }

func (m *CommitRequest) MarshalFields() []wire.Field {
	if m == nil {
		return nil
	}
	var out []wire.Field
	if m.Database != "" {
		out = append(out, wire.String(schema.CommitRequestDatabase, m.Database))
	}
	for _, w := range m.Writes {
		out = append(out, nested(schema.CommitRequestWrites, w))
	}
	if len(m.Transaction) > 0 {
		out = append(out, wire.Bytes(schema.CommitRequestTransaction, m.Transaction))
	}
	return out
}

func (m *CommitRequest) UnmarshalFields(fields []wire.Field) error {
	*m = CommitRequest{}
	for _, f := range fields {
		var err error
		switch f.Num {
		case schema.CommitRequestDatabase:
			m.Database, err = f.Text()
		case schema.CommitRequestWrites:
			w := new(Write)
			if err = unmarshalNested(f, w); err == nil {
				m.Writes = append(m.Writes, w)
			}
		case schema.CommitRequestTransaction:
			m.Transaction, err = f.Bytes()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *CommitRequest) String() string { return format(m) }

type CommitResponse struct {
	WriteResults []*WriteResult
	CommitTime   *Timestamp
}

func (m *CommitResponse) MessageType() schema.MessageType { return schema.MsgCommitResponse }

func (m *CommitResponse) MarshalFields() []wire.Field {
	if m == nil {
		return nil
	}
	var out []wire.Field
	for _, r := range m.WriteResults {
		out = append(out, nested(schema.CommitResponseWriteResults, r))
	}
	if m.CommitTime != nil {
		out = append(out, nested(schema.CommitResponseCommitTime, m.CommitTime))
	}
	return out
}

func (m *CommitResponse) UnmarshalFields(fields []wire.Field) error {
	*m = CommitResponse{}
	for _, f := range fields {
		var err error
		switch f.Num {
		case schema.CommitResponseWriteResults:
			r := new(WriteResult)
			if err = unmarshalNested(f, r); err == nil {
				m.WriteResults = append(m.WriteResults, r)
			}
		case schema.CommitResponseCommitTime:
			m.CommitTime, err = decodeTimestamp(f)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *CommitResponse) String() string { return format(m) }

type BatchGetDocumentsRequest struct {
	Database    string
	Documents   []string
	Transaction []byte
}

func (m *BatchGetDocumentsRequest) MessageType() schema.MessageType {
	return schema.MsgBatchGetDocumentsRequest
}

func (m *BatchGetDocumentsRequest) MarshalFields() []wire.Field {
	if m == nil {
		return nil
	}
	var out []wire.Field
	if m.Database != "" {
		out = append(out, wire.String(schema.BatchGetRequestDatabase, m.Database))
	}
	out = appendStrings(out, schema.BatchGetRequestDocuments, m.Documents)
	if len(m.Transaction) > 0 {
		out = append(out, wire.Bytes(schema.BatchGetRequestTransaction, m.Transaction))
	}
	return out
}

func (m *BatchGetDocumentsRequest) UnmarshalFields(fields []wire.Field) error {
	*m = BatchGetDocumentsRequest{}
	for _, f := range fields {
		var err error
		switch f.Num {
		case schema.BatchGetRequestDatabase:
			m.Database, err = f.Text()
		case schema.BatchGetRequestDocuments:
			var name string
			if name, err = f.Text(); err == nil {
				m.Documents = append(m.Documents, name)
			}
		case schema.BatchGetRequestTransaction:
			m.Transaction, err = f.Bytes()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *BatchGetDocumentsRequest) String() string { return format(m) }

// BatchGetDocumentsResponse is one streamed lookup chunk. It carries either
// a Found document or the name of a Missing one.
type BatchGetDocumentsResponse struct {
	Found       *Document
	Missing     string
	Transaction []byte
	ReadTime    *Timestamp
}

func (m *BatchGetDocumentsResponse) MessageType() schema.MessageType {
	return schema.MsgBatchGetDocumentsResponse
}

func (m *BatchGetDocumentsResponse) MarshalFields() []wire.Field {
	if m == nil {
		return nil
	}
	var out []wire.Field
	switch {
	case m.Found != nil:
		out = append(out, nested(schema.BatchGetResponseFound, m.Found))
	case m.Missing != "":
		out = append(out, wire.String(schema.BatchGetResponseMissing, m.Missing))
	}
	if len(m.Transaction) > 0 {
		out = append(out, wire.Bytes(schema.BatchGetResponseTransaction, m.Transaction))
	}
	if m.ReadTime != nil {
		out = append(out, nested(schema.BatchGetResponseReadTime, m.ReadTime))
	}
	return out
}

func (m *BatchGetDocumentsResponse) UnmarshalFields(fields []wire.Field) error {
	*m = BatchGetDocumentsResponse{}
	for _, f := range fields {
		var err error
		switch f.Num {
		case schema.BatchGetResponseFound:
			doc := new(Document)
			if err = unmarshalNested(f, doc); err == nil {
				m.Found, m.Missing = doc, ""
			}
		case schema.BatchGetResponseMissing:
			var name string
			if name, err = f.Text(); err == nil {
				m.Found, m.Missing = nil, name
			}
		case schema.BatchGetResponseTransaction:
			m.Transaction, err = f.Bytes()
		case schema.BatchGetResponseReadTime:
			m.ReadTime, err = decodeTimestamp(f)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *BatchGetDocumentsResponse) String() string { return format(m) }
