package syncpb

import (
	"github.com/danmuck/docsync/internal/protocol/schema"
	"github.com/danmuck/docsync/internal/protocol/wire"
)

type QueryTarget struct {
	Parent         string
	CollectionID   string
	AllDescendants bool
	Limit          int32
}

func (m *QueryTarget) MessageType() schema.MessageType { return schema.MsgQueryTarget }

func (m *QueryTarget) MarshalFields() []wire.Field {
	if m == nil {
		return nil
	}
	var out []wire.Field
	if m.Parent != "" {
		out = append(out, wire.String(schema.QueryTargetParent, m.Parent))
	}
	if m.CollectionID != "" {
		out = append(out, wire.String(schema.QueryTargetCollectionID, m.CollectionID))
	}
	if m.AllDescendants {
		out = append(out, wire.Bool(schema.QueryTargetAllDescendants, true))
	}
	if m.Limit != 0 {
		out = append(out, wire.Int32(schema.QueryTargetLimit, m.Limit))
	}
	return out
}

func (m *QueryTarget) UnmarshalFields(fields []wire.Field) error {
	*m = QueryTarget{}
	for _, f := range fields {
		var err error
		switch f.Num {
		case schema.QueryTargetParent:
			m.Parent, err = f.Text()
		case schema.QueryTargetCollectionID:
			m.CollectionID, err = f.Text()
		case schema.QueryTargetAllDescendants:
			m.AllDescendants, err = f.Bool()
		case schema.QueryTargetLimit:
			m.Limit, err = f.Int32()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *QueryTarget) String() string { return format(m) }

type DocumentsTarget struct {
	Documents []string
}

func (m *DocumentsTarget) MessageType() schema.MessageType { return schema.MsgDocumentsTarget }

func (m *DocumentsTarget) MarshalFields() []wire.Field {
	if m == nil {
		return nil
	}
	return appendStrings(nil, schema.DocumentsTargetDocuments, m.Documents)
}

func (m *DocumentsTarget) UnmarshalFields(fields []wire.Field) error {
	*m = DocumentsTarget{}
	for _, f := range fields {
		if f.Num != schema.DocumentsTargetDocuments {
			continue
		}
		name, err := f.Text()
		if err != nil {
			return err
		}
		m.Documents = append(m.Documents, name)
	}
	return nil
}

func (m *DocumentsTarget) String() string { return format(m) }

// Target is a watch target definition. Query and Documents are exclusive,
// as are ResumeToken and ReadTime.
type Target struct {
	Query       *QueryTarget
	Documents   *DocumentsTarget
	ResumeToken []byte
	ReadTime    *Timestamp
	TargetID    int32
	Once        bool
}

func (m *Target) MessageType() schema.MessageType { return schema.MsgTarget }

func (m *Target) MarshalFields() []wire.Field {
	if m == nil {
		return nil
	}
	var out []wire.Field
	switch {
	case m.Query != nil:
		out = append(out, nested(schema.TargetQuery, m.Query))
	case m.Documents != nil:
		out = append(out, nested(schema.TargetDocuments, m.Documents))
	}
	if len(m.ResumeToken) > 0 {
		out = append(out, wire.Bytes(schema.TargetResumeToken, m.ResumeToken))
	}
	if m.TargetID != 0 {
		out = append(out, wire.Int32(schema.TargetTargetID, m.TargetID))
	}
	if m.Once {
		out = append(out, wire.Bool(schema.TargetOnce, true))
	}
	if len(m.ResumeToken) == 0 && m.ReadTime != nil {
		out = append(out, nested(schema.TargetReadTime, m.ReadTime))
	}
	return out
}

func (m *Target) UnmarshalFields(fields []wire.Field) error {
	*m = Target{}
	for _, f := range fields {
		var err error
		switch f.Num {
		case schema.TargetQuery:
			q := new(QueryTarget)
			if err = unmarshalNested(f, q); err == nil {
				m.Query, m.Documents = q, nil
			}
		case schema.TargetDocuments:
			d := new(DocumentsTarget)
			if err = unmarshalNested(f, d); err == nil {
				m.Query, m.Documents = nil, d
			}
		case schema.TargetResumeToken:
			var tok []byte
			if tok, err = f.Bytes(); err == nil {
				m.ResumeToken, m.ReadTime = tok, nil
			}
		case schema.TargetReadTime:
			var ts *Timestamp
			if ts, err = decodeTimestamp(f); err == nil {
				m.ResumeToken, m.ReadTime = nil, ts
			}
		case schema.TargetTargetID:
			m.TargetID, err = f.Int32()
		case schema.TargetOnce:
			m.Once, err = f.Bool()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *Target) String() string { return format(m) }

// ListenRequest opens or closes one watch target. Exactly one of AddTarget
// or RemoveTarget is set.
type ListenRequest struct {
	Database     string
	AddTarget    *Target
	RemoveTarget *int32
	Labels       []*Label
}

func (m *ListenRequest) MessageType() schema.MessageType { return schema.MsgListenRequest }

func (m *ListenRequest) MarshalFields() []wire.Field {
	if m == nil {
		return nil
	}
	var out []wire.Field
	if m.Database != "" {
		out = append(out, wire.String(schema.ListenRequestDatabase, m.Database))
	}
	switch {
	case m.AddTarget != nil:
		out = append(out, nested(schema.ListenRequestAddTarget, m.AddTarget))
	case m.RemoveTarget != nil:
		out = append(out, wire.Int32(schema.ListenRequestRemoveTarget, *m.RemoveTarget))
	}
	return appendLabels(out, schema.ListenRequestLabels, m.Labels)
}

func (m *ListenRequest) UnmarshalFields(fields []wire.Field) error {
	*m = ListenRequest{}
	for _, f := range fields {
		var err error
		switch f.Num {
		case schema.ListenRequestDatabase:
			m.Database, err = f.Text()
		case schema.ListenRequestAddTarget:
			target := new(Target)
			if err = unmarshalNested(f, target); err == nil {
				m.AddTarget, m.RemoveTarget = target, nil
			}
		case schema.ListenRequestRemoveTarget:
			var id int32
			if id, err = f.Int32(); err == nil {
				m.AddTarget, m.RemoveTarget = nil, &id
			}
		case schema.ListenRequestLabels:
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

func (m *ListenRequest) String() string { return format(m) }

// TargetChangeType is the kind of a target change.
type TargetChangeType int32

const (
	TargetChangeNoChange TargetChangeType = 0
	TargetChangeAdd      TargetChangeType = 1
	TargetChangeRemove   TargetChangeType = 2
	TargetChangeCurrent  TargetChangeType = 3
	TargetChangeReset    TargetChangeType = 4
)

type TargetChange struct {
	Type        TargetChangeType
	TargetIDs   []int32
	Cause       *Status
	ResumeToken []byte
	ReadTime    *Timestamp
}

func (m *TargetChange) MessageType() schema.MessageType { return schema.MsgTargetChange }

func (m *TargetChange) MarshalFields() []wire.Field {
	if m == nil {
		return nil
	}
	var out []wire.Field
	if m.Type != TargetChangeNoChange {
		out = append(out, wire.Int32(schema.TargetChangeType, int32(m.Type)))
	}
	if len(m.TargetIDs) > 0 {
		out = append(out, wire.PackedInt32s(schema.TargetChangeTargetIDs, m.TargetIDs))
	}
	if m.Cause != nil {
		out = append(out, nested(schema.TargetChangeCause, m.Cause))
	}
	if len(m.ResumeToken) > 0 {
		out = append(out, wire.Bytes(schema.TargetChangeResumeToken, m.ResumeToken))
	}
	if m.ReadTime != nil {
		out = append(out, nested(schema.TargetChangeReadTime, m.ReadTime))
	}
	return out
}

func (m *TargetChange) UnmarshalFields(fields []wire.Field) error {
	*m = TargetChange{}
	ids, err := wire.Int32s(fields, schema.TargetChangeTargetIDs)
	if err != nil {
		return err
	}
	m.TargetIDs = ids
	for _, f := range fields {
		switch f.Num {
		case schema.TargetChangeType:
			var v int32
			if v, err = f.Int32(); err == nil {
				m.Type = TargetChangeType(v)
			}
		case schema.TargetChangeCause:
			cause := new(Status)
			if err = unmarshalNested(f, cause); err == nil {
				m.Cause = cause
			}
		case schema.TargetChangeResumeToken:
			m.ResumeToken, err = f.Bytes()
		case schema.TargetChangeReadTime:
			m.ReadTime, err = decodeTimestamp(f)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *TargetChange) String() string { return format(m) }

type DocumentChange struct {
	Document         *Document
	TargetIDs        []int32
	RemovedTargetIDs []int32
}

func (m *DocumentChange) MessageType() schema.MessageType { return schema.MsgDocumentChange }

func (m *DocumentChange) MarshalFields() []wire.Field {
	if m == nil {
		return nil
	}
	var out []wire.Field
	if m.Document != nil {
		out = append(out, nested(schema.DocumentChangeDocument, m.Document))
	}
	if len(m.TargetIDs) > 0 {
		out = append(out, wire.PackedInt32s(schema.DocumentChangeTargetIDs, m.TargetIDs))
	}
	if len(m.RemovedTargetIDs) > 0 {
		out = append(out, wire.PackedInt32s(schema.DocumentChangeRemovedTargetIDs, m.RemovedTargetIDs))
	}
	return out
}

func (m *DocumentChange) UnmarshalFields(fields []wire.Field) error {
	*m = DocumentChange{}
	var err error
	if m.TargetIDs, err = wire.Int32s(fields, schema.DocumentChangeTargetIDs); err != nil {
		return err
	}
	if m.RemovedTargetIDs, err = wire.Int32s(fields, schema.DocumentChangeRemovedTargetIDs); err != nil {
		return err
	}
	if f, ok := wire.GetField(fields, schema.DocumentChangeDocument); ok {
		doc := new(Document)
		if err := unmarshalNested(f, doc); err != nil {
			return err
		}
		m.Document = doc
	}
	return nil
}

func (m *DocumentChange) String() string { return format(m) }

type DocumentDelete struct {
	Document         string
	RemovedTargetIDs []int32
	ReadTime         *Timestamp
}

func (m *DocumentDelete) MessageType() schema.MessageType { return schema.MsgDocumentDelete }

func (m *DocumentDelete) MarshalFields() []wire.Field {
	if m == nil {
		return nil
	}
	out := []wire.Field{wire.String(schema.DocumentDeleteDocument, m.Document)}
	if m.ReadTime != nil {
		out = append(out, nested(schema.DocumentDeleteReadTime, m.ReadTime))
	}
	if len(m.RemovedTargetIDs) > 0 {
		out = append(out, wire.PackedInt32s(schema.DocumentDeleteRemovedTargetIDs, m.RemovedTargetIDs))
	}
	return out
}

func (m *DocumentDelete) UnmarshalFields(fields []wire.Field) error {
	*m = DocumentDelete{}
	var err error
	if m.RemovedTargetIDs, err = wire.Int32s(fields, schema.DocumentDeleteRemovedTargetIDs); err != nil {
		return err
	}
	for _, f := range fields {
		switch f.Num {
		case schema.DocumentDeleteDocument:
			m.Document, err = f.Text()
		case schema.DocumentDeleteReadTime:
			m.ReadTime, err = decodeTimestamp(f)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *DocumentDelete) String() string { return format(m) }

type DocumentRemove struct {
	Document         string
	RemovedTargetIDs []int32
	ReadTime         *Timestamp
}

func (m *DocumentRemove) MessageType() schema.MessageType { return schema.MsgDocumentRemove }

func (m *DocumentRemove) MarshalFields() []wire.Field {
	if m == nil {
		return nil
	}
	out := []wire.Field{wire.String(schema.DocumentRemoveDocument, m.Document)}
	if len(m.RemovedTargetIDs) > 0 {
		out = append(out, wire.PackedInt32s(schema.DocumentRemoveRemovedTargetIDs, m.RemovedTargetIDs))
	}
	if m.ReadTime != nil {
		out = append(out, nested(schema.DocumentRemoveReadTime, m.ReadTime))
	}
	return out
}

func (m *DocumentRemove) UnmarshalFields(fields []wire.Field) error {
	*m = DocumentRemove{}
	var err error
	if m.RemovedTargetIDs, err = wire.Int32s(fields, schema.DocumentRemoveRemovedTargetIDs); err != nil {
		return err
	}
	for _, f := range fields {
		switch f.Num {
		case schema.DocumentRemoveDocument:
			m.Document, err = f.Text()
		case schema.DocumentRemoveReadTime:
			m.ReadTime, err = decodeTimestamp(f)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *DocumentRemove) String() string { return format(m) }

// ExistenceFilter reports how many documents the server holds for a target.
type ExistenceFilter struct {
	TargetID int32
	Count    int32
}

func (m *ExistenceFilter) MessageType() schema.MessageType { return schema.MsgExistenceFilter }

func (m *ExistenceFilter) MarshalFields() []wire.Field {
	if m == nil {
		return nil
	}
	var out []wire.Field
	if m.TargetID != 0 {
		out = append(out, wire.Int32(schema.ExistenceFilterTargetID, m.TargetID))
	}
	if m.Count != 0 {
		out = append(out, wire.Int32(schema.ExistenceFilterCount, m.Count))
	}
	return out
}

func (m *ExistenceFilter) UnmarshalFields(fields []wire.Field) error {
	*m = ExistenceFilter{}
	for _, f := range fields {
		var err error
		switch f.Num {
		case schema.ExistenceFilterTargetID:
			m.TargetID, err = f.Int32()
		case schema.ExistenceFilterCount:
			m.Count, err = f.Int32()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *ExistenceFilter) String() string { return format(m) }

// ListenResponse carries one watch event. At most one field is set; when
// several arrive the last one on the wire wins.
type ListenResponse struct {
	TargetChange   *TargetChange
	DocumentChange *DocumentChange
	DocumentDelete *DocumentDelete
	DocumentRemove *DocumentRemove
	Filter         *ExistenceFilter
}

func (m *ListenResponse) MessageType() schema.MessageType { return schema.MsgListenResponse }

func (m *ListenResponse) MarshalFields() []wire.Field {
	switch {
	case m == nil:
		return nil
	case m.TargetChange != nil:
		return []wire.Field{nested(schema.ListenResponseTargetChange, m.TargetChange)}
	case m.DocumentChange != nil:
		return []wire.Field{nested(schema.ListenResponseDocumentChange, m.DocumentChange)}
	case m.DocumentDelete != nil:
		return []wire.Field{nested(schema.ListenResponseDocumentDelete, m.DocumentDelete)}
	case m.Filter != nil:
		return []wire.Field{nested(schema.ListenResponseFilter, m.Filter)}
	case m.DocumentRemove != nil:
		return []wire.Field{nested(schema.ListenResponseDocumentRemove, m.DocumentRemove)}
	default:
		return nil
	}
}

func (m *ListenResponse) UnmarshalFields(fields []wire.Field) error {
	*m = ListenResponse{}
	for _, f := range fields {
		var err error
		switch f.Num {
		case schema.ListenResponseTargetChange:
			v := new(TargetChange)
			if err = unmarshalNested(f, v); err == nil {
				*m = ListenResponse{TargetChange: v}
			}
		case schema.ListenResponseDocumentChange:
			v := new(DocumentChange)
			if err = unmarshalNested(f, v); err == nil {
				*m = ListenResponse{DocumentChange: v}
			}
		case schema.ListenResponseDocumentDelete:
			v := new(DocumentDelete)
			if err = unmarshalNested(f, v); err == nil {
				*m = ListenResponse{DocumentDelete: v}
			}
		case schema.ListenResponseFilter:
			v := new(ExistenceFilter)
			if err = unmarshalNested(f, v); err == nil {
				*m = ListenResponse{Filter: v}
			}
		case schema.ListenResponseDocumentRemove:
			v := new(DocumentRemove)
			if err = unmarshalNested(f, v); err == nil {
				*m = ListenResponse{DocumentRemove: v}
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *ListenResponse) String() string { return format(m) }
