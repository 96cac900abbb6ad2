package syncpb

import (
	"github.com/danmuck/docsync/internal/protocol/schema"
	"github.com/danmuck/docsync/internal/protocol/wire"
)

type Timestamp struct {
	Seconds int64
	Nanos   int32
}

func (m *Timestamp) MessageType() schema.MessageType { return schema.MsgTimestamp }

func (m *Timestamp) MarshalFields() []wire.Field {
	if m == nil {
		return nil
	}
	var out []wire.Field
	if m.Seconds != 0 {
		out = append(out, wire.Int64(schema.TimestampSeconds, m.Seconds))
	}
	if m.Nanos != 0 {
		out = append(out, wire.Int32(schema.TimestampNanos, m.Nanos))
	}
	return out
}

func (m *Timestamp) UnmarshalFields(fields []wire.Field) error {
	*m = Timestamp{}
	for _, f := range fields {
		var err error
		switch f.Num {
		case schema.TimestampSeconds:
			m.Seconds, err = f.Int64()
		case schema.TimestampNanos:
			m.Nanos, err = f.Int32()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *Timestamp) String() string { return format(m) }

// Status is an error status attached to a target change.
type Status struct {
	Code    int32
	Message string
}

func (m *Status) MessageType() schema.MessageType { return schema.MsgStatus }

func (m *Status) MarshalFields() []wire.Field {
	if m == nil {
		return nil
	}
	var out []wire.Field
	if m.Code != 0 {
		out = append(out, wire.Int32(schema.StatusCode, m.Code))
	}
	if m.Message != "" {
		out = append(out, wire.String(schema.StatusMessage, m.Message))
	}
	return out
}

func (m *Status) UnmarshalFields(fields []wire.Field) error {
	*m = Status{}
	for _, f := range fields {
		var err error
		switch f.Num {
		case schema.StatusCode:
			m.Code, err = f.Int32()
		case schema.StatusMessage:
			m.Message, err = f.Text()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *Status) String() string { return format(m) }

// FieldEntry is one top-level document field. Value holds the field's
// encoded value and is opaque at this layer.
type FieldEntry struct {
	Key   string
	Value []byte
}

func (m *FieldEntry) MessageType() schema.MessageType { return schema.MsgFieldEntry }

func (m *FieldEntry) MarshalFields() []wire.Field {
	if m == nil {
		return nil
	}
	out := []wire.Field{wire.String(schema.FieldEntryKey, m.Key)}
	if len(m.Value) > 0 {
		out = append(out, wire.Bytes(schema.FieldEntryValue, m.Value))
	}
	return out
}

func (m *FieldEntry) UnmarshalFields(fields []wire.Field) error {
	*m = FieldEntry{}
	for _, f := range fields {
		var err error
		switch f.Num {
		case schema.FieldEntryKey:
			m.Key, err = f.Text()
		case schema.FieldEntryValue:
			m.Value, err = f.Bytes()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *FieldEntry) String() string { return format(m) }

type Document struct {
	Name       string
	Fields     []*FieldEntry
	CreateTime *Timestamp
	UpdateTime *Timestamp
}

func (m *Document) MessageType() schema.MessageType { return schema.MsgDocument }

func (m *Document) MarshalFields() []wire.Field {
	if m == nil {
		return nil
	}
	out := []wire.Field{wire.String(schema.DocumentName, m.Name)}
	for _, e := range m.Fields {
		out = append(out, nested(schema.DocumentFields, e))
	}
	if m.CreateTime != nil {
		out = append(out, nested(schema.DocumentCreateTime, m.CreateTime))
	}
	if m.UpdateTime != nil {
		out = append(out, nested(schema.DocumentUpdateTime, m.UpdateTime))
	}
	return out
}

func (m *Document) UnmarshalFields(fields []wire.Field) error {
	*m = Document{}
	for _, f := range fields {
		var err error
		switch f.Num {
		case schema.DocumentName:
			m.Name, err = f.Text()
		case schema.DocumentFields:
			e := new(FieldEntry)
			if err = unmarshalNested(f, e); err == nil {
				m.Fields = append(m.Fields, e)
			}
		case schema.DocumentCreateTime:
			m.CreateTime, err = decodeTimestamp(f)
		case schema.DocumentUpdateTime:
			m.UpdateTime, err = decodeTimestamp(f)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *Document) String() string { return format(m) }

type DocumentMask struct {
	FieldPaths []string
}

func (m *DocumentMask) MessageType() schema.MessageType { return schema.MsgDocumentMask }

func (m *DocumentMask) MarshalFields() []wire.Field {
	if m == nil {
		return nil
	}
	return appendStrings(nil, schema.DocumentMaskFieldPaths, m.FieldPaths)
}

func (m *DocumentMask) UnmarshalFields(fields []wire.Field) error {
	*m = DocumentMask{}
	for _, f := range fields {
		if f.Num != schema.DocumentMaskFieldPaths {
			continue
		}
		p, err := f.Text()
		if err != nil {
			return err
		}
		m.FieldPaths = append(m.FieldPaths, p)
	}
	return nil
}

func (m *DocumentMask) String() string { return format(m) }

// Precondition carries at most one of Exists or UpdateTime.
type Precondition struct {
	Exists     *bool
	UpdateTime *Timestamp
}

func (m *Precondition) MessageType() schema.MessageType { return schema.MsgPrecondition }

func (m *Precondition) MarshalFields() []wire.Field {
	switch {
	case m == nil:
		return nil
	case m.Exists != nil:
		return []wire.Field{wire.Bool(schema.PreconditionExists, *m.Exists)}
	case m.UpdateTime != nil:
		return []wire.Field{nested(schema.PreconditionUpdateTime, m.UpdateTime)}
	default:
		return nil
	}
}

func (m *Precondition) UnmarshalFields(fields []wire.Field) error {
	*m = Precondition{}
	for _, f := range fields {
		switch f.Num {
		case schema.PreconditionExists:
			v, err := f.Bool()
			if err != nil {
				return err
			}
			m.Exists, m.UpdateTime = &v, nil
		case schema.PreconditionUpdateTime:
			ts, err := decodeTimestamp(f)
			if err != nil {
				return err
			}
			m.Exists, m.UpdateTime = nil, ts
		}
	}
	return nil
}

func (m *Precondition) String() string { return format(m) }

// ServerValue names a value the server fills in at commit time.
type ServerValue int32

const (
	ServerValueUnspecified ServerValue = 0
	ServerValueRequestTime ServerValue = 1
)

type FieldTransform struct {
	FieldPath   string
	ServerValue ServerValue
}

func (m *FieldTransform) MessageType() schema.MessageType { return schema.MsgFieldTransform }

func (m *FieldTransform) MarshalFields() []wire.Field {
	if m == nil {
		return nil
	}
	out := []wire.Field{wire.String(schema.FieldTransformFieldPath, m.FieldPath)}
	if m.ServerValue != ServerValueUnspecified {
		out = append(out, wire.Int32(schema.FieldTransformServerValue, int32(m.ServerValue)))
	}
	return out
}

func (m *FieldTransform) UnmarshalFields(fields []wire.Field) error {
	*m = FieldTransform{}
	for _, f := range fields {
		var err error
		switch f.Num {
		case schema.FieldTransformFieldPath:
			m.FieldPath, err = f.Text()
		case schema.FieldTransformServerValue:
			var v int32
			v, err = f.Int32()
			m.ServerValue = ServerValue(v)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *FieldTransform) String() string { return format(m) }

// Write is one mutation on the wire. Exactly one of Update, Delete or
// Verify names the operation.
type Write struct {
	Update           *Document
	Delete           string
	Verify           string
	UpdateMask       *DocumentMask
	CurrentDocument  *Precondition
	UpdateTransforms []*FieldTransform
}

func (m *Write) MessageType() schema.MessageType { return schema.MsgWrite }

func (m *Write) MarshalFields() []wire.Field {
	if m == nil {
		return nil
	}
	var out []wire.Field
	switch {
	case m.Update != nil:
		out = append(out, nested(schema.WriteUpdate, m.Update))
	case m.Delete != "":
		out = append(out, wire.String(schema.WriteDelete, m.Delete))
	}
	if m.UpdateMask != nil {
		out = append(out, nested(schema.WriteUpdateMask, m.UpdateMask))
	}
	if m.CurrentDocument != nil {
		out = append(out, nested(schema.WriteCurrentDocument, m.CurrentDocument))
	}
	if m.Update == nil && m.Delete == "" && m.Verify != "" {
		out = append(out, wire.String(schema.WriteVerify, m.Verify))
	}
	for _, tr := range m.UpdateTransforms {
		out = append(out, nested(schema.WriteUpdateTransforms, tr))
	}
	return out
}

func (m *Write) UnmarshalFields(fields []wire.Field) error {
	*m = Write{}
	for _, f := range fields {
		var err error
		switch f.Num {
		case schema.WriteUpdate:
			doc := new(Document)
			if err = unmarshalNested(f, doc); err == nil {
				m.Update, m.Delete, m.Verify = doc, "", ""
			}
		case schema.WriteDelete:
			var name string
			if name, err = f.Text(); err == nil {
				m.Update, m.Delete, m.Verify = nil, name, ""
			}
		case schema.WriteVerify:
			var name string
			if name, err = f.Text(); err == nil {
				m.Update, m.Delete, m.Verify = nil, "", name
			}
		case schema.WriteUpdateMask:
			mask := new(DocumentMask)
			if err = unmarshalNested(f, mask); err == nil {
				m.UpdateMask = mask
			}
		case schema.WriteCurrentDocument:
			pre := new(Precondition)
			if err = unmarshalNested(f, pre); err == nil {
				m.CurrentDocument = pre
			}
		case schema.WriteUpdateTransforms:
			tr := new(FieldTransform)
			if err = unmarshalNested(f, tr); err == nil {
				m.UpdateTransforms = append(m.UpdateTransforms, tr)
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *Write) String() string { return format(m) }

type WriteResult struct {
	UpdateTime       *Timestamp
	TransformResults [][]byte
}

func (m *WriteResult) MessageType() schema.MessageType { return schema.MsgWriteResult }

func (m *WriteResult) MarshalFields() []wire.Field {
	if m == nil {
		return nil
	}
	var out []wire.Field
	if m.UpdateTime != nil {
		out = append(out, nested(schema.WriteResultUpdateTime, m.UpdateTime))
	}
	for _, v := range m.TransformResults {
		out = append(out, wire.Bytes(schema.WriteResultTransformResults, v))
	}
	return out
}

func (m *WriteResult) UnmarshalFields(fields []wire.Field) error {
	*m = WriteResult{}
	for _, f := range fields {
		switch f.Num {
		case schema.WriteResultUpdateTime:
			ts, err := decodeTimestamp(f)
			if err != nil {
				return err
			}
			m.UpdateTime = ts
		case schema.WriteResultTransformResults:
			v, err := f.Bytes()
			if err != nil {
				return err
			}
			m.TransformResults = append(m.TransformResults, v)
		}
	}
	return nil
}

func (m *WriteResult) String() string { return format(m) }

// Label is one entry of a string to string label mapping.
type Label struct {
	Key   string
	Value string
}

func (m *Label) MessageType() schema.MessageType { return schema.MsgLabelEntry }

func (m *Label) MarshalFields() []wire.Field {
	if m == nil {
		return nil
	}
	out := []wire.Field{wire.String(schema.LabelEntryKey, m.Key)}
	if m.Value != "" {
		out = append(out, wire.String(schema.LabelEntryValue, m.Value))
	}
	return out
}

func (m *Label) UnmarshalFields(fields []wire.Field) error {
	*m = Label{}
	for _, f := range fields {
		var err error
		switch f.Num {
		case schema.LabelEntryKey:
			m.Key, err = f.Text()
		case schema.LabelEntryValue:
			m.Value, err = f.Text()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *Label) String() string { return format(m) }
