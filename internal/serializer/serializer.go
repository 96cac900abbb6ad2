// Package serializer maps single domain values to and from wire fields.
//
// Document field values are carried as CBOR using core deterministic
// encoding, so equal values always produce equal bytes.
package serializer

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"github.com/danmuck/docsync/internal/model"
	"github.com/danmuck/docsync/internal/protocol"
	"github.com/danmuck/docsync/internal/protocol/syncpb"
)

var (
	ErrInvalidTimestamp  = errors.New("serializer: invalid timestamp")
	ErrMissingTimestamp  = errors.New("serializer: missing timestamp")
	ErrBadResourceName   = errors.New("serializer: malformed resource name")
	ErrForeignDatabase   = errors.New("serializer: resource name from another database")
	ErrEmptyResponse     = errors.New("serializer: response carries no result")
	ErrUnknownChangeType = errors.New("serializer: unknown target change type")
	ErrFieldValue        = errors.New("serializer: undecodable field value")
)

const (
	minSeconds = -62135596800 // 0001-01-01T00:00:00Z
	maxSeconds = 253402300799 // 9999-12-31T23:59:59Z
	maxNanos   = 999_999_999

	maxValueDepth = 32
	maxValueItems = 1 << 16
)

// Serializer is bound to one database. It holds no mutable state and is
// safe for concurrent use.
type Serializer struct {
	db   model.DatabaseID
	root string
	enc  cbor.EncMode
	dec  cbor.DecMode
}

func New(db model.DatabaseID) (*Serializer, error) {
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("serializer: cbor enc mode: %w", err)
	}
	dec, err := cbor.DecOptions{
		DefaultMapType:   reflect.TypeOf(map[string]any(nil)),
		MaxNestedLevels:  maxValueDepth,
		MaxArrayElements: maxValueItems,
		MaxMapPairs:      maxValueItems,
		DupMapKey:        cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		return nil, fmt.Errorf("serializer: cbor dec mode: %w", err)
	}
	return &Serializer{db: db, root: db.DocumentsRoot(), enc: enc, dec: dec}, nil
}

func (s *Serializer) DatabaseID() model.DatabaseID { return s.db }

func (s *Serializer) EncodeDatabaseID() string { return s.db.Name() }

func (s *Serializer) EncodeTimestamp(v model.SnapshotVersion) *syncpb.Timestamp {
	return &syncpb.Timestamp{Seconds: v.Seconds, Nanos: v.Nanos}
}

// DecodeVersion validates ts and converts it to a version.
func (s *Serializer) DecodeVersion(ts *syncpb.Timestamp) (model.SnapshotVersion, error) {
	if ts == nil {
		return model.NoVersion, ErrMissingTimestamp
	}
	if ts.Nanos < 0 || ts.Nanos > maxNanos {
		return model.NoVersion, fmt.Errorf("%w: nanos=%d", ErrInvalidTimestamp, ts.Nanos)
	}
	if ts.Seconds < minSeconds || ts.Seconds > maxSeconds {
		return model.NoVersion, fmt.Errorf("%w: seconds=%d", ErrInvalidTimestamp, ts.Seconds)
	}
	return model.SnapshotVersion{Seconds: ts.Seconds, Nanos: ts.Nanos}, nil
}

// DecodeSnapshotVersion is DecodeVersion where an absent timestamp means
// NoVersion.
func (s *Serializer) DecodeSnapshotVersion(ts *syncpb.Timestamp) (model.SnapshotVersion, error) {
	if ts == nil {
		return model.NoVersion, nil
	}
	return s.DecodeVersion(ts)
}

// EncodeKey returns the fully qualified document name.
func (s *Serializer) EncodeKey(k model.DocumentKey) string {
	return s.encodePath(k.Path())
}

func (s *Serializer) encodePath(p model.ResourcePath) string {
	if p.Len() == 0 {
		return s.root
	}
	return s.root + "/" + p.String()
}

// DecodeKey parses a fully qualified document name of this database.
func (s *Serializer) DecodeKey(name string) (model.DocumentKey, error) {
	if !strings.HasPrefix(name, "projects/") {
		return model.DocumentKey{}, fmt.Errorf("%w: %q", ErrBadResourceName, name)
	}
	rel, ok := strings.CutPrefix(name, s.root+"/")
	if !ok {
		return model.DocumentKey{}, fmt.Errorf("%w: %q", ErrForeignDatabase, name)
	}
	k, err := model.ParseDocumentKey(rel)
	if err != nil {
		return model.DocumentKey{}, fmt.Errorf("%w: %q: %v", ErrBadResourceName, name, err)
	}
	return k, nil
}

// EncodeFields encodes every value of obj in ascending key order.
// Values must be CBOR encodable; anything else is a programming error.
func (s *Serializer) EncodeFields(obj model.ObjectValue) []*syncpb.FieldEntry {
	keys := obj.Keys()
	if len(keys) == 0 {
		return nil
	}
	out := make([]*syncpb.FieldEntry, 0, len(keys))
	for _, k := range keys {
		b, err := s.enc.Marshal(obj[k])
		protocol.Assertf(err == nil, "serializer: encode field %q: %v", k, err)
		out = append(out, &syncpb.FieldEntry{Key: k, Value: b})
	}
	return out
}

// DecodeFields decodes field entries. A repeated key keeps its last value.
func (s *Serializer) DecodeFields(entries []*syncpb.FieldEntry) (model.ObjectValue, error) {
	out := make(model.ObjectValue, len(entries))
	for _, e := range entries {
		v, err := s.DecodeValue(e.Value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", e.Key, err)
		}
		out[e.Key] = v
	}
	return out, nil
}

func (s *Serializer) DecodeValue(b []byte) (any, error) {
	var v any
	if err := s.dec.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFieldValue, err)
	}
	return v, nil
}

func (s *Serializer) EncodeDocument(k model.DocumentKey, obj model.ObjectValue) *syncpb.Document {
	return &syncpb.Document{Name: s.EncodeKey(k), Fields: s.EncodeFields(obj)}
}

// DecodeFoundDocument converts a wire document into a found MaybeDocument
// versioned by its update time.
func (s *Serializer) DecodeFoundDocument(doc *syncpb.Document) (model.MaybeDocument, error) {
	k, err := s.DecodeKey(doc.Name)
	if err != nil {
		return model.MaybeDocument{}, err
	}
	version, err := s.DecodeVersion(doc.UpdateTime)
	if err != nil {
		return model.MaybeDocument{}, fmt.Errorf("document %s update_time: %w", k, err)
	}
	data, err := s.DecodeFields(doc.Fields)
	if err != nil {
		return model.MaybeDocument{}, fmt.Errorf("document %s: %w", k, err)
	}
	return model.NewFoundDocument(k, version, data), nil
}

// EncodeMutation shapes one mutation as a wire write.
func (s *Serializer) EncodeMutation(m model.Mutation) *syncpb.Write {
	w := new(syncpb.Write)
	switch m.Kind {
	case model.MutationSet:
		w.Update = s.EncodeDocument(m.Key, m.Value)
	case model.MutationPatch:
		w.Update = s.EncodeDocument(m.Key, m.Value)
		mask := append([]string(nil), m.Mask...)
		sort.Strings(mask)
		w.UpdateMask = &syncpb.DocumentMask{FieldPaths: mask}
	case model.MutationDelete:
		w.Delete = s.EncodeKey(m.Key)
	case model.MutationVerify:
		w.Verify = s.EncodeKey(m.Key)
	default:
		protocol.Assertf(false, "serializer: unknown mutation kind %s", m.Kind)
	}
	w.CurrentDocument = s.encodePrecondition(m.Precondition)
	for _, tr := range m.Transforms {
		w.UpdateTransforms = append(w.UpdateTransforms, &syncpb.FieldTransform{
			FieldPath:   tr.FieldPath,
			ServerValue: syncpb.ServerValueRequestTime,
		})
	}
	return w
}

func (s *Serializer) encodePrecondition(p model.Precondition) *syncpb.Precondition {
	switch p.Kind {
	case model.PreconditionExists:
		exists := p.Exists
		return &syncpb.Precondition{Exists: &exists}
	case model.PreconditionUpdateTime:
		return &syncpb.Precondition{UpdateTime: s.EncodeTimestamp(p.UpdateTime)}
	default:
		return nil
	}
}

// DecodeMutationResult decodes one write result. A result without its own
// update time takes the commit version.
func (s *Serializer) DecodeMutationResult(r *syncpb.WriteResult, commit model.SnapshotVersion) (model.MutationResult, error) {
	out := model.MutationResult{CommitVersion: commit, UpdateVersion: commit}
	if r == nil {
		return out, nil
	}
	if r.UpdateTime != nil {
		v, err := s.DecodeVersion(r.UpdateTime)
		if err != nil {
			return model.MutationResult{}, fmt.Errorf("write result update_time: %w", err)
		}
		out.UpdateVersion = v
	}
	if len(r.TransformResults) > 0 {
		out.TransformResults = make([]any, 0, len(r.TransformResults))
		for i, b := range r.TransformResults {
			v, err := s.DecodeValue(b)
			if err != nil {
				return model.MutationResult{}, fmt.Errorf("transform result %d: %w", i, err)
			}
			out.TransformResults = append(out.TransformResults, v)
		}
	}
	return out, nil
}

// DecodeMaybeDocument decodes one lookup chunk. A found document takes its
// update time as version; a missing one takes the chunk's read time.
func (s *Serializer) DecodeMaybeDocument(resp *syncpb.BatchGetDocumentsResponse) (model.MaybeDocument, error) {
	switch {
	case resp.Found != nil:
		return s.DecodeFoundDocument(resp.Found)
	case resp.Missing != "":
		k, err := s.DecodeKey(resp.Missing)
		if err != nil {
			return model.MaybeDocument{}, err
		}
		version, err := s.DecodeVersion(resp.ReadTime)
		if err != nil {
			return model.MaybeDocument{}, fmt.Errorf("missing document %s read_time: %w", k, err)
		}
		return model.NewMissingDocument(k, version), nil
	default:
		return model.MaybeDocument{}, fmt.Errorf("%w: lookup chunk has neither found nor missing", ErrEmptyResponse)
	}
}
