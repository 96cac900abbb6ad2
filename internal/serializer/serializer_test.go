package serializer

import (
	"bytes"
	"errors"
	"testing"

	"github.com/danmuck/docsync/internal/model"
	"github.com/danmuck/docsync/internal/protocol"
	"github.com/danmuck/docsync/internal/protocol/syncpb"
	"github.com/danmuck/docsync/internal/testutil/testlog"
)

func newTestSerializer(t *testing.T) *Serializer {
	t.Helper()
	s, err := New(model.NewDatabaseID("p", ""))
	if err != nil {
		t.Fatalf("new serializer: %v", err)
	}
	return s
}

func TestEncodeKeyRoundTrip(t *testing.T) {
	testlog.Start(t)
	s := newTestSerializer(t)
	k := model.MustDocumentKey("rooms/a")
	name := s.EncodeKey(k)
	if name != "projects/p/databases/(default)/documents/rooms/a" {
		t.Fatalf("unexpected name %q", name)
	}
	got, err := s.DecodeKey(name)
	if err != nil || !got.Equal(k) {
		t.Fatalf("decode key: %v %v", got, err)
	}
}

func TestDecodeKeyRejectsForeignAndMalformedNames(t *testing.T) {
	testlog.Start(t)
	s := newTestSerializer(t)
	if _, err := s.DecodeKey("projects/q/databases/(default)/documents/rooms/a"); !errors.Is(err, ErrForeignDatabase) {
		t.Fatalf("expected ErrForeignDatabase, got %v", err)
	}
	if _, err := s.DecodeKey("rooms/a"); !errors.Is(err, ErrBadResourceName) {
		t.Fatalf("expected ErrBadResourceName, got %v", err)
	}
	if _, err := s.DecodeKey("projects/p/databases/(default)/documents/rooms"); !errors.Is(err, ErrBadResourceName) {
		t.Fatalf("expected ErrBadResourceName for collection path, got %v", err)
	}
}

func TestDecodeVersionValidatesRange(t *testing.T) {
	testlog.Start(t)
	s := newTestSerializer(t)
	if _, err := s.DecodeVersion(nil); !errors.Is(err, ErrMissingTimestamp) {
		t.Fatalf("expected ErrMissingTimestamp, got %v", err)
	}
	if _, err := s.DecodeVersion(&syncpb.Timestamp{Nanos: -1}); !errors.Is(err, ErrInvalidTimestamp) {
		t.Fatalf("expected ErrInvalidTimestamp for nanos, got %v", err)
	}
	if _, err := s.DecodeVersion(&syncpb.Timestamp{Seconds: maxSeconds + 1}); !errors.Is(err, ErrInvalidTimestamp) {
		t.Fatalf("expected ErrInvalidTimestamp for seconds, got %v", err)
	}
	v, err := s.DecodeSnapshotVersion(nil)
	if err != nil || !v.IsNone() {
		t.Fatalf("expected NoVersion, got %v %v", v, err)
	}
}

func TestFieldsAreDeterministic(t *testing.T) {
	testlog.Start(t)
	s := newTestSerializer(t)
	obj := model.ObjectValue{
		"b": map[string]any{"y": "1", "x": "2"},
		"a": "hello",
	}
	first := s.EncodeFields(obj)
	second := s.EncodeFields(obj)
	if len(first) != 2 || first[0].Key != "a" || first[1].Key != "b" {
		t.Fatalf("expected sorted entries, got %v", first)
	}
	for i := range first {
		if !bytes.Equal(first[i].Value, second[i].Value) {
			t.Fatalf("non deterministic encoding for %s", first[i].Key)
		}
	}
	got, err := s.DecodeFields(first)
	if err != nil {
		t.Fatalf("decode fields: %v", err)
	}
	if got["a"] != "hello" {
		t.Fatalf("unexpected a=%v", got["a"])
	}
	nested, ok := got["b"].(map[string]any)
	if !ok || nested["x"] != "2" {
		t.Fatalf("unexpected b=%#v", got["b"])
	}
}

func TestDecodeFieldsRejectsGarbage(t *testing.T) {
	testlog.Start(t)
	s := newTestSerializer(t)
	_, err := s.DecodeFields([]*syncpb.FieldEntry{{Key: "a", Value: []byte{0xFF, 0x00}}})
	if !errors.Is(err, ErrFieldValue) {
		t.Fatalf("expected ErrFieldValue, got %v", err)
	}
}

func TestEncodeMutationKinds(t *testing.T) {
	testlog.Start(t)
	s := newTestSerializer(t)
	k := model.MustDocumentKey("rooms/a")

	patch := s.EncodeMutation(model.NewPatchMutation(k, model.ObjectValue{"title": "x"}, []string{"title", "owner"}))
	if patch.Update == nil || patch.UpdateMask == nil || patch.UpdateMask.FieldPaths[0] != "owner" {
		t.Fatalf("unexpected patch write: %s", patch)
	}
	if patch.CurrentDocument == nil || patch.CurrentDocument.Exists == nil || !*patch.CurrentDocument.Exists {
		t.Fatalf("expected exists precondition: %s", patch)
	}

	del := s.EncodeMutation(model.NewDeleteMutation(k))
	if del.Delete != s.EncodeKey(k) || del.Update != nil || del.CurrentDocument != nil {
		t.Fatalf("unexpected delete write: %s", del)
	}

	verify := s.EncodeMutation(model.NewVerifyMutation(k, model.SnapshotVersion{Seconds: 7}))
	if verify.Verify != s.EncodeKey(k) || verify.CurrentDocument.UpdateTime.Seconds != 7 {
		t.Fatalf("unexpected verify write: %s", verify)
	}

	set := model.NewSetMutation(k, nil)
	set.Transforms = []model.FieldTransform{{FieldPath: "updated"}}
	w := s.EncodeMutation(set)
	if len(w.UpdateTransforms) != 1 || w.UpdateTransforms[0].ServerValue != syncpb.ServerValueRequestTime {
		t.Fatalf("unexpected transforms: %s", w)
	}
}

func TestEncodeMutationUnknownKindPanics(t *testing.T) {
	testlog.Start(t)
	s := newTestSerializer(t)
	defer func() {
		if _, ok := recover().(protocol.AssertionError); !ok {
			t.Fatalf("expected assertion panic")
		}
	}()
	s.EncodeMutation(model.Mutation{Key: model.MustDocumentKey("rooms/a")})
}

func TestDecodeMutationResultFallsBackToCommitVersion(t *testing.T) {
	testlog.Start(t)
	s := newTestSerializer(t)
	commit := model.SnapshotVersion{Seconds: 10}
	r, err := s.DecodeMutationResult(&syncpb.WriteResult{}, commit)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if r.CommitVersion != commit || r.UpdateVersion != commit {
		t.Fatalf("unexpected result: %+v", r)
	}
	r, err = s.DecodeMutationResult(&syncpb.WriteResult{UpdateTime: &syncpb.Timestamp{Seconds: 9}}, commit)
	if err != nil || r.UpdateVersion.Seconds != 9 || r.CommitVersion != commit {
		t.Fatalf("unexpected result: %+v %v", r, err)
	}
}

func TestDecodeMaybeDocumentVariants(t *testing.T) {
	testlog.Start(t)
	s := newTestSerializer(t)
	k := model.MustDocumentKey("rooms/a")

	doc := s.EncodeDocument(k, model.ObjectValue{"n": "v"})
	doc.UpdateTime = &syncpb.Timestamp{Seconds: 3}
	found, err := s.DecodeMaybeDocument(&syncpb.BatchGetDocumentsResponse{Found: doc})
	if err != nil || !found.Found() || found.Version().Seconds != 3 {
		t.Fatalf("unexpected found document: %v %v", found, err)
	}

	missing, err := s.DecodeMaybeDocument(&syncpb.BatchGetDocumentsResponse{
		Missing:  s.EncodeKey(k),
		ReadTime: &syncpb.Timestamp{Seconds: 4},
	})
	if err != nil || missing.Found() || missing.Version().Seconds != 4 {
		t.Fatalf("unexpected missing document: %v %v", missing, err)
	}

	if _, err := s.DecodeMaybeDocument(&syncpb.BatchGetDocumentsResponse{}); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
	doc.UpdateTime = nil
	if _, err := s.DecodeMaybeDocument(&syncpb.BatchGetDocumentsResponse{Found: doc}); !errors.Is(err, ErrMissingTimestamp) {
		t.Fatalf("expected ErrMissingTimestamp, got %v", err)
	}
}

func TestEncodeTargetAndLabels(t *testing.T) {
	testlog.Start(t)
	s := newTestSerializer(t)
	q := model.QueryData{
		Target:      model.QueryTarget(model.Query{Parent: model.NewPath("rooms", "a"), CollectionID: "messages"}),
		TargetID:    2,
		Purpose:     model.PurposeLimboResolution,
		ResumeToken: []byte{9},
		ReadTime:    model.SnapshotVersion{Seconds: 1},
	}
	target := s.EncodeTarget(q)
	if target.Query == nil || target.Query.Parent != "projects/p/databases/(default)/documents/rooms/a" {
		t.Fatalf("unexpected query target: %s", target)
	}
	if target.ReadTime != nil || !bytes.Equal(target.ResumeToken, []byte{9}) {
		t.Fatalf("expected resume token to win over read time: %s", target)
	}
	labels := s.EncodeListenRequestLabels(q)
	if len(labels) != 1 || labels[0].Key != ListenTagsLabel || labels[0].Value != "limbo-document" {
		t.Fatalf("unexpected labels: %v", labels)
	}
	q.Purpose = model.PurposeListen
	if labels := s.EncodeListenRequestLabels(q); labels != nil {
		t.Fatalf("expected no labels for plain listen, got %v", labels)
	}
}

func TestDecodeWatchChangeVariants(t *testing.T) {
	testlog.Start(t)
	s := newTestSerializer(t)
	k := model.MustDocumentKey("rooms/a")

	change, err := s.DecodeWatchChange(&syncpb.ListenResponse{TargetChange: &syncpb.TargetChange{
		Type:      syncpb.TargetChangeRemove,
		TargetIDs: []int32{1},
		Cause:     &syncpb.Status{Code: 7, Message: "denied"},
	}})
	if err != nil {
		t.Fatalf("target change: %v", err)
	}
	tc, ok := change.(*model.TargetChange)
	if !ok || tc.State != model.TargetRemoved || tc.TargetIDs[0] != 1 {
		t.Fatalf("unexpected target change: %#v", change)
	}
	var terr *model.TargetError
	if !errors.As(tc.Cause, &terr) || terr.Code != 7 {
		t.Fatalf("expected target error cause, got %v", tc.Cause)
	}

	change, err = s.DecodeWatchChange(&syncpb.ListenResponse{DocumentDelete: &syncpb.DocumentDelete{
		Document:         s.EncodeKey(k),
		RemovedTargetIDs: []int32{3},
	}})
	if err != nil {
		t.Fatalf("document delete: %v", err)
	}
	dc := change.(*model.DocumentChange)
	if dc.Doc == nil || dc.Doc.Found() || !dc.Key.Equal(k) || dc.RemovedTargetIDs[0] != 3 {
		t.Fatalf("unexpected delete change: %#v", dc)
	}

	change, err = s.DecodeWatchChange(&syncpb.ListenResponse{DocumentRemove: &syncpb.DocumentRemove{Document: s.EncodeKey(k)}})
	if err != nil || change.(*model.DocumentChange).Doc != nil {
		t.Fatalf("unexpected remove change: %#v %v", change, err)
	}

	change, err = s.DecodeWatchChange(&syncpb.ListenResponse{Filter: &syncpb.ExistenceFilter{TargetID: 2, Count: 5}})
	if ef, ok := change.(*model.ExistenceFilterChange); err != nil || !ok || ef.Count != 5 {
		t.Fatalf("unexpected filter change: %#v %v", change, err)
	}

	if _, err := s.DecodeWatchChange(&syncpb.ListenResponse{TargetChange: &syncpb.TargetChange{Type: 42}}); !errors.Is(err, ErrUnknownChangeType) {
		t.Fatalf("expected ErrUnknownChangeType, got %v", err)
	}
	if _, err := s.DecodeWatchChange(&syncpb.ListenResponse{}); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}
