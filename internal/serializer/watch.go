package serializer

import (
	"fmt"

	"github.com/danmuck/docsync/internal/model"
	"github.com/danmuck/docsync/internal/protocol/syncpb"
)

// ListenTagsLabel is the label key carrying a target's purpose.
const ListenTagsLabel = "goog-listen-tags"

// EncodeTarget shapes a watch target. A resume token wins over a read time.
func (s *Serializer) EncodeTarget(q model.QueryData) *syncpb.Target {
	t := &syncpb.Target{TargetID: int32(q.TargetID), Once: q.Once}
	if q.Target.Query != nil {
		t.Query = s.encodeQuery(*q.Target.Query)
	} else {
		names := make([]string, 0, len(q.Target.Documents))
		for _, k := range q.Target.Documents {
			names = append(names, s.EncodeKey(k))
		}
		t.Documents = &syncpb.DocumentsTarget{Documents: names}
	}
	if len(q.ResumeToken) > 0 {
		t.ResumeToken = append([]byte(nil), q.ResumeToken...)
	} else if !q.ReadTime.IsNone() {
		t.ReadTime = s.EncodeTimestamp(q.ReadTime)
	}
	return t
}

func (s *Serializer) encodeQuery(q model.Query) *syncpb.QueryTarget {
	return &syncpb.QueryTarget{
		Parent:         s.encodePath(q.Parent),
		CollectionID:   q.CollectionID,
		AllDescendants: q.AllDescendants,
		Limit:          q.Limit,
	}
}

// EncodeListenRequestLabels returns the purpose labels of q. Plain listens
// carry none.
func (s *Serializer) EncodeListenRequestLabels(q model.QueryData) []*syncpb.Label {
	switch q.Purpose {
	case model.PurposeExistenceFilterMismatch, model.PurposeLimboResolution:
		return []*syncpb.Label{{Key: ListenTagsLabel, Value: q.Purpose.String()}}
	default:
		return nil
	}
}

// DecodeWatchChange converts one listen response into a domain change.
func (s *Serializer) DecodeWatchChange(resp *syncpb.ListenResponse) (model.WatchChange, error) {
	switch {
	case resp.TargetChange != nil:
		return s.decodeTargetChange(resp.TargetChange)
	case resp.DocumentChange != nil:
		return s.decodeDocumentChange(resp.DocumentChange)
	case resp.DocumentDelete != nil:
		return s.decodeDocumentDelete(resp.DocumentDelete)
	case resp.DocumentRemove != nil:
		return s.decodeDocumentRemove(resp.DocumentRemove)
	case resp.Filter != nil:
		return &model.ExistenceFilterChange{
			TargetID: model.TargetID(resp.Filter.TargetID),
			Count:    resp.Filter.Count,
		}, nil
	default:
		return nil, fmt.Errorf("%w: listen response", ErrEmptyResponse)
	}
}

func (s *Serializer) decodeTargetChange(tc *syncpb.TargetChange) (*model.TargetChange, error) {
	var state model.TargetChangeState
	switch tc.Type {
	case syncpb.TargetChangeNoChange:
		state = model.TargetNoChange
	case syncpb.TargetChangeAdd:
		state = model.TargetAdded
	case syncpb.TargetChangeRemove:
		state = model.TargetRemoved
	case syncpb.TargetChangeCurrent:
		state = model.TargetCurrent
	case syncpb.TargetChangeReset:
		state = model.TargetReset
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownChangeType, tc.Type)
	}
	out := &model.TargetChange{
		State:       state,
		TargetIDs:   targetIDs(tc.TargetIDs),
		ResumeToken: tc.ResumeToken,
	}
	if tc.Cause != nil {
		out.Cause = &model.TargetError{Code: tc.Cause.Code, Message: tc.Cause.Message}
	}
	return out, nil
}

func (s *Serializer) decodeDocumentChange(dc *syncpb.DocumentChange) (*model.DocumentChange, error) {
	if dc.Document == nil {
		return nil, fmt.Errorf("%w: document change without document", ErrEmptyResponse)
	}
	doc, err := s.DecodeFoundDocument(dc.Document)
	if err != nil {
		return nil, err
	}
	return &model.DocumentChange{
		UpdatedTargetIDs: targetIDs(dc.TargetIDs),
		RemovedTargetIDs: targetIDs(dc.RemovedTargetIDs),
		Key:              doc.Key(),
		Doc:              &doc,
	}, nil
}

func (s *Serializer) decodeDocumentDelete(dd *syncpb.DocumentDelete) (*model.DocumentChange, error) {
	k, err := s.DecodeKey(dd.Document)
	if err != nil {
		return nil, err
	}
	version, err := s.DecodeSnapshotVersion(dd.ReadTime)
	if err != nil {
		return nil, fmt.Errorf("document delete %s read_time: %w", k, err)
	}
	doc := model.NewMissingDocument(k, version)
	return &model.DocumentChange{
		RemovedTargetIDs: targetIDs(dd.RemovedTargetIDs),
		Key:              k,
		Doc:              &doc,
	}, nil
}

func (s *Serializer) decodeDocumentRemove(dr *syncpb.DocumentRemove) (*model.DocumentChange, error) {
	k, err := s.DecodeKey(dr.Document)
	if err != nil {
		return nil, err
	}
	return &model.DocumentChange{
		RemovedTargetIDs: targetIDs(dr.RemovedTargetIDs),
		Key:              k,
	}, nil
}

func targetIDs(ids []int32) []model.TargetID {
	if len(ids) == 0 {
		return nil
	}
	out := make([]model.TargetID, len(ids))
	for i, id := range ids {
		out[i] = model.TargetID(id)
	}
	return out
}
