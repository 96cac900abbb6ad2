package remote

import (
	"github.com/danmuck/docsync/internal/model"
	"github.com/danmuck/docsync/internal/protocol"
	"github.com/danmuck/docsync/internal/protocol/codec"
	"github.com/danmuck/docsync/internal/protocol/syncpb"
)

// WatchCodec builds and parses listen stream messages.
type WatchCodec struct {
	vc       ValueCodec
	database string
}

func NewWatchCodec(vc ValueCodec) *WatchCodec {
	return &WatchCodec{vc: vc, database: vc.EncodeDatabaseID()}
}

// WatchRequest adds the target described by q. Labels are omitted entirely
// when q has none.
func (c *WatchCodec) WatchRequest(q model.QueryData) *syncpb.ListenRequest {
	req := &syncpb.ListenRequest{
		Database:  c.database,
		AddTarget: c.vc.EncodeTarget(q),
	}
	if labels := c.vc.EncodeListenRequestLabels(q); len(labels) > 0 {
		req.Labels = labels
	}
	return req
}

// UnwatchRequest removes target id. The database name rides along as it
// does on every listen request; nothing else is set.
func (c *WatchCodec) UnwatchRequest(id model.TargetID) *syncpb.ListenRequest {
	remove := int32(id)
	return &syncpb.ListenRequest{Database: c.database, RemoveTarget: &remove}
}

func (c *WatchCodec) ParseResponse(data []byte) (*syncpb.ListenResponse, error) {
	resp := new(syncpb.ListenResponse)
	if err := codec.Decode(data, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *WatchCodec) ToWatchChange(resp *syncpb.ListenResponse) (model.WatchChange, error) {
	change, err := c.vc.DecodeWatchChange(resp)
	if err != nil {
		return nil, protocol.NewParseError(resp.MessageType().String(), err)
	}
	return change, nil
}

// ToSnapshotVersion returns the consistent version a response reports.
// Only a target change for every target (no target ids) carries one; every
// other response yields NoVersion.
func (c *WatchCodec) ToSnapshotVersion(resp *syncpb.ListenResponse) (model.SnapshotVersion, error) {
	tc := resp.TargetChange
	if tc == nil || len(tc.TargetIDs) > 0 {
		return model.NoVersion, nil
	}
	v, err := c.vc.DecodeSnapshotVersion(tc.ReadTime)
	if err != nil {
		return model.NoVersion, protocol.NewParseError(resp.MessageType().String(), err)
	}
	return v, nil
}
