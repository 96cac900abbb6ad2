package remote

import (
	"fmt"
	"sort"

	"github.com/danmuck/docsync/internal/model"
	"github.com/danmuck/docsync/internal/protocol"
	"github.com/danmuck/docsync/internal/protocol/codec"
	"github.com/danmuck/docsync/internal/protocol/frame"
	"github.com/danmuck/docsync/internal/protocol/syncpb"
)

// DatastoreCodec builds unary commit and lookup requests and merges
// streamed lookup responses.
type DatastoreCodec struct {
	vc       ValueCodec
	database string
	limits   frame.Limits
}

func NewDatastoreCodec(vc ValueCodec) *DatastoreCodec {
	return NewDatastoreCodecWith(vc, frame.DefaultLimits())
}

// NewDatastoreCodecWith bounds every parsed response by limits.
func NewDatastoreCodecWith(vc ValueCodec, limits frame.Limits) *DatastoreCodec {
	return &DatastoreCodec{vc: vc, database: vc.EncodeDatabaseID(), limits: limits}
}

func (c *DatastoreCodec) CommitRequest(mutations []model.Mutation) *syncpb.CommitRequest {
	return &syncpb.CommitRequest{
		Database: c.database,
		Writes:   encodeWrites(c.vc, mutations),
	}
}

// LookupRequest names keys in order. No keys is a valid empty request.
func (c *DatastoreCodec) LookupRequest(keys []model.DocumentKey) *syncpb.BatchGetDocumentsRequest {
	assertCount("keys", len(keys))
	req := &syncpb.BatchGetDocumentsRequest{Database: c.database}
	if len(keys) > 0 {
		req.Documents = make([]string, len(keys))
		for i, k := range keys {
			req.Documents[i] = c.vc.EncodeKey(k)
		}
	}
	return req
}

func (c *DatastoreCodec) ParseLookupResponse(data []byte) (*syncpb.BatchGetDocumentsResponse, error) {
	resp := new(syncpb.BatchGetDocumentsResponse)
	if err := codec.DecodeWith(data, resp, c.limits); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *DatastoreCodec) ToMaybeDocument(resp *syncpb.BatchGetDocumentsResponse) (model.MaybeDocument, error) {
	doc, err := c.vc.DecodeMaybeDocument(resp)
	if err != nil {
		return model.MaybeDocument{}, protocol.NewParseError(resp.MessageType().String(), err)
	}
	return doc, nil
}

// MergeLookupResponses decodes chunks in input order and returns one
// document per key in ascending key order. When a key repeats, the chunk
// latest in the input wins. The first chunk that fails aborts the merge
// and no documents are returned.
func (c *DatastoreCodec) MergeLookupResponses(chunks [][]byte) ([]model.MaybeDocument, error) {
	docs := make([]model.MaybeDocument, 0, len(chunks))
	for i, chunk := range chunks {
		resp, err := c.ParseLookupResponse(chunk)
		if err != nil {
			return nil, fmt.Errorf("remote: lookup chunk %d: %w", i, err)
		}
		doc, err := c.ToMaybeDocument(resp)
		if err != nil {
			return nil, fmt.Errorf("remote: lookup chunk %d: %w", i, err)
		}
		docs = append(docs, doc)
	}
	return mergeByKey(docs), nil
}

// mergeByKey stable sorts by key so equal keys keep input order, then
// keeps the last entry of every run.
func mergeByKey(docs []model.MaybeDocument) []model.MaybeDocument {
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].Key().Compare(docs[j].Key()) < 0
	})
	out := docs[:0]
	for i, d := range docs {
		if i+1 < len(docs) && docs[i+1].Key().Equal(d.Key()) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func (c *DatastoreCodec) ParseCommitResponse(data []byte) (*syncpb.CommitResponse, error) {
	resp := new(syncpb.CommitResponse)
	if err := codec.DecodeWith(data, resp, c.limits); err != nil {
		return nil, err
	}
	return resp, nil
}

// ToCommitResults decodes one result per committed mutation, in order.
func (c *DatastoreCodec) ToCommitResults(resp *syncpb.CommitResponse, sent int) ([]model.MutationResult, error) {
	return mutationResults(c.vc, resp.MessageType().String(), resp.WriteResults, resp.CommitTime, sent)
}
