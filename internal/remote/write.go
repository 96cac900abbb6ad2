package remote

import (
	"github.com/danmuck/docsync/internal/model"
	"github.com/danmuck/docsync/internal/protocol/codec"
	"github.com/danmuck/docsync/internal/protocol/syncpb"
)

// WriteCodec builds and parses write stream messages. A session starts
// with HandshakeRequest; every later request replays the stream token of
// the latest response.
type WriteCodec struct {
	vc       ValueCodec
	database string
}

func NewWriteCodec(vc ValueCodec) *WriteCodec {
	return &WriteCodec{vc: vc, database: vc.EncodeDatabaseID()}
}

// HandshakeRequest carries only the database name.
func (c *WriteCodec) HandshakeRequest() *syncpb.WriteRequest {
	return &syncpb.WriteRequest{Database: c.database}
}

// MutationsRequest encodes mutations in order with an exact copy of token.
// No mutations with a token is a valid acknowledgement.
func (c *WriteCodec) MutationsRequest(mutations []model.Mutation, token model.StreamToken) *syncpb.WriteRequest {
	return &syncpb.WriteRequest{
		Writes:      encodeWrites(c.vc, mutations),
		StreamToken: token.Clone(),
	}
}

func (c *WriteCodec) ParseResponse(data []byte) (*syncpb.WriteResponse, error) {
	resp := new(syncpb.WriteResponse)
	if err := codec.Decode(data, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// StreamToken copies the response's token for the next request.
func (c *WriteCodec) StreamToken(resp *syncpb.WriteResponse) model.StreamToken {
	return model.StreamToken(resp.StreamToken).Clone()
}

// ToCommitVersion decodes the commit time. A malformed or absent commit
// time on a response with results is a parse error; a response without
// results and without commit time yields NoVersion.
func (c *WriteCodec) ToCommitVersion(resp *syncpb.WriteResponse) (model.SnapshotVersion, error) {
	return commitVersion(c.vc, resp.MessageType().String(), resp.CommitTime, len(resp.WriteResults))
}

// ToMutationResults decodes one result per sent mutation, in order, each
// stamped with the response's commit version.
func (c *WriteCodec) ToMutationResults(resp *syncpb.WriteResponse, sent int) ([]model.MutationResult, error) {
	return mutationResults(c.vc, resp.MessageType().String(), resp.WriteResults, resp.CommitTime, sent)
}
