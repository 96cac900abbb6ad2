// Package remote shapes domain operations into sync service requests and
// turns service responses back into domain results.
//
// There is one codec per channel: WatchCodec for the listen stream,
// WriteCodec for the write stream and DatastoreCodec for unary commit and
// lookup calls. Each holds only the database name captured from its
// ValueCodec at construction and is safe for concurrent use.
package remote

import (
	"errors"
	"fmt"
	"math"

	"github.com/danmuck/docsync/internal/model"
	"github.com/danmuck/docsync/internal/protocol"
	"github.com/danmuck/docsync/internal/protocol/syncpb"
)

var ErrResultCountMismatch = errors.New("remote: write result count does not match sent mutations")

// ValueCodec maps single domain values to and from wire fields.
type ValueCodec interface {
	EncodeDatabaseID() string
	EncodeTarget(q model.QueryData) *syncpb.Target
	EncodeListenRequestLabels(q model.QueryData) []*syncpb.Label
	EncodeMutation(m model.Mutation) *syncpb.Write
	EncodeKey(k model.DocumentKey) string
	DecodeWatchChange(resp *syncpb.ListenResponse) (model.WatchChange, error)
	DecodeVersion(ts *syncpb.Timestamp) (model.SnapshotVersion, error)
	DecodeSnapshotVersion(ts *syncpb.Timestamp) (model.SnapshotVersion, error)
	DecodeMutationResult(r *syncpb.WriteResult, commit model.SnapshotVersion) (model.MutationResult, error)
	DecodeMaybeDocument(resp *syncpb.BatchGetDocumentsResponse) (model.MaybeDocument, error)
}

func assertCount(what string, n int) {
	protocol.Assertf(n <= math.MaxInt32, "remote: %d %s overflow the wire count", n, what)
}

func encodeWrites(vc ValueCodec, mutations []model.Mutation) []*syncpb.Write {
	assertCount("mutations", len(mutations))
	if len(mutations) == 0 {
		return nil
	}
	writes := make([]*syncpb.Write, len(mutations))
	for i, m := range mutations {
		writes[i] = vc.EncodeMutation(m)
	}
	return writes
}

// commitVersion decodes a commit time. It is required whenever the
// response carries write results.
func commitVersion(vc ValueCodec, message string, ts *syncpb.Timestamp, results int) (model.SnapshotVersion, error) {
	if ts == nil && results == 0 {
		return model.NoVersion, nil
	}
	v, err := vc.DecodeVersion(ts)
	if err != nil {
		return model.NoVersion, protocol.NewParseError(message, fmt.Errorf("commit_time: %w", err))
	}
	return v, nil
}

// mutationResults decodes results in array order, stamping each with the
// response's commit version. A count other than sent is a contract breach.
func mutationResults(vc ValueCodec, message string, results []*syncpb.WriteResult, ts *syncpb.Timestamp, sent int) ([]model.MutationResult, error) {
	if len(results) != sent {
		return nil, protocol.NewInternalError("decode "+message,
			fmt.Errorf("%w: got %d want %d", ErrResultCountMismatch, len(results), sent))
	}
	commit, err := commitVersion(vc, message, ts, len(results))
	if err != nil {
		return nil, err
	}
	out := make([]model.MutationResult, len(results))
	for i, r := range results {
		res, err := vc.DecodeMutationResult(r, commit)
		if err != nil {
			return nil, protocol.NewParseError(message, fmt.Errorf("write_results[%d]: %w", i, err))
		}
		out[i] = res
	}
	return out, nil
}
