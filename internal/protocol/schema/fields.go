package schema

import "google.golang.org/protobuf/encoding/protowire"

// Field numbers, grouped by message.
const (
	TimestampSeconds protowire.Number = 1
	TimestampNanos   protowire.Number = 2

	StatusCode    protowire.Number = 1
	StatusMessage protowire.Number = 2

	DocumentName       protowire.Number = 1
	DocumentFields     protowire.Number = 2
	DocumentCreateTime protowire.Number = 3
	DocumentUpdateTime protowire.Number = 4

	FieldEntryKey   protowire.Number = 1
	FieldEntryValue protowire.Number = 2

	DocumentMaskFieldPaths protowire.Number = 1

	PreconditionExists     protowire.Number = 1
	PreconditionUpdateTime protowire.Number = 2

	FieldTransformFieldPath   protowire.Number = 1
	FieldTransformServerValue protowire.Number = 2

	WriteUpdate           protowire.Number = 1
	WriteDelete           protowire.Number = 2
	WriteUpdateMask       protowire.Number = 3
	WriteCurrentDocument  protowire.Number = 4
	WriteVerify           protowire.Number = 5
	WriteUpdateTransforms protowire.Number = 7

	WriteResultUpdateTime       protowire.Number = 1
	WriteResultTransformResults protowire.Number = 2

	QueryTargetParent         protowire.Number = 1
	QueryTargetCollectionID   protowire.Number = 2
	QueryTargetAllDescendants protowire.Number = 3
	QueryTargetLimit          protowire.Number = 4

	DocumentsTargetDocuments protowire.Number = 2

	TargetQuery       protowire.Number = 2
	TargetDocuments   protowire.Number = 3
	TargetResumeToken protowire.Number = 4
	TargetTargetID    protowire.Number = 5
	TargetOnce        protowire.Number = 6
	TargetReadTime    protowire.Number = 11

	LabelEntryKey   protowire.Number = 1
	LabelEntryValue protowire.Number = 2

	ListenRequestDatabase     protowire.Number = 1
	ListenRequestAddTarget    protowire.Number = 2
	ListenRequestRemoveTarget protowire.Number = 3
	ListenRequestLabels       protowire.Number = 4

	TargetChangeType        protowire.Number = 1
	TargetChangeTargetIDs   protowire.Number = 2
	TargetChangeCause       protowire.Number = 3
	TargetChangeResumeToken protowire.Number = 4
	TargetChangeReadTime    protowire.Number = 6

	DocumentChangeDocument         protowire.Number = 1
	DocumentChangeTargetIDs        protowire.Number = 5
	DocumentChangeRemovedTargetIDs protowire.Number = 6

	DocumentDeleteDocument         protowire.Number = 1
	DocumentDeleteReadTime         protowire.Number = 4
	DocumentDeleteRemovedTargetIDs protowire.Number = 6

	DocumentRemoveDocument         protowire.Number = 1
	DocumentRemoveRemovedTargetIDs protowire.Number = 2
	DocumentRemoveReadTime         protowire.Number = 4

	ExistenceFilterTargetID protowire.Number = 1
	ExistenceFilterCount    protowire.Number = 2

	ListenResponseTargetChange   protowire.Number = 2
	ListenResponseDocumentChange protowire.Number = 3
	ListenResponseDocumentDelete protowire.Number = 4
	ListenResponseFilter         protowire.Number = 5
	ListenResponseDocumentRemove protowire.Number = 6

	WriteRequestDatabase    protowire.Number = 1
	WriteRequestStreamID    protowire.Number = 2
	WriteRequestWrites      protowire.Number = 3
	WriteRequestStreamToken protowire.Number = 4
	WriteRequestLabels      protowire.Number = 5

	WriteResponseStreamID     protowire.Number = 1
	WriteResponseStreamToken  protowire.Number = 2
	WriteResponseWriteResults protowire.Number = 3
	WriteResponseCommitTime   protowire.Number = 4

	CommitRequestDatabase    protowire.Number = 1
	CommitRequestWrites      protowire.Number = 2
	CommitRequestTransaction protowire.Number = 3

	CommitResponseWriteResults protowire.Number = 1
	CommitResponseCommitTime   protowire.Number = 2

	BatchGetRequestDatabase    protowire.Number = 1
	BatchGetRequestDocuments   protowire.Number = 2
	BatchGetRequestTransaction protowire.Number = 4

	BatchGetResponseFound       protowire.Number = 1
	BatchGetResponseMissing     protowire.Number = 2
	BatchGetResponseTransaction protowire.Number = 3
	BatchGetResponseReadTime    protowire.Number = 4
)

func scalar(num protowire.Number, name string, kind Kind) FieldSpec {
	return FieldSpec{Num: num, Name: name, Kind: kind}
}

func message(num protowire.Number, name string, mt MessageType) FieldSpec {
	return FieldSpec{Num: num, Name: name, Kind: KindMessage, Message: mt}
}

func repeated(fs FieldSpec) FieldSpec {
	fs.Repeated = true
	return fs
}

func required(fs FieldSpec) FieldSpec {
	fs.Required = true
	return fs
}

var messages = map[MessageType]messageSpec{
	MsgTimestamp: {"Timestamp", []FieldSpec{
		scalar(TimestampSeconds, "seconds", KindInt64),
		scalar(TimestampNanos, "nanos", KindInt32),
	}},
	MsgStatus: {"Status", []FieldSpec{
		scalar(StatusCode, "code", KindInt32),
		scalar(StatusMessage, "message", KindString),
	}},
	MsgDocument: {"Document", []FieldSpec{
		required(scalar(DocumentName, "name", KindString)),
		repeated(message(DocumentFields, "fields", MsgFieldEntry)),
		message(DocumentCreateTime, "create_time", MsgTimestamp),
		message(DocumentUpdateTime, "update_time", MsgTimestamp),
	}},
	MsgFieldEntry: {"FieldEntry", []FieldSpec{
		required(scalar(FieldEntryKey, "key", KindString)),
		scalar(FieldEntryValue, "value", KindBytes),
	}},
	MsgDocumentMask: {"DocumentMask", []FieldSpec{
		repeated(scalar(DocumentMaskFieldPaths, "field_paths", KindString)),
	}},
	MsgPrecondition: {"Precondition", []FieldSpec{
		scalar(PreconditionExists, "exists", KindBool),
		message(PreconditionUpdateTime, "update_time", MsgTimestamp),
	}},
	MsgFieldTransform: {"FieldTransform", []FieldSpec{
		required(scalar(FieldTransformFieldPath, "field_path", KindString)),
		scalar(FieldTransformServerValue, "set_to_server_value", KindEnum),
	}},
	MsgWrite: {"Write", []FieldSpec{
		message(WriteUpdate, "update", MsgDocument),
		scalar(WriteDelete, "delete", KindString),
		message(WriteUpdateMask, "update_mask", MsgDocumentMask),
		message(WriteCurrentDocument, "current_document", MsgPrecondition),
		scalar(WriteVerify, "verify", KindString),
		repeated(message(WriteUpdateTransforms, "update_transforms", MsgFieldTransform)),
	}},
	MsgWriteResult: {"WriteResult", []FieldSpec{
		message(WriteResultUpdateTime, "update_time", MsgTimestamp),
		repeated(scalar(WriteResultTransformResults, "transform_results", KindBytes)),
	}},
	MsgQueryTarget: {"QueryTarget", []FieldSpec{
		scalar(QueryTargetParent, "parent", KindString),
		scalar(QueryTargetCollectionID, "collection_id", KindString),
		scalar(QueryTargetAllDescendants, "all_descendants", KindBool),
		scalar(QueryTargetLimit, "limit", KindInt32),
	}},
	MsgDocumentsTarget: {"DocumentsTarget", []FieldSpec{
		repeated(scalar(DocumentsTargetDocuments, "documents", KindString)),
	}},
	MsgTarget: {"Target", []FieldSpec{
		message(TargetQuery, "query", MsgQueryTarget),
		message(TargetDocuments, "documents", MsgDocumentsTarget),
		scalar(TargetResumeToken, "resume_token", KindBytes),
		scalar(TargetTargetID, "target_id", KindInt32),
		scalar(TargetOnce, "once", KindBool),
		message(TargetReadTime, "read_time", MsgTimestamp),
	}},
	MsgLabelEntry: {"LabelEntry", []FieldSpec{
		required(scalar(LabelEntryKey, "key", KindString)),
		scalar(LabelEntryValue, "value", KindString),
	}},
	MsgListenRequest: {"ListenRequest", []FieldSpec{
		scalar(ListenRequestDatabase, "database", KindString),
		message(ListenRequestAddTarget, "add_target", MsgTarget),
		scalar(ListenRequestRemoveTarget, "remove_target", KindInt32),
		repeated(message(ListenRequestLabels, "labels", MsgLabelEntry)),
	}},
	MsgTargetChange: {"TargetChange", []FieldSpec{
		scalar(TargetChangeType, "target_change_type", KindEnum),
		repeated(scalar(TargetChangeTargetIDs, "target_ids", KindInt32)),
		message(TargetChangeCause, "cause", MsgStatus),
		scalar(TargetChangeResumeToken, "resume_token", KindBytes),
		message(TargetChangeReadTime, "read_time", MsgTimestamp),
	}},
	MsgDocumentChange: {"DocumentChange", []FieldSpec{
		required(message(DocumentChangeDocument, "document", MsgDocument)),
		repeated(scalar(DocumentChangeTargetIDs, "target_ids", KindInt32)),
		repeated(scalar(DocumentChangeRemovedTargetIDs, "removed_target_ids", KindInt32)),
	}},
	MsgDocumentDelete: {"DocumentDelete", []FieldSpec{
		required(scalar(DocumentDeleteDocument, "document", KindString)),
		message(DocumentDeleteReadTime, "read_time", MsgTimestamp),
		repeated(scalar(DocumentDeleteRemovedTargetIDs, "removed_target_ids", KindInt32)),
	}},
	MsgDocumentRemove: {"DocumentRemove", []FieldSpec{
		required(scalar(DocumentRemoveDocument, "document", KindString)),
		repeated(scalar(DocumentRemoveRemovedTargetIDs, "removed_target_ids", KindInt32)),
		message(DocumentRemoveReadTime, "read_time", MsgTimestamp),
	}},
	MsgExistenceFilter: {"ExistenceFilter", []FieldSpec{
		scalar(ExistenceFilterTargetID, "target_id", KindInt32),
		scalar(ExistenceFilterCount, "count", KindInt32),
	}},
	MsgListenResponse: {"ListenResponse", []FieldSpec{
		message(ListenResponseTargetChange, "target_change", MsgTargetChange),
		message(ListenResponseDocumentChange, "document_change", MsgDocumentChange),
		message(ListenResponseDocumentDelete, "document_delete", MsgDocumentDelete),
		message(ListenResponseFilter, "filter", MsgExistenceFilter),
		message(ListenResponseDocumentRemove, "document_remove", MsgDocumentRemove),
	}},
	MsgWriteRequest: {"WriteRequest", []FieldSpec{
		scalar(WriteRequestDatabase, "database", KindString),
		scalar(WriteRequestStreamID, "stream_id", KindString),
		repeated(message(WriteRequestWrites, "writes", MsgWrite)),
		scalar(WriteRequestStreamToken, "stream_token", KindBytes),
		repeated(message(WriteRequestLabels, "labels", MsgLabelEntry)),
	}},
	MsgWriteResponse: {"WriteResponse", []FieldSpec{
		scalar(WriteResponseStreamID, "stream_id", KindString),
		scalar(WriteResponseStreamToken, "stream_token", KindBytes),
		repeated(message(WriteResponseWriteResults, "write_results", MsgWriteResult)),
		message(WriteResponseCommitTime, "commit_time", MsgTimestamp),
	}},
	MsgCommitRequest: {"CommitRequest", []FieldSpec{
		scalar(CommitRequestDatabase, "database", KindString),
		repeated(message(CommitRequestWrites, "writes", MsgWrite)),
		scalar(CommitRequestTransaction, "transaction", KindBytes),
	}},
	MsgCommitResponse: {"CommitResponse", []FieldSpec{
		repeated(message(CommitResponseWriteResults, "write_results", MsgWriteResult)),
		message(CommitResponseCommitTime, "commit_time", MsgTimestamp),
	}},
	MsgBatchGetDocumentsRequest: {"BatchGetDocumentsRequest", []FieldSpec{
		scalar(BatchGetRequestDatabase, "database", KindString),
		repeated(scalar(BatchGetRequestDocuments, "documents", KindString)),
		scalar(BatchGetRequestTransaction, "transaction", KindBytes),
	}},
	MsgBatchGetDocumentsResponse: {"BatchGetDocumentsResponse", []FieldSpec{
		message(BatchGetResponseFound, "found", MsgDocument),
		scalar(BatchGetResponseMissing, "missing", KindString),
		scalar(BatchGetResponseTransaction, "transaction", KindBytes),
		message(BatchGetResponseReadTime, "read_time", MsgTimestamp),
	}},
}

var byName = func() map[string]MessageType {
	out := make(map[string]MessageType, len(messages))
	for mt, spec := range messages {
		out[spec.name] = mt
	}
	return out
}()
