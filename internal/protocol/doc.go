// Package protocol owns the wire contract of the sync service client.
//
// Ownership boundary:
// - failure taxonomy shared by every codec (parse, internal, assertion)
// - wire field primitives (wire), segmented buffers and framing (frame)
// - message schemas (schema), schema-typed messages (syncpb)
// - buffer <-> message conversion (codec) and diagnostics text (wiretext)
package protocol
