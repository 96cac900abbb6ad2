// Package codec converts between schema-typed messages and segmented wire
// buffers.
//
// Encoding locally built messages cannot fail on valid input; a failure
// there is a programming error and panics. Decoding is the entry point for
// every inbound byte and only ever returns a *protocol.ParseError.
package codec

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/docsync/internal/protocol"
	"github.com/danmuck/docsync/internal/protocol/frame"
	"github.com/danmuck/docsync/internal/protocol/schema"
	"github.com/danmuck/docsync/internal/protocol/wire"
)

// Message is a value bound to one message schema.
type Message interface {
	MessageType() schema.MessageType
	MarshalFields() []wire.Field
	UnmarshalFields(fields []wire.Field) error
}

// Encode serializes m into a buffer segmented at frame.DefaultSegmentBytes.
func Encode(m Message) *frame.Buffer {
	return EncodeWith(m, frame.DefaultLimits())
}

// EncodeWith serializes m into a buffer segmented at limits.SegmentBytes.
// The segments share one backing array.
func EncodeWith(m Message, limits frame.Limits) *frame.Buffer {
	protocol.Assertf(m != nil, "codec: encode nil message")
	payload := wire.EncodeFields(m.MarshalFields())
	protocol.Assertf(uint64(len(payload)) <= math.MaxUint32,
		"codec: %s payload of %d bytes overflows the length prefix", m.MessageType(), len(payload))
	return frame.Split(payload, limits.SegmentBytes)
}

// ToContiguousBytes flattens b with the default limits.
func ToContiguousBytes(b *frame.Buffer) ([]byte, error) {
	return ToContiguousBytesWith(b, frame.DefaultLimits())
}

// ToContiguousBytesWith flattens b into one slice. A buffer that cannot be
// decomposed into segments, or that exceeds limits, is an internal error.
func ToContiguousBytesWith(b *frame.Buffer, limits frame.Limits) ([]byte, error) {
	out, err := frame.Flatten(b, limits)
	if err != nil {
		return nil, protocol.NewInternalError("to contiguous bytes", err)
	}
	return out, nil
}

// Decode parses data into dst with the default limits.
func Decode(data []byte, dst Message) error {
	return DecodeWith(data, dst, frame.DefaultLimits())
}

// DecodeWith parses data into dst. The fields are validated against dst's
// schema before any value is extracted. dst never retains data.
func DecodeWith(data []byte, dst Message, limits frame.Limits) error {
	if dst == nil {
		return &protocol.ParseError{Err: fmt.Errorf("codec: nil destination")}
	}
	mt := dst.MessageType()
	if limits.MaxMessageBytes > 0 && uint64(len(data)) > limits.MaxMessageBytes {
		return parseFailure(mt, len(data), fmt.Errorf("%w: %d > %d", frame.ErrPayloadTooLarge, len(data), limits.MaxMessageBytes))
	}
	fields, err := wire.DecodeFields(data)
	if err != nil {
		return parseFailure(mt, len(data), err)
	}
	if err := schema.Validate(mt, fields); err != nil {
		return parseFailure(mt, len(data), err)
	}
	if err := dst.UnmarshalFields(fields); err != nil {
		return parseFailure(mt, len(data), err)
	}
	return nil
}

func parseFailure(mt schema.MessageType, n int, err error) error {
	log.Debug().
		Str("message_type", mt.String()).
		Int("bytes", n).
		Err(err).
		Msg("codec.Decode failed")
	return protocol.NewParseError(mt.String(), err)
}
