// Package frame holds encoded messages as segmented buffers and frames
// them for a byte stream.
//
// On a stream every message is preceded by a five byte prefix: one flag
// byte followed by the big-endian payload length.
package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	PrefixLen           = 5
	FlagCompressed byte = 0x01

	DefaultMaxMessageBytes = 4 * 1024 * 1024
	DefaultSegmentBytes    = 16 * 1024
)

var (
	ErrNoSegments      = errors.New("frame: buffer has no segments")
	ErrShortPrefix     = errors.New("frame: short message prefix")
	ErrShortPayload    = errors.New("frame: short message payload")
	ErrPayloadTooLarge = errors.New("frame: payload too large")
	ErrCompressed      = errors.New("frame: compressed payloads are not supported")
)

// Limits constrains buffer sizes and segmenting. A zero MaxMessageBytes
// means no size limit.
type Limits struct {
	MaxMessageBytes uint64
	SegmentBytes    int
}

func DefaultLimits() Limits {
	return Limits{
		MaxMessageBytes: DefaultMaxMessageBytes,
		SegmentBytes:    DefaultSegmentBytes,
	}
}

// Buffer is one encoded message held as discontiguous segments. A nil
// *Buffer cannot be decomposed and is rejected by every accessor.
type Buffer struct {
	segments [][]byte
	size     int
}

// NewBuffer wraps segments without copying them.
func NewBuffer(segments ...[]byte) *Buffer {
	b := &Buffer{segments: make([][]byte, 0, len(segments))}
	for _, seg := range segments {
		b.Append(seg)
	}
	return b
}

// Split views payload as segments of at most segmentBytes. The segments
// alias payload.
func Split(payload []byte, segmentBytes int) *Buffer {
	if segmentBytes <= 0 {
		segmentBytes = DefaultSegmentBytes
	}
	b := &Buffer{segments: make([][]byte, 0, len(payload)/segmentBytes+1)}
	for len(payload) > segmentBytes {
		b.Append(payload[:segmentBytes:segmentBytes])
		payload = payload[segmentBytes:]
	}
	if len(payload) > 0 {
		b.Append(payload)
	}
	return b
}

func (b *Buffer) Append(seg []byte) {
	if len(seg) == 0 {
		return
	}
	b.segments = append(b.segments, seg)
	b.size += len(seg)
}

// Len is the total payload length across segments.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return b.size
}

// Segments returns the segment list. The returned slices alias the buffer.
func (b *Buffer) Segments() ([][]byte, error) {
	if b == nil || b.segments == nil {
		return nil, ErrNoSegments
	}
	return b.segments, nil
}

// Flatten copies every segment into one contiguous slice.
func Flatten(b *Buffer, limits Limits) ([]byte, error) {
	segments, err := b.Segments()
	if err != nil {
		return nil, err
	}
	if limits.MaxMessageBytes > 0 && uint64(b.size) > limits.MaxMessageBytes {
		return nil, fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, b.size, limits.MaxMessageBytes)
	}
	out := make([]byte, 0, b.size)
	for _, seg := range segments {
		out = append(out, seg...)
	}
	return out, nil
}

// WriteMessage writes one prefixed message, segment by segment.
func WriteMessage(w io.Writer, b *Buffer, limits Limits) error {
	segments, err := b.Segments()
	if err != nil {
		return err
	}
	if (limits.MaxMessageBytes > 0 && uint64(b.size) > limits.MaxMessageBytes) || uint64(b.size) > uint64(^uint32(0)) {
		return ErrPayloadTooLarge
	}
	if _, err := w.Write(EncodePrefix(false, uint32(b.size))); err != nil {
		return err
	}
	for _, seg := range segments {
		if _, err := w.Write(seg); err != nil {
			return err
		}
	}
	return nil
}

// ReadMessage reads one prefixed message payload.
func ReadMessage(r io.Reader, limits Limits) ([]byte, error) {
	var prefix [PrefixLen]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrShortPrefix
		}
		return nil, err
	}
	compressed, n := DecodePrefix(prefix[:])
	if compressed {
		return nil, ErrCompressed
	}
	if limits.MaxMessageBytes > 0 && uint64(n) > limits.MaxMessageBytes {
		return nil, ErrPayloadTooLarge
	}
	payload := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, ErrShortPayload
		}
	}
	return payload, nil
}

func EncodePrefix(compressed bool, n uint32) []byte {
	buf := make([]byte, PrefixLen)
	if compressed {
		buf[0] = FlagCompressed
	}
	binary.BigEndian.PutUint32(buf[1:5], n)
	return buf
}

func DecodePrefix(b []byte) (bool, uint32) {
	return b[0]&FlagCompressed != 0, binary.BigEndian.Uint32(b[1:5])
}
