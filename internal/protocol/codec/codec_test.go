package codec

import (
	"bytes"
	"errors"
	"testing"

	"github.com/danmuck/docsync/internal/protocol"
	"github.com/danmuck/docsync/internal/protocol/frame"
	"github.com/danmuck/docsync/internal/protocol/schema"
	"github.com/danmuck/docsync/internal/protocol/syncpb"
	"github.com/danmuck/docsync/internal/protocol/wire"
	"github.com/danmuck/docsync/internal/testutil/testlog"
)

func TestEncodeSegmentsAndFlattens(t *testing.T) {
	testlog.Start(t)
	req := &syncpb.BatchGetDocumentsRequest{
		Database:  "projects/p/databases/(default)",
		Documents: []string{"a", "b", "c"},
	}
	b := EncodeWith(req, frame.Limits{MaxMessageBytes: 1 << 20, SegmentBytes: 8})
	segments, err := b.Segments()
	if err != nil {
		t.Fatalf("segments: %v", err)
	}
	if len(segments) < 2 {
		t.Fatalf("expected multiple segments, got %d", len(segments))
	}
	out, err := ToContiguousBytes(b)
	if err != nil {
		t.Fatalf("to contiguous bytes: %v", err)
	}
	if !bytes.Equal(out, wire.EncodeFields(req.MarshalFields())) {
		t.Fatalf("flattened bytes differ from direct encoding")
	}

	var got syncpb.BatchGetDocumentsRequest
	if err := Decode(out, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Database != req.Database || len(got.Documents) != 3 || got.Documents[2] != "c" {
		t.Fatalf("unexpected request: %+v", got)
	}
}

func TestEncodeNilMessagePanics(t *testing.T) {
	testlog.Start(t)
	defer func() {
		r := recover()
		if _, ok := r.(protocol.AssertionError); !ok {
			t.Fatalf("expected assertion panic, got %v", r)
		}
	}()
	Encode(nil)
}

func TestToContiguousBytesRejectsUndecomposableBuffer(t *testing.T) {
	testlog.Start(t)
	for _, b := range []*frame.Buffer{nil, {}} {
		_, err := ToContiguousBytes(b)
		if !errors.Is(err, protocol.ErrInternal) {
			t.Fatalf("expected internal error, got %v", err)
		}
		if !errors.Is(err, frame.ErrNoSegments) {
			t.Fatalf("expected ErrNoSegments cause, got %v", err)
		}
	}
}

func TestToContiguousBytesRejectsOversizedBuffer(t *testing.T) {
	testlog.Start(t)
	b := frame.NewBuffer([]byte("0123456789"))
	_, err := ToContiguousBytesWith(b, frame.Limits{MaxMessageBytes: 4})
	if !errors.Is(err, protocol.ErrInternal) || !errors.Is(err, frame.ErrPayloadTooLarge) {
		t.Fatalf("expected internal payload too large, got %v", err)
	}
}

func TestEmptyMessageEncodesToEmptyBytes(t *testing.T) {
	testlog.Start(t)
	out, err := ToContiguousBytes(Encode(&syncpb.ListenResponse{}))
	if err != nil {
		t.Fatalf("to contiguous bytes: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty payload, got %x", out)
	}
	var resp syncpb.ListenResponse
	if err := Decode(out, &resp); err != nil {
		t.Fatalf("decode empty: %v", err)
	}
}

func TestDecodeMalformedInputIsParseError(t *testing.T) {
	testlog.Start(t)
	cases := map[string][]byte{
		"truncated tag":    {0x80},
		"truncated length": {0x0A},
		"short value":      {0x0A, 0x05, 'a', 'b'},
		"group wire type":  {0x0B},
		"wrong wire type":  {0x08, 0x01},
		"bad utf8":         {0x0A, 0x01, 0xFF},
		"bad nested":       {0x22, 0x02, 0x08, 0x80},
	}
	for name, data := range cases {
		var doc syncpb.Document
		err := Decode(data, &doc)
		if !errors.Is(err, protocol.ErrParse) {
			t.Fatalf("%s: expected parse error, got %v", name, err)
		}
		var pe *protocol.ParseError
		if !errors.As(err, &pe) || pe.Message == "" {
			t.Fatalf("%s: expected message name on parse error, got %v", name, err)
		}
	}
}

func TestDecodeMissingRequiredFieldIsParseError(t *testing.T) {
	testlog.Start(t)
	data := wire.EncodeFields([]wire.Field{wire.Message(schema.DocumentUpdateTime, nil)})
	var doc syncpb.Document
	err := Decode(data, &doc)
	var verr schema.ValidationError
	if !errors.Is(err, protocol.ErrParse) || !errors.As(err, &verr) {
		t.Fatalf("expected parse error wrapping validation error, got %v", err)
	}
}

func TestDecodeRejectsOversizedInput(t *testing.T) {
	testlog.Start(t)
	data := wire.EncodeFields([]wire.Field{wire.String(schema.DocumentName, "abcdefgh")})
	var doc syncpb.Document
	err := DecodeWith(data, &doc, frame.Limits{MaxMessageBytes: 4})
	if !errors.Is(err, protocol.ErrParse) || !errors.Is(err, frame.ErrPayloadTooLarge) {
		t.Fatalf("expected parse error for oversized input, got %v", err)
	}
}

func TestDecodeDoesNotRetainInput(t *testing.T) {
	testlog.Start(t)
	data := wire.EncodeFields([]wire.Field{
		wire.String(schema.WriteResponseStreamID, "s"),
		wire.Bytes(schema.WriteResponseStreamToken, []byte{1, 2, 3}),
	})
	var resp syncpb.WriteResponse
	if err := Decode(data, &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for i := range data {
		data[i] = 0
	}
	if !bytes.Equal(resp.StreamToken, []byte{1, 2, 3}) || resp.StreamID != "s" {
		t.Fatalf("decoded message aliases input: %+v", resp)
	}
}
