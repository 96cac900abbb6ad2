// Package wiretext renders decoded wire fields as compact text for logs
// and diagnostics. It works on the field list directly and never
// re-encodes a message.
package wiretext

import (
	"encoding/hex"
	"strconv"
	"strings"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/danmuck/docsync/internal/protocol/schema"
	"github.com/danmuck/docsync/internal/protocol/wire"
)

// maxDepth bounds recursion into nested messages.
const maxDepth = 32

// Format renders fields as mt. Known fields print by schema name, unknown
// ones as #<num>. Malformed nested values print as <malformed>.
func Format(mt schema.MessageType, fields []wire.Field) string {
	var sb strings.Builder
	writeMessage(&sb, mt, fields, 0)
	return sb.String()
}

// FormatBytes decodes payload as mt and renders it.
func FormatBytes(mt schema.MessageType, payload []byte) (string, error) {
	fields, err := wire.DecodeFields(payload)
	if err != nil {
		return "", err
	}
	return Format(mt, fields), nil
}

func writeMessage(sb *strings.Builder, mt schema.MessageType, fields []wire.Field, depth int) {
	sb.WriteString(mt.String())
	sb.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fs, known := schema.FieldByNum(mt, f.Num)
		if !known {
			sb.WriteByte('#')
			sb.WriteString(strconv.Itoa(int(f.Num)))
			sb.WriteByte(':')
			writeRaw(sb, f)
			continue
		}
		sb.WriteString(fs.Name)
		sb.WriteByte(':')
		writeValue(sb, fs, f, depth)
	}
	sb.WriteByte('}')
}

func writeValue(sb *strings.Builder, fs schema.FieldSpec, f wire.Field, depth int) {
	if f.Type != fs.Kind.WireType() {
		if fs.Repeated && fs.Kind.Packable() && f.Type == protowire.BytesType {
			writePacked(sb, fs, f.Value)
			return
		}
		sb.WriteString("<malformed>")
		return
	}
	switch fs.Kind {
	case schema.KindInt32, schema.KindInt64, schema.KindEnum:
		sb.WriteString(strconv.FormatInt(int64(f.Int), 10))
	case schema.KindBool:
		sb.WriteString(strconv.FormatBool(f.Int != 0))
	case schema.KindString:
		sb.WriteString(strconv.Quote(string(f.Value)))
	case schema.KindBytes:
		writeHex(sb, f.Value)
	case schema.KindMessage:
		if depth >= maxDepth {
			sb.WriteString("<too deep>")
			return
		}
		nested, err := wire.DecodeFields(f.Value)
		if err != nil {
			sb.WriteString("<malformed>")
			return
		}
		writeMessage(sb, fs.Message, nested, depth+1)
	}
}

func writePacked(sb *strings.Builder, fs schema.FieldSpec, b []byte) {
	sb.WriteByte('[')
	for first := true; len(b) > 0; first = false {
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			sb.WriteString("<malformed>]")
			return
		}
		if !first {
			sb.WriteByte(' ')
		}
		if fs.Kind == schema.KindBool {
			sb.WriteString(strconv.FormatBool(v != 0))
		} else {
			sb.WriteString(strconv.FormatInt(int64(v), 10))
		}
		b = b[n:]
	}
	sb.WriteByte(']')
}

func writeRaw(sb *strings.Builder, f wire.Field) {
	switch f.Type {
	case protowire.BytesType:
		writeHex(sb, f.Value)
	default:
		sb.WriteString(strconv.FormatUint(f.Int, 10))
	}
}

func writeHex(sb *strings.Builder, b []byte) {
	sb.WriteString("0x")
	sb.WriteString(hex.EncodeToString(b))
}
