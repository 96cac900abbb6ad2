// Package wire holds protobuf wire-format field primitives.
//
// A message is a flat list of fields; nested messages stay encoded in
// Value until a caller asks for them with Fields. Decoding copies every
// value so no caller buffer is retained.
package wire

import (
	"errors"
	"fmt"
	"math"
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protowire"
)

var (
	ErrShortFieldHeader = errors.New("wire: short field header")
	ErrShortFieldValue  = errors.New("wire: short field value")
	ErrUnsupportedType  = errors.New("wire: unsupported wire type")
	ErrTypeMismatch     = errors.New("wire: field type mismatch")
	ErrInvalidUTF8      = errors.New("wire: invalid utf-8 string")
	ErrInvalidBool      = errors.New("wire: invalid bool value")
	ErrOverflow         = errors.New("wire: integer overflow")
)

// Field is one decoded protobuf field.
type Field struct {
	Num  protowire.Number
	Type protowire.Type
	// Int carries varint, fixed32 and fixed64 payloads.
	Int uint64
	// Value carries length-delimited payloads.
	Value []byte
}

// AppendField appends the encoded form of f to b.
func AppendField(b []byte, f Field) []byte {
	b = protowire.AppendTag(b, f.Num, f.Type)
	switch f.Type {
	case protowire.VarintType:
		b = protowire.AppendVarint(b, f.Int)
	case protowire.Fixed32Type:
		b = protowire.AppendFixed32(b, uint32(f.Int))
	case protowire.Fixed64Type:
		b = protowire.AppendFixed64(b, f.Int)
	default:
		b = protowire.AppendBytes(b, f.Value)
	}
	return b
}

func EncodeField(f Field) []byte {
	return AppendField(nil, f)
}

func EncodeFields(fields []Field) []byte {
	size := 0
	for _, f := range fields {
		size += Size(f)
	}
	out := make([]byte, 0, size)
	for _, f := range fields {
		out = AppendField(out, f)
	}
	return out
}

// Size returns the encoded length of f.
func Size(f Field) int {
	n := protowire.SizeTag(f.Num)
	switch f.Type {
	case protowire.VarintType:
		n += protowire.SizeVarint(f.Int)
	case protowire.Fixed32Type:
		n += protowire.SizeFixed32()
	case protowire.Fixed64Type:
		n += protowire.SizeFixed64()
	default:
		n += protowire.SizeBytes(len(f.Value))
	}
	return n
}

// DecodeFields splits payload into its top-level fields. Group wire types
// are rejected; everything else is bounds-checked by protowire.
func DecodeFields(payload []byte) ([]Field, error) {
	fields := make([]Field, 0, 4)
	for i := 0; i < len(payload); {
		num, typ, n := protowire.ConsumeTag(payload[i:])
		if n < 0 {
			return nil, fmt.Errorf("%w at offset %d: %v", ErrShortFieldHeader, i, protowire.ParseError(n))
		}
		i += n
		f := Field{Num: num, Type: typ}
		switch typ {
		case protowire.VarintType:
			v, m := protowire.ConsumeVarint(payload[i:])
			if m < 0 {
				return nil, fmt.Errorf("%w: field %d: %v", ErrShortFieldValue, num, protowire.ParseError(m))
			}
			f.Int, n = v, m
		case protowire.Fixed32Type:
			v, m := protowire.ConsumeFixed32(payload[i:])
			if m < 0 {
				return nil, fmt.Errorf("%w: field %d: %v", ErrShortFieldValue, num, protowire.ParseError(m))
			}
			f.Int, n = uint64(v), m
		case protowire.Fixed64Type:
			v, m := protowire.ConsumeFixed64(payload[i:])
			if m < 0 {
				return nil, fmt.Errorf("%w: field %d: %v", ErrShortFieldValue, num, protowire.ParseError(m))
			}
			f.Int, n = v, m
		case protowire.BytesType:
			v, m := protowire.ConsumeBytes(payload[i:])
			if m < 0 {
				return nil, fmt.Errorf("%w: field %d: %v", ErrShortFieldValue, num, protowire.ParseError(m))
			}
			f.Value = make([]byte, len(v))
			copy(f.Value, v)
			n = m
		default:
			return nil, fmt.Errorf("%w: field %d type %d", ErrUnsupportedType, num, typ)
		}
		i += n
		fields = append(fields, f)
	}
	return fields, nil
}

// GetField returns the last occurrence of num, matching protobuf merge
// semantics for singular fields.
func GetField(fields []Field, num protowire.Number) (Field, bool) {
	for i := len(fields) - 1; i >= 0; i-- {
		if fields[i].Num == num {
			return fields[i], true
		}
	}
	return Field{}, false
}

// GetRepeated returns every occurrence of num in wire order.
func GetRepeated(fields []Field, num protowire.Number) []Field {
	var out []Field
	for _, f := range fields {
		if f.Num == num {
			out = append(out, f)
		}
	}
	return out
}

func MustType(f Field, expected protowire.Type) error {
	if f.Type != expected {
		return fmt.Errorf("%w: field %d got %d want %d", ErrTypeMismatch, f.Num, f.Type, expected)
	}
	return nil
}

func Varint(num protowire.Number, v uint64) Field {
	return Field{Num: num, Type: protowire.VarintType, Int: v}
}

// Int32 encodes v the way protobuf encodes int32: negatives are sign
// extended to ten bytes.
func Int32(num protowire.Number, v int32) Field {
	return Varint(num, uint64(int64(v)))
}

func Int64(num protowire.Number, v int64) Field {
	return Varint(num, uint64(v))
}

func Bool(num protowire.Number, v bool) Field {
	return Varint(num, protowire.EncodeBool(v))
}

func String(num protowire.Number, v string) Field {
	return Field{Num: num, Type: protowire.BytesType, Value: []byte(v)}
}

func Bytes(num protowire.Number, v []byte) Field {
	buf := make([]byte, len(v))
	copy(buf, v)
	return Field{Num: num, Type: protowire.BytesType, Value: buf}
}

// Message encodes fields as a nested message under num.
func Message(num protowire.Number, fields []Field) Field {
	return Field{Num: num, Type: protowire.BytesType, Value: EncodeFields(fields)}
}

// PackedInt32s encodes vs as one packed repeated field.
func PackedInt32s(num protowire.Number, vs []int32) Field {
	var buf []byte
	for _, v := range vs {
		buf = protowire.AppendVarint(buf, uint64(int64(v)))
	}
	return Field{Num: num, Type: protowire.BytesType, Value: buf}
}

func (f Field) Uint64() (uint64, error) {
	if err := MustType(f, protowire.VarintType); err != nil {
		return 0, err
	}
	return f.Int, nil
}

// Int32 decodes an int32 varint. Values outside the int32 range are
// rejected rather than truncated.
func (f Field) Int32() (int32, error) {
	if err := MustType(f, protowire.VarintType); err != nil {
		return 0, err
	}
	v := int64(f.Int)
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fmt.Errorf("%w: field %d value %d", ErrOverflow, f.Num, v)
	}
	return int32(v), nil
}

func (f Field) Int64() (int64, error) {
	if err := MustType(f, protowire.VarintType); err != nil {
		return 0, err
	}
	return int64(f.Int), nil
}

func (f Field) Bool() (bool, error) {
	if err := MustType(f, protowire.VarintType); err != nil {
		return false, err
	}
	switch f.Int {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: field %d value %d", ErrInvalidBool, f.Num, f.Int)
	}
}

// Text returns a length-delimited field as a validated UTF-8 string.
func (f Field) Text() (string, error) {
	if err := MustType(f, protowire.BytesType); err != nil {
		return "", err
	}
	if !utf8.Valid(f.Value) {
		return "", fmt.Errorf("%w: field %d", ErrInvalidUTF8, f.Num)
	}
	return string(f.Value), nil
}

func (f Field) Bytes() ([]byte, error) {
	if err := MustType(f, protowire.BytesType); err != nil {
		return nil, err
	}
	buf := make([]byte, len(f.Value))
	copy(buf, f.Value)
	return buf, nil
}

// Fields decodes a nested message field.
func (f Field) Fields() ([]Field, error) {
	if err := MustType(f, protowire.BytesType); err != nil {
		return nil, err
	}
	return DecodeFields(f.Value)
}

// Int32s collects every occurrence of a repeated int32 field, accepting
// both packed and unpacked encodings.
func Int32s(fields []Field, num protowire.Number) ([]int32, error) {
	var out []int32
	for _, f := range fields {
		if f.Num != num {
			continue
		}
		switch f.Type {
		case protowire.VarintType:
			v, err := f.Int32()
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		case protowire.BytesType:
			for b := f.Value; len(b) > 0; {
				u, n := protowire.ConsumeVarint(b)
				if n < 0 {
					return nil, fmt.Errorf("%w: packed field %d: %v", ErrShortFieldValue, num, protowire.ParseError(n))
				}
				v, err := Varint(num, u).Int32()
				if err != nil {
					return nil, err
				}
				out = append(out, v)
				b = b[n:]
			}
		default:
			return nil, fmt.Errorf("%w: field %d got %d", ErrTypeMismatch, num, f.Type)
		}
	}
	return out, nil
}
