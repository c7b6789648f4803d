package tlv

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const HeaderLen = 7

var (
	ErrShortFieldHeader  = errors.New("tlv: short field header")
	ErrShortFieldValue   = errors.New("tlv: short field value")
	ErrFieldTypeMismatch = errors.New("tlv: field type mismatch")
	ErrInvalidLength     = errors.New("tlv: invalid length")
)

// Type IDs from tlv contract.
const (
	TypeU8      uint8 = 1
	TypeU16     uint8 = 2
	TypeU32     uint8 = 3
	TypeU64     uint8 = 4
	TypeBool    uint8 = 5
	TypeString  uint8 = 6
	TypeBytes   uint8 = 7
	TypeI32     uint8 = 8
	TypeI64     uint8 = 9
	TypeF32     uint8 = 10
	TypeStrings uint8 = 11
)

// Field is one decoded TLV field.
type Field struct {
	ID    uint16
	Type  uint8
	Value []byte
}

func EncodeField(f Field) []byte {
	buf := make([]byte, HeaderLen+len(f.Value))
	binary.BigEndian.PutUint16(buf[0:2], f.ID)
	buf[2] = f.Type
	binary.BigEndian.PutUint32(buf[3:7], uint32(len(f.Value)))
	copy(buf[7:], f.Value)
	return buf
}

func DecodeFields(payload []byte) ([]Field, error) {
	fields := make([]Field, 0)
	i := 0
	for i < len(payload) {
		if len(payload)-i < HeaderLen {
			return nil, ErrShortFieldHeader
		}
		id := binary.BigEndian.Uint16(payload[i : i+2])
		typeID := payload[i+2]
		l := binary.BigEndian.Uint32(payload[i+3 : i+7])
		i += HeaderLen
		if uint32(len(payload)-i) < l {
			return nil, ErrShortFieldValue
		}
		val := make([]byte, l)
		copy(val, payload[i:i+int(l)])
		i += int(l)
		fields = append(fields, Field{ID: id, Type: typeID, Value: val})
	}
	return fields, nil
}

func EncodeFields(fields []Field) []byte {
	out := make([]byte, 0)
	for _, f := range fields {
		out = append(out, EncodeField(f)...)
	}
	return out
}

func GetField(fields []Field, id uint16) (Field, bool) {
	for _, f := range fields {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

func MustType(f Field, expected uint8) error {
	if f.Type != expected {
		return fmt.Errorf("tlv: field %d type mismatch: got %d want %d", f.ID, f.Type, expected)
	}
	return nil
}

func U8(id uint16, v uint8) Field {
	return Field{ID: id, Type: TypeU8, Value: []byte{v}}
}

func U32(id uint16, v uint32) Field {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, v)
	return Field{ID: id, Type: TypeU32, Value: buf}
}

func U64(id uint16, v uint64) Field {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return Field{ID: id, Type: TypeU64, Value: buf}
}

func I32(id uint16, v int32) Field {
	f := U32(id, uint32(v))
	f.Type = TypeI32
	return f
}

func I64(id uint16, v int64) Field {
	f := U64(id, uint64(v))
	f.Type = TypeI64
	return f
}

func F32(id uint16, v float32) Field {
	f := U32(id, math.Float32bits(v))
	f.Type = TypeF32
	return f
}

func Bool(id uint16, v bool) Field {
	b := byte(0)
	if v {
		b = 1
	}
	return Field{ID: id, Type: TypeBool, Value: []byte{b}}
}

func String(id uint16, v string) Field {
	return Field{ID: id, Type: TypeString, Value: []byte(v)}
}

func Bytes(id uint16, v []byte) Field {
	buf := make([]byte, len(v))
	copy(buf, v)
	return Field{ID: id, Type: TypeBytes, Value: buf}
}

// Strings encodes a list as repeated u32 length-prefixed entries.
func Strings(id uint16, v []string) Field {
	out := make([]byte, 0)
	for _, s := range v {
		out = binary.BigEndian.AppendUint32(out, uint32(len(s)))
		out = append(out, s...)
	}
	return Field{ID: id, Type: TypeStrings, Value: out}
}

func (f Field) AsU8() (uint8, error) {
	if f.Type != TypeU8 {
		return 0, ErrFieldTypeMismatch
	}
	if len(f.Value) != 1 {
		return 0, ErrInvalidLength
	}
	return f.Value[0], nil
}

func (f Field) AsU32() (uint32, error) {
	if f.Type != TypeU32 {
		return 0, ErrFieldTypeMismatch
	}
	return fixed32(f.Value)
}

func (f Field) AsU64() (uint64, error) {
	if f.Type != TypeU64 {
		return 0, ErrFieldTypeMismatch
	}
	return fixed64(f.Value)
}

func (f Field) AsI32() (int32, error) {
	if f.Type != TypeI32 {
		return 0, ErrFieldTypeMismatch
	}
	v, err := fixed32(f.Value)
	return int32(v), err
}

func (f Field) AsI64() (int64, error) {
	if f.Type != TypeI64 {
		return 0, ErrFieldTypeMismatch
	}
	v, err := fixed64(f.Value)
	return int64(v), err
}

func (f Field) AsF32() (float32, error) {
	if f.Type != TypeF32 {
		return 0, ErrFieldTypeMismatch
	}
	v, err := fixed32(f.Value)
	return math.Float32frombits(v), err
}

func (f Field) AsBool() (bool, error) {
	if f.Type != TypeBool {
		return false, ErrFieldTypeMismatch
	}
	if len(f.Value) != 1 {
		return false, ErrInvalidLength
	}
	switch f.Value[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, errors.New("tlv: invalid bool value")
	}
}

func (f Field) AsString() (string, error) {
	if f.Type != TypeString {
		return "", ErrFieldTypeMismatch
	}
	return string(f.Value), nil
}

func (f Field) AsBytes() ([]byte, error) {
	if f.Type != TypeBytes {
		return nil, ErrFieldTypeMismatch
	}
	buf := make([]byte, len(f.Value))
	copy(buf, f.Value)
	return buf, nil
}

func (f Field) AsStrings() ([]string, error) {
	if f.Type != TypeStrings {
		return nil, ErrFieldTypeMismatch
	}
	out := make([]string, 0)
	for i := 0; i < len(f.Value); {
		if len(f.Value)-i < 4 {
			return nil, ErrInvalidLength
		}
		l := int(binary.BigEndian.Uint32(f.Value[i : i+4]))
		i += 4
		if len(f.Value)-i < l {
			return nil, ErrShortFieldValue
		}
		out = append(out, string(f.Value[i:i+l]))
		i += l
	}
	return out, nil
}

func fixed32(b []byte) (uint32, error) {
	if len(b) != 4 {
		return 0, ErrInvalidLength
	}
	return binary.BigEndian.Uint32(b), nil
}

func fixed64(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, ErrInvalidLength
	}
	return binary.BigEndian.Uint64(b), nil
}
