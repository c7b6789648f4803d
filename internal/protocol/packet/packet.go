// Package packet owns the closed set of protocol packets exchanged with a
// client session and their wire encoding.
//
// Wire layout:
// - byte 0 is the packet kind (schema.Kind*)
// - the remainder is a TLV field list validated by schema.Validate
// - Batch is the exception: its buffer is a frame container
package packet

import (
	"errors"
	"fmt"

	"github.com/danmuck/specter/internal/protocol/schema"
	"github.com/danmuck/specter/internal/protocol/tlv"
)

var (
	ErrEmptyBuffer   = errors.New("packet: empty buffer")
	ErrUnknownKind   = errors.New("packet: unknown kind")
	ErrNotBatchable  = errors.New("packet: kind not permitted inside batch")
	ErrKindMismatch  = errors.New("packet: kind mismatch")
	ErrInvalidPacket = errors.New("packet: invalid packet")
)

// Packet is implemented only by the types in this package.
type Packet interface {
	ID() uint8
	marshal() []tlv.Field
	unmarshal(r *fieldReader)
}

var pool = map[uint8]func() Packet{
	schema.KindLogin:                      func() Packet { return &Login{} },
	schema.KindPlayStatus:                 func() Packet { return &PlayStatus{} },
	schema.KindDisconnect:                 func() Packet { return &Disconnect{} },
	schema.KindResourcePacksInfo:          func() Packet { return &ResourcePacksInfo{} },
	schema.KindResourcePackClientResponse: func() Packet { return &ResourcePackClientResponse{} },
	schema.KindText:                       func() Packet { return &Text{} },
	schema.KindStartGame:                  func() Packet { return &StartGame{} },
	schema.KindMovePlayer:                 func() Packet { return &MovePlayer{} },
	schema.KindSetHealth:                  func() Packet { return &SetHealth{} },
	schema.KindRespawn:                    func() Packet { return &Respawn{} },
	schema.KindRequestChunkRadius:         func() Packet { return &RequestChunkRadius{} },
	schema.KindChunkRadiusUpdated:         func() Packet { return &ChunkRadiusUpdated{} },
	schema.KindSetTitle:                   func() Packet { return &SetTitle{} },
	schema.KindModalFormRequest:           func() Packet { return &ModalFormRequest{} },
	schema.KindModalFormResponse:          func() Packet { return &ModalFormResponse{} },
	schema.KindBatch:                      func() Packet { return &Batch{} },
}

// ByID returns an empty packet for kind.
func ByID(kind uint8) (Packet, error) {
	ctor, ok := pool[kind]
	if !ok {
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownKind, kind)
	}
	return ctor(), nil
}

// CanBeBatched reports whether kind may appear inside a Batch container.
func CanBeBatched(kind uint8) bool {
	_, ok := pool[kind]
	return ok && kind != schema.KindBatch
}

// Name returns a stable label for kind, used in logs and metrics.
func Name(kind uint8) string {
	switch kind {
	case schema.KindLogin:
		return "login"
	case schema.KindPlayStatus:
		return "play_status"
	case schema.KindDisconnect:
		return "disconnect"
	case schema.KindResourcePacksInfo:
		return "resource_packs_info"
	case schema.KindResourcePackClientResponse:
		return "resource_pack_client_response"
	case schema.KindText:
		return "text"
	case schema.KindStartGame:
		return "start_game"
	case schema.KindMovePlayer:
		return "move_player"
	case schema.KindSetHealth:
		return "set_health"
	case schema.KindRespawn:
		return "respawn"
	case schema.KindRequestChunkRadius:
		return "request_chunk_radius"
	case schema.KindChunkRadiusUpdated:
		return "chunk_radius_updated"
	case schema.KindSetTitle:
		return "set_title"
	case schema.KindModalFormRequest:
		return "modal_form_request"
	case schema.KindModalFormResponse:
		return "modal_form_response"
	case schema.KindBatch:
		return "batch"
	default:
		return fmt.Sprintf("unknown_0x%02x", kind)
	}
}

// Encode returns the wire buffer for pk.
func Encode(pk Packet) ([]byte, error) {
	if pk == nil {
		return nil, ErrInvalidPacket
	}
	if b, ok := pk.(*Batch); ok {
		if len(b.Payload) == 0 || b.Payload[0] != schema.KindBatch {
			return nil, fmt.Errorf("%w: batch payload missing kind prefix", ErrInvalidPacket)
		}
		out := make([]byte, len(b.Payload))
		copy(out, b.Payload)
		return out, nil
	}
	fields := pk.marshal()
	if err := schema.Validate(pk.ID(), fields); err != nil {
		return nil, err
	}
	out := []byte{pk.ID()}
	return append(out, tlv.EncodeFields(fields)...), nil
}

// Decode resolves the kind from the first byte and decodes the rest of buf.
func Decode(buf []byte) (Packet, error) {
	if len(buf) == 0 {
		return nil, ErrEmptyBuffer
	}
	pk, err := ByID(buf[0])
	if err != nil {
		return nil, err
	}
	if err := DecodeInto(pk, buf); err != nil {
		return nil, err
	}
	return pk, nil
}

// DecodeInto fills pk from buf; buf[0] must match pk.ID().
func DecodeInto(pk Packet, buf []byte) error {
	if len(buf) == 0 {
		return ErrEmptyBuffer
	}
	if buf[0] != pk.ID() {
		return fmt.Errorf("%w: got 0x%02x want 0x%02x", ErrKindMismatch, buf[0], pk.ID())
	}
	if b, ok := pk.(*Batch); ok {
		b.Payload = make([]byte, len(buf))
		copy(b.Payload, buf)
		return nil
	}
	fields, err := tlv.DecodeFields(buf[1:])
	if err != nil {
		return fmt.Errorf("decode %s: %w", Name(pk.ID()), err)
	}
	if err := schema.Validate(pk.ID(), fields); err != nil {
		return err
	}
	r := &fieldReader{fields: fields}
	pk.unmarshal(r)
	if r.err != nil {
		return fmt.Errorf("decode %s: %w", Name(pk.ID()), r.err)
	}
	return nil
}

// fieldReader reads optional fields and keeps the first accessor error.
type fieldReader struct {
	fields []tlv.Field
	err    error
}

func (r *fieldReader) field(id uint16) (tlv.Field, bool) {
	if r.err != nil {
		return tlv.Field{}, false
	}
	return tlv.GetField(r.fields, id)
}

func (r *fieldReader) fail(err error) {
	if err != nil && r.err == nil {
		r.err = err
	}
}

func (r *fieldReader) u8(id uint16) uint8 {
	f, ok := r.field(id)
	if !ok {
		return 0
	}
	v, err := f.AsU8()
	r.fail(err)
	return v
}

func (r *fieldReader) u32(id uint16) uint32 {
	f, ok := r.field(id)
	if !ok {
		return 0
	}
	v, err := f.AsU32()
	r.fail(err)
	return v
}

func (r *fieldReader) u64(id uint16) uint64 {
	f, ok := r.field(id)
	if !ok {
		return 0
	}
	v, err := f.AsU64()
	r.fail(err)
	return v
}

func (r *fieldReader) i32(id uint16) int32 {
	f, ok := r.field(id)
	if !ok {
		return 0
	}
	v, err := f.AsI32()
	r.fail(err)
	return v
}

func (r *fieldReader) i64(id uint16) int64 {
	f, ok := r.field(id)
	if !ok {
		return 0
	}
	v, err := f.AsI64()
	r.fail(err)
	return v
}

func (r *fieldReader) f32(id uint16) float32 {
	f, ok := r.field(id)
	if !ok {
		return 0
	}
	v, err := f.AsF32()
	r.fail(err)
	return v
}

func (r *fieldReader) boolean(id uint16) bool {
	f, ok := r.field(id)
	if !ok {
		return false
	}
	v, err := f.AsBool()
	r.fail(err)
	return v
}

func (r *fieldReader) str(id uint16) string {
	f, ok := r.field(id)
	if !ok {
		return ""
	}
	v, err := f.AsString()
	r.fail(err)
	return v
}

func (r *fieldReader) bytes(id uint16) []byte {
	f, ok := r.field(id)
	if !ok {
		return nil
	}
	v, err := f.AsBytes()
	r.fail(err)
	return v
}

func (r *fieldReader) strs(id uint16) []string {
	f, ok := r.field(id)
	if !ok {
		return nil
	}
	v, err := f.AsStrings()
	r.fail(err)
	return v
}

func (r *fieldReader) vec3() Vec3 {
	return Vec3{
		X: r.f32(schema.FieldPosX),
		Y: r.f32(schema.FieldPosY),
		Z: r.f32(schema.FieldPosZ),
	}
}

func vec3Fields(v Vec3) []tlv.Field {
	return []tlv.Field{
		tlv.F32(schema.FieldPosX, v.X),
		tlv.F32(schema.FieldPosY, v.Y),
		tlv.F32(schema.FieldPosZ, v.Z),
	}
}
