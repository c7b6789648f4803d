package packet

import (
	"errors"
	"testing"

	"github.com/danmuck/specter/internal/protocol/schema"
	"github.com/danmuck/specter/internal/protocol/tlv"
	"github.com/danmuck/specter/internal/testutil/testlog"
)

func TestEncodeDecodeMovePlayer(t *testing.T) {
	testlog.Start(t)
	in := &MovePlayer{
		EntityRuntimeID: 42,
		Position:        Vec3{X: 1.5, Y: 65, Z: -3},
		Pitch:           10,
		Yaw:             270,
		HeadYaw:         270,
		Mode:            MoveModeTeleport,
		OnGround:        true,
	}
	buf, err := Encode(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if buf[0] != schema.KindMovePlayer {
		t.Fatalf("unexpected kind byte: 0x%02x", buf[0])
	}
	pk, err := Decode(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got, ok := pk.(*MovePlayer)
	if !ok {
		t.Fatalf("expected *MovePlayer, got %T", pk)
	}
	if *got != *in {
		t.Fatalf("move player mismatch: got=%+v want=%+v", got, in)
	}
}

func TestEncodeDecodeLoginKeepsSkin(t *testing.T) {
	testlog.Start(t)
	in := &Login{
		Protocol:         291,
		Username:         "steve",
		ClientUUID:       "uuid",
		SkinData:         []byte{0x80, 0x80, 0x80, 0x80},
		SkipVerification: true,
	}
	buf, err := Encode(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	pk, err := Decode(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := pk.(*Login)
	if got.Username != "steve" || got.Protocol != 291 || !got.SkipVerification || len(got.SkinData) != 4 {
		t.Fatalf("unexpected login: %+v", got)
	}
}

func TestDecodeUnknownKind(t *testing.T) {
	testlog.Start(t)
	_, err := Decode([]byte{0x7f})
	if !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	if _, err := Decode(nil); !errors.Is(err, ErrEmptyBuffer) {
		t.Fatalf("expected ErrEmptyBuffer, got %v", err)
	}
}

func TestDecodeMissingRequiredField(t *testing.T) {
	testlog.Start(t)
	buf := append([]byte{schema.KindSetHealth}, tlv.EncodeFields(nil)...)
	_, err := Decode(buf)
	var ve schema.ValidationError
	if !errors.As(err, &ve) || ve.FieldID != schema.FieldHealth {
		t.Fatalf("expected missing health field, got %v", err)
	}
}

func TestDecodeIntoKindMismatch(t *testing.T) {
	testlog.Start(t)
	buf, err := Encode(&SetHealth{Health: 4})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := DecodeInto(&Respawn{}, buf); !errors.Is(err, ErrKindMismatch) {
		t.Fatalf("expected ErrKindMismatch, got %v", err)
	}
}

func TestCanBeBatched(t *testing.T) {
	if !CanBeBatched(schema.KindText) {
		t.Fatalf("text should be batchable")
	}
	if CanBeBatched(schema.KindBatch) {
		t.Fatalf("batch must not nest")
	}
	if CanBeBatched(0x7f) {
		t.Fatalf("unknown kinds are not batchable")
	}
}

func TestBatchRoundTrip(t *testing.T) {
	testlog.Start(t)
	b, err := NewBatch(
		&PlayStatus{Status: PlayStatusLoginSuccess},
		&Text{Type: TextTranslation, Message: "%death", Parameters: []string{"steve", "zombie"}},
	)
	if err != nil {
		t.Fatalf("new batch: %v", err)
	}
	buf, err := Encode(b)
	if err != nil {
		t.Fatalf("encode batch: %v", err)
	}
	pk, err := Decode(buf)
	if err != nil {
		t.Fatalf("decode batch: %v", err)
	}
	bufs, err := pk.(*Batch).Buffers()
	if err != nil {
		t.Fatalf("buffers: %v", err)
	}
	if len(bufs) != 2 {
		t.Fatalf("expected 2 buffers, got %d", len(bufs))
	}
	second, err := Decode(bufs[1])
	if err != nil {
		t.Fatalf("decode second: %v", err)
	}
	text := second.(*Text)
	if text.Message != "%death" || len(text.Parameters) != 2 || text.Parameters[1] != "zombie" {
		t.Fatalf("unexpected text: %+v", text)
	}
}

func TestNewBatchRejectsNestedBatch(t *testing.T) {
	testlog.Start(t)
	inner, err := NewBatch(&SetHealth{Health: 1})
	if err != nil {
		t.Fatalf("inner: %v", err)
	}
	if _, err := NewBatch(inner); !errors.Is(err, ErrNotBatchable) {
		t.Fatalf("expected ErrNotBatchable, got %v", err)
	}
}

func TestMoveModeString(t *testing.T) {
	if MoveModeNormal.String() != "normal" || MoveModeRotation.String() != "rotation" || MoveMode(9).String() != "unknown" {
		t.Fatalf("unexpected move mode names")
	}
}
