package schema

import (
	"fmt"

	"github.com/danmuck/specter/internal/protocol/tlv"
	"github.com/rs/zerolog/log"
)

// Packet kind IDs. The kind is always the first byte of an encoded packet.
const (
	KindLogin                      uint8 = 0x01
	KindPlayStatus                 uint8 = 0x02
	KindDisconnect                 uint8 = 0x05
	KindResourcePacksInfo          uint8 = 0x06
	KindResourcePackClientResponse uint8 = 0x08
	KindText                       uint8 = 0x09
	KindStartGame                  uint8 = 0x0b
	KindMovePlayer                 uint8 = 0x13
	KindSetHealth                  uint8 = 0x2a
	KindRespawn                    uint8 = 0x2d
	KindRequestChunkRadius         uint8 = 0x45
	KindChunkRadiusUpdated         uint8 = 0x46
	KindSetTitle                   uint8 = 0x58
	KindModalFormRequest           uint8 = 0x64
	KindModalFormResponse          uint8 = 0x65
	KindBatch                      uint8 = 0xfe
)

// Field IDs, grouped by the packet that owns them.
const (
	FieldStatus uint16 = 1
	FieldReason uint16 = 2

	FieldProtocol          uint16 = 10
	FieldUsername          uint16 = 11
	FieldClientUUID        uint16 = 12
	FieldClientID          uint16 = 13
	FieldXUID              uint16 = 14
	FieldIdentityPublicKey uint16 = 15
	FieldSkinID            uint16 = 16
	FieldSkinData          uint16 = 17
	FieldSkipVerification  uint16 = 18

	FieldMustAccept uint16 = 20
	FieldPackIDs    uint16 = 21

	FieldTextType   uint16 = 30
	FieldSource     uint16 = 31
	FieldMessage    uint16 = 32
	FieldParameters uint16 = 33

	FieldEntityRuntimeID uint16 = 40
	FieldPosX            uint16 = 41
	FieldPosY            uint16 = 42
	FieldPosZ            uint16 = 43
	FieldPitch           uint16 = 44
	FieldYaw             uint16 = 45
	FieldHeadYaw         uint16 = 46
	FieldMoveMode        uint16 = 47
	FieldOnGround        uint16 = 48
	FieldWorldName       uint16 = 49

	FieldHealth       uint16 = 50
	FieldRespawnState uint16 = 51
	FieldRadius       uint16 = 52

	FieldTitleType uint16 = 60
	FieldTitleText uint16 = 61

	FieldFormID   uint16 = 70
	FieldFormData uint16 = 71
)

type Requirement struct {
	ID   uint16
	Type uint8
}

type ValidationError struct {
	Kind    uint8
	FieldID uint16
	Reason  string
}

func (e ValidationError) Error() string {
	if e.FieldID == 0 {
		return fmt.Sprintf("schema: kind=0x%02x: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("schema: kind=0x%02x field=%d: %s", e.Kind, e.FieldID, e.Reason)
}

var requirements = map[uint8][]Requirement{
	KindLogin: {
		{FieldProtocol, tlv.TypeI32},
		{FieldUsername, tlv.TypeString},
		{FieldClientUUID, tlv.TypeString},
	},
	KindPlayStatus: {
		{FieldStatus, tlv.TypeU32},
	},
	KindDisconnect: {
		{FieldReason, tlv.TypeString},
	},
	KindResourcePacksInfo: {
		{FieldMustAccept, tlv.TypeBool},
	},
	KindResourcePackClientResponse: {
		{FieldStatus, tlv.TypeU8},
	},
	KindText: {
		{FieldTextType, tlv.TypeU8},
		{FieldMessage, tlv.TypeString},
	},
	KindStartGame: {
		{FieldEntityRuntimeID, tlv.TypeU64},
		{FieldPosX, tlv.TypeF32},
		{FieldPosY, tlv.TypeF32},
		{FieldPosZ, tlv.TypeF32},
	},
	KindMovePlayer: {
		{FieldEntityRuntimeID, tlv.TypeU64},
		{FieldPosX, tlv.TypeF32},
		{FieldPosY, tlv.TypeF32},
		{FieldPosZ, tlv.TypeF32},
		{FieldPitch, tlv.TypeF32},
		{FieldYaw, tlv.TypeF32},
		{FieldMoveMode, tlv.TypeU8},
	},
	KindSetHealth: {
		{FieldHealth, tlv.TypeI32},
	},
	KindRespawn: {
		{FieldPosX, tlv.TypeF32},
		{FieldPosY, tlv.TypeF32},
		{FieldPosZ, tlv.TypeF32},
		{FieldRespawnState, tlv.TypeU8},
	},
	KindRequestChunkRadius: {
		{FieldRadius, tlv.TypeI32},
	},
	KindChunkRadiusUpdated: {
		{FieldRadius, tlv.TypeI32},
	},
	KindSetTitle: {
		{FieldTitleType, tlv.TypeU8},
		{FieldTitleText, tlv.TypeString},
	},
	KindModalFormRequest: {
		{FieldFormID, tlv.TypeU32},
		{FieldFormData, tlv.TypeString},
	},
	KindModalFormResponse: {
		{FieldFormID, tlv.TypeU32},
	},
	KindBatch: {},
}

// Known reports whether kind has a registered field contract.
func Known(kind uint8) bool {
	_, ok := requirements[kind]
	return ok
}

// Validate enforces required fields and required field types for a packet kind.
// Unknown fields are ignored.
func Validate(kind uint8, fields []tlv.Field) error {
	reqs, ok := requirements[kind]
	if !ok {
		log.Debug().Uint8("kind", kind).Msg("schema.Validate unknown kind")
		return ValidationError{Kind: kind, Reason: "unknown packet kind"}
	}
	for _, req := range reqs {
		f, found := tlv.GetField(fields, req.ID)
		if !found {
			log.Debug().Uint8("kind", kind).Uint16("field_id", req.ID).Msg("schema.Validate missing field")
			return ValidationError{Kind: kind, FieldID: req.ID, Reason: "missing required field"}
		}
		if f.Type != req.Type {
			log.Debug().
				Uint8("kind", kind).
				Uint16("field_id", req.ID).
				Uint8("got", f.Type).
				Uint8("want", req.Type).
				Msg("schema.Validate type mismatch")
			return ValidationError{Kind: kind, FieldID: req.ID, Reason: "type mismatch"}
		}
	}
	return nil
}
