package packet

import (
	"github.com/danmuck/specter/internal/protocol/schema"
	"github.com/danmuck/specter/internal/protocol/tlv"
)

// Vec3 is a world position in blocks.
type Vec3 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

// MoveMode is the movement mode carried by MovePlayer.
type MoveMode uint8

const (
	MoveModeNormal MoveMode = iota
	MoveModeReset
	MoveModeTeleport
	MoveModeRotation
)

func (m MoveMode) String() string {
	switch m {
	case MoveModeNormal:
		return "normal"
	case MoveModeReset:
		return "reset"
	case MoveModeTeleport:
		return "teleport"
	case MoveModeRotation:
		return "rotation"
	default:
		return "unknown"
	}
}

const (
	PlayStatusLoginSuccess      uint32 = 0
	PlayStatusLoginFailedClient uint32 = 1
	PlayStatusLoginFailedServer uint32 = 2
	PlayStatusPlayerSpawn       uint32 = 3
)

const (
	ResourcePackRefused      uint8 = 1
	ResourcePackSendPacks    uint8 = 2
	ResourcePackHaveAllPacks uint8 = 3
	ResourcePackCompleted    uint8 = 4
)

const (
	TextRaw          uint8 = 0
	TextChat         uint8 = 1
	TextTranslation  uint8 = 2
	TextPopup        uint8 = 3
	TextJukeboxPopup uint8 = 4
	TextTip          uint8 = 5
	TextSystem       uint8 = 6
	TextWhisper      uint8 = 7
	TextAnnouncement uint8 = 8
)

const (
	RespawnSearching   uint8 = 0
	RespawnServerReady uint8 = 1
	RespawnClientReady uint8 = 2
)

const (
	TitleClear     uint8 = 0
	TitleReset     uint8 = 1
	TitleTitle     uint8 = 2
	TitleSubtitle  uint8 = 3
	TitleActionBar uint8 = 4
)

// Login opens a connection. Skin data is raw RGBA.
type Login struct {
	Protocol          int32
	Username          string
	ClientUUID        string
	ClientID          int64
	XUID              string
	IdentityPublicKey string
	SkinID            string
	SkinData          []byte
	SkipVerification  bool
}

func (*Login) ID() uint8 { return schema.KindLogin }

func (p *Login) marshal() []tlv.Field {
	return []tlv.Field{
		tlv.I32(schema.FieldProtocol, p.Protocol),
		tlv.String(schema.FieldUsername, p.Username),
		tlv.String(schema.FieldClientUUID, p.ClientUUID),
		tlv.I64(schema.FieldClientID, p.ClientID),
		tlv.String(schema.FieldXUID, p.XUID),
		tlv.String(schema.FieldIdentityPublicKey, p.IdentityPublicKey),
		tlv.String(schema.FieldSkinID, p.SkinID),
		tlv.Bytes(schema.FieldSkinData, p.SkinData),
		tlv.Bool(schema.FieldSkipVerification, p.SkipVerification),
	}
}

func (p *Login) unmarshal(r *fieldReader) {
	p.Protocol = r.i32(schema.FieldProtocol)
	p.Username = r.str(schema.FieldUsername)
	p.ClientUUID = r.str(schema.FieldClientUUID)
	p.ClientID = r.i64(schema.FieldClientID)
	p.XUID = r.str(schema.FieldXUID)
	p.IdentityPublicKey = r.str(schema.FieldIdentityPublicKey)
	p.SkinID = r.str(schema.FieldSkinID)
	p.SkinData = r.bytes(schema.FieldSkinData)
	p.SkipVerification = r.boolean(schema.FieldSkipVerification)
}

type PlayStatus struct {
	Status uint32
}

func (*PlayStatus) ID() uint8 { return schema.KindPlayStatus }

func (p *PlayStatus) marshal() []tlv.Field {
	return []tlv.Field{tlv.U32(schema.FieldStatus, p.Status)}
}

func (p *PlayStatus) unmarshal(r *fieldReader) {
	p.Status = r.u32(schema.FieldStatus)
}

type Disconnect struct {
	Reason string
}

func (*Disconnect) ID() uint8 { return schema.KindDisconnect }

func (p *Disconnect) marshal() []tlv.Field {
	return []tlv.Field{tlv.String(schema.FieldReason, p.Reason)}
}

func (p *Disconnect) unmarshal(r *fieldReader) {
	p.Reason = r.str(schema.FieldReason)
}

type ResourcePacksInfo struct {
	MustAccept bool
	PackIDs    []string
}

func (*ResourcePacksInfo) ID() uint8 { return schema.KindResourcePacksInfo }

func (p *ResourcePacksInfo) marshal() []tlv.Field {
	return []tlv.Field{
		tlv.Bool(schema.FieldMustAccept, p.MustAccept),
		tlv.Strings(schema.FieldPackIDs, p.PackIDs),
	}
}

func (p *ResourcePacksInfo) unmarshal(r *fieldReader) {
	p.MustAccept = r.boolean(schema.FieldMustAccept)
	p.PackIDs = r.strs(schema.FieldPackIDs)
}

type ResourcePackClientResponse struct {
	Status  uint8
	PackIDs []string
}

func (*ResourcePackClientResponse) ID() uint8 { return schema.KindResourcePackClientResponse }

func (p *ResourcePackClientResponse) marshal() []tlv.Field {
	return []tlv.Field{
		tlv.U8(schema.FieldStatus, p.Status),
		tlv.Strings(schema.FieldPackIDs, p.PackIDs),
	}
}

func (p *ResourcePackClientResponse) unmarshal(r *fieldReader) {
	p.Status = r.u8(schema.FieldStatus)
	p.PackIDs = r.strs(schema.FieldPackIDs)
}

// Text carries chat and UI text; Parameters are only meaningful for translations.
type Text struct {
	Type       uint8
	Source     string
	Message    string
	Parameters []string
}

func (*Text) ID() uint8 { return schema.KindText }

func (p *Text) marshal() []tlv.Field {
	return []tlv.Field{
		tlv.U8(schema.FieldTextType, p.Type),
		tlv.String(schema.FieldSource, p.Source),
		tlv.String(schema.FieldMessage, p.Message),
		tlv.Strings(schema.FieldParameters, p.Parameters),
	}
}

func (p *Text) unmarshal(r *fieldReader) {
	p.Type = r.u8(schema.FieldTextType)
	p.Source = r.str(schema.FieldSource)
	p.Message = r.str(schema.FieldMessage)
	p.Parameters = r.strs(schema.FieldParameters)
}

type StartGame struct {
	EntityRuntimeID uint64
	Position        Vec3
	Pitch           float32
	Yaw             float32
	WorldName       string
}

func (*StartGame) ID() uint8 { return schema.KindStartGame }

func (p *StartGame) marshal() []tlv.Field {
	fields := []tlv.Field{tlv.U64(schema.FieldEntityRuntimeID, p.EntityRuntimeID)}
	fields = append(fields, vec3Fields(p.Position)...)
	return append(fields,
		tlv.F32(schema.FieldPitch, p.Pitch),
		tlv.F32(schema.FieldYaw, p.Yaw),
		tlv.String(schema.FieldWorldName, p.WorldName),
	)
}

func (p *StartGame) unmarshal(r *fieldReader) {
	p.EntityRuntimeID = r.u64(schema.FieldEntityRuntimeID)
	p.Position = r.vec3()
	p.Pitch = r.f32(schema.FieldPitch)
	p.Yaw = r.f32(schema.FieldYaw)
	p.WorldName = r.str(schema.FieldWorldName)
}

// MovePlayer moves an entity; yaw and pitch are degrees.
type MovePlayer struct {
	EntityRuntimeID uint64
	Position        Vec3
	Pitch           float32
	Yaw             float32
	HeadYaw         float32
	Mode            MoveMode
	OnGround        bool
}

func (*MovePlayer) ID() uint8 { return schema.KindMovePlayer }

func (p *MovePlayer) marshal() []tlv.Field {
	fields := []tlv.Field{tlv.U64(schema.FieldEntityRuntimeID, p.EntityRuntimeID)}
	fields = append(fields, vec3Fields(p.Position)...)
	return append(fields,
		tlv.F32(schema.FieldPitch, p.Pitch),
		tlv.F32(schema.FieldYaw, p.Yaw),
		tlv.F32(schema.FieldHeadYaw, p.HeadYaw),
		tlv.U8(schema.FieldMoveMode, uint8(p.Mode)),
		tlv.Bool(schema.FieldOnGround, p.OnGround),
	)
}

func (p *MovePlayer) unmarshal(r *fieldReader) {
	p.EntityRuntimeID = r.u64(schema.FieldEntityRuntimeID)
	p.Position = r.vec3()
	p.Pitch = r.f32(schema.FieldPitch)
	p.Yaw = r.f32(schema.FieldYaw)
	p.HeadYaw = r.f32(schema.FieldHeadYaw)
	p.Mode = MoveMode(r.u8(schema.FieldMoveMode))
	p.OnGround = r.boolean(schema.FieldOnGround)
}

type SetHealth struct {
	Health int32
}

func (*SetHealth) ID() uint8 { return schema.KindSetHealth }

func (p *SetHealth) marshal() []tlv.Field {
	return []tlv.Field{tlv.I32(schema.FieldHealth, p.Health)}
}

func (p *SetHealth) unmarshal(r *fieldReader) {
	p.Health = r.i32(schema.FieldHealth)
}

type Respawn struct {
	Position        Vec3
	State           uint8
	EntityRuntimeID uint64
}

func (*Respawn) ID() uint8 { return schema.KindRespawn }

func (p *Respawn) marshal() []tlv.Field {
	fields := vec3Fields(p.Position)
	return append(fields,
		tlv.U8(schema.FieldRespawnState, p.State),
		tlv.U64(schema.FieldEntityRuntimeID, p.EntityRuntimeID),
	)
}

func (p *Respawn) unmarshal(r *fieldReader) {
	p.Position = r.vec3()
	p.State = r.u8(schema.FieldRespawnState)
	p.EntityRuntimeID = r.u64(schema.FieldEntityRuntimeID)
}

type RequestChunkRadius struct {
	Radius int32
}

func (*RequestChunkRadius) ID() uint8 { return schema.KindRequestChunkRadius }

func (p *RequestChunkRadius) marshal() []tlv.Field {
	return []tlv.Field{tlv.I32(schema.FieldRadius, p.Radius)}
}

func (p *RequestChunkRadius) unmarshal(r *fieldReader) {
	p.Radius = r.i32(schema.FieldRadius)
}

type ChunkRadiusUpdated struct {
	Radius int32
}

func (*ChunkRadiusUpdated) ID() uint8 { return schema.KindChunkRadiusUpdated }

func (p *ChunkRadiusUpdated) marshal() []tlv.Field {
	return []tlv.Field{tlv.I32(schema.FieldRadius, p.Radius)}
}

func (p *ChunkRadiusUpdated) unmarshal(r *fieldReader) {
	p.Radius = r.i32(schema.FieldRadius)
}

type SetTitle struct {
	Type uint8
	Text string
}

func (*SetTitle) ID() uint8 { return schema.KindSetTitle }

func (p *SetTitle) marshal() []tlv.Field {
	return []tlv.Field{
		tlv.U8(schema.FieldTitleType, p.Type),
		tlv.String(schema.FieldTitleText, p.Text),
	}
}

func (p *SetTitle) unmarshal(r *fieldReader) {
	p.Type = r.u8(schema.FieldTitleType)
	p.Text = r.str(schema.FieldTitleText)
}

// ModalFormRequest carries a JSON form description in FormData.
type ModalFormRequest struct {
	FormID   uint32
	FormData string
}

func (*ModalFormRequest) ID() uint8 { return schema.KindModalFormRequest }

func (p *ModalFormRequest) marshal() []tlv.Field {
	return []tlv.Field{
		tlv.U32(schema.FieldFormID, p.FormID),
		tlv.String(schema.FieldFormData, p.FormData),
	}
}

func (p *ModalFormRequest) unmarshal(r *fieldReader) {
	p.FormID = r.u32(schema.FieldFormID)
	p.FormData = r.str(schema.FieldFormData)
}

// ModalFormResponse answers a form; FormData is JSON, "null" when closed.
type ModalFormResponse struct {
	FormID   uint32
	FormData string
}

func (*ModalFormResponse) ID() uint8 { return schema.KindModalFormResponse }

func (p *ModalFormResponse) marshal() []tlv.Field {
	return []tlv.Field{
		tlv.U32(schema.FieldFormID, p.FormID),
		tlv.String(schema.FieldFormData, p.FormData),
	}
}

func (p *ModalFormResponse) unmarshal(r *fieldReader) {
	p.FormID = r.u32(schema.FieldFormID)
	p.FormData = r.str(schema.FieldFormData)
}
