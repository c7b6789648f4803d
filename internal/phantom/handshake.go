package phantom

import (
	"bytes"
	"strconv"

	"github.com/danmuck/specter/internal/protocol/packet"
	"github.com/google/uuid"
)

const (
	skinWidth  = 64
	skinHeight = 32

	placeholderXUID     = "xuid here"
	placeholderIdentity = "key here"
)

// BuildLogin returns the login packet used to open a phantom session. It is
// populated directly: there are no credentials to verify, so the host is told
// to skip client verification.
func BuildLogin(name, address string, port int, protocol int32) *packet.Login {
	return &packet.Login{
		Protocol:          protocol,
		Username:          name,
		ClientUUID:        ClientUUID(address, port, name).String(),
		ClientID:          1,
		XUID:              placeholderXUID,
		IdentityPublicKey: placeholderIdentity,
		SkinID:            DefaultSkinID,
		SkinData:          blankSkin(),
		SkipVerification:  true,
	}
}

// ClientUUID derives a stable name-based (MD5) UUID from the session address.
func ClientUUID(address string, port int, name string) uuid.UUID {
	return uuid.NewMD5(uuid.Nil, []byte(address+strconv.Itoa(port)+name))
}

func blankSkin() []byte {
	return bytes.Repeat([]byte{0x80}, skinWidth*skinHeight*4)
}
