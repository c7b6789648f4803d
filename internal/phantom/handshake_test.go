package phantom

import (
	"testing"

	"github.com/danmuck/specter/internal/protocol/packet"
	"github.com/google/uuid"
)

func TestClientUUIDIsDeterministic(t *testing.T) {
	a := ClientUUID("SPECTER", 19133, "steve")
	b := ClientUUID("SPECTER", 19133, "steve")
	if a != b {
		t.Fatalf("uuid changed between calls: %s vs %s", a, b)
	}
	if a.Version() != 3 {
		t.Fatalf("expected a name-based MD5 uuid, got version %d", a.Version())
	}
	if a == ClientUUID("SPECTER", 19134, "steve") || a == ClientUUID("SPECTER", 19133, "alex") {
		t.Fatalf("uuid ignores address components")
	}
	if a != uuid.NewMD5(uuid.Nil, []byte("SPECTER19133steve")) {
		t.Fatalf("unexpected uuid derivation")
	}
}

func TestBuildLogin(t *testing.T) {
	login := BuildLogin("steve", "SPECTER", 19133, 291)
	if login.Protocol != 291 || login.Username != "steve" || login.ClientID != 1 {
		t.Fatalf("unexpected identity fields: %+v", login)
	}
	if login.ClientUUID != ClientUUID("SPECTER", 19133, "steve").String() {
		t.Fatalf("unexpected client uuid %q", login.ClientUUID)
	}
	if !login.SkipVerification || login.XUID == "" || login.IdentityPublicKey == "" {
		t.Fatalf("login should carry placeholder credentials and skip verification")
	}
	if login.SkinID != DefaultSkinID || len(login.SkinData) != 64*32*4 {
		t.Fatalf("unexpected skin id=%q bytes=%d", login.SkinID, len(login.SkinData))
	}
	for i, b := range login.SkinData {
		if b != 0x80 {
			t.Fatalf("skin byte %d = %#x", i, b)
		}
	}
	buf, err := packet.Encode(login)
	if err != nil {
		t.Fatalf("login does not encode: %v", err)
	}
	decoded, err := packet.Decode(buf)
	if err != nil {
		t.Fatalf("login does not decode: %v", err)
	}
	if decoded.(*packet.Login).Username != "steve" {
		t.Fatalf("unexpected decoded login")
	}
}
