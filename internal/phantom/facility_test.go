package phantom

import (
	"sync"
	"testing"

	"github.com/danmuck/specter/internal/protocol/packet"
	"github.com/danmuck/specter/internal/testutil/testlog"
)

const testProtocol int32 = 291

type inboundRecord struct {
	name string
	pk   packet.Packet
}

// fakeFacility records every interaction instead of running a game.
type fakeFacility struct {
	mu           sync.Mutex
	players      map[string]*Session
	inbound      []inboundRecord
	unregistered []string
	nextEntityID uint64

	cancel    func(pk packet.Packet) bool
	onInbound func(s *Session, pk packet.Packet)
}

func newFakeFacility() *fakeFacility {
	return &fakeFacility{players: make(map[string]*Session), nextEntityID: 1}
}

func (f *fakeFacility) LookupPlayer(name string) (*Session, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.players[name]
	return s, ok
}

func (f *fakeFacility) RegisterPlayer(s *Session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.SetEntityID(f.nextEntityID)
	f.nextEntityID++
	f.players[s.Name()] = s
}

func (f *fakeFacility) UnregisterPlayer(s *Session, reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.players, s.Name())
	f.unregistered = append(f.unregistered, s.Name())
}

func (f *fakeFacility) DispatchReceive(s *Session, pk packet.Packet) bool {
	if f.cancel != nil {
		return f.cancel(pk)
	}
	return false
}

func (f *fakeFacility) HandleInbound(s *Session, pk packet.Packet) error {
	f.mu.Lock()
	f.inbound = append(f.inbound, inboundRecord{name: s.Name(), pk: pk})
	hook := f.onInbound
	f.mu.Unlock()
	if hook != nil {
		hook(s, pk)
	}
	return nil
}

func (f *fakeFacility) ProtocolVersion() int32 {
	return testProtocol
}

func (f *fakeFacility) vanish(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.players, name)
}

func (f *fakeFacility) takeInbound() []inboundRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.inbound
	f.inbound = nil
	return out
}

func newTestInterface(t *testing.T, cfg Config, opts ...Option) (*Interface, *fakeFacility) {
	t.Helper()
	testlog.Start(t)
	f := newFakeFacility()
	return New(f, cfg, opts...), f
}

// openSpawned opens a session, drops the login from the inbound record and
// marks the session alive and spawned.
func openSpawned(t *testing.T, i *Interface, f *fakeFacility, name string) *Session {
	t.Helper()
	s, ok := i.OpenSession(name, DefaultAddress, DefaultPort)
	if !ok {
		t.Fatalf("open session %q failed", name)
	}
	f.takeInbound()
	s.SetAlive(true)
	s.SetSpawned(true)
	return s
}

func queued(i *Interface, name string) []packet.Packet {
	i.mu.Lock()
	defer i.mu.Unlock()
	e, ok := i.entries[name]
	if !ok {
		return nil
	}
	out := make([]packet.Packet, len(e.replies))
	copy(out, e.replies)
	return out
}
