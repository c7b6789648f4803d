package phantom

import "github.com/danmuck/specter/internal/protocol/packet"

// Facility is the host server surface the interface drives.
type Facility interface {
	// LookupPlayer returns the live player registered under name.
	LookupPlayer(name string) (*Session, bool)
	// RegisterPlayer adds s as a newly connected player.
	RegisterPlayer(s *Session)
	// UnregisterPlayer removes s from the player registry.
	UnregisterPlayer(s *Session, reason string)
	// DispatchReceive runs receive listeners; true means the packet was cancelled.
	DispatchReceive(s *Session, pk packet.Packet) bool
	// HandleInbound is the normal handling path for a packet from a client.
	HandleInbound(s *Session, pk packet.Packet) error
	// ProtocolVersion is the protocol currently served.
	ProtocolVersion() int32
}

// AckFunc receives the acknowledgment ids flushed for one session on a tick.
type AckFunc func(s *Session, ids []int)

// NoopAck is the default AckFunc. Ack ids are allocated and cleared but no
// receipt is reported to the host yet.
func NoopAck(*Session, []int) {}
