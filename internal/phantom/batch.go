package phantom

import (
	"errors"
	"fmt"

	"github.com/danmuck/specter/internal/protocol/packet"
)

var ErrProtocol = errors.New("phantom: protocol violation")

// ProtocolError reports the sub-packet that stopped a batch. Sub-packets
// before Index were already dispatched.
type ProtocolError struct {
	Session string
	Index   int
	Kind    uint8
	Err     error
}

func (e *ProtocolError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("phantom: session %q: batch: %v", e.Session, e.Err)
	}
	return fmt.Sprintf("phantom: session %q: batch entry %d (%s): %v", e.Session, e.Index, packet.Name(e.Kind), e.Err)
}

func (e *ProtocolError) Unwrap() []error {
	return []error{ErrProtocol, e.Err}
}

// unwrapBatch resubmits every sub-packet of b in order. The first sub-packet
// that is unknown, not permitted in a batch, or malformed aborts the rest.
func (i *Interface) unwrapBatch(s *Session, b *packet.Batch) error {
	bufs, err := b.Buffers()
	if err != nil {
		return &ProtocolError{Session: s.name, Index: -1, Kind: b.ID(), Err: err}
	}
	for idx, buf := range bufs {
		kind := buf[0]
		pk, err := packet.ByID(kind)
		if err != nil {
			return &ProtocolError{Session: s.name, Index: idx, Kind: kind, Err: err}
		}
		if !packet.CanBeBatched(kind) {
			return &ProtocolError{Session: s.name, Index: idx, Kind: kind, Err: packet.ErrNotBatchable}
		}
		if err := packet.DecodeInto(pk, buf); err != nil {
			return &ProtocolError{Session: s.name, Index: idx, Kind: kind, Err: err}
		}
		if _, _, err := i.PutPacket(s, pk, false); err != nil {
			return err
		}
	}
	return nil
}
