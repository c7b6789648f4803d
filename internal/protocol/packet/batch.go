package packet

import (
	"fmt"

	"github.com/danmuck/specter/internal/protocol/frame"
	"github.com/danmuck/specter/internal/protocol/schema"
	"github.com/danmuck/specter/internal/protocol/tlv"
)

// BatchOffset is the number of framing bytes before the first sub-packet.
const BatchOffset = 1

// Batch is a container of independently encoded sub-packets. Payload is the
// full wire buffer including the leading kind byte.
type Batch struct {
	Payload []byte
}

func (*Batch) ID() uint8 { return schema.KindBatch }

func (*Batch) marshal() []tlv.Field { return nil }

func (*Batch) unmarshal(*fieldReader) {}

// NewBatch encodes pks into one container. Kinds that cannot be batched are rejected.
func NewBatch(pks ...Packet) (*Batch, error) {
	bufs := make([][]byte, 0, len(pks))
	for _, pk := range pks {
		if pk == nil {
			return nil, ErrInvalidPacket
		}
		if !CanBeBatched(pk.ID()) {
			return nil, fmt.Errorf("%w: %s", ErrNotBatchable, Name(pk.ID()))
		}
		buf, err := Encode(pk)
		if err != nil {
			return nil, err
		}
		bufs = append(bufs, buf)
	}
	return NewRawBatch(bufs...)
}

// NewRawBatch frames already encoded buffers without inspecting them.
func NewRawBatch(bufs ...[]byte) (*Batch, error) {
	payload, err := frame.EncodeContainer([]byte{schema.KindBatch}, bufs, frame.DefaultLimits())
	if err != nil {
		return nil, err
	}
	return &Batch{Payload: payload}, nil
}

// Buffers decodes the container into its ordered sub-packet buffers.
func (b *Batch) Buffers() ([][]byte, error) {
	return frame.DecodeContainer(b.Payload, BatchOffset, frame.DefaultLimits())
}
