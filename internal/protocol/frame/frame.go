// Package frame owns container framing: one buffer carrying many
// length-prefixed sub-packet buffers after a leading framing offset.
package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	ErrOffsetOutOfRange = errors.New("frame: offset out of range")
	ErrShortLength      = errors.New("frame: short length prefix")
	ErrShortEntry       = errors.New("frame: entry shorter than length prefix")
	ErrEmptyEntry       = errors.New("frame: empty entry")
	ErrTooManyEntries   = errors.New("frame: too many entries")
	ErrEntryTooLarge    = errors.New("frame: entry too large")
)

// Limits constrains container decode/encode memory use.
type Limits struct {
	MaxEntries    int
	MaxEntryBytes uint64
}

func DefaultLimits() Limits {
	return Limits{
		MaxEntries:    512,
		MaxEntryBytes: 2 * 1024 * 1024,
	}
}

// EncodeContainer writes prefix followed by every entry as uvarint length + bytes.
func EncodeContainer(prefix []byte, entries [][]byte, limits Limits) ([]byte, error) {
	if len(entries) > limits.MaxEntries {
		return nil, ErrTooManyEntries
	}
	out := make([]byte, 0, len(prefix)+16*len(entries))
	out = append(out, prefix...)
	for _, e := range entries {
		if len(e) == 0 {
			return nil, ErrEmptyEntry
		}
		if uint64(len(e)) > limits.MaxEntryBytes {
			return nil, ErrEntryTooLarge
		}
		out = binary.AppendUvarint(out, uint64(len(e)))
		out = append(out, e...)
	}
	return out, nil
}

// DecodeContainer skips offset framing bytes and returns the ordered entries.
// Entries are copies; the input buffer is not retained.
func DecodeContainer(b []byte, offset int, limits Limits) ([][]byte, error) {
	if offset < 0 || offset > len(b) {
		return nil, ErrOffsetOutOfRange
	}
	entries := make([][]byte, 0)
	for i := offset; i < len(b); {
		l, n := binary.Uvarint(b[i:])
		if n <= 0 {
			return nil, fmt.Errorf("%w at byte %d", ErrShortLength, i)
		}
		i += n
		if l == 0 {
			return nil, fmt.Errorf("%w at entry %d", ErrEmptyEntry, len(entries))
		}
		if l > limits.MaxEntryBytes {
			return nil, ErrEntryTooLarge
		}
		if uint64(len(b)-i) < l {
			return nil, fmt.Errorf("%w at entry %d", ErrShortEntry, len(entries))
		}
		if len(entries) == limits.MaxEntries {
			return nil, ErrTooManyEntries
		}
		entry := make([]byte, l)
		copy(entry, b[i:i+int(l)])
		i += int(l)
		entries = append(entries, entry)
	}
	return entries, nil
}
