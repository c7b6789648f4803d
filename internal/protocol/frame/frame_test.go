package frame

import (
	"bytes"
	"errors"
	"testing"
)

func TestContainerRoundTripPreservesOrder(t *testing.T) {
	entries := [][]byte{{0x0b, 1, 2}, {0x2a}, bytes.Repeat([]byte{0x80}, 300)}
	b, err := EncodeContainer([]byte{0xfe}, entries, DefaultLimits())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if b[0] != 0xfe {
		t.Fatalf("prefix not written: %x", b[0])
	}
	out, err := DecodeContainer(b, 1, DefaultLimits())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(out))
	}
	for i := range entries {
		if !bytes.Equal(out[i], entries[i]) {
			t.Fatalf("entry %d mismatch", i)
		}
	}
}

func TestDecodeContainerTruncatedEntry(t *testing.T) {
	_, err := DecodeContainer([]byte{0xfe, 5, 1, 2}, 1, DefaultLimits())
	if !errors.Is(err, ErrShortEntry) {
		t.Fatalf("expected ErrShortEntry, got %v", err)
	}
}

func TestDecodeContainerOffsetOutOfRange(t *testing.T) {
	_, err := DecodeContainer([]byte{0xfe}, 2, DefaultLimits())
	if !errors.Is(err, ErrOffsetOutOfRange) {
		t.Fatalf("expected ErrOffsetOutOfRange, got %v", err)
	}
}

func TestDecodeContainerEmptyEntryRejected(t *testing.T) {
	_, err := DecodeContainer([]byte{0xfe, 0}, 1, DefaultLimits())
	if !errors.Is(err, ErrEmptyEntry) {
		t.Fatalf("expected ErrEmptyEntry, got %v", err)
	}
}

func TestContainerLimits(t *testing.T) {
	limits := Limits{MaxEntries: 1, MaxEntryBytes: 4}
	if _, err := EncodeContainer(nil, [][]byte{{1}, {2}}, limits); !errors.Is(err, ErrTooManyEntries) {
		t.Fatalf("expected ErrTooManyEntries, got %v", err)
	}
	if _, err := EncodeContainer(nil, [][]byte{{1, 2, 3, 4, 5}}, limits); !errors.Is(err, ErrEntryTooLarge) {
		t.Fatalf("expected ErrEntryTooLarge, got %v", err)
	}
	if _, err := DecodeContainer([]byte{1, 1, 1, 2}, 0, limits); !errors.Is(err, ErrTooManyEntries) {
		t.Fatalf("expected ErrTooManyEntries on decode, got %v", err)
	}
}
