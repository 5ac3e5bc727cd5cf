package varlist

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/google/uuid"
)

// crc32ChecksumOf is a shorthand for the wire checksum routine.
func crc32ChecksumOf(b []byte) uint32 {
	return crc32.ChecksumIEEE(b)
}

// rewriteChecksum recomputes and stores the trailer checksum of a single
// encoded record so tests can introduce structural damage without also
// tripping the CRC check.
func rewriteChecksum(buf []byte) {
	body := buf[:len(buf)-checksumSize]
	binary.LittleEndian.PutUint32(buf[len(buf)-checksumSize:], crc32.ChecksumIEEE(body))
}

// TestWireLayout pins the exact byte layout of an encoded record. Any
// change here is a wire format break.
func TestWireLayout(t *testing.T) {
	codec := NewCodec()
	record := &Record{
		Name:       "Foo",
		Namespace:  uuid.MustParse("00112233-4455-6677-8899-aabbccddeeff"),
		Attributes: 0x04030201,
		Data:       []byte{0xAA, 0xBB, 0xCC},
	}

	encoded := mustEncode(t, codec, record)

	// "Foo" is 3 code units plus the terminator: 8 bytes.
	// Total: 8 header + 8 name + 16 guid + 4 attributes + 3 data + 4 crc.
	const wantSize = 43
	if len(encoded) != wantSize {
		t.Fatalf("encoded size %d, want %d", len(encoded), wantSize)
	}

	if got := binary.LittleEndian.Uint32(encoded[0:4]); got != 8 {
		t.Errorf("NameSize field: got %d, want 8", got)
	}
	if got := binary.LittleEndian.Uint32(encoded[4:8]); got != 3 {
		t.Errorf("DataSize field: got %d, want 3", got)
	}

	wantName := []byte{'F', 0, 'o', 0, 'o', 0, 0, 0}
	if !bytes.Equal(encoded[8:16], wantName) {
		t.Errorf("name bytes: got % x, want % x", encoded[8:16], wantName)
	}

	// Mixed-endian GUID: first three fields byte-swapped, tail verbatim.
	wantGUID := []byte{
		0x33, 0x22, 0x11, 0x00,
		0x55, 0x44,
		0x77, 0x66,
		0x88, 0x99, 0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF,
	}
	if !bytes.Equal(encoded[16:32], wantGUID) {
		t.Errorf("guid bytes: got % x, want % x", encoded[16:32], wantGUID)
	}

	if got := binary.LittleEndian.Uint32(encoded[32:36]); got != 0x04030201 {
		t.Errorf("attributes field: got %#x, want 0x04030201", got)
	}

	if !bytes.Equal(encoded[36:39], []byte{0xAA, 0xBB, 0xCC}) {
		t.Errorf("data bytes: got % x", encoded[36:39])
	}

	wantCRC := crc32.ChecksumIEEE(encoded[:39])
	if got := binary.LittleEndian.Uint32(encoded[39:43]); got != wantCRC {
		t.Errorf("crc trailer: got %08x, want %08x", got, wantCRC)
	}
}

func TestRecord_EncodedSize(t *testing.T) {
	testCases := []struct {
		name     string
		record   Record
		wantSize int
	}{
		{
			name:     "minimal record",
			record:   Record{Name: "A", Namespace: testNamespaceA},
			wantSize: HeaderSize + 4 + GUIDSize + 4 + 0 + 4,
		},
		{
			name:     "with data",
			record:   Record{Name: "ABC", Namespace: testNamespaceA, Data: make([]byte, 10)},
			wantSize: HeaderSize + 8 + GUIDSize + 4 + 10 + 4,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			size, err := tc.record.EncodedSize()
			if err != nil {
				t.Fatalf("EncodedSize failed: %v", err)
			}
			if size != tc.wantSize {
				t.Errorf("size %d, want %d", size, tc.wantSize)
			}
		})
	}
}

func TestMinRecordSize(t *testing.T) {
	// A name holding only its terminator is rejected by the encoder, but
	// the decoder's framing math relies on MinRecordSize being the true
	// lower bound of anything it could accept.
	if MinRecordSize != 34 {
		t.Errorf("MinRecordSize = %d, want 34", MinRecordSize)
	}
}
