package varlist

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// GUIDSize is the wire size of a namespace identifier.
const GUIDSize = 16

// EncodeGUID converts a UUID to the mixed-endian wire layout used by the
// variable-list format: the first three fields are little-endian, the
// final eight bytes are verbatim.
func EncodeGUID(id uuid.UUID) [GUIDSize]byte {
	var b [GUIDSize]byte
	binary.LittleEndian.PutUint32(b[0:4], binary.BigEndian.Uint32(id[0:4]))
	binary.LittleEndian.PutUint16(b[4:6], binary.BigEndian.Uint16(id[4:6]))
	binary.LittleEndian.PutUint16(b[6:8], binary.BigEndian.Uint16(id[6:8]))
	copy(b[8:], id[8:])
	return b
}

// DecodeGUID converts 16 wire bytes in mixed-endian layout back to a UUID.
// The slice must be at least GUIDSize bytes; only the first 16 are read.
func DecodeGUID(b []byte) uuid.UUID {
	var id uuid.UUID
	binary.BigEndian.PutUint32(id[0:4], binary.LittleEndian.Uint32(b[0:4]))
	binary.BigEndian.PutUint16(id[4:6], binary.LittleEndian.Uint16(b[4:6]))
	binary.BigEndian.PutUint16(id[6:8], binary.LittleEndian.Uint16(b[6:8]))
	copy(id[8:], b[8:GUIDSize])
	return id
}
