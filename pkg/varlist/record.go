package varlist

import (
	"fmt"
	"unicode/utf16"

	"github.com/google/uuid"
)

const (
	// HeaderSize is the fixed prefix of every record: NameSize and
	// DataSize, 4 bytes each.
	HeaderSize = 8

	// MaxNameSize caps the encoded name, in bytes, including the 2-byte
	// NUL terminator. Decode does not enforce the cap; encode rejects
	// longer names with ErrInvalidArgument.
	MaxNameSize = 0x80

	// MinRecordSize is the smallest well-formed record: header, a name
	// holding only its terminator, namespace, attributes and trailer.
	MinRecordSize = HeaderSize + 2 + GUIDSize + 4 + 4

	attributesSize = 4
	checksumSize   = 4

	maxInt = int(^uint(0) >> 1)
)

// Record is one variable in a variable list. Name and Data of a decoded
// record are owned copies; mutating them never touches the source buffer.
type Record struct {
	Name       string
	Namespace  uuid.UUID
	Attributes uint32
	Data       []byte
}

// EncodedSize returns the exact number of bytes the record occupies on
// the wire. It fails with ErrInvalidArgument for an empty or oversized
// name and with ErrBufferTooSmall when the total cannot be represented
// in the platform's int.
func (r *Record) EncodedSize() (int, error) {
	nameSize, err := r.encodedNameSize()
	if err != nil {
		return 0, err
	}
	return recordSize(uint32(nameSize), uint32(len(r.Data)))
}

// encodedNameSize returns the wire byte length of the name, terminator
// included.
func (r *Record) encodedNameSize() (int, error) {
	if r.Name == "" {
		return 0, fmt.Errorf("%w: empty name", ErrInvalidArgument)
	}
	units := utf16.Encode([]rune(r.Name))
	size := 2 * (len(units) + 1)
	if size > MaxNameSize {
		return 0, fmt.Errorf("%w: name %q exceeds %d bytes encoded", ErrInvalidArgument, r.Name, MaxNameSize)
	}
	return size, nil
}

// recordSize computes HeaderSize + nameSize + GUIDSize + attributes +
// dataSize + checksum, failing if any addition would overflow int. An
// overflowing record cannot be materialized, so the failure is reported
// as ErrBufferTooSmall, the same as insufficient data.
func recordSize(nameSize, dataSize uint32) (int, error) {
	total := HeaderSize
	for _, n := range [...]int{int(nameSize), GUIDSize, attributesSize, int(dataSize), checksumSize} {
		if total > maxInt-n {
			return 0, fmt.Errorf("%w: record size overflows", ErrBufferTooSmall)
		}
		total += n
	}
	return total, nil
}

// encodeName produces the UTF-16LE wire bytes of a name, including the
// NUL terminator.
func encodeName(name string) []byte {
	units := utf16.Encode([]rune(name))
	out := make([]byte, 2*(len(units)+1))
	for i, u := range units {
		out[2*i] = byte(u)
		out[2*i+1] = byte(u >> 8)
	}
	return out
}

// decodeName converts wire bytes back to a string. The byte length must
// be even and the final code unit must be the NUL terminator; anything
// else is corrupted data.
func decodeName(b []byte) (string, error) {
	if len(b) < 2 || len(b)%2 != 0 {
		return "", fmt.Errorf("%w: name size %d is not a positive even byte count", ErrCorruptedData, len(b))
	}
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = uint16(b[2*i]) | uint16(b[2*i+1])<<8
	}
	if units[len(units)-1] != 0 {
		return "", fmt.Errorf("%w: name is not NUL-terminated", ErrCorruptedData)
	}
	return string(utf16.Decode(units[:len(units)-1])), nil
}
