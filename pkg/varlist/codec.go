package varlist

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/google/uuid"
)

// Codec converts between variable-list buffers and Records. It holds no
// state; a single instance may be shared freely.
type Codec struct{}

// NewCodec creates a new variable-list codec instance.
func NewCodec() *Codec {
	return &Codec{}
}

// DecodeRecord decodes one record from the front of buf and returns it
// together with the number of bytes consumed. The returned record owns
// copies of its name and data.
func (c *Codec) DecodeRecord(buf []byte) (*Record, int, error) {
	if len(buf) < HeaderSize {
		return nil, 0, fmt.Errorf("%w: %d bytes remaining, record header needs %d", ErrBufferTooSmall, len(buf), HeaderSize)
	}

	nameSize := binary.LittleEndian.Uint32(buf[0:4])
	dataSize := binary.LittleEndian.Uint32(buf[4:8])

	total, err := recordSize(nameSize, dataSize)
	if err != nil {
		return nil, 0, err
	}
	if len(buf) < total {
		return nil, 0, fmt.Errorf("%w: %d bytes remaining, record needs %d", ErrBufferTooSmall, len(buf), total)
	}

	off := HeaderSize
	name, err := decodeName(buf[off : off+int(nameSize)])
	if err != nil {
		return nil, 0, err
	}
	off += int(nameSize)

	namespace := DecodeGUID(buf[off : off+GUIDSize])
	off += GUIDSize

	attributes := binary.LittleEndian.Uint32(buf[off : off+attributesSize])
	off += attributesSize

	data := make([]byte, dataSize)
	copy(data, buf[off:off+int(dataSize)])
	off += int(dataSize)

	stored := binary.LittleEndian.Uint32(buf[off : off+checksumSize])
	if computed := crc32.ChecksumIEEE(buf[:total-checksumSize]); computed != stored {
		return nil, 0, fmt.Errorf("%w: checksum mismatch for %q: stored %08x, computed %08x", ErrCorruptedData, name, stored, computed)
	}

	return &Record{
		Name:       name,
		Namespace:  namespace,
		Attributes: attributes,
		Data:       data,
	}, total, nil
}

// DecodeAll decodes every record in buf, in buffer order, until the
// buffer is exactly exhausted. Any record failure aborts the whole scan;
// there are no partial results. An empty buffer is a valid empty list.
func (c *Codec) DecodeAll(buf []byte) ([]Record, error) {
	records := []Record{}
	offset := 0
	for offset < len(buf) {
		r, n, err := c.DecodeRecord(buf[offset:])
		if err != nil {
			return nil, fmt.Errorf("record at offset %d: %w", offset, err)
		}
		records = append(records, *r)
		offset += n
	}
	return records, nil
}

// Find scans buf for the first record matching both namespace and name
// (case-sensitive, compared as decoded strings). Exhausting the buffer
// without a match returns ErrNotFound; a malformed record aborts the
// scan with its decode error.
func (c *Codec) Find(buf []byte, namespace uuid.UUID, name string) (*Record, error) {
	offset := 0
	for offset < len(buf) {
		r, n, err := c.DecodeRecord(buf[offset:])
		if err != nil {
			return nil, fmt.Errorf("record at offset %d: %w", offset, err)
		}
		if r.Namespace == namespace && r.Name == name {
			return r, nil
		}
		offset += n
	}
	return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, namespace, name)
}

// EncodeRecord serializes r into dst and returns the number of bytes
// written. When dst is too small it returns the required size together
// with ErrBufferTooSmall so the caller can reallocate and retry.
func (c *Codec) EncodeRecord(r *Record, dst []byte) (int, error) {
	if r == nil {
		return 0, fmt.Errorf("%w: nil record", ErrInvalidArgument)
	}
	total, err := r.EncodedSize()
	if err != nil {
		return 0, err
	}
	if len(dst) < total {
		return total, fmt.Errorf("%w: need %d bytes, have %d", ErrBufferTooSmall, total, len(dst))
	}

	nameBytes := encodeName(r.Name)

	binary.LittleEndian.PutUint32(dst[0:4], uint32(len(nameBytes)))
	binary.LittleEndian.PutUint32(dst[4:8], uint32(len(r.Data)))

	off := HeaderSize
	copy(dst[off:], nameBytes)
	off += len(nameBytes)

	guid := EncodeGUID(r.Namespace)
	copy(dst[off:], guid[:])
	off += GUIDSize

	binary.LittleEndian.PutUint32(dst[off:], r.Attributes)
	off += attributesSize

	copy(dst[off:], r.Data)
	off += len(r.Data)

	binary.LittleEndian.PutUint32(dst[off:], crc32.ChecksumIEEE(dst[:off]))

	return total, nil
}

// AppendRecord appends the encoding of r to dst and returns the extended
// slice. This is the convenience form of EncodeRecord for callers that
// build whole lists.
func (c *Codec) AppendRecord(dst []byte, r *Record) ([]byte, error) {
	if r == nil {
		return dst, fmt.Errorf("%w: nil record", ErrInvalidArgument)
	}
	total, err := r.EncodedSize()
	if err != nil {
		return dst, err
	}
	start := len(dst)
	dst = append(dst, make([]byte, total)...)
	if _, err := c.EncodeRecord(r, dst[start:]); err != nil {
		return dst[:start], err
	}
	return dst, nil
}
