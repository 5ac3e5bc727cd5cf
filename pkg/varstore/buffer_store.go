package varstore

import (
	"errors"

	"github.com/google/uuid"

	"github.com/platformkit/knobstore/pkg/varlist"
)

// BufferStore is a read-only Store over a raw variable-list buffer, for
// resolving knobs directly against a snapshot without loading it into a
// mutable backend. The buffer is scanned on demand; Get re-verifies each
// record checksum as it passes it.
type BufferStore struct {
	buf   []byte
	codec *varlist.Codec
}

// NewBufferStore wraps buf without copying it. The caller must not
// mutate the buffer while the store is in use.
func NewBufferStore(buf []byte) *BufferStore {
	return &BufferStore{
		buf:   buf,
		codec: varlist.NewCodec(),
	}
}

// Get scans the buffer for (namespace, name).
func (s *BufferStore) Get(namespace uuid.UUID, name string) (*varlist.Record, error) {
	record, err := s.codec.Find(s.buf, namespace, name)
	if err != nil {
		if errors.Is(err, varlist.ErrNotFound) {
			return nil, ErrNotFound
		}
		if errors.Is(err, varlist.ErrCorruptedData) || errors.Is(err, varlist.ErrBufferTooSmall) {
			return nil, ErrCorruption
		}
		return nil, err
	}
	return record, nil
}

// Set always fails: the buffer view is read-only.
func (s *BufferStore) Set(uuid.UUID, string, uint32, []byte) error {
	return ErrReadOnly
}

// Delete always fails: the buffer view is read-only.
func (s *BufferStore) Delete(uuid.UUID, string) error {
	return ErrReadOnly
}

// List decodes the whole buffer and returns each record's key in buffer
// order. Duplicate keys appear as often as they occur.
func (s *BufferStore) List() ([]Key, error) {
	records, err := s.codec.DecodeAll(s.buf)
	if err != nil {
		return nil, ErrCorruption
	}

	keys := make([]Key, 0, len(records))
	for i := range records {
		keys = append(keys, Key{Namespace: records[i].Namespace, Name: records[i].Name})
	}
	return keys, nil
}

// Stats counts records by decoding the buffer; a corrupt buffer reports
// zero.
func (s *BufferStore) Stats() StoreStats {
	records, err := s.codec.DecodeAll(s.buf)
	if err != nil {
		return StoreStats{}
	}

	stats := StoreStats{Variables: len(records), DataSize: int64(len(s.buf))}
	return stats
}

// Close is a no-op for the buffer view.
func (s *BufferStore) Close() error {
	return nil
}
