package varstore

import (
	"errors"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/google/uuid"

	"github.com/platformkit/knobstore/pkg/varlist"
)

// PebbleStoreConfig holds configuration for the pebble-backed store.
type PebbleStoreConfig struct {
	Path string
	FS   vfs.FS // nil = OS filesystem; vfs.NewMem() for tests
}

// PebbleStore keeps variables in a pebble LSM. The key is the 16-byte
// wire GUID followed by the raw name bytes; the value is the variable's
// single-record variable-list encoding, so the CRC travels with the
// value and is re-verified on every Get.
type PebbleStore struct {
	db    *pebble.DB
	codec *varlist.Codec
	mutex sync.Mutex
	open  bool
}

// NewPebbleStore opens (or creates) a pebble store at config.Path.
func NewPebbleStore(config PebbleStoreConfig) (*PebbleStore, error) {
	opts := &pebble.Options{}
	if config.FS != nil {
		opts.FS = config.FS
	}
	db, err := pebble.Open(config.Path, opts)
	if err != nil {
		return nil, err
	}
	return &PebbleStore{
		db:    db,
		codec: varlist.NewCodec(),
		open:  true,
	}, nil
}

// Get returns the stored record for (namespace, name), re-verifying the
// record checksum before returning it.
func (s *PebbleStore) Get(namespace uuid.UUID, name string) (*varlist.Record, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.open {
		return nil, ErrClosed
	}

	value, closer, err := s.db.Get(pebbleKey(namespace, name))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer closer.Close()

	record, _, err := s.codec.DecodeRecord(value)
	if err != nil {
		return nil, ErrCorruption
	}
	if record.Namespace != namespace || record.Name != name {
		return nil, ErrCorruption
	}

	return record, nil
}

// Set stores a value for (namespace, name). Empty data is rejected as
// with every backend; use Delete instead.
func (s *PebbleStore) Set(namespace uuid.UUID, name string, attributes uint32, data []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.open {
		return ErrClosed
	}
	if !validKey(name) || len(data) == 0 {
		return ErrInvalidKey
	}

	record := &varlist.Record{
		Name:       name,
		Namespace:  namespace,
		Attributes: attributes,
		Data:       data,
	}
	value, err := s.codec.AppendRecord(nil, record)
	if err != nil {
		return err
	}

	return s.db.Set(pebbleKey(namespace, name), value, pebble.Sync)
}

// Delete removes (namespace, name). Deleting an absent variable returns
// ErrNotFound.
func (s *PebbleStore) Delete(namespace uuid.UUID, name string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.open {
		return ErrClosed
	}
	if !validKey(name) {
		return ErrInvalidKey
	}

	key := pebbleKey(namespace, name)
	_, closer, err := s.db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	closer.Close()

	return s.db.Delete(key, pebble.Sync)
}

// List returns the keys of every stored variable in key order.
func (s *PebbleStore) List() ([]Key, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.open {
		return nil, ErrClosed
	}

	iter, err := s.db.NewIter(nil)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var keys []Key
	for iter.First(); iter.Valid(); iter.Next() {
		k := iter.Key()
		if len(k) < varlist.GUIDSize {
			return nil, ErrCorruption
		}
		keys = append(keys, Key{
			Namespace: varlist.DecodeGUID(k[:varlist.GUIDSize]),
			Name:      string(k[varlist.GUIDSize:]),
		})
	}
	return keys, iter.Error()
}

// Stats returns store statistics. Variable count and data size are
// computed by a full scan; this surface is for diagnostics, not hot
// paths.
func (s *PebbleStore) Stats() StoreStats {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.open {
		return StoreStats{}
	}

	iter, err := s.db.NewIter(nil)
	if err != nil {
		return StoreStats{}
	}
	defer iter.Close()

	var stats StoreStats
	for iter.First(); iter.Valid(); iter.Next() {
		stats.Variables++
		if value, err := iter.ValueAndErr(); err == nil {
			stats.DataSize += int64(len(value))
		}
	}
	return stats
}

// Close closes the underlying pebble database.
func (s *PebbleStore) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.open {
		return nil
	}
	s.open = false
	return s.db.Close()
}

// pebbleKey builds the on-disk key: wire GUID then raw name bytes.
func pebbleKey(namespace uuid.UUID, name string) []byte {
	guid := varlist.EncodeGUID(namespace)
	key := make([]byte, 0, varlist.GUIDSize+len(name))
	key = append(key, guid[:]...)
	return append(key, name...)
}
