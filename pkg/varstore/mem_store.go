package varstore

import (
	"sync"

	"github.com/google/uuid"

	"github.com/platformkit/knobstore/pkg/varlist"
)

// MemStore is a map-backed Store for tests and demos. It keeps the same
// semantics as the persistent backends, including the empty-data
// rejection on Set.
type MemStore struct {
	mutex   sync.RWMutex
	records map[string]*varlist.Record
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		records: make(map[string]*varlist.Record),
	}
}

// Get returns a copy-safe reference to the stored record.
func (s *MemStore) Get(namespace uuid.UUID, name string) (*varlist.Record, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	record, exists := s.records[indexKey(namespace, name)]
	if !exists {
		return nil, ErrNotFound
	}

	out := *record
	out.Data = append([]byte(nil), record.Data...)
	return &out, nil
}

// Set stores a value for (namespace, name).
func (s *MemStore) Set(namespace uuid.UUID, name string, attributes uint32, data []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !validKey(name) || len(data) == 0 {
		return ErrInvalidKey
	}

	s.records[indexKey(namespace, name)] = &varlist.Record{
		Name:       name,
		Namespace:  namespace,
		Attributes: attributes,
		Data:       append([]byte(nil), data...),
	}
	return nil
}

// Delete removes (namespace, name).
func (s *MemStore) Delete(namespace uuid.UUID, name string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	key := indexKey(namespace, name)
	if _, exists := s.records[key]; !exists {
		return ErrNotFound
	}
	delete(s.records, key)
	return nil
}

// List returns every stored key. Order is unspecified.
func (s *MemStore) List() ([]Key, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	keys := make([]Key, 0, len(s.records))
	for _, record := range s.records {
		keys = append(keys, Key{Namespace: record.Namespace, Name: record.Name})
	}
	return keys, nil
}

// Stats returns store statistics.
func (s *MemStore) Stats() StoreStats {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	stats := StoreStats{Variables: len(s.records)}
	for _, record := range s.records {
		stats.DataSize += int64(len(record.Data))
	}
	return stats
}

// Close is a no-op for the in-memory store.
func (s *MemStore) Close() error {
	return nil
}
