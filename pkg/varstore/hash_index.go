package varstore

import (
	"io"
	"sync"
)

// HashIndex provides O(1) average-case lookups from (namespace, name) to
// a record's location in the log.
type HashIndex struct {
	entries map[string]*IndexEntry
	mutex   sync.RWMutex
}

// NewHashIndex creates a new hash index.
func NewHashIndex() *HashIndex {
	return &HashIndex{
		entries: make(map[string]*IndexEntry),
	}
}

// Put adds or updates the index entry for a key.
func (idx *HashIndex) Put(entry *IndexEntry) {
	idx.mutex.Lock()
	defer idx.mutex.Unlock()

	idx.entries[indexKey(entry.Key.Namespace, entry.Key.Name)] = entry
}

// Get retrieves the index entry for a key.
func (idx *HashIndex) Get(key Key) (*IndexEntry, bool) {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()

	entry, exists := idx.entries[indexKey(key.Namespace, key.Name)]
	return entry, exists
}

// Delete removes a key from the index.
func (idx *HashIndex) Delete(key Key) {
	idx.mutex.Lock()
	defer idx.mutex.Unlock()

	delete(idx.entries, indexKey(key.Namespace, key.Name))
}

// Size returns the number of live variables in the index.
func (idx *HashIndex) Size() int {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()

	return len(idx.entries)
}

// Keys returns every live variable key. Order is unspecified.
func (idx *HashIndex) Keys() []Key {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()

	keys := make([]Key, 0, len(idx.entries))
	for _, entry := range idx.entries {
		keys = append(keys, entry.Key)
	}
	return keys
}

// Clear removes all entries from the index.
func (idx *HashIndex) Clear() {
	idx.mutex.Lock()
	defer idx.mutex.Unlock()

	idx.entries = make(map[string]*IndexEntry)
}

// BuildFromLog scans a log file from the beginning and repopulates the
// index. Later records win over earlier ones; a zero-length data record
// is a tombstone and removes the key.
func (idx *HashIndex) BuildFromLog(reader *LogReader) error {
	idx.mutex.Lock()
	defer idx.mutex.Unlock()

	idx.entries = make(map[string]*IndexEntry)

	if err := reader.Seek(0); err != nil {
		return err
	}

	for {
		start := reader.Offset()
		record, err := reader.ReadNext()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		key := Key{Namespace: record.Namespace, Name: record.Name}
		if len(record.Data) == 0 {
			delete(idx.entries, indexKey(key.Namespace, key.Name))
			continue
		}

		idx.entries[indexKey(key.Namespace, key.Name)] = &IndexEntry{
			Key:    key,
			Offset: start,
			Size:   uint32(reader.Offset() - start),
		}
	}
}
