// Package varstore provides persistent variable stores keyed by
// (namespace GUID, name). Every backend speaks varlist records: the file
// backend's on-disk format is the variable-list format itself, the
// pebble backend stores one encoded record per key, and the buffer
// backend is a read-only view over a raw variable-list buffer.
package varstore

import (
	"time"

	"github.com/google/uuid"

	"github.com/platformkit/knobstore/pkg/varlist"
)

// Key identifies a variable within a store.
type Key struct {
	Namespace uuid.UUID
	Name      string
}

// Store is the variable-store surface shared by all backends. Get
// returns the full stored record or ErrNotFound; there are no partial
// reads. Each backend serializes its own writers.
type Store interface {
	Get(namespace uuid.UUID, name string) (*varlist.Record, error)
	Set(namespace uuid.UUID, name string, attributes uint32, data []byte) error
	Delete(namespace uuid.UUID, name string) error
	List() ([]Key, error)
	Stats() StoreStats
	Close() error
}

// StoreStats holds statistics about a store.
type StoreStats struct {
	Variables int   `json:"variables"`
	DataSize  int64 `json:"data_size"`
}

// IndexEntry records the location of a variable in the log file.
type IndexEntry struct {
	Key    Key
	Offset int64  // Byte offset of the record within the file
	Size   uint32 // Encoded record size in bytes
}

// LogWriterConfig holds configuration for the log writer.
type LogWriterConfig struct {
	FilePath      string        // Path to the active log file
	FsyncInterval time.Duration // How often to fsync (0 = every write)
	BufferSize    int           // Write buffer size
}

// LogReaderConfig holds configuration for the log reader.
type LogReaderConfig struct {
	FilePath    string // Path to the log file
	StartOffset int64  // Offset to start reading from
}

// FileStoreConfig holds configuration for the file-backed store.
type FileStoreConfig struct {
	DataDir       string        // Directory for the log file
	FsyncInterval time.Duration // Fsync interval for durability
}

// Errors
var (
	ErrNotFound   = &StoreError{"variable not found"}
	ErrInvalidKey = &StoreError{"invalid variable key"}
	ErrCorruption = &StoreError{"data corruption detected"}
	ErrClosed     = &StoreError{"store is not open"}
	ErrReadOnly   = &StoreError{"store is read-only"}
)

// StoreError represents a variable store error.
type StoreError struct {
	Message string
}

func (e *StoreError) Error() string {
	return e.Message
}

// indexKey builds the in-memory map key for a variable.
func indexKey(namespace uuid.UUID, name string) string {
	return namespace.String() + "/" + name
}

// validKey rejects the key shapes no backend accepts: empty names and
// names the codec could not re-encode.
func validKey(name string) bool {
	if name == "" {
		return false
	}
	r := varlist.Record{Name: name, Namespace: uuid.Nil}
	_, err := r.EncodedSize()
	return err == nil
}
