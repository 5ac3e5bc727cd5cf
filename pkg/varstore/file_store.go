package varstore

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/platformkit/knobstore/pkg/varlist"
)

// FileStore is the append-only, file-backed variable store. The log file
// is a plain variable list: every Set appends a record, every Delete
// appends a zero-data tombstone, and an in-memory hash index maps each
// live variable to its latest record offset.
type FileStore struct {
	config   FileStoreConfig
	writer   *LogWriter
	reader   *LogReader
	index    *HashIndex
	dataFile string
	mutex    sync.Mutex
	isOpen   bool
}

// RecoveryResult reports what open-time validation found and repaired.
type RecoveryResult struct {
	RecordsValidated int64
	BytesTruncated   int64
	FileSizeBefore   int64
	FileSizeAfter    int64
	RecoveryTime     time.Duration
}

// NewFileStore creates a file store rooted at config.DataDir. Call Open
// before use.
func NewFileStore(config FileStoreConfig) (*FileStore, error) {
	if err := os.MkdirAll(config.DataDir, 0750); err != nil {
		return nil, err
	}

	return &FileStore{
		config:   config,
		dataFile: filepath.Join(config.DataDir, "variables.vl"),
		index:    NewHashIndex(),
	}, nil
}

// Open validates the log file, truncating any torn or corrupt tail,
// then rebuilds the index. It is safe to call on an already-open store.
func (s *FileStore) Open() (*RecoveryResult, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.isOpen {
		return &RecoveryResult{}, nil
	}

	recovery, err := s.validateLogFile()
	if err != nil {
		return nil, err
	}
	if recovery.BytesTruncated > 0 {
		slog.Warn("truncated corrupt log tail",
			"path", s.dataFile,
			"records_validated", recovery.RecordsValidated,
			"bytes_truncated", recovery.BytesTruncated)
	}

	writer, err := NewLogWriter(LogWriterConfig{
		FilePath:      s.dataFile,
		FsyncInterval: s.config.FsyncInterval,
		BufferSize:    64 * 1024,
	})
	if err != nil {
		return nil, err
	}
	s.writer = writer

	reader, err := NewLogReader(LogReaderConfig{FilePath: s.dataFile})
	if err != nil {
		s.writer.Close()
		return nil, err
	}
	s.reader = reader

	if err := s.index.BuildFromLog(s.reader); err != nil {
		s.reader.Close()
		s.writer.Close()
		return nil, err
	}

	s.isOpen = true
	return recovery, nil
}

// Get returns the latest record stored for (namespace, name). The record
// is decoded from disk on every call, so its checksum is re-verified.
func (s *FileStore) Get(namespace uuid.UUID, name string) (*varlist.Record, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isOpen {
		return nil, ErrClosed
	}

	entry, exists := s.index.Get(Key{Namespace: namespace, Name: name})
	if !exists {
		return nil, ErrNotFound
	}

	record, err := s.reader.ReadAt(entry.Offset)
	if err != nil {
		return nil, err
	}

	// Tombstones never stay in the index, but the log is the source of
	// truth if they ever disagree.
	if len(record.Data) == 0 {
		return nil, ErrNotFound
	}

	return record, nil
}

// Set appends a new value for (namespace, name). Empty data is rejected;
// a zero-data record is the wire form of Delete, and the two operations
// stay distinct at this surface.
func (s *FileStore) Set(namespace uuid.UUID, name string, attributes uint32, data []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isOpen {
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
	size, err := record.EncodedSize()
	if err != nil {
		return err
	}

	offset, err := s.writer.Append(record)
	if err != nil {
		return err
	}

	s.index.Put(&IndexEntry{
		Key:    Key{Namespace: namespace, Name: name},
		Offset: offset,
		Size:   uint32(size),
	})

	return nil
}

// Delete appends a tombstone for (namespace, name) and drops it from the
// index. Deleting an absent variable returns ErrNotFound.
func (s *FileStore) Delete(namespace uuid.UUID, name string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isOpen {
		return ErrClosed
	}
	if !validKey(name) {
		return ErrInvalidKey
	}

	key := Key{Namespace: namespace, Name: name}
	if _, exists := s.index.Get(key); !exists {
		return ErrNotFound
	}

	tombstone := &varlist.Record{Name: name, Namespace: namespace}
	if _, err := s.writer.Append(tombstone); err != nil {
		return err
	}

	s.index.Delete(key)
	return nil
}

// List returns the keys of every live variable. Order is unspecified.
func (s *FileStore) List() ([]Key, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isOpen {
		return nil, ErrClosed
	}

	return s.index.Keys(), nil
}

// Stats returns store statistics.
func (s *FileStore) Stats() StoreStats {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isOpen {
		return StoreStats{}
	}

	return StoreStats{
		Variables: s.index.Size(),
		DataSize:  s.writer.Size(),
	}
}

// Close shuts down the store, flushing pending writes.
func (s *FileStore) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isOpen {
		return nil
	}
	s.isOpen = false

	// Close writer first so all data is flushed
	if s.writer != nil {
		if err := s.writer.Close(); err != nil {
			s.reader.Close()
			return err
		}
	}

	if s.reader != nil {
		return s.reader.Close()
	}
	return nil
}

// validateLogFile scans the log from the start and truncates everything
// after the last record that decodes cleanly. A missing file is an empty
// store, not an error.
func (s *FileStore) validateLogFile() (*RecoveryResult, error) {
	startTime := time.Now()

	fileInfo, err := os.Stat(s.dataFile)
	if err != nil {
		if os.IsNotExist(err) {
			return &RecoveryResult{RecoveryTime: time.Since(startTime)}, nil
		}
		return nil, err
	}
	fileSizeBefore := fileInfo.Size()

	reader, err := NewLogReader(LogReaderConfig{FilePath: s.dataFile})
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var recordsValidated int64
	var lastValidOffset int64
	corruptionFound := false

	for {
		record, err := reader.ReadNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			corruptionFound = true
			break
		}
		_ = record
		recordsValidated++
		lastValidOffset = reader.Offset()
	}

	fileSizeAfter := fileSizeBefore
	if corruptionFound {
		file, err := os.OpenFile(s.dataFile, os.O_RDWR, 0600)
		if err != nil {
			return nil, err
		}
		if err := file.Truncate(lastValidOffset); err != nil {
			file.Close()
			return nil, err
		}
		if err := file.Close(); err != nil {
			return nil, err
		}
		fileSizeAfter = lastValidOffset
	}

	return &RecoveryResult{
		RecordsValidated: recordsValidated,
		BytesTruncated:   fileSizeBefore - fileSizeAfter,
		FileSizeBefore:   fileSizeBefore,
		FileSizeAfter:    fileSizeAfter,
		RecoveryTime:     time.Since(startTime),
	}, nil
}
