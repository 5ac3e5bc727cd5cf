package varstore

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"github.com/platformkit/knobstore/pkg/varlist"
)

// maxLogRecordSize caps a single log record. The writer never produces
// anything close to this; a larger declared size means a torn or
// corrupted header.
const maxLogRecordSize = 1 << 30

// LogReader provides sequential access to records in a log file.
type LogReader struct {
	file   *os.File
	reader *bufio.Reader
	codec  *varlist.Codec
	offset int64
	config LogReaderConfig
}

// NewLogReader creates a new log reader for the specified file.
func NewLogReader(config LogReaderConfig) (*LogReader, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, err
	}

	if config.StartOffset > 0 {
		if _, err := file.Seek(config.StartOffset, 0); err != nil {
			file.Close()
			return nil, err
		}
	}

	return &LogReader{
		file:   file,
		reader: bufio.NewReader(file),
		codec:  varlist.NewCodec(),
		offset: config.StartOffset,
		config: config,
	}, nil
}

// ReadNext reads the record at the current offset and advances past it.
// A clean end of file returns io.EOF; a partial or malformed record
// returns ErrCorruption.
func (r *LogReader) ReadNext() (*varlist.Record, error) {
	header := make([]byte, varlist.HeaderSize)
	n, err := io.ReadFull(r.reader, header)
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		if err == io.ErrUnexpectedEOF {
			return nil, ErrCorruption
		}
		return nil, err
	}
	r.offset += int64(n)

	total, ok := logRecordSize(header)
	if !ok {
		return nil, ErrCorruption
	}

	rest := make([]byte, total-varlist.HeaderSize)
	n, err = io.ReadFull(r.reader, rest)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, ErrCorruption
		}
		return nil, err
	}
	r.offset += int64(n)

	full := make([]byte, 0, total)
	full = append(full, header...)
	full = append(full, rest...)

	record, _, err := r.codec.DecodeRecord(full)
	if err != nil {
		return nil, ErrCorruption
	}

	return record, nil
}

// ReadAt reads the record at a specific offset. The file is reopened so
// the read observes data appended since the reader was created.
func (r *LogReader) ReadAt(offset int64) (*varlist.Record, error) {
	file, err := os.Open(r.config.FilePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	header := make([]byte, varlist.HeaderSize)
	if _, err := file.ReadAt(header, offset); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, ErrCorruption
		}
		return nil, err
	}

	total, ok := logRecordSize(header)
	if !ok {
		return nil, ErrCorruption
	}

	full := make([]byte, total)
	if _, err := file.ReadAt(full, offset); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, ErrCorruption
		}
		return nil, err
	}

	record, _, err := r.codec.DecodeRecord(full)
	if err != nil {
		return nil, ErrCorruption
	}

	return record, nil
}

// Seek sets the read offset for subsequent ReadNext calls.
func (r *LogReader) Seek(offset int64) error {
	if _, err := r.file.Seek(offset, 0); err != nil {
		return err
	}

	r.reader = bufio.NewReader(r.file) // Recreate reader to clear buffer
	r.offset = offset
	return nil
}

// Offset returns the current read offset.
func (r *LogReader) Offset() int64 {
	return r.offset
}

// Close closes the log reader.
func (r *LogReader) Close() error {
	return r.file.Close()
}

// logRecordSize computes the full record size from a wire header,
// rejecting sizes the writer could never have produced.
func logRecordSize(header []byte) (int, bool) {
	nameSize := binary.LittleEndian.Uint32(header[0:4])
	dataSize := binary.LittleEndian.Uint32(header[4:8])

	total := uint64(varlist.HeaderSize) + uint64(nameSize) + varlist.GUIDSize + 4 + uint64(dataSize) + 4
	if nameSize == 0 || nameSize > varlist.MaxNameSize || total > maxLogRecordSize {
		return 0, false
	}
	return int(total), true
}
