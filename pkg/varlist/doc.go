// Package varlist implements the variable-list binary format used to
// persist and bulk-transfer configuration variables.
//
// A variable list is a contiguous sequence of zero or more records with
// no count prefix and no inter-record padding. End of list is reached by
// exact buffer exhaustion; a non-zero remainder smaller than a minimal
// record is corruption, not a valid end.
//
// # Record Format
//
// Records are serialized in a binary format with the following structure
// (all integer fields little-endian):
//
//	[NameSize(4)][DataSize(4)][Name(NameSize)][Namespace(16)][Attributes(4)][Data(DataSize)][CRC32(4)]
//
// Fields:
//   - NameSize: byte length of the UTF-16LE name, including the 2-byte
//     NUL terminator
//   - DataSize: byte length of the payload
//   - Name: UTF-16LE code units, NUL-terminated
//   - Namespace: 128-bit namespace GUID in mixed-endian wire layout
//   - Attributes: 32-bit flag word, opaque to the codec
//   - Data: payload bytes
//   - CRC32: IEEE checksum over every preceding byte of this record
//
// The total record size is: 32 bytes of fixed overhead + NameSize + DataSize.
//
// # Capacity Negotiation
//
// EncodeRecord follows a query-then-fill protocol: called with an
// undersized destination it returns ErrBufferTooSmall together with the
// exact required size, so the caller can allocate and retry. The caller,
// not the codec, owns buffer allocation.
//
// # Error Handling
//
// Failures are classified by package sentinels:
//   - ErrInvalidArgument: nil record, empty or oversized name
//   - ErrBufferTooSmall: insufficient input or output capacity, retryable
//   - ErrCorruptedData: checksum mismatch, missing NUL terminator,
//     malformed structure
//   - ErrNotFound: a named lookup exhausted the buffer without a match
//
// The codec never swallows an error; every failure is returned to the
// immediate caller.
//
// # Thread Safety
//
// Codec instances hold no state and are safe for concurrent use over
// independent buffers. Decoded records own copies of their name and data
// and never alias the input buffer.
package varlist
