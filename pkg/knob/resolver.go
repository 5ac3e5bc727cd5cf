package knob

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/google/uuid"

	"github.com/platformkit/knobstore/pkg/varlist"
)

// Store is the variable-store collaborator as the resolver sees it.
// Get returns the full stored record for (namespace, name) or an error;
// the resolver treats every error, not just not-found, as the absence
// of a usable override.
type Store interface {
	Get(namespace uuid.UUID, name string) (*varlist.Record, error)
}

// Source reports where a knob's resolved value came from.
type Source int

const (
	// SourceUnresolved: the knob has not been resolved yet.
	SourceUnresolved Source = iota
	// SourceStored: the store held a valid override.
	SourceStored
	// SourceDefault: the store had no usable value; the compiled-in
	// default was used.
	SourceDefault
	// SourceInvalid: the store held a value of the right size that the
	// validator rejected; the default was substituted.
	SourceInvalid
)

// String returns the source name for logs and listings.
func (s Source) String() string {
	switch s {
	case SourceStored:
		return "stored"
	case SourceDefault:
		return "default"
	case SourceInvalid:
		return "invalid-replaced"
	default:
		return "unresolved"
	}
}

// Resolver owns one cache slot per table entry. It is the explicit
// registry form of the knob cache: all mutable state lives here, not in
// package globals, and an internal mutex makes concurrent Resolve calls
// for the same knob safe (the first resolution wins, later calls see
// the cached slot).
type Resolver struct {
	table *Table
	store Store

	mu      sync.Mutex
	slots   [][]byte
	sources []Source
}

// NewResolver creates a resolver over table backed by store. A nil
// store resolves every knob to its default.
func NewResolver(table *Table, store Store) *Resolver {
	return &Resolver{
		table:   table,
		store:   store,
		slots:   make([][]byte, table.Len()),
		sources: make([]Source, table.Len()),
	}
}

// Table returns the table this resolver serves.
func (r *Resolver) Table() *Table {
	return r.table
}

// Resolve returns the authoritative value for id, resolving it on first
// use. Resolution queries the store for (namespace, name); a missing
// variable, a store failure, or a size mismatch all fall back to the
// compiled-in default, and a validator rejection replaces the value
// with the default. Resolution therefore always succeeds for a valid id.
//
// Second and subsequent calls return the cached slot without
// re-querying the store or re-validating. Callers must not mutate the
// returned slice.
func (r *Resolver) Resolve(id ID) ([]byte, error) {
	descriptor, err := r.table.Descriptor(id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sources[id] != SourceUnresolved {
		return r.slots[id], nil
	}

	slot := make([]byte, descriptor.Size)
	source := SourceDefault

	if r.store != nil {
		record, err := r.store.Get(descriptor.Namespace, descriptor.Name)
		// Any failure and any size mismatch mean "no usable override".
		// A wrong-size value is never truncated or zero-padded.
		if err == nil && len(record.Data) == descriptor.Size {
			copy(slot, record.Data)
			source = SourceStored
		}
	}
	if source == SourceDefault {
		copy(slot, descriptor.Default)
	}

	// The validator sees the slot regardless of which source filled it;
	// a rejected value is overwritten with the default before any
	// consumer can observe it.
	if descriptor.Validator != nil && !descriptor.Validator.Validate(slot) {
		copy(slot, descriptor.Default)
		if source == SourceStored {
			source = SourceInvalid
		}
	}

	r.slots[id] = slot
	r.sources[id] = source
	return slot, nil
}

// ResolveAll resolves every knob in the table.
func (r *Resolver) ResolveAll() error {
	for id := ID(0); int(id) < r.table.Len(); id++ {
		if _, err := r.Resolve(id); err != nil {
			return err
		}
	}
	return nil
}

// Source reports where the resolved value for id came from, or
// SourceUnresolved if Resolve has not run yet.
func (r *Resolver) Source(id ID) (Source, error) {
	if _, err := r.table.Descriptor(id); err != nil {
		return SourceUnresolved, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sources[id], nil
}

// Bytes resolves id and returns a copy of its value.
func (r *Resolver) Bytes(id ID) ([]byte, error) {
	slot, err := r.Resolve(id)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), slot...), nil
}

// Bool resolves a 1-byte knob as a boolean. Any non-zero byte is true.
func (r *Resolver) Bool(id ID) (bool, error) {
	slot, err := r.resolveSized(id, 1)
	if err != nil {
		return false, err
	}
	return slot[0] != 0, nil
}

// Uint8 resolves a 1-byte knob.
func (r *Resolver) Uint8(id ID) (uint8, error) {
	slot, err := r.resolveSized(id, 1)
	if err != nil {
		return 0, err
	}
	return slot[0], nil
}

// Uint16 resolves a 2-byte knob, little-endian.
func (r *Resolver) Uint16(id ID) (uint16, error) {
	slot, err := r.resolveSized(id, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(slot), nil
}

// Uint32 resolves a 4-byte knob, little-endian.
func (r *Resolver) Uint32(id ID) (uint32, error) {
	slot, err := r.resolveSized(id, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(slot), nil
}

// Uint64 resolves an 8-byte knob, little-endian.
func (r *Resolver) Uint64(id ID) (uint64, error) {
	slot, err := r.resolveSized(id, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(slot), nil
}

// Int8 resolves a 1-byte signed knob.
func (r *Resolver) Int8(id ID) (int8, error) {
	v, err := r.Uint8(id)
	return int8(v), err
}

// Int16 resolves a 2-byte signed knob.
func (r *Resolver) Int16(id ID) (int16, error) {
	v, err := r.Uint16(id)
	return int16(v), err
}

// Int32 resolves a 4-byte signed knob.
func (r *Resolver) Int32(id ID) (int32, error) {
	v, err := r.Uint32(id)
	return int32(v), err
}

// Int64 resolves an 8-byte signed knob.
func (r *Resolver) Int64(id ID) (int64, error) {
	v, err := r.Uint64(id)
	return int64(v), err
}

// Float32 resolves a 4-byte knob as an IEEE 754 float.
func (r *Resolver) Float32(id ID) (float32, error) {
	v, err := r.Uint32(id)
	return math.Float32frombits(v), err
}

// Float64 resolves an 8-byte knob as an IEEE 754 float.
func (r *Resolver) Float64(id ID) (float64, error) {
	v, err := r.Uint64(id)
	return math.Float64frombits(v), err
}

// String resolves a fixed-size string knob, trimming NUL padding.
func (r *Resolver) String(id ID) (string, error) {
	slot, err := r.Resolve(id)
	if err != nil {
		return "", err
	}
	return string(bytes.TrimRight(slot, "\x00")), nil
}

// resolveSized resolves id and enforces that the descriptor size
// matches what the typed accessor expects.
func (r *Resolver) resolveSized(id ID, size int) ([]byte, error) {
	descriptor, err := r.table.Descriptor(id)
	if err != nil {
		return nil, err
	}
	if descriptor.Size != size {
		return nil, fmt.Errorf("%w: knob %q is %d bytes, accessor expects %d",
			ErrInvalidArgument, descriptor.Name, descriptor.Size, size)
	}
	return r.Resolve(id)
}
