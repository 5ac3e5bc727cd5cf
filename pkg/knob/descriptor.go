// Package knob implements the boot-time knob resolution protocol: each
// knob is a named, fixed-size configuration value with a compiled-in
// default, looked up once in a variable store, validated, and cached for
// the remainder of the process lifetime. A missing or malformed stored
// value never fails a resolution; it falls back to the default.
package knob

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/platformkit/knobstore/pkg/varlist"
)

// Errors returned by the resolver and table constructors.
var (
	ErrInvalidArgument = fmt.Errorf("knob: invalid argument")
	ErrUnknownKnob     = fmt.Errorf("knob: unknown knob")
)

// ID is a knob's stable numeric identifier: its index in the table.
type ID int

// Descriptor is the static metadata for one knob.
type Descriptor struct {
	// Name of the variable holding an override for this knob.
	Name string
	// Namespace scoping the variable name.
	Namespace uuid.UUID
	// Size of the value in bytes. A stored value of any other size is
	// ignored in favor of the default.
	Size int
	// Default is the compiled-in value, exactly Size bytes.
	Default []byte
	// Attributes requested when the knob is written back to a store.
	Attributes uint32
	// Validator, if non-nil, is consulted on every resolution. A value
	// it rejects is replaced by the default.
	Validator Validator
}

// validate checks the descriptor invariants the resolver depends on.
func (d *Descriptor) validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: empty knob name", ErrInvalidArgument)
	}
	r := varlist.Record{Name: d.Name, Namespace: d.Namespace}
	if _, err := r.EncodedSize(); err != nil {
		return fmt.Errorf("%w: knob name %q not encodable", ErrInvalidArgument, d.Name)
	}
	if d.Namespace == uuid.Nil {
		return fmt.Errorf("%w: knob %q has zero namespace", ErrInvalidArgument, d.Name)
	}
	if d.Size <= 0 {
		return fmt.Errorf("%w: knob %q has size %d", ErrInvalidArgument, d.Name, d.Size)
	}
	if len(d.Default) != d.Size {
		return fmt.Errorf("%w: knob %q default is %d bytes, size is %d",
			ErrInvalidArgument, d.Name, len(d.Default), d.Size)
	}
	return nil
}

// Table is an ordered, immutable collection of knob descriptors. A
// knob's ID is its position in the table.
type Table struct {
	descriptors []Descriptor
	byName      map[string]ID
}

// NewTable validates every descriptor and freezes the order. Names must
// be unique across the table regardless of namespace, so ID lookups by
// name stay unambiguous.
func NewTable(descriptors []Descriptor) (*Table, error) {
	table := &Table{
		descriptors: make([]Descriptor, len(descriptors)),
		byName:      make(map[string]ID, len(descriptors)),
	}

	for i, d := range descriptors {
		if err := d.validate(); err != nil {
			return nil, err
		}
		if _, dup := table.byName[d.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate knob name %q", ErrInvalidArgument, d.Name)
		}
		d.Default = append([]byte(nil), d.Default...)
		table.descriptors[i] = d
		table.byName[d.Name] = ID(i)
	}

	return table, nil
}

// Len returns the number of knobs in the table.
func (t *Table) Len() int {
	return len(t.descriptors)
}

// Descriptor returns the descriptor for id.
func (t *Table) Descriptor(id ID) (Descriptor, error) {
	if id < 0 || int(id) >= len(t.descriptors) {
		return Descriptor{}, fmt.Errorf("%w: id %d", ErrUnknownKnob, id)
	}
	return t.descriptors[id], nil
}

// ID resolves a knob name to its identifier.
func (t *Table) ID(name string) (ID, bool) {
	id, ok := t.byName[name]
	return id, ok
}
