package knob

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// knobfileEntry is the YAML shape of one knob declaration.
type knobfileEntry struct {
	Name       string    `yaml:"name"`
	Namespace  string    `yaml:"namespace"`
	Type       string    `yaml:"type"`
	Size       int       `yaml:"size"`
	Default    yaml.Node `yaml:"default"`
	Min        *int64    `yaml:"min"`
	Max        *int64    `yaml:"max"`
	Enum       []uint64  `yaml:"enum"`
	Attributes uint32    `yaml:"attributes"`
}

type knobfile struct {
	Knobs []knobfileEntry `yaml:"knobs"`
}

// typeWidths maps fixed-width knob types to their size in bytes.
var typeWidths = map[string]int{
	"bool":    1,
	"uint8":   1,
	"uint16":  2,
	"uint32":  4,
	"uint64":  8,
	"int8":    1,
	"int16":   2,
	"int32":   4,
	"int64":   8,
	"float32": 4,
	"float64": 8,
}

// LoadTable reads a YAML knobfile and builds the descriptor table.
// Typed defaults are encoded into little-endian fixed-size values, and
// min/max/enum constraints compile into validators.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read knobfile: %w", err)
	}
	return ParseTable(data)
}

// ParseTable builds a table from knobfile bytes.
func ParseTable(data []byte) (*Table, error) {
	var file knobfile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse knobfile: %w", err)
	}
	if len(file.Knobs) == 0 {
		return nil, fmt.Errorf("%w: knobfile declares no knobs", ErrInvalidArgument)
	}

	descriptors := make([]Descriptor, 0, len(file.Knobs))
	for i := range file.Knobs {
		d, err := file.Knobs[i].descriptor()
		if err != nil {
			return nil, fmt.Errorf("knob %q: %w", file.Knobs[i].Name, err)
		}
		descriptors = append(descriptors, d)
	}
	return NewTable(descriptors)
}

// descriptor converts one knobfile entry into a Descriptor.
func (e *knobfileEntry) descriptor() (Descriptor, error) {
	namespace, err := uuid.Parse(e.Namespace)
	if err != nil {
		return Descriptor{}, fmt.Errorf("bad namespace: %w", err)
	}

	size := e.Size
	if width, fixed := typeWidths[e.Type]; fixed {
		if size != 0 && size != width {
			return Descriptor{}, fmt.Errorf("type %s is %d bytes, size says %d", e.Type, width, size)
		}
		size = width
	} else if e.Type == "string" || e.Type == "bytes" {
		if size <= 0 {
			return Descriptor{}, fmt.Errorf("type %s requires an explicit size", e.Type)
		}
	} else {
		return Descriptor{}, fmt.Errorf("unknown type %q", e.Type)
	}

	defaultValue, err := e.encodeDefault(size)
	if err != nil {
		return Descriptor{}, err
	}

	validator, err := e.validator()
	if err != nil {
		return Descriptor{}, err
	}

	return Descriptor{
		Name:       e.Name,
		Namespace:  namespace,
		Size:       size,
		Default:    defaultValue,
		Attributes: e.Attributes,
		Validator:  validator,
	}, nil
}

// encodeDefault turns the YAML default into the knob's wire value.
func (e *knobfileEntry) encodeDefault(size int) ([]byte, error) {
	out := make([]byte, size)

	switch e.Type {
	case "bool":
		var v bool
		if err := e.Default.Decode(&v); err != nil {
			return nil, fmt.Errorf("bad bool default: %w", err)
		}
		if v {
			out[0] = 1
		}

	case "uint8", "uint16", "uint32", "uint64":
		var v uint64
		if err := e.Default.Decode(&v); err != nil {
			return nil, fmt.Errorf("bad unsigned default: %w", err)
		}
		if size < 8 && v >= 1<<(8*size) {
			return nil, fmt.Errorf("default %d does not fit %s", v, e.Type)
		}
		putUint(out, v)

	case "int8", "int16", "int32", "int64":
		var v int64
		if err := e.Default.Decode(&v); err != nil {
			return nil, fmt.Errorf("bad signed default: %w", err)
		}
		if size < 8 {
			limit := int64(1) << (8*size - 1)
			if v < -limit || v >= limit {
				return nil, fmt.Errorf("default %d does not fit %s", v, e.Type)
			}
		}
		putUint(out, uint64(v))

	case "float32":
		var v float32
		if err := e.Default.Decode(&v); err != nil {
			return nil, fmt.Errorf("bad float default: %w", err)
		}
		binary.LittleEndian.PutUint32(out, math.Float32bits(v))

	case "float64":
		var v float64
		if err := e.Default.Decode(&v); err != nil {
			return nil, fmt.Errorf("bad float default: %w", err)
		}
		binary.LittleEndian.PutUint64(out, math.Float64bits(v))

	case "string":
		var v string
		if err := e.Default.Decode(&v); err != nil {
			return nil, fmt.Errorf("bad string default: %w", err)
		}
		if len(v) > size {
			return nil, fmt.Errorf("default %q longer than size %d", v, size)
		}
		copy(out, v) // NUL-padded to size

	case "bytes":
		var v string
		if err := e.Default.Decode(&v); err != nil {
			return nil, fmt.Errorf("bad bytes default: %w", err)
		}
		raw, err := hex.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("bytes default is not hex: %w", err)
		}
		if len(raw) != size {
			return nil, fmt.Errorf("bytes default is %d bytes, size is %d", len(raw), size)
		}
		copy(out, raw)
	}

	return out, nil
}

// validator compiles the entry's constraints.
func (e *knobfileEntry) validator() (Validator, error) {
	hasRange := e.Min != nil || e.Max != nil

	switch e.Type {
	case "bool":
		if hasRange || len(e.Enum) > 0 {
			return nil, fmt.Errorf("bool knobs take no min/max/enum")
		}
		return BoolStrict(), nil

	case "string", "bytes", "float32", "float64":
		if hasRange || len(e.Enum) > 0 {
			return nil, fmt.Errorf("%s knobs take no min/max/enum", e.Type)
		}
		return nil, nil
	}

	if hasRange && len(e.Enum) > 0 {
		return nil, fmt.Errorf("min/max and enum are mutually exclusive")
	}
	if len(e.Enum) > 0 {
		return Enum(e.Enum...), nil
	}
	if !hasRange {
		return nil, nil
	}

	signed := e.Type[0] == 'i'
	if signed {
		min, max := int64(math.MinInt64), int64(math.MaxInt64)
		if e.Min != nil {
			min = *e.Min
		}
		if e.Max != nil {
			max = *e.Max
		}
		return SignedRange(min, max), nil
	}

	min, max := uint64(0), uint64(math.MaxUint64)
	if e.Min != nil {
		if *e.Min < 0 {
			return nil, fmt.Errorf("negative min on unsigned knob")
		}
		min = uint64(*e.Min)
	}
	if e.Max != nil {
		if *e.Max < 0 {
			return nil, fmt.Errorf("negative max on unsigned knob")
		}
		max = uint64(*e.Max)
	}
	return Range(min, max), nil
}

func putUint(out []byte, v uint64) {
	switch len(out) {
	case 1:
		out[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(out, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(out, uint32(v))
	case 8:
		binary.LittleEndian.PutUint64(out, v)
	}
}
