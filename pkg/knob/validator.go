package knob

import "encoding/binary"

// Validator judges a candidate knob value. Validate receives exactly
// Descriptor.Size bytes and must not retain or mutate the slice.
type Validator interface {
	Validate(value []byte) bool
}

// ValidatorFunc adapts a plain function to the Validator interface.
type ValidatorFunc func(value []byte) bool

// Validate calls f.
func (f ValidatorFunc) Validate(value []byte) bool {
	return f(value)
}

// Range accepts unsigned little-endian values v with min <= v <= max.
// The integer width is taken from the value length; widths other than
// 1, 2, 4 or 8 bytes are rejected.
func Range(min, max uint64) Validator {
	return ValidatorFunc(func(value []byte) bool {
		v, ok := decodeUint(value)
		return ok && v >= min && v <= max
	})
}

// SignedRange is Range for two's-complement signed values.
func SignedRange(min, max int64) Validator {
	return ValidatorFunc(func(value []byte) bool {
		v, ok := decodeUint(value)
		if !ok {
			return false
		}
		s := signExtend(v, len(value))
		return s >= min && s <= max
	})
}

// Enum accepts only the listed unsigned values.
func Enum(allowed ...uint64) Validator {
	set := make(map[uint64]struct{}, len(allowed))
	for _, v := range allowed {
		set[v] = struct{}{}
	}
	return ValidatorFunc(func(value []byte) bool {
		v, ok := decodeUint(value)
		if !ok {
			return false
		}
		_, found := set[v]
		return found
	})
}

// BoolStrict accepts a single byte holding exactly 0 or 1.
func BoolStrict() Validator {
	return ValidatorFunc(func(value []byte) bool {
		return len(value) == 1 && value[0] <= 1
	})
}

func decodeUint(value []byte) (uint64, bool) {
	switch len(value) {
	case 1:
		return uint64(value[0]), true
	case 2:
		return uint64(binary.LittleEndian.Uint16(value)), true
	case 4:
		return uint64(binary.LittleEndian.Uint32(value)), true
	case 8:
		return binary.LittleEndian.Uint64(value), true
	default:
		return 0, false
	}
}

func signExtend(v uint64, width int) int64 {
	shift := uint(64 - 8*width)
	return int64(v<<shift) >> shift
}
