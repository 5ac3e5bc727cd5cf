package varlist

import "errors"

// Errors returned by the codec. Callers classify with errors.Is; the
// wrapped messages add buffer offsets and sizes for diagnostics.
var (
	ErrInvalidArgument = errors.New("varlist: invalid argument")
	ErrBufferTooSmall  = errors.New("varlist: buffer too small")
	ErrCorruptedData   = errors.New("varlist: corrupted data")
	ErrNotFound        = errors.New("varlist: variable not found")
)
