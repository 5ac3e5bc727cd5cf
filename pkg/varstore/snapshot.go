package varstore

import (
	"fmt"

	"github.com/platformkit/knobstore/pkg/varlist"
)

// Snapshot serializes every live variable in s into one variable-list
// buffer, in List order. The result round-trips through Apply.
func Snapshot(s Store) ([]byte, error) {
	keys, err := s.List()
	if err != nil {
		return nil, err
	}

	codec := varlist.NewCodec()
	var buf []byte
	for _, key := range keys {
		record, err := s.Get(key.Namespace, key.Name)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s/%s: %w", key.Namespace, key.Name, err)
		}
		buf, err = codec.AppendRecord(buf, record)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s/%s: %w", key.Namespace, key.Name, err)
		}
	}
	return buf, nil
}

// Apply decodes a variable-list buffer and writes every record into s.
// The whole buffer is validated before the first write, so a corrupt
// buffer mutates nothing. Records with zero-length data are tombstones:
// the variable is deleted if present.
func Apply(s Store, buf []byte) error {
	records, err := varlist.NewCodec().DecodeAll(buf)
	if err != nil {
		return err
	}

	for i := range records {
		r := &records[i]
		if len(r.Data) == 0 {
			if err := s.Delete(r.Namespace, r.Name); err != nil && err != ErrNotFound {
				return fmt.Errorf("apply tombstone %s/%s: %w", r.Namespace, r.Name, err)
			}
			continue
		}
		if err := s.Set(r.Namespace, r.Name, r.Attributes, r.Data); err != nil {
			return fmt.Errorf("apply %s/%s: %w", r.Namespace, r.Name, err)
		}
	}
	return nil
}
