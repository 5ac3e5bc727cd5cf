package varstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platformkit/knobstore/pkg/varlist"
)

func TestSnapshotApply_RoundTrip(t *testing.T) {
	source := NewMemStore()
	require.NoError(t, source.Set(nsPlatform, "A", 1, []byte("alpha")))
	require.NoError(t, source.Set(nsPlatform, "B", 2, []byte("beta")))
	require.NoError(t, source.Set(nsVendor, "C", 3, []byte("gamma")))

	buf, err := Snapshot(source)
	require.NoError(t, err)

	// The snapshot is a plain variable list.
	records, err := varlist.NewCodec().DecodeAll(buf)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	target := NewMemStore()
	require.NoError(t, Apply(target, buf))

	for _, key := range []Key{
		{Namespace: nsPlatform, Name: "A"},
		{Namespace: nsPlatform, Name: "B"},
		{Namespace: nsVendor, Name: "C"},
	} {
		want, err := source.Get(key.Namespace, key.Name)
		require.NoError(t, err)
		got, err := target.Get(key.Namespace, key.Name)
		require.NoError(t, err)
		assert.Equal(t, want.Data, got.Data)
		assert.Equal(t, want.Attributes, got.Attributes)
	}
}

func TestApply_CorruptBufferMutatesNothing(t *testing.T) {
	buf := buildList(t,
		varlist.Record{Name: "Good", Namespace: nsPlatform, Data: []byte("ok")},
	)
	buf[len(buf)-1] ^= 0xFF

	target := NewMemStore()
	err := Apply(target, buf)
	require.Error(t, err)

	// Validation happens before the first write.
	assert.Equal(t, 0, target.Stats().Variables)
}

func TestApply_Tombstones(t *testing.T) {
	target := NewMemStore()
	require.NoError(t, target.Set(nsPlatform, "Doomed", 0, []byte("x")))

	buf := buildList(t,
		varlist.Record{Name: "Doomed", Namespace: nsPlatform}, // tombstone
		varlist.Record{Name: "Absent", Namespace: nsPlatform}, // tombstone for a missing key
		varlist.Record{Name: "Fresh", Namespace: nsPlatform, Data: []byte("y")},
	)

	require.NoError(t, Apply(target, buf))

	_, err := target.Get(nsPlatform, "Doomed")
	assert.Equal(t, ErrNotFound, err)

	record, err := target.Get(nsPlatform, "Fresh")
	require.NoError(t, err)
	assert.Equal(t, []byte("y"), record.Data)
}

func TestSnapshot_FileStoreCompactsTombstones(t *testing.T) {
	store := openFileStore(t)
	require.NoError(t, store.Set(nsPlatform, "Stay", 0, []byte("s")))
	require.NoError(t, store.Set(nsPlatform, "Go", 0, []byte("g")))
	require.NoError(t, store.Delete(nsPlatform, "Go"))

	buf, err := Snapshot(store)
	require.NoError(t, err)

	// Only live variables appear in a snapshot; the log's tombstone and
	// the superseded record are compacted away.
	records, err := varlist.NewCodec().DecodeAll(buf)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Stay", records[0].Name)
}
