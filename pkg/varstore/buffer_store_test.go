package varstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platformkit/knobstore/pkg/varlist"
)

func buildList(t *testing.T, records ...varlist.Record) []byte {
	t.Helper()
	codec := varlist.NewCodec()
	var buf []byte
	var err error
	for i := range records {
		buf, err = codec.AppendRecord(buf, &records[i])
		require.NoError(t, err)
	}
	return buf
}

func TestBufferStore_Get(t *testing.T) {
	buf := buildList(t,
		varlist.Record{Name: "X", Namespace: nsPlatform, Data: []byte("x-data")},
		varlist.Record{Name: "Y", Namespace: nsVendor, Attributes: 9, Data: []byte("y-data")},
	)
	store := NewBufferStore(buf)

	record, err := store.Get(nsVendor, "Y")
	require.NoError(t, err)
	assert.Equal(t, []byte("y-data"), record.Data)
	assert.EqualValues(t, 9, record.Attributes)

	_, err = store.Get(nsPlatform, "Y")
	assert.Equal(t, ErrNotFound, err)
}

func TestBufferStore_ReadOnly(t *testing.T) {
	store := NewBufferStore(nil)

	assert.Equal(t, ErrReadOnly, store.Set(nsPlatform, "X", 0, []byte{1}))
	assert.Equal(t, ErrReadOnly, store.Delete(nsPlatform, "X"))
}

func TestBufferStore_List(t *testing.T) {
	buf := buildList(t,
		varlist.Record{Name: "First", Namespace: nsPlatform, Data: []byte{1}},
		varlist.Record{Name: "Second", Namespace: nsPlatform, Data: []byte{2}},
	)
	store := NewBufferStore(buf)

	keys, err := store.List()
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Equal(t, "First", keys[0].Name)
	assert.Equal(t, "Second", keys[1].Name)

	assert.Equal(t, 2, store.Stats().Variables)
}

func TestBufferStore_CorruptBuffer(t *testing.T) {
	buf := buildList(t, varlist.Record{Name: "X", Namespace: nsPlatform, Data: []byte{1}})
	buf[len(buf)-1] ^= 0xFF // break the trailer

	store := NewBufferStore(buf)

	_, err := store.Get(nsPlatform, "X")
	assert.Equal(t, ErrCorruption, err)

	_, err = store.List()
	assert.Equal(t, ErrCorruption, err)
}

func TestMemStore_BasicOperations(t *testing.T) {
	store := NewMemStore()

	require.NoError(t, store.Set(nsPlatform, "K", 5, []byte("v1")))
	require.NoError(t, store.Set(nsPlatform, "K", 5, []byte("v2")))

	record, err := store.Get(nsPlatform, "K")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), record.Data)

	// Returned records are copies; mutating one must not poison the store.
	record.Data[0] = 'X'
	again, err := store.Get(nsPlatform, "K")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), again.Data)

	assert.Equal(t, ErrInvalidKey, store.Set(nsPlatform, "K", 0, nil))

	require.NoError(t, store.Delete(nsPlatform, "K"))
	assert.Equal(t, ErrNotFound, store.Delete(nsPlatform, "K"))
	_, err = store.Get(nsPlatform, "K")
	assert.Equal(t, ErrNotFound, err)
}
