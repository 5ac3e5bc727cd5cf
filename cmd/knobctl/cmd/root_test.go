package cmd

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStore(t *testing.T) {
	nsTest := uuid.MustParse("d9a7c912-33f0-4b8e-9c01-5566778899aa")

	t.Run("file backend", func(t *testing.T) {
		store, err := openStore("file", t.TempDir(), 0)
		require.NoError(t, err)
		defer store.Close()

		require.NoError(t, store.Set(nsTest, "K", 0, []byte{1}))
		record, err := store.Get(nsTest, "K")
		require.NoError(t, err)
		assert.Equal(t, []byte{1}, record.Data)
	})

	t.Run("pebble backend", func(t *testing.T) {
		store, err := openStore("pebble", t.TempDir(), 0)
		require.NoError(t, err)
		defer store.Close()

		require.NoError(t, store.Set(nsTest, "K", 0, []byte{2}))
		record, err := store.Get(nsTest, "K")
		require.NoError(t, err)
		assert.Equal(t, []byte{2}, record.Data)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := openStore("etcd", t.TempDir(), 0)
		assert.Error(t, err)
	})
}
