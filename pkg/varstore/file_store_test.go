package varstore

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
)

var (
	nsPlatform = uuid.MustParse("52d39693-4f64-4ee6-81de-458937727855")
	nsVendor   = uuid.MustParse("b3f3fa22-9c27-42b8-a194-d5eb0fd7f01c")
)

func openFileStore(t *testing.T) *FileStore {
	t.Helper()

	store, err := NewFileStore(FileStoreConfig{
		DataDir:       t.TempDir(),
		FsyncInterval: 0, // Immediate sync for testing
	})
	if err != nil {
		t.Fatalf("Failed to create file store: %v", err)
	}
	if _, err := store.Open(); err != nil {
		t.Fatalf("Failed to open file store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestFileStore_BasicOperations(t *testing.T) {
	store := openFileStore(t)

	if err := store.Set(nsPlatform, "BootTimeoutSec", 0x7, []byte{30, 0, 0, 0}); err != nil {
		t.Fatalf("Failed to set variable: %v", err)
	}

	record, err := store.Get(nsPlatform, "BootTimeoutSec")
	if err != nil {
		t.Fatalf("Failed to get variable: %v", err)
	}
	if !bytes.Equal(record.Data, []byte{30, 0, 0, 0}) {
		t.Errorf("Data mismatch: got %v", record.Data)
	}
	if record.Attributes != 0x7 {
		t.Errorf("Attributes mismatch: got %#x, want 0x7", record.Attributes)
	}
	if record.Namespace != nsPlatform {
		t.Errorf("Namespace mismatch: got %s", record.Namespace)
	}

	// Same name under a different namespace is a different variable
	if _, err := store.Get(nsVendor, "BootTimeoutSec"); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound for other namespace, got %v", err)
	}

	if err := store.Delete(nsPlatform, "BootTimeoutSec"); err != nil {
		t.Fatalf("Failed to delete variable: %v", err)
	}
	if _, err := store.Get(nsPlatform, "BootTimeoutSec"); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestFileStore_UpdateValue(t *testing.T) {
	store := openFileStore(t)

	if err := store.Set(nsPlatform, "AssetTag", 0, []byte("FIRST")); err != nil {
		t.Fatalf("Failed to set initial value: %v", err)
	}
	if err := store.Set(nsPlatform, "AssetTag", 0, []byte("SECOND")); err != nil {
		t.Fatalf("Failed to update value: %v", err)
	}

	record, err := store.Get(nsPlatform, "AssetTag")
	if err != nil {
		t.Fatalf("Failed to get variable: %v", err)
	}
	if string(record.Data) != "SECOND" {
		t.Errorf("Expected latest value, got %q", record.Data)
	}

	stats := store.Stats()
	if stats.Variables != 1 {
		t.Errorf("Expected 1 live variable, got %d", stats.Variables)
	}
}

func TestFileStore_InvalidArguments(t *testing.T) {
	store := openFileStore(t)

	if err := store.Set(nsPlatform, "", 0, []byte{1}); err != ErrInvalidKey {
		t.Errorf("Expected ErrInvalidKey for empty name, got %v", err)
	}

	// Zero-length data is the tombstone wire form; Set must reject it so
	// Set and Delete stay distinct operations.
	if err := store.Set(nsPlatform, "Knob", 0, nil); err != ErrInvalidKey {
		t.Errorf("Expected ErrInvalidKey for empty data, got %v", err)
	}

	if err := store.Delete(nsPlatform, "Missing"); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound deleting absent variable, got %v", err)
	}
}

func TestFileStore_ClosedStore(t *testing.T) {
	store := openFileStore(t)
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := store.Get(nsPlatform, "X"); err != ErrClosed {
		t.Errorf("Expected ErrClosed from Get, got %v", err)
	}
	if err := store.Set(nsPlatform, "X", 0, []byte{1}); err != ErrClosed {
		t.Errorf("Expected ErrClosed from Set, got %v", err)
	}
	if _, err := store.List(); err != ErrClosed {
		t.Errorf("Expected ErrClosed from List, got %v", err)
	}
}

func TestFileStore_ReopenRebuildsIndex(t *testing.T) {
	dir := t.TempDir()
	config := FileStoreConfig{DataDir: dir}

	store, err := NewFileStore(config)
	if err != nil {
		t.Fatalf("Failed to create file store: %v", err)
	}
	if _, err := store.Open(); err != nil {
		t.Fatalf("Failed to open file store: %v", err)
	}

	if err := store.Set(nsPlatform, "Keep", 0, []byte("kept")); err != nil {
		t.Fatalf("Failed to set variable: %v", err)
	}
	if err := store.Set(nsPlatform, "Gone", 0, []byte("doomed")); err != nil {
		t.Fatalf("Failed to set variable: %v", err)
	}
	if err := store.Delete(nsPlatform, "Gone"); err != nil {
		t.Fatalf("Failed to delete variable: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewFileStore(config)
	if err != nil {
		t.Fatalf("Failed to recreate file store: %v", err)
	}
	recovery, err := reopened.Open()
	if err != nil {
		t.Fatalf("Failed to reopen file store: %v", err)
	}
	defer reopened.Close()

	if recovery.BytesTruncated != 0 {
		t.Errorf("Clean log should not truncate, got %d bytes", recovery.BytesTruncated)
	}
	// Three records on disk: two sets and one tombstone
	if recovery.RecordsValidated != 3 {
		t.Errorf("Expected 3 validated records, got %d", recovery.RecordsValidated)
	}

	record, err := reopened.Get(nsPlatform, "Keep")
	if err != nil {
		t.Fatalf("Failed to get surviving variable: %v", err)
	}
	if string(record.Data) != "kept" {
		t.Errorf("Data mismatch after reopen: %q", record.Data)
	}

	// The tombstone must keep the deleted variable hidden after rebuild
	if _, err := reopened.Get(nsPlatform, "Gone"); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound for tombstoned variable, got %v", err)
	}
}

func TestFileStore_List(t *testing.T) {
	store := openFileStore(t)

	want := map[Key]bool{
		{Namespace: nsPlatform, Name: "A"}: true,
		{Namespace: nsPlatform, Name: "B"}: true,
		{Namespace: nsVendor, Name: "A"}:   true,
	}
	for key := range want {
		if err := store.Set(key.Namespace, key.Name, 0, []byte{1}); err != nil {
			t.Fatalf("Failed to set %v: %v", key, err)
		}
	}

	keys, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(keys) != len(want) {
		t.Fatalf("Listed %d keys, want %d", len(keys), len(want))
	}
	for _, key := range keys {
		if !want[key] {
			t.Errorf("Unexpected key %v", key)
		}
	}
}
