package usage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "usage.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	if _, ok, err := store.Load(ctx, "client-1"); err != nil || ok {
		t.Fatalf("Load() before save = ok %v, err %v; want absent", ok, err)
	}

	want := Record{Month: "2026-08", Count: 1}
	if err := store.Save(ctx, "client-1", want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, ok, err := store.Load(ctx, "client-1")
	if err != nil || !ok {
		t.Fatalf("Load() after save = ok %v, err %v", ok, err)
	}
	if got != want {
		t.Fatalf("Load() = %+v, want %+v", got, want)
	}

	// A second store over the same file sees the persisted record.
	reopened, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore(reopen) error = %v", err)
	}
	got, ok, err = reopened.Load(ctx, "client-1")
	if err != nil || !ok || got != want {
		t.Fatalf("reopened Load() = %+v, ok %v, err %v", got, ok, err)
	}
}

func TestFileStoreUsesFixedStorageKey(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "usage.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if err := store.Save(ctx, "client-1", Record{Month: "2026-08", Count: 1}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read usage file: %v", err)
	}
	if !strings.Contains(string(data), `"gzaf_audio_usage"`) {
		t.Fatalf("usage file missing fixed storage key: %s", data)
	}
}

func TestFileStoreToleratesCorruptFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "usage.json")
	if err := os.WriteFile(path, []byte("{{{garbage"), 0o644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if _, ok, err := store.Load(ctx, "client-1"); err != nil || ok {
		t.Fatalf("Load() from corrupt file = ok %v, err %v; want treated as empty", ok, err)
	}
	if err := store.Save(ctx, "client-1", Record{Month: "2026-08", Count: 1}); err != nil {
		t.Fatalf("Save() over corrupt file error = %v", err)
	}
}
