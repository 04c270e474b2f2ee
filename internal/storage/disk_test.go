package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDiskUsageBytes(t *testing.T) {
	dir := t.TempDir()

	db := filepath.Join(dir, "terms.db")
	if err := os.WriteFile(db, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := DiskUsageBytes(db)
	if err != nil {
		t.Fatal(err)
	}
	if got != 5 {
		t.Errorf("single file: got %d bytes, want 5", got)
	}

	modelDir := filepath.Join(dir, "model")
	if err := os.Mkdir(modelDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(modelDir, "vocabulary.bin"), []byte("ab"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(modelDir, "matrix.bin"), []byte("c"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err = DiskUsageBytes(modelDir)
	if err != nil {
		t.Fatal(err)
	}
	if got != 3 {
		t.Errorf("dir: got %d bytes, want 3", got)
	}

	// WAL side files are usually missing and must be skipped.
	paths := append(DatabaseFiles(db), modelDir, "")
	got, err = DiskUsageBytes(paths...)
	if err != nil {
		t.Fatal(err)
	}
	if got != 8 {
		t.Errorf("db files + model dir: got %d bytes, want 8", got)
	}
}

func TestDatabaseFiles(t *testing.T) {
	if got := DatabaseFiles(":memory:"); got != nil {
		t.Errorf("in-memory database has no files, got %v", got)
	}
	got := DatabaseFiles("/tmp/terms.db")
	if len(got) != 3 || got[1] != "/tmp/terms.db-wal" || got[2] != "/tmp/terms.db-shm" {
		t.Errorf("DatabaseFiles = %v", got)
	}
}
