package logging

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCappedFileWriterRotates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.log")
	writer, err := newCappedFileWriter(path, 1)
	if err != nil {
		t.Fatalf("create writer: %v", err)
	}
	defer writer.Close()

	chunk := make([]byte, 512*1024)
	for i := 0; i < 3; i++ {
		if _, err := writer.Write(chunk); err != nil {
			t.Fatalf("write chunk %d: %v", i, err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat log: %v", err)
	}
	if info.Size() > 1024*1024 {
		t.Fatalf("expected live log <= 1MB, got %d", info.Size())
	}
	if _, err := os.Stat(path + ".old"); err != nil {
		t.Fatalf("expected rotated backlog file: %v", err)
	}
}
