package halog

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGenerateChecksum_WritesSidecar(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.log")
	content := []byte("checksum me\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	var lastErr error
	generateChecksum(path, func(component string, err error) { lastErr = err })
	if lastErr != nil {
		t.Fatalf("generateChecksum reported an error: %v", lastErr)
	}

	sidecar, err := os.ReadFile(path + ".sha256")
	if err != nil {
		t.Fatalf("expected a .sha256 sidecar: %v", err)
	}

	want := fmt.Sprintf("%x  %s\n", sha256.Sum256(content), filepath.Base(path))
	if string(sidecar) != want {
		t.Fatalf("got %q, want %q", string(sidecar), want)
	}
}

func TestGenerateChecksum_FallsBackToGzSuffix(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rotated.log")
	content := []byte("compressed already\n")
	if err := os.WriteFile(path+".gz", content, 0o644); err != nil {
		t.Fatal(err)
	}

	var lastErr error
	generateChecksum(path, func(component string, err error) { lastErr = err })
	if lastErr != nil {
		t.Fatalf("generateChecksum reported an error: %v", lastErr)
	}

	if _, err := os.Stat(path + ".gz.sha256"); err != nil {
		t.Fatalf("expected a sidecar next to the .gz file: %v", err)
	}
}

func TestGenerateChecksum_MissingFileReportsError(t *testing.T) {
	var got string
	generateChecksum(filepath.Join(t.TempDir(), "nope.log"), func(component string, err error) {
		got = component
	})
	if !strings.Contains(got, "checksum") {
		t.Fatalf("expected a checksum-related error component, got %q", got)
	}
}
