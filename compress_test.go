package halog

import (
	"bytes"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

func TestNoopCodec_RoundTrips(t *testing.T) {
	var c NoopCodec
	src := []byte("identity passthrough")

	compressed, err := c.Compress(src)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	decompressed, err := c.Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(decompressed, src) {
		t.Fatalf("got %q, want %q", decompressed, src)
	}
}

func TestZstdCodec_RoundTrips(t *testing.T) {
	c := NewZstdCodec()

	rng := rand.New(rand.NewSource(1))
	src := make([]byte, 1024)
	const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	for i := range src {
		src[i] = alphabet[rng.Intn(len(alphabet))]
	}

	compressed, err := c.Compress(src)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	decompressed, err := c.Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(decompressed, src) {
		t.Fatalf("round-tripped bytes do not match original")
	}
}

func TestGzipArchive_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "source.txt")
	original := []byte("some rotated log file contents\nwith multiple lines\n")
	if err := os.WriteFile(src, original, 0o644); err != nil {
		t.Fatal(err)
	}

	srcFile, err := os.Open(src)
	if err != nil {
		t.Fatal(err)
	}
	defer srcFile.Close()

	var archived bytes.Buffer
	if err := gzipArchive(&archived, srcFile); err != nil {
		t.Fatalf("gzipArchive: %v", err)
	}

	inflated, err := gzipInflate(&archived)
	if err != nil {
		t.Fatalf("gzipInflate: %v", err)
	}
	if !bytes.Equal(inflated, original) {
		t.Fatalf("got %q, want %q", inflated, original)
	}
}

func TestCompressFile_ArchivesAndRemovesOriginal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rotated.log")
	original := []byte("rotated content\n")
	if err := os.WriteFile(path, original, 0o644); err != nil {
		t.Fatal(err)
	}

	var lastErr error
	compressFile(path, func(component string, err error) { lastErr = err })
	if lastErr != nil {
		t.Fatalf("compressFile reported an error: %v", lastErr)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected original file to be removed after compression")
	}

	gz, err := os.Open(path + ".gz")
	if err != nil {
		t.Fatalf("expected a .gz archive: %v", err)
	}
	defer gz.Close()

	inflated, err := gzipInflate(gz)
	if err != nil {
		t.Fatalf("gzipInflate: %v", err)
	}
	if !bytes.Equal(inflated, original) {
		t.Fatalf("got %q, want %q", inflated, original)
	}
}
