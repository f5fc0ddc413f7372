package halog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogFile_WriteBuffersUntilFlush(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "buffered.log")

	lf, err := openLogFile(path, 0o644)
	if err != nil {
		t.Fatalf("openLogFile: %v", err)
	}

	if _, err := lf.Write([]byte("hello")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) != 0 {
		t.Fatalf("expected nothing on disk before Flush, got %d bytes", len(data))
	}

	if err := lf.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	data, err = os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile after flush: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("got %q, want hello", string(data))
	}
}

func TestLogFile_WriteSpanningMultipleFlushes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "large.log")

	lf, err := openLogFile(path, 0o644)
	if err != nil {
		t.Fatalf("openLogFile: %v", err)
	}

	payload := strings.Repeat("x", logFileBufferSize*2+17)
	n, err := lf.Write([]byte(payload))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != len(payload) {
		t.Fatalf("Write returned %d, want %d", n, len(payload))
	}
	if err := lf.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) != len(payload) {
		t.Fatalf("on-disk length = %d, want %d", len(data), len(payload))
	}
	if lf.WrittenBytes() != int64(len(payload)) {
		t.Fatalf("WrittenBytes() = %d, want %d", lf.WrittenBytes(), len(payload))
	}
}

func TestLogFile_WrittenBytesCountsBufferedData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "counted.log")

	lf, err := openLogFile(path, 0o644)
	if err != nil {
		t.Fatalf("openLogFile: %v", err)
	}
	lf.Write([]byte("12345"))
	if lf.WrittenBytes() != 5 {
		t.Fatalf("WrittenBytes() = %d, want 5 (buffered, not yet flushed)", lf.WrittenBytes())
	}
}

func TestOpenLogFile_FailureIsObservable(t *testing.T) {
	_, err := openLogFile(filepath.Join(t.TempDir(), "missing-dir", "x.log"), 0o644)
	if err == nil {
		t.Fatalf("expected an error opening a file in a nonexistent directory")
	}
}
