// compress.go: the pluggable per-buffer compression adapter, plus the
// whole-file gzip archival used when a rotated file is compressed after
// the fact.
//
// Grounded on original_source/src/compress_opt.{h,cpp}, which switches
// between an LZ4/zstd codec and an identity fallback behind a single
// compress/decompress pair. Neither lz4 nor a halcyon-flavored zstd wrapper
// appears anywhere in the retrieved examples; klauspost/compress/zstd does,
// via the teacher's go.mod, so it takes the production codec slot.

package halog

import (
	"bytes"
	"compress/gzip"
	"io"

	"github.com/klauspost/compress/zstd"
)

// Codec compresses and decompresses buffer-sized chunks of a single log
// stream. Compress/Decompress pairs must round-trip exactly.
type Codec interface {
	Compress(src []byte) ([]byte, error)
	Decompress(src []byte) ([]byte, error)
}

// NoopCodec passes data through unchanged, matching the original's
// identity fallback when no compression library is compiled in.
type NoopCodec struct{}

func (NoopCodec) Compress(src []byte) ([]byte, error)   { return src, nil }
func (NoopCodec) Decompress(src []byte) ([]byte, error) { return src, nil }

// ZstdCodec compresses with zstd at the given level. A zero Level uses the
// library's default.
type ZstdCodec struct {
	Level zstd.EncoderLevel
}

// NewZstdCodec returns a ZstdCodec at the library's default level.
func NewZstdCodec() *ZstdCodec {
	return &ZstdCodec{Level: zstd.SpeedDefault}
}

func (c *ZstdCodec) Compress(src []byte) ([]byte, error) {
	level := c.Level
	if level == 0 {
		level = zstd.SpeedDefault
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(src, make([]byte, 0, len(src))), nil
}

func (c *ZstdCodec) Decompress(src []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(src, nil)
}

// gzipArchive gzip-compresses everything read from r into w. compressFile
// (rotation.go) uses it to archive a whole rotated file into path+".gz".
// This is distinct from the per-buffer Codec above: it runs once per
// rotated file, not once per buffer, and always uses
// gzip regardless of the configured Codec, matching the teacher's
// compressFile (rotation.go) rather than the original's compress_opt.
func gzipArchive(w io.Writer, r io.Reader) error {
	gz := gzip.NewWriter(w)
	if _, err := io.Copy(gz, r); err != nil {
		gz.Close()
		return err
	}
	return gz.Close()
}

// gzipInflate reverses gzipArchive for callers that need to read an
// archived file back (tests, diagnostics).
func gzipInflate(r io.Reader) ([]byte, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer gz.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, gz); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
