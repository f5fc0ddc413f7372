// stream.go: LogStream, a small chainable formatter that writes typed
// fragments into a FixedBuffer without allocating on the hot path.

package halog

import (
	"fmt"
	"strconv"
)

// LogStream is a kSmallBuffer-backed chainable formatter. Every method
// returns *LogStream so calls can be chained; every method silently drops
// its fragment if the buffer has no room, per FixedBuffer's overflow rule.
// LogStream never panics.
type LogStream struct {
	buf FixedBuffer
}

// kMaxNumericSize bounds how many bytes a single numeric append may
// reserve, matching the per-write budget called out in the spec.
const kMaxNumericSize = 32

func newLogStream() *LogStream {
	return &LogStream{buf: FixedBuffer{data: make([]byte, kSmallBuffer)}}
}

// Reset rewinds the underlying buffer for reuse.
func (s *LogStream) Reset() {
	s.buf.Reset()
}

// Buffer exposes the underlying FixedBuffer, mirroring the teacher's
// pattern of returning the buffer for low-level callers (e.g. the record
// front-end, which needs the final byte span).
func (s *LogStream) Buffer() *FixedBuffer {
	return &s.buf
}

// Bool appends "1" or "0".
func (s *LogStream) Bool(b bool) *LogStream {
	if b {
		s.buf.AppendByte('1')
	} else {
		s.buf.AppendByte('0')
	}
	return s
}

// Int appends a base-10, sign-aware integer.
func (s *LogStream) Int(n int64) *LogStream {
	return s.formatInt(n)
}

// Uint appends a base-10 unsigned integer.
func (s *LogStream) Uint(n uint64) *LogStream {
	return s.formatUint(n)
}

// Float appends a 12-significant-digit general float representation.
func (s *LogStream) Float(f float64) *LogStream {
	var tmp [kMaxNumericSize]byte
	out := strconv.AppendFloat(tmp[:0], f, 'g', 12, 64)
	s.buf.Append(out)
	return s
}

// Ptr appends "0x" followed by lowercase hex.
func (s *LogStream) Ptr(p uintptr) *LogStream {
	var tmp [kMaxNumericSize]byte
	out := append(tmp[:0], '0', 'x')
	out = strconv.AppendUint(out, uint64(p), 16)
	s.buf.Append(out)
	return s
}

// Byte appends a single byte verbatim.
func (s *LogStream) Byte(c byte) *LogStream {
	s.buf.AppendByte(c)
	return s
}

// Str appends a string verbatim.
func (s *LogStream) Str(str string) *LogStream {
	s.buf.AppendString(str)
	return s
}

// Bytes appends a byte slice verbatim.
func (s *LogStream) Bytes(b []byte) *LogStream {
	s.buf.Append(b)
	return s
}

// StrPtr appends str, or the literal "(nullptr)" when ptrIsNil is true.
// This mirrors the original char*-vs-nullptr distinction: Go strings can't
// be nil the way a char* can, so callers that model an optional string as
// (string, bool) route through here instead of checking for "" == nil.
func (s *LogStream) StrPtr(str string, ptrIsNil bool) *LogStream {
	if ptrIsNil {
		s.buf.AppendString("(nullptr)")
		return s
	}
	return s.Str(str)
}

// Fmt appends a precomputed token produced by NewFmt in one shot.
func (s *LogStream) Fmt(f Fmt) *LogStream {
	s.buf.Append(f.Bytes())
	return s
}

func (s *LogStream) formatInt(n int64) *LogStream {
	var tmp [kMaxNumericSize]byte
	out := strconv.AppendInt(tmp[:0], n, 10)
	s.buf.Append(out)
	return s
}

func (s *LogStream) formatUint(n uint64) *LogStream {
	var tmp [kMaxNumericSize]byte
	out := strconv.AppendUint(tmp[:0], n, 10)
	s.buf.Append(out)
	return s
}

// Fmt precomputes a short (<=32 byte) formatted token that can be appended
// to a LogStream in one shot — used for the sub-second fraction in the
// record header and for arbitrary user fmt-verb formatting.
type Fmt struct {
	data   [kMaxNumericSize]byte
	length int
}

// NewFmt formats val using a printf-style verb into a fixed token. Output
// beyond kMaxNumericSize bytes is cut off at that length (unlike a
// FixedBuffer append, which drops an overflowing fragment whole).
func NewFmt(format string, val any) Fmt {
	var f Fmt
	s := fmt.Sprintf(format, val)
	n := copy(f.data[:], s)
	f.length = n
	return f
}

// Bytes returns the formatted token.
func (f Fmt) Bytes() []byte {
	return f.data[:f.length]
}

// Len returns the length of the formatted token.
func (f Fmt) Len() int {
	return f.length
}
