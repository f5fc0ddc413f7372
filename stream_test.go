package halog

import "testing"

func TestLogStream_TypedAppends(t *testing.T) {
	s := newLogStream()
	s.Str("n=").Int(-42).Str(" u=").Uint(7).Str(" f=").Float(3.5).Str(" b=").Bool(true)

	got := string(s.buf.Bytes())
	want := "n=-42 u=7 f=3.5 b=1"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestLogStream_StrPtrNilRendersNullptr(t *testing.T) {
	s := newLogStream()
	s.StrPtr("ignored", true)
	if got := string(s.buf.Bytes()); got != "(nullptr)" {
		t.Fatalf("got %q, want (nullptr)", got)
	}

	s.Reset()
	s.StrPtr("present", false)
	if got := string(s.buf.Bytes()); got != "present" {
		t.Fatalf("got %q, want present", got)
	}
}

func TestLogStream_PtrFormatsHex(t *testing.T) {
	s := newLogStream()
	s.Ptr(0xBEEF)
	if got := string(s.buf.Bytes()); got != "0xbeef" {
		t.Fatalf("got %q, want 0xbeef", got)
	}
}

func TestLogStream_OverflowIsSilentlyDropped(t *testing.T) {
	s := &LogStream{buf: FixedBuffer{data: make([]byte, 4)}}
	s.Str("abc")
	s.Str("more data that does not fit")
	if got := string(s.buf.Bytes()); got != "abc" {
		t.Fatalf("got %q, want abc (overflow fragment dropped)", got)
	}
}

func TestFmt_FormatsShortToken(t *testing.T) {
	f := NewFmt("%d", 12345)
	if got := string(f.Bytes()); got != "12345" {
		t.Fatalf("got %q, want 12345", got)
	}
	if f.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", f.Len())
	}
}

func TestLogStream_FmtAppendsPrecomputedToken(t *testing.T) {
	s := newLogStream()
	f := NewFmt("%03d", 7)
	s.Fmt(f)
	if got := string(s.buf.Bytes()); got != "007" {
		t.Fatalf("got %q, want 007", got)
	}
}
