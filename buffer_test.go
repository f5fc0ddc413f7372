package halog

import "testing"

func TestFixedBuffer_AppendAndOverflow(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		writes   []string
		wantLen  int
	}{
		{"fits exactly with headroom", 10, []string{"abc", "def"}, 6},
		{"drops overflowing fragment", 5, []string{"abcd", "xx"}, 4},
		{"drops when buffer already full", 4, []string{"abc", "z"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewFixedBuffer(tt.capacity)
			for _, w := range tt.writes {
				b.AppendString(w)
			}
			if got := b.Len(); got != tt.wantLen {
				t.Fatalf("Len() = %d, want %d", got, tt.wantLen)
			}
		})
	}
}

func TestFixedBuffer_ResetAndZero(t *testing.T) {
	b := NewFixedBuffer(8)
	b.AppendString("hello")
	if b.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", b.Len())
	}

	b.Reset()
	if b.Len() != 0 {
		t.Fatalf("after Reset, Len() = %d, want 0", b.Len())
	}
	if b.Cap() != 8 {
		t.Fatalf("Reset must not touch capacity, got %d", b.Cap())
	}

	b.AppendString("x")
	b.Zero()
	if b.Len() != 0 {
		t.Fatalf("after Zero, Len() = %d, want 0", b.Len())
	}
	for i, c := range b.data {
		if c != 0 {
			t.Fatalf("byte %d not zeroed: %v", i, c)
		}
	}
}

func TestFixedBuffer_BytesIsWrittenPrefixOnly(t *testing.T) {
	b := NewFixedBuffer(16)
	b.AppendString("hi")
	if got := string(b.Bytes()); got != "hi" {
		t.Fatalf("Bytes() = %q, want %q", got, "hi")
	}
}

func TestFixedBuffer_AppendByteRespectsHeadroom(t *testing.T) {
	b := NewFixedBuffer(2)
	b.AppendByte('a')
	if b.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", b.Len())
	}
	// Avail() is now 1; AppendByte requires Avail() > 1, so this must drop.
	b.AppendByte('b')
	if b.Len() != 1 {
		t.Fatalf("second AppendByte should have been dropped, Len() = %d", b.Len())
	}
}

func TestLargeBufferPool_RecyclesAndResets(t *testing.T) {
	pool := newLargeBufferPool(2, 64)

	b := pool.get()
	b.AppendString("leftover")
	pool.put(b)

	b2 := pool.get()
	if b2.Len() != 0 {
		t.Fatalf("recycled buffer must be reset, Len() = %d", b2.Len())
	}
	if b2 != b {
		t.Fatalf("expected the recycled buffer to be returned from the free list")
	}
}

func TestLargeBufferPool_RejectsWrongSize(t *testing.T) {
	pool := newLargeBufferPool(2, 64)
	wrong := NewFixedBuffer(32)
	pool.put(wrong) // must be silently dropped, not panic

	b := pool.get()
	if b.Cap() != 64 {
		t.Fatalf("pool.get() returned wrong-size buffer: cap=%d", b.Cap())
	}
}
