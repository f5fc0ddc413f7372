// timecache.go: the per-engine cached "YYYYMMDD HH:MM:SS" prefix used to
// stamp every record header without paying for a full time.Now()+Format on
// the hot path.
//
// The original C++ engine keys this cache per producer thread. Go has no
// analogue of thread-locals, so this is a single cache shared by every
// producer goroutine, guarded by an atomic pointer swap: many goroutines
// racing to recompute the same second's text is harmless (they all compute
// the same bytes), so no mutex is needed — only the final published pointer
// matters. This tradeoff is recorded in DESIGN.md.

package halog

import (
	"sync/atomic"
	"time"

	timecache "github.com/agilira/go-timecache"
)

const headerTimeLen = 17 // "YYYYMMDD HH:MM:SS"

type cachedHeaderTime struct {
	second int64
	text   [headerTimeLen]byte
}

// timestampCache produces the 22-byte "YYYYMMDD HH:MM:SS.mmm " header
// prefix cheaply: the 17-byte second-resolution portion is recomputed only
// on a second rollover, and the underlying "now" comes from go-timecache
// rather than a raw time.Now() syscall.
type timestampCache struct {
	tc    *timecache.TimeCache
	cache atomic.Pointer[cachedHeaderTime]
}

func newTimestampCache() *timestampCache {
	return &timestampCache{
		tc: timecache.NewWithResolution(time.Millisecond),
	}
}

func (t *timestampCache) stop() {
	if t.tc != nil {
		t.tc.Stop()
	}
}

// now returns the cached-resolution current time.
func (t *timestampCache) now() time.Time {
	if t.tc != nil {
		return t.tc.CachedTime()
	}
	return time.Now()
}

// headerPrefix appends the 22-byte "YYYYMMDD HH:MM:SS.mmm " prefix for the
// given instant into dst, recomputing the second-resolution portion only
// when the second bucket has changed since the last call from any
// goroutine.
func (t *timestampCache) headerPrefix(now time.Time, dst *LogStream) {
	sec := now.Unix()

	cur := t.cache.Load()
	if cur == nil || cur.second != sec {
		fresh := &cachedHeaderTime{second: sec}
		formatHeaderSeconds(now, fresh.text[:])
		t.cache.Store(fresh)
		cur = fresh
	}

	dst.buf.Append(cur.text[:])
	dst.Str(".")
	ms := now.Nanosecond() / 1e6
	f := NewFmt("%03d ", ms)
	dst.Fmt(f)
}

// formatHeaderSeconds writes "YYYYMMDD HH:MM:SS" (17 bytes) into dst.
func formatHeaderSeconds(now time.Time, dst []byte) {
	y, mo, d := now.Date()
	h, mi, se := now.Clock()

	put4(dst[0:4], y)
	put2(dst[4:6], int(mo))
	put2(dst[6:8], d)
	dst[8] = ' '
	put2(dst[9:11], h)
	dst[11] = ':'
	put2(dst[12:14], mi)
	dst[14] = ':'
	put2(dst[15:17], se)
}

func put2(dst []byte, v int) {
	dst[0] = byte('0' + (v/10)%10)
	dst[1] = byte('0' + v%10)
}

func put4(dst []byte, v int) {
	dst[0] = byte('0' + (v/1000)%10)
	dst[1] = byte('0' + (v/100)%10)
	dst[2] = byte('0' + (v/10)%10)
	dst[3] = byte('0' + v%10)
}
