// record.go: the record front-end. Stamps each record with a cached
// timestamp, level, source location and trailer, then hands the finished
// byte span to the engine's dispatch sink (pipeline submission, optional
// stderr mirror, and the fatal abort path).

package halog

import (
	"strconv"
	"sync"
	"time"
)

// sourceFile holds a basename computed once, at Record construction, by
// scanning for the final path separator. Go has no constant-folded array
// literal the way the original's template constructor does, but the cost
// is a single strchr-equivalent scan per record, same as the general
// (non-array) original overload.
type sourceFile struct {
	name string
}

func newSourceFile(path string) sourceFile {
	base := path
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			base = path[i+1:]
			break
		}
	}
	return sourceFile{name: base}
}

// Record is a scope-bound builder for a single log line. Obtain one from
// an Engine's level methods (Info, Debug, ...); append typed fragments
// with the chaining methods, then call Finish exactly once. Records below
// the engine's minimum level are disabled: every method on them is a cheap
// no-op, matching the "no formatting work below threshold" invariant.
type Record struct {
	eng     *Engine
	stream  LogStream
	level   Level
	file    sourceFile
	line    int
	enabled bool
}

var recordPool = sync.Pool{
	New: func() any { return &Record{stream: *newLogStream()} },
}

// newRecord is the front-end entry point: it applies the level gate, and
// only pays for header formatting when the record will actually be
// emitted.
func (e *Engine) newRecord(level Level, file string, line int, funcName string) *Record {
	if level < e.minLevel() {
		return disabledRecord
	}

	r := recordPool.Get().(*Record)
	r.eng = e
	r.level = level
	r.file = newSourceFile(file)
	r.line = line
	r.enabled = true
	r.stream.Reset()

	r.stream.Str(level.token())
	e.times.headerPrefix(e.times.now(), &r.stream)
	if level.showsFunc() && funcName != "" {
		r.stream.Str("[").Str(funcName).Str("] ")
	}
	return r
}

// disabledRecord is shared by every call site below the level gate. Every
// chaining method on it is a no-op (guarded by r.enabled), so concurrent
// goroutines may safely hold the same pointer.
var disabledRecord = &Record{enabled: false}

// Str appends a string fragment verbatim.
func (r *Record) Str(s string) *Record {
	if r.enabled {
		r.stream.Str(s)
	}
	return r
}

// Bytes appends a byte-slice fragment verbatim.
func (r *Record) Bytes(b []byte) *Record {
	if r.enabled {
		r.stream.Bytes(b)
	}
	return r
}

// Int appends a signed integer in base 10.
func (r *Record) Int(n int64) *Record {
	if r.enabled {
		r.stream.Int(n)
	}
	return r
}

// Uint appends an unsigned integer in base 10.
func (r *Record) Uint(n uint64) *Record {
	if r.enabled {
		r.stream.Uint(n)
	}
	return r
}

// Float appends a float in 12-significant-digit general format.
func (r *Record) Float(f float64) *Record {
	if r.enabled {
		r.stream.Float(f)
	}
	return r
}

// Bool appends "1" or "0".
func (r *Record) Bool(b bool) *Record {
	if r.enabled {
		r.stream.Bool(b)
	}
	return r
}

// Err appends err.Error(), or "(nullptr)" when err is nil.
func (r *Record) Err(err error) *Record {
	if !r.enabled {
		return r
	}
	if err == nil {
		r.stream.StrPtr("", true)
	} else {
		r.stream.Str(err.Error())
	}
	return r
}

// Fmt appends a precomputed Fmt token in one shot.
func (r *Record) Fmt(f Fmt) *Record {
	if r.enabled {
		r.stream.Fmt(f)
	}
	return r
}

// Finish appends the trailer (" - basename:line\n"), dispatches the
// finished record to the engine's pipeline and, if enabled, to stderr with
// a level-colored escape. A Fatal record is flushed synchronously and
// followed by os.Exit. Finish must be called exactly once per Record and
// must not be called on a Record obtained from newRecord after a prior
// Finish.
func (r *Record) Finish() {
	if !r.enabled {
		return
	}
	start := time.Now()

	r.stream.Str(" - ").Str(r.file.name).Str(":")
	var lineBuf [20]byte
	r.stream.Bytes(strconv.AppendInt(lineBuf[:0], int64(r.line), 10))
	r.stream.Str("\n")

	line := r.stream.buf.Bytes()
	r.eng.dispatch(r.level, line)

	level, eng := r.level, r.eng
	if eng.metrics != nil {
		eng.metrics.finishLatency.Observe(time.Since(start).Seconds())
	}

	stream := r.stream
	stream.Reset()
	*r = Record{stream: stream}
	recordPool.Put(r)

	if level == LevelFatal {
		eng.abortAfterFatal()
	}
}
