// halog.go: the top-level Engine API.
//
// Grounded on original_source/include/log/logging.h's Logger class and
// src/logging.cpp's constructors/destructor: an Engine replaces the
// original's six LOG_* macros (one per level/abort combination) with six
// methods returning a *Record, each gated on the configured minimum level
// before any formatting happens.
package halog

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Engine is an independent logging pipeline: its own rolling file, its own
// pipeline goroutine, its own metrics. Most processes need exactly one;
// Init returns a ready-to-use Engine with its consumer goroutine already
// running.
type Engine struct {
	cfg     Config
	times   *timestampCache
	pipe    *pipeline
	files   *logFileManager
	metrics *metrics

	stderrOn bool

	errMu sync.Mutex
	errCb func(component string, err error)
}

// Init creates an Engine rooted at cfg.Dir. prefix becomes the log
// filename prefix when cfg.Prefix is unset; the resulting cfg.Prefix is
// also the "prefix" label on every metric of the engine. The returned Engine's consumer goroutine is already running;
// callers must call Shutdown when done to flush and close the active file.
func Init(prefix string, cfg Config) (*Engine, error) {
	if cfg.Prefix == "" {
		cfg.Prefix = prefix
	}
	if cfg.Codec == nil {
		cfg.Codec = NoopCodec{}
	}
	if cfg.FileMode == 0 {
		cfg.FileMode = GetDefaultFileMode()
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	times := newTimestampCache()
	m := newMetrics(cfg.Prefix)

	eng := &Engine{
		cfg:      cfg,
		times:    times,
		metrics:  m,
		stderrOn: cfg.Stderr,
	}

	files, err := newLogFileManager(cfg, times, m, eng.reportError)
	if err != nil {
		times.stop()
		return nil, err
	}
	eng.files = files

	eng.pipe = newPipeline(files, cfg.Codec, cfg.FlushInterval, cfg.MaxPipelineSizeMB, times, m)
	eng.pipe.stderr = eng.mirrorStderr
	eng.pipe.start()

	return eng, nil
}

// Shutdown drains the pipeline, flushes and closes the active log file,
// and stops the timestamp cache's background ticker. Shutdown must be
// called at most once.
func (e *Engine) Shutdown() error {
	e.pipe.close()
	err := e.files.Close()
	e.times.stop()
	return err
}

// Rotate forces an immediate log file rotation.
func (e *Engine) Rotate() error {
	return e.files.Rotate()
}

// Registry exposes the engine's Prometheus registry, for callers that
// want to serve /metrics themselves.
func (e *Engine) Registry() *prometheus.Registry {
	return e.metrics.Registry()
}

// SetErrorHandler installs a callback invoked whenever an internal write,
// rotation, compression or checksum operation fails. Only one handler may
// be installed; a later call replaces an earlier one. This is the Go
// equivalent of the original's setOutput/setFlush seam, generalized from
// "where do bytes go" to "where do internal errors go", since bytes now
// have a single well-defined destination (the pipeline).
func (e *Engine) SetErrorHandler(fn func(component string, err error)) {
	e.errMu.Lock()
	e.errCb = fn
	e.errMu.Unlock()
}

func (e *Engine) reportError(component string, err error) {
	e.errMu.Lock()
	cb := e.errCb
	e.errMu.Unlock()
	if cb != nil {
		cb(component, err)
	} else if e.stderrOn {
		fmt.Fprintf(os.Stderr, "halog: %s: %v\n", component, err)
	}
}

func (e *Engine) minLevel() Level {
	return e.cfg.MinLevel
}

// dispatch hands a finished record's bytes to the pipeline and, if stderr
// mirroring is enabled, writes a colored copy to stderr directly (the
// mirror is not itself buffered or rotated).
func (e *Engine) dispatch(level Level, line []byte) {
	if e.metrics != nil {
		e.metrics.recordsEmitted.WithLabelValues(level.String()).Inc()
	}
	e.pipe.submit(line)
	if e.stderrOn {
		e.mirrorStderr(level, line)
	}
}

func (e *Engine) mirrorStderr(level Level, line []byte) {
	color := level.ansiColor()
	if color == "" {
		os.Stderr.Write(line)
		return
	}
	os.Stderr.WriteString(color)
	os.Stderr.Write(line)
	os.Stderr.WriteString(ansiReset)
}

func (e *Engine) abortAfterFatal() {
	e.Shutdown()
	os.Exit(1)
}

func caller(skip int) (file string, line int, fn string) {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "", 0, ""
	}
	if f := runtime.FuncForPC(pc); f != nil {
		name := f.Name()
		if idx := strings.LastIndex(name, "."); idx >= 0 {
			fn = name[idx+1:]
		} else {
			fn = name
		}
	}
	return file, line, fn
}

// at applies the level gate before paying for a stack walk: a disabled
// record never calls caller(), so below-threshold call sites cost only the
// level comparison.
func (e *Engine) at(level Level, skip int) *Record {
	if level < e.minLevel() {
		return disabledRecord
	}
	file, line, fn := caller(skip)
	return e.newRecord(level, file, line, fn)
}

// Trace starts a TRACE record at the call site.
func (e *Engine) Trace() *Record { return e.at(LevelTrace, 3) }

// Debug starts a DEBUG record at the call site.
func (e *Engine) Debug() *Record { return e.at(LevelDebug, 3) }

// Info starts an INFO record at the call site.
func (e *Engine) Info() *Record { return e.at(LevelInfo, 3) }

// Warn starts a WARN record at the call site.
func (e *Engine) Warn() *Record { return e.at(LevelWarn, 3) }

// Error starts an ERROR record at the call site.
func (e *Engine) Error() *Record { return e.at(LevelError, 3) }

// Fatal starts a FATAL record at the call site. Finish on a FATAL record
// flushes the engine and terminates the process via os.Exit(1).
func (e *Engine) Fatal() *Record { return e.at(LevelFatal, 3) }

func (e *Engine) logf(level Level, format string, args ...any) {
	if level < e.minLevel() {
		return
	}
	e.at(level, 4).Str(fmt.Sprintf(format, args...)).Finish()
}

// Tracef formats and emits a TRACE record in one call.
func (e *Engine) Tracef(format string, args ...any) { e.logf(LevelTrace, format, args...) }

// Debugf formats and emits a DEBUG record in one call.
func (e *Engine) Debugf(format string, args ...any) { e.logf(LevelDebug, format, args...) }

// Infof formats and emits an INFO record in one call.
func (e *Engine) Infof(format string, args ...any) { e.logf(LevelInfo, format, args...) }

// Warnf formats and emits a WARN record in one call.
func (e *Engine) Warnf(format string, args ...any) { e.logf(LevelWarn, format, args...) }

// Errorf formats and emits an ERROR record in one call.
func (e *Engine) Errorf(format string, args ...any) { e.logf(LevelError, format, args...) }

// Fatalf formats and emits a FATAL record in one call, then terminates the
// process via os.Exit(1).
func (e *Engine) Fatalf(format string, args ...any) { e.logf(LevelFatal, format, args...) }
