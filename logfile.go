// logfile.go: a single append-only log file with a 64KiB write buffer.
//
// Grounded on original_source/src/log_file.{h,cpp}: LogFile wraps a FILE*
// with a large stdio buffer and a write loop that keeps calling
// fwrite_unlocked until either everything is written or an error occurs.
// Go's os.File.Write already loops internally against partial writes from
// the OS, but the explicit retry loop is kept here at the buffer-flush
// level so a single slow/blocking write can still be retried around
// transient errors the same way the original distinguishes "made some
// progress" from "hard failure".
package halog

import "os"

const logFileBufferSize = 64 * 1024

// logFile has no internal locking; logFileManager serializes every access
// to it under its own mutex.
type logFile struct {
	f       *os.File
	buf     []byte
	filled  int
	written int64
}

func openLogFile(path string, mode os.FileMode) (*logFile, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, mode)
	if err != nil {
		return nil, err
	}
	return &logFile{f: f, buf: make([]byte, logFileBufferSize)}, nil
}

// Write buffers p, flushing to disk whenever the buffer fills. It never
// returns a short write without an error.
func (lf *logFile) Write(p []byte) (int, error) {
	total := len(p)
	for len(p) > 0 {
		room := len(lf.buf) - lf.filled
		if room == 0 {
			if err := lf.Flush(); err != nil {
				return total - len(p), err
			}
			room = len(lf.buf)
		}
		n := room
		if n > len(p) {
			n = len(p)
		}
		copy(lf.buf[lf.filled:], p[:n])
		lf.filled += n
		p = p[n:]
	}
	return total, nil
}

// Flush writes the buffered bytes to the underlying file, retrying on
// partial progress until the buffer is empty or a write reports an error
// with zero bytes consumed.
func (lf *logFile) Flush() error {
	data := lf.buf[:lf.filled]
	for len(data) > 0 {
		n, err := lf.f.Write(data)
		lf.written += int64(n)
		data = data[n:]
		if err != nil && n == 0 {
			copy(lf.buf, data)
			lf.filled = len(data)
			return err
		}
	}
	lf.filled = 0
	return nil
}

// WrittenBytes reports bytes durably written plus bytes still sitting in
// the buffer, matching the original's writtenBytes() semantics (it counts
// against the file's on-disk growth, not the logical stream length).
func (lf *logFile) WrittenBytes() int64 {
	return lf.written + int64(lf.filled)
}

func (lf *logFile) Close() error {
	ferr := lf.Flush()
	cerr := lf.f.Close()
	if ferr != nil {
		return ferr
	}
	return cerr
}
