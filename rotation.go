// rotation.go: LogFileManager, the rolling log file the pipeline consumer
// writes into.
//
// Grounded on original_source/src/log_file.{h,cpp} (LogFileManager's
// size/day rollover policy, FIFO retention, directory-scan-on-construct
// seeding of the existing-files list) and on the teacher's rotation.go for
// the surrounding machinery: retried file operations, a background worker
// pool for compression/checksumming so rotation itself never blocks on
// that work (retention eviction runs synchronously inside the roll), and
// gzip archival with a temp-file rename for crash consistency.
package halog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// logFileManager owns exactly one open logFile at a time and decides when
// to roll to a new one. It is driven by the pipeline's single consumer
// goroutine via Write/Flush, but Rotate and Close may be called from any
// goroutine, so it is internally locked.
type logFileManager struct {
	dir       string
	prefix    string
	maxSizeKB int64
	maxFiles  int
	fileMode  os.FileMode
	compress  bool
	checksum  bool

	times *timestampCache

	mu    sync.Mutex
	file  *logFile
	path  string
	day   int
	names []string // rotated + current file paths, oldest first

	bg      *BackgroundWorkers
	metrics *metrics
	onError func(component string, err error)
}

func newLogFileManager(cfg Config, times *timestampCache, m *metrics, onError func(string, error)) (*logFileManager, error) {
	if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("halog: create log directory %q: %w", cfg.Dir, err)
	}

	mgr := &logFileManager{
		dir:       cfg.Dir,
		prefix:    SanitizeFilename(cfg.Prefix),
		maxSizeKB: cfg.MaxFileSizeKB,
		maxFiles:  cfg.MaxFiles,
		fileMode:  cfg.FileMode,
		compress:  cfg.CompressRotated,
		checksum:  cfg.Checksum,
		times:     times,
		bg:        newBackgroundWorkers(2),
		metrics:   m,
		onError:   onError,
	}

	mgr.seedExisting()

	if err := mgr.rollFile(times.now()); err != nil {
		mgr.bg.stop()
		return nil, err
	}
	return mgr, nil
}

// seedExisting scans dir for files already matching this prefix, so
// retention counts correctly across process restarts instead of only
// seeing files created by this run.
func (m *logFileManager) seedExisting() {
	matches, err := filepath.Glob(filepath.Join(m.dir, m.prefix+"_*.log"))
	if err != nil {
		return
	}
	sort.Strings(matches)
	m.names = matches
}

func dayBucket(t time.Time) int {
	return int(t.Unix() / 86400)
}

// shouldRotate reports whether the current file has grown past the size
// threshold or a new day has started since it was opened.
func (m *logFileManager) shouldRotate(now time.Time) bool {
	if m.file == nil {
		return true
	}
	if m.maxSizeKB > 0 && m.file.WrittenBytes()>>10 >= m.maxSizeKB {
		return true
	}
	return dayBucket(now) != m.day
}

// Write implements bufferSink: it rotates first if needed, then appends.
func (m *logFileManager) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.times.now()
	if m.shouldRotate(now) {
		if err := m.rollFile(now); err != nil {
			if m.onError != nil {
				m.onError("rotate", err)
			}
			return 0, err
		}
	}
	n, err := m.file.Write(p)
	if err != nil && m.onError != nil {
		m.onError("write", err)
	}
	if m.metrics != nil {
		m.metrics.bytesWritten.Add(float64(n))
	}
	return n, err
}

// Flush implements bufferSink.
func (m *logFileManager) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.file == nil {
		return nil
	}
	return m.file.Flush()
}

// Rotate forces an immediate roll to a new file, regardless of size or day.
func (m *logFileManager) Rotate() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rollFile(m.times.now())
}

func (m *logFileManager) Close() error {
	m.mu.Lock()
	var err error
	if m.file != nil {
		err = m.file.Close()
		m.scheduleBackgroundTasks(m.path)
	}
	m.mu.Unlock()

	m.bg.waitForCompletion()
	m.bg.stop()
	return err
}

// rollFile closes the current file (if any), opens a timestamped new one,
// records it for retention, and evicts the oldest file beyond maxFiles.
// Callers must hold m.mu.
func (m *logFileManager) rollFile(now time.Time) error {
	prevPath := m.path
	if m.file != nil {
		if err := m.file.Close(); err != nil && m.onError != nil {
			m.onError("rotate_close", err)
		}
	}

	// Two rolls within the same millisecond would compute the same name;
	// step the name's timestamp forward until it names a file that does not
	// exist yet, so every roll opens a fresh file.
	var path string
	for stamp := now; ; stamp = stamp.Add(time.Millisecond) {
		path = filepath.Join(m.dir, fmt.Sprintf("%s_%s.log", m.prefix, stamp.Format("20060102_150405.000")))
		if _, err := os.Stat(path); err != nil {
			break
		}
	}

	var file *logFile
	err := RetryFileOperation(3, 10*time.Millisecond, func() error {
		f, err := openLogFile(path, m.fileMode)
		if err != nil {
			return err
		}
		file = f
		return nil
	})
	if err != nil {
		return fmt.Errorf("halog: open log file %q: %w", path, err)
	}

	m.file = file
	m.path = path
	m.day = dayBucket(now)
	m.names = append(m.names, path)

	if prevPath != "" {
		m.scheduleBackgroundTasks(prevPath)
	}
	if m.metrics != nil {
		m.metrics.rotations.Inc()
	}

	m.evictOldest()
	return nil
}

// evictOldest removes the oldest tracked files beyond maxFiles, along with
// any .gz and .sha256 sidecars. Callers must hold m.mu.
func (m *logFileManager) evictOldest() {
	if m.maxFiles <= 0 || len(m.names) <= m.maxFiles {
		return
	}
	excess := len(m.names) - m.maxFiles
	for i := 0; i < excess; i++ {
		victim := m.names[i]
		for _, p := range []string{victim, victim + ".gz", victim + ".sha256"} {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) && m.onError != nil {
				m.onError("evict", err)
			}
		}
	}
	m.names = m.names[excess:]
}

func (m *logFileManager) scheduleBackgroundTasks(path string) {
	if m.checksum {
		m.safeSubmit(BackgroundTask{TaskType: "checksum", FilePath: path})
	}
	if m.compress {
		m.safeSubmit(BackgroundTask{TaskType: "compress", FilePath: path})
	}
}

func (m *logFileManager) safeSubmit(task BackgroundTask) {
	select {
	case <-m.bg.ctx.Done():
		return
	default:
	}
	task.onError = m.onError
	select {
	case m.bg.taskQueue <- task:
	case <-m.bg.ctx.Done():
	default:
	}
}

// compressFile gzip-archives a rotated file into path+".gz" using a
// temp-file-then-rename so a crash mid-compression never leaves a
// truncated archive in its final name.
func compressFile(path string, onError func(string, error)) {
	report := func(component string, err error) {
		if onError != nil {
			onError(component, err)
		}
	}

	var source *os.File
	err := RetryFileOperation(3, 10*time.Millisecond, func() error {
		f, err := os.Open(path)
		source = f
		return err
	})
	if err != nil {
		report("compress_open", err)
		return
	}
	defer source.Close()

	finalName := path + ".gz"
	tempName := finalName + ".tmp"

	target, err := os.Create(tempName)
	if err != nil {
		report("compress_create", err)
		return
	}

	if err := gzipArchive(target, source); err != nil {
		target.Close()
		os.Remove(tempName)
		report("compress_write", err)
		return
	}
	if err := target.Close(); err != nil {
		os.Remove(tempName)
		report("compress_close", err)
		return
	}
	if err := os.Rename(tempName, finalName); err != nil {
		os.Remove(tempName)
		report("compress_rename", err)
		return
	}
	if err := os.Remove(path); err != nil {
		report("compress_cleanup", err)
	}
}

// BackgroundTask is a unit of rotation follow-up work: compressing or
// checksumming a file that has just been rolled out of active use.
type BackgroundTask struct {
	TaskType string // "compress" or "checksum"
	FilePath string
	onError  func(component string, err error)
}

// BackgroundWorkers runs a small fixed pool of goroutines draining a
// bounded task queue, so rotation never blocks the pipeline consumer on
// gzip or SHA-256 work.
type BackgroundWorkers struct {
	ctx         context.Context
	cancel      context.CancelFunc
	taskQueue   chan BackgroundTask
	wg          sync.WaitGroup
	activeTasks atomic.Int64
	stopOnce    sync.Once
}

func newBackgroundWorkers(numWorkers int) *BackgroundWorkers {
	ctx, cancel := context.WithCancel(context.Background())
	bg := &BackgroundWorkers{
		ctx:       ctx,
		cancel:    cancel,
		taskQueue: make(chan BackgroundTask, 100),
	}
	for i := 0; i < numWorkers; i++ {
		bg.wg.Add(1)
		go bg.worker()
	}
	return bg
}

func (bg *BackgroundWorkers) worker() {
	defer bg.wg.Done()
	for {
		select {
		case <-bg.ctx.Done():
			return
		case task, ok := <-bg.taskQueue:
			if !ok {
				return
			}
			bg.process(task)
		}
	}
}

func (bg *BackgroundWorkers) process(task BackgroundTask) {
	bg.activeTasks.Add(1)
	defer bg.activeTasks.Add(-1)

	switch task.TaskType {
	case "compress":
		compressFile(task.FilePath, task.onError)
	case "checksum":
		generateChecksum(task.FilePath, task.onError)
	}
}

func (bg *BackgroundWorkers) waitForCompletion() {
	for bg.activeTasks.Load() > 0 {
		time.Sleep(time.Millisecond)
	}
}

func (bg *BackgroundWorkers) stop() {
	bg.stopOnce.Do(func() {
		bg.cancel()
		close(bg.taskQueue)
		bg.wg.Wait()
	})
}
