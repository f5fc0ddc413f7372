// pipeline.go: the asynchronous double-buffered pipeline between producer
// goroutines and the single consumer goroutine that owns the log file.
//
// Grounded on original_source/src/async_logging.{h,cpp}: one mutex guards
// a "current" buffer that producers append into, a spare "next" buffer, and
// a list of buffers already handed off and awaiting a flush. The consumer
// wakes on a signal (a full current buffer) or a flush-interval timeout,
// whichever comes first — the Go equivalent of the original's
// cv.wait_for(lock, flushInterval). A growing backlog (more than
// maxQueuedBuffers buffers waiting) is shed down to the earliest
// keepQueuedBuffers buffers, with a dropped-message notice written in place
// of the discarded tail.
package halog

import (
	"fmt"
	"sync"
	"time"
)

// maxQueuedBuffers is the backlog size, in kLargeBuffer-sized buffers, at
// which the consumer starts shedding instead of writing the whole backlog.
// keepQueuedBuffers is how many of the earliest-submitted buffers survive a
// shed; the rest of the backlog (the newer tail) is discarded.
const (
	maxQueuedBuffers = 25
	keepQueuedBuffers = 2
)

// bufferSink is the write destination a pipeline drains into: a rolling log
// file manager in production, or a fake in tests.
type bufferSink interface {
	Write(p []byte) (int, error)
	Flush() error
}

type pipeline struct {
	mu           sync.Mutex
	current      *FixedBuffer
	next         *FixedBuffer
	filled       []*FixedBuffer
	runningBytes int64

	pool     *largeBufferPool
	sink     bufferSink
	codec    Codec
	maxBytes int64

	flushInterval time.Duration
	wake          chan struct{}
	stop          chan struct{}
	done          chan struct{}

	times   *timestampCache
	metrics *metrics
	stderr  func(level Level, p []byte)
}

func newPipeline(sink bufferSink, codec Codec, flushInterval time.Duration, maxPipelineMB int, times *timestampCache, m *metrics) *pipeline {
	if codec == nil {
		codec = NoopCodec{}
	}
	pool := newLargeBufferPool(keepQueuedBuffers+1, kLargeBuffer)
	return &pipeline{
		current:       pool.get(),
		next:          pool.get(),
		pool:          pool,
		sink:          sink,
		codec:         codec,
		maxBytes:      int64(maxPipelineMB) << 20,
		flushInterval: flushInterval,
		wake:          make(chan struct{}, 1),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
		times:         times,
		metrics:       m,
	}
}

func (p *pipeline) start() {
	go p.run()
}

// close signals the consumer to drain whatever remains and exit, and blocks
// until it has.
func (p *pipeline) close() {
	close(p.stop)
	<-p.done
}

// submit hands a finished record's bytes to the pipeline. This is the
// producer-side half of the protocol in async_logging.cpp's append(),
// extended per the pipeline-level MiB threshold: a swap (and consumer
// wake) happens when the current buffer has no room left OR the running
// byte counter has reached the configured MiB threshold.
func (p *pipeline) submit(line []byte) {
	p.mu.Lock()

	swap := p.current.Avail() <= len(line) || (p.maxBytes > 0 && p.runningBytes>>20 >= p.maxBytes>>20)
	if swap {
		if p.maxBytes > 0 && p.runningBytes>>20 >= p.maxBytes>>20 {
			p.runningBytes = 0
		}
		p.filled = append(p.filled, p.current)
		if p.next != nil {
			p.current = p.next
			p.next = nil
		} else {
			p.current = p.pool.get()
		}
	}
	p.current.Append(line)
	p.runningBytes += int64(len(line))
	p.mu.Unlock()

	if swap {
		select {
		case p.wake <- struct{}{}:
		default:
		}
	}
}

func (p *pipeline) run() {
	defer close(p.done)

	spare1 := p.pool.get()
	spare2 := p.pool.get()
	var toWrite []*FixedBuffer

	for {
		stopping := false
		timedOut := false
		select {
		case <-p.stop:
			stopping = true
		case <-p.wake:
		case <-time.After(p.flushInterval):
			timedOut = true
		}

		p.mu.Lock()
		toWrite = append(toWrite, p.filled...)
		p.filled = p.filled[:0]
		if (timedOut || stopping) && p.current.Len() > 0 {
			toWrite = append(toWrite, p.current)
			p.current = spare1
			spare1 = nil
			p.runningBytes = 0
		}
		if p.next == nil && spare2 != nil {
			p.next = spare2
			spare2 = nil
		}
		p.mu.Unlock()

		if len(toWrite) > maxQueuedBuffers {
			dropped := len(toWrite) - keepQueuedBuffers
			notice := fmt.Sprintf("Dropped log messages at %s, %d larger buffers\n", p.times.now().Format("2006-01-02 15:04:05.000"), dropped)
			p.writeRaw([]byte(notice))
			if p.stderr != nil {
				p.stderr(LevelError, []byte(notice))
			}
			if p.metrics != nil {
				p.metrics.buffersDropped.Add(float64(dropped))
			}
			toWrite = toWrite[:keepQueuedBuffers]
		}

		for _, b := range toWrite {
			p.writeBuffer(b)
		}

		spare1, spare2 = recycleInto(toWrite, spare1, spare2, p.pool)
		toWrite = toWrite[:0]

		if err := p.sink.Flush(); err != nil && p.stderr != nil {
			p.stderr(LevelError, []byte("halog: flush error: "+err.Error()+"\n"))
		}

		if stopping {
			return
		}
	}
}

// recycleInto refills spare1/spare2 from the just-written buffers (reset
// and handed back directly) rather than always pulling from the pool, so
// steady-state operation allocates nothing once warmed up. Any buffers
// left over go back to the pool.
func recycleInto(written []*FixedBuffer, spare1, spare2 *FixedBuffer, pool *largeBufferPool) (*FixedBuffer, *FixedBuffer) {
	for _, b := range written {
		b.Reset()
		switch {
		case spare1 == nil:
			spare1 = b
		case spare2 == nil:
			spare2 = b
		default:
			pool.put(b)
		}
	}
	if spare1 == nil {
		spare1 = pool.get()
	}
	if spare2 == nil {
		spare2 = pool.get()
	}
	return spare1, spare2
}

func (p *pipeline) writeBuffer(b *FixedBuffer) {
	if b.Len() == 0 {
		return
	}
	p.writeRaw(b.Bytes())
}

func (p *pipeline) writeRaw(data []byte) {
	out, err := p.codec.Compress(data)
	if err != nil {
		out = data
	}
	if _, err := p.sink.Write(out); err != nil && p.stderr != nil {
		p.stderr(LevelError, []byte("halog: write error: "+err.Error()+"\n"))
	}
}
