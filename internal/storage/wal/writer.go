package wal

import (
	"bufio"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sethunthunder111/json-database-st/pkg/crypto/envelope"
)

// FlushMode defines when buffered WAL bytes reach the file.
type FlushMode string

const (
	// FlushLazy buffers appends until Flush, Truncate, or Close.
	FlushLazy FlushMode = "lazy"

	// FlushAlways flushes after every append.
	FlushAlways FlushMode = "always"

	// FlushInterval flushes on a background ticker.
	FlushInterval FlushMode = "interval"
)

// DefaultFlushInterval is the ticker period for FlushInterval mode.
const DefaultFlushInterval = time.Second

const filePerm = 0600

// Config configures the WAL writer.
type Config struct {
	Path string

	// Cipher, when set, seals each record in an envelope.
	Cipher *envelope.Cipher

	Mode     FlushMode
	Interval time.Duration
}

// DefaultConfig returns the default WAL configuration: lazy flushing,
// matching the durability contract of existing databases.
func DefaultConfig(path string) Config {
	return Config{
		Path:     path,
		Mode:     FlushLazy,
		Interval: DefaultFlushInterval,
	}
}

// Writer appends operations to the log file. The handle is opened once
// at construction and owned for the writer's lifetime; Truncate swaps
// the handle and rewraps the buffered writer in place.
type Writer struct {
	mu     sync.Mutex
	cipher *envelope.Cipher

	path string
	file *os.File
	bw   *bufio.Writer

	mode     FlushMode
	interval time.Duration
	ticker   *time.Ticker
	stopCh   chan struct{}
	wg       sync.WaitGroup

	closed bool
}

// Open opens (creating if needed) the WAL file in append mode.
func Open(cfg Config) (*Writer, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("wal: path is required")
	}
	if cfg.Mode == "" {
		cfg.Mode = FlushLazy
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultFlushInterval
	}

	file, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, filePerm)
	if err != nil {
		return nil, fmt.Errorf("wal: open: %w", err)
	}

	w := &Writer{
		cipher:   cfg.Cipher,
		path:     cfg.Path,
		file:     file,
		bw:       bufio.NewWriter(file),
		mode:     cfg.Mode,
		interval: cfg.Interval,
	}
	if w.mode == FlushInterval {
		w.startFlushLoop()
	}
	return w, nil
}

// Append encodes one operation and writes it as a single line.
func (w *Writer) Append(op Operation) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return fmt.Errorf("wal: writer is closed")
	}
	if err := w.appendLocked(op); err != nil {
		return err
	}
	if w.mode == FlushAlways {
		return w.flushLocked()
	}
	return nil
}

// AppendBatch writes a group of operations under one lock hold so the
// lines land contiguously.
func (w *Writer) AppendBatch(ops []Operation) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return fmt.Errorf("wal: writer is closed")
	}
	for _, op := range ops {
		if err := w.appendLocked(op); err != nil {
			return err
		}
	}
	if w.mode == FlushAlways {
		return w.flushLocked()
	}
	return nil
}

func (w *Writer) appendLocked(op Operation) error {
	line := op.Encode()
	if w.cipher != nil {
		sealed, err := w.cipher.SealJSON(line)
		if err != nil {
			return fmt.Errorf("wal: seal record: %w", err)
		}
		line = sealed
	}
	if _, err := w.bw.Write(line); err != nil {
		return fmt.Errorf("wal: write record: %w", err)
	}
	if err := w.bw.WriteByte('\n'); err != nil {
		return fmt.Errorf("wal: write record: %w", err)
	}
	return nil
}

// Flush pushes buffered bytes to the file.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushLocked()
}

func (w *Writer) flushLocked() error {
	if w.bw == nil {
		return nil
	}
	if err := w.bw.Flush(); err != nil {
		return fmt.Errorf("wal: flush: %w", err)
	}
	return nil
}

// Truncate empties the log by reopening the file in truncate mode and
// rewrapping the buffered writer. Buffered, unflushed records are
// dropped: the caller truncates only after those operations are covered
// by a snapshot.
func (w *Writer) Truncate() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return fmt.Errorf("wal: writer is closed")
	}

	file, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm)
	if err != nil {
		return fmt.Errorf("wal: truncate: %w", err)
	}
	if w.file != nil {
		_ = w.file.Close()
	}
	w.file = file
	w.bw = bufio.NewWriter(file)
	return nil
}

// SetFlushMode switches the flush policy at runtime.
func (w *Writer) SetFlushMode(mode FlushMode, interval time.Duration) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	if mode == "" {
		mode = FlushLazy
	}
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	prev := w.mode
	w.mode = mode
	w.interval = interval
	w.mu.Unlock()

	if prev == FlushInterval && mode != FlushInterval {
		w.stopFlushLoop()
	}
	if prev != FlushInterval && mode == FlushInterval {
		w.startFlushLoop()
	}
}

func (w *Writer) startFlushLoop() {
	w.ticker = time.NewTicker(w.interval)
	w.stopCh = make(chan struct{})
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-w.ticker.C:
				_ = w.Flush()
			case <-w.stopCh:
				return
			}
		}
	}()
}

func (w *Writer) stopFlushLoop() {
	if w.ticker == nil {
		return
	}
	w.ticker.Stop()
	close(w.stopCh)
	w.wg.Wait()
	w.ticker = nil
	w.stopCh = nil
}

// Close flushes pending records and releases the file handle.
func (w *Writer) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	runLoop := w.ticker != nil
	w.mu.Unlock()

	if runLoop {
		w.stopFlushLoop()
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.flushLocked(); err != nil {
		return err
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("wal: close: %w", err)
	}
	w.file = nil
	w.bw = nil
	return nil
}
