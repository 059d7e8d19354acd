// Package jsondb is an embeddable single-file JSON document store with
// crash-safe durability.
//
// Mutations append to a write-ahead log before touching the in-memory
// tree; Save rewrites the whole document atomically (temp file plus
// rename) and truncates the WAL; Load recovers by reading the snapshot
// and replaying the WAL on top. Optional AES-256-GCM encryption covers
// both WAL records and snapshots. Reads and writes address nodes by
// dotted paths, and Find runs a small MongoDB-style query dialect over
// collections.
package jsondb

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sethunthunder111/json-database-st/internal/config"
	"github.com/sethunthunder111/json-database-st/internal/infra/shutdown"
	"github.com/sethunthunder111/json-database-st/internal/query"
	"github.com/sethunthunder111/json-database-st/internal/storage/snapshot"
	"github.com/sethunthunder111/json-database-st/internal/storage/wal"
	"github.com/sethunthunder111/json-database-st/internal/telemetry/logger"
	"github.com/sethunthunder111/json-database-st/internal/telemetry/metric"
	"github.com/sethunthunder111/json-database-st/pkg/crypto/envelope"
	"github.com/sethunthunder111/json-database-st/pkg/document"
)

// DB is a single-file JSON document store. All methods are safe for
// concurrent use within one process; cross-process coordination is out
// of scope.
//
// The tree lock is acquired after the WAL mutex on the write path;
// readers take only the tree lock.
type DB struct {
	mu   sync.RWMutex
	root *document.Value

	snap    *snapshot.Store
	wal     *wal.Writer
	walPath string

	cipher  *envelope.Cipher
	logger  *slog.Logger
	metrics *metric.Collector

	closed bool
}

// New creates a database for cfg.Path. The WAL handle is opened here;
// the tree starts empty and Load is explicit.
func New(cfg Config) (*DB, error) {
	if cfg.Path == "" {
		return nil, wrapErr(KindConfig, "new", config.ErrPathRequired)
	}

	cipher, err := buildCipher(cfg.Security)
	if err != nil {
		return nil, wrapErr(KindConfig, "new", err)
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}

	db := &DB{
		root:    document.Object(),
		snap:    snapshot.New(cfg.Path, cipher, cfg.PrettyPrint),
		walPath: walPath(cfg.Path),
		cipher:  cipher,
		logger:  log,
	}
	if cfg.Metrics {
		db.metrics = metric.NewCollector()
	}

	if cfg.WAL.Enabled {
		wcfg := wal.DefaultConfig(db.walPath)
		wcfg.Cipher = cipher
		wcfg.Mode = walFlushMode(cfg.WAL.FlushMode)
		wcfg.Interval = cfg.WAL.FlushInterval
		w, err := wal.Open(wcfg)
		if err != nil {
			return nil, wrapErr(KindIO, "open wal", err)
		}
		db.wal = w
	}

	log.Debug("database created",
		"path", cfg.Path,
		"wal", cfg.WAL.Enabled,
		"encrypted", cipher != nil)
	return db, nil
}

// NewFromConfigFile builds a database from a YAML configuration file.
func NewFromConfigFile(path string) (*DB, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return New(cfg)
}

// walPath derives the log path: the snapshot path with its extension
// replaced by .wal.
func walPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".wal"
}

// Load reads the snapshot (recovering a leftover temp file first) and
// replays the WAL on top. The in-memory tree is replaced wholesale.
func (db *DB) Load() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return ErrClosed
	}

	start := time.Now()

	root, exists, err := db.snap.Read()
	if err != nil {
		return wrapErr(classify(err), "load", err)
	}
	if !exists {
		root = document.Object()
	}

	applied, skipped, err := wal.Replay(db.walPath, db.cipher, func(op wal.Operation) {
		applyOperation(root, op)
	})
	if err != nil {
		return wrapErr(KindIO, "load", err)
	}

	db.root = root
	db.metrics.RecordReplaySkipped(skipped)
	db.metrics.ObserveLoad(time.Since(start).Seconds())

	db.logger.Info("database loaded",
		"path", db.snap.Path(),
		"snapshot", exists,
		"wal_applied", applied,
		"wal_skipped", skipped,
		"elapsed", time.Since(start))
	return nil
}

func applyOperation(root *document.Value, op wal.Operation) {
	switch op.Type {
	case wal.OpSet:
		document.Set(root, op.Path, op.Value)
	case wal.OpDelete:
		document.Delete(root, op.Path)
	}
}

// Save serialises the tree, writes it to the temp file, renames it over
// the snapshot, and truncates the WAL. The truncation happens only
// after the rename succeeded, so a failed save leaves the log intact.
func (db *DB) Save() error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.closed {
		return ErrClosed
	}

	start := time.Now()

	if err := db.snap.Write(db.root); err != nil {
		return wrapErr(classify(err), "save", err)
	}

	if db.wal != nil {
		if err := db.wal.Truncate(); err != nil {
			return wrapErr(KindIO, "save", err)
		}
	}

	db.metrics.ObserveSave(time.Since(start).Seconds())
	if st, err := os.Stat(db.snap.Path()); err == nil {
		db.metrics.SetSnapshotBytes(int(st.Size()))
	}

	db.logger.Info("database saved",
		"path", db.snap.Path(),
		"elapsed", time.Since(start))
	return nil
}

// Get returns a copy of the node at path, or a null value when the path
// is absent. The empty path returns the whole tree.
func (db *DB) Get(path string) *document.Value {
	db.mu.RLock()
	defer db.mu.RUnlock()
	db.metrics.RecordRead()

	v, ok := document.Get(db.root, path)
	if !ok {
		return document.Null()
	}
	return v.Clone()
}

// Has reports whether a node exists at path. The empty path always
// exists.
func (db *DB) Has(path string) bool {
	if path == "" {
		return true
	}
	db.mu.RLock()
	defer db.mu.RUnlock()
	db.metrics.RecordRead()

	_, ok := document.Get(db.root, path)
	return ok
}

// Set writes value at path, creating ancestors as needed. The operation
// reaches the WAL before the tree; a failed append leaves the tree
// untouched.
func (db *DB) Set(path string, value any) error {
	v, err := document.FromGo(value)
	if err != nil {
		return wrapErr(KindInput, "set", err)
	}
	op := wal.NewSet(path, v)

	if db.wal != nil {
		if err := db.wal.Append(op); err != nil {
			return wrapErr(KindIO, "set", err)
		}
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return ErrClosed
	}
	document.Set(db.root, path, v.Clone())
	db.metrics.RecordSet()
	db.metrics.RecordWALAppend()
	return nil
}

// Delete removes the node at path. Missing paths are no-ops; the empty
// path resets the tree to an empty object.
func (db *DB) Delete(path string) error {
	op := wal.NewDelete(path)

	if db.wal != nil {
		if err := db.wal.Append(op); err != nil {
			return wrapErr(KindIO, "delete", err)
		}
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return ErrClosed
	}
	document.Delete(db.root, path)
	db.metrics.RecordDelete()
	db.metrics.RecordWALAppend()
	return nil
}

// BatchOp is one entry of a batch: type "set" or "delete". Unknown
// types are skipped.
type BatchOp struct {
	Type  string `json:"type"`
	Path  string `json:"path"`
	Value any    `json:"value,omitempty"`
}

// Batch appends the whole group to the WAL, then applies the operations
// in order. Atomicity is in-memory only: after a crash mid-append,
// replay produces whatever was durably flushed.
func (db *DB) Batch(ops []BatchOp) error {
	converted := make([]wal.Operation, 0, len(ops))
	for _, op := range ops {
		switch op.Type {
		case "set":
			v, err := document.FromGo(op.Value)
			if err != nil {
				return wrapErr(KindInput, "batch", err)
			}
			converted = append(converted, wal.NewSet(op.Path, v))
		case "delete":
			converted = append(converted, wal.NewDelete(op.Path))
		}
	}
	return db.applyBatch(converted)
}

// BatchJSON parses a JSON array of batch operations and applies it.
// Malformed JSON is an input error; entries with missing fields fall
// back to empty path and null value.
func (db *DB) BatchJSON(data []byte) error {
	arr, err := document.Parse(data)
	if err != nil {
		return wrapErr(KindInput, "batch", err)
	}
	if arr.Kind() != document.KindArray {
		return wrapErr(KindInput, "batch", document.ErrTrailingData)
	}

	converted := make([]wal.Operation, 0, arr.Len())
	for i := 0; i < arr.Len(); i++ {
		entry := arr.Index(i)
		opType := stringField(entry, "type")
		path := stringField(entry, "path")
		switch opType {
		case "set":
			value, ok := entry.Field("value")
			if !ok {
				value = document.Null()
			}
			converted = append(converted, wal.NewSet(path, value))
		case "delete":
			converted = append(converted, wal.NewDelete(path))
		}
	}
	return db.applyBatch(converted)
}

func stringField(v *document.Value, key string) string {
	f, ok := v.Field(key)
	if !ok {
		return ""
	}
	s, _ := f.AsString()
	return s
}

func (db *DB) applyBatch(ops []wal.Operation) error {
	if db.wal != nil {
		if err := db.wal.AppendBatch(ops); err != nil {
			return wrapErr(KindIO, "batch", err)
		}
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return ErrClosed
	}
	for _, op := range ops {
		applyOperation(db.root, op)
	}
	db.metrics.RecordBatch(len(ops))
	return nil
}

// FindOptions control sorting, paging, and projection for Find.
type FindOptions struct {
	// Sort maps dotted field paths to 1 (ascending) or -1 (descending),
	// evaluated in key order. Pass a json.RawMessage or a *document.Value
	// when multi-key order matters; a plain Go string is a JSON string
	// value, not a sort object, and sorts nothing.
	Sort any

	// Skip drops that many items from the head of the result.
	Skip int

	// Limit caps the remainder; values <= 0 mean unbounded.
	Limit int

	// Select projects each result onto the listed dotted paths. Empty
	// returns items as-is.
	Select []string
}

// Find resolves the collection at path (array elements, or object
// values in insertion order), filters it by query, and runs the
// pipeline: filter, sort, skip, limit, project.
func (db *DB) Find(path string, q any, opts *FindOptions) ([]*document.Value, error) {
	qv, err := document.FromGo(q)
	if err != nil {
		return nil, wrapErr(KindInput, "find", err)
	}

	var runOpts query.Options
	if opts != nil {
		runOpts.Skip = opts.Skip
		runOpts.Limit = opts.Limit
		runOpts.Select = opts.Select
		if opts.Sort != nil {
			sv, err := document.FromGo(opts.Sort)
			if err != nil {
				return nil, wrapErr(KindInput, "find", err)
			}
			runOpts.Sort = sv
		}
	}

	db.mu.RLock()
	defer db.mu.RUnlock()
	db.metrics.RecordFind()

	results := query.Run(db.collectionLocked(path), qv, runOpts)
	out := make([]*document.Value, len(results))
	for i, r := range results {
		out[i] = r.Clone()
	}
	return out, nil
}

// FindOne returns a copy of the first item matching query in iteration
// order, or nil when nothing matches.
func (db *DB) FindOne(path string, q any) (*document.Value, error) {
	qv, err := document.FromGo(q)
	if err != nil {
		return nil, wrapErr(KindInput, "find", err)
	}

	db.mu.RLock()
	defer db.mu.RUnlock()
	db.metrics.RecordFind()

	for _, item := range db.collectionLocked(path) {
		if query.Match(item, qv) {
			return item.Clone(), nil
		}
	}
	return nil, nil
}

// collectionLocked resolves path to iterable items. Arrays iterate
// elements, objects iterate values in insertion order, anything else is
// empty. Callers hold at least the read lock.
func (db *DB) collectionLocked(path string) []*document.Value {
	coll, ok := document.Get(db.root, path)
	if !ok {
		return nil
	}
	switch coll.Kind() {
	case document.KindArray:
		items := make([]*document.Value, coll.Len())
		for i := 0; i < coll.Len(); i++ {
			items[i] = coll.Index(i)
		}
		return items
	case document.KindObject:
		items := make([]*document.Value, 0, coll.Len())
		for _, k := range coll.Keys() {
			v, _ := coll.Field(k)
			items = append(items, v)
		}
		return items
	default:
		return nil
	}
}

// Flush forces buffered WAL bytes to the file.
func (db *DB) Flush() error {
	if db.wal == nil {
		return nil
	}
	if err := db.wal.Flush(); err != nil {
		return wrapErr(KindIO, "flush", err)
	}
	return nil
}

// SetFlushMode switches the WAL flush policy at runtime.
func (db *DB) SetFlushMode(mode FlushMode, interval time.Duration) {
	if db.wal == nil {
		return
	}
	db.wal.SetFlushMode(walFlushMode(mode), interval)
	db.logger.Info("wal flush policy changed", "mode", string(mode), "interval", interval)
}

// WatchConfig watches a configuration file and applies runtime-tunable
// settings (the WAL flush policy) when it changes. The returned stop
// function ends the watch.
func (db *DB) WatchConfig(path string) (stop func() error, err error) {
	w, err := config.NewWatcher(path, db.logger)
	if err != nil {
		return nil, wrapErr(KindIO, "watch config", err)
	}
	w.OnReload(func(spec *config.Spec) {
		db.SetFlushMode(FlushMode(spec.WAL.FlushMode), spec.WAL.FlushInterval)
	})
	w.Start()
	return w.Close, nil
}

// CloseOnSignal installs a shutdown handler that flushes and closes the
// database on SIGINT/SIGTERM. The returned function triggers the same
// teardown early and waits for it.
func (db *DB) CloseOnSignal(timeout time.Duration) (trigger func()) {
	h := shutdown.NewHandler(timeout)
	h.OnShutdown(func(context.Context) error {
		return db.Close()
	})
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := h.Wait(); err != nil {
			db.logger.Error("shutdown hook failed", "error", err)
		}
	}()
	return func() {
		h.Trigger()
		<-done
	}
}

// MetricsHandler serves the Prometheus registry, or nil when metrics
// are disabled.
func (db *DB) MetricsHandler() http.Handler {
	if db.metrics == nil {
		return nil
	}
	return db.metrics.Handler()
}

// Close flushes pending WAL bytes and releases file handles. The
// database is unusable afterwards.
func (db *DB) Close() error {
	db.mu.Lock()
	if db.closed {
		db.mu.Unlock()
		return nil
	}
	db.closed = true
	db.mu.Unlock()

	if db.wal != nil {
		if err := db.wal.Close(); err != nil {
			return wrapErr(KindIO, "close", err)
		}
	}
	db.logger.Debug("database closed", "path", db.snap.Path())
	return nil
}
