// Package source provides the local ingestion source: a directory watcher
// that detects new or changed ontology documents and hands them to the
// ingest stage. Repository webhooks are the other ingestion path; both
// produce the same revision events.
package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// eventBuffer is the size of the emitted change channel.
const eventBuffer = 256

// Config controls the ontology directory watcher.
type Config struct {
	// Dir is the watched root directory.
	Dir string `json:"dir" yaml:"dir"`

	// Include lists doublestar patterns, relative to Dir, selecting
	// ontology documents. Empty defaults to common RDF extensions.
	Include []string `json:"include" yaml:"include"`

	// ExcludeDirs lists directory names skipped entirely.
	ExcludeDirs []string `json:"excludeDirs" yaml:"excludeDirs"`

	// Debounce is how long to collect changes before emitting.
	Debounce time.Duration `json:"debounce" yaml:"debounce"`
}

// DefaultConfig returns the watcher defaults.
func DefaultConfig() Config {
	return Config{
		Include:     []string{"**/*.owl", "**/*.rdf", "**/*.ttl", "**/*.nt"},
		ExcludeDirs: []string{".git", "node_modules", "vendor"},
		Debounce:    500 * time.Millisecond,
	}
}

// Op is the kind of document change.
type Op string

// Document change kinds.
const (
	OpCreate Op = "create"
	OpModify Op = "modify"
	OpDelete Op = "delete"
)

// Change is one detected ontology document change.
type Change struct {
	// Path is relative to the watched directory.
	Path string

	// AbsPath is the absolute document path.
	AbsPath string

	Op Op
}

// Watcher watches a directory tree for ontology document changes. Changes
// are debounced and deduplicated by content hash, so editor save storms
// produce one change each.
type Watcher struct {
	config   Config
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	excludes map[string]bool

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	hashMu sync.RWMutex
	hashes map[string]string

	changes chan Change
	dropped atomic.Int64
}

// NewWatcher creates a watcher for the configured directory.
func NewWatcher(config Config, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	defaults := DefaultConfig()
	if len(config.Include) == 0 {
		config.Include = defaults.Include
	}
	if len(config.ExcludeDirs) == 0 {
		config.ExcludeDirs = defaults.ExcludeDirs
	}
	if config.Debounce <= 0 {
		config.Debounce = defaults.Debounce
	}

	excludes := make(map[string]bool, len(config.ExcludeDirs))
	for _, dir := range config.ExcludeDirs {
		excludes[dir] = true
	}

	return &Watcher{
		config:   config,
		watcher:  fsw,
		logger:   logger,
		excludes: excludes,
		pending:  make(map[string]fsnotify.Op),
		hashes:   make(map[string]string),
		changes:  make(chan Change, eventBuffer),
	}, nil
}

// Changes returns the emitted change channel. Closed when the watcher
// stops.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Start begins watching. The directory is created if missing.
func (w *Watcher) Start(ctx context.Context) error {
	if err := os.MkdirAll(w.config.Dir, 0o755); err != nil {
		return err
	}
	if err := w.addWatchesRecursive(w.config.Dir); err != nil {
		return err
	}

	go w.run(ctx)

	w.logger.Info("ontology watcher started",
		"dir", w.config.Dir,
		"include", w.config.Include,
		"debounce", w.config.Debounce)
	return nil
}

// Stop closes the underlying watcher; the changes channel closes once the
// run loop drains.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

// Dropped returns the number of changes lost to channel overflow.
func (w *Watcher) Dropped() int64 {
	return w.dropped.Load()
}

// Included reports whether a path, relative to the watched root, matches
// any include pattern.
func (w *Watcher) Included(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	for _, pattern := range w.config.Include {
		if ok, err := doublestar.Match(pattern, relPath); err == nil && ok {
			return true
		}
	}
	return false
}

func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		base := filepath.Base(path)
		if w.excludes[base] || (strings.HasPrefix(base, ".") && path != root) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.changes)
	ticker := time.NewTicker(w.config.Debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)
		case <-ticker.C:
			w.flushPending(ctx)
		}
	}
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	path := event.Name
	relPath, err := filepath.Rel(w.config.Dir, path)
	if err != nil {
		return
	}

	if !w.Included(relPath) {
		// New subdirectories need their own watch.
		if event.Has(fsnotify.Create) {
			if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
				w.watchNewDirectory(path)
			}
		}
		return
	}

	for exclude := range w.excludes {
		if strings.Contains(relPath, exclude+string(filepath.Separator)) {
			return
		}
	}

	w.pendingMu.Lock()
	w.pending[path] = event.Op
	w.pendingMu.Unlock()
}

func (w *Watcher) watchNewDirectory(path string) {
	base := filepath.Base(path)
	if w.excludes[base] || strings.HasPrefix(base, ".") {
		return
	}
	if err := w.watcher.Add(path); err != nil {
		w.logger.Warn("failed to watch new directory", "path", path, "error", err)
	}
}

func (w *Watcher) flushPending(ctx context.Context) {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	toProcess := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	for path, op := range toProcess {
		if ctx.Err() != nil {
			return
		}

		relPath, _ := filepath.Rel(w.config.Dir, path)
		change := Change{Path: relPath, AbsPath: path}

		if op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename) {
			change.Op = OpDelete
			w.forgetHash(relPath)
			w.emit(change)
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			change.Op = OpDelete
			w.forgetHash(relPath)
			w.emit(change)
			continue
		}

		content, err := os.ReadFile(path)
		if err != nil {
			w.logger.Warn("failed to read changed document", "path", relPath, "error", err)
			continue
		}

		newHash := contentHash(content)
		oldHash, known := w.getHash(relPath)
		if known && oldHash == newHash {
			continue
		}
		w.setHash(relPath, newHash)

		if op.Has(fsnotify.Create) || !known {
			change.Op = OpCreate
		} else {
			change.Op = OpModify
		}
		w.emit(change)
	}
}

func (w *Watcher) emit(change Change) {
	select {
	case w.changes <- change:
	default:
		dropped := w.dropped.Add(1)
		w.logger.Warn("change channel full, dropping change",
			"path", change.Path, "total_dropped", dropped)
	}
}

func (w *Watcher) getHash(path string) (string, bool) {
	w.hashMu.RLock()
	defer w.hashMu.RUnlock()
	hash, ok := w.hashes[path]
	return hash, ok
}

func (w *Watcher) setHash(path, hash string) {
	w.hashMu.Lock()
	w.hashes[path] = hash
	w.hashMu.Unlock()
}

func (w *Watcher) forgetHash(path string) {
	w.hashMu.Lock()
	delete(w.hashes, path)
	w.hashMu.Unlock()
}

func contentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
