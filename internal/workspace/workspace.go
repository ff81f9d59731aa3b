package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/nao1215/llmctx/internal/model"
	"github.com/nao1215/llmctx/internal/report"
	"github.com/nao1215/llmctx/internal/store"
)

// CollectFunc gathers system facts.
type CollectFunc func(ctx context.Context) (*model.SystemInfo, error)

// Workspace is the shared state of the form. It is safe for concurrent use.
type Workspace struct {
	dataFile string
	collect  CollectFunc
	history  *store.HistoryDB
	options  model.FormOptions
	goos     string
	now      func() time.Time
	logger   *slog.Logger

	group singleflight.Group

	mu     sync.RWMutex
	info   *model.SystemInfo
	latest *model.Document
	loaded bool
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithHistory records every save in h.
func WithHistory(h *store.HistoryDB) Option {
	return func(w *Workspace) {
		w.history = h
	}
}

// WithFormOptions sets the choices offered by the form.
func WithFormOptions(opts model.FormOptions) Option {
	return func(w *Workspace) {
		w.options = opts
	}
}

// WithGOOS overrides the operating system used for platform defaults.
func WithGOOS(goos string) Option {
	return func(w *Workspace) {
		w.goos = goos
	}
}

// WithClock overrides the clock used for the document timestamp.
func WithClock(now func() time.Time) Option {
	return func(w *Workspace) {
		w.now = now
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workspace) {
		w.logger = logger
	}
}

// WithSystemInfo seeds the cache so no collection happens until Refresh.
func WithSystemInfo(info *model.SystemInfo) Option {
	return func(w *Workspace) {
		w.info = info
	}
}

// New creates a Workspace writing dataFile and collecting facts with collect.
func New(dataFile string, collect CollectFunc, opts ...Option) *Workspace {
	w := &Workspace{
		dataFile: dataFile,
		collect:  collect,
		options:  model.DefaultFormOptions(),
		goos:     runtime.GOOS,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// DataFile returns the path of data.json.
func (w *Workspace) DataFile() string {
	return w.dataFile
}

// FormOptions returns the choices offered by the form.
func (w *Workspace) FormOptions() model.FormOptions {
	return w.options
}

// GOOS returns the operating system used for platform defaults.
func (w *Workspace) GOOS() string {
	return w.goos
}

// History returns the snapshot store, or nil when history is disabled.
func (w *Workspace) History() *store.HistoryDB {
	return w.history
}

// Load reads data.json.
//
// A missing file, a file that is not a valid document, or an empty one
// such as null yields a nil document and no error, the same as a workspace where nothing was saved
// yet. Other read failures are returned.
func (w *Workspace) Load() (*model.Document, error) {
	data, err := os.ReadFile(w.dataFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", w.dataFile, err)
	}

	var doc model.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		w.logger.Warn("ignoring unreadable data file", "path", w.dataFile, "error", err)
		return nil, nil
	}
	if doc == (model.Document{}) {
		// null or {} holds no answers.
		return nil, nil
	}
	return &doc, nil
}

// Latest returns the last saved document, reading data.json on first use.
// It returns nil when nothing was saved yet.
func (w *Workspace) Latest() (*model.Document, error) {
	w.mu.RLock()
	if w.loaded {
		doc := w.latest
		w.mu.RUnlock()
		return doc, nil
	}
	w.mu.RUnlock()

	doc, err := w.Load()
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.loaded {
		w.latest = doc
		w.loaded = true
	}
	return w.latest, nil
}

// Preferences returns the form defaults derived from the last saved document.
func (w *Workspace) Preferences() (*model.Preferences, error) {
	doc, err := w.Latest()
	if err != nil {
		return nil, err
	}
	return model.PreferencesFromDocument(doc, w.options, w.goos), nil
}

// SystemInfo returns the cached facts, collecting them on first use.
func (w *Workspace) SystemInfo(ctx context.Context) (*model.SystemInfo, error) {
	w.mu.RLock()
	info := w.info
	w.mu.RUnlock()
	if info != nil {
		return info, nil
	}
	return w.Refresh(ctx)
}

// Refresh collects the facts again and replaces the cache.
// Concurrent calls share a single collection. A collection that ends
// with an error leaves the cache untouched.
func (w *Workspace) Refresh(ctx context.Context) (*model.SystemInfo, error) {
	v, err, _ := w.group.Do("collect", func() (any, error) {
		info, err := w.collect(ctx)
		if err != nil {
			return nil, err
		}
		w.mu.Lock()
		w.info = info
		w.mu.Unlock()
		return info, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to collect system info: %w", err)
	}
	return v.(*model.SystemInfo), nil
}

// Save builds a document from prefs and the cached facts, writes it to
// data.json and records it in the history.
//
// The data file is replaced atomically. When recording the history fails
// the document has still been written and is returned with the error.
func (w *Workspace) Save(ctx context.Context, prefs *model.Preferences) (*model.Document, error) {
	if err := prefs.Validate(w.options); err != nil {
		return nil, err
	}

	info, err := w.SystemInfo(ctx)
	if err != nil {
		return nil, err
	}

	doc := model.BuildDocument(info, prefs, w.now(), w.goos)
	if err := w.write(doc); err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.latest = doc
	w.loaded = true
	w.mu.Unlock()

	w.logger.Info("saved data file", "path", w.dataFile)

	if w.history != nil {
		meta, created, err := w.history.Save(ctx, doc)
		if err != nil {
			return doc, fmt.Errorf("failed to record history: %w", err)
		}
		w.logger.Debug("history snapshot", "id", meta.ID, "created", created)
	}
	return doc, nil
}

// Restore makes a snapshot from the history the current document.
func (w *Workspace) Restore(ctx context.Context, id string) (*model.Document, error) {
	if w.history == nil {
		return nil, ErrHistoryDisabled
	}
	snap, err := w.history.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := w.write(snap.Document); err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.latest = snap.Document
	w.loaded = true
	w.mu.Unlock()
	return snap.Document, nil
}

// write stores doc in data.json through a temporary file in the same
// directory, creating the directory when needed.
func (w *Workspace) write(doc *model.Document) error {
	data, err := report.MarshalDocument(doc)
	if err != nil {
		return fmt.Errorf("failed to serialize document: %w", err)
	}

	dir := filepath.Dir(w.dataFile)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".data-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", w.dataFile, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", w.dataFile, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil { //nolint:gosec // data.json is meant to be shared
		return fmt.Errorf("failed to set permissions on %s: %w", w.dataFile, err)
	}
	if err := os.Rename(tmpName, w.dataFile); err != nil {
		return fmt.Errorf("failed to replace %s: %w", w.dataFile, err)
	}
	return nil
}
