package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// DefaultLoadTimeout bounds a single source read + dataset build.
const DefaultLoadTimeout = 2 * time.Minute

// DefaultSourceCloseGrace is how long a replaced source stays open so that
// requests which already hold it can finish reading.
const DefaultSourceCloseGrace = 30 * time.Second

// ServiceConfig holds the settings the service needs from application config.
// Zero values fall back to package defaults.
type ServiceConfig struct {
	Source       SourceSpec
	CacheEntries int
	CacheTTL     time.Duration
	LoadTimeout  time.Duration
	Watch        bool

	// SourceCloseGrace delays closing a source replaced by an upload.
	SourceCloseGrace time.Duration

	UploadDir            string
	MaxFileSize          int64
	MaxConcurrentUploads int
	MaxUploadWait        time.Duration
}

// Service provides the core business logic of the supplier dashboard.
type Service struct {
	cfg           ServiceConfig
	cache         *DatasetCache
	uploadLimiter *UploadLimiter
	watcher       *SourceWatcher

	mu     sync.RWMutex
	active *activeSource

	retireMu sync.Mutex
	retiring map[*activeSource]*time.Timer
	closed   bool
}

// activeSource is the source currently backing the dashboard.
type activeSource struct {
	spec     SourceSpec
	kind     string
	src      Source
	uploadID string // Non-empty when the source came from an upload
	fileName string // Original upload file name
}

// NewService creates a Service for the configured source. The source is
// resolved and opened but not read; the first Dataset call loads it.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.LoadTimeout <= 0 {
		cfg.LoadTimeout = DefaultLoadTimeout
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = MaxFileSize
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = "uploads"
	}
	if cfg.SourceCloseGrace <= 0 {
		cfg.SourceCloseGrace = DefaultSourceCloseGrace
	}

	s := &Service{
		cfg:           cfg,
		cache:         NewDatasetCache(cfg.CacheEntries, cfg.CacheTTL),
		uploadLimiter: NewUploadLimiter(cfg.MaxConcurrentUploads, cfg.MaxUploadWait),
		retiring:      make(map[*activeSource]*time.Timer),
	}

	if cfg.Watch {
		w, err := NewSourceWatcher()
		if err != nil {
			return nil, err
		}
		s.watcher = w
	}

	active, err := openActive(cfg.Source, "", "")
	if err != nil {
		s.Close()
		return nil, err
	}
	s.activate(active)

	return s, nil
}

// openActive resolves and opens a source spec.
func openActive(spec SourceSpec, uploadID, fileName string) (*activeSource, error) {
	def, err := ResolveSource(spec.Location)
	if err != nil {
		return nil, err
	}
	src, err := def.Open(spec)
	if err != nil {
		return nil, fmt.Errorf("open %s source: %w", def.Kind, err)
	}
	return &activeSource{
		spec:     spec,
		kind:     def.Kind,
		src:      src,
		uploadID: uploadID,
		fileName: fileName,
	}, nil
}

// activate makes a as the active source and returns the previous one.
// File-backed sources are watched for changes.
func (s *Service) activate(a *activeSource) *activeSource {
	s.mu.Lock()
	prev := s.active
	s.active = a
	s.mu.Unlock()

	if s.watcher != nil {
		if prev != nil {
			if fb, ok := prev.src.(FileBacked); ok {
				s.watcher.Unwatch(fb.Path())
			}
		}
		if fb, ok := a.src.(FileBacked); ok {
			handle := a.src.Handle()
			if err := s.watcher.Watch(fb.Path(), func() {
				if n := s.cache.Invalidate(handle); n > 0 {
					slog.Info("dataset invalidated by file change", "source", handle, "entries", n)
				}
			}); err != nil {
				slog.Warn("source file not watched", "path", fb.Path(), "error", err)
			}
		}
	}

	slog.Info("source activated", "kind", a.kind, "source", a.src.Handle())
	return prev
}

// current returns the active source.
func (s *Service) current() *activeSource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Dataset returns the dataset of the active source, loading it if the
// source's identity is not cached.
func (s *Service) Dataset(ctx context.Context) (*Dataset, error) {
	return s.datasetFor(ctx, s.current())
}

func (s *Service) datasetFor(ctx context.Context, a *activeSource) (*Dataset, error) {
	id, err := a.src.Identity(ctx)
	if err != nil {
		if errors.Is(err, ErrSourceUnavailable) {
			return nil, err
		}
		return nil, sourceUnavailable(a.src.Handle(), err)
	}

	return s.cache.Get(ctx, id, func(ctx context.Context) (*Dataset, error) {
		ctx, cancel := context.WithTimeout(ctx, s.cfg.LoadTimeout)
		defer cancel()

		start := time.Now()
		raw, err := a.src.Read(ctx)
		if err != nil {
			slog.Error("dataset load failed", "source", id.Handle, "error", err)
			if errors.Is(err, ErrSourceUnavailable) {
				return nil, err
			}
			return nil, sourceUnavailable(id.Handle, err)
		}

		ds, err := LoadDataset(id, raw)
		if err != nil {
			return nil, err
		}

		slog.Info("dataset loaded",
			"source", id.Handle,
			"marker", id.Marker,
			"rows", ds.NumRows(),
			"columns", len(ds.Columns()),
			"warnings", len(ds.Warnings()),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		for _, w := range ds.Warnings() {
			slog.Warn("dataset warning", "source", id.Handle, "kind", w.Kind, "column", w.Column, "message", w.Message)
		}
		return ds, nil
	})
}

// Evaluate filters the active dataset.
func (s *Service) Evaluate(ctx context.Context, sel FilterSelection, query string) (*FilteredResult, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return ds.Evaluate(sel, query), nil
}

// Options returns the option list of every filterable column.
func (s *Service) Options(ctx context.Context) (map[Column]OptionList, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return ds.AllOptions(), nil
}

// Export filters the active dataset and materializes the result for a
// writer. Returns ErrExportEmpty when nothing matches.
func (s *Service) Export(ctx context.Context, sel FilterSelection, query string) (*ExportTable, error) {
	result, err := s.Evaluate(ctx, sel, query)
	if err != nil {
		return nil, err
	}
	return Export(result)
}

// Reload drops every cached version of the active source, so the next
// request rebuilds the dataset.
func (s *Service) Reload() int {
	handle := s.current().src.Handle()
	n := s.cache.Invalidate(handle)
	slog.Info("dataset invalidated", "source", handle, "entries", n)
	return n
}

// SourceStatus describes the active source and its cached dataset.
type SourceStatus struct {
	Kind         string        `json:"kind"`
	Handle       string        `json:"handle"`
	UploadID     string        `json:"uploadId,omitempty"`
	FileName     string        `json:"fileName,omitempty"`
	Loaded       bool          `json:"loaded"`
	Marker       string        `json:"marker,omitempty"`
	Rows         int           `json:"rows"`
	Columns      []string      `json:"columns,omitempty"`
	Warnings     []Warning     `json:"warnings,omitempty"`
	LoadedAt     *time.Time    `json:"loadedAt,omitempty"`
	LoadDuration time.Duration `json:"loadDurationNs"`
	Error        string        `json:"error,omitempty"`

	Cache   CacheStats          `json:"cache"`
	Uploads UploadLimiterStatus `json:"uploads"`
}

// Status reports the active source without triggering a load.
func (s *Service) Status(ctx context.Context) SourceStatus {
	a := s.current()
	st := SourceStatus{
		Kind:     a.kind,
		Handle:   a.src.Handle(),
		UploadID: a.uploadID,
		FileName: a.fileName,
		Cache:    s.cache.Stats(),
		Uploads:  s.uploadLimiter.Status(),
	}

	id, err := a.src.Identity(ctx)
	if err != nil {
		st.Error = err.Error()
		return st
	}
	st.Marker = id.Marker

	if ds, ok := s.cache.Peek(id); ok {
		loadedAt := ds.LoadedAt()
		st.Loaded = true
		st.Rows = ds.NumRows()
		st.Columns = ds.Columns()
		st.Warnings = ds.Warnings()
		st.LoadedAt = &loadedAt
		st.LoadDuration = ds.LoadDuration()
	}
	return st
}

// UploadLimiterStatus returns the current upload slot usage.
func (s *Service) UploadLimiterStatus() UploadLimiterStatus {
	return s.uploadLimiter.Status()
}

// WaitForUploads blocks until in-flight uploads finish or ctx is done.
func (s *Service) WaitForUploads(ctx context.Context) error {
	return s.uploadLimiter.WaitForDrain(ctx)
}

// retire drops a replaced source from the cache and closes it once
// SourceCloseGrace has passed. A source retired after Close is closed at once.
func (s *Service) retire(prev *activeSource) {
	s.cache.Invalidate(prev.src.Handle())

	s.retireMu.Lock()
	defer s.retireMu.Unlock()
	if s.closed {
		prev.release()
		return
	}
	s.retiring[prev] = time.AfterFunc(s.cfg.SourceCloseGrace, func() {
		s.retireMu.Lock()
		delete(s.retiring, prev)
		s.retireMu.Unlock()
		prev.release()
	})
}

// release closes the source and removes its file if it was uploaded.
func (a *activeSource) release() {
	if err := a.src.Close(); err != nil {
		slog.Warn("close previous source", "source", a.src.Handle(), "error", err)
	}
	if a.uploadID != "" {
		if fb, ok := a.src.(FileBacked); ok {
			os.Remove(fb.Path())
		}
	}
}

// Close stops the watcher and closes the active source along with any
// replaced sources still in their grace period. Later calls do nothing.
func (s *Service) Close() error {
	s.retireMu.Lock()
	if s.closed {
		s.retireMu.Unlock()
		return nil
	}
	s.closed = true
	pending := make([]*activeSource, 0, len(s.retiring))
	for a, timer := range s.retiring {
		// A timer that already fired is closing its source itself.
		if timer.Stop() {
			pending = append(pending, a)
		}
		delete(s.retiring, a)
	}
	s.retireMu.Unlock()

	for _, a := range pending {
		a.release()
	}

	var errs []error
	if s.watcher != nil {
		errs = append(errs, s.watcher.Close())
	}
	if a := s.current(); a != nil {
		errs = append(errs, a.src.Close())
	}
	return errors.Join(errs...)
}

// ensureUploadDir creates the upload directory if needed.
func (s *Service) ensureUploadDir() error {
	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return fmt.Errorf("create upload directory: %w", err)
	}
	return nil
}
