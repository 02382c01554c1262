package core

// upload.go replaces the active source with an uploaded file.
//
// The file is stored under the upload directory with a generated name, then
// loaded once as a test. Only a file that builds a dataset becomes the active
// source; a failed upload leaves the previous source in place.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxFileSize is the default maximum upload size (100MB).
var MaxFileSize int64 = 100 * 1024 * 1024

// ContextCheckInterval is how many rows a source decodes between context checks.
var ContextCheckInterval = 100

// Upload errors.
var (
	ErrFileTooLarge       = errors.New("file too large")
	ErrUnsupportedFile    = errors.New("unsupported file type")
	ErrEmptyFile          = errors.New("file is empty")
	ErrUploadNameRequired = errors.New("file name is required")
)

// UploadResult describes a completed upload.
type UploadResult struct {
	UploadID string        `json:"uploadId"`
	FileName string        `json:"fileName"`
	Kind     string        `json:"kind"`
	Bytes    int64         `json:"bytes"`
	Rows     int           `json:"rows"`
	Columns  []string      `json:"columns"`
	Warnings []Warning     `json:"warnings,omitempty"`
	Duration time.Duration `json:"durationNs"`
}

// Upload stores r as a new dataset file and makes it the active source once
// it loads successfully. size is the declared length, or -1 if unknown.
func (s *Service) Upload(ctx context.Context, fileName string, r io.Reader, size int64) (*UploadResult, error) {
	if err := s.uploadLimiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.uploadLimiter.Release()

	startTime := time.Now()

	fileName = filepath.Base(strings.TrimSpace(fileName))
	if fileName == "" || fileName == "." || fileName == string(filepath.Separator) {
		return nil, ErrUploadNameRequired
	}
	if size > s.cfg.MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds %dMB limit", ErrFileTooLarge, size, s.cfg.MaxFileSize/(1024*1024))
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	if _, err := ResolveSource(fileName); err != nil {
		return nil, fmt.Errorf("%w: %q (accepted: %s)", ErrUnsupportedFile, ext, strings.Join(UploadExtensions(), ", "))
	}

	if err := s.ensureUploadDir(); err != nil {
		return nil, err
	}

	uploadID := uuid.New().String()
	path := filepath.Join(s.cfg.UploadDir, uploadID+ext)

	written, err := s.storeUpload(path, r, size)
	if err != nil {
		os.Remove(path)
		return nil, err
	}

	active, err := openActive(SourceSpec{Location: path, Table: s.cfg.Source.Table}, uploadID, fileName)
	if err != nil {
		os.Remove(path)
		return nil, err
	}

	ds, err := s.datasetFor(ctx, active)
	if err != nil {
		active.src.Close()
		os.Remove(path)
		return nil, err
	}

	// Requests that started before the swap may still read the old source.
	if prev := s.activate(active); prev != nil {
		s.retire(prev)
	}

	result := &UploadResult{
		UploadID: uploadID,
		FileName: fileName,
		Kind:     active.kind,
		Bytes:    written,
		Rows:     ds.NumRows(),
		Columns:  ds.Columns(),
		Warnings: ds.Warnings(),
		Duration: time.Since(startTime),
	}

	slog.Info("upload completed",
		"upload_id", uploadID,
		"file", fileName,
		"bytes", written,
		"rows", result.Rows,
		"duration_ms", result.Duration.Milliseconds(),
	)

	return result, nil
}

// storeUpload copies r to path, enforcing the size limit while streaming.
// size is the declared length used to report how far a failed copy got.
func (s *Service) storeUpload(path string, r io.Reader, size int64) (int64, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create upload file: %w", err)
	}

	counter := NewStreamingCountingReader(io.LimitReader(r, s.cfg.MaxFileSize+1), max(size, 0))
	_, copyErr := io.Copy(f, counter)
	closeErr := f.Close()

	switch {
	case copyErr != nil:
		slog.Warn("upload interrupted",
			"bytes", counter.BytesRead,
			"progress_pct", counter.Progress(),
			"error", copyErr,
		)
		return 0, fmt.Errorf("write upload file: %w", copyErr)
	case closeErr != nil:
		return 0, fmt.Errorf("write upload file: %w", closeErr)
	case counter.BytesRead > s.cfg.MaxFileSize:
		return 0, fmt.Errorf("%w: exceeds %dMB limit", ErrFileTooLarge, s.cfg.MaxFileSize/(1024*1024))
	case counter.BytesRead == 0:
		return 0, ErrEmptyFile
	}
	return counter.BytesRead, nil
}
