package core

import (
	"errors"
	"fmt"
)

// ErrSourceUnavailable is returned when the raw input cannot be enumerated at
// all. No partial dataset is produced. Callers must present it distinctly
// from an empty result.
var ErrSourceUnavailable = errors.New("source unavailable")

// ErrExportEmpty is returned when an export is requested for a result with
// no rows. No artifact is produced.
var ErrExportEmpty = errors.New("nothing to export")

// ErrUnknownSource is returned when no registered source type handles a location.
var ErrUnknownSource = errors.New("unknown source type")

// ErrUnknownFormat is returned when no export writer is registered for a format.
var ErrUnknownFormat = errors.New("unknown export format")

// sourceUnavailable wraps err so that errors.Is(err, ErrSourceUnavailable) holds.
func sourceUnavailable(handle string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, handle, err)
}

// WarningKind classifies recoverable load conditions.
type WarningKind string

const (
	// WarningSchemaIncomplete means the Concat search blob could not be
	// synthesized and an all-empty column was substituted.
	WarningSchemaIncomplete WarningKind = "schema_incomplete"

	// WarningHeaderCollision means two raw labels resolved to the same
	// canonical column; the later one was loaded under its raw label.
	WarningHeaderCollision WarningKind = "header_collision"
)

// Warning is a recoverable condition found while building a dataset.
// Warnings never fail a load; they are reported alongside the dataset.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Column  string      `json:"column,omitempty"`
	Message string      `json:"message"`
}
