// Package core provides the business logic for the supplier dashboard.
//
// This package contains all domain logic independent of any UI or transport
// layer. It can be used by web handlers, CLI tools, or tests without
// modification.
//
// # Architecture
//
// The package is organized around several key concepts:
//
//   - Sources: Registered via [RegisterSource], each source type knows how to
//     report a cheap [Identity] and read a [RawTable] (xlsx, csv, sqlite, postgres).
//   - Dataset: The immutable, text-only table built by [LoadDataset]. It carries
//     canonical column names, a search blob column and the shadow index.
//   - Cache: [DatasetCache] keeps datasets by identity with a TTL and
//     single-flight loading.
//   - Service: The main entry point for all operations (evaluate, export, upload).
//
// # Load Pipeline
//
// A dataset is built once per source identity:
//
//  1. The source decodes rows as loosely typed cells ([RawTable])
//  2. Headers are mapped to canonical columns by [CanonicalizeHeaders]
//  3. Every cell is coerced to text; missing cells become ""
//  4. The Concat search blob is kept verbatim or synthesized from all columns
//  5. Normalized shadow columns and option lists are precomputed
//
// After step 5 the dataset never changes. Concurrent readers share it
// without locking; a reload builds a new one.
//
// # Filtering
//
// [Dataset.Evaluate] applies equality filters against the shadow columns and
// then a conjunctive multi-term substring search against the Concat shadow.
// Row order is always preserved.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - SRC001-SRC003: Source errors (unavailable, unknown type, unreadable)
//   - EXP001-EXP002: Export errors (nothing to export, unknown format)
//   - FILE001-FILE003: Upload file errors (size, type, empty)
//   - UPL001-UPL003: Upload errors (busy, cancelled, timeout)
package core
