package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no entry exists for the requested date.
	ErrNotFound = errors.New("entry not found")
	// ErrUnavailable wraps connectivity failures: the store could not be reached
	// and the operation was not applied.
	ErrUnavailable = errors.New("store unavailable")
)

// Record is a row of the timeboxing_entry table. Schedule holds the stored
// JSON document untouched; shaping it is the schedule package's job.
type Record struct {
	ID            int64
	Date          string
	TopPriorities string
	BrainDump     string
	Schedule      []byte
}

// UpsertResult describes how an upsert landed.
type UpsertResult struct {
	ID      int64
	Created bool
	// Retried is set when the insert lost a race with another writer and
	// the write was applied as an update instead.
	Retried bool
}

// Column is one column of the entry table as reported by the database.
type Column struct {
	Name     string
	Type     string
	Nullable bool
}

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Schema
	Migrate(logFn func(string)) (int, error)
	SchemaVersion() (current int, latest int, err error)
	TableColumns(ctx context.Context) ([]Column, error)
	HasUniqueDate(ctx context.Context) (bool, error)

	// Entries
	GetEntry(ctx context.Context, date string) (Record, error)
	UpsertEntry(ctx context.Context, rec Record) (UpsertResult, error)
	ListEntries(ctx context.Context) ([]Record, error)

	// Utils
	Ping(ctx context.Context) error
	Driver() string
	GetConfigPath() string
}
