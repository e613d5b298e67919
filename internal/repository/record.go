package repository

import (
	"context"
	"errors"

	"datapost/internal/model"
)

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (postgres, bolt) inside this directory.

var (
	// ErrNotFound is returned when no record has the requested ID.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a record with the same title and type tag
	// already exists in the collection.
	ErrDuplicate = errors.New("record already exists")
)

// MatchMode selects how RecordQuery.Title is compared with record titles.
type MatchMode string

const (
	// MatchSubstring matches records whose title contains the query title.
	MatchSubstring MatchMode = "substring"
	// MatchExact matches records whose title equals the query title.
	MatchExact MatchMode = "exact"
)

// DefaultQueryLimit caps lookups. Two is enough to notice that a lookup is
// ambiguous without reading the whole collection.
const DefaultQueryLimit = 2

// RecordQuery filters records by title and type tag.
type RecordQuery struct {
	Title   string
	TypeTag string
	Match   MatchMode
	// Limit caps the result; DefaultQueryLimit when <= 0.
	Limit int
}

// EffectiveLimit returns the limit the query runs with.
func (q RecordQuery) EffectiveLimit() int {
	if q.Limit <= 0 {
		return DefaultQueryLimit
	}
	return q.Limit
}

// RecordRepository defines data access for records in one collection.
// Implementations hold persistence only.
type RecordRepository interface {
	// Insert stores a new record. The caller provides ID, timestamps and status.
	// Returns ErrDuplicate when title and type tag are already taken.
	Insert(ctx context.Context, rec *model.Record) (*model.Record, error)

	// FindByID returns a record by its ID, or ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.Record, error)

	// Update rewrites title and content of an existing record, or returns ErrNotFound.
	// The type tag is never changed.
	Update(ctx context.Context, id, title, content string) error

	// Query returns at most q.EffectiveLimit() records matching q, newest first.
	Query(ctx context.Context, q RecordQuery) ([]model.Record, error)

	// Delete removes a record by ID. It returns nil if the record did not exist.
	Delete(ctx context.Context, id string) error
}
