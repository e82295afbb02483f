// Package memorystorage provides an in-memory storage backend: the jsondb
// cache without a backing file. Used when neither a database DSN nor a
// storage file is configured, and in tests.
package memorystorage

import (
	"context"

	"github.com/patric-chuzhbe/internhub/internal/db/jsondb"
)

// MemoryStorage keeps accounts and the session only for the process lifetime.
type MemoryStorage struct {
	*jsondb.JSONDB
}

// New returns a memory store seeded with the demo accounts.
func New() (*MemoryStorage, error) {
	db, err := jsondb.New("")
	if err != nil {
		return nil, err
	}

	return &MemoryStorage{JSONDB: db}, nil
}

// Close is a no-op: there is nothing to flush.
func (theStorage *MemoryStorage) Close() error {
	return nil
}

// Ping reports storage health; memory is always healthy.
func (theStorage *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}
