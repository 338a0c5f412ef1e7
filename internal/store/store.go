// Package store is the persistence adapter: it translates entities into
// document-store operations and back. The process owns a single store
// handle, established once at startup; a failed bring-up leaves the
// handle in place as "unavailable" so the rest of the API stays up.
package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotAvailable is returned by every operation on a handle whose
// connection was never established.
var ErrNotAvailable = errors.New("database not available")

// StorageError wraps any failure talking to the document store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Health is a best-effort snapshot of the store handle, used by the
// diagnostics endpoint. It never carries a hard failure: probe errors
// are folded into Err.
type Health struct {
	Connected   bool
	Database    string
	Collections []string
	Err         error
}

// Store is the adapter contract the endpoint layer depends on.
type Store interface {
	// Create inserts doc into the named collection and returns the
	// store-assigned identifier as text.
	Create(ctx context.Context, collection string, doc interface{}) (string, error)

	// List fetches up to limit documents matching an exact-match filter;
	// an empty filter means an unfiltered scan. Ordering is whatever the
	// store iterates in.
	List(ctx context.Context, collection string, filter map[string]interface{}, limit int64) ([]map[string]interface{}, error)

	// Health reports the live state of the connection handle.
	Health(ctx context.Context) Health
}
