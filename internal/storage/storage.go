package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotExist is returned by Get when no object is stored under the key.
var ErrNotExist = errors.New("object does not exist")

// Object describes one stored object as returned by a listing.
type Object struct {
	Key      string
	Uploaded time.Time
}

// ListPage is one page of a prefix listing. When Truncated is true the
// caller must issue another List call with Cursor to get the rest; a single
// page never guarantees the complete prefix.
type ListPage struct {
	Objects   []Object
	Cursor    string
	Truncated bool
}

// ObjectStore is the capability the application needs from a key-addressed
// blob store.
type ObjectStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
	List(ctx context.Context, prefix, cursor string) (*ListPage, error)
	Delete(ctx context.Context, key string) error
	DeleteBatch(ctx context.Context, keys []string) error
}
