package storage

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-memory ObjectStore used by tests and local
// development. Listing is paginated like a real store: at most PageSize
// objects per page, resumable via the returned cursor.
type MemoryStore struct {
	mu       sync.Mutex
	objects  map[string]memObject
	PageSize int
}

type memObject struct {
	data        []byte
	contentType string
	uploaded    time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects:  make(map[string]memObject),
		PageSize: 1000,
	}
}

// Get returns the stored object contents or ErrNotExist
func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	obj, ok := m.objects[key]
	if !ok {
		return nil, ErrNotExist
	}
	data := make([]byte, len(obj.data))
	copy(data, obj.data)
	return data, nil
}

// Put stores the body under key
func (m *MemoryStore) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = memObject{
		data:        data,
		contentType: contentType,
		uploaded:    time.Now().UTC(),
	}
	return nil
}

// List returns one page of objects under prefix in key order. The cursor is
// the last key of the previous page.
func (m *MemoryStore) List(ctx context.Context, prefix, cursor string) (*ListPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var keys []string
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) && key > cursor {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	page := &ListPage{}
	for _, key := range keys {
		if len(page.Objects) == m.PageSize {
			page.Truncated = true
			page.Cursor = page.Objects[len(page.Objects)-1].Key
			break
		}
		page.Objects = append(page.Objects, Object{
			Key:      key,
			Uploaded: m.objects[key].uploaded,
		})
	}
	return page, nil
}

// Delete removes a single object; deleting a missing key is not an error
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// DeleteBatch removes all given keys
func (m *MemoryStore) DeleteBatch(ctx context.Context, keys []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.objects, key)
	}
	return nil
}

// ContentType returns the content type an object was stored with
func (m *MemoryStore) ContentType(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.objects[key].contentType
}

// Len returns the number of stored objects
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
