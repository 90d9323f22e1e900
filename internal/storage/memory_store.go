package storage

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// MemoryStore is an in-memory BlobStore for tests.
type MemoryStore struct {
	mu        sync.RWMutex
	container string
	created   bool
	blobs     map[string][]byte
	types     map[string]string
	calls     MemoryCalls
}

// MemoryCalls tracks method invocations for test verification.
type MemoryCalls struct {
	CreateContainer int
	Upload          int
}

// NewMemoryStore creates an empty store for container.
func NewMemoryStore(container string) *MemoryStore {
	return &MemoryStore{
		container: container,
		blobs:     make(map[string][]byte),
		types:     make(map[string]string),
	}
}

func (m *MemoryStore) Container() string { return m.container }

func (m *MemoryStore) CreateContainer(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.CreateContainer++
	m.created = true
	return nil
}

func (m *MemoryStore) Upload(ctx context.Context, name string, r io.ReadSeeker, opts UploadOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read blob: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Upload++
	if !m.created {
		return fmt.Errorf("container %s does not exist", m.container)
	}
	if _, ok := m.blobs[name]; ok && !opts.Overwrite {
		return fmt.Errorf("%w: %s/%s", ErrBlobExists, m.container, name)
	}
	m.blobs[name] = data
	m.types[name] = opts.ContentType
	return nil
}

func (m *MemoryStore) URL(name string) string {
	return "memory://" + m.container + "/" + name
}

// Blob returns the stored bytes for name.
func (m *MemoryStore) Blob(name string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.blobs[name]
	return b, ok
}

// ContentType returns the content type recorded for name.
func (m *MemoryStore) ContentType(name string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.types[name]
}

// Calls returns the invocation counters.
func (m *MemoryStore) Calls() MemoryCalls {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}
