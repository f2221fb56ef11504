package storage

import (
	"context"
	"path"
	"sync"
)

// MemoryStore keeps images in memory. It is used by tests and safe for
// concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	images map[string]Image
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{images: make(map[string]Image)}
}

func (m *MemoryStore) Save(_ context.Context, category string, img Image) (string, error) {
	if err := validCategory(category); err != nil {
		return "", err
	}

	ref := path.Join(uploadsDir, category, newName(img))

	m.mu.Lock()
	defer m.mu.Unlock()
	m.images[ref] = img
	return ref, nil
}

func (m *MemoryStore) Delete(_ context.Context, ref string) error {
	clean, err := cleanRef(ref)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.images, clean)
	return nil
}

// Has reports whether ref is stored.
func (m *MemoryStore) Has(ref string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.images[ref]
	return ok
}

// Len returns the number of stored images.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.images)
}
