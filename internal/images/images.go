// Package images uploads product and cover images to the object store and
// hands back public download URLs.
package images

import (
	"context"
	"errors"
	"io"
	"sync"
)

var ErrEmptyName = errors.New("object name is required")

// Uploader stores an object and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error)
}

// MemoryUploader keeps uploads in memory. Test and dev use only.
type MemoryUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func NewMemoryUploader() *MemoryUploader {
	return &MemoryUploader{objects: make(map[string][]byte)}
}

func (m *MemoryUploader) Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	if name == "" {
		return "", ErrEmptyName
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	m.objects[name] = data
	m.mu.Unlock()
	return "memory://" + name, nil
}

// Object returns a stored object's bytes, for assertions in tests.
func (m *MemoryUploader) Object(name string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[name]
	return data, ok
}
