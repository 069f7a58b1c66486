package blobstore

import (
	"context"
	"errors"
	"strings"
	"sync"
)

type memoryBlob struct {
	contentType string
	data        []byte
}

// Memory is the in-process Store used by tests.
type Memory struct {
	mu      sync.RWMutex
	blobs   map[string]memoryBlob
	baseURL string
}

func NewMemory(baseURL string) *Memory {
	return &Memory{
		blobs:   make(map[string]memoryBlob),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (m *Memory) Upload(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("blob content is empty")
	}
	m.mu.Lock()
	m.blobs[name] = memoryBlob{contentType: contentType, data: data}
	m.mu.Unlock()
	return m.baseURL + "/images/" + name, nil
}

func (m *Memory) Get(ctx context.Context, name string) ([]byte, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	blob, ok := m.blobs[name]
	if !ok {
		return nil, "", ErrNotFound
	}
	return blob.data, blob.contentType, nil
}

func (m *Memory) Delete(ctx context.Context, blobURL string) error {
	m.mu.Lock()
	delete(m.blobs, BlobName(blobURL))
	m.mu.Unlock()
	return nil
}

// Len reports the number of stored blobs.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}
