package filestore

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/abcretail/storefront/pkg/models"
)

type memoryFile struct {
	data     []byte
	modified time.Time
}

// Memory is the in-process Store used by tests.
type Memory struct {
	mu    sync.RWMutex
	files map[string]map[string]memoryFile
}

func NewMemory() *Memory {
	return &Memory{files: make(map[string]map[string]memoryFile)}
}

func (m *Memory) Upload(ctx context.Context, dir, name string, content []byte) error {
	if len(content) == 0 {
		return errors.New("file content is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.files[dir] == nil {
		m.files[dir] = make(map[string]memoryFile)
	}
	m.files[dir][name] = memoryFile{data: content, modified: time.Now().UTC()}
	return nil
}

func (m *Memory) Download(ctx context.Context, dir, name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[dir][name]
	if !ok {
		return nil, ErrNotFound
	}
	return f.data, nil
}

func (m *Memory) List(ctx context.Context, dir string) ([]models.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var files []models.FileInfo
	for name, f := range m.files[dir] {
		files = append(files, models.FileInfo{
			FileName:     name,
			FileSize:     int64(len(f.data)),
			LastModified: f.modified,
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].FileName < files[j].FileName })
	return files, nil
}

func (m *Memory) Delete(ctx context.Context, dir, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[dir][name]; !ok {
		return false, nil
	}
	delete(m.files[dir], name)
	return true, nil
}
