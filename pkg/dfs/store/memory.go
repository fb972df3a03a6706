package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/dfs/pkg/dfs"
)

// MemoryStore is an in-memory spec store for tests and one-shot tools.
// Data is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	specs  map[string][]revision // name -> revisions, oldest first
	closed bool
}

type revision struct {
	info Info
	data []byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{specs: make(map[string][]revision)}
}

// Save implements Store.
func (m *MemoryStore) Save(name string, s *dfs.Spec) (Info, error) {
	if err := checkName(name); err != nil {
		return Info{}, err
	}
	data, err := encode(s)
	if err != nil {
		return Info{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return Info{}, ErrStoreClosed
	}

	info := Info{
		ID:       uuid.NewString(),
		Name:     name,
		Revision: len(m.specs[name]) + 1,
		Saved:    time.Now().UTC(),
		Size:     int64(len(data)),
	}
	m.specs[name] = append(m.specs[name], revision{info: info, data: data})
	return info, nil
}

// Load implements Store.
func (m *MemoryStore) Load(name string) (*dfs.Spec, Info, error) {
	return m.LoadRevision(name, 0)
}

// LoadRevision implements Store. Revision 0 means the latest.
func (m *MemoryStore) LoadRevision(name string, rev int) (*dfs.Spec, Info, error) {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return nil, Info{}, ErrStoreClosed
	}
	revs := m.specs[name]
	if rev == 0 {
		rev = len(revs)
	}
	if rev < 1 || rev > len(revs) {
		m.mu.RUnlock()
		return nil, Info{}, fmt.Errorf("%w: %s revision %d", ErrNotFound, name, rev)
	}
	r := revs[rev-1]
	m.mu.RUnlock()

	s, err := dfs.FromJSON(r.data)
	if err != nil {
		return nil, Info{}, fmt.Errorf("decode %s revision %d: %w", name, rev, err)
	}
	return s, r.info, nil
}

// List implements Store.
func (m *MemoryStore) List() ([]Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	infos := make([]Info, 0, len(m.specs))
	for _, revs := range m.specs {
		infos = append(infos, revs[len(revs)-1].info)
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos, nil
}

// History implements Store.
func (m *MemoryStore) History(name string) ([]Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	revs := m.specs[name]
	infos := make([]Info, len(revs))
	for i, r := range revs {
		infos[i] = r.info
	}
	return infos, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	delete(m.specs, name)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.specs = nil
	return nil
}
