package memstore

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"mlcatalog/internal/domain"
)

// MemoryStore is an in-memory catalog used by tests and dry runs.
type MemoryStore struct {
	mu        sync.RWMutex
	functions map[string]domain.EnhancedFunction // fileStem|name
	byFile    map[string][]string
	stats     domain.Stats
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		functions: make(map[string]domain.EnhancedFunction),
		byFile:    make(map[string][]string),
	}
}

func key(fileStem, name string) string {
	return fileStem + "|" + name
}

func (s *MemoryStore) UpsertFunction(fileStem string, fn domain.EnhancedFunction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(fileStem, fn.Name)
	if _, exists := s.functions[k]; !exists {
		s.byFile[fileStem] = append(s.byFile[fileStem], k)
	}
	s.functions[k] = fn
	return nil
}

func (s *MemoryStore) GetFunction(fileStem, name string) (domain.EnhancedFunction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fn, ok := s.functions[key(fileStem, name)]
	if !ok {
		return domain.EnhancedFunction{}, fmt.Errorf("function not found: %s/%s", fileStem, name)
	}
	return fn, nil
}

func (s *MemoryStore) FindByName(name string) ([]domain.EnhancedFunction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.EnhancedFunction
	for k, fn := range s.functions {
		if strings.HasSuffix(k, "|"+name) {
			out = append(out, fn)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListFunctions() ([]domain.EnhancedFunction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.functions))
	for k := range s.functions {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]domain.EnhancedFunction, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.functions[k])
	}
	return out, nil
}

func (s *MemoryStore) DeleteFile(fileStem string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range s.byFile[fileStem] {
		delete(s.functions, k)
	}
	delete(s.byFile, fileStem)
	return nil
}

func (s *MemoryStore) GetStats() (domain.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats, nil
}

func (s *MemoryStore) UpdateStats(stats domain.Stats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = stats
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
