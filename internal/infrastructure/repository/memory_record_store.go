package repository

import (
	"context"
	"sort"
	"sync"

	domainRepo "github.com/sangkips/salespos-api/internal/domain/repository"
)

type memoryRecordStore struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

// NewMemoryRecordStore creates a volatile record store, used for tests and
// the "memory" store driver.
func NewMemoryRecordStore() domainRepo.RecordStore {
	return &memoryRecordStore{data: make(map[string]map[string][]byte)}
}

func (s *memoryRecordStore) GetAll(ctx context.Context, collection string) ([]domainRepo.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bucket := s.data[collection]
	keys := make([]string, 0, len(bucket))
	for k := range bucket {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	records := make([]domainRepo.Record, 0, len(keys))
	for _, k := range keys {
		records = append(records, domainRepo.Record{Key: k, Value: copyBytes(bucket[k])})
	}
	return records, nil
}

func (s *memoryRecordStore) Get(ctx context.Context, collection, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[collection][key]
	if !ok {
		return nil, nil
	}
	return copyBytes(v), nil
}

func (s *memoryRecordStore) Put(ctx context.Context, collection, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket, ok := s.data[collection]
	if !ok {
		bucket = make(map[string][]byte)
		s.data[collection] = bucket
	}
	bucket[key] = copyBytes(value)
	return nil
}

func (s *memoryRecordStore) Delete(ctx context.Context, collection, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data[collection], key)
	return nil
}

func (s *memoryRecordStore) Clear(ctx context.Context, collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, collection)
	return nil
}

func (s *memoryRecordStore) ReplaceAll(ctx context.Context, snapshot map[string][]domainRepo.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for collection, records := range snapshot {
		bucket := make(map[string][]byte, len(records))
		for _, r := range records {
			bucket[r.Key] = copyBytes(r.Value)
		}
		s.data[collection] = bucket
	}
	return nil
}

func (s *memoryRecordStore) Close() error {
	return nil
}
