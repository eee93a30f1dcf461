// Package memory keeps snapshots in-memory for dry runs and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// BlobStore stores objects per bucket and returns pseudo URIs.
type BlobStore struct {
	mu      sync.RWMutex
	buckets map[string]map[string][]byte
}

// NewBlobStore creates a new in-memory blob store.
func NewBlobStore() *BlobStore {
	return &BlobStore{
		buckets: make(map[string]map[string][]byte),
	}
}

// ExistsUnderPrefix reports whether any key in bucket starts with prefix.
func (s *BlobStore) ExistsUnderPrefix(_ context.Context, bucket, prefix string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for key := range s.buckets[bucket] {
		if strings.HasPrefix(key, prefix) {
			return true, nil
		}
	}
	return false, nil
}

// PutObject persists a copy of data and returns a memory:// URI.
func (s *BlobStore) PutObject(_ context.Context, bucket, key, _ string, data []byte) (string, error) {
	if strings.TrimSpace(bucket) == "" || strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("bucket and key are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	objects, ok := s.buckets[bucket]
	if !ok {
		objects = make(map[string][]byte)
		s.buckets[bucket] = objects
	}
	objects[key] = append([]byte(nil), data...)
	return fmt.Sprintf("memory://%s/%s", bucket, key), nil
}

// Object returns a copy of a stored object.
func (s *BlobStore) Object(bucket, key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.buckets[bucket][key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), data...), true
}

// Keys lists the keys stored in bucket in sorted order.
func (s *BlobStore) Keys(bucket string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.buckets[bucket]))
	for key := range s.buckets[bucket] {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
