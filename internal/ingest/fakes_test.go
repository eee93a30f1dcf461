package ingest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

type fakeDestinations struct {
	mu        sync.Mutex
	objects   map[string]map[string][]byte
	puts      int
	failList  map[string]error
	failPut   map[string]error
	listCalls int
}

func newFakeDestinations() *fakeDestinations {
	return &fakeDestinations{
		objects:  make(map[string]map[string][]byte),
		failList: make(map[string]error),
		failPut:  make(map[string]error),
	}
}

func (f *fakeDestinations) ExistsUnderPrefix(_ context.Context, bucket, prefix string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if err := f.failList[bucket]; err != nil {
		return false, err
	}
	for key := range f.objects[bucket] {
		if strings.HasPrefix(key, prefix) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDestinations) PutObject(_ context.Context, bucket, key, _ string, data []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failPut[bucket]; err != nil {
		return "", err
	}
	if f.objects[bucket] == nil {
		f.objects[bucket] = make(map[string][]byte)
	}
	f.objects[bucket][key] = append([]byte(nil), data...)
	f.puts++
	return "memory://" + bucket + "/" + key, nil
}

func (f *fakeDestinations) seed(bucket, key string) {
	if f.objects[bucket] == nil {
		f.objects[bucket] = make(map[string][]byte)
	}
	f.objects[bucket][key] = []byte("legacy")
}

func (f *fakeDestinations) keys(bucket string) []string {
	var keys []string
	for key := range f.objects[bucket] {
		keys = append(keys, key)
	}
	return keys
}

type fakeStates struct {
	mu      sync.Mutex
	entries map[string]IngestionState
	gets    int
	puts    int
	failGet error
	failPut error
}

func newFakeStates() *fakeStates {
	return &fakeStates{entries: make(map[string]IngestionState)}
}

func stateKey(seriesID, target string) string {
	return seriesID + "|" + target
}

func (f *fakeStates) Get(_ context.Context, seriesID, target string) (IngestionState, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.failGet != nil {
		return IngestionState{}, false, f.failGet
	}
	st, ok := f.entries[stateKey(seriesID, target)]
	return st, ok, nil
}

func (f *fakeStates) Put(_ context.Context, state IngestionState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPut != nil {
		return f.failPut
	}
	f.puts++
	f.entries[stateKey(state.SeriesID, state.TargetDestination)] = state
	return nil
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

type fakeHasher struct {
	hash string
}

func (h *fakeHasher) Hash([]byte) (string, error) {
	return h.hash, nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []any
	topics   []string
	err      error
}

func (n *fakeNotifier) Publish(_ context.Context, topic string, payload any) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return "", n.err
	}
	n.topics = append(n.topics, topic)
	n.messages = append(n.messages, payload)
	return "msg-1", nil
}

var errBoom = errors.New("boom")
