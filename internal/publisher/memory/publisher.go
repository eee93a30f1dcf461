// Package memory records notifications in-process for dry runs and tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Notice is one recorded publication, serialized the same way Pub/Sub would see it.
type Notice struct {
	ID    string
	Topic string
	Data  []byte
}

// Publisher stores notices for inspection.
type Publisher struct {
	mu      sync.RWMutex
	notices []Notice
}

// New returns an empty Publisher.
func New() *Publisher {
	return &Publisher{}
}

// Publish marshals payload to JSON and records it under a sequential id.
func (p *Publisher) Publish(_ context.Context, topic string, payload any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	id := fmt.Sprintf("memory-%d", len(p.notices)+1)
	p.notices = append(p.notices, Notice{ID: id, Topic: topic, Data: data})
	return id, nil
}

// Notices returns the notices recorded for topic, or every notice when topic is empty.
func (p *Publisher) Notices(topic string) []Notice {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Notice, 0, len(p.notices))
	for _, n := range p.notices {
		if topic == "" || n.Topic == topic {
			out = append(out, n)
		}
	}
	return out
}
