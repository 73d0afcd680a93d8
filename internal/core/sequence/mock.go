package sequence

import (
	"context"
	"sync"
)

// MockGenerator is a test implementation of Generator.
// Use in unit tests to avoid database dependencies. Counters are kept
// in-memory per scope key, safe for concurrent use.
type MockGenerator struct {
	// NextFunc overrides the default in-memory behavior when set.
	NextFunc func(ctx context.Context, scopeKey string) (int64, error)

	mu       sync.Mutex
	counters map[string]int64
}

// Next implements Generator.
func (m *MockGenerator) Next(ctx context.Context, scopeKey string) (int64, error) {
	if m.NextFunc != nil {
		return m.NextFunc(ctx, scopeKey)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counters == nil {
		m.counters = make(map[string]int64)
	}
	m.counters[scopeKey]++
	return m.counters[scopeKey], nil
}

// Ensure compile-time interface compliance.
var _ Generator = (*MockGenerator)(nil)
