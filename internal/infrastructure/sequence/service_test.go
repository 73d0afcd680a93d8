package sequence

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// mockCounterStore simulates the seq_counters table. A per-scope mutex plays
// the role of the row lock: acquired on SELECT ... FOR UPDATE, released when
// the UPDATE lands, so interleavings between concurrent callers match what
// the real store serializes.
type mockCounterStore struct {
	mu   sync.Mutex
	rows map[string]int64
	lock map[string]*sync.Mutex
}

func newMockCounterStore() *mockCounterStore {
	return &mockCounterStore{
		rows: make(map[string]int64),
		lock: make(map[string]*sync.Mutex),
	}
}

func (m *mockCounterStore) rowLock(key string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lock[key]; !ok {
		m.lock[key] = &sync.Mutex{}
	}
	return m.lock[key]
}

func (m *mockCounterStore) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	key := args[0].(string)

	switch {
	case strings.Contains(sql, "DO NOTHING"):
		m.mu.Lock()
		if _, ok := m.rows[key]; !ok {
			m.rows[key] = 0
		}
		m.mu.Unlock()
	case strings.Contains(sql, "UPDATE seq_counters"):
		m.mu.Lock()
		m.rows[key] = args[1].(int64)
		m.mu.Unlock()
		// write done, release the row lock
		m.rowLock(key).Unlock()
	}

	return pgconn.CommandTag{}, nil
}

type mockRow struct {
	val int64
}

func (r *mockRow) Scan(dest ...any) error {
	*(dest[0].(*int64)) = r.val
	return nil
}

func (m *mockCounterStore) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	key := args[0].(string)

	// SELECT ... FOR UPDATE blocks until the lock holder writes
	m.rowLock(key).Lock()

	m.mu.Lock()
	val := m.rows[key]
	m.mu.Unlock()
	return &mockRow{val: val}
}

func TestNext_Sequential(t *testing.T) {
	store := newMockCounterStore()
	svc := NewWithQuerier(store)
	ctx := context.Background()

	for want := int64(1); want <= 5; want++ {
		got, err := svc.Next(ctx, "RJ:20260113")
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if got != want {
			t.Errorf("expected %d, got %d", want, got)
		}
	}
}

func TestNext_IndependentScopes(t *testing.T) {
	store := newMockCounterStore()
	svc := NewWithQuerier(store)
	ctx := context.Background()

	if _, err := svc.Next(ctx, "RJ:20260113"); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	got, err := svc.Next(ctx, "OP:20260113:UMUM")
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if got != 1 {
		t.Errorf("expected new scope to start at 1, got %d", got)
	}
}

func TestNext_Concurrent(t *testing.T) {
	const workers = 20

	store := newMockCounterStore()
	svc := NewWithQuerier(store)
	ctx := context.Background()

	results := make(chan int64, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := svc.Next(ctx, "RM:20260113")
			if err != nil {
				t.Errorf("Next failed: %v", err)
				return
			}
			results <- n
		}()
	}
	wg.Wait()
	close(results)

	// results must be exactly {1..workers}: no gaps, no duplicates
	seen := make(map[int64]bool)
	for n := range results {
		if seen[n] {
			t.Errorf("duplicate sequence number %d", n)
		}
		seen[n] = true
	}
	for want := int64(1); want <= workers; want++ {
		if !seen[want] {
			t.Errorf("missing sequence number %d", want)
		}
	}
}

func TestNext_EmptyScopeKey(t *testing.T) {
	svc := NewWithQuerier(newMockCounterStore())

	if _, err := svc.Next(context.Background(), ""); err == nil {
		t.Error("expected error for empty scope key, got none")
	}
}
