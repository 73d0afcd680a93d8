package bed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medreg/internal/core/apperror"
	"medreg/internal/core/id"
)

// fakeStore emulates the transactional store. One mutex serializes
// transactions the way row locks serialize them on a single contended bed,
// and a snapshot taken at transaction start provides rollback.
type fakeStore struct {
	mu   sync.Mutex
	beds map[id.ID]Bed
}

func newFakeStore(beds ...*Bed) *fakeStore {
	s := &fakeStore{beds: make(map[id.ID]Bed)}
	for _, b := range beds {
		s.beds[b.ID] = *b
	}
	return s
}

type fakeTxKey struct{}

type fakeTxManager struct {
	store *fakeStore
}

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	// nested call joins the outer transaction
	if ctx.Value(fakeTxKey{}) != nil {
		return fn(ctx)
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	snapshot := make(map[id.ID]Bed, len(m.store.beds))
	for k, v := range m.store.beds {
		snapshot[k] = v
	}

	err := fn(context.WithValue(ctx, fakeTxKey{}, true))
	if err != nil {
		m.store.beds = snapshot
	}
	return err
}

type fakeRepo struct {
	store *fakeStore
}

func (r *fakeRepo) get(bedID id.ID) (*Bed, error) {
	b, ok := r.store.beds[bedID]
	if !ok {
		return nil, apperror.NewNotFound("bed", bedID.String())
	}
	return &b, nil
}

func (r *fakeRepo) Create(ctx context.Context, b *Bed) error {
	r.store.beds[b.ID] = *b
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, bedID id.ID) (*Bed, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.get(bedID)
}

func (r *fakeRepo) GetForUpdate(ctx context.Context, bedID id.ID) (*Bed, error) {
	// caller holds the store lock via the tx manager
	return r.get(bedID)
}

func (r *fakeRepo) UpdateStatus(ctx context.Context, bedID id.ID, status Status, occupiedAt *time.Time) error {
	b, err := r.get(bedID)
	if err != nil {
		return err
	}
	b.Status = status
	b.OccupiedAt = occupiedAt
	b.UpdatedAt = time.Now()
	r.store.beds[bedID] = *b
	return nil
}

func (r *fakeRepo) Update(ctx context.Context, b *Bed) error {
	r.store.beds[b.ID] = *b
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, bedID id.ID) error {
	delete(r.store.beds, bedID)
	return nil
}

func (r *fakeRepo) ListByWard(ctx context.Context, wardID id.ID) ([]Bed, error) {
	var out []Bed
	for _, b := range r.store.beds {
		if b.WardID == wardID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListAvailable(ctx context.Context) ([]Bed, error) {
	var out []Bed
	for _, b := range r.store.beds {
		if b.Status == StatusAvailable {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeRepo) AvailabilityByWard(ctx context.Context) ([]WardAvailability, error) {
	return nil, nil
}

func newAllocatorWithBed(b *Bed) (*Allocator, *fakeStore) {
	store := newFakeStore(b)
	return NewAllocator(&fakeRepo{store: store}, &fakeTxManager{store: store}), store
}

func TestAllocate_Success(t *testing.T) {
	b := NewBed(id.New(), "A-01")
	alloc, store := newAllocatorWithBed(b)

	got, err := alloc.Allocate(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusOccupied, got.Status)
	require.NotNil(t, got.OccupiedAt)
	assert.Equal(t, StatusOccupied, store.beds[b.ID].Status)
}

func TestAllocate_MutualExclusion(t *testing.T) {
	const callers = 10

	b := NewBed(id.New(), "A-01")
	alloc, _ := newAllocatorWithBed(b)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := alloc.Allocate(ctx, b.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var successes, unavailable int
	for err := range errs {
		switch {
		case err == nil:
			successes++
		case apperror.IsBedUnavailable(err):
			unavailable++
			// the loser observed the state after the winner committed
			appErr, _ := apperror.AsAppError(err)
			assert.Equal(t, string(StatusOccupied), appErr.Details["current_status"])
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, successes, "exactly one caller wins the bed")
	assert.Equal(t, callers-1, unavailable)
}

func TestAllocate_RejectsOutOfServiceBeds(t *testing.T) {
	for _, status := range []Status{StatusMaintenance, StatusReserved, StatusOccupied} {
		t.Run(string(status), func(t *testing.T) {
			b := NewBed(id.New(), "B-02")
			b.Status = status
			alloc, store := newAllocatorWithBed(b)

			_, err := alloc.Allocate(context.Background(), b.ID)
			require.Error(t, err)
			assert.True(t, apperror.IsBedUnavailable(err))
			assert.Equal(t, status, store.beds[b.ID].Status, "status unchanged")
		})
	}
}

func TestAllocate_NotFound(t *testing.T) {
	alloc, _ := newAllocatorWithBed(NewBed(id.New(), "A-01"))

	_, err := alloc.Allocate(context.Background(), id.New())
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestRelease_Idempotent(t *testing.T) {
	b := NewBed(id.New(), "A-01")
	alloc, store := newAllocatorWithBed(b)
	ctx := context.Background()

	_, err := alloc.Allocate(ctx, b.ID)
	require.NoError(t, err)

	// releasing twice in a row never errors and leaves the bed available
	for i := 0; i < 2; i++ {
		got, err := alloc.Release(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusAvailable, got.Status)
		assert.Nil(t, got.OccupiedAt)
	}
	assert.Equal(t, StatusAvailable, store.beds[b.ID].Status)
}

func TestRelease_RefusesOutOfServiceBeds(t *testing.T) {
	b := NewBed(id.New(), "C-03")
	b.Status = StatusMaintenance
	alloc, store := newAllocatorWithBed(b)

	_, err := alloc.Release(context.Background(), b.ID)
	require.Error(t, err)
	assert.Equal(t, StatusMaintenance, store.beds[b.ID].Status)
}

func TestAllocate_RollbackOnComposedFailure(t *testing.T) {
	b := NewBed(id.New(), "A-01")
	store := newFakeStore(b)
	txm := &fakeTxManager{store: store}
	alloc := NewAllocator(&fakeRepo{store: store}, txm)
	ctx := context.Background()

	// registration workflow: allocate + create record in one transaction;
	// record creation fails after a successful allocate
	err := txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := alloc.Allocate(ctx, b.ID); err != nil {
			return err
		}
		return errors.New("create registration: boom")
	})
	require.Error(t, err)

	// the bed must not be stuck occupied
	assert.Equal(t, StatusAvailable, store.beds[b.ID].Status)

	// and is still allocatable afterwards
	got, err := alloc.Allocate(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusOccupied, got.Status)
}

func TestIsAvailable_Advisory(t *testing.T) {
	b := NewBed(id.New(), "A-01")
	alloc, _ := newAllocatorWithBed(b)
	ctx := context.Background()

	ok, err := alloc.IsAvailable(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = alloc.Allocate(ctx, b.ID)
	require.NoError(t, err)

	ok, err = alloc.IsAvailable(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetServiceStatus(t *testing.T) {
	b := NewBed(id.New(), "A-01")
	alloc, store := newAllocatorWithBed(b)
	ctx := context.Background()

	got, err := alloc.SetServiceStatus(ctx, b.ID, StatusMaintenance)
	require.NoError(t, err)
	assert.Equal(t, StatusMaintenance, got.Status)

	// a bed in maintenance is not an allocation target
	_, err = alloc.Allocate(ctx, b.ID)
	require.Error(t, err)

	_, err = alloc.SetServiceStatus(ctx, b.ID, StatusAvailable)
	require.NoError(t, err)
	assert.Equal(t, StatusAvailable, store.beds[b.ID].Status)
}

func TestSetServiceStatus_RefusesOccupied(t *testing.T) {
	b := NewBed(id.New(), "A-01")
	alloc, _ := newAllocatorWithBed(b)
	ctx := context.Background()

	_, err := alloc.Allocate(ctx, b.ID)
	require.NoError(t, err)

	_, err = alloc.SetServiceStatus(ctx, b.ID, StatusMaintenance)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeBedOccupied, appErr.Code)
}
