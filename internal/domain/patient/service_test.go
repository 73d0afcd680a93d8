package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medreg/internal/core/apperror"
	"medreg/internal/core/id"
	"medreg/internal/core/sequence"
)

type patientStore struct {
	patients   map[id.ID]Patient
	counters   map[string]int64
	failCreate bool
}

func newPatientStore() *patientStore {
	return &patientStore{
		patients: make(map[id.ID]Patient),
		counters: make(map[string]int64),
	}
}

type storeRepo struct {
	store *patientStore
}

func (r *storeRepo) Create(ctx context.Context, p *Patient) error {
	if r.store.failCreate {
		return apperror.NewInternal(errors.New("insert failed"))
	}
	r.store.patients[p.ID] = *p
	return nil
}

func (r *storeRepo) GetByID(ctx context.Context, patientID id.ID) (*Patient, error) {
	p, ok := r.store.patients[patientID]
	if !ok {
		return nil, apperror.NewNotFound("patient", patientID.String())
	}
	return &p, nil
}

func (r *storeRepo) GetByMedicalRecordNumber(ctx context.Context, mrn string) (*Patient, error) {
	for _, p := range r.store.patients {
		if p.MedicalRecordNumber == mrn {
			return &p, nil
		}
	}
	return nil, apperror.NewNotFound("patient", mrn)
}

func (r *storeRepo) Update(ctx context.Context, p *Patient) error {
	if _, ok := r.store.patients[p.ID]; !ok {
		return apperror.NewNotFound("patient", p.ID.String())
	}
	r.store.patients[p.ID] = *p
	return nil
}

func (r *storeRepo) Search(ctx context.Context, filter SearchFilter) ([]Patient, int64, error) {
	var out []Patient
	for _, p := range r.store.patients {
		if filter.Query == "" || strings.Contains(p.Name, filter.Query) {
			out = append(out, p)
		}
	}
	return out, int64(len(out)), nil
}

// storeTx snapshots patients and counters together so a rollback covers
// the insert and the drawn number as one unit.
type storeTx struct {
	store *patientStore
}

func (m *storeTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	patientsSnap := make(map[id.ID]Patient, len(m.store.patients))
	for k, v := range m.store.patients {
		patientsSnap[k] = v
	}
	countersSnap := make(map[string]int64, len(m.store.counters))
	for k, v := range m.store.counters {
		countersSnap[k] = v
	}

	if err := fn(ctx); err != nil {
		m.store.patients = patientsSnap
		m.store.counters = countersSnap
		return err
	}
	return nil
}

type storeGen struct {
	store *patientStore
}

func (g *storeGen) Next(ctx context.Context, scopeKey string) (int64, error) {
	g.store.counters[scopeKey]++
	return g.store.counters[scopeKey], nil
}

func newTestService(store *patientStore) *Service {
	return NewService(&storeRepo{store: store}, &storeGen{store: store}, &storeTx{store: store})
}

func validPatient(name string) *Patient {
	return NewPatient(name, time.Date(1990, 5, 20, 0, 0, 0, 0, time.UTC), GenderMale, "Jl. Merdeka 1")
}

func TestCreate_IssuesMedicalRecordNumber(t *testing.T) {
	store := newPatientStore()
	svc := newTestService(store)
	ctx := context.Background()

	stamp := sequence.DateStamp(time.Now())

	first := validPatient("Budi Santoso")
	require.NoError(t, svc.Create(ctx, first))
	assert.Equal(t, fmt.Sprintf("RM-%s-0001", stamp), first.MedicalRecordNumber)

	second := validPatient("Siti Aminah")
	require.NoError(t, svc.Create(ctx, second))
	assert.Equal(t, fmt.Sprintf("RM-%s-0002", stamp), second.MedicalRecordNumber)
}

func TestCreate_RollbackDoesNotSpendNumber(t *testing.T) {
	store := newPatientStore()
	svc := newTestService(store)
	ctx := context.Background()

	store.failCreate = true
	require.Error(t, svc.Create(ctx, validPatient("Budi Santoso")))
	assert.Empty(t, store.patients)
	assert.Empty(t, store.counters)

	// The next create starts over at 0001.
	store.failCreate = false
	p := validPatient("Budi Santoso")
	require.NoError(t, svc.Create(ctx, p))
	stamp := sequence.DateStamp(time.Now())
	assert.Equal(t, fmt.Sprintf("RM-%s-0001", stamp), p.MedicalRecordNumber)
}

func TestCreate_RejectsInvalidPatient(t *testing.T) {
	store := newPatientStore()
	svc := newTestService(store)

	p := validPatient("")
	err := svc.Create(context.Background(), p)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Empty(t, store.counters)
}

func TestUpdate_RejectsMedicalRecordNumberChange(t *testing.T) {
	store := newPatientStore()
	svc := newTestService(store)
	ctx := context.Background()

	p := validPatient("Budi Santoso")
	require.NoError(t, svc.Create(ctx, p))

	p.MedicalRecordNumber = "RM-19990101-0042"
	err := svc.Update(ctx, p)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}
