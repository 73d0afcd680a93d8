package registration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medreg/internal/core/apperror"
	"medreg/internal/core/id"
	"medreg/internal/domain/bed"
	"medreg/internal/domain/doctor"
	"medreg/internal/domain/patient"
	"medreg/internal/domain/polyclinic"
)

// testStore backs every fake repository in this file. One mutex serializes
// transactions the way the database serializes contended row locks, and a
// snapshot taken at transaction start provides rollback over registrations,
// beds and counters together, so the atomicity tests observe the same
// all-or-nothing behavior the real store gives.
type testStore struct {
	mu       sync.Mutex
	regs     map[id.ID]Registration
	beds     map[id.ID]bed.Bed
	counters map[string]int64

	failCreate bool
}

func newTestStore() *testStore {
	return &testStore{
		regs:     make(map[id.ID]Registration),
		beds:     make(map[id.ID]bed.Bed),
		counters: make(map[string]int64),
	}
}

type testTxKey struct{}

type testTxManager struct {
	store *testStore
}

func (m *testTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(testTxKey{}) != nil {
		return fn(ctx)
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	regs := make(map[id.ID]Registration, len(m.store.regs))
	for k, v := range m.store.regs {
		regs[k] = v
	}
	beds := make(map[id.ID]bed.Bed, len(m.store.beds))
	for k, v := range m.store.beds {
		beds[k] = v
	}
	counters := make(map[string]int64, len(m.store.counters))
	for k, v := range m.store.counters {
		counters[k] = v
	}

	err := fn(context.WithValue(ctx, testTxKey{}, true))
	if err != nil {
		m.store.regs = regs
		m.store.beds = beds
		m.store.counters = counters
	}
	return err
}

// storeGenerator increments counters inside the store so a rolled-back
// transaction never spends a number.
type storeGenerator struct {
	store *testStore
}

func (g *storeGenerator) Next(ctx context.Context, scopeKey string) (int64, error) {
	g.store.counters[scopeKey]++
	return g.store.counters[scopeKey], nil
}

type regRepo struct {
	store *testStore
}

func (r *regRepo) Create(ctx context.Context, reg *Registration) error {
	if r.store.failCreate {
		return errors.New("insert registration: connection reset")
	}
	r.store.regs[reg.ID] = *reg
	return nil
}

func (r *regRepo) get(regID id.ID) (*Registration, error) {
	reg, ok := r.store.regs[regID]
	if !ok {
		return nil, apperror.NewNotFound("registration", regID.String())
	}
	return &reg, nil
}

func (r *regRepo) GetByID(ctx context.Context, regID id.ID) (*Registration, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.get(regID)
}

func (r *regRepo) GetByNumber(ctx context.Context, number string) (*Registration, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, reg := range r.store.regs {
		if reg.Number == number {
			out := reg
			return &out, nil
		}
	}
	return nil, apperror.NewNotFound("registration", number)
}

func (r *regRepo) GetForUpdate(ctx context.Context, regID id.ID) (*Registration, error) {
	// caller holds the store lock via the tx manager
	return r.get(regID)
}

func (r *regRepo) Update(ctx context.Context, reg *Registration) error {
	if _, ok := r.store.regs[reg.ID]; !ok {
		return apperror.NewNotFound("registration", reg.ID.String())
	}
	r.store.regs[reg.ID] = *reg
	return nil
}

func (r *regRepo) List(ctx context.Context, filter ListFilter) ([]Registration, int64, error) {
	var out []Registration
	for _, reg := range r.store.regs {
		if filter.Type != "" && reg.Type != filter.Type {
			continue
		}
		if filter.Status != "" && reg.Status != filter.Status {
			continue
		}
		out = append(out, reg)
	}
	return out, int64(len(out)), nil
}

func (r *regRepo) ActiveByPatient(ctx context.Context, patientID id.ID) ([]Registration, error) {
	var out []Registration
	for _, reg := range r.store.regs {
		if reg.PatientID == patientID && reg.IsActive() {
			out = append(out, reg)
		}
	}
	return out, nil
}

type bedRepo struct {
	store *testStore
}

func (r *bedRepo) get(bedID id.ID) (*bed.Bed, error) {
	b, ok := r.store.beds[bedID]
	if !ok {
		return nil, apperror.NewNotFound("bed", bedID.String())
	}
	return &b, nil
}

func (r *bedRepo) Create(ctx context.Context, b *bed.Bed) error {
	r.store.beds[b.ID] = *b
	return nil
}

func (r *bedRepo) GetByID(ctx context.Context, bedID id.ID) (*bed.Bed, error) {
	return r.get(bedID)
}

func (r *bedRepo) GetForUpdate(ctx context.Context, bedID id.ID) (*bed.Bed, error) {
	return r.get(bedID)
}

func (r *bedRepo) UpdateStatus(ctx context.Context, bedID id.ID, status bed.Status, occupiedAt *time.Time) error {
	b, err := r.get(bedID)
	if err != nil {
		return err
	}
	b.Status = status
	b.OccupiedAt = occupiedAt
	r.store.beds[bedID] = *b
	return nil
}

func (r *bedRepo) Update(ctx context.Context, b *bed.Bed) error {
	r.store.beds[b.ID] = *b
	return nil
}

func (r *bedRepo) Delete(ctx context.Context, bedID id.ID) error {
	delete(r.store.beds, bedID)
	return nil
}

func (r *bedRepo) ListByWard(ctx context.Context, wardID id.ID) ([]bed.Bed, error) {
	return nil, nil
}

func (r *bedRepo) ListAvailable(ctx context.Context) ([]bed.Bed, error) {
	return nil, nil
}

func (r *bedRepo) AvailabilityByWard(ctx context.Context) ([]bed.WardAvailability, error) {
	return nil, nil
}

type patientRepo struct {
	patients map[id.ID]*patient.Patient
}

func (r *patientRepo) Create(ctx context.Context, p *patient.Patient) error { return nil }
func (r *patientRepo) GetByID(ctx context.Context, patientID id.ID) (*patient.Patient, error) {
	if p, ok := r.patients[patientID]; ok {
		return p, nil
	}
	return nil, apperror.NewNotFound("patient", patientID.String())
}
func (r *patientRepo) GetByMedicalRecordNumber(ctx context.Context, mrn string) (*patient.Patient, error) {
	return nil, apperror.NewNotFound("patient", mrn)
}
func (r *patientRepo) Update(ctx context.Context, p *patient.Patient) error { return nil }
func (r *patientRepo) Search(ctx context.Context, filter patient.SearchFilter) ([]patient.Patient, int64, error) {
	return nil, 0, nil
}

type doctorRepo struct {
	doctors map[id.ID]*doctor.Doctor
}

func (r *doctorRepo) Create(ctx context.Context, d *doctor.Doctor) error { return nil }
func (r *doctorRepo) GetByID(ctx context.Context, doctorID id.ID) (*doctor.Doctor, error) {
	if d, ok := r.doctors[doctorID]; ok {
		return d, nil
	}
	return nil, apperror.NewNotFound("doctor", doctorID.String())
}
func (r *doctorRepo) GetByLicense(ctx context.Context, licenseNumber string) (*doctor.Doctor, error) {
	return nil, apperror.NewNotFound("doctor", licenseNumber)
}
func (r *doctorRepo) Update(ctx context.Context, d *doctor.Doctor) error { return nil }
func (r *doctorRepo) List(ctx context.Context, activeOnly bool) ([]doctor.Doctor, error) {
	return nil, nil
}
func (r *doctorRepo) ListByPolyclinic(ctx context.Context, clinicID id.ID) ([]doctor.Doctor, error) {
	return nil, nil
}

type polyclinicRepo struct {
	clinics map[id.ID]*polyclinic.Polyclinic
}

func (r *polyclinicRepo) Create(ctx context.Context, p *polyclinic.Polyclinic) error { return nil }
func (r *polyclinicRepo) GetByID(ctx context.Context, clinicID id.ID) (*polyclinic.Polyclinic, error) {
	if p, ok := r.clinics[clinicID]; ok {
		return p, nil
	}
	return nil, apperror.NewNotFound("polyclinic", clinicID.String())
}
func (r *polyclinicRepo) GetByCode(ctx context.Context, code string) (*polyclinic.Polyclinic, error) {
	return nil, apperror.NewNotFound("polyclinic", code)
}
func (r *polyclinicRepo) Update(ctx context.Context, p *polyclinic.Polyclinic) error { return nil }
func (r *polyclinicRepo) List(ctx context.Context, activeOnly bool) ([]polyclinic.Polyclinic, error) {
	return nil, nil
}

type fixture struct {
	svc   *Service
	store *testStore

	patientID id.ID
	doctorID  id.ID
	clinicID  id.ID
	bedID     id.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := newTestStore()
	txm := &testTxManager{store: store}

	p := patient.NewPatient("Budi Santoso", time.Date(1990, 5, 12, 0, 0, 0, 0, time.UTC), patient.GenderMale, "Jl. Merdeka 1")
	d := doctor.NewDoctor("SIP-001", "dr. Sari Wijaya", "Internal Medicine")
	c := polyclinic.NewPolyclinic("UMUM", "General Clinic")
	b := bed.NewBed(id.New(), "A-01")
	store.beds[b.ID] = *b

	svc := NewService(
		&regRepo{store: store},
		&patientRepo{patients: map[id.ID]*patient.Patient{p.ID: p}},
		&doctorRepo{doctors: map[id.ID]*doctor.Doctor{d.ID: d}},
		&polyclinicRepo{clinics: map[id.ID]*polyclinic.Polyclinic{c.ID: c}},
		bed.NewAllocator(&bedRepo{store: store}, txm),
		&storeGenerator{store: store},
		txm,
	)

	return &fixture{
		svc:       svc,
		store:     store,
		patientID: p.ID,
		doctorID:  d.ID,
		clinicID:  c.ID,
		bedID:     b.ID,
	}
}

func (f *fixture) outpatientRequest() OutpatientRequest {
	return OutpatientRequest{
		PatientID:     f.patientID,
		DoctorID:      f.doctorID,
		PolyclinicID:  f.clinicID,
		PaymentMethod: PaymentBPJS,
		Complaint:     "fever",
	}
}

func (f *fixture) inpatientRequest() InpatientRequest {
	return InpatientRequest{
		PatientID:     f.patientID,
		DoctorID:      f.doctorID,
		BedID:         f.bedID,
		PaymentMethod: PaymentCash,
	}
}

func TestRegisterOutpatient_NumberAndQueueFormats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	stamp := time.Now().Format("20060102")

	reg, err := f.svc.RegisterOutpatient(ctx, f.outpatientRequest())
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("RJ-%s-0001", stamp), reg.Number)
	require.NotNil(t, reg.QueueNumber)
	assert.Equal(t, fmt.Sprintf("OP-%s-UMUM-001", stamp), *reg.QueueNumber)
	assert.Equal(t, StatusWaiting, reg.Status)
	assert.Equal(t, TypeOutpatient, reg.Type)

	reg2, err := f.svc.RegisterOutpatient(ctx, f.outpatientRequest())
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("RJ-%s-0002", stamp), reg2.Number)
	assert.Equal(t, fmt.Sprintf("OP-%s-UMUM-002", stamp), *reg2.QueueNumber)
}

func TestRegisterOutpatient_InactiveClinic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inactive := polyclinic.NewPolyclinic("GIGI", "Dental")
	inactive.IsActive = false
	f.svc.polyclinics.(*polyclinicRepo).clinics[inactive.ID] = inactive

	req := f.outpatientRequest()
	req.PolyclinicID = inactive.ID
	_, err := f.svc.RegisterOutpatient(ctx, req)
	require.Error(t, err)

	// no number spent on the failed attempt
	assert.Empty(t, f.store.counters)
}

func TestRegisterOutpatient_UnknownPatient(t *testing.T) {
	f := newFixture(t)

	req := f.outpatientRequest()
	req.PatientID = id.New()
	_, err := f.svc.RegisterOutpatient(context.Background(), req)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestRegisterInpatient_AllocatesBed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	stamp := time.Now().Format("20060102")

	reg, err := f.svc.RegisterInpatient(ctx, f.inpatientRequest())
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("RI-%s-0001", stamp), reg.Number)
	assert.Equal(t, TypeInpatient, reg.Type)
	assert.Equal(t, StatusInProgress, reg.Status)
	require.NotNil(t, reg.AdmissionDate)
	assert.Equal(t, bed.StatusOccupied, f.store.beds[f.bedID].Status)
}

func TestRegisterInpatient_BedTaken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.RegisterInpatient(ctx, f.inpatientRequest())
	require.NoError(t, err)

	_, err = f.svc.RegisterInpatient(ctx, f.inpatientRequest())
	require.Error(t, err)
	assert.True(t, apperror.IsBedUnavailable(err))
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, string(bed.StatusOccupied), appErr.Details["current_status"])
}

func TestRegisterInpatient_RollbackFreesBedAndNumber(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	stamp := time.Now().Format("20060102")

	f.store.failCreate = true
	_, err := f.svc.RegisterInpatient(ctx, f.inpatientRequest())
	require.Error(t, err)

	// the failed admission left nothing behind
	assert.Equal(t, bed.StatusAvailable, f.store.beds[f.bedID].Status)
	assert.Empty(t, f.store.counters)
	assert.Empty(t, f.store.regs)

	// retrying succeeds and draws the first number
	f.store.failCreate = false
	reg, err := f.svc.RegisterInpatient(ctx, f.inpatientRequest())
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("RI-%s-0001", stamp), reg.Number)
}

func TestRegisterConcurrent_GaplessNumbers(t *testing.T) {
	const callers = 15

	f := newFixture(t)
	ctx := context.Background()
	stamp := time.Now().Format("20060102")

	var wg sync.WaitGroup
	numbers := make(chan string, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reg, err := f.svc.RegisterOutpatient(ctx, f.outpatientRequest())
			if err != nil {
				t.Errorf("register: %v", err)
				return
			}
			numbers <- reg.Number
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool)
	for n := range numbers {
		require.False(t, seen[n], "duplicate number %s", n)
		seen[n] = true
	}
	for i := 1; i <= callers; i++ {
		want := fmt.Sprintf("RJ-%s-%04d", stamp, i)
		assert.True(t, seen[want], "missing %s", want)
	}
}

func TestDischarge_ReleasesBed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reg, err := f.svc.RegisterInpatient(ctx, f.inpatientRequest())
	require.NoError(t, err)

	out, err := f.svc.Discharge(ctx, reg.ID, "recovered")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, out.Status)
	require.NotNil(t, out.DischargeDate)
	require.NotNil(t, out.Diagnosis)
	assert.Equal(t, "recovered", *out.Diagnosis)
	assert.Equal(t, bed.StatusAvailable, f.store.beds[f.bedID].Status)
}

func TestDischarge_DoubleDischargeIsNoOp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reg, err := f.svc.RegisterInpatient(ctx, f.inpatientRequest())
	require.NoError(t, err)

	first, err := f.svc.Discharge(ctx, reg.ID, "recovered")
	require.NoError(t, err)

	second, err := f.svc.Discharge(ctx, reg.ID, "recovered again")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, second.Status)
	assert.Equal(t, first.DischargeDate.Unix(), second.DischargeDate.Unix())
	assert.Equal(t, bed.StatusAvailable, f.store.beds[f.bedID].Status)
}

func TestDischarge_RejectsOutpatient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reg, err := f.svc.RegisterOutpatient(ctx, f.outpatientRequest())
	require.NoError(t, err)

	_, err = f.svc.Discharge(ctx, reg.ID, "")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "inpatient"))
}

func TestCancel_InpatientReleasesBed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reg, err := f.svc.RegisterInpatient(ctx, f.inpatientRequest())
	require.NoError(t, err)

	out, err := f.svc.Cancel(ctx, reg.ID, "patient left")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, out.Status)
	assert.Equal(t, bed.StatusAvailable, f.store.beds[f.bedID].Status)

	// cancelled registration stays cancelled
	_, err = f.svc.Cancel(ctx, reg.ID, "again")
	require.Error(t, err)
}

func TestOutpatient_StatusProgression(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reg, err := f.svc.RegisterOutpatient(ctx, f.outpatientRequest())
	require.NoError(t, err)

	started, err := f.svc.Start(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, started.Status)

	// starting twice is an invalid transition
	_, err = f.svc.Start(ctx, reg.ID)
	require.Error(t, err)

	done, err := f.svc.Complete(ctx, reg.ID, "common cold")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, done.Status)
	require.NotNil(t, done.Diagnosis)
}

func TestGetByNumber_RejectsMalformed(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetByNumber(context.Background(), "not-a-number")
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestGetByNumber_Found(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reg, err := f.svc.RegisterOutpatient(ctx, f.outpatientRequest())
	require.NoError(t, err)

	got, err := f.svc.GetByNumber(ctx, reg.Number)
	require.NoError(t, err)
	assert.Equal(t, reg.ID, got.ID)
}

type recordingAuditor struct {
	events []string
}

func (a *recordingAuditor) LogEvent(ctx context.Context, entityType string, entityID id.ID, action string, changes map[string]any) error {
	a.events = append(a.events, action)
	return nil
}

func TestWorkflows_EmitAuditEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	auditor := &recordingAuditor{}
	f.svc.SetAuditor(auditor)

	reg, err := f.svc.RegisterInpatient(ctx, f.inpatientRequest())
	require.NoError(t, err)

	_, err = f.svc.Discharge(ctx, reg.ID, "recovered")
	require.NoError(t, err)

	out, err := f.svc.RegisterOutpatient(ctx, f.outpatientRequest())
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, out.ID, "patient left")
	require.NoError(t, err)

	assert.Equal(t, []string{"register", "discharge", "register", "cancel"}, auditor.events)
}
