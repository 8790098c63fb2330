package encounter

import (
	"bytes"
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ehr/patient-journal/internal/domain/dto"
	"github.com/ehr/patient-journal/internal/platform/errs"
)

// -- Mock Repository --

type mockRepo struct {
	encounters map[uuid.UUID]*Encounter
	calls      int
}

func newMockRepo() *mockRepo {
	return &mockRepo{encounters: make(map[uuid.UUID]*Encounter)}
}

func (m *mockRepo) Create(_ context.Context, e *Encounter) error {
	m.calls++
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	cp := *e
	cp.OccurredAt = cp.OccurredAt.Truncate(time.Microsecond)
	m.encounters[e.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Encounter, error) {
	m.calls++
	e, ok := m.encounters[id]
	if !ok {
		return nil, errs.NotFoundf("Encounter not found")
	}
	cp := *e
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, e *Encounter) error {
	m.calls++
	existing, ok := m.encounters[e.ID]
	if !ok {
		return errs.NotFoundf("Encounter not found")
	}
	e.PatientID = existing.PatientID
	e.PractitionerID = existing.PractitionerID
	cp := *e
	cp.OccurredAt = cp.OccurredAt.Truncate(time.Microsecond)
	m.encounters[e.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	m.calls++
	if _, ok := m.encounters[id]; !ok {
		return false, nil
	}
	delete(m.encounters, id)
	return true, nil
}

func (m *mockRepo) filter(keep func(*Encounter) bool) []*Encounter {
	var out []*Encounter
	for _, e := range m.encounters {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.After(out[j].OccurredAt)
		}
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) > 0
	})
	return out
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*Encounter, error) {
	m.calls++
	return m.filter(func(e *Encounter) bool { return e.PatientID == patientID }), nil
}

func (m *mockRepo) ListByPatients(_ context.Context, patientIDs []uuid.UUID) ([]*Encounter, error) {
	m.calls++
	want := make(map[uuid.UUID]bool, len(patientIDs))
	for _, id := range patientIDs {
		want[id] = true
	}
	return m.filter(func(e *Encounter) bool { return want[e.PatientID] }), nil
}

func (m *mockRepo) ListByPractitioner(_ context.Context, practitionerID uuid.UUID) ([]*Encounter, error) {
	m.calls++
	return m.filter(func(e *Encounter) bool { return e.PractitionerID == practitionerID }), nil
}

func (m *mockRepo) ListSince(_ context.Context, since time.Time) ([]*Encounter, error) {
	m.calls++
	return m.filter(func(e *Encounter) bool { return !e.OccurredAt.Before(since) }), nil
}

func (m *mockRepo) CountByPatient(_ context.Context, patientID uuid.UUID) (int64, error) {
	m.calls++
	return int64(len(m.filter(func(e *Encounter) bool { return e.PatientID == patientID }))), nil
}

type fakeDirectory struct {
	patients      map[uuid.UUID]dto.PatientSummary
	practitioners map[uuid.UUID]dto.PractitionerSummary
}

func (d *fakeDirectory) RequirePatient(_ context.Context, id uuid.UUID) error {
	if _, ok := d.patients[id]; !ok {
		return errs.NotFoundf("Patient not found")
	}
	return nil
}

func (d *fakeDirectory) RequirePractitioner(_ context.Context, id uuid.UUID) error {
	if _, ok := d.practitioners[id]; !ok {
		return errs.NotFoundf("Practitioner not found")
	}
	return nil
}

func (d *fakeDirectory) PatientSummaries(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]dto.PatientSummary, error) {
	out := make(map[uuid.UUID]dto.PatientSummary)
	for _, id := range ids {
		if p, ok := d.patients[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (d *fakeDirectory) PractitionerSummaries(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]dto.PractitionerSummary, error) {
	out := make(map[uuid.UUID]dto.PractitionerSummary)
	for _, id := range ids {
		if p, ok := d.practitioners[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type fakeLocations map[uuid.UUID]bool

func (l fakeLocations) LocationExists(_ context.Context, id uuid.UUID) (bool, error) {
	return l[id], nil
}

type fixture struct {
	svc          *Service
	repo         *mockRepo
	locations    fakeLocations
	patient      uuid.UUID
	practitioner uuid.UUID
	now          time.Time
}

func newFixture(opts ...Option) *fixture {
	f := &fixture{
		repo:         newMockRepo(),
		locations:    fakeLocations{},
		patient:      uuid.New(),
		practitioner: uuid.New(),
		now:          time.Date(2024, 6, 30, 9, 0, 0, 0, time.UTC),
	}
	dir := &fakeDirectory{
		patients:      map[uuid.UUID]dto.PatientSummary{f.patient: {ID: f.patient, FirstName: "Ada", LastName: "Lovelace"}},
		practitioners: map[uuid.UUID]dto.PractitionerSummary{f.practitioner: {ID: f.practitioner, FirstName: "Gregory", LastName: "House", Role: "Doctor"}},
	}
	f.svc = NewService(f.repo, dir, f.locations, opts...)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) encounter(t *testing.T, reason string, at time.Time) *dto.Encounter {
	t.Helper()
	e, err := f.svc.CreateEncounter(context.Background(), f.patient, f.practitioner, dto.EncounterInput{
		Reason: reason, OccurredAt: &at,
	})
	if err != nil {
		t.Fatalf("create encounter %s: %v", reason, err)
	}
	return e
}

func TestService_CreateEncounter(t *testing.T) {
	f := newFixture()
	e, err := f.svc.CreateEncounter(context.Background(), f.patient, f.practitioner, dto.EncounterInput{
		Reason: "Checkup", Notes: "routine",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.ID == uuid.Nil {
		t.Error("expected ID to be set")
	}
	if !e.OccurredAt.Equal(f.now) {
		t.Errorf("expected occurredAt to default to now, got %v", e.OccurredAt)
	}
	if e.Notes != "routine" || e.LocationID != nil {
		t.Errorf("unexpected encounter: %+v", e)
	}
}

func TestService_CreateEncounter_UnknownReferents(t *testing.T) {
	f := newFixture()
	unknownLoc := uuid.New()

	tests := []struct {
		name         string
		patient      uuid.UUID
		practitioner uuid.UUID
		location     *uuid.UUID
	}{
		{"unknown patient", uuid.New(), f.practitioner, nil},
		{"unknown practitioner", f.patient, uuid.New(), nil},
		{"unknown location", f.patient, f.practitioner, &unknownLoc},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateEncounter(context.Background(), tt.patient, tt.practitioner, dto.EncounterInput{
				Reason: "Checkup", LocationID: tt.location,
			})
			if !errs.Is(err, errs.NotFound) {
				t.Errorf("expected NotFound, got %v", err)
			}
		})
	}
	if len(f.repo.encounters) != 0 {
		t.Errorf("expected nothing persisted, got %d", len(f.repo.encounters))
	}
}

func TestService_CreateEncounter_KnownLocation(t *testing.T) {
	f := newFixture()
	loc := uuid.New()
	f.locations[loc] = true

	e, err := f.svc.CreateEncounter(context.Background(), f.patient, f.practitioner, dto.EncounterInput{
		Reason: "Admission", LocationID: &loc,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.LocationID == nil || *e.LocationID != loc {
		t.Errorf("expected location %s, got %v", loc, e.LocationID)
	}
}

func TestService_ListRecent(t *testing.T) {
	f := newFixture()
	f.encounter(t, "old", f.now.Add(-31*24*time.Hour))
	mid := f.encounter(t, "mid", f.now.Add(-10*24*time.Hour))
	latest := f.encounter(t, "latest", f.now.Add(-time.Hour))

	list, err := f.svc.ListRecent(context.Background(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 recent encounters, got %d", len(list))
	}
	if list[0].ID != latest.ID || list[1].ID != mid.ID {
		t.Error("expected newest first")
	}
}

func TestService_ListRecent_CustomWindow(t *testing.T) {
	f := newFixture(WithRecentWindow(24 * time.Hour))
	f.encounter(t, "yesterday-ish", f.now.Add(-25*time.Hour))
	f.encounter(t, "today", f.now.Add(-time.Hour))

	list, _ := f.svc.ListRecent(context.Background(), false)
	if len(list) != 1 || list[0].Reason != "today" {
		t.Errorf("expected only today's encounter, got %+v", list)
	}
}

func TestService_ListRecent_TiesByIDDesc(t *testing.T) {
	f := newFixture()
	at := f.now.Add(-time.Hour)
	a := f.encounter(t, "a", at)
	b := f.encounter(t, "b", at)

	list, _ := f.svc.ListRecent(context.Background(), false)
	first, second := a.ID, b.ID
	if bytes.Compare(b.ID[:], a.ID[:]) > 0 {
		first, second = b.ID, a.ID
	}
	if list[0].ID != first || list[1].ID != second {
		t.Error("expected ties ordered by id descending")
	}
}

func TestService_ListByPatient_Eager(t *testing.T) {
	f := newFixture()
	f.encounter(t, "Checkup", f.now)

	lazy, _ := f.svc.ListByPatient(context.Background(), f.patient, false)
	if lazy[0].Patient != nil {
		t.Error("expected lazy list to omit summaries")
	}

	eager, err := f.svc.ListByPatient(context.Background(), f.patient, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eager[0].Patient == nil || eager[0].Patient.FirstName != "Ada" {
		t.Errorf("expected patient summary, got %+v", eager[0].Patient)
	}
	if eager[0].Practitioner == nil || eager[0].Practitioner.Role != "Doctor" {
		t.Errorf("expected practitioner summary, got %+v", eager[0].Practitioner)
	}
}

func TestService_UpdateEncounter(t *testing.T) {
	f := newFixture()
	e := f.encounter(t, "Checkup", f.now.Add(-time.Hour))

	updated, err := f.svc.UpdateEncounter(context.Background(), e.ID, dto.EncounterInput{Reason: "Follow-up"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Reason != "Follow-up" {
		t.Errorf("expected reason Follow-up, got %s", updated.Reason)
	}
	if !updated.OccurredAt.Equal(e.OccurredAt) {
		t.Error("expected occurredAt kept when omitted")
	}
	if updated.PatientID != f.patient {
		t.Error("expected patient unchanged")
	}

	if _, err := f.svc.UpdateEncounter(context.Background(), uuid.New(), dto.EncounterInput{Reason: "x"}); !errs.Is(err, errs.NotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestService_DeleteAndCount(t *testing.T) {
	f := newFixture()
	e := f.encounter(t, "Checkup", f.now)
	f.encounter(t, "Second", f.now)

	n, _ := f.svc.CountByPatient(context.Background(), f.patient)
	if n != 2 {
		t.Errorf("expected count 2, got %d", n)
	}
	if found, _ := f.svc.DeleteEncounter(context.Background(), e.ID); !found {
		t.Error("expected delete to find encounter")
	}
	if found, _ := f.svc.DeleteEncounter(context.Background(), e.ID); found {
		t.Error("expected second delete to report missing")
	}
	n, _ = f.svc.CountByPatient(context.Background(), f.patient)
	if n != 1 {
		t.Errorf("expected count 1, got %d", n)
	}
}

func TestService_EncountersByPatients(t *testing.T) {
	f := newFixture()
	f.encounter(t, "Checkup", f.now)

	byPatient, err := f.svc.EncountersByPatients(context.Background(), []uuid.UUID{f.patient, uuid.New()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(byPatient[f.patient]) != 1 {
		t.Errorf("expected one encounter for patient, got %d", len(byPatient[f.patient]))
	}
}

func TestService_OccurredAtMatchesStoredPrecision(t *testing.T) {
	f := newFixture()
	f.now = time.Date(2024, 6, 30, 9, 0, 0, 987654321, time.UTC)
	ctx := context.Background()

	created, err := f.svc.CreateEncounter(ctx, f.patient, f.practitioner, dto.EncounterInput{Reason: "Checkup"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	stored, err := f.svc.GetEncounter(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !created.OccurredAt.Equal(stored.OccurredAt) {
		t.Errorf("create returned occurred_at %v, stored %v", created.OccurredAt, stored.OccurredAt)
	}

	at := time.Date(2024, 6, 29, 15, 0, 0, 1500, time.UTC)
	updated, err := f.svc.UpdateEncounter(ctx, created.ID, dto.EncounterInput{Reason: "Follow-up", OccurredAt: &at})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	stored, _ = f.svc.GetEncounter(ctx, created.ID)
	if !updated.OccurredAt.Equal(stored.OccurredAt) {
		t.Errorf("update returned occurred_at %v, stored %v", updated.OccurredAt, stored.OccurredAt)
	}
	if want := at.Truncate(time.Microsecond); !stored.OccurredAt.Equal(want) {
		t.Errorf("expected occurred_at %v, got %v", want, stored.OccurredAt)
	}
}
