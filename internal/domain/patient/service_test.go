package patient

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinichub/registry/internal/platform/apperr"
	"github.com/clinichub/registry/internal/platform/bridge"
)

// -- Mock Repository --

type mockRepo struct {
	patients map[int]*Patient
	nextID   int
	failWith error
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: make(map[int]*Patient), nextID: 1}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	if m.failWith != nil {
		return m.failWith
	}
	p.ID = m.nextID
	m.nextID++
	p.CreatedAt = time.Now()
	stored := *p
	m.patients[p.ID] = &stored
	return nil
}

func (m *mockRepo) List(_ context.Context) ([]*Patient, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	result := []*Patient{}
	for _, p := range m.patients {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *mockRepo) GetByID(_ context.Context, id int) (*Patient, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return m.patients[id], nil
}

func (m *mockRepo) Update(_ context.Context, id int, p *Patient) (*Patient, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	existing, ok := m.patients[id]
	if !ok {
		return nil, nil
	}
	existing.Name = p.Name
	existing.Age = p.Age
	existing.Gender = p.Gender
	existing.MedicalHistory = p.MedicalHistory
	updated := *existing
	return &updated, nil
}

// -- Mock Bridge --

type mockBridge struct {
	events   []bridge.Event
	failWith error
}

func (m *mockBridge) Publish(_ context.Context, e bridge.Event) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.events = append(m.events, e)
	return nil
}

func (m *mockBridge) Subscribe(func(bridge.Event)) (cancel func()) {
	return func() {}
}

func newTestService() (*Service, *mockRepo, *mockBridge) {
	repo := newMockRepo()
	br := &mockBridge{}
	return NewService(repo, br, zerolog.Nop()), repo, br
}

func intake(name string, age int, gender string) Intake {
	return Intake{Name: name, Age: &age, Gender: gender}
}

func TestRegister(t *testing.T) {
	svc, repo, br := newTestService()

	p, err := svc.Register(context.Background(), intake("John Doe", 30, "Male"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == 0 {
		t.Error("expected generated id")
	}
	if len(repo.patients) != 1 {
		t.Errorf("expected 1 stored patient, got %d", len(repo.patients))
	}
	if len(br.events) != 1 || br.events[0].Type != bridge.EventPatientUpdated {
		t.Errorf("expected one %s event, got %v", bridge.EventPatientUpdated, br.events)
	}
}

func TestRegister_NameRequired(t *testing.T) {
	svc, _, _ := newTestService()

	for _, name := range []string{"", "   ", "\t\n"} {
		_, err := svc.Register(context.Background(), intake(name, 30, "Male"))
		var rf *apperr.RequiredFieldError
		if !errors.As(err, &rf) {
			t.Fatalf("name %q: expected RequiredFieldError, got %v", name, err)
		}
		if rf.Field != "name" {
			t.Errorf("expected field name, got %s", rf.Field)
		}
	}
}

func TestRegister_AgeRequired(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Register(context.Background(), Intake{Name: "John", Gender: "Male"})
	var rf *apperr.RequiredFieldError
	if !errors.As(err, &rf) {
		t.Fatalf("expected RequiredFieldError, got %v", err)
	}
	if rf.Field != "age" {
		t.Errorf("expected field age, got %s", rf.Field)
	}
}

func TestRegister_AgeRange(t *testing.T) {
	svc, _, _ := newTestService()

	for _, age := range []int{-1, 151, 1000} {
		_, err := svc.Register(context.Background(), intake("John", age, "Male"))
		var re *apperr.RangeError
		if !errors.As(err, &re) {
			t.Fatalf("age %d: expected RangeError, got %v", age, err)
		}
		if re.Min != MinAge || re.Max != MaxAge {
			t.Errorf("expected bounds [%d,%d], got [%d,%d]", MinAge, MaxAge, re.Min, re.Max)
		}
		if got, want := re.Error(), fmt.Sprintf("age must be between %d and %d", MinAge, MaxAge); got != want {
			t.Errorf("expected message %q, got %q", want, got)
		}
	}

	// Boundary values are accepted.
	for _, age := range []int{0, 150} {
		if _, err := svc.Register(context.Background(), intake("John", age, "Male")); err != nil {
			t.Errorf("age %d: unexpected error: %v", age, err)
		}
	}
}

func TestRegister_GenderRequired(t *testing.T) {
	svc, _, _ := newTestService()

	for _, g := range []string{"", "male", "Unknown"} {
		_, err := svc.Register(context.Background(), intake("John", 30, g))
		var rf *apperr.RequiredFieldError
		if !errors.As(err, &rf) {
			t.Fatalf("gender %q: expected RequiredFieldError, got %v", g, err)
		}
		if rf.Field != "gender" {
			t.Errorf("expected field gender, got %s", rf.Field)
		}
	}
}

func TestRegister_ValidationSkipsStorage(t *testing.T) {
	svc, repo, br := newTestService()

	_, err := svc.Register(context.Background(), Intake{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if len(repo.patients) != 0 {
		t.Error("expected no storage call on validation failure")
	}
	if len(br.events) != 0 {
		t.Error("expected no broadcast on validation failure")
	}
}

func TestRegister_BroadcastFailureDoesNotFail(t *testing.T) {
	repo := newMockRepo()
	br := &mockBridge{failWith: errors.New("socket closed")}
	svc := NewService(repo, br, zerolog.Nop())

	p, err := svc.Register(context.Background(), intake("John", 30, "Male"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p == nil || p.ID == 0 {
		t.Error("expected stored patient despite broadcast failure")
	}
}

func TestRegister_StorageErrorPropagates(t *testing.T) {
	repo := newMockRepo()
	repo.failWith = apperr.NewStorageError("patient create", errors.New(`relation "patients" does not exist`))
	svc := NewService(repo, &mockBridge{}, zerolog.Nop())

	_, err := svc.Register(context.Background(), intake("John", 30, "Male"))
	var se *apperr.StorageError
	if !errors.As(err, &se) {
		t.Fatalf("expected StorageError, got %v", err)
	}
	if se.Error() != `relation "patients" does not exist` {
		t.Errorf("expected verbatim engine message, got %q", se.Error())
	}
}

func TestGet_NotFound(t *testing.T) {
	svc, _, _ := newTestService()

	p, err := svc.Get(context.Background(), 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != nil {
		t.Errorf("expected nil for unknown id, got %+v", p)
	}
}

func TestUpdate(t *testing.T) {
	svc, _, br := newTestService()

	created, err := svc.Register(context.Background(), intake("John", 30, "Male"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated, err := svc.Update(context.Background(), created.ID, intake("John Q. Doe", 31, "Male"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated == nil {
		t.Fatal("expected updated patient")
	}
	if updated.Name != "John Q. Doe" || updated.Age == nil || *updated.Age != 31 {
		t.Errorf("update not applied: %+v", updated)
	}
	if len(br.events) != 2 {
		t.Errorf("expected broadcast for register and update, got %d events", len(br.events))
	}
}

func TestUpdate_NotFoundDoesNotBroadcast(t *testing.T) {
	svc, _, br := newTestService()

	updated, err := svc.Update(context.Background(), 42, intake("John", 30, "Male"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated != nil {
		t.Errorf("expected nil for unknown id, got %+v", updated)
	}
	if len(br.events) != 0 {
		t.Error("expected no broadcast when nothing was updated")
	}
}

func TestUpdate_Validates(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Update(context.Background(), 1, intake("", 30, "Male"))
	var rf *apperr.RequiredFieldError
	if !errors.As(err, &rf) {
		t.Fatalf("expected RequiredFieldError, got %v", err)
	}
}

func TestIntake_TrimsName(t *testing.T) {
	svc, _, _ := newTestService()

	p, err := svc.Register(context.Background(), intake("  John  ", 30, "Male"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "John" {
		t.Errorf("expected trimmed name, got %q", p.Name)
	}
}

func TestValidGender(t *testing.T) {
	for _, g := range Genders {
		if !ValidGender(g) {
			t.Errorf("expected %q to be valid", g)
		}
	}
	if ValidGender("other") {
		t.Error("gender matching is case-sensitive")
	}
}
