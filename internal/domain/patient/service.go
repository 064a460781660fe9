package patient

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/clinichub/registry/internal/platform/apperr"
	"github.com/clinichub/registry/internal/platform/bridge"
)

// Intake is the registration form payload. Age is a pointer so a missing
// value is distinguishable from zero.
type Intake struct {
	Name           string `json:"name"`
	Age            *int   `json:"age"`
	Gender         string `json:"gender"`
	MedicalHistory string `json:"medical_history"`
}

// Validate applies the intake rules. It runs synchronously before any
// statement is issued; a failure here means no data-access call happens.
func (in *Intake) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return &apperr.RequiredFieldError{Field: "name"}
	}
	if in.Age == nil {
		return &apperr.RequiredFieldError{Field: "age"}
	}
	if *in.Age < MinAge || *in.Age > MaxAge {
		return &apperr.RangeError{Field: "age", Min: MinAge, Max: MaxAge}
	}
	if !ValidGender(in.Gender) {
		return &apperr.RequiredFieldError{Field: "gender"}
	}
	return nil
}

func (in *Intake) toPatient() *Patient {
	p := &Patient{
		Name:   strings.TrimSpace(in.Name),
		Age:    in.Age,
		Gender: &in.Gender,
	}
	if in.MedicalHistory != "" {
		p.MedicalHistory = &in.MedicalHistory
	}
	return p
}

type Service struct {
	repo   Repository
	bridge bridge.Bridge
	logger zerolog.Logger
}

func NewService(repo Repository, br bridge.Bridge, logger zerolog.Logger) *Service {
	return &Service{repo: repo, bridge: br, logger: logger}
}

// Register validates the intake and inserts the patient. On success other
// open windows are told to refresh; the broadcast is best-effort and its
// failure never fails the registration.
func (s *Service) Register(ctx context.Context, in Intake) (*Patient, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	p := in.toPatient()
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	if err := s.bridge.Publish(ctx, bridge.Event{Type: bridge.EventPatientUpdated}); err != nil {
		s.logger.Warn().Err(err).Msg("patient update broadcast failed")
	}
	return p, nil
}

func (s *Service) List(ctx context.Context) ([]*Patient, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

// Update fully replaces the mutable fields of an existing patient. The same
// intake rules apply as at registration. Returns (nil, nil) when id matches
// no patient.
func (s *Service) Update(ctx context.Context, id int, in Intake) (*Patient, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, in.toPatient())
	if err != nil {
		return nil, err
	}
	if updated != nil {
		if err := s.bridge.Publish(ctx, bridge.Event{Type: bridge.EventPatientUpdated}); err != nil {
			s.logger.Warn().Err(err).Msg("patient update broadcast failed")
		}
	}
	return updated, nil
}
