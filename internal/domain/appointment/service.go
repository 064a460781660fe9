package appointment

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinichub/registry/internal/platform/apperr"
)

// Booking is the payload accepted when scheduling a new appointment.
type Booking struct {
	PatientID       int        `json:"patient_id"`
	AppointmentDate *time.Time `json:"appointment_date"`
	Reason          string     `json:"reason"`
}

func (b *Booking) Validate() error {
	if b.PatientID <= 0 {
		return &apperr.RequiredFieldError{Field: "patient_id"}
	}
	if b.AppointmentDate == nil {
		return &apperr.RequiredFieldError{Field: "appointment_date"}
	}
	return nil
}

func (b *Booking) toAppointment() *Appointment {
	a := &Appointment{
		PatientID:       b.PatientID,
		AppointmentDate: *b.AppointmentDate,
	}
	if reason := strings.TrimSpace(b.Reason); reason != "" {
		a.Reason = &reason
	}
	return a
}

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Book validates the booking and persists it. The stored row comes back
// with the engine-assigned id, default status and creation time.
func (s *Service) Book(ctx context.Context, b *Booking) (*Appointment, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	a := b.toAppointment()
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	s.logger.Info().Int("id", a.ID).Int("patient_id", a.PatientID).Msg("appointment booked")
	return a, nil
}

func (s *Service) List(ctx context.Context) ([]*WithPatient, error) {
	return s.repo.List(ctx)
}

// UpdateStatus transitions an appointment to the given status. It returns
// (nil, nil) when no appointment matches the id.
func (s *Service) UpdateStatus(ctx context.Context, id int, status string) (*Appointment, error) {
	if strings.TrimSpace(status) == "" {
		return nil, &apperr.RequiredFieldError{Field: "status"}
	}
	return s.repo.UpdateStatus(ctx, id, status)
}
