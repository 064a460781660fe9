package appointment

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/clinichub/registry/internal/platform/apperr"
)

type repoPG struct {
	db     querier
	logger zerolog.Logger
}

func NewRepo(pool *pgxpool.Pool, logger zerolog.Logger) Repository {
	return &repoPG{db: pool, logger: logger}
}

const appointmentCols = `id, patient_id, appointment_date, reason, status, created_at`

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO appointments (patient_id, appointment_date, reason)
		VALUES ($1, $2, $3)
		RETURNING `+appointmentCols,
		a.PatientID, a.AppointmentDate, a.Reason,
	)
	created, err := scanAppointment(row)
	if err != nil {
		r.logger.Error().Err(err).Int("patient_id", a.PatientID).Msg("appointment create failed")
		return apperr.NewStorageError("appointment create", err)
	}
	*a = *created
	return nil
}

func (r *repoPG) List(ctx context.Context) ([]*WithPatient, error) {
	rows, err := r.db.Query(ctx, `
		SELECT a.id, a.patient_id, a.appointment_date, a.reason, a.status, a.created_at,
			p.name AS patient_name
		FROM appointments a
		JOIN patients p ON a.patient_id = p.id
		ORDER BY a.appointment_date ASC`)
	if err != nil {
		r.logger.Error().Err(err).Msg("appointment list failed")
		return nil, apperr.NewStorageError("appointment list", err)
	}
	defer rows.Close()

	appts := []*WithPatient{}
	for rows.Next() {
		var a WithPatient
		if err := rows.Scan(&a.ID, &a.PatientID, &a.AppointmentDate, &a.Reason, &a.Status, &a.CreatedAt, &a.PatientName); err != nil {
			return nil, apperr.NewStorageError("appointment list", err)
		}
		appts = append(appts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.NewStorageError("appointment list", err)
	}
	return appts, nil
}

func (r *repoPG) UpdateStatus(ctx context.Context, id int, status string) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE appointments SET status = $1
		WHERE id = $2
		RETURNING `+appointmentCols,
		status, id,
	)
	updated, err := scanAppointment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error().Err(err).Int("id", id).Msg("appointment status update failed")
		return nil, apperr.NewStorageError("appointment status update", err)
	}
	return updated, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	if err := row.Scan(&a.ID, &a.PatientID, &a.AppointmentDate, &a.Reason, &a.Status, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}
