package patient

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

const patientCols = `id, name, age, gender, medical_history, created_at`

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO patients (name, age, gender, medical_history)
		VALUES ($1, $2, $3, $4)
		RETURNING `+patientCols,
		p.Name, p.Age, p.Gender, p.MedicalHistory,
	)
	created, err := scanPatient(row)
	if err != nil {
		r.logger.Error().Err(err).Msg("patient create failed")
		return apperr.NewStorageError("patient create", err)
	}
	*p = *created
	return nil
}

func (r *repoPG) List(ctx context.Context) ([]*Patient, error) {
	rows, err := r.db.Query(ctx, `SELECT `+patientCols+` FROM patients ORDER BY created_at DESC`)
	if err != nil {
		r.logger.Error().Err(err).Msg("patient list failed")
		return nil, apperr.NewStorageError("patient list", err)
	}
	defer rows.Close()

	patients := []*Patient{}
	for rows.Next() {
		p, err := scanPatientRows(rows)
		if err != nil {
			return nil, apperr.NewStorageError("patient list", err)
		}
		patients = append(patients, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.NewStorageError("patient list", err)
	}
	return patients, nil
}

func (r *repoPG) GetByID(ctx context.Context, id int) (*Patient, error) {
	p, err := scanPatient(r.db.QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error().Err(err).Int("id", id).Msg("patient get failed")
		return nil, apperr.NewStorageError("patient get", err)
	}
	return p, nil
}

func (r *repoPG) Update(ctx context.Context, id int, p *Patient) (*Patient, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE patients SET name = $1, age = $2, gender = $3, medical_history = $4
		WHERE id = $5
		RETURNING `+patientCols,
		p.Name, p.Age, p.Gender, p.MedicalHistory, id,
	)
	updated, err := scanPatient(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error().Err(err).Int("id", id).Msg("patient update failed")
		return nil, apperr.NewStorageError("patient update", err)
	}
	return updated, nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	if err := row.Scan(&p.ID, &p.Name, &p.Age, &p.Gender, &p.MedicalHistory, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanPatientRows(rows pgx.Rows) (*Patient, error) {
	var p Patient
	if err := rows.Scan(&p.ID, &p.Name, &p.Age, &p.Gender, &p.MedicalHistory, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}
