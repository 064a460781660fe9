// Package console exposes a raw SQL runner for ad-hoc inspection of the
// registry database. Queries run with the same privileges as the rest of
// the application, so the surface is meant for trusted operators only.
package console

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/clinichub/registry/internal/platform/apperr"
)

// Result is the tabular outcome of a query. Rows is keyed by column name
// so statements without a fixed shape (joins, aggregates) round-trip as-is.
type Result struct {
	Columns  []string         `json:"columns"`
	Rows     []map[string]any `json:"rows"`
	RowCount int              `json:"row_count"`
}

// Example pairs a human-readable title with a runnable statement.
type Example struct {
	Title string `json:"title"`
	Query string `json:"query"`
}

var examples = []Example{
	{Title: "Get all patients", Query: "SELECT * FROM patients ORDER BY created_at DESC;"},
	{Title: "Get patients by age range", Query: "SELECT * FROM patients WHERE age BETWEEN 20 AND 40;"},
	{Title: "Count patients by gender", Query: "SELECT gender, COUNT(*) as count FROM patients GROUP BY gender;"},
	{Title: "Recent registrations", Query: "SELECT name, age, gender, created_at FROM patients WHERE created_at >= NOW() - INTERVAL '24 hours';"},
}

type runner interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

type Service struct {
	db     runner
	logger zerolog.Logger
}

func NewService(db runner, logger zerolog.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// Examples returns the canned starter queries in a stable order.
func (s *Service) Examples() []Example {
	return examples
}

// Execute runs the statement verbatim and materializes the result set.
// Engine errors come back as storage errors carrying the engine's own
// message, since that message is the operator's debugging signal.
func (s *Service) Execute(ctx context.Context, query string) (*Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &apperr.RequiredFieldError{Field: "query"}
	}

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		s.logger.Warn().Err(err).Msg("console query failed")
		return nil, apperr.NewStorageError("console query", err)
	}
	defer rows.Close()

	cols := []string{}
	for _, fd := range rows.FieldDescriptions() {
		cols = append(cols, string(fd.Name))
	}

	out := []map[string]any{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, apperr.NewStorageError("console query", err)
		}
		record := make(map[string]any, len(cols))
		for i, col := range cols {
			record[col] = values[i]
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		s.logger.Warn().Err(err).Msg("console query failed")
		return nil, apperr.NewStorageError("console query", err)
	}

	return &Result{Columns: cols, Rows: out, RowCount: len(out)}, nil
}
