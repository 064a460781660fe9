package db

import (
	"context"
	"net/http"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"

	"github.com/clinichub/registry/internal/platform/apperr"
)

// Schema is applied on startup with IF NOT EXISTS semantics, so repeated
// initialization across restarts is safe and non-destructive. Age and gender
// bounds are deliberately not expressed as check constraints: the registry
// enforces them at the intake boundary only, and the raw SQL console is
// allowed to bypass them.
const Schema = `
CREATE TABLE IF NOT EXISTS patients (
    id SERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    age INTEGER,
    gender TEXT,
    medical_history TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS appointments (
    id SERIAL PRIMARY KEY,
    patient_id INTEGER REFERENCES patients(id),
    appointment_date TIMESTAMP NOT NULL,
    reason TEXT,
    status TEXT DEFAULT 'scheduled',
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// Execer is the subset of the pool used for schema creation.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// Initializer runs schema creation exactly once per process and gates every
// data surface behind its completion. Dependent operations wait on Ready()
// instead of racing a mutable flag; a failed initialization is permanent for
// the process and keeps surfacing as an InitializationError.
type Initializer struct {
	once  sync.Once
	ready chan struct{}

	mu  sync.RWMutex
	err error
}

func NewInitializer() *Initializer {
	return &Initializer{ready: make(chan struct{})}
}

// Run applies the schema. Safe to call from multiple goroutines; only the
// first call does work, the rest return the recorded outcome.
func (i *Initializer) Run(ctx context.Context, exec Execer) error {
	i.once.Do(func() {
		_, err := exec.Exec(ctx, Schema)
		i.mu.Lock()
		if err != nil {
			i.err = &apperr.InitializationError{Err: err}
		}
		i.mu.Unlock()
		close(i.ready)
	})
	return i.Err()
}

// Ready is closed once initialization finished, successfully or not.
func (i *Initializer) Ready() <-chan struct{} {
	return i.ready
}

// Err reports the initialization outcome. Nil while still running.
func (i *Initializer) Err() error {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.err
}

// Done reports whether initialization has completed.
func (i *Initializer) Done() bool {
	select {
	case <-i.ready:
		return true
	default:
		return false
	}
}

// ReadyGate refuses data requests until initialization completes. While the
// schema is still being created the client sees 503 and keeps its controls
// disabled; after a failed initialization it is told to restart the server.
func ReadyGate(init *Initializer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !init.Done() {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "database is initializing, try again shortly")
			}
			if err := init.Err(); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "database failed to initialize, restart the server")
			}
			return next(c)
		}
	}
}
