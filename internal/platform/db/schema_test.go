package db

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"

	"github.com/clinichub/registry/internal/platform/apperr"
)

type fakeExecer struct {
	mu       sync.Mutex
	calls    int
	failWith error
}

func (f *fakeExecer) Exec(_ context.Context, _ string, _ ...interface{}) (pgconn.CommandTag, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return pgconn.CommandTag{}, f.failWith
}

func TestInitializer_RunsOnce(t *testing.T) {
	init := NewInitializer()
	exec := &fakeExecer{}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			init.Run(context.Background(), exec)
		}()
	}
	wg.Wait()

	if exec.calls != 1 {
		t.Errorf("expected schema applied once, got %d", exec.calls)
	}
	if !init.Done() {
		t.Error("expected initializer done")
	}
	if init.Err() != nil {
		t.Errorf("unexpected error: %v", init.Err())
	}
}

func TestInitializer_ReadyClosesOnCompletion(t *testing.T) {
	init := NewInitializer()
	if init.Done() {
		t.Fatal("expected not done before Run")
	}

	select {
	case <-init.Ready():
		t.Fatal("ready channel closed before Run")
	default:
	}

	if err := init.Run(context.Background(), &fakeExecer{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case <-init.Ready():
	default:
		t.Error("expected ready channel closed after Run")
	}
}

func TestInitializer_FailureIsPermanent(t *testing.T) {
	init := NewInitializer()
	exec := &fakeExecer{failWith: errors.New("connection refused")}

	err := init.Run(context.Background(), exec)
	var initErr *apperr.InitializationError
	if !errors.As(err, &initErr) {
		t.Fatalf("expected InitializationError, got %v", err)
	}

	// A later call with a healthy executor does not retry.
	err = init.Run(context.Background(), &fakeExecer{})
	if !errors.As(err, &initErr) {
		t.Fatalf("expected recorded InitializationError, got %v", err)
	}
	if exec.calls != 1 {
		t.Errorf("expected no retry, got %d calls", exec.calls)
	}
	if !init.Done() {
		t.Error("failed initialization still counts as done")
	}
}

func TestReadyGate_BeforeInit(t *testing.T) {
	init := NewInitializer()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := ReadyGate(init)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	err := handler(c)
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if he.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", he.Code)
	}
}

func TestReadyGate_AfterInit(t *testing.T) {
	init := NewInitializer()
	init.Run(context.Background(), &fakeExecer{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := ReadyGate(init)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("expected request to pass the gate")
	}
}

func TestReadyGate_AfterFailedInit(t *testing.T) {
	init := NewInitializer()
	init.Run(context.Background(), &fakeExecer{failWith: errors.New("disk full")})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := ReadyGate(init)(func(c echo.Context) error {
		t.Error("request must not pass after failed init")
		return nil
	})

	err := handler(c)
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if he.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", he.Code)
	}
}
