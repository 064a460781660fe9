package apperr

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Respond maps a domain error onto an HTTP response. Validation errors carry
// the offending field so the client can report them inline; storage errors
// carry the engine's message verbatim; anything else is a 500.
func Respond(c echo.Context, err error) error {
	var required *RequiredFieldError
	var rng *RangeError
	var storage *StorageError
	var initErr *InitializationError

	switch {
	case errors.As(err, &required):
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": required.Error(),
			"field": required.Field,
		})
	case errors.As(err, &rng):
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": rng.Error(),
			"field": rng.Field,
		})
	case errors.As(err, &storage):
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": storage.Error(),
		})
	case errors.As(err, &initErr):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "database failed to initialize, restart the server")
	}

	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
