package console

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinichub/registry/internal/platform/apperr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/console/query", h.Execute)
	api.GET("/console/examples", h.Examples)
}

func (h *Handler) Execute(c echo.Context) error {
	var body struct {
		Query string `json:"query"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	result, err := h.svc.Execute(c.Request().Context(), body.Query)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) Examples(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Examples())
}
