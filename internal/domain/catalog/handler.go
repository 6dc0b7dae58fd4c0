package catalog

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ehr/nutrition/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/formulas", h.ListFormulas)
	api.GET("/formulas/:id", h.GetFormula)
	api.GET("/modules", h.ListModules)
	api.GET("/modules/:id", h.GetModule)
	api.POST("/catalog/reload", h.Reload)
}

func (h *Handler) ListFormulas(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total := h.svc.ListFormulas(pg.Limit, pg.Offset)
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetFormula(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	f, err := h.svc.GetFormula(id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "formula not found")
	}
	return c.JSON(http.StatusOK, f)
}

func (h *Handler) ListModules(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total := h.svc.ListModules(pg.Limit, pg.Offset)
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetModule(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	m, err := h.svc.GetModule(id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "module not found")
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) Reload(c echo.Context) error {
	snap, err := h.svc.Reload(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	nf, nm := snap.Len()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"formulas":  nf,
		"modules":   nm,
		"loaded_at": h.svc.LoadedAt(),
	})
}
