package directory

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/campushealth/portal/internal/access"
	"github.com/campushealth/portal/internal/platform/auth"
	"github.com/campushealth/portal/internal/portalerr"
	"github.com/campushealth/portal/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/doctors", h.ListDoctors)
	api.GET("/doctors/:id", h.GetDoctor)
	api.GET("/doctors/:id/unavailable", h.ListUnavailable)

	adminGroup := api.Group("", auth.RequireRole(access.RoleAdmin))
	adminGroup.POST("/doctors", h.CreateDoctor)
	adminGroup.PUT("/doctors/:id", h.UpdateDoctor)
	adminGroup.DELETE("/doctors/:id", h.DeleteDoctor)

	// Doctors may toggle their own calendar; the policy check inside the
	// service pins them to it.
	toggleGroup := api.Group("", auth.RequireRole(access.RoleAdmin, access.RoleDoctor))
	toggleGroup.POST("/doctors/:id/unavailable", h.ToggleUnavailable)
}

func toHTTP(err error) *echo.HTTPError {
	return echo.NewHTTPError(portalerr.HTTPStatus(err), err.Error())
}

func actorOr401(c echo.Context) (access.Actor, *echo.HTTPError) {
	actor, ok := auth.ActorFromContext(c.Request().Context())
	if !ok {
		return access.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "no actor")
	}
	return actor, nil
}

func (h *Handler) CreateDoctor(c echo.Context) error {
	actor, herr := actorOr401(c)
	if herr != nil {
		return herr
	}
	var d Doctor
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateDoctor(c.Request().Context(), actor, &d); err != nil {
		return toHTTP(err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) GetDoctor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	d, err := h.svc.GetDoctor(c.Request().Context(), id)
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) ListDoctors(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListDoctors(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateDoctor(c echo.Context) error {
	actor, herr := actorOr401(c)
	if herr != nil {
		return herr
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var d Doctor
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d.ID = id
	if err := h.svc.UpdateDoctor(c.Request().Context(), actor, &d); err != nil {
		return toHTTP(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) DeleteDoctor(c echo.Context) error {
	actor, herr := actorOr401(c)
	if herr != nil {
		return herr
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteDoctor(c.Request().Context(), actor, id); err != nil {
		return toHTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}

type toggleRequest struct {
	Date string `json:"date"`
}

func (h *Handler) ToggleUnavailable(c echo.Context) error {
	actor, herr := actorOr401(c)
	if herr != nil {
		return herr
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req toggleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	action, err := h.svc.Toggle(c.Request().Context(), actor, id, req.Date)
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"action": action})
}

func (h *Handler) ListUnavailable(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	dates, err := h.svc.ListUnavailable(c.Request().Context(), id)
	if err != nil {
		return toHTTP(err)
	}
	if dates == nil {
		dates = []string{}
	}
	return c.JSON(http.StatusOK, dates)
}
