package scheduling

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
	api.GET("/slots", h.Slots)
	api.POST("/appointments", h.Book)
	api.GET("/appointments", h.List)
	api.GET("/appointments/:id", h.Get)
	api.POST("/appointments/:id/cancel", h.Cancel)

	adminGroup := api.Group("", auth.RequireRole(access.RoleAdmin))
	adminGroup.DELETE("/appointments/:id", h.DeleteHard)
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

func (h *Handler) Slots(c echo.Context) error {
	doctorID, err := uuid.Parse(c.QueryParam("doctor_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor_id")
	}
	slots, err := h.svc.Slots(c.Request().Context(), doctorID, c.QueryParam("date"))
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"slots": slots})
}

func (h *Handler) Book(c echo.Context) error {
	actor, herr := actorOr401(c)
	if herr != nil {
		return herr
	}
	var req BookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	// Students book for themselves; the body may omit the id.
	if actor.Role == access.RoleStudent && req.StudentID == "" {
		req.StudentID = actor.ID
	}
	a, err := h.svc.Book(c.Request().Context(), actor, &req)
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) Get(c echo.Context) error {
	actor, herr := actorOr401(c)
	if herr != nil {
		return herr
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.Get(c.Request().Context(), actor, id)
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}

// List dispatches on the filter params: doctor_id or student_id scope the
// ledger, neither means the admin audit view.
func (h *Handler) List(c echo.Context) error {
	actor, herr := actorOr401(c)
	if herr != nil {
		return herr
	}
	ctx := c.Request().Context()

	if sid := c.QueryParam("student_id"); sid != "" {
		items, err := h.svc.ListByStudent(ctx, actor, sid)
		if err != nil {
			return toHTTP(err)
		}
		return c.JSON(http.StatusOK, emptyIfNil(items))
	}
	if did := c.QueryParam("doctor_id"); did != "" {
		doctorID, err := uuid.Parse(did)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor_id")
		}
		items, err := h.svc.ListByDoctor(ctx, actor, doctorID)
		if err != nil {
			return toHTTP(err)
		}
		return c.JSON(http.StatusOK, emptyIfNil(items))
	}

	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListAll(ctx, actor, pg.Limit, pg.Offset)
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(emptyIfNil(items), total, pg.Limit, pg.Offset))
}

func (h *Handler) Cancel(c echo.Context) error {
	actor, herr := actorOr401(c)
	if herr != nil {
		return herr
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.Cancel(c.Request().Context(), actor, id)
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteHard(c echo.Context) error {
	actor, herr := actorOr401(c)
	if herr != nil {
		return herr
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteHard(c.Request().Context(), actor, id); err != nil {
		return toHTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func emptyIfNil(items []*Appointment) []*Appointment {
	if items == nil {
		return []*Appointment{}
	}
	return items
}
