package clinical

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/campushealth/portal/internal/access"
	"github.com/campushealth/portal/internal/platform/auth"
	"github.com/campushealth/portal/internal/portalerr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	doctorGroup := api.Group("", auth.RequireRole(access.RoleDoctor))
	doctorGroup.POST("/prescriptions", h.CreatePrescription)
	doctorGroup.POST("/lab-orders", h.CreateLabOrder)

	pharmacyGroup := api.Group("", auth.RequireRole(access.RolePharmacist))
	pharmacyGroup.GET("/prescriptions/pending", h.ListPendingPrescriptions)
	pharmacyGroup.POST("/prescriptions/:id/dispense", h.Dispense)
	pharmacyGroup.GET("/prescriptions/stats", h.DispenseStats)

	labGroup := api.Group("", auth.RequireRole(access.RoleLabTech))
	labGroup.GET("/lab-orders/pending", h.ListPendingLabOrders)
	labGroup.POST("/lab-orders/:id/complete", h.CompleteLabOrder)
	labGroup.GET("/lab-orders/stats", h.LabStats)

	// Record reads; per-student scoping happens in the service.
	api.GET("/prescriptions", h.ListPrescriptions)
	api.GET("/prescriptions/:id", h.GetPrescription)
	api.GET("/lab-orders", h.ListLabOrders)
	api.GET("/lab-reports", h.ListLabReports)
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

func (h *Handler) CreatePrescription(c echo.Context) error {
	actor, herr := actorOr401(c)
	if herr != nil {
		return herr
	}
	var req CreatePrescriptionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.CreatePrescription(c.Request().Context(), actor, &req)
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPrescription(c echo.Context) error {
	actor, herr := actorOr401(c)
	if herr != nil {
		return herr
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.GetPrescription(c.Request().Context(), actor, id)
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListPrescriptions(c echo.Context) error {
	actor, herr := actorOr401(c)
	if herr != nil {
		return herr
	}
	studentID := c.QueryParam("student_id")
	if studentID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "student_id is required")
	}
	items, err := h.svc.ListPrescriptionsByStudent(c.Request().Context(), actor, studentID)
	if err != nil {
		return toHTTP(err)
	}
	if items == nil {
		items = []*Prescription{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListPendingPrescriptions(c echo.Context) error {
	actor, herr := actorOr401(c)
	if herr != nil {
		return herr
	}
	items, err := h.svc.ListPendingPrescriptions(c.Request().Context(), actor)
	if err != nil {
		return toHTTP(err)
	}
	if items == nil {
		items = []*Prescription{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Dispense(c echo.Context) error {
	actor, herr := actorOr401(c)
	if herr != nil {
		return herr
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.Dispense(c.Request().Context(), actor, id)
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DispenseStats(c echo.Context) error {
	actor, herr := actorOr401(c)
	if herr != nil {
		return herr
	}
	s, err := h.svc.DispenseStats(c.Request().Context(), actor)
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) CreateLabOrder(c echo.Context) error {
	actor, herr := actorOr401(c)
	if herr != nil {
		return herr
	}
	var req CreateLabOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	o, err := h.svc.CreateLabOrder(c.Request().Context(), actor, &req)
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(http.StatusCreated, o)
}

func (h *Handler) ListLabOrders(c echo.Context) error {
	actor, herr := actorOr401(c)
	if herr != nil {
		return herr
	}
	studentID := c.QueryParam("student_id")
	if studentID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "student_id is required")
	}
	items, err := h.svc.ListLabOrdersByStudent(c.Request().Context(), actor, studentID)
	if err != nil {
		return toHTTP(err)
	}
	if items == nil {
		items = []*LabOrder{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListPendingLabOrders(c echo.Context) error {
	actor, herr := actorOr401(c)
	if herr != nil {
		return herr
	}
	items, err := h.svc.ListPendingLabOrders(c.Request().Context(), actor)
	if err != nil {
		return toHTTP(err)
	}
	if items == nil {
		items = []*LabOrder{}
	}
	return c.JSON(http.StatusOK, items)
}

type completeRequest struct {
	FileRef string `json:"file_ref"`
	Remarks string `json:"remarks"`
}

type completeResponse struct {
	Order  *LabOrder  `json:"order"`
	Report *LabReport `json:"report"`
}

func (h *Handler) CompleteLabOrder(c echo.Context) error {
	actor, herr := actorOr401(c)
	if herr != nil {
		return herr
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req completeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	order, report, err := h.svc.CompleteLabOrder(c.Request().Context(), actor, id, req.FileRef, req.Remarks)
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(http.StatusOK, completeResponse{Order: order, Report: report})
}

func (h *Handler) LabStats(c echo.Context) error {
	actor, herr := actorOr401(c)
	if herr != nil {
		return herr
	}
	s, err := h.svc.LabStats(c.Request().Context(), actor)
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) ListLabReports(c echo.Context) error {
	actor, herr := actorOr401(c)
	if herr != nil {
		return herr
	}
	studentID := c.QueryParam("student_id")
	if studentID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "student_id is required")
	}
	items, err := h.svc.ListLabReportsByStudent(c.Request().Context(), actor, studentID)
	if err != nil {
		return toHTTP(err)
	}
	if items == nil {
		items = []*LabReport{}
	}
	return c.JSON(http.StatusOK, items)
}
