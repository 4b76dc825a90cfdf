package appointment

import (
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medmitra/api/internal/platform/auth"
	"github.com/medmitra/api/internal/platform/respond"
	"github.com/medmitra/api/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	staff := api.Group("", auth.RequireRole(auth.RoleCoordinator, auth.RoleDoctor))
	staff.GET("/appointments/:id", h.GetAppointment)
	staff.GET("/doctors/:id/schedule", h.DoctorSchedule)
	staff.GET("/patients/:id/appointments", h.PatientHistory)
	staff.GET("/patients/:id/appointments/next", h.NextAppointment)
	staff.GET("/patients/:id/activity", h.PatientActivity)

	coord := api.Group("", auth.RequireRole(auth.RoleCoordinator))
	coord.POST("/appointments", h.Book)
	coord.PATCH("/appointments/:id/status", h.UpdateStatus)
}

func (h *Handler) Book(c echo.Context) error {
	var req BookingRequest
	if err := c.Bind(&req); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	a, err := h.svc.Book(c.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingParty), errors.Is(err, ErrBadClock), errors.Is(err, ErrBadDate):
			return respond.BadRequest(c, err.Error())
		}
		return respond.Internal(c)
	}
	return respond.Created(c, a)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid id")
	}
	a, err := h.svc.GetAppointment(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return respond.NotFound(c, "appointment not found")
	}
	if err != nil {
		return respond.Internal(c)
	}
	return respond.OK(c, a)
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid id")
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	a, err := h.svc.UpdateStatus(c.Request().Context(), id, body.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return respond.NotFound(c, "appointment not found")
		case errors.Is(err, ErrInvalidTransition):
			return respond.Conflict(c, err.Error())
		}
		return respond.Internal(c)
	}
	return respond.OK(c, a)
}

func (h *Handler) DoctorSchedule(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid id")
	}
	pg := pagination.FromContext(c)
	appts, total, err := h.svc.DoctorSchedule(c.Request().Context(), doctorID, c.QueryParam("date"), pg.Limit, pg.Offset)
	if errors.Is(err, ErrBadDate) {
		return respond.BadRequest(c, err.Error())
	}
	if err != nil {
		return respond.Internal(c)
	}
	return respond.OK(c, pagination.NewResponse(appts, total, pg.Limit, pg.Offset))
}

func (h *Handler) PatientHistory(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid id")
	}
	pg := pagination.FromContext(c)
	appts, total, err := h.svc.PatientHistory(c.Request().Context(), patientID, pg.Limit, pg.Offset)
	if err != nil {
		return respond.Internal(c)
	}
	return respond.OK(c, pagination.NewResponse(appts, total, pg.Limit, pg.Offset))
}

func (h *Handler) NextAppointment(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid id")
	}
	a, err := h.svc.NextAppointment(c.Request().Context(), patientID)
	if errors.Is(err, ErrNotFound) {
		return respond.NotFound(c, "no upcoming appointment")
	}
	if err != nil {
		return respond.Internal(c)
	}
	return respond.OK(c, a)
}

func (h *Handler) PatientActivity(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid id")
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	items, err := h.svc.PatientActivity(c.Request().Context(), patientID, limit)
	if err != nil {
		return respond.Internal(c)
	}
	return respond.OK(c, items)
}
