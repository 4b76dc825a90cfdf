package triage

import (
	"errors"

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
	coord := api.Group("", auth.RequireRole(auth.RoleCoordinator))
	coord.POST("/triage", h.Open)
	coord.PUT("/triage/:id/vitals", h.SaveVitals)
	coord.PUT("/triage/:id/payment", h.SavePayment)
	coord.POST("/triage/:id/send", h.SendToDoctor)

	staff := api.Group("", auth.RequireRole(auth.RoleCoordinator, auth.RoleDoctor))
	staff.GET("/triage/:id", h.Get)
	staff.GET("/appointments/:id/triage", h.GetByAppointment)
	staff.GET("/doctors/:id/triage/pending", h.Pending)
}

type openRequest struct {
	AppointmentID uuid.UUID `json:"appointmentId"`
	PatientID     uuid.UUID `json:"patientId"`
	DoctorID      uuid.UUID `json:"doctorId"`
}

func (h *Handler) Open(c echo.Context) error {
	var req openRequest
	if err := c.Bind(&req); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	if req.AppointmentID == uuid.Nil || req.PatientID == uuid.Nil || req.DoctorID == uuid.Nil {
		return respond.BadRequest(c, "appointmentId, patientId and doctorId are required")
	}
	rec, err := h.svc.Open(c.Request().Context(), req.AppointmentID, req.PatientID, req.DoctorID)
	if err != nil {
		return respond.Internal(c)
	}
	return respond.Created(c, rec)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid id")
	}
	rec, err := h.svc.Get(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return respond.NotFound(c, "triage record not found")
	}
	if err != nil {
		return respond.Internal(c)
	}
	return respond.OK(c, rec)
}

func (h *Handler) GetByAppointment(c echo.Context) error {
	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid id")
	}
	rec, err := h.svc.GetByAppointment(c.Request().Context(), appointmentID)
	if errors.Is(err, ErrNotFound) {
		return respond.NotFound(c, "triage record not found")
	}
	if err != nil {
		return respond.Internal(c)
	}
	return respond.OK(c, rec)
}

func (h *Handler) SaveVitals(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid id")
	}
	var raw map[string]string
	if err := c.Bind(&raw); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	rec, err := h.svc.SaveVitals(c.Request().Context(), id, raw)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyVitals):
			return respond.BadRequest(c, err.Error())
		case errors.Is(err, ErrRecordFrozen):
			return respond.Conflict(c, err.Error())
		case errors.Is(err, ErrNotFound):
			return respond.NotFound(c, "triage record not found")
		}
		return respond.Internal(c)
	}
	return respond.OK(c, rec)
}

func (h *Handler) SavePayment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid id")
	}
	var req PaymentRequest
	if err := c.Bind(&req); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	rec, err := h.svc.SavePayment(c.Request().Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidPayment):
			return respond.BadRequest(c, err.Error())
		case errors.Is(err, ErrRecordFrozen):
			return respond.Conflict(c, err.Error())
		case errors.Is(err, ErrNotFound):
			return respond.NotFound(c, "triage record not found")
		}
		return respond.Internal(c)
	}
	return respond.OK(c, rec)
}

func (h *Handler) SendToDoctor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid id")
	}
	rec, err := h.svc.SendToDoctor(c.Request().Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return respond.NotFound(c, "triage record not found")
		case errors.Is(err, ErrVitalsIncomplete), errors.Is(err, ErrPaymentIncomplete):
			return respond.BadRequest(c, err.Error())
		case errors.Is(err, ErrAlreadySent):
			return respond.Conflict(c, err.Error())
		}
		return respond.Internal(c)
	}
	return respond.OK(c, rec)
}

func (h *Handler) Pending(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid id")
	}
	pg := pagination.FromContext(c)
	recs, total, err := h.svc.PendingForDoctor(c.Request().Context(), doctorID, pg.Limit, pg.Offset)
	if err != nil {
		return respond.Internal(c)
	}
	return respond.OK(c, pagination.NewResponse(recs, total, pg.Limit, pg.Offset))
}
