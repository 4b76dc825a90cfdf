package patient

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
	staff := api.Group("", auth.RequireRole(auth.RoleCoordinator, auth.RoleDoctor))
	staff.GET("/patients/search", h.SearchPatients)
	staff.GET("/patients/:id", h.GetPatient)
	staff.GET("/patients/uhid/:uhid", h.GetByUHID)

	coord := api.Group("", auth.RequireRole(auth.RoleCoordinator))
	coord.POST("/patients", h.RegisterPatient)
	coord.PUT("/patients/:id", h.UpdatePatient)
}

func (h *Handler) SearchPatients(c echo.Context) error {
	pg := pagination.FromContext(c)
	patients, total, err := h.svc.SearchPatients(c.Request().Context(), c.QueryParam("q"), pg.Limit, pg.Offset)
	if errors.Is(err, ErrQueryTooShort) {
		return respond.BadRequest(c, err.Error())
	}
	if err != nil {
		return respond.Internal(c)
	}
	return respond.OK(c, pagination.NewResponse(patients, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetPatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid id")
	}
	p, err := h.svc.GetPatient(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return respond.NotFound(c, "patient not found")
	}
	if err != nil {
		return respond.Internal(c)
	}
	return respond.OK(c, p)
}

func (h *Handler) GetByUHID(c echo.Context) error {
	p, err := h.svc.GetByUHID(c.Request().Context(), c.Param("uhid"))
	if errors.Is(err, ErrNotFound) {
		return respond.NotFound(c, "patient not found")
	}
	if err != nil {
		return respond.Internal(c)
	}
	return respond.OK(c, p)
}

func (h *Handler) RegisterPatient(c echo.Context) error {
	var p Patient
	if err := c.Bind(&p); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	if err := h.svc.RegisterPatient(c.Request().Context(), &p); err != nil {
		if errors.Is(err, ErrInvalidPatient) {
			return respond.BadRequest(c, err.Error())
		}
		return respond.Internal(c)
	}
	return respond.Created(c, p)
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid id")
	}
	var p Patient
	if err := c.Bind(&p); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	p.ID = id
	if err := h.svc.UpdatePatient(c.Request().Context(), &p); err != nil {
		switch {
		case errors.Is(err, ErrInvalidPatient):
			return respond.BadRequest(c, err.Error())
		case errors.Is(err, ErrNotFound):
			return respond.NotFound(c, "patient not found")
		}
		return respond.Internal(c)
	}
	return respond.OK(c, p)
}
