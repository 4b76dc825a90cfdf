package doctor

import (
	"errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medmitra/api/internal/domain/vitals"
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
	read := api.Group("", auth.RequireRole(auth.RoleCoordinator, auth.RoleDoctor))
	read.GET("/doctors", h.ListDoctors)
	read.GET("/doctors/:id", h.GetDoctor)
	read.GET("/doctors/:id/vitals-layout", h.GetVitalsLayout)
	read.GET("/appointments/:id/vitals-config", h.AppointmentVitalsConfig)

	write := api.Group("", auth.RequireRole(auth.RoleDoctor))
	write.PUT("/doctors/:id", h.UpdateDoctor)
	write.PUT("/doctors/:id/preferences", h.SavePreference)

	admin := api.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.POST("/doctors", h.CreateDoctor)
}

func (h *Handler) ListDoctors(c echo.Context) error {
	pg := pagination.FromContext(c)
	docs, total, err := h.svc.ListDoctors(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return respond.Internal(c)
	}
	return respond.OK(c, pagination.NewResponse(docs, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetDoctor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid id")
	}
	d, err := h.svc.GetProfile(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return respond.NotFound(c, "doctor not found")
	}
	if err != nil {
		return respond.Internal(c)
	}
	return respond.OK(c, d)
}

func (h *Handler) CreateDoctor(c echo.Context) error {
	var d Doctor
	if err := c.Bind(&d); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	if err := h.svc.CreateDoctor(c.Request().Context(), &d); err != nil {
		if errors.Is(err, ErrInvalidProfile) {
			return respond.BadRequest(c, err.Error())
		}
		return respond.Internal(c)
	}
	return respond.Created(c, d)
}

func (h *Handler) UpdateDoctor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid id")
	}
	var d Doctor
	if err := c.Bind(&d); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	d.ID = id
	if err := h.svc.UpdateProfile(c.Request().Context(), &d); err != nil {
		switch {
		case errors.Is(err, ErrInvalidProfile):
			return respond.BadRequest(c, err.Error())
		case errors.Is(err, ErrNotFound):
			return respond.NotFound(c, "doctor not found")
		}
		return respond.Internal(c)
	}
	return respond.OK(c, d)
}

func (h *Handler) GetVitalsLayout(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid id")
	}
	layout, err := h.svc.GetVitalsLayout(c.Request().Context(), id)
	if err != nil {
		return respond.Internal(c)
	}
	return respond.OK(c, layout)
}

// AppointmentVitalsConfig never fails: resolution errors degrade to the
// fallback set inside the service.
func (h *Handler) AppointmentVitalsConfig(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid id")
	}
	return respond.OK(c, h.svc.ResolveAppointmentVitals(c.Request().Context(), id))
}

func (h *Handler) SavePreference(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid id")
	}
	var pref vitals.Preference
	if err := c.Bind(&pref); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	if err := h.svc.SavePreference(c.Request().Context(), id, pref); err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.NotFound(c, "doctor not found")
		}
		return respond.Internal(c)
	}
	return respond.OK(c, pref)
}
