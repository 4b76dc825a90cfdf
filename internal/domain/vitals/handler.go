package vitals

import (
	"github.com/labstack/echo/v4"

	"github.com/medmitra/api/internal/platform/auth"
	"github.com/medmitra/api/internal/platform/respond"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole(auth.RoleCoordinator, auth.RoleDoctor))
	read.GET("/vitals/catalog", h.GetCatalog)

	admin := api.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.POST("/vitals/definitions", h.CreateDefinition)
	admin.PUT("/vitals/definitions/:key", h.UpdateDefinition)
	admin.DELETE("/vitals/definitions/:key", h.DeactivateDefinition)
}

func (h *Handler) GetCatalog(c echo.Context) error {
	return respond.OK(c, h.svc.Catalog(c.Request().Context()))
}

func (h *Handler) CreateDefinition(c echo.Context) error {
	var v VitalDefinition
	if err := c.Bind(&v); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	if v.Key == "" || v.Name == "" {
		return respond.BadRequest(c, "key and name are required")
	}
	if v.InputType == "" {
		v.InputType = "number"
	}
	v.IsActive = true
	if err := h.svc.CreateDefinition(c.Request().Context(), &v); err != nil {
		if err == ErrKeyExists {
			return respond.Conflict(c, err.Error())
		}
		return respond.Internal(c)
	}
	return respond.Created(c, v)
}

func (h *Handler) UpdateDefinition(c echo.Context) error {
	var v VitalDefinition
	if err := c.Bind(&v); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	v.Key = c.Param("key")
	if err := h.svc.UpdateDefinition(c.Request().Context(), &v); err != nil {
		return respond.Internal(c)
	}
	return respond.OK(c, v)
}

func (h *Handler) DeactivateDefinition(c echo.Context) error {
	if err := h.svc.DeactivateDefinition(c.Request().Context(), c.Param("key")); err != nil {
		return respond.Internal(c)
	}
	return respond.OK(c, nil)
}
