package prescription

import (
	"errors"
	"fmt"
	"net/http"

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
	staff := api.Group("", auth.RequireRole(auth.RoleCoordinator, auth.RoleDoctor))
	staff.GET("/encounters/:id/prescriptions", h.ListByEncounter)
	staff.GET("/prescriptions/:id/download", h.Download)

	doc := api.Group("", auth.RequireRole(auth.RoleDoctor))
	doc.POST("/encounters/:id/prescriptions", h.Upload)
	doc.DELETE("/prescriptions/:id", h.Delete)
}

func (h *Handler) Upload(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return respond.BadRequest(c, "file is required")
	}
	src, err := file.Open()
	if err != nil {
		return respond.Internal(c)
	}
	defer src.Close()

	meta := Prescription{
		EncounterID: c.Param("id"),
		PatientID:   c.FormValue("patientId"),
		DoctorID:    auth.UserIDFromContext(c.Request().Context()),
		FileName:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
	}

	p, err := h.svc.Upload(c.Request().Context(), meta, src)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotPDF), errors.Is(err, ErrMissingFileName):
			return respond.BadRequest(c, err.Error())
		case errors.Is(err, ErrFileTooLarge):
			return respond.Error(c, http.StatusRequestEntityTooLarge, err.Error())
		}
		return respond.Internal(c)
	}
	return respond.Created(c, p)
}

func (h *Handler) Download(c echo.Context) error {
	rc, meta, err := h.svc.Download(c.Request().Context(), c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		return respond.NotFound(c, "prescription not found")
	}
	if err != nil {
		return respond.Internal(c)
	}
	defer rc.Close()

	c.Response().Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, meta.FileName))
	return c.Stream(http.StatusOK, meta.ContentType, rc)
}

func (h *Handler) ListByEncounter(c echo.Context) error {
	items, err := h.svc.ListByEncounter(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respond.Internal(c)
	}
	if items == nil {
		items = []*Prescription{}
	}
	return respond.OK(c, items)
}

func (h *Handler) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.NotFound(c, "prescription not found")
		}
		return respond.Internal(c)
	}
	return respond.OK(c, nil)
}
