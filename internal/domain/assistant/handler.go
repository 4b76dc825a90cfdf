package assistant

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medmitra/api/internal/domain/encounter"
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
	doc := api.Group("", auth.RequireRole(auth.RoleDoctor))
	doc.POST("/assistant/invoke", h.Invoke)
	doc.POST("/assistant/sessions/:id/chat", h.Chat)
	doc.POST("/assistant/sessions/:id/apply", h.Apply)
	doc.DELETE("/assistant/sessions/:id", h.End)
}

type invokeRequest struct {
	EncounterID uuid.UUID `json:"encounterId"`
}

func (h *Handler) Invoke(c echo.Context) error {
	var req invokeRequest
	if err := c.Bind(&req); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	if req.EncounterID == uuid.Nil {
		return respond.BadRequest(c, "encounterId is required")
	}
	session, err := h.svc.Invoke(c.Request().Context(), req.EncounterID)
	if err != nil {
		switch {
		case errors.Is(err, ErrDisabled):
			return respond.Error(c, http.StatusServiceUnavailable, err.Error())
		case errors.Is(err, encounter.ErrNotFound):
			return respond.NotFound(c, "encounter not found")
		}
		return respond.Internal(c)
	}
	return respond.OK(c, session)
}

type chatRequest struct {
	Message string `json:"message"`
}

func (h *Handler) Chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	result, err := h.svc.Chat(c.Request().Context(), c.Param("id"), req.Message)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoSession):
			return respond.NotFound(c, "assistant session not found; invoke first")
		case errors.Is(err, ErrEmptyMessage):
			return respond.BadRequest(c, err.Error())
		case errors.Is(err, ErrDisabled):
			return respond.Error(c, http.StatusServiceUnavailable, err.Error())
		}
		return respond.Internal(c)
	}
	return respond.OK(c, result)
}

func (h *Handler) Apply(c echo.Context) error {
	var sug Suggestions
	if err := c.Bind(&sug); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	enc, err := h.svc.Apply(c.Request().Context(), c.Param("id"), sug)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoSession):
			return respond.NotFound(c, "assistant session not found; invoke first")
		case errors.Is(err, encounter.ErrNotDraft):
			return respond.Conflict(c, err.Error())
		case errors.Is(err, encounter.ErrNotFound):
			return respond.NotFound(c, "encounter not found")
		}
		return respond.Internal(c)
	}
	return respond.OK(c, enc)
}

func (h *Handler) End(c echo.Context) error {
	if err := h.svc.End(c.Request().Context(), c.Param("id")); err != nil {
		return respond.Internal(c)
	}
	return respond.OK(c, nil)
}
