package encounter

import (
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medmitra/api/internal/platform/auth"
	"github.com/medmitra/api/internal/platform/respond"
	"github.com/medmitra/api/pkg/pagination"
)

// IdempotencyKeyHeader carries the client-generated key that makes finalize
// retries safe.
const IdempotencyKeyHeader = "Idempotency-Key"

type Handler struct {
	svc     *Service
	details *DetailsService
}

func NewHandler(svc *Service, details *DetailsService) *Handler {
	return &Handler{svc: svc, details: details}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	doc := api.Group("", auth.RequireRole(auth.RoleDoctor))
	doc.POST("/encounters", h.OpenDraft)
	doc.PUT("/encounters/:id/notes", h.UpdateNotes)
	doc.POST("/encounters/:id/diagnoses", h.AddDiagnosis)
	doc.DELETE("/encounters/:id/diagnoses/:index", h.RemoveDiagnosis)
	doc.PUT("/encounters/:id/diagnoses/reorder", h.ReorderDiagnoses)
	doc.POST("/encounters/:id/medications", h.AddMedication)
	doc.DELETE("/encounters/:id/medications/:index", h.RemoveMedication)
	doc.PUT("/encounters/:id/medications/reorder", h.ReorderMedications)
	doc.POST("/encounters/:id/finalize", h.Finalize)

	staff := api.Group("", auth.RequireRole(auth.RoleCoordinator, auth.RoleDoctor))
	staff.GET("/encounters/:id", h.Get)
	staff.GET("/encounters/:id/details", h.GetDetails)
	staff.GET("/appointments/:id/encounter", h.GetByAppointment)
	staff.GET("/encounters", h.Search)
}

type openDraftRequest struct {
	AppointmentID uuid.UUID `json:"appointmentId"`
	PatientID     uuid.UUID `json:"patientId"`
	DoctorID      uuid.UUID `json:"doctorId"`
}

func (h *Handler) OpenDraft(c echo.Context) error {
	var req openDraftRequest
	if err := c.Bind(&req); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	if req.AppointmentID == uuid.Nil || req.PatientID == uuid.Nil || req.DoctorID == uuid.Nil {
		return respond.BadRequest(c, "appointmentId, patientId and doctorId are required")
	}
	enc, err := h.svc.OpenDraft(c.Request().Context(), req.AppointmentID, req.PatientID, req.DoctorID)
	if err != nil {
		return respond.Internal(c)
	}
	return respond.Created(c, enc)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid id")
	}
	enc, err := h.svc.Get(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return respond.NotFound(c, "encounter not found")
	}
	if err != nil {
		return respond.Internal(c)
	}
	return respond.OK(c, enc)
}

func (h *Handler) GetByAppointment(c echo.Context) error {
	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid id")
	}
	enc, err := h.svc.GetByAppointment(c.Request().Context(), appointmentID)
	if errors.Is(err, ErrNotFound) {
		return respond.NotFound(c, "encounter not found")
	}
	if err != nil {
		return respond.Internal(c)
	}
	return respond.OK(c, enc)
}

func (h *Handler) GetDetails(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid id")
	}
	d, err := h.details.Get(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return respond.NotFound(c, "encounter not found")
	}
	if err != nil {
		return respond.Internal(c)
	}
	return respond.OK(c, d)
}

type notesRequest struct {
	ChiefComplaint string `json:"chiefComplaint"`
	Symptoms       string `json:"symptoms"`
	Advice         string `json:"advice"`
	FollowUpDate   string `json:"followUpDate"`
}

func (h *Handler) UpdateNotes(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid id")
	}
	var req notesRequest
	if err := c.Bind(&req); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	enc, err := h.svc.UpdateNotes(c.Request().Context(), id, req.ChiefComplaint, req.Symptoms, req.Advice, req.FollowUpDate)
	if err != nil {
		return h.draftError(c, err)
	}
	return respond.OK(c, enc)
}

func (h *Handler) AddDiagnosis(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid id")
	}
	var d Diagnosis
	if err := c.Bind(&d); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	enc, err := h.svc.AddDiagnosis(c.Request().Context(), id, d)
	if err != nil {
		return h.draftError(c, err)
	}
	return respond.OK(c, enc)
}

func (h *Handler) RemoveDiagnosis(c echo.Context) error {
	id, index, err := idAndIndex(c)
	if err != nil {
		return respond.BadRequest(c, err.Error())
	}
	enc, err := h.svc.RemoveDiagnosis(c.Request().Context(), id, index)
	if err != nil {
		return h.draftError(c, err)
	}
	return respond.OK(c, enc)
}

type reorderRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

func (h *Handler) ReorderDiagnoses(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid id")
	}
	var req reorderRequest
	if err := c.Bind(&req); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	enc, err := h.svc.ReorderDiagnoses(c.Request().Context(), id, req.From, req.To)
	if err != nil {
		return h.draftError(c, err)
	}
	return respond.OK(c, enc)
}

func (h *Handler) AddMedication(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid id")
	}
	var m Medication
	if err := c.Bind(&m); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	enc, err := h.svc.AddMedication(c.Request().Context(), id, m)
	if err != nil {
		return h.draftError(c, err)
	}
	return respond.OK(c, enc)
}

func (h *Handler) RemoveMedication(c echo.Context) error {
	id, index, err := idAndIndex(c)
	if err != nil {
		return respond.BadRequest(c, err.Error())
	}
	enc, err := h.svc.RemoveMedication(c.Request().Context(), id, index)
	if err != nil {
		return h.draftError(c, err)
	}
	return respond.OK(c, enc)
}

func (h *Handler) ReorderMedications(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid id")
	}
	var req reorderRequest
	if err := c.Bind(&req); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	enc, err := h.svc.ReorderMedications(c.Request().Context(), id, req.From, req.To)
	if err != nil {
		return h.draftError(c, err)
	}
	return respond.OK(c, enc)
}

func (h *Handler) Finalize(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid id")
	}
	var req FinalizeRequest
	if err := c.Bind(&req); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	key := c.Request().Header.Get(IdempotencyKeyHeader)
	enc, err := h.svc.Finalize(c.Request().Context(), id, req, key)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return respond.NotFound(c, "encounter not found")
		case errors.Is(err, ErrMissingComplaint), errors.Is(err, ErrMissingIdempotency):
			return respond.BadRequest(c, err.Error())
		case errors.Is(err, ErrAlreadyFinalized):
			return respond.Conflict(c, err.Error())
		}
		return respond.Internal(c)
	}
	return respond.OK(c, enc)
}

func (h *Handler) Search(c echo.Context) error {
	pg := pagination.FromContext(c)
	filter := SearchFilter{
		PatientName: c.QueryParam("patientName"),
		Status:      c.QueryParam("status"),
		From:        c.QueryParam("from"),
		To:          c.QueryParam("to"),
		Query:       c.QueryParam("q"),
	}
	if v := c.QueryParam("patient_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return respond.BadRequest(c, "invalid patient_id")
		}
		filter.PatientID = id
	}
	if v := c.QueryParam("doctor_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return respond.BadRequest(c, "invalid doctor_id")
		}
		filter.DoctorID = id
	}

	encs, total, err := h.svc.Search(c.Request().Context(), filter, pg.Limit, pg.Offset)
	if err != nil {
		return respond.Internal(c)
	}
	return respond.OK(c, pagination.NewResponse(encs, total, pg.Limit, pg.Offset))
}

func (h *Handler) draftError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return respond.NotFound(c, "encounter not found")
	case errors.Is(err, ErrNotDraft):
		return respond.Conflict(c, err.Error())
	case errors.Is(err, ErrIndexOutOfRange):
		return respond.BadRequest(c, err.Error())
	}
	return respond.Internal(c)
}

func idAndIndex(c echo.Context) (uuid.UUID, int, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, 0, errors.New("invalid id")
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return uuid.Nil, 0, errors.New("invalid index")
	}
	return id, index, nil
}
