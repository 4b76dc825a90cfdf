package reporting

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"

	"github.com/medmitra/api/internal/platform/auth"
	"github.com/medmitra/api/internal/platform/respond"
)

// MeasureDefinition defines a reporting measure with its SQL query.
type MeasureDefinition struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	SQL         string   `json:"sql"`
	Parameters  []string `json:"parameters"`
}

// MeasureReport holds the results of evaluating a measure.
type MeasureReport struct {
	MeasureID   string                   `json:"measureId"`
	MeasureName string                   `json:"measureName"`
	GeneratedAt time.Time                `json:"generatedAt"`
	Results     []map[string]interface{} `json:"results"`
}

// PredefinedMeasures is the list of available reporting measures.
//
// appointment.scheduled_at is stored as "YYYY-MM-DDTHH:MM:SS", so the day is
// its first ten characters. triage_record.payment_amount is a formatted
// decimal string and casts cleanly to numeric.
var PredefinedMeasures = []MeasureDefinition{
	{
		ID:          "appointments-per-day",
		Name:        "Appointments per Day",
		Description: "Daily appointment volume over the last 30 days",
		SQL: `SELECT LEFT(scheduled_at, 10) AS day, COUNT(*) AS total
		      FROM appointment
		      WHERE LEFT(scheduled_at, 10) >= TO_CHAR(NOW() - INTERVAL '30 days', 'YYYY-MM-DD')
		      GROUP BY day ORDER BY day`,
		Parameters: []string{},
	},
	{
		ID:          "appointment-status-breakdown",
		Name:        "Appointment Status Breakdown",
		Description: "Number of appointments in each lifecycle state",
		SQL:         `SELECT status, COUNT(*) AS total FROM appointment GROUP BY status ORDER BY total DESC`,
		Parameters:  []string{},
	},
	{
		ID:          "revenue-by-payment-mode",
		Name:        "Revenue by Payment Mode",
		Description: "Collected amounts grouped by payment mode, paid records only",
		SQL: `SELECT payment_mode, COUNT(*) AS payments, COALESCE(SUM(payment_amount::numeric), 0) AS total
		      FROM triage_record
		      WHERE payment_status = 'paid' AND payment_mode <> ''
		      GROUP BY payment_mode ORDER BY total DESC`,
		Parameters: []string{},
	},
	{
		ID:          "pending-payments",
		Name:        "Pending Payments",
		Description: "Triage records with payment still outstanding",
		SQL: `SELECT COUNT(*) AS total, COALESCE(SUM(NULLIF(payment_amount, '')::numeric), 0) AS outstanding
		      FROM triage_record WHERE payment_status = 'pending'`,
		Parameters: []string{},
	},
	{
		ID:          "encounters-by-doctor",
		Name:        "Encounters by Doctor",
		Description: "Finalized and draft encounter counts per doctor",
		SQL: `SELECT d.full_name AS doctor,
		             COALESCE(SUM(CASE WHEN e.status = 'finalized' THEN 1 ELSE 0 END), 0) AS finalized,
		             COALESCE(SUM(CASE WHEN e.status = 'draft' THEN 1 ELSE 0 END), 0) AS draft
		      FROM doctor d LEFT JOIN encounter e ON e.doctor_id = d.id
		      GROUP BY d.full_name ORDER BY finalized DESC`,
		Parameters: []string{},
	},
	{
		ID:          "patient-registrations",
		Name:        "Patient Registrations",
		Description: "New patient registrations per month",
		SQL: `SELECT TO_CHAR(created_at, 'YYYY-MM') AS month, COUNT(*) AS total
		      FROM patient GROUP BY month ORDER BY month`,
		Parameters: []string{},
	},
	{
		ID:          "triage-throughput",
		Name:        "Triage Throughput",
		Description: "How many triage records completed vitals, payment, and handover",
		SQL: `SELECT COUNT(*) AS opened,
		             COALESCE(SUM(CASE WHEN vitals_completed THEN 1 ELSE 0 END), 0) AS vitals_done,
		             COALESCE(SUM(CASE WHEN payment_completed THEN 1 ELSE 0 END), 0) AS payment_done,
		             COALESCE(SUM(CASE WHEN sent_to_doctor THEN 1 ELSE 0 END), 0) AS sent
		      FROM triage_record`,
		Parameters: []string{},
	},
}

// FindMeasure looks up a measure by ID.
func FindMeasure(id string) *MeasureDefinition {
	for i := range PredefinedMeasures {
		if PredefinedMeasures[i].ID == id {
			return &PredefinedMeasures[i]
		}
	}
	return nil
}

// Handler provides HTTP handlers for the reporting API.
type Handler struct {
	pool *pgxpool.Pool
}

func NewHandler(pool *pgxpool.Pool) *Handler {
	return &Handler{pool: pool}
}

// RegisterRoutes registers the reporting API routes.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	reports := api.Group("/reports", auth.RequireRole(auth.RoleAdmin, auth.RoleDoctor))
	reports.GET("/measures", h.ListMeasures)
	reports.GET("/measures/:id/evaluate", h.EvaluateMeasure)
}

// ListMeasures returns all available measure definitions.
func (h *Handler) ListMeasures(c echo.Context) error {
	return respond.OK(c, PredefinedMeasures)
}

// EvaluateMeasure executes a measure and returns the results, as JSON or as
// an xlsx attachment when format=xlsx.
func (h *Handler) EvaluateMeasure(c echo.Context) error {
	measure := FindMeasure(c.Param("id"))
	if measure == nil {
		return respond.NotFound(c, "measure not found")
	}

	results, err := h.executeSQL(c.Request().Context(), measure.SQL)
	if err != nil {
		return respond.Internal(c)
	}

	report := MeasureReport{
		MeasureID:   measure.ID,
		MeasureName: measure.Name,
		GeneratedAt: time.Now(),
		Results:     results,
	}

	if c.QueryParam("format") == "xlsx" {
		buf, err := ExportXLSX(&report)
		if err != nil {
			return respond.Internal(c)
		}
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+measure.ID+`.xlsx"`)
		return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf)
	}
	return respond.OK(c, report)
}

// executeSQL runs a query and returns the rows as a slice of maps.
func (h *Handler) executeSQL(ctx context.Context, sql string) ([]map[string]interface{}, error) {
	rows, err := h.pool.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	results := []map[string]interface{}{}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make(map[string]interface{}, len(fieldDescs))
		for i, fd := range fieldDescs {
			row[string(fd.Name)] = values[i]
		}
		results = append(results, row)
	}
	return results, rows.Err()
}
