// Package client is a typed Go client for the MedMitra HTTP API. Responses
// arrive wrapped in the {success, data, message} envelope; the client peels
// that off and returns plain domain values.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/medmitra/api/internal/domain/appointment"
	"github.com/medmitra/api/internal/domain/assistant"
	"github.com/medmitra/api/internal/domain/doctor"
	"github.com/medmitra/api/internal/domain/encounter"
	"github.com/medmitra/api/internal/domain/patient"
	"github.com/medmitra/api/internal/domain/triage"
	"github.com/medmitra/api/internal/domain/vitals"
)

// APIError carries the HTTP status and the envelope message of a failed call.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// Client talks to a MedMitra server.
type Client struct {
	http *resty.Client
}

// New builds a client for the given base URL. The token, when set, is sent
// as a bearer credential on every request.
func New(baseURL, token string) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if token != "" {
		c.SetAuthToken(token)
	}
	return &Client{http: c}
}

// do executes a request and decodes the envelope into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}, headers map[string]string) error {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	for k, v := range headers {
		req.SetHeader(k, v)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return fmt.Errorf("%s %s: decoding response: %w", method, path, err)
	}
	if resp.StatusCode() >= 400 || !env.Success {
		return &APIError{Status: resp.StatusCode(), Message: env.Message}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%s %s: decoding data: %w", method, path, err)
		}
	}
	return nil
}

// SearchPatients looks up patients by name, UHID, or phone. The server
// rejects queries shorter than two characters.
func (c *Client) SearchPatients(ctx context.Context, query string) ([]patient.Patient, error) {
	var out []patient.Patient
	path := "/api/patients/search?q=" + url.QueryEscape(query)
	if err := c.do(ctx, http.MethodGet, path, nil, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) RegisterPatient(ctx context.Context, p patient.Patient) (*patient.Patient, error) {
	var out patient.Patient
	if err := c.do(ctx, http.MethodPost, "/api/patients", p, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetPatient(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	var out patient.Patient
	if err := c.do(ctx, http.MethodGet, "/api/patients/"+id.String(), nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// VitalsLayout fetches the doctor's resolved vitals layout, ready to render.
func (c *Client) VitalsLayout(ctx context.Context, doctorID uuid.UUID) (*doctor.VitalsLayout, error) {
	var out doctor.VitalsLayout
	if err := c.do(ctx, http.MethodGet, "/api/doctors/"+doctorID.String()+"/vitals-layout", nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// AppointmentVitalsConfig fetches the capture form layout for an
// appointment. The server falls back to the default vitals set on any
// resolution failure, so this only errors on transport problems.
func (c *Client) AppointmentVitalsConfig(ctx context.Context, appointmentID uuid.UUID) (*doctor.AppointmentVitalsConfig, error) {
	var out doctor.AppointmentVitalsConfig
	if err := c.do(ctx, http.MethodGet, "/api/appointments/"+appointmentID.String()+"/vitals-config", nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SavePreference(ctx context.Context, doctorID uuid.UUID, pref vitals.Preference) error {
	return c.do(ctx, http.MethodPut, "/api/doctors/"+doctorID.String()+"/preferences", pref, nil, nil)
}

func (c *Client) BookAppointment(ctx context.Context, req appointment.BookingRequest) (*appointment.Appointment, error) {
	var out appointment.Appointment
	if err := c.do(ctx, http.MethodPost, "/api/appointments", req, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// PatientActivity fetches the patient's dashboard feed, newest first.
func (c *Client) PatientActivity(ctx context.Context, patientID uuid.UUID, limit int) ([]appointment.ActivityItem, error) {
	var out []appointment.ActivityItem
	path := fmt.Sprintf("/api/patients/%s/activity?limit=%d", patientID, limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, status string) (*appointment.Appointment, error) {
	var out appointment.Appointment
	body := map[string]string{"status": status}
	if err := c.do(ctx, http.MethodPatch, "/api/appointments/"+id.String()+"/status", body, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) OpenTriage(ctx context.Context, appointmentID, patientID, doctorID uuid.UUID) (*triage.Record, error) {
	var out triage.Record
	body := map[string]string{
		"appointmentId": appointmentID.String(),
		"patientId":     patientID.String(),
		"doctorId":      doctorID.String(),
	}
	if err := c.do(ctx, http.MethodPost, "/api/triage", body, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SaveVitals(ctx context.Context, triageID uuid.UUID, raw map[string]string) (*triage.Record, error) {
	var out triage.Record
	if err := c.do(ctx, http.MethodPut, "/api/triage/"+triageID.String()+"/vitals", raw, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SavePayment(ctx context.Context, triageID uuid.UUID, req triage.PaymentRequest) (*triage.Record, error) {
	var out triage.Record
	if err := c.do(ctx, http.MethodPut, "/api/triage/"+triageID.String()+"/payment", req, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SendToDoctor(ctx context.Context, triageID uuid.UUID) (*triage.Record, error) {
	var out triage.Record
	if err := c.do(ctx, http.MethodPost, "/api/triage/"+triageID.String()+"/send", nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) OpenEncounter(ctx context.Context, appointmentID, patientID, doctorID uuid.UUID) (*encounter.Encounter, error) {
	var out encounter.Encounter
	body := map[string]string{
		"appointmentId": appointmentID.String(),
		"patientId":     patientID.String(),
		"doctorId":      doctorID.String(),
	}
	if err := c.do(ctx, http.MethodPost, "/api/encounters", body, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// FinalizeEncounter closes an encounter. A fresh idempotency key is
// generated per call; retry the returned call instead of calling again if
// you need replay safety.
func (c *Client) FinalizeEncounter(ctx context.Context, id uuid.UUID, req encounter.FinalizeRequest) (*encounter.Encounter, error) {
	return c.FinalizeEncounterWithKey(ctx, id, req, uuid.New().String())
}

func (c *Client) FinalizeEncounterWithKey(ctx context.Context, id uuid.UUID, req encounter.FinalizeRequest, key string) (*encounter.Encounter, error) {
	var out encounter.Encounter
	headers := map[string]string{encounter.IdempotencyKeyHeader: key}
	if err := c.do(ctx, http.MethodPost, "/api/encounters/"+id.String()+"/finalize", req, &out, headers); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) EncounterDetails(ctx context.Context, id uuid.UUID) (*encounter.Details, error) {
	var out encounter.Details
	if err := c.do(ctx, http.MethodGet, "/api/encounters/"+id.String()+"/details", nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) InvokeAssistant(ctx context.Context, encounterID uuid.UUID) (*assistant.Session, error) {
	var out assistant.Session
	body := map[string]string{"encounterId": encounterID.String()}
	if err := c.do(ctx, http.MethodPost, "/api/assistant/invoke", body, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ChatAssistant(ctx context.Context, sessionID, message string) (*assistant.ChatResult, error) {
	var out assistant.ChatResult
	body := map[string]string{"message": message}
	if err := c.do(ctx, http.MethodPost, "/api/assistant/sessions/"+sessionID+"/chat", body, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ApplyAssistant(ctx context.Context, sessionID string, sug assistant.Suggestions) (*encounter.Encounter, error) {
	var out encounter.Encounter
	if err := c.do(ctx, http.MethodPost, "/api/assistant/sessions/"+sessionID+"/apply", sug, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}
