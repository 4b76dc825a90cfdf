package encounter

import (
	"time"

	"github.com/google/uuid"
)

// Encounter statuses.
const (
	StatusDraft     = "draft"
	StatusFinalized = "finalized"
)

// Diagnosis is one diagnosis line on an encounter. Confidence is 0..1 and
// carries over from assistant suggestions; manual entries leave it zero.
type Diagnosis struct {
	Code        string  `json:"code"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
}

// Medication is one prescription line.
type Medication struct {
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	Duration     string `json:"duration"`
	Instructions string `json:"instructions"`
}

type Encounter struct {
	ID             uuid.UUID    `json:"id"`
	AppointmentID  uuid.UUID    `json:"appointmentId"`
	PatientID      uuid.UUID    `json:"patientId"`
	DoctorID       uuid.UUID    `json:"doctorId"`
	Status         string       `json:"status"`
	ChiefComplaint string       `json:"chiefComplaint"`
	Symptoms       string       `json:"symptoms,omitempty"`
	Diagnoses      []Diagnosis  `json:"diagnoses"`
	Medications    []Medication `json:"medications"`
	LabTests       []string     `json:"labTests"`
	Advice         string       `json:"advice,omitempty"`
	FollowUpDate   string       `json:"followUpDate,omitempty"`
	IdempotencyKey string       `json:"-"`
	FinalizedAt    *time.Time   `json:"finalizedAt,omitempty"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// FinalizeRequest is the complete consultation payload submitted when the
// doctor closes the encounter.
type FinalizeRequest struct {
	ChiefComplaint string       `json:"chiefComplaint"`
	Symptoms       string       `json:"symptoms"`
	Diagnoses      []Diagnosis  `json:"diagnoses"`
	Medications    []Medication `json:"medications"`
	LabTests       []string     `json:"labTests"`
	Advice         string       `json:"advice"`
	FollowUpDate   string       `json:"followUpDate"`
}

// Normalize fills nil collections so the stored record always has concrete
// empty lists rather than nulls.
func (r *FinalizeRequest) Normalize() {
	if r.Diagnoses == nil {
		r.Diagnoses = []Diagnosis{}
	}
	if r.Medications == nil {
		r.Medications = []Medication{}
	}
	if r.LabTests == nil {
		r.LabTests = []string{}
	}
}

// SearchFilter narrows past-case lookups. Zero values mean "any".
type SearchFilter struct {
	PatientID uuid.UUID
	// PatientName matches against the registered patient's full name.
	PatientName string
	DoctorID    uuid.UUID
	Status      string
	From        string
	To          string
	// Query matches chief complaint, symptoms, diagnosis and medication text.
	Query string
}
