package prescription

import "time"

// Prescription describes a stored prescription document. Content lives in the
// configured blob backend; this is the metadata.
type Prescription struct {
	ID          string    `json:"id"`
	EncounterID string    `json:"encounterId"`
	PatientID   string    `json:"patientId"`
	DoctorID    string    `json:"doctorId"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	Hash        string    `json:"hash"`
	CreatedAt   time.Time `json:"createdAt"`
}
