package doctor

import (
	"time"

	"github.com/google/uuid"

	"github.com/medmitra/api/internal/domain/vitals"
)

type Doctor struct {
	ID                 uuid.UUID `json:"id"`
	FullName           string    `json:"fullName"`
	Qualification      string    `json:"qualification"`
	RegistrationNumber string    `json:"registrationNumber"`
	Specialty          string    `json:"specialty"`
	ConsultationFee    float64   `json:"consultationFee"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// Preference is the doctor's saved triage pad layout. It is stored as the
// doctor last saved it and reconciled against the live catalog on read.
type Preference struct {
	DoctorID  uuid.UUID         `json:"doctorId"`
	Vitals    vitals.Preference `json:"vitals"`
	UpdatedAt time.Time         `json:"updatedAt"`
}
