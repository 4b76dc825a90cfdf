package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses. Bookings move scheduled -> checked_in -> in_triage ->
// with_doctor -> completed, with cancellation possible before completion.
const (
	StatusScheduled  = "scheduled"
	StatusCheckedIn  = "checked_in"
	StatusInTriage   = "in_triage"
	StatusWithDoctor = "with_doctor"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

type Appointment struct {
	ID          uuid.UUID `json:"id"`
	PatientID   uuid.UUID `json:"patientId"`
	DoctorID    uuid.UUID `json:"doctorId"`
	ScheduledAt string    `json:"scheduledAt"`
	Status      string    `json:"status"`
	Type        string    `json:"appointmentType,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// BookingRequest is the booking form payload. Date is a calendar day and
// Time a 12-hour clock reading as entered at the desk. AppointmentType is
// free text from the booking form ("Consultation", "Follow-up").
type BookingRequest struct {
	PatientID       uuid.UUID `json:"patientId"`
	DoctorID        uuid.UUID `json:"doctorId"`
	Date            string    `json:"date"`
	Time            string    `json:"time"`
	AppointmentType string    `json:"appointmentType"`
	Reason          string    `json:"reason"`
}

var validTransitions = map[string][]string{
	StatusScheduled:  {StatusCheckedIn, StatusCancelled},
	StatusCheckedIn:  {StatusInTriage, StatusCancelled},
	StatusInTriage:   {StatusWithDoctor, StatusCancelled},
	StatusWithDoctor: {StatusCompleted},
}

// CanTransition reports whether an appointment may move between two statuses.
func CanTransition(from, to string) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
