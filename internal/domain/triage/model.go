package triage

import (
	"time"

	"github.com/google/uuid"
)

// Payment modes accepted at the desk.
const (
	PaymentCash      = "Cash"
	PaymentUPI       = "UPI"
	PaymentCard      = "Card"
	PaymentInsurance = "Insurance"
)

// Payment statuses.
const (
	PaymentPaid    = "paid"
	PaymentPending = "pending"
)

// VitalsMap holds captured readings keyed by vital key. Blood pressure stays
// the literal reading ("120/80"); every other vital is a number.
type VitalsMap map[string]interface{}

// Record is the triage state for one appointment. Send-to-doctor is gated on
// both vitals and payment being completed.
type Record struct {
	ID               uuid.UUID  `json:"id"`
	AppointmentID    uuid.UUID  `json:"appointmentId"`
	PatientID        uuid.UUID  `json:"patientId"`
	DoctorID         uuid.UUID  `json:"doctorId"`
	Vitals           VitalsMap  `json:"vitals,omitempty"`
	VitalsCompleted  bool       `json:"vitalsCompleted"`
	PaymentMode      string     `json:"paymentMode,omitempty"`
	PaymentStatus    string     `json:"paymentStatus,omitempty"`
	PaymentAmount    string     `json:"paymentAmount,omitempty"`
	PaymentCompleted bool       `json:"paymentCompleted"`
	SentToDoctor     bool       `json:"sentToDoctor"`
	SentAt           *time.Time `json:"sentAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// PaymentRequest is the desk payment form. The charge is the consultation fee
// plus any additional charges.
type PaymentRequest struct {
	Mode              string  `json:"mode"`
	Status            string  `json:"status"`
	ConsultationFee   float64 `json:"consultationFee"`
	AdditionalCharges float64 `json:"additionalCharges"`
}

func ValidPaymentMode(mode string) bool {
	switch mode {
	case PaymentCash, PaymentUPI, PaymentCard, PaymentInsurance:
		return true
	}
	return false
}

func ValidPaymentStatus(status string) bool {
	return status == PaymentPaid || status == PaymentPending
}
