package appointment

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("appointment not found")

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Create(ctx context.Context, a *Appointment) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, day string, limit, offset int) ([]*Appointment, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	// NextForPatient returns the earliest not-yet-completed appointment at or
	// after the given timestamp.
	NextForPatient(ctx context.Context, patientID uuid.UUID, after string) (*Appointment, error)
}
