package triage

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("triage record not found")

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*Record, error)
	Create(ctx context.Context, rec *Record) error
	Update(ctx context.Context, rec *Record) error
	// ListPending returns records for a doctor that have not been sent yet.
	ListPending(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Record, int, error)
}
