package encounter

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("encounter not found")

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Encounter, error)
	GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*Encounter, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*Encounter, error)
	Create(ctx context.Context, enc *Encounter) error
	Update(ctx context.Context, enc *Encounter) error
	Search(ctx context.Context, filter SearchFilter, limit, offset int) ([]*Encounter, int, error)
}
