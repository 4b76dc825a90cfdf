package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("patient not found")

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByUHID(ctx context.Context, uhid string) (*Patient, error)
	Create(ctx context.Context, p *Patient) error
	Update(ctx context.Context, p *Patient) error
	// Search matches name, UHID and phone against the query.
	Search(ctx context.Context, query string, limit, offset int) ([]*Patient, int, error)
	NextUHIDSequence(ctx context.Context) (int64, error)
}
