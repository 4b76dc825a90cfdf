package vitals

import "context"

type Repository interface {
	ListActive(ctx context.Context) ([]VitalDefinition, error)
	GetByKey(ctx context.Context, key string) (*VitalDefinition, error)
	Create(ctx context.Context, v *VitalDefinition) error
	Update(ctx context.Context, v *VitalDefinition) error
	Deactivate(ctx context.Context, key string) error
}
