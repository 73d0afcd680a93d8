package ward

import (
	"context"

	"medreg/internal/core/id"
)

// Repository defines the interface for ward persistence.
type Repository interface {
	Create(ctx context.Context, w *Ward) error
	GetByID(ctx context.Context, wardID id.ID) (*Ward, error)
	GetByCode(ctx context.Context, code string) (*Ward, error)
	Update(ctx context.Context, w *Ward) error
	List(ctx context.Context, activeOnly bool) ([]Ward, error)
}
