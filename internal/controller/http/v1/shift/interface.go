package shift

import (
	"context"

	"coaching/attendance/internal/entity"
)

type Shifts interface {
	List(ctx context.Context, tenantID int) ([]entity.Shift, error)
	Create(ctx context.Context, s entity.Shift) (entity.Shift, error)
	Update(ctx context.Context, s entity.Shift) (entity.Shift, error)
}
