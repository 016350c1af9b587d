package holiday

import (
	"context"
	"time"

	"coaching/attendance/internal/entity"
	"coaching/attendance/internal/service/holiday"
)

type Rules interface {
	List(ctx context.Context, tenantID int) ([]entity.HolidayRule, error)
	GetByID(ctx context.Context, tenantID, id int) (entity.HolidayRule, error)
	Create(ctx context.Context, rule entity.HolidayRule) (entity.HolidayRule, error)
	Update(ctx context.Context, rule entity.HolidayRule) (entity.HolidayRule, error)
	Delete(ctx context.Context, tenantID, id int) error
}

type Resolver interface {
	IsHoliday(ctx context.Context, tenantID int, branchID *int, day time.Time) (bool, *entity.HolidayRule, error)
	IsHolidayRange(ctx context.Context, tenantID int, branchID *int, from, to time.Time) ([]holiday.Match, error)
}
