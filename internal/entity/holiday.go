package entity

import (
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type HolidayType string

const (
	HolidaySingleDay  HolidayType = "SingleDay"
	HolidayDateRange  HolidayType = "DateRange"
	HolidayWeeklyOff  HolidayType = "WeeklyOff"
	HolidayGovernment HolidayType = "Government"
	HolidayReligious  HolidayType = "Religious"
)

func (t HolidayType) Valid() bool {
	switch t {
	case HolidaySingleDay, HolidayDateRange, HolidayWeeklyOff, HolidayGovernment, HolidayReligious:
		return true
	}
	return false
}

// HolidayRule declares non-working days for a tenant, or for one branch of it
// when BranchID is set. DaysOfWeek uses time.Weekday numbering (0 = Sunday).
type HolidayRule struct {
	bun.BaseModel `bun:"table:holiday_rule"`

	BasicEntity
	TenantID    int         `json:"tenant_id"    bun:"tenant_id"    validate:"required"`
	BranchID    *int        `json:"branch_id"    bun:"branch_id"`
	Name        string      `json:"name"         bun:"name"         validate:"required,max=200"`
	Type        HolidayType `json:"type"         bun:"type"`
	StartDate   *time.Time  `json:"start_date"   bun:"start_date,type:date"`
	EndDate     *time.Time  `json:"end_date"     bun:"end_date,type:date"`
	DaysOfWeek  []int       `json:"days_of_week" bun:"days_of_week,array"`
	IsRecurring bool        `json:"is_recurring" bun:"is_recurring"`
	IsActive    bool        `json:"is_active"    bun:"is_active"`
}

// Validate checks the per-type field requirements and clears the fields the
// rule type ignores, so stored rules carry only meaningful values.
func (r *HolidayRule) Validate() error {
	if r.Name == "" {
		return errors.Wrap(ErrValidation, "holiday rule name is required")
	}
	if !r.Type.Valid() {
		return errors.Wrapf(ErrValidation, "unknown holiday type %q", r.Type)
	}

	switch r.Type {
	case HolidayWeeklyOff:
		if len(r.DaysOfWeek) == 0 {
			return errors.Wrap(ErrValidation, "weekly off rule needs at least one weekday")
		}
		seen := make(map[int]bool, len(r.DaysOfWeek))
		days := make([]int, 0, len(r.DaysOfWeek))
		for _, d := range r.DaysOfWeek {
			if d < 0 || d > 6 {
				return errors.Wrapf(ErrValidation, "weekday %d is outside 0..6", d)
			}
			if !seen[d] {
				seen[d] = true
				days = append(days, d)
			}
		}
		r.DaysOfWeek = days
		r.StartDate, r.EndDate = nil, nil
		r.IsRecurring = true
	case HolidayDateRange:
		if r.StartDate == nil || r.EndDate == nil {
			return errors.Wrap(ErrValidation, "date range rule needs start_date and end_date")
		}
		start, end := CivilDate(*r.StartDate), CivilDate(*r.EndDate)
		if end.Before(start) {
			return errors.Wrap(ErrValidation, "end_date is before start_date")
		}
		r.StartDate, r.EndDate = &start, &end
		r.DaysOfWeek = nil
	default:
		if r.StartDate == nil {
			return errors.Wrapf(ErrValidation, "%s rule needs start_date", r.Type)
		}
		start := CivilDate(*r.StartDate)
		r.StartDate = &start
		r.EndDate = nil
		r.DaysOfWeek = nil
	}

	return nil
}

// AppliesTo reports whether the rule is active and in scope for the tenant
// and branch. Tenant-wide rules apply to every branch; when branchID is nil
// only tenant-wide rules apply.
func (r HolidayRule) AppliesTo(tenantID int, branchID *int) bool {
	if !r.IsActive || r.TenantID != tenantID {
		return false
	}
	if r.BranchID == nil {
		return true
	}
	return branchID != nil && *r.BranchID == *branchID
}
