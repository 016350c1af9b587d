package holiday

import (
	"time"

	"coaching/attendance/internal/entity"

	"github.com/Azure/go-autorest/autorest/date"
)

type RuleRequest struct {
	BranchID    *int               `json:"branch_id"    form:"branch_id"`
	Name        string             `json:"name"         form:"name"`
	Type        entity.HolidayType `json:"type"         form:"type"`
	StartDate   *date.Date         `json:"start_date"   form:"start_date"`
	EndDate     *date.Date         `json:"end_date"     form:"end_date"`
	DaysOfWeek  []int              `json:"days_of_week" form:"days_of_week"`
	IsRecurring bool               `json:"is_recurring" form:"is_recurring"`
	// IsActive defaults to true.
	IsActive *bool `json:"is_active" form:"is_active"`
}

func (r RuleRequest) toEntity(tenantID int) entity.HolidayRule {
	rule := entity.HolidayRule{
		TenantID:    tenantID,
		BranchID:    r.BranchID,
		Name:        r.Name,
		Type:        r.Type,
		StartDate:   toTime(r.StartDate),
		EndDate:     toTime(r.EndDate),
		DaysOfWeek:  r.DaysOfWeek,
		IsRecurring: r.IsRecurring,
		IsActive:    true,
	}
	if r.IsActive != nil {
		rule.IsActive = *r.IsActive
	}
	return rule
}

func toTime(d *date.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.ToTime()
	return &t
}

func toDate(t *time.Time) *date.Date {
	if t == nil {
		return nil
	}
	return &date.Date{Time: *t}
}

type RuleResponse struct {
	ID          int                `json:"id"`
	BranchID    *int               `json:"branch_id"`
	Name        string             `json:"name"`
	Type        entity.HolidayType `json:"type"`
	StartDate   *date.Date         `json:"start_date"`
	EndDate     *date.Date         `json:"end_date"`
	DaysOfWeek  []int              `json:"days_of_week"`
	IsRecurring bool               `json:"is_recurring"`
	IsActive    bool               `json:"is_active"`
}

func toResponse(r entity.HolidayRule) RuleResponse {
	days := r.DaysOfWeek
	if days == nil {
		days = []int{}
	}
	return RuleResponse{
		ID:          r.ID,
		BranchID:    r.BranchID,
		Name:        r.Name,
		Type:        r.Type,
		StartDate:   toDate(r.StartDate),
		EndDate:     toDate(r.EndDate),
		DaysOfWeek:  days,
		IsRecurring: r.IsRecurring,
		IsActive:    r.IsActive,
	}
}

type DayResponse struct {
	Date      date.Date          `json:"date"`
	IsHoliday bool               `json:"is_holiday"`
	RuleID    *int               `json:"rule_id,omitempty"`
	Name      string             `json:"name,omitempty"`
	Type      entity.HolidayType `json:"type,omitempty"`
}

func dayResponse(day time.Time, rule *entity.HolidayRule) DayResponse {
	res := DayResponse{Date: date.Date{Time: entity.CivilDate(day)}}
	if rule != nil {
		id := rule.ID
		res.IsHoliday = true
		res.RuleID = &id
		res.Name = rule.Name
		res.Type = rule.Type
	}
	return res
}
