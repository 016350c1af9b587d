// Package holiday resolves whether calendar days are working days for a
// tenant branch, from the union of the tenant's holiday rules.
package holiday

import (
	"context"
	"sort"
	"time"

	"coaching/attendance/internal/entity"

	"github.com/pkg/errors"
)

// MaxRangeDays bounds a single range resolution.
const MaxRangeDays = 366

// RuleSource returns the active rules of a tenant that are tenant-wide or
// scoped to branchID.
type RuleSource interface {
	ActiveRules(ctx context.Context, tenantID int, branchID *int) ([]entity.HolidayRule, error)
}

// Store is the full rule persistence contract used by the admin endpoints.
type Store interface {
	RuleSource
	List(ctx context.Context, tenantID int) ([]entity.HolidayRule, error)
	GetByID(ctx context.Context, tenantID, id int) (entity.HolidayRule, error)
	Create(ctx context.Context, rule entity.HolidayRule) (entity.HolidayRule, error)
	Update(ctx context.Context, rule entity.HolidayRule) (entity.HolidayRule, error)
	Delete(ctx context.Context, tenantID, id int) error
}

// Match is a holiday day and the first rule that covers it.
type Match struct {
	Date time.Time
	Rule entity.HolidayRule
}

type Resolver struct {
	rules RuleSource
}

func NewResolver(rules RuleSource) *Resolver {
	return &Resolver{rules: rules}
}

// IsHoliday reports whether day is a holiday for the tenant branch and, if so,
// the first matching rule in id order.
func (r *Resolver) IsHoliday(ctx context.Context, tenantID int, branchID *int, day time.Time) (bool, *entity.HolidayRule, error) {
	rules, err := r.load(ctx, tenantID, branchID)
	if err != nil {
		return false, nil, err
	}

	if rule, ok := firstMatch(rules, day); ok {
		return true, &rule, nil
	}
	return false, nil, nil
}

// IsHolidayRange returns every holiday in [from, to], in date order.
func (r *Resolver) IsHolidayRange(ctx context.Context, tenantID int, branchID *int, from, to time.Time) ([]Match, error) {
	from, to = entity.CivilDate(from), entity.CivilDate(to)
	if to.Before(from) {
		return nil, errors.Wrap(entity.ErrValidation, "range end is before range start")
	}
	if days := int(to.Sub(from).Hours()/24) + 1; days > MaxRangeDays {
		return nil, errors.Wrapf(entity.ErrValidation, "range of %d days exceeds %d", days, MaxRangeDays)
	}

	rules, err := r.load(ctx, tenantID, branchID)
	if err != nil {
		return nil, err
	}

	var matches []Match
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if rule, ok := firstMatch(rules, d); ok {
			matches = append(matches, Match{Date: d, Rule: rule})
		}
	}
	return matches, nil
}

// WorkingDays counts the days in [from, to] that are not holidays.
func (r *Resolver) WorkingDays(ctx context.Context, tenantID int, branchID *int, from, to time.Time) (int, error) {
	days, err := r.WorkingDates(ctx, tenantID, branchID, from, to)
	return len(days), err
}

// WorkingDates returns the days in [from, to] that are not holidays, in date
// order.
func (r *Resolver) WorkingDates(ctx context.Context, tenantID int, branchID *int, from, to time.Time) ([]time.Time, error) {
	matches, err := r.IsHolidayRange(ctx, tenantID, branchID, from, to)
	if err != nil {
		return nil, err
	}

	off := make(map[time.Time]bool, len(matches))
	for _, m := range matches {
		off[m.Date] = true
	}

	var days []time.Time
	for d := entity.CivilDate(from); !d.After(entity.CivilDate(to)); d = d.AddDate(0, 0, 1) {
		if !off[d] {
			days = append(days, d)
		}
	}
	return days, nil
}

func (r *Resolver) load(ctx context.Context, tenantID int, branchID *int) ([]entity.HolidayRule, error) {
	rules, err := r.rules.ActiveRules(ctx, tenantID, branchID)
	if err != nil {
		return nil, errors.Wrap(err, "loading holiday rules")
	}

	scoped := rules[:0:0]
	for _, rule := range rules {
		if rule.AppliesTo(tenantID, branchID) {
			scoped = append(scoped, rule)
		}
	}
	sort.SliceStable(scoped, func(i, j int) bool { return scoped[i].ID < scoped[j].ID })

	return scoped, nil
}

func firstMatch(rules []entity.HolidayRule, day time.Time) (entity.HolidayRule, bool) {
	for _, rule := range rules {
		if Matches(rule, day) {
			return rule, true
		}
	}
	return entity.HolidayRule{}, false
}
