package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestHolidayRuleValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		rule    HolidayRule
		wantErr bool
	}{
		{name: "single day", rule: HolidayRule{Name: "x", Type: HolidaySingleDay, StartDate: day("2025-01-01")}},
		{name: "single day without start", rule: HolidayRule{Name: "x", Type: HolidaySingleDay}, wantErr: true},
		{name: "government", rule: HolidayRule{Name: "x", Type: HolidayGovernment, StartDate: day("2025-01-26")}},
		{name: "range", rule: HolidayRule{Name: "x", Type: HolidayDateRange, StartDate: day("2025-07-01"), EndDate: day("2025-07-03")}},
		{name: "range of one day", rule: HolidayRule{Name: "x", Type: HolidayDateRange, StartDate: day("2025-07-01"), EndDate: day("2025-07-01")}},
		{name: "range missing end", rule: HolidayRule{Name: "x", Type: HolidayDateRange, StartDate: day("2025-07-01")}, wantErr: true},
		{name: "range reversed", rule: HolidayRule{Name: "x", Type: HolidayDateRange, StartDate: day("2025-07-03"), EndDate: day("2025-07-01")}, wantErr: true},
		{name: "weekly off", rule: HolidayRule{Name: "x", Type: HolidayWeeklyOff, DaysOfWeek: []int{0, 6}}},
		{name: "weekly off empty", rule: HolidayRule{Name: "x", Type: HolidayWeeklyOff}, wantErr: true},
		{name: "weekly off bad day", rule: HolidayRule{Name: "x", Type: HolidayWeeklyOff, DaysOfWeek: []int{7}}, wantErr: true},
		{name: "missing name", rule: HolidayRule{Type: HolidaySingleDay, StartDate: day("2025-01-01")}, wantErr: true},
		{name: "unknown type", rule: HolidayRule{Name: "x", Type: "Monthly", StartDate: day("2025-01-01")}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rule := tt.rule
			err := rule.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestHolidayRuleValidateClearsIgnoredFields(t *testing.T) {
	t.Parallel()

	weekly := HolidayRule{Name: "weekend", Type: HolidayWeeklyOff, DaysOfWeek: []int{6, 0, 6}, StartDate: day("2025-01-01")}
	require.NoError(t, weekly.Validate())
	assert.Equal(t, []int{6, 0}, weekly.DaysOfWeek)
	assert.Nil(t, weekly.StartDate)
	assert.True(t, weekly.IsRecurring)

	single := HolidayRule{Name: "new year", Type: HolidaySingleDay, StartDate: day("2025-01-01"), EndDate: day("2025-01-05"), DaysOfWeek: []int{1}}
	require.NoError(t, single.Validate())
	assert.Nil(t, single.EndDate)
	assert.Nil(t, single.DaysOfWeek)
}

func TestHolidayRuleAppliesTo(t *testing.T) {
	t.Parallel()

	branch := 7
	other := 8
	tenantWide := HolidayRule{TenantID: 1, IsActive: true}
	branchOnly := HolidayRule{TenantID: 1, BranchID: &branch, IsActive: true}

	assert.True(t, tenantWide.AppliesTo(1, nil))
	assert.True(t, tenantWide.AppliesTo(1, &branch))
	assert.False(t, tenantWide.AppliesTo(2, nil))
	assert.False(t, branchOnly.AppliesTo(1, nil))
	assert.True(t, branchOnly.AppliesTo(1, &branch))
	assert.False(t, branchOnly.AppliesTo(1, &other))

	inactive := HolidayRule{TenantID: 1}
	assert.False(t, inactive.AppliesTo(1, nil))
}
