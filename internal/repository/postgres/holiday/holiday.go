package holiday

import (
	"context"
	"database/sql"
	"time"

	"coaching/attendance/internal/entity"
	"coaching/attendance/internal/pkg/repository/postgresql"

	"github.com/pkg/errors"
)

type Repository struct {
	*postgresql.Database
}

func NewRepository(database *postgresql.Database) *Repository {
	return &Repository{Database: database}
}

// ActiveRules returns the tenant's active rules that are tenant-wide or scoped
// to branchID.
func (r Repository) ActiveRules(ctx context.Context, tenantID int, branchID *int) ([]entity.HolidayRule, error) {
	var list []entity.HolidayRule

	q := r.NewSelect().Model(&list).Where("tenant_id = ? AND is_active", tenantID)
	if branchID != nil {
		q.Where("(branch_id IS NULL OR branch_id = ?)", *branchID)
	} else {
		q.Where("branch_id IS NULL")
	}
	q.Order("id ASC")

	if err := q.Scan(ctx); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, postgresql.Wrap(err, "selecting active holiday rules")
	}

	return list, nil
}

func (r Repository) List(ctx context.Context, tenantID int) ([]entity.HolidayRule, error) {
	var list []entity.HolidayRule

	err := r.NewSelect().Model(&list).Where("tenant_id = ?", tenantID).Order("id ASC").Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, postgresql.Wrap(err, "selecting holiday rules")
	}

	return list, nil
}

func (r Repository) GetByID(ctx context.Context, tenantID, id int) (entity.HolidayRule, error) {
	var detail entity.HolidayRule

	err := r.NewSelect().Model(&detail).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.HolidayRule{}, errors.Wrapf(entity.ErrNotFound, "holiday rule %d", id)
	}
	if err != nil {
		return entity.HolidayRule{}, postgresql.Wrap(err, "selecting holiday rule")
	}
	if detail.TenantID != tenantID {
		return entity.HolidayRule{}, errors.Wrapf(entity.ErrTenantMismatch, "holiday rule %d", id)
	}

	return detail, nil
}

func (r Repository) Create(ctx context.Context, rule entity.HolidayRule) (entity.HolidayRule, error) {
	if err := rule.Validate(); err != nil {
		return entity.HolidayRule{}, err
	}
	if err := r.ValidateStruct(&rule, "TenantID", "Name"); err != nil {
		return entity.HolidayRule{}, err
	}

	rule.ID = 0
	rule.CreatedAt = time.Now()

	_, err := r.NewInsert().Model(&rule).Returning("id").Exec(ctx, &rule.ID)
	if err != nil {
		return entity.HolidayRule{}, postgresql.Wrap(err, "creating holiday rule")
	}

	return rule, nil
}

func (r Repository) Update(ctx context.Context, rule entity.HolidayRule) (entity.HolidayRule, error) {
	if err := rule.Validate(); err != nil {
		return entity.HolidayRule{}, err
	}
	if err := r.ValidateStruct(&rule, "TenantID", "Name"); err != nil {
		return entity.HolidayRule{}, err
	}

	current, err := r.GetByID(ctx, rule.TenantID, rule.ID)
	if err != nil {
		return entity.HolidayRule{}, err
	}

	now := time.Now()
	rule.CreatedAt = current.CreatedAt
	rule.UpdatedAt = &now

	_, err = r.NewUpdate().
		Model(&rule).
		Column("branch_id", "name", "type", "start_date", "end_date", "days_of_week",
			"is_recurring", "is_active", "updated_at").
		Where("id = ? AND tenant_id = ?", rule.ID, rule.TenantID).
		Exec(ctx)
	if err != nil {
		return entity.HolidayRule{}, postgresql.Wrap(err, "updating holiday rule")
	}

	return rule, nil
}

func (r Repository) Delete(ctx context.Context, tenantID, id int) error {
	if _, err := r.GetByID(ctx, tenantID, id); err != nil {
		return err
	}
	return r.DeleteRow(ctx, "holiday_rule", tenantID, id)
}
