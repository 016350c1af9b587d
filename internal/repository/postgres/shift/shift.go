package shift

import (
	"context"
	"database/sql"
	"time"

	"coaching/attendance/internal/entity"
	"coaching/attendance/internal/pkg/repository/postgresql"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type Repository struct {
	*postgresql.Database
}

func NewRepository(database *postgresql.Database) *Repository {
	return &Repository{Database: database}
}

func (r Repository) GetByID(ctx context.Context, id int) (entity.Shift, error) {
	var detail entity.Shift

	err := r.NewSelect().Model(&detail).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Shift{}, errors.Wrapf(entity.ErrNotFound, "shift %d", id)
	}
	if err != nil {
		return entity.Shift{}, postgresql.Wrap(err, "selecting shift")
	}

	return detail, nil
}

func (r Repository) List(ctx context.Context, tenantID int) ([]entity.Shift, error) {
	var list []entity.Shift

	err := r.NewSelect().Model(&list).Where("tenant_id = ?", tenantID).Order("name ASC").Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, postgresql.Wrap(err, "selecting shifts")
	}

	return list, nil
}

func (r Repository) Create(ctx context.Context, s entity.Shift) (entity.Shift, error) {
	if err := r.ValidateStruct(&s); err != nil {
		return entity.Shift{}, err
	}

	s.ID = 0
	s.CreatedAt = time.Now()

	_, err := r.NewInsert().Model(&s).Returning("id").Exec(ctx, &s.ID)
	if err != nil {
		return entity.Shift{}, postgresql.Wrap(err, "creating shift")
	}

	return s, nil
}

// Update overwrites the template. Records classified earlier keep the status
// they were given.
func (r Repository) Update(ctx context.Context, s entity.Shift) (entity.Shift, error) {
	if err := r.ValidateStruct(&s); err != nil {
		return entity.Shift{}, err
	}

	now := time.Now()
	s.UpdatedAt = &now

	err := r.updateQuery(&s).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Shift{}, errors.Wrapf(entity.ErrNotFound, "shift %d", s.ID)
	}
	if err != nil {
		return entity.Shift{}, postgresql.Wrap(err, "updating shift")
	}

	return s, nil
}

// updateQuery reads the whole row back so created_at survives the update.
func (r Repository) updateQuery(s *entity.Shift) *bun.UpdateQuery {
	return r.NewUpdate().
		Model(s).
		Column("name", "start_time", "end_time", "grace_minutes", "updated_at").
		Where("id = ? AND tenant_id = ?", s.ID, s.TenantID).
		Returning("*")
}
