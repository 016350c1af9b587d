// Package registry reads the batch, enrollment and teacher facts kept by the
// academic side of the system. It never writes.
package registry

import (
	"context"
	"database/sql"

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

func (r Repository) GetBatch(ctx context.Context, batchID int) (entity.Batch, error) {
	var detail entity.Batch

	err := r.NewSelect().Model(&detail).Where("id = ?", batchID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Batch{}, errors.Wrapf(entity.ErrNotFound, "batch %d", batchID)
	}
	if err != nil {
		return entity.Batch{}, postgresql.Wrap(err, "selecting batch")
	}

	return detail, nil
}

// EnrolledStudents returns which of studentIDs are enrolled in the batch.
func (r Repository) EnrolledStudents(ctx context.Context, batchID int, studentIDs []int) (map[int]bool, error) {
	if len(studentIDs) == 0 {
		return map[int]bool{}, nil
	}

	var ids []int

	err := r.NewSelect().
		Model((*entity.Enrollment)(nil)).
		Column("student_id").
		Where("batch_id = ?", batchID).
		Where("student_id IN (?)", bun.In(studentIDs)).
		Scan(ctx, &ids)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, postgresql.Wrap(err, "selecting enrollment")
	}

	enrolled := make(map[int]bool, len(ids))
	for _, id := range ids {
		enrolled[id] = true
	}
	return enrolled, nil
}

func (r Repository) GetTeacher(ctx context.Context, teacherID int) (entity.Teacher, error) {
	var detail entity.Teacher

	err := r.NewSelect().Model(&detail).Where("id = ?", teacherID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Teacher{}, errors.Wrapf(entity.ErrNotFound, "teacher %d", teacherID)
	}
	if err != nil {
		return entity.Teacher{}, postgresql.Wrap(err, "selecting teacher")
	}

	return detail, nil
}
