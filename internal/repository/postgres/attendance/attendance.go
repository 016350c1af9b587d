package attendance

import (
	"context"
	"database/sql"
	"time"

	"coaching/attendance/internal/entity"
	"coaching/attendance/internal/pkg/repository/postgresql"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// upsertQuery writes one ledger slot. The conflict target matches the unique
// index on attendance_record; the WHERE clause keeps approved rows untouched,
// in which case no row is returned.
const upsertQuery = `
	INSERT INTO attendance_record AS ar (
		tenant_id, branch_id, subject_type, subject_id, batch_id, date,
		status, remarks, approval_state, created_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (tenant_id, subject_type, subject_id, (COALESCE(batch_id, 0)), date)
	DO UPDATE SET
		status = EXCLUDED.status,
		remarks = EXCLUDED.remarks,
		approval_state = EXCLUDED.approval_state,
		updated_at = EXCLUDED.created_at
	WHERE ar.approval_state <> 'Approved'
	RETURNING *
`

type Repository struct {
	*postgresql.Database
	now func() time.Time
}

func NewRepository(database *postgresql.Database) *Repository {
	return &Repository{Database: database, now: time.Now}
}

// Upsert writes record to its ledger slot.
func (r Repository) Upsert(ctx context.Context, record entity.AttendanceRecord) (entity.AttendanceRecord, error) {
	return r.upsert(ctx, r.DB, record)
}

// UpsertBatch writes all records in one transaction; if any write fails none
// is kept.
func (r Repository) UpsertBatch(ctx context.Context, records []entity.AttendanceRecord) ([]entity.AttendanceRecord, error) {
	saved := make([]entity.AttendanceRecord, 0, len(records))

	err := r.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, record := range records {
			out, err := r.upsert(ctx, tx, record)
			if err != nil {
				return err
			}
			saved = append(saved, out)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return saved, nil
}

func (r Repository) upsert(ctx context.Context, db bun.IDB, record entity.AttendanceRecord) (entity.AttendanceRecord, error) {
	var out entity.AttendanceRecord

	err := db.NewRaw(upsertQuery,
		record.TenantID,
		record.BranchID,
		record.SubjectType,
		record.SubjectID,
		record.BatchID,
		entity.CivilDate(record.Date),
		record.Status,
		record.Remarks,
		record.ApprovalState,
		r.now(),
	).Scan(ctx, &out)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.AttendanceRecord{}, errors.Wrapf(entity.ErrAlreadyApproved,
			"%s %d on %s", record.SubjectType, record.SubjectID, record.Date.Format("2006-01-02"))
	}
	if err != nil {
		return entity.AttendanceRecord{}, postgresql.Wrap(err, "upserting attendance")
	}

	return out, nil
}

func (r Repository) GetByID(ctx context.Context, id int) (entity.AttendanceRecord, error) {
	var detail entity.AttendanceRecord

	err := r.NewSelect().Model(&detail).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.AttendanceRecord{}, errors.Wrapf(entity.ErrNotFound, "attendance record %d", id)
	}
	if err != nil {
		return entity.AttendanceRecord{}, postgresql.Wrap(err, "selecting attendance record")
	}

	return detail, nil
}

// Get lists the tenant's records matching filter, oldest date first.
func (r Repository) Get(ctx context.Context, tenantID int, filter entity.AttendanceFilter) ([]entity.AttendanceRecord, error) {
	var list []entity.AttendanceRecord

	q := r.NewSelect().Model(&list).Where("tenant_id = ?", tenantID)

	if filter.SubjectType != nil {
		q.Where("subject_type = ?", *filter.SubjectType)
	}
	if filter.SubjectID != nil {
		q.Where("subject_id = ?", *filter.SubjectID)
	}
	if filter.BatchID != nil {
		q.Where("batch_id = ?", *filter.BatchID)
	}
	if filter.BranchID != nil {
		q.Where("branch_id = ?", *filter.BranchID)
	}
	if filter.ApprovalState != nil {
		q.Where("approval_state = ?", *filter.ApprovalState)
	}
	if filter.From != nil {
		q.Where("date >= ?", entity.CivilDate(*filter.From))
	}
	if filter.To != nil {
		q.Where("date <= ?", entity.CivilDate(*filter.To))
	}
	if filter.Limit != nil {
		q.Limit(*filter.Limit)
	}
	if filter.Offset != nil {
		q.Offset(*filter.Offset)
	}
	q.Order("date ASC", "id ASC")

	if err := q.Scan(ctx); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, postgresql.Wrap(err, "selecting attendance")
	}

	return list, nil
}

// SetApproval moves a record of tenantID from Pending to state. Only
// Pending -> Approved is accepted.
func (r Repository) SetApproval(ctx context.Context, tenantID, id int, state entity.ApprovalState, approverID int) (entity.AttendanceRecord, error) {
	if state != entity.ApprovalApproved {
		return entity.AttendanceRecord{}, errors.Wrapf(entity.ErrInvalidApprovalTransition, "cannot move to %s", state)
	}

	var out entity.AttendanceRecord
	now := r.now()

	err := r.NewUpdate().
		Model(&out).
		Set("approval_state = ?", state).
		Set("approved_by = ?", approverID).
		Set("approved_at = ?", now).
		Set("updated_at = ?", now).
		Where("id = ? AND tenant_id = ? AND approval_state = ?", id, tenantID, entity.ApprovalPending).
		Returning("*").
		Scan(ctx)
	if err == nil {
		return out, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return entity.AttendanceRecord{}, postgresql.Wrap(err, "approving attendance")
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return entity.AttendanceRecord{}, err
	}
	if current.TenantID != tenantID {
		return entity.AttendanceRecord{}, errors.Wrapf(entity.ErrTenantMismatch, "attendance record %d", id)
	}
	return entity.AttendanceRecord{}, errors.Wrapf(entity.ErrInvalidApprovalTransition,
		"record %d is %s", id, current.ApprovalState)
}
