package workflow

import (
	"context"
	"time"

	"coaching/attendance/internal/entity"

	"github.com/pkg/errors"
)

type RosterItem struct {
	StudentID int
	Status    entity.AttendanceStatus
	Remarks   *string
}

type RosterRequest struct {
	TenantID int
	BranchID int
	BatchID  int
	Date     time.Time
	Items    []RosterItem
}

type RosterResult struct {
	Records []entity.AttendanceRecord
	// Holiday is the rule that makes Date a holiday, if any.
	Holiday *entity.HolidayRule
}

// MarkRoster records the attendance of a batch for one day. Either every item
// is written or none is. Roster records are final and never need approval.
func (w *Workflow) MarkRoster(ctx context.Context, req RosterRequest) (res RosterResult, err error) {
	defer func() { w.observe("mark_roster", err) }()

	items, err := validateRoster(req)
	if err != nil {
		return RosterResult{}, err
	}
	date := entity.CivilDate(req.Date)

	batch, err := retry(ctx, w, "get_batch", func() (entity.Batch, error) {
		return w.registry.GetBatch(ctx, req.BatchID)
	})
	if err != nil {
		return RosterResult{}, err
	}
	if batch.TenantID != req.TenantID {
		return RosterResult{}, errors.Wrapf(entity.ErrTenantMismatch, "batch %d", req.BatchID)
	}
	if batch.BranchID != req.BranchID {
		return RosterResult{}, errors.Wrapf(entity.ErrTenantMismatch, "batch %d is not in branch %d", req.BatchID, req.BranchID)
	}

	ids := make([]int, len(items))
	for i, item := range items {
		ids[i] = item.StudentID
	}
	enrolled, err := retry(ctx, w, "enrolled_students", func() (map[int]bool, error) {
		return w.registry.EnrolledStudents(ctx, req.BatchID, ids)
	})
	if err != nil {
		return RosterResult{}, err
	}
	for _, id := range ids {
		if !enrolled[id] {
			return RosterResult{}, errors.Wrapf(entity.ErrInvalidStudentInBatch, "student %d, batch %d", id, req.BatchID)
		}
	}

	branchID := req.BranchID
	holiday, err := w.holiday(ctx, req.TenantID, &branchID, date)
	if err != nil {
		return RosterResult{}, err
	}

	batchID := req.BatchID
	records := make([]entity.AttendanceRecord, len(items))
	for i, item := range items {
		records[i] = entity.AttendanceRecord{
			TenantID:      req.TenantID,
			BranchID:      req.BranchID,
			SubjectType:   entity.SubjectStudent,
			SubjectID:     item.StudentID,
			BatchID:       &batchID,
			Date:          date,
			Status:        item.Status,
			Remarks:       item.Remarks,
			ApprovalState: entity.ApprovalNotRequired,
		}
	}

	saved, err := retry(ctx, w, "upsert_roster", func() ([]entity.AttendanceRecord, error) {
		return w.ledger.UpsertBatch(ctx, records)
	})
	if err != nil {
		return RosterResult{}, err
	}

	for _, r := range saved {
		w.metrics.RecordWritten(string(r.SubjectType), string(r.Status))
	}
	w.log.Infow("roster marked",
		"tenant_id", req.TenantID, "batch_id", req.BatchID, "date", date.Format("2006-01-02"), "records", len(saved))

	return RosterResult{Records: saved, Holiday: holiday}, nil
}

// validateRoster returns a copy of the items with cleaned remarks.
func validateRoster(req RosterRequest) ([]RosterItem, error) {
	if req.Date.IsZero() {
		return nil, errors.Wrap(entity.ErrValidation, "date is required")
	}
	if len(req.Items) == 0 {
		return nil, errors.Wrap(entity.ErrValidation, "roster has no items")
	}

	items := make([]RosterItem, len(req.Items))
	seen := make(map[int]bool, len(req.Items))
	for i, item := range req.Items {
		if seen[item.StudentID] {
			return nil, errors.Wrapf(entity.ErrValidation, "student %d appears twice", item.StudentID)
		}
		seen[item.StudentID] = true

		if !item.Status.Valid() {
			return nil, errors.Wrapf(entity.ErrValidation, "student %d: unknown status %q", item.StudentID, item.Status)
		}

		remarks, err := cleanRemarks(item.Remarks)
		if err != nil {
			return nil, errors.Wrapf(err, "student %d", item.StudentID)
		}
		item.Remarks = remarks
		items[i] = item
	}
	return items, nil
}

// holiday resolves day for the tenant branch. When the tenant rejects
// attendance on holidays a match is a validation failure; otherwise the
// matching rule is returned for the caller to annotate its response.
func (w *Workflow) holiday(ctx context.Context, tenantID int, branchID *int, day time.Time) (*entity.HolidayRule, error) {
	type result struct {
		is   bool
		rule *entity.HolidayRule
	}

	res, err := retry(ctx, w, "is_holiday", func() (result, error) {
		is, rule, err := w.calendar.IsHoliday(ctx, tenantID, branchID, day)
		return result{is, rule}, err
	})
	if err != nil {
		return nil, err
	}
	if !res.is {
		return nil, nil
	}

	w.metrics.HolidaySubmission()
	if w.policies.For(tenantID).RejectOnHoliday {
		return nil, errors.Wrapf(entity.ErrValidation, "%s is a holiday (%s)", day.Format("2006-01-02"), res.rule.Name)
	}
	return res.rule, nil
}
