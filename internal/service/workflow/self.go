package workflow

import (
	"context"
	"time"

	"coaching/attendance/internal/entity"
	"coaching/attendance/internal/service/shift"

	"github.com/pkg/errors"
)

// SelfRequest is a teacher's own check-in. It has no status: the status is
// always derived from the teacher's shift.
type SelfRequest struct {
	TenantID  int
	TeacherID int
	CheckIn   time.Time
	Remarks   *string
}

type SelfResult struct {
	Record  entity.AttendanceRecord
	Holiday *entity.HolidayRule
}

// SubmitSelf classifies the check-in against the teacher's shift and stores
// it as Pending. Resubmitting the same day before approval replaces the
// pending record; after approval it fails with ErrAlreadyApproved.
func (w *Workflow) SubmitSelf(ctx context.Context, req SelfRequest) (res SelfResult, err error) {
	defer func() { w.observe("submit_self", err) }()

	if req.CheckIn.IsZero() {
		return SelfResult{}, errors.Wrap(entity.ErrValidation, "check-in time is required")
	}
	remarks, err := cleanRemarks(req.Remarks)
	if err != nil {
		return SelfResult{}, err
	}

	teacher, err := retry(ctx, w, "get_teacher", func() (entity.Teacher, error) {
		return w.registry.GetTeacher(ctx, req.TeacherID)
	})
	if err != nil {
		return SelfResult{}, err
	}
	if teacher.TenantID != req.TenantID {
		return SelfResult{}, errors.Wrapf(entity.ErrTenantMismatch, "teacher %d", req.TeacherID)
	}

	policy := w.policies.For(req.TenantID)
	checkIn := req.CheckIn.In(policy.Location())
	date := entity.CivilDate(checkIn)

	status, err := w.classify(ctx, req.TenantID, teacher, checkIn)
	if err != nil {
		return SelfResult{}, err
	}

	branchID := teacher.BranchID
	holiday, err := w.holiday(ctx, req.TenantID, &branchID, date)
	if err != nil {
		return SelfResult{}, err
	}

	record := entity.AttendanceRecord{
		TenantID:      req.TenantID,
		BranchID:      teacher.BranchID,
		SubjectType:   entity.SubjectTeacherSelf,
		SubjectID:     teacher.ID,
		Date:          date,
		Status:        status,
		Remarks:       remarks,
		ApprovalState: entity.ApprovalPending,
	}

	saved, err := retry(ctx, w, "upsert_self", func() (entity.AttendanceRecord, error) {
		return w.ledger.Upsert(ctx, record)
	})
	if err != nil {
		return SelfResult{}, err
	}

	w.metrics.RecordWritten(string(saved.SubjectType), string(saved.Status))
	w.log.Infow("self attendance submitted",
		"tenant_id", req.TenantID, "teacher_id", teacher.ID, "date", date.Format("2006-01-02"), "status", status)

	return SelfResult{Record: saved, Holiday: holiday}, nil
}

// classify derives the status of a check-in. Teachers without a usable shift
// get the tenant's default status, if one is configured.
func (w *Workflow) classify(ctx context.Context, tenantID int, teacher entity.Teacher, checkIn time.Time) (entity.AttendanceStatus, error) {
	fallback := func() (entity.AttendanceStatus, error) {
		if def := w.policies.For(tenantID).DefaultSelfStatus; def != "" {
			return def, nil
		}
		return "", errors.Wrapf(entity.ErrShiftNotConfigured, "teacher %d", teacher.ID)
	}

	if teacher.ShiftID == nil {
		return fallback()
	}

	s, err := retry(ctx, w, "get_shift", func() (entity.Shift, error) {
		return w.shifts.GetByID(ctx, *teacher.ShiftID)
	})
	if errors.Is(err, entity.ErrNotFound) {
		return fallback()
	}
	if err != nil {
		return "", err
	}
	if s.TenantID != tenantID {
		return "", errors.Wrapf(entity.ErrTenantMismatch, "shift %d", s.ID)
	}

	def, err := shift.FromEntity(s)
	if err != nil {
		return "", errors.Wrapf(err, "shift %d", s.ID)
	}
	return shift.Classify(def, checkIn), nil
}
