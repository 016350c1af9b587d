// Package workflow orchestrates attendance submission and approval on top of
// the ledger, the holiday calendar and the shift classifier.
package workflow

import (
	"context"
	"time"

	"coaching/attendance/internal/entity"
	"coaching/attendance/internal/pkg/config"
	"coaching/attendance/internal/pkg/metrics"

	"go.uber.org/zap"
)

type Ledger interface {
	Upsert(ctx context.Context, record entity.AttendanceRecord) (entity.AttendanceRecord, error)
	UpsertBatch(ctx context.Context, records []entity.AttendanceRecord) ([]entity.AttendanceRecord, error)
	GetByID(ctx context.Context, id int) (entity.AttendanceRecord, error)
	Get(ctx context.Context, tenantID int, filter entity.AttendanceFilter) ([]entity.AttendanceRecord, error)
	SetApproval(ctx context.Context, tenantID, id int, state entity.ApprovalState, approverID int) (entity.AttendanceRecord, error)
}

type Registry interface {
	GetBatch(ctx context.Context, batchID int) (entity.Batch, error)
	EnrolledStudents(ctx context.Context, batchID int, studentIDs []int) (map[int]bool, error)
	GetTeacher(ctx context.Context, teacherID int) (entity.Teacher, error)
}

type Shifts interface {
	GetByID(ctx context.Context, id int) (entity.Shift, error)
}

type Calendar interface {
	IsHoliday(ctx context.Context, tenantID int, branchID *int, day time.Time) (bool, *entity.HolidayRule, error)
	WorkingDates(ctx context.Context, tenantID int, branchID *int, from, to time.Time) ([]time.Time, error)
}

type Policies interface {
	For(tenantID int) config.TenantPolicy
}

type Config struct {
	// RetryDelay is the pause before the single retry of a transient
	// storage failure.
	RetryDelay time.Duration
}

type Workflow struct {
	ledger   Ledger
	registry Registry
	shifts   Shifts
	calendar Calendar
	policies Policies
	log      *zap.SugaredLogger
	metrics  *metrics.Metrics
	cfg      Config
}

func New(
	ledger Ledger,
	registry Registry,
	shifts Shifts,
	calendar Calendar,
	policies Policies,
	log *zap.SugaredLogger,
	m *metrics.Metrics,
	cfg Config,
) *Workflow {
	return &Workflow{
		ledger:   ledger,
		registry: registry,
		shifts:   shifts,
		calendar: calendar,
		policies: policies,
		log:      log,
		metrics:  m,
		cfg:      cfg,
	}
}

func (w *Workflow) observe(operation string, err error) {
	if err == nil {
		w.metrics.Operation(operation, metrics.OutcomeOK)
		return
	}

	kind := entity.KindOf(err)
	if kind == "" {
		kind = "Internal"
	}
	w.metrics.Operation(operation, kind)
}
