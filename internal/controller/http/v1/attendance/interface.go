package attendance

import (
	"context"

	"coaching/attendance/internal/entity"
	"coaching/attendance/internal/service/workflow"
)

type Workflow interface {
	MarkRoster(ctx context.Context, req workflow.RosterRequest) (workflow.RosterResult, error)
	SubmitSelf(ctx context.Context, req workflow.SelfRequest) (workflow.SelfResult, error)
	Approve(ctx context.Context, tenantID, recordID, approverID int) (entity.AttendanceRecord, error)
	History(ctx context.Context, q workflow.HistoryQuery) ([]entity.AttendanceRecord, error)
	PendingApprovals(ctx context.Context, tenantID int, branchID *int) ([]entity.AttendanceRecord, error)
	Summary(ctx context.Context, q workflow.HistoryQuery, branchID *int) (workflow.Summary, error)
}
