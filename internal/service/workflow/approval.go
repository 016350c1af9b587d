package workflow

import (
	"context"

	"coaching/attendance/internal/entity"
)

// Approve moves a pending self-reported record to Approved. Records of other
// tenants, roster records and records already approved are refused.
func (w *Workflow) Approve(ctx context.Context, tenantID, recordID, approverID int) (rec entity.AttendanceRecord, err error) {
	defer func() { w.observe("approve", err) }()

	rec, err = retry(ctx, w, "set_approval", func() (entity.AttendanceRecord, error) {
		return w.ledger.SetApproval(ctx, tenantID, recordID, entity.ApprovalApproved, approverID)
	})
	if err != nil {
		return entity.AttendanceRecord{}, err
	}

	w.log.Infow("attendance approved", "tenant_id", tenantID, "record_id", recordID, "approver_id", approverID)
	return rec, nil
}
