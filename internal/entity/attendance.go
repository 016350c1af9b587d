package entity

import (
	"time"

	"github.com/uptrace/bun"
)

type SubjectType string

const (
	SubjectStudent     SubjectType = "Student"
	SubjectTeacherSelf SubjectType = "TeacherSelf"
)

func (s SubjectType) Valid() bool {
	return s == SubjectStudent || s == SubjectTeacherSelf
}

type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "Present"
	StatusAbsent  AttendanceStatus = "Absent"
	StatusLate    AttendanceStatus = "Late"
)

func (s AttendanceStatus) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate:
		return true
	}
	return false
}

type ApprovalState string

const (
	ApprovalNotRequired ApprovalState = "NotRequired"
	ApprovalPending     ApprovalState = "Pending"
	ApprovalApproved    ApprovalState = "Approved"
)

// AttendanceRecord is one ledger row. The tuple (TenantID, SubjectType,
// SubjectID, BatchID, Date) is unique; writes to an existing tuple replace
// Status and Remarks.
type AttendanceRecord struct {
	bun.BaseModel `bun:"table:attendance_record"`

	BasicEntity
	TenantID      int              `json:"tenant_id"      bun:"tenant_id"`
	BranchID      int              `json:"branch_id"      bun:"branch_id"`
	SubjectType   SubjectType      `json:"subject_type"   bun:"subject_type"`
	SubjectID     int              `json:"subject_id"     bun:"subject_id"`
	BatchID       *int             `json:"batch_id"       bun:"batch_id"`
	Date          time.Time        `json:"date"           bun:"date,type:date"`
	Status        AttendanceStatus `json:"status"         bun:"status"`
	Remarks       *string          `json:"remarks"        bun:"remarks"`
	ApprovalState ApprovalState    `json:"approval_state" bun:"approval_state"`
	ApprovedBy    *int             `json:"approved_by"    bun:"approved_by"`
	ApprovedAt    *time.Time       `json:"approved_at"    bun:"approved_at"`
}

// SameKey reports whether r and o address the same ledger slot.
func (r AttendanceRecord) SameKey(o AttendanceRecord) bool {
	return r.TenantID == o.TenantID &&
		r.SubjectType == o.SubjectType &&
		r.SubjectID == o.SubjectID &&
		batchKey(r.BatchID) == batchKey(o.BatchID) &&
		CivilDate(r.Date).Equal(CivilDate(o.Date))
}

func batchKey(id *int) int {
	if id == nil {
		return 0
	}
	return *id
}

// AttendanceFilter narrows a ledger read. Nil fields are not applied; From and
// To are inclusive calendar dates.
type AttendanceFilter struct {
	SubjectType   *SubjectType
	SubjectID     *int
	BatchID       *int
	BranchID      *int
	ApprovalState *ApprovalState
	From          *time.Time
	To            *time.Time
	Limit         *int
	Offset        *int
}
