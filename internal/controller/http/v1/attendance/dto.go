package attendance

import (
	"coaching/attendance/internal/entity"

	"github.com/Azure/go-autorest/autorest/date"
)

type RosterItem struct {
	StudentID int                     `json:"student_id" form:"student_id"`
	Status    entity.AttendanceStatus `json:"status"     form:"status"`
	Remarks   *string                 `json:"remarks"    form:"remarks"`
}

type RosterRequest struct {
	BatchID  int          `json:"batch_id"  form:"batch_id"`
	BranchID *int         `json:"branch_id" form:"branch_id"`
	Date     date.Date    `json:"date"      form:"date"`
	Items    []RosterItem `json:"items"     form:"items"`
}

// SelfRequest carries no status and no time: both are decided by the server.
type SelfRequest struct {
	Remarks *string `json:"remarks" form:"remarks"`
}

type RecordResponse struct {
	ID            int                     `json:"id"`
	BranchID      int                     `json:"branch_id"`
	SubjectType   entity.SubjectType      `json:"subject_type"`
	SubjectID     int                     `json:"subject_id"`
	BatchID       *int                    `json:"batch_id"`
	Date          date.Date               `json:"date"`
	Status        entity.AttendanceStatus `json:"status"`
	Remarks       *string                 `json:"remarks"`
	ApprovalState entity.ApprovalState    `json:"approval_state"`
	ApprovedBy    *int                    `json:"approved_by"`
	ApprovedAt    *date.Time              `json:"approved_at"`
}

type HolidayNote struct {
	ID   int                `json:"id"`
	Name string             `json:"name"`
	Type entity.HolidayType `json:"type"`
}

func toResponse(r entity.AttendanceRecord) RecordResponse {
	res := RecordResponse{
		ID:            r.ID,
		BranchID:      r.BranchID,
		SubjectType:   r.SubjectType,
		SubjectID:     r.SubjectID,
		BatchID:       r.BatchID,
		Date:          date.Date{Time: r.Date},
		Status:        r.Status,
		Remarks:       r.Remarks,
		ApprovalState: r.ApprovalState,
		ApprovedBy:    r.ApprovedBy,
	}
	if r.ApprovedAt != nil {
		res.ApprovedAt = &date.Time{Time: *r.ApprovedAt}
	}
	return res
}

func toResponses(list []entity.AttendanceRecord) []RecordResponse {
	out := make([]RecordResponse, len(list))
	for i, r := range list {
		out[i] = toResponse(r)
	}
	return out
}

func toHolidayNote(rule *entity.HolidayRule) *HolidayNote {
	if rule == nil {
		return nil
	}
	return &HolidayNote{ID: rule.ID, Name: rule.Name, Type: rule.Type}
}
