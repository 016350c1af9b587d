package entity

import "github.com/uptrace/bun"

// Registry rows are owned by the academic CRUD side of the system and are
// only read by the attendance engine.

type Batch struct {
	bun.BaseModel `bun:"table:batch"`

	ID       int `json:"id"        bun:"id,pk"`
	TenantID int `json:"tenant_id" bun:"tenant_id"`
	BranchID int `json:"branch_id" bun:"branch_id"`
}

type Enrollment struct {
	bun.BaseModel `bun:"table:enrollment"`

	BatchID   int `json:"batch_id"   bun:"batch_id"`
	StudentID int `json:"student_id" bun:"student_id"`
}

type Teacher struct {
	bun.BaseModel `bun:"table:teacher"`

	ID       int  `json:"id"        bun:"id,pk"`
	TenantID int  `json:"tenant_id" bun:"tenant_id"`
	BranchID int  `json:"branch_id" bun:"branch_id"`
	ShiftID  *int `json:"shift_id"  bun:"shift_id"`
}
