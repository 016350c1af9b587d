package entity

import (
	"github.com/uptrace/bun"
)

// Shift is a named working-hours template owned by a tenant. StartTime and
// EndTime are wall-clock times formatted as "15:04" or "15:04:05".
type Shift struct {
	bun.BaseModel `bun:"table:shift"`

	BasicEntity
	TenantID     int    `json:"tenant_id"     bun:"tenant_id"     validate:"required"`
	Name         string `json:"name"          bun:"name"          validate:"required"`
	StartTime    string `json:"start_time"    bun:"start_time"    validate:"required"`
	EndTime      string `json:"end_time"      bun:"end_time"      validate:"required"`
	GraceMinutes int    `json:"grace_minutes" bun:"grace_minutes" validate:"gte=0"`
}
