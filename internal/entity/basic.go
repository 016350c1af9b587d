package entity

import "time"

type BasicEntity struct {
	ID        int        `json:"id"         bun:"id,pk,autoincrement"`
	CreatedAt time.Time  `json:"created_at" bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt *time.Time `json:"updated_at" bun:"updated_at"`
}

// CivilDate strips the clock from t and returns the calendar day it falls on
// in its own location, as midnight UTC.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
