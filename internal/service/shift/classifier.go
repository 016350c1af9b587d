// Package shift turns a stored shift template into a check-in classifier.
package shift

import (
	"fmt"
	"strings"
	"time"

	"coaching/attendance/internal/entity"

	"github.com/pkg/errors"
)

// Clock is a wall-clock time of day.
type Clock struct {
	Hour   int
	Minute int
	Second int
}

// ParseClock accepts "15:04" and "15:04:05", the two forms TIME columns and
// API clients use.
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	layout := "15:04"
	if strings.Count(s, ":") == 2 {
		layout = "15:04:05"
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return Clock{}, errors.Wrapf(entity.ErrValidation, "invalid time of day %q", s)
	}
	return Clock{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
}

func (c Clock) String() string {
	if c.Second != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
	}
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// On places the clock on the calendar day of t, in t's location.
func (c Clock) On(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, c.Hour, c.Minute, c.Second, 0, t.Location())
}

// Definition is a parsed shift.
type Definition struct {
	Name  string
	Start Clock
	End   Clock
	Grace time.Duration
}

// FromEntity parses the stored shift.
func FromEntity(s entity.Shift) (Definition, error) {
	start, err := ParseClock(s.StartTime)
	if err != nil {
		return Definition{}, errors.Wrap(err, "shift start_time")
	}
	end, err := ParseClock(s.EndTime)
	if err != nil {
		return Definition{}, errors.Wrap(err, "shift end_time")
	}
	if s.GraceMinutes < 0 {
		return Definition{}, errors.Wrap(entity.ErrValidation, "grace_minutes must not be negative")
	}

	return Definition{
		Name:  s.Name,
		Start: start,
		End:   end,
		Grace: time.Duration(s.GraceMinutes) * time.Minute,
	}, nil
}

// Deadline is the last instant on checkIn's day that still counts as on time.
func (d Definition) Deadline(checkIn time.Time) time.Time {
	return d.Start.On(checkIn).Add(d.Grace)
}

// Classify returns Present when checkIn is at or before the grace deadline
// and Late after it. It never returns Absent.
func Classify(d Definition, checkIn time.Time) entity.AttendanceStatus {
	if checkIn.After(d.Deadline(checkIn)) {
		return entity.StatusLate
	}
	return entity.StatusPresent
}
