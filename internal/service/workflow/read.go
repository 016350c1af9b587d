package workflow

import (
	"context"
	"math"
	"time"

	"coaching/attendance/internal/entity"

	"github.com/pkg/errors"
)

type HistoryQuery struct {
	TenantID    int
	SubjectType entity.SubjectType
	SubjectID   int
	From        time.Time
	To          time.Time
}

func (q HistoryQuery) validate() error {
	if !q.SubjectType.Valid() {
		return errors.Wrapf(entity.ErrValidation, "unknown subject type %q", q.SubjectType)
	}
	if q.From.IsZero() || q.To.IsZero() {
		return errors.Wrap(entity.ErrValidation, "from and to are required")
	}
	if entity.CivilDate(q.To).Before(entity.CivilDate(q.From)) {
		return errors.Wrap(entity.ErrValidation, "to is before from")
	}
	return nil
}

// History lists a subject's records in [From, To], oldest first.
func (w *Workflow) History(ctx context.Context, q HistoryQuery) (list []entity.AttendanceRecord, err error) {
	defer func() { w.observe("history", err) }()

	if err := q.validate(); err != nil {
		return nil, err
	}

	return retry(ctx, w, "get_history", func() ([]entity.AttendanceRecord, error) {
		return w.ledger.Get(ctx, q.TenantID, entity.AttendanceFilter{
			SubjectType: &q.SubjectType,
			SubjectID:   &q.SubjectID,
			From:        &q.From,
			To:          &q.To,
		})
	})
}

// PendingApprovals lists the tenant's records waiting for approval,
// optionally within one branch.
func (w *Workflow) PendingApprovals(ctx context.Context, tenantID int, branchID *int) (list []entity.AttendanceRecord, err error) {
	defer func() { w.observe("pending_approvals", err) }()

	state := entity.ApprovalPending
	return retry(ctx, w, "get_pending", func() ([]entity.AttendanceRecord, error) {
		return w.ledger.Get(ctx, tenantID, entity.AttendanceFilter{
			ApprovalState: &state,
			BranchID:      branchID,
		})
	})
}

type Summary struct {
	SubjectType entity.SubjectType `json:"subject_type"`
	SubjectID   int                `json:"subject_id"`
	From        time.Time          `json:"from"`
	To          time.Time          `json:"to"`
	Present     int                `json:"present"`
	Late        int                `json:"late"`
	Absent      int                `json:"absent"`
	WorkingDays int                `json:"working_days"`
	// Percentage is (Present+Late) / WorkingDays * 100, rounded to two
	// decimals; 0 when the range has no working day. It never exceeds 100.
	Percentage float64 `json:"percentage"`
}

// Summary counts a subject's statuses on the working days of [From, To].
// BranchID selects the calendar; nil uses tenant-wide rules.
func (w *Workflow) Summary(ctx context.Context, q HistoryQuery, branchID *int) (s Summary, err error) {
	defer func() { w.observe("summary", err) }()

	if err := q.validate(); err != nil {
		return Summary{}, err
	}

	records, err := retry(ctx, w, "get_history", func() ([]entity.AttendanceRecord, error) {
		return w.ledger.Get(ctx, q.TenantID, entity.AttendanceFilter{
			SubjectType: &q.SubjectType,
			SubjectID:   &q.SubjectID,
			From:        &q.From,
			To:          &q.To,
		})
	})
	if err != nil {
		return Summary{}, err
	}

	working, err := retry(ctx, w, "working_days", func() ([]time.Time, error) {
		return w.calendar.WorkingDates(ctx, q.TenantID, branchID, q.From, q.To)
	})
	if err != nil {
		return Summary{}, err
	}

	s = Summary{
		SubjectType: q.SubjectType,
		SubjectID:   q.SubjectID,
		From:        entity.CivilDate(q.From),
		To:          entity.CivilDate(q.To),
		WorkingDays: len(working),
	}

	// One status per working day. Records on holidays are ignored and a
	// day with several records (two batches) counts once, at its best status.
	best := make(map[time.Time]entity.AttendanceStatus, len(working))
	for _, d := range working {
		best[d] = ""
	}
	for _, r := range records {
		d := entity.CivilDate(r.Date)
		cur, ok := best[d]
		if !ok {
			continue
		}
		if statusRank(r.Status) > statusRank(cur) {
			best[d] = r.Status
		}
	}
	for _, status := range best {
		switch status {
		case entity.StatusPresent:
			s.Present++
		case entity.StatusLate:
			s.Late++
		case entity.StatusAbsent:
			s.Absent++
		}
	}
	if len(working) > 0 {
		s.Percentage = math.Round(float64(s.Present+s.Late)/float64(len(working))*10000) / 100
	}

	return s, nil
}

func statusRank(s entity.AttendanceStatus) int {
	switch s {
	case entity.StatusPresent:
		return 3
	case entity.StatusLate:
		return 2
	case entity.StatusAbsent:
		return 1
	}
	return 0
}
