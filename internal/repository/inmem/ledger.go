// Package inmem holds map-backed stores with the same contracts as the
// postgres repositories. They back the "memory" storage mode and the tests.
package inmem

import (
	"context"
	"sort"
	"sync"
	"time"

	"coaching/attendance/internal/entity"

	"github.com/pkg/errors"
)

type ledgerKey struct {
	tenantID    int
	subjectType entity.SubjectType
	subjectID   int
	batchID     int
	date        string
}

func keyOf(r entity.AttendanceRecord) ledgerKey {
	k := ledgerKey{
		tenantID:    r.TenantID,
		subjectType: r.SubjectType,
		subjectID:   r.SubjectID,
		date:        entity.CivilDate(r.Date).Format("2006-01-02"),
	}
	if r.BatchID != nil {
		k.batchID = *r.BatchID
	}
	return k
}

type Ledger struct {
	mu      sync.Mutex
	nextID  int
	records map[int]entity.AttendanceRecord
	index   map[ledgerKey]int
	now     func() time.Time
}

func NewLedger() *Ledger {
	return &Ledger{
		records: make(map[int]entity.AttendanceRecord),
		index:   make(map[ledgerKey]int),
		now:     time.Now,
	}
}

func (l *Ledger) Upsert(_ context.Context, record entity.AttendanceRecord) (entity.AttendanceRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.check(record); err != nil {
		return entity.AttendanceRecord{}, err
	}
	return l.put(record), nil
}

// UpsertBatch checks every record before writing any of them.
func (l *Ledger) UpsertBatch(_ context.Context, records []entity.AttendanceRecord) ([]entity.AttendanceRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, record := range records {
		if err := l.check(record); err != nil {
			return nil, err
		}
	}

	saved := make([]entity.AttendanceRecord, 0, len(records))
	for _, record := range records {
		saved = append(saved, l.put(record))
	}
	return saved, nil
}

func (l *Ledger) check(record entity.AttendanceRecord) error {
	id, ok := l.index[keyOf(record)]
	if ok && l.records[id].ApprovalState == entity.ApprovalApproved {
		return errors.Wrapf(entity.ErrAlreadyApproved,
			"%s %d on %s", record.SubjectType, record.SubjectID, record.Date.Format("2006-01-02"))
	}
	return nil
}

func (l *Ledger) put(record entity.AttendanceRecord) entity.AttendanceRecord {
	now := l.now()
	record.Date = entity.CivilDate(record.Date)
	key := keyOf(record)

	if id, ok := l.index[key]; ok {
		current := l.records[id]
		current.Status = record.Status
		current.Remarks = record.Remarks
		current.ApprovalState = record.ApprovalState
		current.UpdatedAt = &now
		l.records[id] = current
		return current
	}

	l.nextID++
	record.ID = l.nextID
	record.CreatedAt = now
	record.UpdatedAt = nil
	record.ApprovedBy, record.ApprovedAt = nil, nil
	l.records[record.ID] = record
	l.index[key] = record.ID
	return record
}

func (l *Ledger) GetByID(_ context.Context, id int) (entity.AttendanceRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	record, ok := l.records[id]
	if !ok {
		return entity.AttendanceRecord{}, errors.Wrapf(entity.ErrNotFound, "attendance record %d", id)
	}
	return record, nil
}

func (l *Ledger) Get(_ context.Context, tenantID int, filter entity.AttendanceFilter) ([]entity.AttendanceRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var list []entity.AttendanceRecord
	for _, r := range l.records {
		if r.TenantID == tenantID && matchFilter(r, filter) {
			list = append(list, r)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].Date.Equal(list[j].Date) {
			return list[i].Date.Before(list[j].Date)
		}
		return list[i].ID < list[j].ID
	})

	if filter.Offset != nil {
		if *filter.Offset >= len(list) {
			return nil, nil
		}
		list = list[*filter.Offset:]
	}
	if filter.Limit != nil && *filter.Limit < len(list) {
		list = list[:*filter.Limit]
	}
	return list, nil
}

func matchFilter(r entity.AttendanceRecord, f entity.AttendanceFilter) bool {
	switch {
	case f.SubjectType != nil && r.SubjectType != *f.SubjectType,
		f.SubjectID != nil && r.SubjectID != *f.SubjectID,
		f.BatchID != nil && (r.BatchID == nil || *r.BatchID != *f.BatchID),
		f.BranchID != nil && r.BranchID != *f.BranchID,
		f.ApprovalState != nil && r.ApprovalState != *f.ApprovalState,
		f.From != nil && r.Date.Before(entity.CivilDate(*f.From)),
		f.To != nil && r.Date.After(entity.CivilDate(*f.To)):
		return false
	}
	return true
}

func (l *Ledger) SetApproval(_ context.Context, tenantID, id int, state entity.ApprovalState, approverID int) (entity.AttendanceRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if state != entity.ApprovalApproved {
		return entity.AttendanceRecord{}, errors.Wrapf(entity.ErrInvalidApprovalTransition, "cannot move to %s", state)
	}

	record, ok := l.records[id]
	if !ok {
		return entity.AttendanceRecord{}, errors.Wrapf(entity.ErrNotFound, "attendance record %d", id)
	}
	if record.TenantID != tenantID {
		return entity.AttendanceRecord{}, errors.Wrapf(entity.ErrTenantMismatch, "attendance record %d", id)
	}
	if record.ApprovalState != entity.ApprovalPending {
		return entity.AttendanceRecord{}, errors.Wrapf(entity.ErrInvalidApprovalTransition,
			"record %d is %s", id, record.ApprovalState)
	}

	now := l.now()
	record.ApprovalState = state
	record.ApprovedBy = &approverID
	record.ApprovedAt = &now
	record.UpdatedAt = &now
	l.records[id] = record
	return record, nil
}
