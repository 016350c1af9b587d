package inmem

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"coaching/attendance/internal/entity"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(subjectID int, status entity.AttendanceStatus, state entity.ApprovalState) entity.AttendanceRecord {
	return entity.AttendanceRecord{
		TenantID:      1,
		BranchID:      10,
		SubjectType:   entity.SubjectTeacherSelf,
		SubjectID:     subjectID,
		Date:          time.Date(2025, 6, 2, 15, 30, 0, 0, time.UTC),
		Status:        status,
		ApprovalState: state,
	}
}

func TestLedgerUpsertKeepsIdentity(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l := NewLedger()

	first, err := l.Upsert(ctx, record(7, entity.StatusLate, entity.ApprovalPending))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), first.Date)

	changed := record(7, entity.StatusPresent, entity.ApprovalPending)
	changed.BranchID = 99
	second, err := l.Upsert(ctx, changed)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, entity.StatusPresent, second.Status)
	assert.Equal(t, 10, second.BranchID, "identity columns are never rewritten")
	assert.NotNil(t, second.UpdatedAt)
}

func TestLedgerBatchKeyDistinguishesBatches(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l := NewLedger()

	a, b := 100, 200
	r1 := record(1, entity.StatusPresent, entity.ApprovalNotRequired)
	r1.SubjectType, r1.BatchID = entity.SubjectStudent, &a
	r2 := r1
	r2.BatchID = &b

	saved, err := l.UpsertBatch(ctx, []entity.AttendanceRecord{r1, r2})
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.NotEqual(t, saved[0].ID, saved[1].ID)
}

func TestLedgerApprovedIsFinal(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l := NewLedger()

	rec, err := l.Upsert(ctx, record(7, entity.StatusLate, entity.ApprovalPending))
	require.NoError(t, err)
	other, err := l.Upsert(ctx, record(8, entity.StatusLate, entity.ApprovalPending))
	require.NoError(t, err)

	approved, err := l.SetApproval(ctx, 1, rec.ID, entity.ApprovalApproved, 50)
	require.NoError(t, err)

	_, err = l.Upsert(ctx, record(7, entity.StatusPresent, entity.ApprovalPending))
	assert.True(t, errors.Is(err, entity.ErrAlreadyApproved))

	// The batch fails as a whole: record 8 keeps its old status.
	_, err = l.UpsertBatch(ctx, []entity.AttendanceRecord{
		record(8, entity.StatusPresent, entity.ApprovalPending),
		record(7, entity.StatusPresent, entity.ApprovalPending),
	})
	assert.True(t, errors.Is(err, entity.ErrAlreadyApproved))

	got, err := l.GetByID(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusLate, got.Status)

	got, err = l.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, approved, got)
}

func TestLedgerSetApproval(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l := NewLedger()

	pending, err := l.Upsert(ctx, record(7, entity.StatusLate, entity.ApprovalPending))
	require.NoError(t, err)
	final, err := l.Upsert(ctx, record(8, entity.StatusLate, entity.ApprovalNotRequired))
	require.NoError(t, err)

	tests := []struct {
		name     string
		tenantID int
		id       int
		state    entity.ApprovalState
		want     error
	}{
		{"unknown record", 1, 999, entity.ApprovalApproved, entity.ErrNotFound},
		{"other tenant", 2, pending.ID, entity.ApprovalApproved, entity.ErrTenantMismatch},
		{"not required", 1, final.ID, entity.ApprovalApproved, entity.ErrInvalidApprovalTransition},
		{"back to pending", 1, pending.ID, entity.ApprovalPending, entity.ErrInvalidApprovalTransition},
		{"to not required", 1, pending.ID, entity.ApprovalNotRequired, entity.ErrInvalidApprovalTransition},
	}

	for _, tt := range tests {
		_, err := l.SetApproval(ctx, tt.tenantID, tt.id, tt.state, 50)
		assert.True(t, errors.Is(err, tt.want), "%s: got %v", tt.name, err)
	}

	got, err := l.GetByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ApprovalPending, got.ApprovalState)
	assert.Nil(t, got.ApprovedBy)
}

func TestLedgerGetFilters(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l := NewLedger()

	for i := 0; i < 5; i++ {
		r := record(7, entity.StatusPresent, entity.ApprovalPending)
		r.Date = time.Date(2025, 6, 2+i, 0, 0, 0, 0, time.UTC)
		_, err := l.Upsert(ctx, r)
		require.NoError(t, err)
	}

	from, to := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)
	list, err := l.Get(ctx, 1, entity.AttendanceFilter{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, from, list[0].Date)

	limit, offset := 2, 1
	list, err = l.Get(ctx, 1, entity.AttendanceFilter{Limit: &limit, Offset: &offset})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC), list[0].Date)

	list, err = l.Get(ctx, 2, entity.AttendanceFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestLedgerConcurrentResubmitAndApprove(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l := NewLedger()

	first, err := l.Upsert(ctx, record(7, entity.StatusLate, entity.ApprovalPending))
	require.NoError(t, err)

	const writers = 32
	var (
		wg         sync.WaitGroup
		refused    atomic.Int32
		approved   entity.AttendanceRecord
		approveErr error
	)

	start := make(chan struct{})
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			status := entity.StatusPresent
			if i%2 == 0 {
				status = entity.StatusLate
			}
			_, err := l.Upsert(ctx, record(7, status, entity.ApprovalPending))
			if err != nil {
				if errors.Is(err, entity.ErrAlreadyApproved) {
					refused.Add(1)
					return
				}
				t.Errorf("unexpected upsert error: %v", err)
			}
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-start
		approved, approveErr = l.SetApproval(ctx, 1, first.ID, entity.ApprovalApproved, 50)
	}()

	close(start)
	wg.Wait()

	require.NoError(t, approveErr)
	assert.Equal(t, entity.ApprovalApproved, approved.ApprovalState)

	stored, err := l.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ApprovalApproved, stored.ApprovalState)
	assert.Equal(t, approved, stored, "writes after approval must not land")
	assert.LessOrEqual(t, int(refused.Load()), writers)

	for i := 0; i < 4; i++ {
		_, err := l.Upsert(ctx, record(7, entity.StatusPresent, entity.ApprovalPending))
		assert.True(t, errors.Is(err, entity.ErrAlreadyApproved), "got %v", err)
	}
}
