package inmem

import (
	"context"
	"sort"
	"sync"
	"time"

	"coaching/attendance/internal/entity"

	"github.com/pkg/errors"
)

type Shifts struct {
	mu     sync.Mutex
	nextID int
	shifts map[int]entity.Shift
}

func NewShifts() *Shifts {
	return &Shifts{shifts: make(map[int]entity.Shift)}
}

func (s *Shifts) GetByID(_ context.Context, id int) (entity.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sh, ok := s.shifts[id]
	if !ok {
		return entity.Shift{}, errors.Wrapf(entity.ErrNotFound, "shift %d", id)
	}
	return sh, nil
}

func (s *Shifts) List(_ context.Context, tenantID int) ([]entity.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var list []entity.Shift
	for _, sh := range s.shifts {
		if sh.TenantID == tenantID {
			list = append(list, sh)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (s *Shifts) Create(_ context.Context, sh entity.Shift) (entity.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	sh.ID = s.nextID
	sh.CreatedAt = time.Now()
	s.shifts[sh.ID] = sh
	return sh, nil
}

func (s *Shifts) Update(_ context.Context, sh entity.Shift) (entity.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.shifts[sh.ID]
	if !ok || current.TenantID != sh.TenantID {
		return entity.Shift{}, errors.Wrapf(entity.ErrNotFound, "shift %d", sh.ID)
	}
	now := time.Now()
	sh.CreatedAt = current.CreatedAt
	sh.UpdatedAt = &now
	s.shifts[sh.ID] = sh
	return sh, nil
}
