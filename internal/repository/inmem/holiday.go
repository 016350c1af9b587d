package inmem

import (
	"context"
	"sort"
	"sync"
	"time"

	"coaching/attendance/internal/entity"

	"github.com/pkg/errors"
)

type Rules struct {
	mu     sync.Mutex
	nextID int
	rules  map[int]entity.HolidayRule
}

func NewRules() *Rules {
	return &Rules{rules: make(map[int]entity.HolidayRule)}
}

func (s *Rules) ActiveRules(_ context.Context, tenantID int, branchID *int) ([]entity.HolidayRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var list []entity.HolidayRule
	for _, r := range s.rules {
		if r.AppliesTo(tenantID, branchID) {
			list = append(list, r)
		}
	}
	sortRules(list)
	return list, nil
}

func (s *Rules) List(_ context.Context, tenantID int) ([]entity.HolidayRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var list []entity.HolidayRule
	for _, r := range s.rules {
		if r.TenantID == tenantID {
			list = append(list, r)
		}
	}
	sortRules(list)
	return list, nil
}

func (s *Rules) GetByID(_ context.Context, tenantID, id int) (entity.HolidayRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.get(tenantID, id)
}

func (s *Rules) get(tenantID, id int) (entity.HolidayRule, error) {
	r, ok := s.rules[id]
	if !ok {
		return entity.HolidayRule{}, errors.Wrapf(entity.ErrNotFound, "holiday rule %d", id)
	}
	if r.TenantID != tenantID {
		return entity.HolidayRule{}, errors.Wrapf(entity.ErrTenantMismatch, "holiday rule %d", id)
	}
	return r, nil
}

func (s *Rules) Create(_ context.Context, rule entity.HolidayRule) (entity.HolidayRule, error) {
	if err := rule.Validate(); err != nil {
		return entity.HolidayRule{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	rule.ID = s.nextID
	rule.CreatedAt = time.Now()
	s.rules[rule.ID] = rule
	return rule, nil
}

func (s *Rules) Update(_ context.Context, rule entity.HolidayRule) (entity.HolidayRule, error) {
	if err := rule.Validate(); err != nil {
		return entity.HolidayRule{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.get(rule.TenantID, rule.ID)
	if err != nil {
		return entity.HolidayRule{}, err
	}
	now := time.Now()
	rule.CreatedAt = current.CreatedAt
	rule.UpdatedAt = &now
	s.rules[rule.ID] = rule
	return rule, nil
}

func (s *Rules) Delete(_ context.Context, tenantID, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.get(tenantID, id); err != nil {
		return err
	}
	delete(s.rules, id)
	return nil
}

func sortRules(list []entity.HolidayRule) {
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
}
