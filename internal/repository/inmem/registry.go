package inmem

import (
	"context"
	"sync"

	"coaching/attendance/internal/entity"

	"github.com/pkg/errors"
)

// Registry is a seedable stand-in for the academic registry tables.
type Registry struct {
	mu       sync.Mutex
	batches  map[int]entity.Batch
	enrolled map[int]map[int]bool
	teachers map[int]entity.Teacher
}

func NewRegistry() *Registry {
	return &Registry{
		batches:  make(map[int]entity.Batch),
		enrolled: make(map[int]map[int]bool),
		teachers: make(map[int]entity.Teacher),
	}
}

func (r *Registry) AddBatch(b entity.Batch) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches[b.ID] = b
}

func (r *Registry) Enroll(batchID int, studentIDs ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.enrolled[batchID] == nil {
		r.enrolled[batchID] = make(map[int]bool)
	}
	for _, id := range studentIDs {
		r.enrolled[batchID][id] = true
	}
}

func (r *Registry) AddTeacher(t entity.Teacher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.teachers[t.ID] = t
}

func (r *Registry) GetBatch(_ context.Context, batchID int) (entity.Batch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.batches[batchID]
	if !ok {
		return entity.Batch{}, errors.Wrapf(entity.ErrNotFound, "batch %d", batchID)
	}
	return b, nil
}

func (r *Registry) EnrolledStudents(_ context.Context, batchID int, studentIDs []int) (map[int]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[int]bool, len(studentIDs))
	for _, id := range studentIDs {
		if r.enrolled[batchID][id] {
			out[id] = true
		}
	}
	return out, nil
}

func (r *Registry) GetTeacher(_ context.Context, teacherID int) (entity.Teacher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.teachers[teacherID]
	if !ok {
		return entity.Teacher{}, errors.Wrapf(entity.ErrNotFound, "teacher %d", teacherID)
	}
	return t, nil
}
