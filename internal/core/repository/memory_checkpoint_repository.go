package repository

import (
	"fmt"
	"sync"

	"scouttrack/internal/core/model"
)

type inMemoryCheckpointRepository struct {
	checkpoints map[string]*model.Checkpoint
	order       []string
	mutex       sync.RWMutex
}

func NewInMemoryCheckpointRepository() CheckpointRepository {
	return &inMemoryCheckpointRepository{
		checkpoints: make(map[string]*model.Checkpoint),
	}
}

func (r *inMemoryCheckpointRepository) Create(cp *model.Checkpoint) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.checkpoints[cp.ID]; exists {
		return fmt.Errorf("checkpoint with ID %s: %w", cp.ID, model.ErrConflict)
	}

	c := *cp
	r.checkpoints[cp.ID] = &c
	r.order = append(r.order, cp.ID)
	return nil
}

func (r *inMemoryCheckpointRepository) Update(cp *model.Checkpoint) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.checkpoints[cp.ID]; !exists {
		return model.NotFoundError("checkpoint", cp.ID)
	}

	c := *cp
	r.checkpoints[cp.ID] = &c
	return nil
}

func (r *inMemoryCheckpointRepository) Delete(id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.checkpoints[id]; !exists {
		return model.NotFoundError("checkpoint", id)
	}

	delete(r.checkpoints, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *inMemoryCheckpointRepository) FindByID(id string) (*model.Checkpoint, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if cp, exists := r.checkpoints[id]; exists {
		c := *cp
		return &c, nil
	}
	return nil, nil
}

func (r *inMemoryCheckpointRepository) FindAll() ([]*model.Checkpoint, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	cps := make([]*model.Checkpoint, 0, len(r.order))
	for _, id := range r.order {
		c := *r.checkpoints[id]
		cps = append(cps, &c)
	}
	return cps, nil
}
