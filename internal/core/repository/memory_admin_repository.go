package repository

import (
	"fmt"
	"strings"
	"sync"

	"scouttrack/internal/core/model"
)

type inMemoryAdminRepository struct {
	admins map[string]*model.Admin
	order  []string
	mutex  sync.RWMutex
}

func NewInMemoryAdminRepository() AdminRepository {
	return &inMemoryAdminRepository{
		admins: make(map[string]*model.Admin),
	}
}

func (r *inMemoryAdminRepository) Create(admin *model.Admin) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.admins[admin.ID]; exists {
		return fmt.Errorf("admin with ID %s: %w", admin.ID, model.ErrConflict)
	}

	a := *admin
	r.admins[admin.ID] = &a
	r.order = append(r.order, admin.ID)
	return nil
}

func (r *inMemoryAdminRepository) Update(admin *model.Admin) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.admins[admin.ID]; !exists {
		return model.NotFoundError("admin", admin.ID)
	}

	a := *admin
	r.admins[admin.ID] = &a
	return nil
}

func (r *inMemoryAdminRepository) Delete(id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.admins[id]; !exists {
		return model.NotFoundError("admin", id)
	}

	delete(r.admins, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *inMemoryAdminRepository) FindByID(id string) (*model.Admin, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if admin, exists := r.admins[id]; exists {
		a := *admin
		return &a, nil
	}
	return nil, nil
}

func (r *inMemoryAdminRepository) FindByEmail(email string) (*model.Admin, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, admin := range r.admins {
		if strings.EqualFold(admin.Email, email) {
			a := *admin
			return &a, nil
		}
	}
	return nil, nil
}

func (r *inMemoryAdminRepository) FindAll() ([]*model.Admin, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	admins := make([]*model.Admin, 0, len(r.order))
	for _, id := range r.order {
		a := *r.admins[id]
		admins = append(admins, &a)
	}
	return admins, nil
}
