package service

import (
	"errors"
	"fmt"
	"strings"

	"scouttrack/internal/core/model"
	"scouttrack/internal/core/repository"
)

type AdminService interface {
	CreateAdmin(name, email string, role model.Role) (*model.Admin, error)
	UpdateAdmin(id string, name, email string, role model.Role) (*model.Admin, error)
	DeleteAdmin(id string) error
	GetAdmin(id string) (*model.Admin, error)
	GetAllAdmins() ([]*model.Admin, error)
}

type adminService struct {
	adminRepo repository.AdminRepository
}

func NewAdminService(adminRepo repository.AdminRepository) AdminService {
	return &adminService{
		adminRepo: adminRepo,
	}
}

func (s *adminService) CreateAdmin(name, email string, role model.Role) (*model.Admin, error) {
	admin := model.NewAdmin(strings.TrimSpace(name), strings.TrimSpace(email), role)
	if err := admin.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(admin.Email, ""); err != nil {
		return nil, err
	}
	if err := s.adminRepo.Create(admin); err != nil {
		return nil, err
	}
	return admin, nil
}

func (s *adminService) UpdateAdmin(id string, name, email string, role model.Role) (*model.Admin, error) {
	admin, err := s.GetAdmin(id)
	if err != nil {
		return nil, err
	}
	admin.Name = strings.TrimSpace(name)
	admin.Email = strings.TrimSpace(email)
	admin.Role = role
	if err := admin.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(admin.Email, admin.ID); err != nil {
		return nil, err
	}
	if err := s.adminRepo.Update(admin); err != nil {
		return nil, err
	}
	return admin, nil
}

func (s *adminService) ensureEmailFree(email, selfID string) error {
	existing, err := s.adminRepo.FindByEmail(email)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return fmt.Errorf("admin email %s: %w", email, model.ErrConflict)
	}
	return nil
}

func (s *adminService) DeleteAdmin(id string) error {
	if id == "" {
		return errors.New("invalid admin ID")
	}
	return s.adminRepo.Delete(id)
}

func (s *adminService) GetAdmin(id string) (*model.Admin, error) {
	if id == "" {
		return nil, errors.New("invalid admin ID")
	}
	admin, err := s.adminRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, model.NotFoundError("admin", id)
	}
	return admin, nil
}

func (s *adminService) GetAllAdmins() ([]*model.Admin, error) {
	return s.adminRepo.FindAll()
}
