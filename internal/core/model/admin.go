package model

import (
	"time"

	"scouttrack/internal/core/util"
)

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

type Admin struct {
	ID        string    `json:"id" bson:"id"`
	Name      string    `json:"name" bson:"name" validate:"required,max=80"`
	Email     string    `json:"email" bson:"email" validate:"required,email"`
	Role      Role      `json:"role" bson:"role" validate:"required,oneof=admin super_admin"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

func NewAdmin(name, email string, role Role) *Admin {
	return &Admin{
		ID:        util.GenerateID(),
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: time.Now(),
	}
}

func (a *Admin) Validate() error {
	return validateStruct(a)
}
