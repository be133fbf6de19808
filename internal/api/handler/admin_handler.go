package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"scouttrack/internal/core/model"
	"scouttrack/internal/core/service"
)

type AdminHandler struct {
	adminService service.AdminService
}

func NewAdminHandler(adminService service.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

type adminRequest struct {
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	admins, err := h.adminService.GetAllAdmins()
	if err != nil {
		writeError(w, err)
		return
	}
	if admins == nil {
		admins = []*model.Admin{}
	}
	writeJSON(w, http.StatusOK, admins)
}

func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req adminRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Role == "" {
		req.Role = model.RoleAdmin
	}

	admin, err := h.adminService.CreateAdmin(req.Name, req.Email, req.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, admin)
}

func (h *AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req adminRequest
	if !decodeBody(w, r, &req) {
		return
	}

	admin, err := h.adminService.UpdateAdmin(chi.URLParam(r, "id"), req.Name, req.Email, req.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, admin)
}

func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.adminService.DeleteAdmin(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
