package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"scouttrack/internal/core/model"
	"scouttrack/internal/core/service"
)

type CheckpointHandler struct {
	checkpointService service.CheckpointService
}

func NewCheckpointHandler(checkpointService service.CheckpointService) *CheckpointHandler {
	return &CheckpointHandler{
		checkpointService: checkpointService,
	}
}

func (h *CheckpointHandler) List(w http.ResponseWriter, r *http.Request) {
	checkpoints, err := h.checkpointService.GetAllCheckpoints()
	if err != nil {
		writeError(w, err)
		return
	}
	if checkpoints == nil {
		checkpoints = []*model.Checkpoint{}
	}
	writeJSON(w, http.StatusOK, checkpoints)
}

func (h *CheckpointHandler) Get(w http.ResponseWriter, r *http.Request) {
	cp, err := h.checkpointService.GetCheckpoint(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cp)
}

func (h *CheckpointHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.Checkpoint
	if !decodeBody(w, r, &req) {
		return
	}
	req.ID = ""

	cp, err := h.checkpointService.CreateCheckpoint(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cp)
}

func (h *CheckpointHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.Checkpoint
	if !decodeBody(w, r, &req) {
		return
	}

	cp, err := h.checkpointService.UpdateCheckpoint(chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cp)
}

func (h *CheckpointHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.checkpointService.DeleteCheckpoint(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
