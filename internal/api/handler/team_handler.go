package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"scouttrack/internal/core/model"
	"scouttrack/internal/core/service"
	"scouttrack/internal/core/snapshot"
)

type TeamHandler struct {
	teamService service.TeamService
}

func NewTeamHandler(teamService service.TeamService) *TeamHandler {
	return &TeamHandler{
		teamService: teamService,
	}
}

type statusRequest struct {
	Status model.Status `json:"status"`
}

// List returns the latest published snapshot.
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	s := h.teamService.Snapshot()
	if s == nil {
		s = &snapshot.Snapshot{Teams: []model.Team{}}
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	team, err := h.teamService.GetTeam(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, team)
}

func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	var patch model.TeamPatch
	if !decodeBody(w, r, &patch) {
		return
	}

	team, err := h.teamService.UpsertTeam(patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, team)
}

func (h *TeamHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch model.TeamPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	id := chi.URLParam(r, "id")
	if _, err := h.teamService.GetTeam(id); err != nil {
		writeError(w, err)
		return
	}
	patch.ID = id

	team, err := h.teamService.UpsertTeam(patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, team)
}

func (h *TeamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.teamService.DeleteTeam(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TeamHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	team, err := h.teamService.SetStatus(chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, team)
}

func (h *TeamHandler) StartTimer(w http.ResponseWriter, r *http.Request) {
	h.timer(w, r, h.teamService.StartTimer)
}

func (h *TeamHandler) StopTimer(w http.ResponseWriter, r *http.Request) {
	h.timer(w, r, h.teamService.StopTimer)
}

func (h *TeamHandler) ResetTimer(w http.ResponseWriter, r *http.Request) {
	h.timer(w, r, h.teamService.ResetTimer)
}

func (h *TeamHandler) timer(w http.ResponseWriter, r *http.Request, op func(string) (model.Team, error)) {
	team, err := op(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, team)
}

func (h *TeamHandler) History(w http.ResponseWriter, r *http.Request) {
	history, err := h.teamService.History(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if history == nil {
		history = []model.Position{}
	}
	writeJSON(w, http.StatusOK, history)
}
