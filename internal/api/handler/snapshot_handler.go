package handler

import (
	"net/http"
	"strconv"

	"scouttrack/internal/core/repository"
)

const (
	defaultArchiveLimit = 20
	maxArchiveLimit     = 500
)

type SnapshotHandler struct {
	snapshotRepo repository.SnapshotRepository
}

func NewSnapshotHandler(snapshotRepo repository.SnapshotRepository) *SnapshotHandler {
	return &SnapshotHandler{
		snapshotRepo: snapshotRepo,
	}
}

// Recent lists archived structural snapshots, newest first.
func (h *SnapshotHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := defaultArchiveLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, maxArchiveLimit)
	}

	recs, err := h.snapshotRepo.FindRecent(limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if recs == nil {
		recs = []repository.SnapshotRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}
