package handler

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"scouttrack/internal/core/alert"
)

const sirenSampleRate = 22050

type NotificationHandler struct {
	inbox *alert.Inbox

	sirenOnce sync.Once
	siren     []byte
}

func NewNotificationHandler(inbox *alert.Inbox) *NotificationHandler {
	return &NotificationHandler{
		inbox: inbox,
	}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.inbox.List())
}

func (h *NotificationHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	if err := h.inbox.Dismiss(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Siren serves the alert pattern as a WAV file.
func (h *NotificationHandler) Siren(w http.ResponseWriter, r *http.Request) {
	h.sirenOnce.Do(func() {
		h.siren = alert.RenderSiren(sirenSampleRate)
	})
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Length", strconv.Itoa(len(h.siren)))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write(h.siren)
}
