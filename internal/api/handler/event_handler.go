package handler

import (
	"net/http"

	"scouttrack/internal/core/service"
)

type EventHandler struct {
	eventService service.EventService
}

func NewEventHandler(eventService service.EventService) *EventHandler {
	return &EventHandler{
		eventService: eventService,
	}
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.eventService.Status())
}

func (h *EventHandler) Start(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.eventService.Start())
}

func (h *EventHandler) Stop(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.eventService.Stop())
}

func (h *EventHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.eventService.Toggle())
}
