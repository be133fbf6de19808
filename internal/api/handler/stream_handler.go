package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"scouttrack/internal/core/alert"
	"scouttrack/internal/core/service"
)

const (
	heartbeatInterval = 15 * time.Second
	sirenBuffer       = 8
)

// StreamHandler pushes live state over server-sent events.
type StreamHandler struct {
	teamService  service.TeamService
	eventService service.EventService
	sirens       *alert.Broadcaster
	log          zerolog.Logger
	heartbeat    time.Duration
}

func NewStreamHandler(teamService service.TeamService, eventService service.EventService, sirens *alert.Broadcaster, log zerolog.Logger) *StreamHandler {
	return &StreamHandler{
		teamService:  teamService,
		eventService: eventService,
		sirens:       sirens,
		log:          log.With().Str("component", "stream").Logger(),
		heartbeat:    heartbeatInterval,
	}
}

type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func startSSE(w http.ResponseWriter) (*sseWriter, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return nil, false
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	s := &sseWriter{w: w, flusher: flusher}
	if err := s.comment("ping"); err != nil {
		return nil, false
	}
	return s, true
}

func (s *sseWriter) event(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", name, data); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

func (s *sseWriter) comment(text string) error {
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", text); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// Teams streams a "snapshot" event for every snapshot the client keeps up
// with and a "siren" event for every SOS edge.
func (h *StreamHandler) Teams(w http.ResponseWriter, r *http.Request) {
	snapshots, cancelSnapshots := h.teamService.Subscribe()
	defer cancelSnapshots()
	sirens, cancelSirens := h.sirens.Listen(sirenBuffer)
	defer cancelSirens()

	sse, ok := startSSE(w)
	if !ok {
		return
	}
	h.log.Debug().Str("remote", r.RemoteAddr).Msg("team stream opened")
	defer h.log.Debug().Str("remote", r.RemoteAddr).Msg("team stream closed")

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		var err error
		select {
		case s, ok := <-snapshots:
			if !ok {
				return
			}
			err = sse.event("snapshot", s)
		case sig, ok := <-sirens:
			if !ok {
				return
			}
			err = sse.event("siren", sig)
		case <-ticker.C:
			err = sse.comment("ping")
		case <-r.Context().Done():
			return
		}
		if err != nil {
			return
		}
	}
}

type elapsedEvent struct {
	ElapsedTime string `json:"elapsedTime"`
}

// Event streams the global elapsed time once per refresh until the event
// is stopped; the frozen value is the last event sent.
func (h *StreamHandler) Event(w http.ResponseWriter, r *http.Request) {
	sse, ok := startSSE(w)
	if !ok {
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	values := make(chan string, 1)
	handle := h.eventService.Watch(ctx, func(v string) {
		offer(values, v)
	})
	defer handle.Stop()

	for {
		select {
		case v := <-values:
			if err := sse.event("elapsed", elapsedEvent{ElapsedTime: v}); err != nil {
				return
			}
		case <-handle.Done():
			select {
			case v := <-values:
				_ = sse.event("elapsed", elapsedEvent{ElapsedTime: v})
			default:
			}
			return
		case <-ctx.Done():
			return
		}
	}
}

// offer replaces an unread value so the reader always sees the newest one.
func offer(ch chan string, v string) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
