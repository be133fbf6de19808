package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"scouttrack/internal/api/handler"
	"scouttrack/internal/api/middleware"
	"scouttrack/internal/core/alert"
	"scouttrack/internal/core/repository"
	"scouttrack/internal/core/service"
)

type Dependencies struct {
	Teams       service.TeamService
	Checkpoints service.CheckpointService
	Admins      service.AdminService
	Event       service.EventService
	Inbox       *alert.Inbox
	Sirens      *alert.Broadcaster
	Snapshots   repository.SnapshotRepository
	Logger      zerolog.Logger
}

func NewRouter(deps Dependencies) http.Handler {
	teamHandler := handler.NewTeamHandler(deps.Teams)
	checkpointHandler := handler.NewCheckpointHandler(deps.Checkpoints)
	adminHandler := handler.NewAdminHandler(deps.Admins)
	eventHandler := handler.NewEventHandler(deps.Event)
	notificationHandler := handler.NewNotificationHandler(deps.Inbox)
	snapshotHandler := handler.NewSnapshotHandler(deps.Snapshots)
	streamHandler := handler.NewStreamHandler(deps.Teams, deps.Event, deps.Sirens, deps.Logger)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.LoggingMiddleware(deps.Logger.With().Str("component", "http").Logger()))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORSMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/teams", func(r chi.Router) {
			r.Get("/", teamHandler.List)
			r.Post("/", teamHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", teamHandler.Get)
				r.Patch("/", teamHandler.Update)
				r.Delete("/", teamHandler.Delete)
				r.Put("/status", teamHandler.SetStatus)
				r.Get("/history", teamHandler.History)
				r.Post("/timer/start", teamHandler.StartTimer)
				r.Post("/timer/stop", teamHandler.StopTimer)
				r.Post("/timer/reset", teamHandler.ResetTimer)
			})
		})

		r.Route("/checkpoints", func(r chi.Router) {
			r.Get("/", checkpointHandler.List)
			r.Post("/", checkpointHandler.Create)
			r.Get("/{id}", checkpointHandler.Get)
			r.Put("/{id}", checkpointHandler.Update)
			r.Delete("/{id}", checkpointHandler.Delete)
		})

		r.Route("/admins", func(r chi.Router) {
			r.Get("/", adminHandler.List)
			r.Post("/", adminHandler.Create)
			r.Put("/{id}", adminHandler.Update)
			r.Delete("/{id}", adminHandler.Delete)
		})

		r.Route("/event", func(r chi.Router) {
			r.Get("/", eventHandler.Get)
			r.Post("/start", eventHandler.Start)
			r.Post("/stop", eventHandler.Stop)
			r.Post("/toggle", eventHandler.Toggle)
			r.Get("/stream", streamHandler.Event)
		})

		r.Get("/notifications", notificationHandler.List)
		r.Delete("/notifications/{id}", notificationHandler.Dismiss)
		r.Get("/alerts/siren.wav", notificationHandler.Siren)

		r.Get("/snapshots", snapshotHandler.Recent)
		r.Get("/stream", streamHandler.Teams)
	})

	return r
}
