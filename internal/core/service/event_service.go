package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"scouttrack/internal/core/clock"
	"scouttrack/internal/core/model"
	"scouttrack/internal/core/timer"
)

const DefaultRefreshInterval = time.Second

// EventStatus is the global timer state together with its display value.
type EventStatus struct {
	model.EventState
	ElapsedTime string `json:"elapsedTime"`
	Frozen      bool   `json:"frozen"`
}

type EventService interface {
	Start() EventStatus
	Stop() EventStatus
	Toggle() EventStatus
	Status() EventStatus
	// Watch emits the elapsed display now and on every refresh until the
	// event stops, ctx ends or the handle is stopped.
	Watch(ctx context.Context, emit func(string)) *clock.Handle
}

type eventService struct {
	timer   *timer.EventTimer
	clock   clock.Clock
	refresh time.Duration
	log     zerolog.Logger
}

func NewEventService(clk clock.Clock, refresh time.Duration, log zerolog.Logger) EventService {
	if clk == nil {
		clk = clock.Real()
	}
	if refresh <= 0 {
		refresh = DefaultRefreshInterval
	}
	return &eventService{
		timer:   timer.NewEventTimer(clk),
		clock:   clk,
		refresh: refresh,
		log:     log.With().Str("component", "event").Logger(),
	}
}

func (s *eventService) Start() EventStatus {
	s.timer.Start()
	s.log.Info().Msg("event started")
	return s.Status()
}

func (s *eventService) Stop() EventStatus {
	st := s.Status()
	if st.IsRunning {
		s.timer.Stop()
		st = s.Status()
		s.log.Info().Str("elapsed", st.ElapsedTime).Msg("event stopped")
	}
	return st
}

func (s *eventService) Toggle() EventStatus {
	state := s.timer.Toggle()
	st := s.Status()
	s.log.Info().Bool("running", state.IsRunning).Str("elapsed", st.ElapsedTime).Msg("event toggled")
	return st
}

func (s *eventService) Status() EventStatus {
	state := s.timer.State()
	return EventStatus{
		EventState:  state,
		ElapsedTime: timer.Format(timer.Elapsed(state.StartTime, state.EndTime, s.clock.Now())),
		Frozen:      state.EndTime != nil,
	}
}

func (s *eventService) Watch(ctx context.Context, emit func(string)) *clock.Handle {
	window := func() (*time.Time, *time.Time) {
		state := s.timer.State()
		return state.StartTime, state.EndTime
	}
	return timer.Watch(ctx, s.clock, s.refresh, window, emit)
}
