package model

import (
	"time"
)

// EventState is the global event timer.
type EventState struct {
	IsRunning bool       `json:"isRunning"`
	StartTime *time.Time `json:"startTime"`
	EndTime   *time.Time `json:"endTime"`
}

func (s EventState) Clone() EventState {
	c := s
	if s.StartTime != nil {
		st := *s.StartTime
		c.StartTime = &st
	}
	if s.EndTime != nil {
		et := *s.EndTime
		c.EndTime = &et
	}
	return c
}
