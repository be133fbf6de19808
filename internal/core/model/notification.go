package model

import (
	"time"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

type Notification struct {
	ID        string    `json:"id"`
	TeamID    string    `json:"teamId,omitempty"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"type"`
	Location  *Position `json:"location,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
