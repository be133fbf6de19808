package model

import (
	"errors"
	"time"
)

type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
	StatusSOS     Status = "sos"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOnline, StatusOffline, StatusSOS:
		return true
	}
	return false
}

type Mode string

const (
	ModeTrackingOnly Mode = "tracking_only"
	ModeActivity     Mode = "activity"
)

type Team struct {
	ID           string     `json:"id" bson:"id" validate:"required"`
	Name         string     `json:"name" bson:"name"`
	Username     string     `json:"username" bson:"username"`
	Password     string     `json:"-" bson:"-"`
	Status       Status     `json:"status" bson:"status" validate:"required,oneof=online offline sos"`
	Mode         Mode       `json:"mode" bson:"mode" validate:"omitempty,oneof=tracking_only activity"`
	Position     Position   `json:"location" bson:"location"`
	History      []Position `json:"history" bson:"history"`
	BatteryLevel int        `json:"batteryLevel" bson:"batteryLevel" validate:"gte=0,lte=100"`
	StartTime    *time.Time `json:"startTime,omitempty" bson:"startTime,omitempty"`
	FinishTime   *time.Time `json:"finishTime,omitempty" bson:"finishTime,omitempty"`
}

// Validate checks a complete team, e.g. one loaded from a cache. Only the
// fields that fail are reported.
func (t *Team) Validate() error {
	var fields []string
	if err := validateStruct(t); err != nil {
		var verr *ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		fields = verr.Fields
	}
	switch {
	case t.FinishTime != nil && t.StartTime == nil:
		fields = append(fields, "finishTime (requires startTime)")
	case t.FinishTime != nil && t.FinishTime.Before(*t.StartTime):
		fields = append(fields, "finishTime (gtefield=startTime)")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// TimerRunning reports whether the team's personal timer has started and
// not yet finished.
func (t *Team) TimerRunning() bool {
	return t.StartTime != nil && t.FinishTime == nil
}

// Clone returns a deep copy; snapshots never share memory with the registry.
func (t Team) Clone() Team {
	c := t
	if t.History != nil {
		c.History = make([]Position, len(t.History))
		copy(c.History, t.History)
	}
	if t.StartTime != nil {
		st := *t.StartTime
		c.StartTime = &st
	}
	if t.FinishTime != nil {
		ft := *t.FinishTime
		c.FinishTime = &ft
	}
	return c
}

// TeamPatch lists the fields a caller may set on a team. Nil fields are
// left untouched on merge. Position, history and timers are not editable
// through a patch.
type TeamPatch struct {
	ID           string  `json:"id,omitempty"`
	Name         *string `json:"name,omitempty" validate:"omitempty,min=1,max=80"`
	Username     *string `json:"username,omitempty" validate:"omitempty,min=1,max=64"`
	Password     *string `json:"password,omitempty" validate:"omitempty,min=1,max=128"`
	Status       *Status `json:"status,omitempty" validate:"omitempty,oneof=online offline sos"`
	Mode         *Mode   `json:"mode,omitempty" validate:"omitempty,oneof=tracking_only activity"`
	BatteryLevel *int    `json:"batteryLevel,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// Validate checks the patch. When creating, name and credentials are
// required as they are on the team form.
func (p *TeamPatch) Validate(creating bool) error {
	if err := validateStruct(p); err != nil {
		return err
	}
	if !creating {
		return nil
	}
	var missing []string
	if p.Name == nil || *p.Name == "" {
		missing = append(missing, "name (required)")
	}
	if p.Username == nil || *p.Username == "" {
		missing = append(missing, "username (required)")
	}
	if p.Password == nil || *p.Password == "" {
		missing = append(missing, "password (required)")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// Apply merges the non-nil fields of the patch into t.
func (p *TeamPatch) Apply(t *Team) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Username != nil {
		t.Username = *p.Username
	}
	if p.Password != nil {
		t.Password = *p.Password
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Mode != nil {
		t.Mode = *p.Mode
	}
	if p.BatteryLevel != nil {
		t.BatteryLevel = *p.BatteryLevel
	}
}

// PatchFromTeam builds a patch carrying every editable field of t.
func PatchFromTeam(t Team) TeamPatch {
	p := TeamPatch{
		ID:           t.ID,
		Name:         &t.Name,
		Username:     &t.Username,
		Password:     &t.Password,
		BatteryLevel: &t.BatteryLevel,
	}
	if t.Status != "" {
		p.Status = &t.Status
	}
	if t.Mode != "" {
		p.Mode = &t.Mode
	}
	return p
}
