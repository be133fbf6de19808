package model

import (
	"slices"

	"scouttrack/internal/core/util"
)

type AnswerKind string

const (
	AnswerText           AnswerKind = "text"
	AnswerMultipleChoice AnswerKind = "multiple_choice"
)

// Checkpoint is a geofenced question. The radius is stored but not
// evaluated here.
type Checkpoint struct {
	ID            string      `json:"id" bson:"id"`
	Title         string      `json:"title" bson:"title" validate:"required,max=120"`
	Question      string      `json:"question" bson:"question" validate:"required"`
	Kind          AnswerKind  `json:"type" bson:"type" validate:"required,oneof=text multiple_choice"`
	Options       []string    `json:"options" bson:"options"`
	CorrectAnswer string      `json:"correctAnswer" bson:"correctAnswer" validate:"required"`
	Location      Coordinates `json:"location" bson:"location"`
	Radius        float64     `json:"radius" bson:"radius" validate:"gt=0"`
}

func NewCheckpoint(title, question string, kind AnswerKind, answer string, loc Coordinates, radius float64) *Checkpoint {
	return &Checkpoint{
		ID:            util.GenerateID(),
		Title:         title,
		Question:      question,
		Kind:          kind,
		Options:       []string{},
		CorrectAnswer: answer,
		Location:      loc,
		Radius:        radius,
	}
}

func (c *Checkpoint) Validate() error {
	if err := validateStruct(c); err != nil {
		return err
	}
	if c.Kind == AnswerMultipleChoice {
		if len(c.Options) < 2 {
			return &ValidationError{Fields: []string{"options (min=2)"}}
		}
		if !slices.Contains(c.Options, c.CorrectAnswer) {
			return &ValidationError{Fields: []string{"correctAnswer (oneof options)"}}
		}
	}
	return nil
}
