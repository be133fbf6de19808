package main

import (
	"time"

	"scouttrack/internal/core/model"
)

func seedTeams(now time.Time) []model.Team {
	return []model.Team{
		{ID: "t1", Name: "Lobo Guará", Username: "team1", Password: "123", Status: model.StatusOnline, Mode: model.ModeActivity,
			Position: model.NewPosition(38.7223, -9.1393, now), BatteryLevel: 85},
		{ID: "t2", Name: "Águia Real", Username: "team2", Password: "123", Status: model.StatusOffline, Mode: model.ModeTrackingOnly,
			Position: model.NewPosition(38.7240, -9.1420, now), BatteryLevel: 42},
		{ID: "t3", Name: "Raposa Astuta", Username: "team3", Password: "123", Status: model.StatusSOS, Mode: model.ModeActivity,
			Position: model.NewPosition(38.7210, -9.1350, now), BatteryLevel: 15},
	}
}

func seedCheckpoints() []model.Checkpoint {
	return []model.Checkpoint{
		{
			ID:            "cp1",
			Title:         "A Grande Carvalho",
			Question:      "Qual é a idade estimada desta árvore?",
			Kind:          model.AnswerMultipleChoice,
			Options:       []string{"50 anos", "100 anos", "200 anos"},
			CorrectAnswer: "200 anos",
			Location:      model.Coordinates{Lat: 38.7230, Lng: -9.1400},
			Radius:        50,
		},
		{
			ID:            "cp2",
			Title:         "Estátua do Fundador",
			Question:      "O que está escrito na placa?",
			Kind:          model.AnswerText,
			Options:       []string{},
			CorrectAnswer: "Sempre Alerta",
			Location:      model.Coordinates{Lat: 38.7215, Lng: -9.1380},
			Radius:        30,
		},
	}
}

type seedAdmin struct {
	name  string
	email string
	role  model.Role
}

func seedAdmins() []seedAdmin {
	return []seedAdmin{
		{"Chefe Silva", "silva@scouttracker.com", model.RoleSuperAdmin},
		{"Chefe Maria", "maria@scouttracker.com", model.RoleAdmin},
	}
}
