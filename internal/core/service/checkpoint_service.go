package service

import (
	"errors"

	"scouttrack/internal/core/model"
	"scouttrack/internal/core/repository"
	"scouttrack/internal/core/util"
)

type CheckpointService interface {
	CreateCheckpoint(cp model.Checkpoint) (*model.Checkpoint, error)
	UpdateCheckpoint(id string, cp model.Checkpoint) (*model.Checkpoint, error)
	DeleteCheckpoint(id string) error
	GetCheckpoint(id string) (*model.Checkpoint, error)
	GetAllCheckpoints() ([]*model.Checkpoint, error)
}

type checkpointService struct {
	checkpointRepo repository.CheckpointRepository
}

func NewCheckpointService(checkpointRepo repository.CheckpointRepository) CheckpointService {
	return &checkpointService{
		checkpointRepo: checkpointRepo,
	}
}

func (s *checkpointService) CreateCheckpoint(cp model.Checkpoint) (*model.Checkpoint, error) {
	if cp.ID == "" {
		cp.ID = util.GenerateID()
	}
	if cp.Options == nil {
		cp.Options = []string{}
	}
	if err := cp.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkpointRepo.Create(&cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (s *checkpointService) UpdateCheckpoint(id string, cp model.Checkpoint) (*model.Checkpoint, error) {
	if id == "" {
		return nil, errors.New("invalid checkpoint ID")
	}
	cp.ID = id
	if cp.Options == nil {
		cp.Options = []string{}
	}
	if err := cp.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkpointRepo.Update(&cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (s *checkpointService) DeleteCheckpoint(id string) error {
	if id == "" {
		return errors.New("invalid checkpoint ID")
	}
	return s.checkpointRepo.Delete(id)
}

func (s *checkpointService) GetCheckpoint(id string) (*model.Checkpoint, error) {
	if id == "" {
		return nil, errors.New("invalid checkpoint ID")
	}
	cp, err := s.checkpointRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if cp == nil {
		return nil, model.NotFoundError("checkpoint", id)
	}
	return cp, nil
}

func (s *checkpointService) GetAllCheckpoints() ([]*model.Checkpoint, error) {
	return s.checkpointRepo.FindAll()
}
