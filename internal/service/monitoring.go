package service

import (
	"context"
	"errors"
	"time"

	"building_energy/internal/models"
	"building_energy/internal/repository"
)

type MonitoringService struct {
	buildings repository.BuildingRepo
}

func NewMonitoringService(buildings repository.BuildingRepo) *MonitoringService {
	return &MonitoringService{buildings: buildings}
}

// GetState returns the latest persisted snapshot for one building.
func (s *MonitoringService) GetState(ctx context.Context, id string) (models.BuildingState, error) {
	st, err := s.buildings.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.BuildingState{}, ErrBuildingNotFound
		}
		return models.BuildingState{}, err
	}
	st.CreatedAt = toUTC(st.CreatedAt)
	st.UpdatedAt = toUTC(st.UpdatedAt)
	return st, nil
}

// ListStates returns every building's snapshot.
func (s *MonitoringService) ListStates(ctx context.Context) ([]models.BuildingState, error) {
	list, err := s.buildings.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].CreatedAt = toUTC(list[i].CreatedAt)
		list[i].UpdatedAt = toUTC(list[i].UpdatedAt)
	}
	return list, nil
}

// toUTC normalizes non-zero time to UTC, preserving zero values.
func toUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
