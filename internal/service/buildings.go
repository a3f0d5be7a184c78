package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"building_energy/internal/controller"
	"building_energy/internal/models"
	"building_energy/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrBuildingNotFound = errors.New("building not found")
	ErrInvalidName      = errors.New("invalid name: must not be empty")
)

// BuildingService hosts one controller per building. The controller itself
// is not safe for concurrent use, so every mutation runs under mu. A state
// write and its events commit in one transaction.
type BuildingService struct {
	mu        sync.Mutex
	tx        repository.Transactor
	buildings repository.BuildingRepo
	eventRepo repository.EventRepo
}

func NewBuildingService(tx repository.Transactor, buildings repository.BuildingRepo, eventRepo repository.EventRepo) *BuildingService {
	return &BuildingService{tx: tx, buildings: buildings, eventRepo: eventRepo}
}

// persist saves st and appends events atomically.
func (s *BuildingService) persist(ctx context.Context, st models.BuildingState, events ...models.ControlEvent) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.buildings.Save(ctx, st); err != nil {
			return err
		}
		for _, ev := range events {
			if err := s.eventRepo.Append(ctx, ev); err != nil {
				return err
			}
		}
		return nil
	})
}

// snapshot copies the controller's outputs onto the persisted state.
func snapshot(st *models.BuildingState, ctl *controller.BuildingSystem) {
	st.HVACPowerKW = ctl.HVACPower()
	st.LightingPowerKW = ctl.LightingPower()
	st.Mode = ctl.OperationalMode()
}

// Create registers a new building at the controller defaults and logs CREATE.
func (s *BuildingService) Create(ctx context.Context, name string) (models.BuildingState, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.BuildingState{}, ErrInvalidName
	}
	now := time.Now().UTC()

	st := models.BuildingState{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	snapshot(&st, controller.New())

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.persist(ctx, st, models.ControlEvent{
		EventID:     uuid.NewString(),
		BuildingID:  st.ID,
		OccurredAt:  now,
		Type:        models.EventCreate,
		Description: "Building " + name + " registered",
		Metadata: map[string]any{
			"hvac_power_kw":     st.HVACPowerKW,
			"lighting_power_kw": st.LightingPowerKW,
			"mode":              st.Mode.String(),
		},
	})
	if err != nil {
		return models.BuildingState{}, err
	}
	return st, nil
}

// Adjust restores the building's controller, applies sig and persists the
// result. It logs ADJUST, plus MODE_CHANGE when the mode flipped.
func (s *BuildingService) Adjust(ctx context.Context, id string, sig models.Signal) (models.BuildingState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load(ctx, id)
	if err != nil {
		return models.BuildingState{}, err
	}

	ctl := controller.Restore(st.HVACPowerKW, st.LightingPowerKW, st.Mode)
	from := ctl.OperationalMode()
	ctl.Adjust(sig)

	now := time.Now().UTC()
	snapshot(&st, ctl)
	st.LastPrice = sig.Price
	st.LastDurationMinutes = sig.DurationMinutes
	st.UpdatedAt = now

	events := []models.ControlEvent{{
		EventID:     uuid.NewString(),
		BuildingID:  st.ID,
		OccurredAt:  now,
		Type:        models.EventAdjust,
		Description: fmt.Sprintf("Price signal %.4f applied", sig.Price),
		Metadata: map[string]any{
			"price":             sig.Price,
			"duration_minutes":  sig.DurationMinutes,
			"hvac_power_kw":     st.HVACPowerKW,
			"lighting_power_kw": st.LightingPowerKW,
			"mode":              st.Mode.String(),
		},
	}}
	if from != st.Mode {
		events = append(events, models.ControlEvent{
			EventID:     uuid.NewString(),
			BuildingID:  st.ID,
			OccurredAt:  now,
			Type:        models.EventModeChange,
			Description: "Mode changed to " + st.Mode.String(),
			Metadata:    map[string]any{"from": from.String(), "to": st.Mode.String()},
		})
	}
	if err := s.persist(ctx, st, events...); err != nil {
		return models.BuildingState{}, err
	}
	return st, nil
}

// Delete disposes of a building and logs DELETE.
func (s *BuildingService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.buildings.Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrBuildingNotFound
			}
			return err
		}
		return s.eventRepo.Append(ctx, models.ControlEvent{
			EventID:     uuid.NewString(),
			BuildingID:  id,
			OccurredAt:  time.Now().UTC(),
			Type:        models.EventDelete,
			Description: "Building removed",
		})
	})
}

func (s *BuildingService) load(ctx context.Context, id string) (models.BuildingState, error) {
	st, err := s.buildings.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.BuildingState{}, ErrBuildingNotFound
		}
		return models.BuildingState{}, err
	}
	return st, nil
}
