// Package ffi implements the in-process surface behind the C interface in
// cmd/libbuilding. Each function maps one exported C symbol onto a
// controller held in a handle registry.
package ffi

import (
	"building_energy/internal/controller"
	"building_energy/internal/models"
)

// Surface owns the controllers created through the foreign interface.
type Surface struct {
	systems *Registry[*controller.BuildingSystem]
}

// NewSurface returns a surface with no live controllers.
func NewSurface() *Surface {
	return &Surface{systems: NewRegistry[*controller.BuildingSystem]()}
}

// CreateBuildingSystem backs create_building_system. The caller owns the
// returned handle and must pass it to FreeBuildingSystem exactly once.
func (s *Surface) CreateBuildingSystem() Handle {
	return s.systems.Insert(controller.New())
}

// AdjustSystems backs adjust_systems.
func (s *Surface) AdjustSystems(h Handle, price float32, durationMinutes uint32) {
	s.systems.MustGet(h).Adjust(models.Signal{Price: price, DurationMinutes: durationMinutes})
}

// HVACPower backs get_hvac_power.
func (s *Surface) HVACPower(h Handle) float32 {
	return s.systems.MustGet(h).HVACPower()
}

// LightingPower backs get_lighting_power.
func (s *Surface) LightingPower(h Handle) float32 {
	return s.systems.MustGet(h).LightingPower()
}

// OperationalMode backs get_operational_mode and returns the enum tag.
func (s *Surface) OperationalMode(h Handle) int32 {
	return int32(s.systems.MustGet(h).OperationalMode())
}

// FreeBuildingSystem backs free_building_system.
func (s *Surface) FreeBuildingSystem(h Handle) {
	s.systems.Release(h)
}

// Live reports how many controllers have not been freed yet.
func (s *Surface) Live() int {
	return s.systems.Len()
}
