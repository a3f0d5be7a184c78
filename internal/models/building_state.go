package models

import "time"

// BuildingState is the persisted snapshot of one building's controller.
type BuildingState struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	HVACPowerKW         float32         `json:"hvac_power_kw"`     // kW
	LightingPowerKW     float32         `json:"lighting_power_kw"` // kW
	Mode                OperationalMode `json:"mode"`              // NORMAL | ENERGY_SAVING | MAXIMUM_SAVING
	LastPrice           float32         `json:"last_price"`
	LastDurationMinutes uint32          `json:"last_duration_minutes"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}
