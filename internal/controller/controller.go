// Package controller holds the building energy control state: HVAC and
// lighting power draw switched between two profiles by a price signal.
//
// A BuildingSystem has no internal locking. Callers that share one between
// goroutines must serialise access themselves.
package controller

import "building_energy/internal/models"

// ----------- Control constants -----------
const (
	DefaultHVACPowerKW     = 5.0  // kW
	DefaultLightingPowerKW = 2.0  // kW
	PriceThreshold         = 0.15 // price strictly above this enters energy saving
	HVACSavingFactor       = 0.7
	LightingSavingFactor   = 0.8
)

// BuildingSystem is the controller state for one building.
type BuildingSystem struct {
	hvacPower     float32
	lightingPower float32
	mode          models.OperationalMode
}

// New returns a controller at the default power profile in Normal mode.
func New() *BuildingSystem {
	return &BuildingSystem{
		hvacPower:     DefaultHVACPowerKW,
		lightingPower: DefaultLightingPowerKW,
		mode:          models.ModeNormal,
	}
}

// Restore rebuilds a controller from a previously captured snapshot.
func Restore(hvacPower, lightingPower float32, mode models.OperationalMode) *BuildingSystem {
	return &BuildingSystem{
		hvacPower:     hvacPower,
		lightingPower: lightingPower,
		mode:          mode,
	}
}

// Adjust applies one price signal. The comparison is strict, so a price of
// exactly PriceThreshold stays in Normal. Energy saving scales the current
// values, so repeated high prices compound; Normal is an absolute reset.
// Signal.DurationMinutes is ignored.
func (b *BuildingSystem) Adjust(sig models.Signal) {
	if sig.Price > PriceThreshold {
		b.enterEnergySaving()
	} else {
		b.enterNormal()
	}
}

func (b *BuildingSystem) enterEnergySaving() {
	b.hvacPower *= HVACSavingFactor
	b.lightingPower *= LightingSavingFactor
	b.mode = models.ModeEnergySaving
}

func (b *BuildingSystem) enterNormal() {
	b.hvacPower = DefaultHVACPowerKW
	b.lightingPower = DefaultLightingPowerKW
	b.mode = models.ModeNormal
}

// HVACPower returns the current HVAC draw in kW.
func (b *BuildingSystem) HVACPower() float32 { return b.hvacPower }

// LightingPower returns the current lighting draw in kW.
func (b *BuildingSystem) LightingPower() float32 { return b.lightingPower }

// OperationalMode returns the mode chosen by the most recent Adjust.
func (b *BuildingSystem) OperationalMode() models.OperationalMode { return b.mode }
