// Command libbuilding builds the building energy controller as a C shared
// library:
//
//	go build -buildmode=c-shared -o libbuilding.so ./cmd/libbuilding
//
// Handles are opaque integers. The creator owns each handle and must release
// it with free_building_system. Passing a null, unknown or freed handle
// aborts the process.
package main

/*
#include <stdint.h>

typedef struct {
	float price;
	uint32_t duration;
} CPPSignal;

typedef enum {
	Normal = 0,
	EnergySaving = 1,
	MaximumSaving = 2
} OperationalMode;
*/
import "C"

import "building_energy/internal/ffi"

var surface = ffi.NewSurface()

//export create_building_system
func create_building_system() C.uintptr_t {
	return C.uintptr_t(surface.CreateBuildingSystem())
}

//export adjust_systems
func adjust_systems(handle C.uintptr_t, signal C.CPPSignal) {
	surface.AdjustSystems(ffi.Handle(handle), float32(signal.price), uint32(signal.duration))
}

//export get_hvac_power
func get_hvac_power(handle C.uintptr_t) C.float {
	return C.float(surface.HVACPower(ffi.Handle(handle)))
}

//export get_lighting_power
func get_lighting_power(handle C.uintptr_t) C.float {
	return C.float(surface.LightingPower(ffi.Handle(handle)))
}

//export get_operational_mode
func get_operational_mode(handle C.uintptr_t) C.OperationalMode {
	return C.OperationalMode(surface.OperationalMode(ffi.Handle(handle)))
}

//export free_building_system
func free_building_system(handle C.uintptr_t) {
	surface.FreeBuildingSystem(ffi.Handle(handle))
}

func main() {}
