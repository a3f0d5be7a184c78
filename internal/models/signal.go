package models

// Signal is an external price signal. DurationMinutes is carried for
// interface compatibility only; no transition reads it.
type Signal struct {
	Price           float32 `json:"price"`            // currency units per kWh
	DurationMinutes uint32  `json:"duration_minutes"` // minutes
}
