package models

import (
	"fmt"
	"strings"
)

// OperationalMode describes the current power-saving posture of a building.
// The numeric values are the tags exposed across the C interface.
type OperationalMode uint8

const (
	ModeNormal        OperationalMode = 0
	ModeEnergySaving  OperationalMode = 1
	ModeMaximumSaving OperationalMode = 2 // declared, never produced by a transition
)

const (
	modeNormalName        = "NORMAL"
	modeEnergySavingName  = "ENERGY_SAVING"
	modeMaximumSavingName = "MAXIMUM_SAVING"
)

// String returns the mode name used in JSON, logs and storage.
func (m OperationalMode) String() string {
	switch m {
	case ModeNormal:
		return modeNormalName
	case ModeEnergySaving:
		return modeEnergySavingName
	case ModeMaximumSaving:
		return modeMaximumSavingName
	default:
		return fmt.Sprintf("OperationalMode(%d)", uint8(m))
	}
}

// Valid reports whether m is one of the declared modes.
func (m OperationalMode) Valid() bool {
	return m <= ModeMaximumSaving
}

// ParseMode accepts a mode name (case-insensitive, surrounding spaces ignored).
func ParseMode(s string) (OperationalMode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case modeNormalName:
		return ModeNormal, nil
	case modeEnergySavingName:
		return ModeEnergySaving, nil
	case modeMaximumSavingName:
		return ModeMaximumSaving, nil
	default:
		return ModeNormal, fmt.Errorf("unknown operational mode %q", s)
	}
}

func (m OperationalMode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid operational mode %d", uint8(m))
	}
	return []byte(m.String()), nil
}

func (m *OperationalMode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
