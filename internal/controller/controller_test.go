package controller

import (
	"math"
	"testing"

	"building_energy/internal/models"
)

const tolerance = 1e-5

func assertPower(t *testing.T, name string, got, want float32) {
	t.Helper()
	if math.Abs(float64(got-want)) > tolerance {
		t.Fatalf("%s: got %v, want %v", name, got, want)
	}
}

func assertState(t *testing.T, b *BuildingSystem, hvac, lighting float32, mode models.OperationalMode) {
	t.Helper()
	assertPower(t, "hvac", b.HVACPower(), hvac)
	assertPower(t, "lighting", b.LightingPower(), lighting)
	if b.OperationalMode() != mode {
		t.Fatalf("mode: got %v, want %v", b.OperationalMode(), mode)
	}
}

func TestNew_Defaults(t *testing.T) {
	b := New()
	if b.HVACPower() != 5.0 || b.LightingPower() != 2.0 {
		t.Fatalf("unexpected defaults: hvac=%v lighting=%v", b.HVACPower(), b.LightingPower())
	}
	if b.OperationalMode() != models.ModeNormal {
		t.Fatalf("expected Normal, got %v", b.OperationalMode())
	}
}

func TestAdjust_HighPriceScalesCurrentValues(t *testing.T) {
	prices := []float32{0.1500001, 0.16, 0.20, 1, 1000, float32(math.Inf(1))}
	for _, p := range prices {
		b := Restore(4.0, 1.5, models.ModeEnergySaving)
		b.Adjust(models.Signal{Price: p, DurationMinutes: 60})
		assertState(t, b, 4.0*0.7, 1.5*0.8, models.ModeEnergySaving)
	}
}

func TestAdjust_LowPriceResetsAbsolutely(t *testing.T) {
	prices := []float32{0.15, 0.1, 0, -3, float32(math.Inf(-1)), float32(math.NaN())}
	for _, p := range prices {
		b := Restore(1.2, 0.3, models.ModeEnergySaving)
		b.Adjust(models.Signal{Price: p})
		if b.HVACPower() != 5.0 || b.LightingPower() != 2.0 {
			t.Fatalf("price %v: expected exact reset, got hvac=%v lighting=%v", p, b.HVACPower(), b.LightingPower())
		}
		if b.OperationalMode() != models.ModeNormal {
			t.Fatalf("price %v: expected Normal, got %v", p, b.OperationalMode())
		}
	}
}

func TestAdjust_ThresholdIsStrict(t *testing.T) {
	b := New()
	b.Adjust(models.Signal{Price: 0.15})
	assertState(t, b, 5.0, 2.0, models.ModeNormal)
}

func TestAdjust_RepeatedHighPriceCompounds(t *testing.T) {
	b := New()
	b.Adjust(models.Signal{Price: 0.30})
	b.Adjust(models.Signal{Price: 0.30})
	assertState(t, b, 2.45, 1.28, models.ModeEnergySaving)

	b.Adjust(models.Signal{Price: 0.30})
	assertState(t, b, 2.45*0.7, 1.28*0.8, models.ModeEnergySaving)
}

func TestAdjust_EndToEnd(t *testing.T) {
	b := New()
	b.Adjust(models.Signal{Price: 0.20, DurationMinutes: 60})
	assertState(t, b, 3.5, 1.6, models.ModeEnergySaving)

	b.Adjust(models.Signal{Price: 0.10, DurationMinutes: 60})
	assertState(t, b, 5.0, 2.0, models.ModeNormal)
}

func TestAdjust_DurationHasNoEffect(t *testing.T) {
	durations := []uint32{0, 1, 15, 60, 1440, math.MaxUint32}
	for _, price := range []float32{0.05, 0.15, 0.25} {
		ref := New()
		ref.Adjust(models.Signal{Price: price})
		ref.Adjust(models.Signal{Price: price})
		for _, d := range durations {
			b := New()
			b.Adjust(models.Signal{Price: price, DurationMinutes: d})
			b.Adjust(models.Signal{Price: price, DurationMinutes: d})
			if b.HVACPower() != ref.HVACPower() || b.LightingPower() != ref.LightingPower() || b.OperationalMode() != ref.OperationalMode() {
				t.Fatalf("price %v duration %d changed the outcome", price, d)
			}
		}
	}
}

func TestAdjust_NeverProducesMaximumSaving(t *testing.T) {
	b := New()
	for _, p := range []float32{0.5, 0.5, 0.5, 0.01, 99, -1} {
		b.Adjust(models.Signal{Price: p})
		if b.OperationalMode() == models.ModeMaximumSaving {
			t.Fatalf("MaximumSaving produced for price %v", p)
		}
	}
}

func TestRestore_KeepsValues(t *testing.T) {
	b := Restore(1.25, 0.5, models.ModeMaximumSaving)
	assertState(t, b, 1.25, 0.5, models.ModeMaximumSaving)
}
