package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"building_energy/internal/models"
)

// ---- Test doubles ----

// scriptedSampler replays fixed readings, repeating the last one.
type scriptedSampler struct {
	readings []Reading
	i        int
}

func (s *scriptedSampler) Sample() Reading {
	r := s.readings[min(s.i, len(s.readings)-1)]
	s.i++
	return r
}

// stubBuildings records Adjust calls and can fail for chosen ids.
type stubBuildings struct {
	calls  map[string][]models.Signal
	failOn string
}

func (b *stubBuildings) Create(context.Context, string) (models.BuildingState, error) {
	return models.BuildingState{}, nil
}

func (b *stubBuildings) Adjust(_ context.Context, id string, sig models.Signal) (models.BuildingState, error) {
	if id == b.failOn {
		return models.BuildingState{}, errors.New("adjust failed")
	}
	if b.calls == nil {
		b.calls = map[string][]models.Signal{}
	}
	b.calls[id] = append(b.calls[id], sig)
	return models.BuildingState{ID: id}, nil
}

func (b *stubBuildings) Delete(context.Context, string) error { return nil }

type stubMonitoring struct {
	states []models.BuildingState
	err    error
}

func (m *stubMonitoring) GetState(context.Context, string) (models.BuildingState, error) {
	return models.BuildingState{}, nil
}

func (m *stubMonitoring) ListStates(context.Context) ([]models.BuildingState, error) {
	return m.states, m.err
}

// ---- Tests ----

func TestPriceFor(t *testing.T) {
	cases := []struct {
		usage float64
		want  float32
	}{
		{usage: 2, want: OffPeakPrice},
		{usage: 5, want: OffPeakPrice},
		{usage: 5.0001, want: PeakPrice},
		{usage: 10, want: PeakPrice},
	}
	for _, c := range cases {
		sig := priceFor(c.usage, DefaultUsageLimitKW)
		if sig.Price != c.want || sig.DurationMinutes != SignalDuration {
			t.Errorf("priceFor(%v) = %+v, want price %v", c.usage, sig, c.want)
		}
	}
}

func TestRandomSampler_StaysInRange(t *testing.T) {
	s := NewSeededSampler(1, 2)
	for i := 0; i < 1000; i++ {
		r := s.Sample()
		if r.UsageKW < MinUsageKW || r.UsageKW >= MaxUsageKW {
			t.Fatalf("usage %v out of range", r.UsageKW)
		}
		if r.OutdoorTempC < MinOutdoorTempC || r.OutdoorTempC >= MaxOutdoorTempC {
			t.Fatalf("temp %v out of range", r.OutdoorTempC)
		}
	}

	a, b := NewSeededSampler(7, 7), NewSeededSampler(7, 7)
	if a.Sample() != b.Sample() {
		t.Fatalf("seeded samplers should be reproducible")
	}
}

func TestSimulator_StepAdjustsEveryBuilding(t *testing.T) {
	b := &stubBuildings{}
	m := &stubMonitoring{states: []models.BuildingState{{ID: "a"}, {ID: "b"}}}
	sampler := &scriptedSampler{readings: []Reading{{UsageKW: 8}, {UsageKW: 3}}}
	sim := NewSimulatorService(b, m, sampler, 0, nil)

	n, err := sim.Step(context.Background())
	if err != nil || n != 2 {
		t.Fatalf("Step = %d, %v", n, err)
	}
	if got := b.calls["a"]; len(got) != 1 || got[0].Price != PeakPrice {
		t.Fatalf("building a signals = %+v", got)
	}
	if got := b.calls["b"]; len(got) != 1 || got[0].Price != OffPeakPrice {
		t.Fatalf("building b signals = %+v", got)
	}
}

func TestSimulator_StepContinuesPastFailures(t *testing.T) {
	b := &stubBuildings{failOn: "a"}
	m := &stubMonitoring{states: []models.BuildingState{{ID: "a"}, {ID: "b"}}}
	sim := NewSimulatorService(b, m, &scriptedSampler{readings: []Reading{{UsageKW: 9}}}, 0, nil)

	n, err := sim.Step(context.Background())
	if err == nil || n != 1 {
		t.Fatalf("Step = %d, %v; want 1 and an error", n, err)
	}
	if len(b.calls["b"]) != 1 {
		t.Fatalf("building b should still be adjusted")
	}

	m.err = errors.New("db down")
	if _, err := sim.Step(context.Background()); !errors.Is(err, m.err) {
		t.Fatalf("list error should propagate, got %v", err)
	}
}

func TestSimulator_RunStopsOnCancel(t *testing.T) {
	b := &stubBuildings{}
	m := &stubMonitoring{}
	sim := NewSimulatorService(b, m, &scriptedSampler{readings: []Reading{{}}}, 0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sim.Run(ctx, time.Millisecond)
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}

func TestSimulator_WithRealBuildingService(t *testing.T) {
	repo := newMemBuildingRepo()
	buildings := NewBuildingService(newMemTx(repo, nil), repo, &fakeEventRepo{})
	st, err := buildings.Create(context.Background(), "Annex")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	sim := NewSimulatorService(buildings, NewMonitoringService(repo),
		&scriptedSampler{readings: []Reading{{UsageKW: 9}, {UsageKW: 9}, {UsageKW: 4}}}, 5, nil)

	for i := 0; i < 2; i++ {
		if _, err := sim.Step(context.Background()); err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
	}
	got, _ := repo.Get(context.Background(), st.ID)
	if !approx(got.HVACPowerKW, 2.45) || got.Mode != models.ModeEnergySaving {
		t.Fatalf("after two peak ticks: %+v", got)
	}

	if _, err := sim.Step(context.Background()); err != nil {
		t.Fatalf("Step: %v", err)
	}
	got, _ = repo.Get(context.Background(), st.ID)
	if got.HVACPowerKW != 5.0 || got.Mode != models.ModeNormal {
		t.Fatalf("off-peak tick should reset: %+v", got)
	}
}
