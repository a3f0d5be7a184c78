package service

import (
	"context"
	"math/rand/v2"
	"time"

	"building_energy/internal/logger"
	"building_energy/internal/models"
)

// ----------- Demand simulation constants -----------
const (
	MinUsageKW      = 2.0
	MaxUsageKW      = 10.0
	MinOutdoorTempC = 10.0
	MaxOutdoorTempC = 35.0

	DefaultUsageLimitKW = 5.0

	PeakPrice      float32 = 0.20 // price per kWh while usage exceeds the limit
	OffPeakPrice   float32 = 0.10
	SignalDuration uint32  = 60 // minutes
)

// Reading is one sample of simulated site conditions.
type Reading struct {
	UsageKW      float64
	OutdoorTempC float64
}

// Sampler produces demand readings for the simulator.
type Sampler interface {
	Sample() Reading
}

type randomSampler struct {
	rng *rand.Rand
}

// NewRandomSampler returns a uniformly distributed sampler seeded from the runtime.
func NewRandomSampler() Sampler {
	return &randomSampler{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeededSampler returns a reproducible sampler.
func NewSeededSampler(seed1, seed2 uint64) Sampler {
	return &randomSampler{rng: rand.New(rand.NewPCG(seed1, seed2))}
}

func (r *randomSampler) Sample() Reading {
	return Reading{
		UsageKW:      MinUsageKW + r.rng.Float64()*(MaxUsageKW-MinUsageKW),
		OutdoorTempC: MinOutdoorTempC + r.rng.Float64()*(MaxOutdoorTempC-MinOutdoorTempC),
	}
}

// priceFor maps demand to a tariff: peak when usage strictly exceeds limit.
func priceFor(usageKW, limitKW float64) models.Signal {
	if usageKW > limitKW {
		return models.Signal{Price: PeakPrice, DurationMinutes: SignalDuration}
	}
	return models.Signal{Price: OffPeakPrice, DurationMinutes: SignalDuration}
}

// SimulatorService samples demand per building and feeds the resulting
// price signal through the building service.
type SimulatorService struct {
	buildings  Buildings
	monitoring Monitoring
	sampler    Sampler
	limitKW    float64
	log        *logger.Logger
}

// NewSimulatorService returns a simulator. A non-positive limit uses DefaultUsageLimitKW.
func NewSimulatorService(buildings Buildings, monitoring Monitoring, sampler Sampler, limitKW float64, log *logger.Logger) *SimulatorService {
	if limitKW <= 0 {
		limitKW = DefaultUsageLimitKW
	}
	if log == nil {
		log = logger.Nop()
	}
	return &SimulatorService{
		buildings:  buildings,
		monitoring: monitoring,
		sampler:    sampler,
		limitKW:    limitKW,
		log:        log,
	}
}

// Run ticks at the given interval until ctx is canceled.
func (s *SimulatorService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n, err := s.Step(ctx); err != nil {
				s.log.Warnw("simulator step failed", "adjusted", n, "error", err)
			}
		}
	}
}

// Step samples one reading per building and adjusts it. It returns the number
// of buildings adjusted and the last error seen; one failing building does not
// stop the others.
func (s *SimulatorService) Step(ctx context.Context) (int, error) {
	states, err := s.monitoring.ListStates(ctx)
	if err != nil {
		return 0, err
	}

	var lastErr error
	adjusted := 0
	for _, st := range states {
		r := s.sampler.Sample()
		sig := priceFor(r.UsageKW, s.limitKW)

		next, err := s.buildings.Adjust(ctx, st.ID, sig)
		if err != nil {
			lastErr = err
			continue
		}
		adjusted++
		s.log.Debugw("simulated signal",
			"building_id", st.ID,
			"usage_kw", r.UsageKW,
			"outdoor_temp_c", r.OutdoorTempC,
			"price", sig.Price,
			"hvac_power_kw", next.HVACPowerKW,
			"lighting_power_kw", next.LightingPowerKW,
			"mode", next.Mode.String(),
		)
	}
	return adjusted, lastErr
}
