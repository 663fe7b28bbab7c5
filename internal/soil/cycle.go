package soil

// Weather provides the environmental forcing consumed by the soil cycle.
// The weather state machine itself lives outside the simulation core.
type Weather interface {
	// RainIntensity reports current rainfall in [0,1].
	RainIntensity() float64
	// Temperature reports the current air temperature in degrees Celsius.
	Temperature() float64
}

// StaticWeather is a fixed-value Weather, used by tests and tools.
type StaticWeather struct {
	Rain float64
	Temp float64
}

func (s StaticWeather) RainIntensity() float64 { return s.Rain }
func (s StaticWeather) Temperature() float64   { return s.Temp }

// CycleParams are the tuning constants of the per-tick soil cycle. They are
// gameplay parameters, not physical rates.
type CycleParams struct {
	HumidifyRate  float64 // humidity gained per unit rain per second
	EvaporateRate float64 // humidity lost per second at reference temperature
	DrainRate     float64 // humidity lost per second on the highest ground
	PoolThreshold float64 // flow accumulation above which rain puddles
	PoolRate      float64 // puddle depth gained per unit rain per second
	SoakRate      float64 // puddle depth converted to humidity per second
	PuddleDrain   float64 // puddle depth lost to ground per second
	OrganicDecay  float64 // organics mineralized per second at reference temp
	ReferenceTemp float64 // temperature at which the base rates apply
}

// DefaultCycleParams returns the tuned defaults.
func DefaultCycleParams() CycleParams {
	return CycleParams{
		HumidifyRate:  0.008,
		EvaporateRate: 0.0015,
		DrainRate:     0.001,
		PoolThreshold: 0.75,
		PoolRate:      0.02,
		SoakRate:      0.005,
		PuddleDrain:   0.01,
		OrganicDecay:  0.00002,
		ReferenceTemp: 20,
	}
}

// Cycle advances the environmental part of the soil simulation by dt
// seconds: rain humidifies and puddles in convergence cells, heat and
// altitude dry the ground back out, and organic matter slowly mineralizes.
// Every write clamps to [0,1].
func (g *Grid) Cycle(dt float64, w Weather, p CycleParams) {
	rain := w.RainIntensity()
	if rain < 0 {
		rain = 0
	} else if rain > 1 {
		rain = 1
	}
	tempFactor := w.Temperature() / p.ReferenceTemp
	if tempFactor < 0 {
		tempFactor = 0
	}

	humidity := g.props[PropHumidity]
	minerals := g.props[PropMinerals]
	organics := g.props[PropOrganics]
	sun := g.props[PropSun]

	for i := range humidity {
		pool := float64(g.pooling[i])
		elev := float64(g.elevation[i])

		h := float64(humidity[i])

		// Rainfall wets everything, convergence cells more.
		h += rain * (0.4 + 0.6*pool) * p.HumidifyRate * dt

		// Puddles form where upstream flow concentrates, soak in, and drain.
		wl := float64(g.water[i])
		if pool > p.PoolThreshold {
			wl += rain * (pool - p.PoolThreshold) * p.PoolRate * dt
		}
		soak := p.SoakRate * dt
		if soak > wl {
			soak = wl
		}
		wl -= soak
		h += soak
		wl -= p.PuddleDrain * tempFactor * dt
		if wl < 0 {
			wl = 0
		}
		g.water[i] = float32(wl)

		// Sun-exposed and elevated ground dries out faster.
		h -= p.EvaporateRate * tempFactor * float64(sun[i]) * dt
		h -= p.DrainRate * elev * dt
		humidity[i] = clamp01f(float32(h))

		// Decomposed matter turns into plant-available minerals.
		decay := p.OrganicDecay * tempFactor * dt
		if o := float64(organics[i]); decay > o {
			decay = o
		}
		organics[i] = clamp01f(organics[i] - float32(decay))
		minerals[i] = clamp01f(minerals[i] + float32(decay*0.5))
	}
}
