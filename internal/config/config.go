package config

// Simulation holds the runtime stepping knobs shared by the tools that
// advance a world: tick length and how much simulated time to cover.
type Simulation struct {
	// TickSeconds is the simulated time advanced per engine tick.
	TickSeconds float64

	// SimulateDays is how many simulated days to run before inspecting or
	// rendering the world.
	SimulateDays float64

	// ProfileTopN is how many per-tick timing entries to log; 0 disables
	// the profiling log line.
	ProfileTopN int
}

// DefaultSimulation returns the standard stepping configuration.
func DefaultSimulation() Simulation {
	return Simulation{
		TickSeconds:  600,
		SimulateDays: 0,
		ProfileTopN:  0,
	}
}

// Normalize clamps the stepping configuration to workable values.
func (s *Simulation) Normalize() {
	if s.TickSeconds < 0.1 {
		s.TickSeconds = 0.1
	}
	if s.TickSeconds > 3600 {
		s.TickSeconds = 3600
	}
	if s.SimulateDays < 0 {
		s.SimulateDays = 0
	}
	if s.ProfileTopN < 0 {
		s.ProfileTopN = 0
	}
	if s.ProfileTopN > 32 {
		s.ProfileTopN = 32
	}
}
