package world

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"wildsim/internal/config"
	"wildsim/internal/flora"
	"wildsim/internal/hydro"
	"wildsim/internal/profiling"
	"wildsim/internal/soil"
	"wildsim/internal/terrain"
)

// World is one self-contained simulation session: a generated terrain, its
// derived hydrology, the soil grid, and the flora engine, all advancing in
// lock step. Sessions share nothing; two Worlds never interfere.
type World struct {
	cfg config.WorldGen

	terrain *terrain.Field
	flow    *hydro.FlowField
	basins  *hydro.BasinSet
	soil    *soil.Grid
	flora   *flora.Engine

	registry *flora.Registry
	weather  soil.Weather
	cycle    soil.CycleParams
	hydro    HydroParams

	rng   *rand.Rand
	clock float64
}

// New generates a world from the given recipe. The registry supplies the
// plant species; the random source drives the initial scatter and all later
// dispersal, so a fixed seed reproduces the session exactly.
func New(cfg config.WorldGen, registry *flora.Registry, rng *rand.Rand) *World {
	cfg.Normalize()
	if registry == nil {
		registry = flora.DefaultRegistry()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(cfg.Seed))
	}

	gen := terrain.NewGenerator(cfg.Seed, cfg.BaseFrequency, cfg.MaxElevation)
	field := gen.Generate(cfg.WorldWidth, cfg.WorldHeight, cfg.CellSize, 0, 0)
	flow := hydro.BuildFlowField(field)
	basins := hydro.BuildBasins(field, flow)
	grid := soil.FromTerrain(field, flow)

	w := &World{
		cfg:      cfg,
		terrain:  field,
		flow:     flow,
		basins:   basins,
		soil:     grid,
		registry: registry,
		weather:  soil.StaticWeather{Rain: cfg.RainIntensity, Temp: cfg.Temperature},
		cycle:    soil.DefaultCycleParams(),
		hydro:    DefaultHydroParams(),
		rng:      rng,
	}

	w.flora = flora.NewEngine(registry, flora.Env{
		Soil:         grid,
		InBounds:     w.InBounds,
		NewID:        NewEntityID,
		LakesEnabled: cfg.LakesEnabled,
	}, flora.DefaultParams(), rng)

	w.scatterInitialFlora()
	return w
}

// Advance steps the whole simulation by dt seconds: soil environment first,
// then lake levels, then plant life reacting to both.
func (w *World) Advance(dt float64) {
	defer profiling.Track("world.Advance")()

	w.clock += dt
	w.soil.Cycle(dt, w.weather, w.cycle)
	if w.cfg.LakesEnabled {
		w.routeRain(dt)
	}
	w.flora.Advance(dt)
}

// NewEntityID mints a unique identity for plants and fruit.
func NewEntityID() string { return uuid.NewString() }

// SetWeather swaps the environmental forcing for subsequent ticks.
func (w *World) SetWeather(weather soil.Weather) {
	if weather != nil {
		w.weather = weather
	}
}

// Clock reports the simulated seconds elapsed since generation.
func (w *World) Clock() float64 { return w.clock }

// Config returns the normalized recipe this world was built from.
func (w *World) Config() config.WorldGen { return w.cfg }

// InBounds reports whether a world coordinate lies inside the session area.
func (w *World) InBounds(x, y float64) bool {
	ox, oy := w.terrain.Origin()
	return x >= ox && x < ox+w.cfg.WorldWidth && y >= oy && y < oy+w.cfg.WorldHeight
}

// Terrain exposes the elevation field.
func (w *World) Terrain() *terrain.Field { return w.terrain }

// Flow exposes the derived flow-accumulation field.
func (w *World) Flow() *hydro.FlowField { return w.flow }

// Basins exposes the depression decomposition.
func (w *World) Basins() *hydro.BasinSet { return w.basins }

// Soil exposes the dynamic soil grid.
func (w *World) Soil() *soil.Grid { return w.soil }

// Flora exposes the plant lifecycle engine.
func (w *World) Flora() *flora.Engine { return w.flora }

// Registry exposes the species definitions this session runs with.
func (w *World) Registry() *flora.Registry { return w.registry }

// HeightAt samples the interpolated terrain elevation at a world coordinate.
func (w *World) HeightAt(x, y float64) float64 { return w.terrain.HeightAt(x, y) }

// FlowAt samples the normalized flow accumulation at a world coordinate.
func (w *World) FlowAt(x, y float64) float64 { return w.flow.AccumulationAt(x, y) }

// SoilAt samples the soil cell under a world coordinate.
func (w *World) SoilAt(x, y float64) (soil.Sample, bool) { return w.soil.SampleAt(x, y) }

// WaterDepthAt reports the standing water depth at a world coordinate,
// whether from a lake surface or a rain puddle.
func (w *World) WaterDepthAt(x, y float64) float64 { return w.soil.WaterLevelAt(x, y) }

// scatterInitialFlora seeds the freshly generated world with a mixed-age
// plant population, skipping flooded ground.
func (w *World) scatterInitialFlora() {
	species := w.registry.All()
	if len(species) == 0 || w.cfg.InitialPlantDensity <= 0 {
		return
	}

	areaKm2 := w.cfg.WorldWidth * w.cfg.WorldHeight / 1e6
	count := int(w.cfg.InitialPlantDensity * areaKm2)
	ox, oy := w.terrain.Origin()

	for i := 0; i < count; i++ {
		x := ox + w.rng.Float64()*w.cfg.WorldWidth
		y := oy + w.rng.Float64()*w.cfg.WorldHeight
		if w.cfg.LakesEnabled && w.soil.WaterLevelAt(x, y) > 0 {
			continue
		}
		sp := species[w.rng.Intn(len(species))]

		// Rejection sampling against local fertility, so each species lands
		// mostly where it would actually thrive.
		sample, ok := w.soil.SampleAt(x, y)
		if !ok || w.rng.Float64() > flora.Fertility(sp, sample) {
			continue
		}

		// A spread of ages so the world does not start as a nursery.
		growth := w.rng.Float64()
		if _, err := w.flora.AddPlant(sp.ID, mgl64.Vec2{x, y}, growth); err != nil {
			continue
		}
	}
}
