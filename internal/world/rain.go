package world

import (
	"math"

	"wildsim/internal/hydro"
	"wildsim/internal/profiling"
)

// HydroParams are the tuning constants of the basin water driver.
type HydroParams struct {
	// RunoffDepth is the water depth each basin cell contributes to its
	// basin per second at full rain intensity.
	RunoffDepth float64

	// LakeEvaporation is the fraction of a basin's stored volume lost per
	// second at the reference temperature.
	LakeEvaporation float64

	// ReferenceTemp is the temperature at which LakeEvaporation applies.
	ReferenceTemp float64
}

// DefaultHydroParams returns the tuned defaults.
func DefaultHydroParams() HydroParams {
	return HydroParams{
		RunoffDepth:     1e-4,
		LakeEvaporation: 2e-7,
		ReferenceTemp:   20,
	}
}

// routeRain fills every basin from rainfall runoff, cascades overflow along
// the spill graph, evaporates a little, and writes the resulting lake
// surfaces into the soil grid's standing-water layer.
func (w *World) routeRain(dt float64) {
	defer profiling.Track("hydro.RouteRain")()

	rain := w.weather.RainIntensity()
	if rain < 0 {
		rain = 0
	} else if rain > 1 {
		rain = 1
	}
	tempFactor := w.weather.Temperature() / w.hydro.ReferenceTemp
	if tempFactor < 0 {
		tempFactor = 0
	}

	basins := w.basins.Basins()
	cellArea := w.cfg.CellSize * w.cfg.CellSize

	for _, b := range basins {
		inflow := rain * w.hydro.RunoffDepth * float64(b.CellCount) * cellArea * dt
		evap := b.WaterVolume * w.hydro.LakeEvaporation * tempFactor * dt
		b.WaterVolume += inflow - evap
		if b.WaterVolume < 0 {
			b.WaterVolume = 0
		}
	}

	// Cascade overflow downstream. The spill graph is acyclic in practice;
	// the pass bound cuts off any pathological loop, discarding the leftover
	// the same way off-map spills do.
	for pass := 0; pass <= len(basins); pass++ {
		moved := false
		for _, b := range basins {
			excess := b.WaterVolume - b.Capacity()
			if excess <= 0 {
				continue
			}
			b.WaterVolume = b.Capacity()
			if !b.SpillsInto.OffMap {
				w.basins.Basin(b.SpillsInto.Basin).WaterVolume += excess
				moved = true
			}
		}
		if !moved {
			break
		}
	}

	w.writeLakeSurfaces()
}

// writeLakeSurfaces projects each basin's flat water surface onto its cells'
// standing-water depths. Inside a basin the lake level is authoritative;
// cells outside any basin keep their soil-cycle puddles.
func (w *World) writeLakeSurfaces() {
	heights := w.terrain.Heights()
	for _, b := range w.basins.Basins() {
		surface := b.WaterSurfaceElevation()
		for _, i := range b.Cells() {
			depth := 0.0
			if !math.IsInf(surface, -1) {
				depth = surface - heights[i]
				if depth < 0 {
					depth = 0
				}
			}
			w.soil.SetWaterLevelIndex(i, depth)
		}
	}
}

// LakeAt reports the basin water body covering a world coordinate, if any:
// a basin with stored water whose cell the coordinate falls in.
func (w *World) LakeAt(x, y float64) (*hydro.Basin, bool) {
	basin, found := w.basins.BasinAt(x, y)
	if !found || basin.WaterVolume <= 0 {
		return nil, false
	}
	return basin, true
}
