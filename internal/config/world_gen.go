package config

// WorldGen holds the knobs for building one world: terrain shape, hydrology,
// and the initial flora scatter. Zero values are filled in by Normalize.
type WorldGen struct {
	Seed int64

	// World extent in world units and the grid spacing used by the
	// elevation, flow, and soil grids.
	WorldWidth  float64
	WorldHeight float64
	CellSize    float64

	// Terrain noise shape.
	BaseFrequency float64
	MaxElevation  float64

	// Hydrology. Lakes can be disabled for dry-world scenarios; rain is
	// the steady input volume per cell per second.
	LakesEnabled  bool
	RainIntensity float64
	Temperature   float64

	// Initial flora scatter: plants per square kilometre of world area.
	InitialPlantDensity float64
}

// DefaultWorldGen returns the standard world recipe.
func DefaultWorldGen() WorldGen {
	return WorldGen{
		Seed:                1,
		WorldWidth:          1024,
		WorldHeight:         1024,
		CellSize:            4,
		BaseFrequency:       1.0 / 256.0,
		MaxElevation:        80,
		LakesEnabled:        true,
		RainIntensity:       0.2,
		Temperature:         18,
		InitialPlantDensity: 400,
	}
}

// Normalize clamps every field to a workable range, filling zero values with
// defaults. It never rejects a configuration.
func (c *WorldGen) Normalize() {
	def := DefaultWorldGen()

	if c.WorldWidth <= 0 {
		c.WorldWidth = def.WorldWidth
	}
	if c.WorldHeight <= 0 {
		c.WorldHeight = def.WorldHeight
	}
	if c.CellSize <= 0 {
		c.CellSize = def.CellSize
	}
	// A grid must hold at least a 2x2 cell block.
	if c.WorldWidth < 2*c.CellSize {
		c.WorldWidth = 2 * c.CellSize
	}
	if c.WorldHeight < 2*c.CellSize {
		c.WorldHeight = 2 * c.CellSize
	}

	if c.BaseFrequency <= 0 {
		c.BaseFrequency = def.BaseFrequency
	}
	if c.MaxElevation <= 0 {
		c.MaxElevation = def.MaxElevation
	}

	if c.RainIntensity < 0 {
		c.RainIntensity = 0
	}
	if c.Temperature < -60 {
		c.Temperature = -60
	}
	if c.Temperature > 60 {
		c.Temperature = 60
	}

	if c.InitialPlantDensity < 0 {
		c.InitialPlantDensity = 0
	}
	if c.InitialPlantDensity > 20000 {
		c.InitialPlantDensity = 20000
	}
}
