package terrain

// Generator produces elevation fields from layered simplex noise.
// The same seed and bounds always yield a bit-identical field.
type Generator struct {
	seed          int64
	baseFrequency float64
	maxElevation  float64
}

// NewGenerator creates a generator for the given seed. baseFrequency is the
// spatial frequency of the broadest noise layer in cycles per world unit;
// maxElevation scales the remapped noise into world heights.
func NewGenerator(seed int64, baseFrequency, maxElevation float64) *Generator {
	if baseFrequency <= 0 {
		baseFrequency = 1.0 / 256.0
	}
	if maxElevation <= 0 {
		maxElevation = 1
	}
	return &Generator{
		seed:          seed,
		baseFrequency: baseFrequency,
		maxElevation:  maxElevation,
	}
}

// Generate builds the elevation lattice covering a worldWidth x worldHeight
// rectangle anchored at (originX, originY) with the given node spacing.
func (g *Generator) Generate(worldWidth, worldHeight, cellSize, originX, originY float64) *Field {
	cols := int(worldWidth/cellSize) + 1
	rows := int(worldHeight/cellSize) + 1
	if cols < 2 {
		cols = 2
	}
	if rows < 2 {
		rows = 2
	}

	noise := newLayeredNoise(g.seed, g.baseFrequency)
	heights := make([]float64, cols*rows)
	for cy := 0; cy < rows; cy++ {
		wy := originY + float64(cy)*cellSize
		for cx := 0; cx < cols; cx++ {
			wx := originX + float64(cx)*cellSize
			// Signed [-1,1] noise remapped to [0,1], then scaled.
			n := (noise.sample(wx, wy) + 1) * 0.5
			heights[cy*cols+cx] = n * g.maxElevation
		}
	}
	return NewFieldFromHeights(cols, rows, cellSize, originX, originY, heights)
}
