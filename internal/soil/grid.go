package soil

import (
	"math"

	"wildsim/internal/hydro"
	"wildsim/internal/terrain"
)

// Property identifies one tracked soil value. All properties are clamped to
// [0,1] on every write.
type Property int

const (
	PropHumidity Property = iota
	PropMinerals
	PropOrganics
	PropSun
	numProperties
)

// Type is the discrete soil classification of a cell.
type Type uint8

const (
	TypeRock Type = iota
	TypeSand
	TypeSilt
	TypeLoam
	TypePeat
)

// Sample is a read-only snapshot of one soil cell.
type Sample struct {
	Humidity   float64
	Minerals   float64
	Organics   float64
	Sun        float64
	Type       Type
	WaterLevel float64
}

// Grid is the dynamic soil-fertility field. Values are stored as parallel
// typed arrays, one per property, matching the grid shape of the terrain.
// The grid is fixed-size for the session; cells are never destroyed.
type Grid struct {
	cols, rows int
	cellSize   float64
	originX    float64
	originY    float64

	props [numProperties][]float32
	types []Type
	water []float32 // standing water depth per cell

	elevation []float32 // normalized per-cell elevation, drives drainage
	pooling   []float32 // flow accumulation factor, drives rain pooling
}

// NewGrid creates a neutral soil grid. Every property starts at 0, sun at 1,
// and every cell defaults to loam until reclassified.
func NewGrid(cols, rows int, cellSize, originX, originY float64) *Grid {
	total := cols * rows
	g := &Grid{
		cols:      cols,
		rows:      rows,
		cellSize:  cellSize,
		originX:   originX,
		originY:   originY,
		types:     make([]Type, total),
		water:     make([]float32, total),
		elevation: make([]float32, total),
		pooling:   make([]float32, total),
	}
	for p := range g.props {
		g.props[p] = make([]float32, total)
	}
	for i := range g.types {
		g.props[PropSun][i] = 1
		g.types[i] = TypeLoam
	}
	return g
}

// FromTerrain builds a soil grid seeded from the terrain and its flow field:
// valleys collect humidity and organic matter, exposed heights stay mineral
// and rocky.
func FromTerrain(f *terrain.Field, flow *hydro.FlowField) *Grid {
	ox, oy := f.Origin()
	g := NewGrid(f.Cols(), f.Rows(), f.CellSize(), ox, oy)

	span := f.MaxHeight() - f.MinHeight()
	for cy := 0; cy < g.rows; cy++ {
		for cx := 0; cx < g.cols; cx++ {
			i := cy*g.cols + cx
			elev := 0.0
			if span > 0 {
				elev = (f.HeightAtNode(cx, cy) - f.MinHeight()) / span
			}
			pool := flow.AccumulationAtIndex(i)

			g.elevation[i] = float32(elev)
			g.pooling[i] = float32(pool)

			g.props[PropHumidity][i] = clamp01f(float32(0.25 + 0.6*pool - 0.2*elev))
			g.props[PropMinerals][i] = clamp01f(float32(0.35 + 0.4*elev))
			g.props[PropOrganics][i] = clamp01f(float32(0.2 + 0.4*pool - 0.25*elev))
			g.props[PropSun][i] = 1
			g.types[i] = classify(elev, float64(g.props[PropHumidity][i]), float64(g.props[PropOrganics][i]))
		}
	}
	return g
}

// classify derives the discrete soil type from elevation and moisture.
func classify(elev, humidity, organics float64) Type {
	switch {
	case elev > 0.8:
		return TypeRock
	case humidity < 0.25:
		return TypeSand
	case organics > 0.55 && humidity > 0.55:
		return TypePeat
	case humidity > 0.45 && organics > 0.3:
		return TypeLoam
	default:
		return TypeSilt
	}
}

func clamp01f(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Cols reports the grid column count.
func (g *Grid) Cols() int { return g.cols }

// Rows reports the grid row count.
func (g *Grid) Rows() int { return g.rows }

// CellSize reports the world-space cell spacing.
func (g *Grid) CellSize() float64 { return g.cellSize }

// Origin reports the world position of cell (0,0).
func (g *Grid) Origin() (x, y float64) { return g.originX, g.originY }

// index maps a world coordinate to a cell index. ok is false out of bounds.
func (g *Grid) index(worldX, worldY float64) (int, bool) {
	cx := int(math.Floor((worldX - g.originX) / g.cellSize))
	cy := int(math.Floor((worldY - g.originY) / g.cellSize))
	if cx < 0 || cx >= g.cols || cy < 0 || cy >= g.rows {
		return 0, false
	}
	return cy*g.cols + cx, true
}

// SampleAt returns the soil snapshot at a world coordinate. Out-of-bounds
// queries return a zero sample and ok=false, never an error.
func (g *Grid) SampleAt(worldX, worldY float64) (Sample, bool) {
	i, ok := g.index(worldX, worldY)
	if !ok {
		return Sample{}, false
	}
	return Sample{
		Humidity:   float64(g.props[PropHumidity][i]),
		Minerals:   float64(g.props[PropMinerals][i]),
		Organics:   float64(g.props[PropOrganics][i]),
		Sun:        float64(g.props[PropSun][i]),
		Type:       g.types[i],
		WaterLevel: float64(g.water[i]),
	}, true
}

// PropertyAt reads one property at a world coordinate; 0 out of bounds.
func (g *Grid) PropertyAt(worldX, worldY float64, p Property) float64 {
	i, ok := g.index(worldX, worldY)
	if !ok {
		return 0
	}
	return float64(g.props[p][i])
}

// SetProperty writes one property at a world coordinate, clamped to [0,1].
// Writes outside the grid are dropped.
func (g *Grid) SetProperty(worldX, worldY float64, p Property, value float64) {
	if i, ok := g.index(worldX, worldY); ok {
		g.props[p][i] = clamp01f(float32(value))
	}
}

// AddProperty adjusts one property by delta at a world coordinate, clamped.
func (g *Grid) AddProperty(worldX, worldY float64, p Property, delta float64) {
	if i, ok := g.index(worldX, worldY); ok {
		g.props[p][i] = clamp01f(g.props[p][i] + float32(delta))
	}
}

// ResetProperty assigns the same clamped value to a property in every cell.
func (g *Grid) ResetProperty(p Property, value float64) {
	v := clamp01f(float32(value))
	cells := g.props[p]
	for i := range cells {
		cells[i] = v
	}
}

// TypeAt returns the soil classification at a world coordinate.
func (g *Grid) TypeAt(worldX, worldY float64) Type {
	i, ok := g.index(worldX, worldY)
	if !ok {
		return TypeRock
	}
	return g.types[i]
}

// WaterLevelAt returns the standing water depth at a world coordinate;
// 0 out of bounds.
func (g *Grid) WaterLevelAt(worldX, worldY float64) float64 {
	i, ok := g.index(worldX, worldY)
	if !ok {
		return 0
	}
	return float64(g.water[i])
}

// SetWaterLevelIndex writes the standing water depth of a cell index.
// Depths never go negative.
func (g *Grid) SetWaterLevelIndex(index int, depth float64) {
	if depth < 0 {
		depth = 0
	}
	g.water[index] = float32(depth)
}

// CellCenter returns the world coordinate of a cell index's center.
func (g *Grid) CellCenter(index int) (x, y float64) {
	cx := index % g.cols
	cy := index / g.cols
	return g.originX + (float64(cx)+0.5)*g.cellSize, g.originY + (float64(cy)+0.5)*g.cellSize
}

// ForEachCellWithin invokes fn for every cell whose center lies within
// radius of a world coordinate, passing the center position and distance.
func (g *Grid) ForEachCellWithin(worldX, worldY, radius float64, fn func(cx, cy float64, dist float64)) {
	minX := int(math.Floor((worldX - radius - g.originX) / g.cellSize))
	maxX := int(math.Floor((worldX + radius - g.originX) / g.cellSize))
	minY := int(math.Floor((worldY - radius - g.originY) / g.cellSize))
	maxY := int(math.Floor((worldY + radius - g.originY) / g.cellSize))
	if minX < 0 {
		minX = 0
	}
	if minY < 0 {
		minY = 0
	}
	if maxX >= g.cols {
		maxX = g.cols - 1
	}
	if maxY >= g.rows {
		maxY = g.rows - 1
	}
	for cy := minY; cy <= maxY; cy++ {
		for cx := minX; cx <= maxX; cx++ {
			px := g.originX + (float64(cx)+0.5)*g.cellSize
			py := g.originY + (float64(cy)+0.5)*g.cellSize
			d := math.Hypot(px-worldX, py-worldY)
			if d <= radius {
				fn(px, py, d)
			}
		}
	}
}
