package terrain

import (
	"math"
)

// Field is an immutable rectangular elevation lattice. Heights are stored
// row-major, one value per grid node, and never change after generation.
type Field struct {
	cols, rows int
	cellSize   float64
	originX    float64
	originY    float64
	heights    []float64
	minH, maxH float64
}

// NewFieldFromHeights wraps an existing height array. The slice must hold
// cols*rows values in row-major order. Used by the generator and by tests
// that need hand-crafted terrain.
func NewFieldFromHeights(cols, rows int, cellSize, originX, originY float64, heights []float64) *Field {
	f := &Field{
		cols:     cols,
		rows:     rows,
		cellSize: cellSize,
		originX:  originX,
		originY:  originY,
		heights:  heights,
		minH:     math.Inf(1),
		maxH:     math.Inf(-1),
	}
	for _, h := range heights {
		if h < f.minH {
			f.minH = h
		}
		if h > f.maxH {
			f.maxH = h
		}
	}
	return f
}

// Cols reports the number of grid columns.
func (f *Field) Cols() int { return f.cols }

// Rows reports the number of grid rows.
func (f *Field) Rows() int { return f.rows }

// CellSize reports the world-space spacing between grid nodes.
func (f *Field) CellSize() float64 { return f.cellSize }

// Origin reports the world-space position of node (0, 0).
func (f *Field) Origin() (x, y float64) { return f.originX, f.originY }

// MinHeight reports the lowest node elevation.
func (f *Field) MinHeight() float64 { return f.minH }

// MaxHeight reports the highest node elevation.
func (f *Field) MaxHeight() float64 { return f.maxH }

// Heights exposes the raw row-major height array. Callers must not mutate it.
func (f *Field) Heights() []float64 { return f.heights }

// Index converts grid coordinates to the row-major array index.
func (f *Field) Index(cx, cy int) int { return cy*f.cols + cx }

// HeightAtNode returns the elevation of the node at grid coordinates (cx, cy),
// clamped to the nearest valid node when out of range.
func (f *Field) HeightAtNode(cx, cy int) float64 {
	if cx < 0 {
		cx = 0
	}
	if cx >= f.cols {
		cx = f.cols - 1
	}
	if cy < 0 {
		cy = 0
	}
	if cy >= f.rows {
		cy = f.rows - 1
	}
	return f.heights[cy*f.cols+cx]
}

// HeightAt returns the interpolated elevation at a world coordinate.
//
// Each grid cell is split into two triangles along the diagonal from the
// cell's (+x, 0) corner to its (0, +y) corner, and the query point is
// interpolated with barycentric weights inside whichever triangle contains
// it. The split must stay in sync with the surface mesh built from this
// field, otherwise placed objects float above or sink below the visible
// ground. Out-of-bounds coordinates clamp to the field edge.
func (f *Field) HeightAt(worldX, worldY float64) float64 {
	// Position in grid units, clamped so the containing cell is valid.
	gx := (worldX - f.originX) / f.cellSize
	gy := (worldY - f.originY) / f.cellSize
	maxX := float64(f.cols - 1)
	maxY := float64(f.rows - 1)
	if gx < 0 {
		gx = 0
	} else if gx > maxX {
		gx = maxX
	}
	if gy < 0 {
		gy = 0
	} else if gy > maxY {
		gy = maxY
	}

	cx := int(math.Floor(gx))
	cy := int(math.Floor(gy))
	if cx >= f.cols-1 {
		cx = f.cols - 2
	}
	if cy >= f.rows-1 {
		cy = f.rows - 2
	}
	if cx < 0 || cy < 0 {
		// Degenerate 1xN field; fall back to the nearest node.
		return f.HeightAtNode(int(math.Round(gx)), int(math.Round(gy)))
	}

	u := gx - float64(cx)
	v := gy - float64(cy)

	h00 := f.heights[cy*f.cols+cx]
	h10 := f.heights[cy*f.cols+cx+1]
	h01 := f.heights[(cy+1)*f.cols+cx]
	h11 := f.heights[(cy+1)*f.cols+cx+1]

	if u+v <= 1 {
		// Triangle (0,0) (1,0) (0,1); barycentric weights reduce to u and v.
		return h00 + (h10-h00)*u + (h01-h00)*v
	}
	// Triangle (1,0) (1,1) (0,1) on the far side of the diagonal.
	return h11 + (h01-h11)*(1-u) + (h10-h11)*(1-v)
}

// NormalizedHeightAt returns HeightAt remapped to [0, 1] over the field's
// min/max elevation. A perfectly flat field reports 0.
func (f *Field) NormalizedHeightAt(worldX, worldY float64) float64 {
	span := f.maxH - f.minH
	if span <= 0 {
		return 0
	}
	return (f.HeightAt(worldX, worldY) - f.minH) / span
}

// CellAt returns the grid coordinates of the cell containing a world
// coordinate. ok is false when the coordinate falls outside the field.
func (f *Field) CellAt(worldX, worldY float64) (cx, cy int, ok bool) {
	cx = int(math.Floor((worldX - f.originX) / f.cellSize))
	cy = int(math.Floor((worldY - f.originY) / f.cellSize))
	if cx < 0 || cx >= f.cols || cy < 0 || cy >= f.rows {
		return 0, 0, false
	}
	return cx, cy, true
}
