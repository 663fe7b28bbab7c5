package hydro

import (
	"math"
	"sort"

	"wildsim/internal/terrain"
)

// d8Offsets lists the eight neighbor directions used for steepest-descent
// flow routing.
var d8Offsets = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

const noTarget = int32(-1)

// FlowField holds the per-cell upstream accumulation derived once from an
// elevation field. Scores are normalized to [0,1]: 0 on ridges, 1 at the
// deepest convergence point.
type FlowField struct {
	cols, rows int
	cellSize   float64
	originX    float64
	originY    float64

	targets []int32   // steepest-descent neighbor per cell, noTarget for sinks
	raw     []float64 // accumulation before log/normalize, kept for diagnostics
	acc     []float64 // blurred, normalized accumulation
}

// BuildFlowField derives the flow accumulation for an elevation field.
// Deterministic: the result depends only on the field contents.
func BuildFlowField(f *terrain.Field) *FlowField {
	cols, rows := f.Cols(), f.Rows()
	ox, oy := f.Origin()
	total := cols * rows

	ff := &FlowField{
		cols:     cols,
		rows:     rows,
		cellSize: f.CellSize(),
		originX:  ox,
		originY:  oy,
		targets:  make([]int32, total),
		raw:      make([]float64, total),
		acc:      make([]float64, total),
	}

	heights := f.Heights()

	// 1. Steepest downhill neighbor per cell.
	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < cols; cx++ {
			i := cy*cols + cx
			ff.targets[i] = noTarget
			bestDrop := 0.0
			for _, o := range d8Offsets {
				nx, ny := cx+o[0], cy+o[1]
				if nx < 0 || nx >= cols || ny < 0 || ny >= rows {
					continue
				}
				n := ny*cols + nx
				drop := heights[i] - heights[n]
				if drop > bestDrop {
					bestDrop = drop
					ff.targets[i] = int32(n)
				}
			}
		}
	}

	// 2. Accumulate strictly from highest to lowest. Every cell's total is
	// final before it is added into its downhill target.
	order := make([]int, total)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		ha, hb := heights[order[a]], heights[order[b]]
		if ha != hb {
			return ha > hb
		}
		return order[a] < order[b] // stable tie-break keeps the build deterministic
	})

	for i := range ff.raw {
		ff.raw[i] = 1
	}
	for _, i := range order {
		if t := ff.targets[i]; t != noTarget {
			ff.raw[t] += ff.raw[i]
		}
	}

	// 3. Log compression and normalization.
	maxLog := 0.0
	for i, v := range ff.raw {
		lv := math.Log(v)
		ff.acc[i] = lv
		if lv > maxLog {
			maxLog = lv
		}
	}
	if maxLog > 0 {
		for i := range ff.acc {
			ff.acc[i] /= maxLog
		}
	}

	// 4. Blur so drainage lines are wider than a single cell, then renormalize.
	for pass := 0; pass < 3; pass++ {
		ff.acc = blur3x3(ff.acc, cols, rows)
	}
	maxAcc := 0.0
	for _, v := range ff.acc {
		if v > maxAcc {
			maxAcc = v
		}
	}
	if maxAcc > 0 {
		for i := range ff.acc {
			ff.acc[i] /= maxAcc
		}
	}

	return ff
}

// blur3x3 applies one weighted box-blur pass (center 4, edges 2, diagonals 1).
// Border cells normalize by the weight that actually landed inside the grid.
func blur3x3(src []float64, cols, rows int) []float64 {
	dst := make([]float64, len(src))
	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < cols; cx++ {
			sum := src[cy*cols+cx] * 4
			weight := 4.0
			for _, o := range d8Offsets {
				nx, ny := cx+o[0], cy+o[1]
				if nx < 0 || nx >= cols || ny < 0 || ny >= rows {
					continue
				}
				w := 2.0
				if o[0] != 0 && o[1] != 0 {
					w = 1.0
				}
				sum += src[ny*cols+nx] * w
				weight += w
			}
			dst[cy*cols+cx] = sum / weight
		}
	}
	return dst
}

// Cols reports the grid column count.
func (ff *FlowField) Cols() int { return ff.cols }

// Rows reports the grid row count.
func (ff *FlowField) Rows() int { return ff.rows }

// Target returns the downhill flow target of a cell index. ok is false for
// local sinks, which have no downhill neighbor.
func (ff *FlowField) Target(index int) (int, bool) {
	t := ff.targets[index]
	if t == noTarget {
		return 0, false
	}
	return int(t), true
}

// RawAccumulation returns the pre-log accumulation of a cell index. Every
// cell contributes at least its own unit, so the value is always >= 1.
func (ff *FlowField) RawAccumulation(index int) float64 { return ff.raw[index] }

// AccumulationAtIndex returns the normalized accumulation of a cell index.
func (ff *FlowField) AccumulationAtIndex(index int) float64 { return ff.acc[index] }

// AccumulationAt returns the normalized accumulation at a world coordinate,
// or 0 for coordinates outside the grid.
func (ff *FlowField) AccumulationAt(worldX, worldY float64) float64 {
	cx := int(math.Floor((worldX - ff.originX) / ff.cellSize))
	cy := int(math.Floor((worldY - ff.originY) / ff.cellSize))
	if cx < 0 || cx >= ff.cols || cy < 0 || cy >= ff.rows {
		return 0
	}
	return ff.acc[cy*ff.cols+cx]
}
