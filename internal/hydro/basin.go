package hydro

import (
	"math"
	"sort"

	"wildsim/internal/terrain"
)

const (
	basinUnresolved = int32(-2)
	basinEdgeDrain  = int32(-1)
)

// SpillTarget identifies where a basin overflows: into a downstream basin,
// or off the modeled area entirely.
type SpillTarget struct {
	Basin  int
	OffMap bool
}

// Basin is one closed interior drainage watershed. Everything except
// WaterVolume is fixed at generation time.
type Basin struct {
	Index          int
	SinkIndex      int
	SpillElevation float64
	SpillsInto     SpillTarget
	CellCount      int

	// FloodElevations lists floodable-cell elevations ascending, terminated
	// by the spill elevation. CumulativeVolumes is parallel and
	// non-decreasing; its last entry is the basin capacity.
	FloodElevations   []float64
	CumulativeVolumes []float64

	// WaterVolume is the runtime fill level, mutated by the hydrology
	// driver. Values above capacity are interpreted as overflow by the
	// caller, never resolved here.
	WaterVolume float64

	cells []int
}

// Capacity returns the volume at which the basin starts spilling.
func (b *Basin) Capacity() float64 {
	if len(b.CumulativeVolumes) == 0 {
		return 0
	}
	return b.CumulativeVolumes[len(b.CumulativeVolumes)-1]
}

// Cells returns the grid indices belonging to this basin.
func (b *Basin) Cells() []int { return b.cells }

// SurfaceElevation maps a stored water volume to the flat elevation its
// surface would reach, by binary search over the cumulative-volume table.
// Zero or negative volume (and a basin with nothing floodable) reports
// negative infinity, meaning no standing water. Volumes at or above capacity
// clamp to the spill elevation; routing the excess is the caller's job.
func (b *Basin) SurfaceElevation(volume float64) float64 {
	if volume <= 0 || len(b.CumulativeVolumes) == 0 || b.Capacity() <= 0 {
		return math.Inf(-1)
	}
	if volume >= b.Capacity() {
		return b.SpillElevation
	}

	// First table entry with cumulative volume >= requested volume.
	i := sort.SearchFloat64s(b.CumulativeVolumes, volume)
	if i == 0 {
		return b.FloodElevations[0]
	}

	dv := b.CumulativeVolumes[i] - b.CumulativeVolumes[i-1]
	if dv <= 0 {
		// Duplicate elevations produce a zero-volume step; use the lower one.
		return b.FloodElevations[i-1]
	}
	t := (volume - b.CumulativeVolumes[i-1]) / dv
	return b.FloodElevations[i-1] + t*(b.FloodElevations[i]-b.FloodElevations[i-1])
}

// WaterSurfaceElevation is SurfaceElevation applied to the current volume.
func (b *Basin) WaterSurfaceElevation() float64 {
	return b.SurfaceElevation(b.WaterVolume)
}

// BasinSet partitions a terrain into interior basins. Cells whose flow
// reaches a border sink drain off the map and belong to no basin.
type BasinSet struct {
	basins     []*Basin
	cellBasin  []int32
	cols, rows int
	cellSize   float64
	originX    float64
	originY    float64
}

// BuildBasins decomposes the terrain into fillable depressions using the
// flow field's steepest-descent targets. Deterministic for a given field.
func BuildBasins(f *terrain.Field, flow *FlowField) *BasinSet {
	cols, rows := f.Cols(), f.Rows()
	ox, oy := f.Origin()
	total := cols * rows
	heights := f.Heights()

	bs := &BasinSet{
		cellBasin: make([]int32, total),
		cols:      cols,
		rows:      rows,
		cellSize:  f.CellSize(),
		originX:   ox,
		originY:   oy,
	}
	for i := range bs.cellBasin {
		bs.cellBasin[i] = basinUnresolved
	}

	onBorder := func(i int) bool {
		cx, cy := i%cols, i/cols
		return cx == 0 || cx == cols-1 || cy == 0 || cy == rows-1
	}

	// Follow every cell's flow chain to its terminal sink, memoizing so no
	// cell is walked twice. Border sinks drain off the map.
	var path []int
	for start := 0; start < total; start++ {
		if bs.cellBasin[start] != basinUnresolved {
			continue
		}
		path = path[:0]
		i := start
		var label int32
		for {
			if bs.cellBasin[i] != basinUnresolved {
				label = bs.cellBasin[i]
				break
			}
			path = append(path, i)
			t, ok := flow.Target(i)
			if !ok {
				// Terminal sink.
				if onBorder(i) {
					label = basinEdgeDrain
				} else {
					b := &Basin{
						Index:     len(bs.basins),
						SinkIndex: i,
					}
					bs.basins = append(bs.basins, b)
					label = int32(b.Index)
				}
				break
			}
			i = t
		}
		for _, c := range path {
			bs.cellBasin[c] = label
		}
	}

	// Record membership.
	for i, label := range bs.cellBasin {
		if label >= 0 {
			b := bs.basins[label]
			b.cells = append(b.cells, i)
			b.CellCount++
		}
	}

	// Spill point per basin: the lowest saddle on its rim. Every boundary
	// pair (in-basin, out-of-basin) contributes max(heightA, heightB);
	// border cells can always spill straight off the map.
	for _, b := range bs.basins {
		b.SpillElevation = math.Inf(1)
		for _, i := range b.cells {
			cx, cy := i%cols, i/cols
			if onBorder(i) && heights[i] < b.SpillElevation {
				b.SpillElevation = heights[i]
				b.SpillsInto = SpillTarget{OffMap: true}
			}
			for _, o := range d8Offsets {
				nx, ny := cx+o[0], cy+o[1]
				if nx < 0 || nx >= cols || ny < 0 || ny >= rows {
					continue
				}
				n := ny*cols + nx
				nl := bs.cellBasin[n]
				if nl == int32(b.Index) {
					continue
				}
				saddle := math.Max(heights[i], heights[n])
				if saddle < b.SpillElevation {
					b.SpillElevation = saddle
					if nl >= 0 {
						b.SpillsInto = SpillTarget{Basin: int(nl)}
					} else {
						b.SpillsInto = SpillTarget{OffMap: true}
					}
				}
			}
		}

		flood := make([]float64, 0, len(b.cells))
		for _, i := range b.cells {
			if heights[i] < b.SpillElevation {
				flood = append(flood, heights[i])
			}
		}
		cellArea := bs.cellSize * bs.cellSize
		b.FloodElevations, b.CumulativeVolumes = buildFloodTable(flood, b.SpillElevation, cellArea)
	}

	return bs
}

// buildFloodTable sorts floodable-cell elevations ascending, appends the
// spill elevation, and accumulates submerged volume: as the surface rises
// past the next unflooded cell, every already-submerged cell gains the same
// depth increment.
func buildFloodTable(cellElevations []float64, spill, cellArea float64) (elevs, volumes []float64) {
	if len(cellElevations) == 0 {
		return nil, nil
	}
	elevs = make([]float64, len(cellElevations), len(cellElevations)+1)
	copy(elevs, cellElevations)
	sort.Float64s(elevs)
	elevs = append(elevs, spill)

	volumes = make([]float64, len(elevs))
	for k := 1; k < len(elevs); k++ {
		submerged := float64(k)
		volumes[k] = volumes[k-1] + submerged*(elevs[k]-elevs[k-1])*cellArea
	}
	return elevs, volumes
}

// Basins returns all interior basins.
func (bs *BasinSet) Basins() []*Basin { return bs.basins }

// Basin returns the basin with the given index.
func (bs *BasinSet) Basin(index int) *Basin { return bs.basins[index] }

// BasinAtIndex reports which basin a grid cell belongs to. ok is false for
// cells that drain off the map.
func (bs *BasinSet) BasinAtIndex(index int) (*Basin, bool) {
	label := bs.cellBasin[index]
	if label < 0 {
		return nil, false
	}
	return bs.basins[label], true
}

// BasinAt reports which basin contains a world coordinate. ok is false both
// out of bounds and for cells that drain off the map.
func (bs *BasinSet) BasinAt(worldX, worldY float64) (*Basin, bool) {
	cx := int(math.Floor((worldX - bs.originX) / bs.cellSize))
	cy := int(math.Floor((worldY - bs.originY) / bs.cellSize))
	if cx < 0 || cx >= bs.cols || cy < 0 || cy >= bs.rows {
		return nil, false
	}
	return bs.BasinAtIndex(cy*bs.cols + cx)
}
