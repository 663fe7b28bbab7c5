package flora

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// spatialIndex is a bucket hash over plant positions. It is rebuilt from
// scratch once per tick by buildSpatialIndex and threaded explicitly into
// the crowding, density-cap, and pollination checks: an O(n) rebuild buys
// O(1)-amortized neighborhood queries with no incremental bookkeeping.
type spatialIndex struct {
	cellSize float64
	buckets  map[[2]int][]*Plant
}

// buildSpatialIndex hashes every plant into a grid bucket of the given cell
// size. The cell size should be on the order of the largest query radius.
func buildSpatialIndex(plants []*Plant, cellSize float64) *spatialIndex {
	if cellSize <= 0 {
		cellSize = 1
	}
	idx := &spatialIndex{
		cellSize: cellSize,
		buckets:  make(map[[2]int][]*Plant, len(plants)),
	}
	for _, p := range plants {
		k := idx.key(p.Pos)
		idx.buckets[k] = append(idx.buckets[k], p)
	}
	return idx
}

func (idx *spatialIndex) key(pos mgl64.Vec2) [2]int {
	return [2]int{
		int(math.Floor(pos.X() / idx.cellSize)),
		int(math.Floor(pos.Y() / idx.cellSize)),
	}
}

// forEachWithin invokes fn for every plant within radius of pos, self
// included when present. Iteration stops early if fn returns false.
func (idx *spatialIndex) forEachWithin(pos mgl64.Vec2, radius float64, fn func(*Plant) bool) {
	minX := int(math.Floor((pos.X() - radius) / idx.cellSize))
	maxX := int(math.Floor((pos.X() + radius) / idx.cellSize))
	minY := int(math.Floor((pos.Y() - radius) / idx.cellSize))
	maxY := int(math.Floor((pos.Y() + radius) / idx.cellSize))
	r2 := radius * radius

	for by := minY; by <= maxY; by++ {
		for bx := minX; bx <= maxX; bx++ {
			for _, p := range idx.buckets[[2]int{bx, by}] {
				d := p.Pos.Sub(pos)
				if d.X()*d.X()+d.Y()*d.Y() <= r2 {
					if !fn(p) {
						return
					}
				}
			}
		}
	}
}

// countWithin counts plants within radius of pos matching the filter.
func (idx *spatialIndex) countWithin(pos mgl64.Vec2, radius float64, match func(*Plant) bool) int {
	n := 0
	idx.forEachWithin(pos, radius, func(p *Plant) bool {
		if match(p) {
			n++
		}
		return true
	})
	return n
}

// anyWithin reports whether any plant within radius matches the filter.
func (idx *spatialIndex) anyWithin(pos mgl64.Vec2, radius float64, match func(*Plant) bool) bool {
	found := false
	idx.forEachWithin(pos, radius, func(p *Plant) bool {
		if match(p) {
			found = true
			return false
		}
		return true
	})
	return found
}
