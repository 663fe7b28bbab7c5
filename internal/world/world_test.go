package world

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"wildsim/internal/config"
	"wildsim/internal/hydro"
)

func testConfig(seed int64) config.WorldGen {
	cfg := config.DefaultWorldGen()
	cfg.Seed = seed
	cfg.WorldWidth = 512
	cfg.WorldHeight = 512
	return cfg
}

// worldFingerprint hashes the generated terrain plus the plant population,
// which together pin down everything derived from the seed.
func worldFingerprint(w *World) string {
	h := sha256.New()
	var buf [8]byte
	for _, v := range w.Terrain().Heights() {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}
	for _, p := range w.Flora().Plants() {
		for _, v := range []float64{p.Pos.X(), p.Pos.Y(), p.Growth} {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			h.Write(buf[:])
		}
		h.Write([]byte(p.Species))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func TestNewWorldDeterministic(t *testing.T) {
	a := New(testConfig(7), nil, rand.New(rand.NewSource(7)))
	b := New(testConfig(7), nil, rand.New(rand.NewSource(7)))
	require.Equal(t, worldFingerprint(a), worldFingerprint(b))
}

func TestNewWorldSeedChangesEverything(t *testing.T) {
	a := New(testConfig(7), nil, rand.New(rand.NewSource(7)))
	b := New(testConfig(8), nil, rand.New(rand.NewSource(8)))
	require.NotEqual(t, worldFingerprint(a), worldFingerprint(b))
}

func TestNewWorldScattersFlora(t *testing.T) {
	w := New(testConfig(3), nil, nil)
	require.NotEmpty(t, w.Flora().Plants())
	for _, p := range w.Flora().Plants() {
		require.True(t, w.InBounds(p.Pos.X(), p.Pos.Y()))
	}
}

func TestAdvanceKeepsSoilInRange(t *testing.T) {
	w := New(testConfig(5), nil, nil)
	for i := 0; i < 50; i++ {
		w.Advance(600)
	}
	require.Equal(t, 50*600.0, w.Clock())

	g := w.Soil()
	for cy := 0; cy < g.Rows(); cy += 7 {
		for cx := 0; cx < g.Cols(); cx += 7 {
			x, y := g.CellCenter(cy*g.Cols() + cx)
			s, ok := g.SampleAt(x, y)
			require.True(t, ok)
			for _, v := range []float64{s.Humidity, s.Minerals, s.Organics, s.Sun} {
				require.GreaterOrEqual(t, v, 0.0)
				require.LessOrEqual(t, v, 1.0)
			}
		}
	}
}

// findBasinWorld scans seeds until generation yields a world with at least
// one fillable interior basin.
func findBasinWorld(t *testing.T) *World {
	t.Helper()
	for seed := int64(1); seed <= 10; seed++ {
		w := New(testConfig(seed), nil, nil)
		for _, b := range w.Basins().Basins() {
			if b.Capacity() > 0 {
				return w
			}
		}
	}
	t.Fatal("no seed in 1..10 produced an interior basin")
	return nil
}

func TestRainFillsBasins(t *testing.T) {
	w := findBasinWorld(t)
	w.hydro.RunoffDepth = 1e-3
	w.hydro.LakeEvaporation = 0

	for i := 0; i < 20; i++ {
		w.Advance(600)
	}

	filled := false
	for _, b := range w.Basins().Basins() {
		if b.Capacity() > 0 {
			require.Greater(t, b.WaterVolume, 0.0)
			filled = true
		}
	}
	require.True(t, filled)
}

func TestOverflowNeverExceedsCapacity(t *testing.T) {
	w := findBasinWorld(t)

	var target *hydro.Basin
	for _, b := range w.Basins().Basins() {
		if b.Capacity() > 0 {
			target = b
			break
		}
	}
	target.WaterVolume = target.Capacity() * 3

	w.routeRain(1)
	for _, b := range w.Basins().Basins() {
		require.LessOrEqual(t, b.WaterVolume, b.Capacity()+1e-9)
	}
}

func TestLakeSurfaceReachesSoil(t *testing.T) {
	w := findBasinWorld(t)

	var target *hydro.Basin
	for _, b := range w.Basins().Basins() {
		if b.Capacity() > 0 {
			target = b
			break
		}
	}
	target.WaterVolume = target.Capacity()
	w.writeLakeSurfaces()

	heights := w.Terrain().Heights()
	sink := target.SinkIndex
	x, y := w.Soil().CellCenter(sink)
	wantDepth := target.SpillElevation - heights[sink]
	// Standing water is stored single-precision in the soil grid.
	require.InDelta(t, wantDepth, w.WaterDepthAt(x, y), 1e-4)

	lake, ok := w.LakeAt(x, y)
	require.True(t, ok)
	require.Equal(t, target.Index, lake.Index)
}
