package flora

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"

	"wildsim/internal/soil"
)

const day = 86400.0

// uniformSoil builds a loam grid with the same property values everywhere.
func uniformSoil(cols, rows int, cellSize, humidity, minerals, organics, sun float64) *soil.Grid {
	g := soil.NewGrid(cols, rows, cellSize, 0, 0)
	g.ResetProperty(soil.PropHumidity, humidity)
	g.ResetProperty(soil.PropMinerals, minerals)
	g.ResetProperty(soil.PropOrganics, organics)
	g.ResetProperty(soil.PropSun, sun)
	return g
}

func testEngine(t *testing.T, g *soil.Grid, seed int64) *Engine {
	t.Helper()
	return NewEngine(DefaultRegistry(), Env{Soil: g}, DefaultParams(), rand.New(rand.NewSource(seed)))
}

func TestStageForGrowthOrdering(t *testing.T) {
	cases := []struct {
		growth float64
		want   Stage
	}{
		{0, StageSeed},
		{0.04, StageSeed},
		{0.05, StageSprout},
		{0.29, StageSprout},
		{0.3, StageGrowing},
		{0.99, StageGrowing},
		{1, StageMature},
	}
	for _, c := range cases {
		require.Equal(t, c.want, stageForGrowth(c.growth), "growth %v", c.growth)
	}
}

func TestStageNeverRegresses(t *testing.T) {
	g := uniformSoil(20, 20, 4, 0.6, 0.5, 0.5, 0.8)
	e := testEngine(t, g, 1)

	p, err := e.AddPlant("oak", mgl64.Vec2{40, 40}, 1)
	require.NoError(t, err)
	require.Equal(t, StageMature, p.Stage)

	// Even if growth is somehow pushed back, the stage holds.
	p.Growth = 0.1
	e.Advance(1)
	require.Equal(t, StageMature, p.Stage)
}

func TestOakSaplingTenDays(t *testing.T) {
	g := uniformSoil(100, 100, 4, 0.6, 0.5, 0.5, 0.8)
	e := testEngine(t, g, 42)

	_, err := e.AddSeed("oak", mgl64.Vec2{200, 200})
	require.NoError(t, err)

	const dt = 600.0
	for tick := 0; tick < int(10*day/dt); tick++ {
		e.Advance(dt)
	}

	require.Len(t, e.Plants(), 1)
	p := e.Plants()[0]
	require.Greater(t, p.Growth, 0.0)
	require.Greater(t, p.Health, 0.0)
	require.GreaterOrEqual(t, p.Stage, StageSprout)
	require.Less(t, p.Growth, 1.0, "an oak must not mature in ten days")
}

func TestCrowdingSuppressesGrowth(t *testing.T) {
	center := mgl64.Vec2{40, 40}

	// Alone: a single tick of growth on fertile ground.
	gAlone := uniformSoil(20, 20, 4, 0.6, 0.5, 0.5, 0.8)
	alone := testEngine(t, gAlone, 7)
	pAlone, err := alone.AddPlant("oak", center, 0.5)
	require.NoError(t, err)
	alone.Advance(600)
	require.Greater(t, pAlone.Growth, 0.5)

	// Surrounded by thirty neighbors inside the crowding radius: none.
	gCrowd := uniformSoil(20, 20, 4, 0.6, 0.5, 0.5, 0.8)
	crowded := testEngine(t, gCrowd, 7)
	pCrowd, err := crowded.AddPlant("oak", center, 0.5)
	require.NoError(t, err)
	for i := 0; i < 30; i++ {
		_, err := crowded.AddPlant("oak", center.Add(mgl64.Vec2{3, 0.1 * float64(i)}), 0.1)
		require.NoError(t, err)
	}
	crowded.Advance(600)
	require.Equal(t, 0.5, pCrowd.Growth)
}

func TestCrowdFactorBounds(t *testing.T) {
	g := uniformSoil(20, 20, 4, 0.6, 0.5, 0.5, 0.8)
	e := testEngine(t, g, 3)
	center := mgl64.Vec2{40, 40}

	p, err := e.AddPlant("oak", center, 0.5)
	require.NoError(t, err)
	sp, _ := e.registry.Lookup("oak")

	idx := buildSpatialIndex(e.plants, e.params.IndexCellSize)
	require.Equal(t, 1.0, e.crowdFactor(idx, p, sp), "no neighbors means no penalty")

	for i := 0; i < e.params.CrowdHigh; i++ {
		_, err := e.AddPlant("oak", center.Add(mgl64.Vec2{2, 0.1 * float64(i)}), 0.1)
		require.NoError(t, err)
	}
	idx = buildSpatialIndex(e.plants, e.params.IndexCellSize)
	require.Equal(t, 0.0, e.crowdFactor(idx, p, sp), "at the high mark growth stops")
}

func TestDormantSeedGerminatesOnFertileGround(t *testing.T) {
	g := uniformSoil(20, 20, 4, 0.6, 0.5, 0.5, 0.8)
	e := testEngine(t, g, 5)

	p, err := e.AddSeed("oak", mgl64.Vec2{40, 40})
	require.NoError(t, err)
	require.Greater(t, p.Dormancy, 0.0)

	e.Advance(1)
	require.Equal(t, 0.0, p.Dormancy)
	require.True(t, p.Alive())
}

func TestDormantSeedExpiresOnBarrenGround(t *testing.T) {
	g := uniformSoil(20, 20, 4, 0, 0, 0, 0)
	e := testEngine(t, g, 5)

	p, err := e.AddSeed("oak", mgl64.Vec2{40, 40})
	require.NoError(t, err)

	sp, _ := e.registry.Lookup("oak")
	e.Advance(sp.Seeds.Dormancy + 1)
	require.Equal(t, StageDead, p.Stage)
}

func TestUnknownSpeciesIsInert(t *testing.T) {
	g := uniformSoil(20, 20, 4, 0.6, 0.5, 0.5, 0.8)
	e := testEngine(t, g, 9)

	ghost := &Plant{ID: "g1", Species: "ghost", Pos: mgl64.Vec2{40, 40}, Health: 100}
	e.plants = append(e.plants, ghost)

	e.Advance(600)
	require.Len(t, e.Plants(), 1)
	require.Equal(t, 100.0, ghost.Health)
	require.Equal(t, 0.0, ghost.Growth)
}

func TestAddPlantUnknownSpeciesSuggests(t *testing.T) {
	g := uniformSoil(10, 10, 4, 0.5, 0.5, 0.5, 1)
	e := testEngine(t, g, 1)

	_, err := e.AddPlant("oka", mgl64.Vec2{20, 20}, 0)
	require.Error(t, err)
	require.Contains(t, err.Error(), `"oak"`)
}

func TestDispersalScattersWithinRadius(t *testing.T) {
	g := uniformSoil(100, 100, 4, 0.6, 0.5, 0.5, 0.8)
	e := testEngine(t, g, 11)

	origin := mgl64.Vec2{200, 200}
	p, err := e.AddPlant("oak", origin, 1)
	require.NoError(t, err)
	p.SeedTimer = 0.5

	e.Advance(1)

	sp, _ := e.registry.Lookup("oak")
	require.Len(t, e.Plants(), 1+sp.Seeds.Count)
	for _, q := range e.Plants()[1:] {
		require.Equal(t, StageSeed, q.Stage)
		require.Equal(t, sp.Seeds.Dormancy, q.Dormancy)
		d := q.Pos.Sub(origin)
		require.LessOrEqual(t, d.Len(), sp.Seeds.Radius)
	}
	require.Equal(t, sp.Seeds.Interval, p.SeedTimer, "timer resets after dispersal")
}

func TestDispersalRespectsDensityCap(t *testing.T) {
	g := uniformSoil(100, 100, 4, 0.6, 0.5, 0.5, 0.8)
	e := testEngine(t, g, 13)

	origin := mgl64.Vec2{200, 200}
	p, err := e.AddPlant("oak", origin, 1)
	require.NoError(t, err)
	p.SeedTimer = 0.5

	sp, _ := e.registry.Lookup("oak")
	for i := 0; i < sp.DensityCap; i++ {
		_, err := e.AddPlant("oak", origin.Add(mgl64.Vec2{2 + float64(i), 0}), 0.5)
		require.NoError(t, err)
	}

	before := len(e.Plants())
	e.Advance(1)
	require.Len(t, e.Plants(), before, "saturated neighborhoods produce no seeds")
}

func TestDispersalDeterministicWithSeededSource(t *testing.T) {
	run := func() []mgl64.Vec2 {
		g := uniformSoil(100, 100, 4, 0.6, 0.5, 0.5, 0.8)
		e := testEngine(t, g, 99)
		p, err := e.AddPlant("oak", mgl64.Vec2{200, 200}, 1)
		require.NoError(t, err)
		p.SeedTimer = 0.5
		e.Advance(1)
		var out []mgl64.Vec2
		for _, q := range e.Plants()[1:] {
			out = append(out, q.Pos)
		}
		return out
	}
	require.Equal(t, run(), run())
}

func TestFruitDropAndPollinationBonus(t *testing.T) {
	g := uniformSoil(100, 100, 4, 0.6, 0.5, 0.5, 0.8)
	e := testEngine(t, g, 17)

	solo, err := e.AddPlant("oak", mgl64.Vec2{200, 200}, 1)
	require.NoError(t, err)
	solo.FruitTimer = 0.5

	e.Advance(1)
	sp, _ := e.registry.Lookup("oak")
	require.Len(t, e.Fruits(), sp.Fruit.Count)
	for _, f := range e.Fruits() {
		require.Equal(t, "acorn", f.Name)
		require.Equal(t, solo.ID, f.PlantID)
	}

	// A mature neighbor within pollination range boosts the yield.
	g2 := uniformSoil(100, 100, 4, 0.6, 0.5, 0.5, 0.8)
	e2 := testEngine(t, g2, 17)
	a, err := e2.AddPlant("oak", mgl64.Vec2{200, 200}, 1)
	require.NoError(t, err)
	_, err = e2.AddPlant("oak", mgl64.Vec2{206, 200}, 1)
	require.NoError(t, err)
	a.FruitTimer = 0.5

	e2.Advance(1)
	want := int(float64(sp.Fruit.Count) * e2.params.PollinationBonus)
	require.Len(t, e2.Fruits(), want)
}

func TestFruitRots(t *testing.T) {
	g := uniformSoil(20, 20, 4, 0.6, 0.5, 0.5, 0.8)
	e := testEngine(t, g, 21)

	e.fruits = append(e.fruits, &Fruit{ID: "f1", Name: "acorn", MaxAge: 10})
	e.Advance(5)
	require.Len(t, e.Fruits(), 1)
	e.Advance(6)
	require.Empty(t, e.Fruits())
}

func TestDeadPlantDecomposesIntoSoil(t *testing.T) {
	g := uniformSoil(20, 20, 4, 0.6, 0.5, 0.2, 0.8)
	params := DefaultParams()
	params.DecomposeAfter = 5
	e := NewEngine(DefaultRegistry(), Env{Soil: g}, params, rand.New(rand.NewSource(23)))

	pos := mgl64.Vec2{40, 40}
	p, err := e.AddPlant("oak", pos, 1)
	require.NoError(t, err)
	before := g.PropertyAt(pos.X(), pos.Y(), soil.PropOrganics)

	p.Health = 0
	e.Advance(10)
	require.Empty(t, e.Plants(), "decomposed plants leave the simulation")
	require.Greater(t, g.PropertyAt(pos.X(), pos.Y(), soil.PropOrganics), before)
}

func TestStandingWaterDrownsPlants(t *testing.T) {
	g := uniformSoil(20, 20, 4, 0.6, 0.5, 0.5, 0.8)
	for i := 0; i < 20*20; i++ {
		g.SetWaterLevelIndex(i, 1)
	}
	e := testEngine(t, g, 27)
	e.env.LakesEnabled = true

	p, err := e.AddPlant("oak", mgl64.Vec2{40, 40}, 1)
	require.NoError(t, err)

	e.Advance(10)
	require.Less(t, p.Health, 100.0)
}

func TestSeedsNeverLandInDeepWater(t *testing.T) {
	g := uniformSoil(100, 100, 4, 0.6, 0.5, 0.5, 0.8)
	for i := 0; i < 100*100; i++ {
		g.SetWaterLevelIndex(i, 1)
	}
	e := testEngine(t, g, 29)
	e.env.LakesEnabled = true

	p, err := e.AddPlant("oak", mgl64.Vec2{200, 200}, 1)
	require.NoError(t, err)
	p.Health = 100
	p.SeedTimer = 0.1

	e.Advance(0.2)
	require.Len(t, e.Plants(), 1, "flooded ground accepts no seeds")
}

func TestCanopyShadesSoil(t *testing.T) {
	g := uniformSoil(40, 40, 4, 0.6, 0.5, 0.5, 1)
	params := DefaultParams()
	params.CanopyInterval = 1
	e := NewEngine(DefaultRegistry(), Env{Soil: g}, params, rand.New(rand.NewSource(31)))

	pos := mgl64.Vec2{80, 80}
	_, err := e.AddPlant("oak", pos, 1)
	require.NoError(t, err)

	e.Advance(2)
	under := g.PropertyAt(pos.X(), pos.Y(), soil.PropSun)
	far := g.PropertyAt(10, 10, soil.PropSun)
	require.Less(t, under, far)
	require.Equal(t, 1.0, far)
}

func TestFertilityRangeAndTypeAffinity(t *testing.T) {
	reg := DefaultRegistry()
	oak, _ := reg.Lookup("oak")

	ideal := soil.Sample{Humidity: 0.55, Minerals: 0.5, Organics: 0.55, Sun: 0.75, Type: soil.TypeLoam}
	barren := soil.Sample{Type: soil.TypeRock}

	fIdeal := Fertility(oak, ideal)
	fBarren := Fertility(oak, barren)

	require.InDelta(t, 1.0, fIdeal, 1e-9, "perfect match on loam saturates the score")
	require.Greater(t, fIdeal, fBarren)
	require.GreaterOrEqual(t, fBarren, 0.0)
	require.LessOrEqual(t, fIdeal, 1.0)
}
