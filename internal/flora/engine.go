package flora

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"wildsim/internal/profiling"
	"wildsim/internal/soil"
)

// Env bundles the collaborators the engine reads and writes. Soil is
// required; the rest default to sensible implementations.
type Env struct {
	Soil *soil.Grid

	// InBounds reports whether a world coordinate is inside the playable
	// area. Defaults to the soil grid's extent.
	InBounds func(x, y float64) bool

	// NewID mints identities for new plants and fruit. Defaults to UUIDs.
	NewID func() string

	// LakesEnabled gates whether standing water blocks seed and fruit
	// placement.
	LakesEnabled bool
}

// Engine owns every plant and fruit entity and advances them one tick at a
// time. It is single-threaded by design: one Advance call per frame, no
// concurrent mutation.
type Engine struct {
	registry *Registry
	params   Params
	env      Env
	rng      *rand.Rand

	plants []*Plant
	fruits []*Fruit

	canopyClock float64
}

// NewEngine builds a lifecycle engine. The random source drives dispersal
// angles and counts; inject a seeded one for deterministic tests, or a
// rand.New(rand.NewSource(time.Now().UnixNano())) for live worlds.
func NewEngine(registry *Registry, env Env, params Params, rng *rand.Rand) *Engine {
	if env.NewID == nil {
		env.NewID = uuid.NewString
	}
	if env.InBounds == nil && env.Soil != nil {
		g := env.Soil
		ox, oy := g.Origin()
		w := float64(g.Cols()) * g.CellSize()
		h := float64(g.Rows()) * g.CellSize()
		env.InBounds = func(x, y float64) bool {
			return x >= ox && x < ox+w && y >= oy && y < oy+h
		}
	}
	return &Engine{
		registry: registry,
		params:   params,
		env:      env,
		rng:      rng,
	}
}

// Plants exposes the live plant slice. Callers must not mutate it.
func (e *Engine) Plants() []*Plant { return e.plants }

// Fruits exposes the live fruit slice. Callers must not mutate it.
func (e *Engine) Fruits() []*Fruit { return e.fruits }

// AddPlant places a plant of the given species at a growth progress.
// Unknown species are an error here, unlike during the tick where stale
// references are simply skipped.
func (e *Engine) AddPlant(speciesID string, pos mgl64.Vec2, growth float64) (*Plant, error) {
	sp, err := e.registry.Get(speciesID)
	if err != nil {
		return nil, err
	}
	if growth < 0 {
		growth = 0
	} else if growth > 1 {
		growth = 1
	}
	p := &Plant{
		ID:        e.env.NewID(),
		Species:   sp.ID,
		Pos:       pos,
		Growth:    growth,
		Health:    100,
		Stage:     stageForGrowth(growth),
		SeedTimer: sp.Seeds.Interval,
	}
	if sp.Fruit != nil {
		p.FruitTimer = sp.Fruit.Interval
	}
	e.plants = append(e.plants, p)
	return p, nil
}

// AddSeed places a dormant seed of the given species.
func (e *Engine) AddSeed(speciesID string, pos mgl64.Vec2) (*Plant, error) {
	p, err := e.AddPlant(speciesID, pos, 0)
	if err != nil {
		return nil, err
	}
	sp, _ := e.registry.Lookup(speciesID)
	p.Dormancy = sp.Seeds.Dormancy
	return p, nil
}

// Advance runs one simulation tick of dt seconds: rebuilds the spatial
// index, runs the periodic canopy pass, advances every plant, ages fruit,
// and compacts out entities whose lifecycle has completed.
func (e *Engine) Advance(dt float64) {
	defer profiling.Track("flora.Advance")()

	idx := buildSpatialIndex(e.plants, e.params.IndexCellSize)

	if e.params.CanopyInterval > 0 {
		e.canopyClock += dt
		if e.canopyClock >= e.params.CanopyInterval {
			e.canopyClock = math.Mod(e.canopyClock, e.params.CanopyInterval)
			e.canopyPass()
		}
	}

	var newPlants []*Plant
	var newFruits []*Fruit

	survivors := e.plants[:0]
	for _, p := range e.plants {
		if e.tickPlant(p, idx, dt, &newPlants, &newFruits) {
			survivors = append(survivors, p)
		}
	}
	e.plants = append(survivors, newPlants...)

	live := e.fruits[:0]
	for _, f := range e.fruits {
		f.Age += dt
		if !f.Rotten() {
			live = append(live, f)
		}
	}
	e.fruits = append(live, newFruits...)
}

// tickPlant advances one plant and reports whether it survives the tick.
func (e *Engine) tickPlant(p *Plant, idx *spatialIndex, dt float64, newPlants *[]*Plant, newFruits *[]*Fruit) bool {
	sp, ok := e.registry.Lookup(p.Species)
	if !ok {
		// A stale species reference makes the plant inert, never fatal.
		return true
	}

	if p.Stage == StageDead || p.Health <= 0 {
		p.Stage = StageDead
		p.deadFor += dt
		p.Health -= e.params.FadeRate * dt
		if p.deadFor >= e.params.DecomposeAfter {
			e.decompose(p, sp)
			return false
		}
		return true
	}

	// Dormant seeds do nothing but watch the soil. Fertile ground ends
	// dormancy immediately; an expired timer kills the seed unsprouted.
	if p.Dormancy > 0 {
		if e.fertilityAt(sp, p.Pos) >= sp.Seeds.Germination {
			p.Dormancy = 0
		} else {
			p.Dormancy -= dt
			if p.Dormancy <= 0 {
				p.Health = 0
				p.Stage = StageDead
			}
			return true
		}
	}

	p.Age += dt
	fert := e.fertilityAt(sp, p.Pos)
	px, py := p.Pos.X(), p.Pos.Y()

	// Standing water above the tolerance depth drowns the plant.
	if depth := e.env.Soil.WaterLevelAt(px, py); depth > e.params.DrownDepth {
		p.Health -= (depth - e.params.DrownDepth) * e.params.DrownRate * dt
	}

	// Health tracks fertility relative to the comfort threshold, with the
	// species' resilience damping the downside.
	if fert > e.params.ComfortFertility {
		p.Health += (fert - e.params.ComfortFertility) * e.params.RegenRate * dt
		if p.Health > 100 {
			p.Health = 100
		}
	} else {
		p.Health -= (e.params.ComfortFertility - fert) * e.params.DecayRate * (1 - sp.Resilience) * dt
	}

	// Growth needs positive health, viable fertility, and breathing room.
	if p.Health > 0 && p.Growth < 1 && fert > e.params.ViableFertility {
		crowd := e.crowdFactor(idx, p, sp)
		if crowd > 0 {
			delta := (fert - e.params.ViableFertility) / (1 - e.params.ViableFertility) *
				crowd * dt / sp.GrowthDuration
			if p.Growth+delta > 1 {
				delta = 1 - p.Growth
			}
			p.Growth += delta
			e.drawDown(p, sp, delta)
		}
	}

	// Mature, healthy plants shed leaf litter into their cell.
	if p.Stage == StageMature && p.Health > e.params.LitterHealth {
		e.env.Soil.AddProperty(px, py, soil.PropOrganics, e.params.LitterOrganics*dt)
		e.env.Soil.AddProperty(px, py, soil.PropMinerals, e.params.LitterMinerals*dt)
	}

	if p.Health > 0 {
		e.tryDisperse(p, sp, idx, dt, newPlants)
		e.tryFruit(p, sp, idx, dt, newFruits)
	}

	// Stages only move forward; death is the one exception, handled first.
	if s := stageForGrowth(p.Growth); s > p.Stage {
		p.Stage = s
	}
	if p.Health <= 0 {
		p.Stage = StageDead
	}
	return true
}

// fertilityAt scores the soil under a position for a species; 0 off-grid.
func (e *Engine) fertilityAt(sp *Species, pos mgl64.Vec2) float64 {
	s, ok := e.env.Soil.SampleAt(pos.X(), pos.Y())
	if !ok {
		return 0
	}
	return Fertility(sp, s)
}

// Fertility is the weighted match between a species' soil preferences and
// an actual sample, scaled by the species' soil-type affinity. The result
// in [0,1] is the single scalar driving both health and growth.
func Fertility(sp *Species, s soil.Sample) float64 {
	value := func(p soil.Property) float64 {
		switch p {
		case soil.PropHumidity:
			return s.Humidity
		case soil.PropMinerals:
			return s.Minerals
		case soil.PropOrganics:
			return s.Organics
		default:
			return s.Sun
		}
	}

	sum, totalWeight := 0.0, 0.0
	// Fixed iteration order keeps float rounding identical across runs.
	for prop := soil.PropHumidity; prop <= soil.PropSun; prop++ {
		pref, ok := sp.Preferences[prop]
		if !ok || pref.Weight <= 0 || pref.Tolerance <= 0 {
			continue
		}
		match := 1 - math.Abs(value(prop)-pref.Ideal)/pref.Tolerance
		if match < 0 {
			match = 0
		}
		sum += match * pref.Weight
		totalWeight += pref.Weight
	}
	if totalWeight <= 0 {
		return 0
	}
	score := sum / totalWeight
	if affinity, ok := sp.TypeAffinity[s.Type]; ok {
		score *= affinity
	}
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// crowdFactor scales growth by local competition: unaffected below CrowdLow
// same-tier neighbors, falling linearly to zero at CrowdHigh.
func (e *Engine) crowdFactor(idx *spatialIndex, p *Plant, sp *Species) float64 {
	n := idx.countWithin(p.Pos, sp.CrowdRadius, func(q *Plant) bool {
		return q != p && q.Stage != StageDead && q.Stage >= StageSprout
	})
	low, high := e.params.CrowdLow, e.params.CrowdHigh
	if n < low {
		return 1
	}
	if n >= high {
		return 0
	}
	return float64(high-n) / float64(high-low)
}

// drawDown consumes soil in proportion to what the species cares about and
// how much the plant just grew. Sun exposure is not consumable; the canopy
// pass owns it.
func (e *Engine) drawDown(p *Plant, sp *Species, delta float64) {
	px, py := p.Pos.X(), p.Pos.Y()
	scale := delta * e.params.DrainScale * (0.25 + p.Size(sp))
	for prop := soil.PropHumidity; prop <= soil.PropOrganics; prop++ {
		pref, ok := sp.Preferences[prop]
		if !ok {
			continue
		}
		e.env.Soil.AddProperty(px, py, prop, -pref.Weight*scale)
	}
}

// scatterPos picks a drop position around a plant, uniform by area so the
// outer ring receives its fair share.
func (e *Engine) scatterPos(center mgl64.Vec2, radius float64) mgl64.Vec2 {
	angle := e.rng.Float64() * 2 * math.Pi
	r := radius * math.Sqrt(e.rng.Float64())
	return center.Add(mgl64.Vec2{math.Cos(angle) * r, math.Sin(angle) * r})
}

// placeable rejects positions outside the world or in deep standing water.
func (e *Engine) placeable(pos mgl64.Vec2) bool {
	if !e.env.InBounds(pos.X(), pos.Y()) {
		return false
	}
	if e.env.LakesEnabled && e.env.Soil.WaterLevelAt(pos.X(), pos.Y()) > e.params.MaxSeedWaterDepth {
		return false
	}
	return true
}

// tryDisperse scatters dormant seeds once the plant is mature and healthy,
// its interval timer has expired, and the local same-species density allows.
func (e *Engine) tryDisperse(p *Plant, sp *Species, idx *spatialIndex, dt float64, newPlants *[]*Plant) {
	if sp.Seeds.Count <= 0 || p.Growth < sp.Seeds.MinMaturity || p.Health < e.params.SeedHealth {
		return
	}
	p.SeedTimer -= dt
	if p.SeedTimer > 0 {
		return
	}
	p.SeedTimer = sp.Seeds.Interval

	same := idx.countWithin(p.Pos, sp.Seeds.Radius, func(q *Plant) bool {
		return q != p && q.Species == p.Species && q.Stage != StageDead && q.Stage >= StageSprout
	})
	if same >= sp.DensityCap {
		return
	}

	for i := 0; i < sp.Seeds.Count; i++ {
		pos := e.scatterPos(p.Pos, sp.Seeds.Radius)
		if !e.placeable(pos) {
			continue
		}
		seed := &Plant{
			ID:        e.env.NewID(),
			Species:   sp.ID,
			Pos:       pos,
			Health:    100,
			Stage:     StageSeed,
			Dormancy:  sp.Seeds.Dormancy,
			SeedTimer: sp.Seeds.Interval,
		}
		if sp.Fruit != nil {
			seed.FruitTimer = sp.Fruit.Interval
		}
		*newPlants = append(*newPlants, seed)
	}
}

// tryFruit drops fruit around a mature plant, with yield scaled by health
// and boosted when a mature same-species neighbor enables cross-pollination.
func (e *Engine) tryFruit(p *Plant, sp *Species, idx *spatialIndex, dt float64, newFruits *[]*Fruit) {
	fr := sp.Fruit
	if fr == nil || p.Growth < fr.MinMaturity || p.Health < e.params.FruitHealth {
		return
	}
	p.FruitTimer -= dt
	if p.FruitTimer > 0 {
		return
	}
	p.FruitTimer = fr.Interval

	yield := float64(fr.Count) * p.Health / 100
	pollinated := idx.anyWithin(p.Pos, e.params.PollinationRadius, func(q *Plant) bool {
		return q != p && q.Species == p.Species && q.Stage == StageMature
	})
	if pollinated {
		yield *= e.params.PollinationBonus
	}

	for i := 0; i < int(yield); i++ {
		pos := e.scatterPos(p.Pos, fr.Radius)
		if !e.placeable(pos) {
			continue
		}
		*newFruits = append(*newFruits, &Fruit{
			ID:        e.env.NewID(),
			Species:   sp.ID,
			Name:      fr.Name,
			Pos:       pos,
			Nutrition: fr.Nutrition,
			MaxAge:    fr.Lifetime,
			PlantID:   p.ID,
		})
	}
}

// decompose returns the plant's matter to a small center-weighted
// neighborhood around it.
func (e *Engine) decompose(p *Plant, sp *Species) {
	cell := e.env.Soil.CellSize()
	amount := 0.25 + p.Size(sp)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			w := 1.0 // diagonal
			switch {
			case dx == 0 && dy == 0:
				w = 4
			case dx == 0 || dy == 0:
				w = 2
			}
			x := p.Pos.X() + float64(dx)*cell
			y := p.Pos.Y() + float64(dy)*cell
			e.env.Soil.AddProperty(x, y, soil.PropOrganics, e.params.DecomposeOrganics*amount*w/16)
			e.env.Soil.AddProperty(x, y, soil.PropMinerals, e.params.DecomposeMinerals*amount*w/16)
		}
	}
}

// canopyPass resets sun exposure to full and re-subtracts the shade cast by
// every grown tree, falling off with distance from the trunk. Runs on the
// canopy interval, not every tick.
func (e *Engine) canopyPass() {
	defer profiling.Track("flora.CanopyPass")()

	g := e.env.Soil
	g.ResetProperty(soil.PropSun, 1)
	for _, p := range e.plants {
		sp, ok := e.registry.Lookup(p.Species)
		if !ok || sp.Class != ClassTree {
			continue
		}
		if p.Stage == StageDead || p.Growth < e.params.CanopyMinGrowth {
			continue
		}
		radius := sp.CanopyRadius * p.Growth
		if radius <= 0 {
			continue
		}
		g.ForEachCellWithin(p.Pos.X(), p.Pos.Y(), radius, func(cx, cy, dist float64) {
			g.AddProperty(cx, cy, soil.PropSun, -e.params.CanopyStrength*(1-dist/radius))
		})
	}
}
