package flora

import (
	"fmt"

	"github.com/agnivade/levenshtein"

	"wildsim/internal/soil"
)

// Class groups species by growth habit. Only trees cast canopy shade.
type Class uint8

const (
	ClassGrass Class = iota
	ClassShrub
	ClassTree
)

// Preference describes how a species reacts to one soil property.
type Preference struct {
	Ideal     float64 // preferred value in [0,1]
	Tolerance float64 // acceptable distance from Ideal before the match hits 0
	Weight    float64 // importance of this property in the fertility score
}

// SeedProfile controls seed dispersal and germination.
type SeedProfile struct {
	MinMaturity float64 // growth required before the plant disperses
	Count       int     // seeds per dispersal event
	Interval    float64 // seconds between dispersal events
	Radius      float64 // maximum scatter distance
	Dormancy    float64 // seconds a seed waits for fertile ground before dying
	Germination float64 // fertility score required to germinate
}

// FruitProfile controls fruit production. Species without fruit leave it nil.
type FruitProfile struct {
	Name        string
	Nutrition   float64
	MinMaturity float64
	Count       int
	Interval    float64
	Radius      float64 // drop distance from the trunk
	Lifetime    float64 // seconds before an uneaten fruit rots
}

// Species is a static plant definition. Registered once, read-only afterward.
type Species struct {
	ID   string
	Name string

	Class          Class
	MatureRadius   float64 // world-space radius at full growth
	CanopyRadius   float64 // shade radius at full growth, trees only
	GrowthDuration float64 // seconds from germination to full growth under ideal soil
	Resilience     float64 // [0,1]; scales down health loss in poor soil

	Preferences  map[soil.Property]Preference
	TypeAffinity map[soil.Type]float64 // fertility multiplier per soil type, default 1

	CrowdRadius float64 // neighborhood radius for the crowding penalty
	DensityCap  int     // same-species neighbors that block further dispersal

	Seeds SeedProfile
	Fruit *FruitProfile
}

// Registry holds the known species for one simulation session. It is
// constructed explicitly and passed to the engine; there is no package-level
// registry, so concurrent sessions cannot pollute each other.
type Registry struct {
	species map[string]*Species
	order   []string
}

// NewRegistry returns an empty species registry.
func NewRegistry() *Registry {
	return &Registry{species: make(map[string]*Species)}
}

// Register adds a species definition, filling in defaults for optional
// fields. Re-registering an ID is an error.
func (r *Registry) Register(def *Species) error {
	if def.ID == "" {
		return fmt.Errorf("species must have an id")
	}
	if _, exists := r.species[def.ID]; exists {
		return fmt.Errorf("species %q already registered", def.ID)
	}
	if def.Name == "" {
		def.Name = def.ID
	}
	if def.CrowdRadius <= 0 {
		def.CrowdRadius = def.MatureRadius * 4
	}
	if def.DensityCap <= 0 {
		def.DensityCap = 8
	}
	if def.GrowthDuration <= 0 {
		return fmt.Errorf("species %q: growth duration must be positive", def.ID)
	}
	r.species[def.ID] = def
	r.order = append(r.order, def.ID)
	return nil
}

// Lookup returns a species by ID. The boolean form is the cheap path used
// inside the tick loop.
func (r *Registry) Lookup(id string) (*Species, bool) {
	sp, ok := r.species[id]
	return sp, ok
}

// Get returns a species by ID or an error naming the closest registered ID,
// for callers surfacing typos to a user or log.
func (r *Registry) Get(id string) (*Species, error) {
	if sp, ok := r.species[id]; ok {
		return sp, nil
	}
	best, bestDist := "", -1
	for _, known := range r.order {
		d := levenshtein.ComputeDistance(id, known)
		if bestDist == -1 || d < bestDist {
			best, bestDist = known, d
		}
	}
	if best != "" && bestDist <= len(best)/2+1 {
		return nil, fmt.Errorf("unknown species %q (closest match: %q)", id, best)
	}
	return nil, fmt.Errorf("unknown species %q", id)
}

// All returns every registered species in registration order.
func (r *Registry) All() []*Species {
	out := make([]*Species, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.species[id])
	}
	return out
}

// DefaultRegistry registers the built-in species set.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}

	const day = 86400.0

	must(r.Register(&Species{
		ID:             "oak",
		Name:           "Oak",
		Class:          ClassTree,
		MatureRadius:   2.2,
		CanopyRadius:   7,
		GrowthDuration: 60 * day,
		Resilience:     0.55,
		Preferences: map[soil.Property]Preference{
			soil.PropHumidity: {Ideal: 0.55, Tolerance: 0.35, Weight: 1.0},
			soil.PropMinerals: {Ideal: 0.5, Tolerance: 0.4, Weight: 0.8},
			soil.PropOrganics: {Ideal: 0.55, Tolerance: 0.4, Weight: 0.9},
			soil.PropSun:      {Ideal: 0.75, Tolerance: 0.45, Weight: 0.7},
		},
		TypeAffinity: map[soil.Type]float64{
			soil.TypeLoam: 1.1,
			soil.TypeSand: 0.7,
			soil.TypeRock: 0.4,
		},
		CrowdRadius: 9,
		DensityCap:  5,
		Seeds: SeedProfile{
			MinMaturity: 0.75,
			Count:       3,
			Interval:    6 * day,
			Radius:      14,
			Dormancy:    20 * day,
			Germination: 0.35,
		},
		Fruit: &FruitProfile{
			Name:        "acorn",
			Nutrition:   0.15,
			MinMaturity: 0.85,
			Count:       4,
			Interval:    8 * day,
			Radius:      5,
			Lifetime:    12 * day,
		},
	}))

	must(r.Register(&Species{
		ID:             "birch",
		Name:           "Birch",
		Class:          ClassTree,
		MatureRadius:   1.6,
		CanopyRadius:   5,
		GrowthDuration: 40 * day,
		Resilience:     0.4,
		Preferences: map[soil.Property]Preference{
			soil.PropHumidity: {Ideal: 0.6, Tolerance: 0.3, Weight: 1.0},
			soil.PropMinerals: {Ideal: 0.4, Tolerance: 0.35, Weight: 0.6},
			soil.PropOrganics: {Ideal: 0.45, Tolerance: 0.35, Weight: 0.8},
			soil.PropSun:      {Ideal: 0.85, Tolerance: 0.35, Weight: 1.0},
		},
		TypeAffinity: map[soil.Type]float64{
			soil.TypeSilt: 1.1,
			soil.TypePeat: 0.9,
			soil.TypeRock: 0.5,
		},
		CrowdRadius: 7,
		DensityCap:  6,
		Seeds: SeedProfile{
			MinMaturity: 0.65,
			Count:       5,
			Interval:    4 * day,
			Radius:      18,
			Dormancy:    12 * day,
			Germination: 0.4,
		},
	}))

	must(r.Register(&Species{
		ID:             "hazel",
		Name:           "Hazel",
		Class:          ClassShrub,
		MatureRadius:   1.1,
		GrowthDuration: 18 * day,
		Resilience:     0.65,
		Preferences: map[soil.Property]Preference{
			soil.PropHumidity: {Ideal: 0.5, Tolerance: 0.4, Weight: 0.9},
			soil.PropMinerals: {Ideal: 0.45, Tolerance: 0.4, Weight: 0.7},
			soil.PropOrganics: {Ideal: 0.5, Tolerance: 0.45, Weight: 0.8},
			soil.PropSun:      {Ideal: 0.55, Tolerance: 0.5, Weight: 0.6},
		},
		CrowdRadius: 5,
		DensityCap:  9,
		Seeds: SeedProfile{
			MinMaturity: 0.6,
			Count:       4,
			Interval:    3 * day,
			Radius:      8,
			Dormancy:    8 * day,
			Germination: 0.3,
		},
		Fruit: &FruitProfile{
			Name:        "hazelnut",
			Nutrition:   0.2,
			MinMaturity: 0.8,
			Count:       6,
			Interval:    5 * day,
			Radius:      2.5,
			Lifetime:    10 * day,
		},
	}))

	must(r.Register(&Species{
		ID:             "meadowgrass",
		Name:           "Meadow Grass",
		Class:          ClassGrass,
		MatureRadius:   0.4,
		GrowthDuration: 5 * day,
		Resilience:     0.8,
		Preferences: map[soil.Property]Preference{
			soil.PropHumidity: {Ideal: 0.45, Tolerance: 0.45, Weight: 0.9},
			soil.PropMinerals: {Ideal: 0.4, Tolerance: 0.5, Weight: 0.5},
			soil.PropOrganics: {Ideal: 0.4, Tolerance: 0.5, Weight: 0.6},
			soil.PropSun:      {Ideal: 0.9, Tolerance: 0.4, Weight: 1.0},
		},
		CrowdRadius: 2,
		DensityCap:  16,
		Seeds: SeedProfile{
			MinMaturity: 0.5,
			Count:       8,
			Interval:    1.5 * day,
			Radius:      4,
			Dormancy:    5 * day,
			Germination: 0.25,
		},
	}))

	return r
}
