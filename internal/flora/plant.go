package flora

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Stage is a plant's discrete growth stage. Stages only ever move forward,
// except the one-way transition to StageDead once health reaches zero.
type Stage uint8

const (
	StageSeed Stage = iota
	StageSprout
	StageGrowing
	StageMature
	StageDead
)

func (s Stage) String() string {
	switch s {
	case StageSeed:
		return "seed"
	case StageSprout:
		return "sprout"
	case StageGrowing:
		return "growing"
	case StageMature:
		return "mature"
	case StageDead:
		return "dead"
	}
	return "unknown"
}

// Plant is one living (or decomposing) plant entity. Mutated every tick by
// the lifecycle engine, removed once decomposition completes.
type Plant struct {
	ID      string
	Species string
	Pos     mgl64.Vec2

	Growth float64 // [0,1]
	Health float64 // up to 100; negative while the dead plant fades out
	Age    float64 // seconds alive
	Stage  Stage

	SeedTimer  float64 // countdown to the next dispersal attempt
	FruitTimer float64 // countdown to the next fruit attempt
	Dormancy   float64 // remaining seed dormancy; 0 once germinated

	deadFor float64 // seconds spent with negative health
}

// Size returns the plant's current world-space radius.
func (p *Plant) Size(sp *Species) float64 {
	return sp.MatureRadius * p.Growth
}

// Alive reports whether the plant still participates in the simulation.
func (p *Plant) Alive() bool { return p.Stage != StageDead }

// stageForGrowth maps growth progress to the discrete stage ladder.
func stageForGrowth(growth float64) Stage {
	switch {
	case growth < 0.05:
		return StageSeed
	case growth < 0.3:
		return StageSprout
	case growth < 1:
		return StageGrowing
	default:
		return StageMature
	}
}

// Fruit is a dropped fruit entity. It ages until eaten (outside this core)
// or until it rots at MaxAge.
type Fruit struct {
	ID        string
	Species   string // producing species ID
	Name      string
	Pos       mgl64.Vec2
	Nutrition float64
	Age       float64
	MaxAge    float64
	PlantID   string // owning parent plant
}

// Rotten reports whether the fruit has exceeded its lifetime.
func (f *Fruit) Rotten() bool { return f.Age >= f.MaxAge }
