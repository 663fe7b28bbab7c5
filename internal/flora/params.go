package flora

// Params are the tuned constants of the lifecycle engine. The original
// values are gameplay-tuning artifacts, not derived from a physical model,
// so everything lives here rather than in hard-coded constants.
type Params struct {
	IndexCellSize float64 // spatial hash bucket size, on the order of the largest query radius

	ComfortFertility float64 // fertility above which health regenerates
	ViableFertility  float64 // fertility below which growth stalls entirely
	RegenRate        float64 // health gained per second per unit of fertility surplus
	DecayRate        float64 // health lost per second per unit of fertility deficit

	DrownDepth float64 // standing water depth a plant tolerates before drowning
	DrownRate  float64 // health lost per second per unit of excess depth

	CrowdLow  int // neighbor count below which growth is unaffected
	CrowdHigh int // neighbor count at which growth stops

	DrainScale float64 // soil draw-down per preference weight x growth delta x size

	LitterHealth   float64 // health required for leaf litter deposit
	LitterOrganics float64 // organics deposited per second by mature plants
	LitterMinerals float64 // trace minerals deposited per second

	SeedHealth        float64 // health required to disperse seeds
	FruitHealth       float64 // health required to set fruit
	MaxSeedWaterDepth float64 // seeds and fruit never land in deeper water
	PollinationRadius float64 // distance to look for a mature same-species neighbor
	PollinationBonus  float64 // fruit yield multiplier when cross-pollinated

	FadeRate          float64 // post-death health decline per second
	DecomposeAfter    float64 // seconds of negative health before removal
	DecomposeOrganics float64 // organics returned to the soil on removal
	DecomposeMinerals float64 // minerals returned to the soil on removal

	CanopyInterval  float64 // seconds between canopy-shade passes
	CanopyMinGrowth float64 // growth a tree needs before it casts shade
	CanopyStrength  float64 // sun exposure removed directly under a full canopy
}

// DefaultParams returns the tuned defaults.
func DefaultParams() Params {
	return Params{
		IndexCellSize: 8,

		ComfortFertility: 0.45,
		ViableFertility:  0.25,
		RegenRate:        2.0,
		DecayRate:        1.2,

		DrownDepth: 0.35,
		DrownRate:  6,

		CrowdLow:  6,
		CrowdHigh: 24,

		DrainScale: 0.25,

		LitterHealth:   60,
		LitterOrganics: 1.5e-7,
		LitterMinerals: 5e-8,

		SeedHealth:        55,
		FruitHealth:       60,
		MaxSeedWaterDepth: 0.25,
		PollinationRadius: 12,
		PollinationBonus:  1.5,

		FadeRate:          2,
		DecomposeAfter:    86400,
		DecomposeOrganics: 0.15,
		DecomposeMinerals: 0.05,

		CanopyInterval:  3600,
		CanopyMinGrowth: 0.5,
		CanopyStrength:  0.5,
	}
}
