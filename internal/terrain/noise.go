package terrain

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// layeredNoise sums three independent simplex fields at decreasing wavelength
// and decreasing amplitude. Weights sum to 1 so the result stays in [-1, 1].
type layeredNoise struct {
	fields  [3]opensimplex.Noise
	freqs   [3]float64
	weights [3]float64
}

// newLayeredNoise seeds one field per layer. Seeds are offset the same way
// for every layer so the same master seed always yields the same fields.
func newLayeredNoise(seed int64, baseFrequency float64) *layeredNoise {
	return &layeredNoise{
		fields: [3]opensimplex.Noise{
			opensimplex.New(seed),
			opensimplex.New(seed + 1),
			opensimplex.New(seed + 2),
		},
		freqs:   [3]float64{baseFrequency, baseFrequency * 2, baseFrequency * 4},
		weights: [3]float64{0.6, 0.3, 0.1},
	}
}

// sample returns the combined signed noise value at a world coordinate.
func (l *layeredNoise) sample(x, y float64) float64 {
	sum := 0.0
	for i := range l.fields {
		sum += l.fields[i].Eval2(x*l.freqs[i], y*l.freqs[i]) * l.weights[i]
	}
	return sum
}
