package main

import (
	"flag"
	"log"
	"math/rand"

	"github.com/fogleman/gg"

	"wildsim/internal/config"
	"wildsim/internal/flora"
	"wildsim/internal/profiling"
	"wildsim/internal/world"
)

func main() {
	var (
		seed    = flag.Int64("seed", 1, "world seed")
		width   = flag.Float64("width", 1024, "world width in world units")
		height  = flag.Float64("height", 1024, "world height in world units")
		cell    = flag.Float64("cell", 4, "grid cell size in world units")
		rain    = flag.Float64("rain", 0.2, "steady rain intensity in [0,1]")
		temp    = flag.Float64("temp", 18, "air temperature in degrees C")
		noLakes = flag.Bool("no-lakes", false, "disable basin filling")
		days    = flag.Float64("days", 30, "simulated days to run before rendering")
		tick    = flag.Float64("tick", 600, "simulated seconds per tick")
		scale   = flag.Int("scale", 2, "output pixels per grid cell")
		topN    = flag.Int("profile", 0, "log top-N per-tick timings (0 disables)")
		out     = flag.String("out", "world.png", "output PNG path")
	)
	flag.Parse()

	cfg := config.DefaultWorldGen()
	cfg.Seed = *seed
	cfg.WorldWidth = *width
	cfg.WorldHeight = *height
	cfg.CellSize = *cell
	cfg.RainIntensity = *rain
	cfg.Temperature = *temp
	cfg.LakesEnabled = !*noLakes

	sim := config.DefaultSimulation()
	sim.TickSeconds = *tick
	sim.SimulateDays = *days
	sim.ProfileTopN = *topN
	sim.Normalize()

	w := world.New(cfg, nil, rand.New(rand.NewSource(cfg.Seed)))
	log.Printf("generated %dx%d grid, %d basins, %d plants",
		w.Terrain().Cols(), w.Terrain().Rows(),
		len(w.Basins().Basins()), len(w.Flora().Plants()))

	ticks := int(sim.SimulateDays * 86400 / sim.TickSeconds)
	for i := 0; i < ticks; i++ {
		profiling.ResetTick()
		w.Advance(sim.TickSeconds)
		if sim.ProfileTopN > 0 && (i+1)%100 == 0 {
			log.Printf("tick %d/%d: %s", i+1, ticks, profiling.TopN(sim.ProfileTopN))
		}
	}
	log.Printf("simulated %.1f days, %d plants, %d fruit",
		sim.SimulateDays, len(w.Flora().Plants()), len(w.Flora().Fruits()))

	if *scale < 1 {
		*scale = 1
	}
	dc := render(w, *scale)
	if err := dc.SavePNG(*out); err != nil {
		log.Fatalf("save %s: %v", *out, err)
	}
	log.Printf("wrote %s", *out)
}

// render paints the world top-down: terrain shaded by elevation, streams and
// lakes in blue, plants as dots colored by class.
func render(w *world.World, scale int) *gg.Context {
	f := w.Terrain()
	cols, rows := f.Cols(), f.Rows()
	dc := gg.NewContext(cols*scale, rows*scale)

	span := f.MaxHeight() - f.MinHeight()
	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < cols; cx++ {
			i := cy*cols + cx
			n := 0.0
			if span > 0 {
				n = (f.HeightAtNode(cx, cy) - f.MinHeight()) / span
			}

			r := 0.28 + 0.45*n
			g := 0.42 + 0.38*n
			b := 0.24 + 0.30*n

			// Channels where upstream flow concentrates.
			if acc := w.Flow().AccumulationAtIndex(i); acc > 0.5 {
				t := (acc - 0.5) * 2
				r -= 0.2 * t
				g -= 0.1 * t
				b += 0.35 * t
			}

			// Standing water wins over everything, darker when deeper.
			x, y := w.Soil().CellCenter(i)
			if depth := w.WaterDepthAt(x, y); depth > 0.01 {
				shade := depth / 4
				if shade > 0.6 {
					shade = 0.6
				}
				r, g, b = 0.15, 0.35-0.2*shade, 0.75-0.4*shade
			}

			dc.SetRGB(r, g, b)
			dc.DrawRectangle(float64(cx*scale), float64(cy*scale), float64(scale), float64(scale))
			dc.Fill()
		}
	}

	ox, oy := f.Origin()
	for _, p := range w.Flora().Plants() {
		sp, ok := w.Registry().Lookup(p.Species)
		if !ok || p.Stage == flora.StageDead {
			continue
		}
		switch sp.Class {
		case flora.ClassTree:
			dc.SetRGB(0.05, 0.3, 0.05)
		case flora.ClassShrub:
			dc.SetRGB(0.25, 0.5, 0.1)
		default:
			dc.SetRGB(0.55, 0.7, 0.2)
		}
		px := (p.Pos.X() - ox) / f.CellSize() * float64(scale)
		py := (p.Pos.Y() - oy) / f.CellSize() * float64(scale)
		radius := 0.5 + p.Growth*float64(scale)
		dc.DrawCircle(px, py, radius)
		dc.Fill()
	}

	return dc
}
