// Package worldgen builds the initial tile grid: noise-driven terrain followed
// by ore veins and clusters. Output is fully determined by the Config.
package worldgen

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/aquilax/go-perlin"
	"github.com/zyedidia/generic/mapset"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/signalsfoundry/factory-simulator/grid"
	"github.com/signalsfoundry/factory-simulator/internal/logging"
	"github.com/signalsfoundry/factory-simulator/model"
)

const tracerName = "github.com/signalsfoundry/factory-simulator/worldgen"

// Generator produces grids for one Config.
type Generator struct {
	cfg Config
	log logging.Logger
}

// New returns a generator for cfg with defaults applied.
func New(cfg Config, log logging.Logger) *Generator {
	cfg.ApplyDefaults()
	return &Generator{cfg: cfg, log: logging.OrNoop(log)}
}

// Config returns the effective configuration.
func (g *Generator) Config() Config { return g.cfg }

// Generate runs terrain then resource generation. It only fails on an invalid
// config or a cancelled context.
func (g *Generator) Generate(ctx context.Context) (*grid.Grid, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "worldgen.Generate")
	defer span.End()
	span.SetAttributes(
		attribute.Int("width", g.cfg.Width),
		attribute.Int("height", g.cfg.Height),
		attribute.Int64("seed", g.cfg.Seed),
	)

	if err := g.cfg.Validate(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	out := grid.New(g.cfg.Width, g.cfg.Height)
	g.terrain(out)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.smooth(out)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rng := newRand(g.cfg.Seed)
	for _, ore := range model.AllOres {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		placed := g.resources(out, rng, ore)
		g.log.Debug(ctx, "ore placed",
			logging.String("ore", ore.String()),
			logging.Int("budget", g.cfg.Budget(ore)),
			logging.Int("placed", placed),
		)
	}
	g.clearSpawn(out)

	g.log.Info(ctx, "world generated",
		logging.Int("width", g.cfg.Width),
		logging.Int("height", g.cfg.Height),
		logging.Any("seed", g.cfg.Seed),
		logging.Int("copper", out.CountOre(model.OreCopper)),
		logging.Int("iron", out.CountOre(model.OreIron)),
		logging.Int("coal", out.CountOre(model.OreCoal)),
	)
	return out, nil
}

// Generate builds a grid with the default parameters. Invalid dimensions
// yield an empty grid.
func Generate(width, height int, seed int64) *grid.Grid {
	out, err := New(DefaultConfig(width, height, seed), nil).Generate(context.Background())
	if err != nil {
		return grid.New(0, 0)
	}
	return out
}

// newRand returns the PCG stream used for resource placement.
func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
}

// terrain samples fractal elevation and heat noise for every cell. go-perlin
// divides amplitude by alpha and multiplies frequency by beta per octave.
func (g *Generator) terrain(out *grid.Grid) {
	elevation := perlin.NewPerlin(2, 2, g.cfg.Octaves, g.cfg.Seed)
	heat := perlin.NewPerlin(2, 2, g.cfg.Octaves, g.cfg.Seed+1)

	out.Each(func(t *grid.Tile) {
		fx := float64(t.X) / g.cfg.Scale
		fy := float64(t.Y) / g.cfg.Scale
		e := normalise(elevation.Noise2D(fx, fy))
		switch {
		case e < g.cfg.WaterLevel:
			t.Terrain = model.TerrainWater
		case e > g.cfg.WallLevel:
			t.Terrain = model.TerrainWall
		default:
			t.Terrain = model.TerrainDirt
			if e < (g.cfg.WaterLevel+g.cfg.WallLevel)/2 && normalise(heat.Noise2D(fx, fy)) > g.cfg.LavaLevel {
				t.Terrain = model.TerrainLava
			}
		}
	})
}

// normalise maps raw noise from roughly [-1,1] into [0,1].
func normalise(v float64) float64 {
	return math.Max(0, math.Min(1, (v+1)/2))
}

// smooth reverts isolated obstacle cells to dirt. Each pass reads the
// previous pass's terrain only.
func (g *Generator) smooth(out *grid.Grid) {
	w, h := out.Width(), out.Height()
	next := make([]model.Terrain, w*h)
	for pass := 0; pass < g.cfg.SmoothPasses; pass++ {
		out.Each(func(t *grid.Tile) {
			next[t.X*h+t.Y] = t.Terrain
			if t.Terrain != model.TerrainDirt && out.Neighbors8(t.X, t.Y, t.Terrain) < g.cfg.MinSameNeighbors {
				next[t.X*h+t.Y] = model.TerrainDirt
			}
		})
		out.Each(func(t *grid.Tile) {
			t.Terrain = next[t.X*h+t.Y]
		})
	}
}

// resources spends the ore budget on veins first and clusters second and
// returns how many tiles were written.
func (g *Generator) resources(out *grid.Grid, rng *rand.Rand, ore model.Ore) int {
	budget := g.cfg.Budget(ore)
	if budget <= 0 {
		return 0
	}
	p := &placer{grid: out, ore: ore, budget: budget}

	veinBudget := int(float64(budget) * g.cfg.VeinShare)
	for attempts := 0; p.placed < veinBudget && attempts < 4*budget+16; attempts++ {
		g.vein(p, rng, veinBudget)
	}
	for attempts := 0; p.placed < budget && attempts < 4*budget+16; attempts++ {
		g.cluster(p, rng)
	}
	return p.placed
}

// placer writes one ore kind while keeping to its budget.
type placer struct {
	grid   *grid.Grid
	ore    model.Ore
	budget int
	placed int
}

func (p *placer) put(x, y int) bool {
	if p.placed >= p.budget {
		return false
	}
	t := p.grid.At(x, y)
	if t == nil || !t.Terrain.Buildable() || t.Ore == p.ore {
		return false
	}
	t.Ore = p.ore
	p.placed++
	return true
}

// randomBuildable picks a buildable cell, giving up after a bounded number of
// draws on maps with little open ground.
func randomBuildable(out *grid.Grid, rng *rand.Rand) (model.Point, bool) {
	for i := 0; i < 64; i++ {
		x, y := rng.IntN(out.Width()), rng.IntN(out.Height())
		if out.At(x, y).Terrain.Buildable() {
			return model.Point{X: x, Y: y}, true
		}
	}
	return model.Point{}, false
}

// vein walks a brush of width 1..3 along a heading with momentum. The heading
// jitters every step and occasionally turns sharply.
func (g *Generator) vein(p *placer, rng *rand.Rand, limit int) {
	start, ok := randomBuildable(p.grid, rng)
	if !ok {
		return
	}
	x, y := float64(start.X)+0.5, float64(start.Y)+0.5
	angle := rng.Float64() * 2 * math.Pi
	width := 1 + rng.IntN(3)

	for step := 0; step < g.cfg.MaxVeinLength && p.placed < limit; step++ {
		cx, cy := int(math.Floor(x)), int(math.Floor(y))
		if !p.grid.InBounds(cx, cy) {
			return
		}
		lo := -(width - 1) / 2
		for dx := lo; dx < lo+width; dx++ {
			for dy := lo; dy < lo+width; dy++ {
				if p.placed >= limit {
					return
				}
				p.put(cx+dx, cy+dy)
			}
		}

		angle += (rng.Float64() - 0.5) * 0.6
		if rng.Float64() < 0.05 {
			if rng.IntN(2) == 0 {
				angle += math.Pi / 2
			} else {
				angle -= math.Pi / 2
			}
		}
		if rng.Float64() < 0.1 {
			width = min(3, max(1, width+rng.IntN(3)-1))
		}
		x += math.Cos(angle)
		y += math.Sin(angle)
	}
}

// cluster grows a blob from a random frontier until its size is reached or
// the frontier runs dry. Only buildable cells extend the frontier.
func (g *Generator) cluster(p *placer, rng *rand.Rand) {
	seed, ok := randomBuildable(p.grid, rng)
	if !ok {
		return
	}
	size := min(p.budget-p.placed, 4+rng.IntN(g.cfg.MaxCluster))
	visited := mapset.New[model.Point]()
	visited.Put(seed)
	frontier := []model.Point{seed}
	grown := 0

	for grown < size && len(frontier) > 0 {
		i := rng.IntN(len(frontier))
		cur := frontier[i]
		frontier[i] = frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]

		t := p.grid.At(cur.X, cur.Y)
		if !t.Terrain.Buildable() {
			continue
		}
		if p.put(cur.X, cur.Y) {
			grown++
		}
		for _, d := range []model.Direction{model.North, model.East, model.South, model.West} {
			dx, dy := d.Delta()
			n := model.Point{X: cur.X + dx, Y: cur.Y + dy}
			if p.grid.InBounds(n.X, n.Y) && !visited.Has(n) {
				visited.Put(n)
				frontier = append(frontier, n)
			}
		}
	}
}

// clearSpawn resets the square around the centre to bare dirt.
func (g *Generator) clearSpawn(out *grid.Grid) {
	r := g.cfg.ClearRadius
	if r <= 0 {
		return
	}
	cx, cy := out.Width()/2, out.Height()/2
	for x := cx - r; x <= cx+r; x++ {
		for y := cy - r; y <= cy+r; y++ {
			if t := out.At(x, y); t != nil {
				t.Terrain = model.TerrainDirt
				t.Ore = model.OreNone
			}
		}
	}
}
