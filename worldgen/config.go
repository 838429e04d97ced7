package worldgen

import (
	"errors"
	"fmt"

	"github.com/signalsfoundry/factory-simulator/model"
)

// ErrInvalidConfig is returned for configurations that cannot produce a map.
var ErrInvalidConfig = errors.New("invalid world generation config")

// Config controls terrain and resource generation. Zero values are replaced
// by ApplyDefaults.
type Config struct {
	Width  int
	Height int
	Seed   int64

	// Terrain noise.
	Octaves int32
	Scale   float64 // cells per noise unit

	// Elevation bands over the normalised [0,1] noise value.
	WaterLevel float64 // below: water
	WallLevel  float64 // above: wall
	LavaLevel  float64 // heat above this turns low ground into lava

	SmoothPasses     int
	MinSameNeighbors int

	// Ore budgets as a fraction of the map area.
	Densities map[model.Ore]float64
	// VeinShare is the part of each budget spent on veins; clusters get the rest.
	VeinShare     float64
	MaxVeinLength int
	MaxCluster    int

	// ClearRadius resets a square around the centre to bare dirt. Zero disables it.
	ClearRadius int
}

// DefaultConfig returns the stock generation parameters for a map.
func DefaultConfig(width, height int, seed int64) Config {
	cfg := Config{Width: width, Height: height, Seed: seed}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Octaves <= 0 {
		c.Octaves = 4
	}
	if c.Scale <= 0 {
		c.Scale = 24
	}
	if c.WaterLevel == 0 {
		c.WaterLevel = 0.32
	}
	if c.WallLevel == 0 {
		c.WallLevel = 0.70
	}
	if c.LavaLevel == 0 {
		c.LavaLevel = 0.72
	}
	if c.SmoothPasses == 0 {
		c.SmoothPasses = 2
	}
	if c.MinSameNeighbors == 0 {
		c.MinSameNeighbors = 3
	}
	if c.Densities == nil {
		c.Densities = map[model.Ore]float64{
			model.OreCopper: 0.03,
			model.OreIron:   0.025,
			model.OreCoal:   0.03,
		}
	}
	if c.VeinShare == 0 {
		c.VeinShare = 0.6
	}
	if c.MaxVeinLength <= 0 {
		c.MaxVeinLength = 40
	}
	if c.MaxCluster <= 0 {
		c.MaxCluster = 16
	}
}

// Validate reports configurations that cannot be generated.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.WaterLevel >= c.WallLevel {
		return fmt.Errorf("%w: water level %.2f not below wall level %.2f", ErrInvalidConfig, c.WaterLevel, c.WallLevel)
	}
	if c.VeinShare < 0 || c.VeinShare > 1 {
		return fmt.Errorf("%w: vein share %.2f", ErrInvalidConfig, c.VeinShare)
	}
	for ore, d := range c.Densities {
		if d < 0 || d > 1 {
			return fmt.Errorf("%w: %s density %.3f", ErrInvalidConfig, ore, d)
		}
	}
	return nil
}

// Budget returns the number of tiles ore may occupy.
func (c Config) Budget(ore model.Ore) int {
	return int(float64(c.Width*c.Height) * c.Densities[ore])
}
