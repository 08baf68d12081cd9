package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning is the read-only configuration surface of the generator. Everything
// here is data the sim consumes; nothing is written back.
type Tuning struct {
	TickRateHz int   `yaml:"tick_rate_hz"`
	Seed       int64 `yaml:"seed"`

	TileExtent         float64  `yaml:"tile_extent"`
	GenerationDistance float64  `yaml:"generation_distance"`
	HideDistance       float64  `yaml:"hide_distance"`
	TileVariants       []string `yaml:"tile_variants"`

	ObjectsPerTile      int      `yaml:"objects_per_tile"`
	SegmentSize         float64  `yaml:"segment_size"`
	SegmentGap          float64  `yaml:"segment_gap"`
	HorizontalOffsetPct float64  `yaml:"horizontal_offset_pct"`
	VerticalOffsetPct   float64  `yaml:"vertical_offset_pct"`
	Items               []string `yaml:"items"`
}

func Defaults() Tuning {
	return Tuning{
		TickRateHz:          10,
		Seed:                1337,
		TileExtent:          10,
		GenerationDistance:  2,
		HideDistance:        40,
		TileVariants:        []string{"ground_plain", "ground_cracked", "ground_mossy"},
		ObjectsPerTile:      6,
		SegmentSize:         1.5,
		SegmentGap:          0.25,
		HorizontalOffsetPct: 80,
		VerticalOffsetPct:   80,
		Items:               []string{"rock_small", "rock_large", "stump", "shrub"},
	}
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

// Validate enforces the configuration contracts the algorithms assume instead
// of checking per tick. Generation distance must stay below the tile extent
// or an axis could need more than one generation in a single tick.
func (t Tuning) Validate() error {
	if t.TickRateHz <= 0 {
		return fmt.Errorf("tick_rate_hz must be positive, got %d", t.TickRateHz)
	}
	if t.TileExtent <= 0 {
		return fmt.Errorf("tile_extent must be positive, got %v", t.TileExtent)
	}
	if t.GenerationDistance <= 0 {
		return fmt.Errorf("generation_distance must be positive, got %v", t.GenerationDistance)
	}
	if t.GenerationDistance >= t.TileExtent {
		return fmt.Errorf("generation_distance %v must be below tile_extent %v", t.GenerationDistance, t.TileExtent)
	}
	if len(t.TileVariants) == 0 {
		return fmt.Errorf("tile_variants must not be empty")
	}
	if len(t.Items) == 0 {
		return fmt.Errorf("items must not be empty")
	}
	if t.SegmentSize <= 0 {
		return fmt.Errorf("segment_size must be positive, got %v", t.SegmentSize)
	}
	if t.SegmentGap < 0 {
		return fmt.Errorf("segment_gap must not be negative, got %v", t.SegmentGap)
	}
	if t.HorizontalOffsetPct <= 0 || t.HorizontalOffsetPct > 100 {
		return fmt.Errorf("horizontal_offset_pct must be in (0,100], got %v", t.HorizontalOffsetPct)
	}
	if t.VerticalOffsetPct <= 0 || t.VerticalOffsetPct > 100 {
		return fmt.Errorf("vertical_offset_pct must be in (0,100], got %v", t.VerticalOffsetPct)
	}
	if t.ObjectsPerTile < 0 {
		return fmt.Errorf("objects_per_tile must not be negative, got %d", t.ObjectsPerTile)
	}
	return nil
}
