package tuning

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"deepdelve.ai/internal/sim/world/terrain/gen"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`
	Seed            uint32 `yaml:"seed"`

	WorldGen WorldGen `yaml:"worldgen"`
	Server   Server   `yaml:"server"`
}

type WorldGen struct {
	MinRoomSize     int     `yaml:"min_room_size"`
	AvgRoomSize     float64 `yaml:"avg_room_size"`
	MaxRoomSize     int     `yaml:"max_room_size"`
	RoomGap         int     `yaml:"room_gap"`
	MaxRoomAttempts int     `yaml:"max_room_attempts"`

	StartingRoomWidth  int `yaml:"starting_room_width"`
	StartingRoomHeight int `yaml:"starting_room_height"`
	StartingRoomShift  int `yaml:"starting_room_shift"`

	ExtraEdgeChance   float64 `yaml:"extra_edge_chance"`
	TunnelCost        int     `yaml:"tunnel_cost"`
	AwkwardMultiplier int     `yaml:"awkward_multiplier"`
	TilesPerEntry     int     `yaml:"tiles_per_entry"`

	SideLengthPerSpawner int     `yaml:"side_length_per_spawner"`
	DecorationChance     float64 `yaml:"decoration_chance"`
	ChestDistance        float64 `yaml:"chest_distance"`
	FeatureAttempts      int     `yaml:"feature_attempts"`
	FeatureSpacing       float64 `yaml:"feature_spacing"`
	FeatureInset         float64 `yaml:"feature_inset"`

	BarrierChance float64 `yaml:"barrier_chance"`
}

type Server struct {
	MaxPathfindThreshold float64 `yaml:"max_pathfind_threshold"`
	PathfindNodeLimit    int     `yaml:"pathfind_node_limit"`
	PrefetchRadiusChunks int     `yaml:"prefetch_radius_chunks"`
	WriteTimeoutMs       int     `yaml:"write_timeout_ms"`
	QueryRateWindowMs    int     `yaml:"query_rate_window_ms"`
	QueryRateMax         int     `yaml:"query_rate_max"`
}

func Defaults() Tuning {
	p := gen.DefaultParams()
	return Tuning{
		ProtocolVersion: "1.0",
		WorldGen: WorldGen{
			MinRoomSize:          p.MinRoomSize,
			AvgRoomSize:          p.AvgRoomSize,
			MaxRoomSize:          p.MaxRoomSize,
			RoomGap:              p.RoomGap,
			MaxRoomAttempts:      p.MaxRoomAttempts,
			StartingRoomWidth:    p.StartingRoomWidth,
			StartingRoomHeight:   p.StartingRoomHeight,
			StartingRoomShift:    p.StartingRoomShift,
			ExtraEdgeChance:      p.ExtraEdgeChance,
			TunnelCost:           p.TunnelCost,
			AwkwardMultiplier:    p.AwkwardMultiplier,
			TilesPerEntry:        p.TilesPerEntry,
			SideLengthPerSpawner: p.SideLengthPerSpawner,
			DecorationChance:     p.DecorationChance,
			ChestDistance:        p.ChestDistance,
			FeatureAttempts:      p.FeatureAttempts,
			FeatureSpacing:       p.FeatureSpacing,
			FeatureInset:         p.FeatureInset,
			BarrierChance:        p.BarrierChance,
		},
		Server: Server{
			MaxPathfindThreshold: 400,
			PathfindNodeLimit:    200000,
			PrefetchRadiusChunks: 1,
			WriteTimeoutMs:       2000,
			QueryRateWindowMs:    1000,
			QueryRateMax:         200,
		},
	}
}

// Load reads a tuning file over the defaults; keys absent from the file keep
// their default values.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

// LoadOrDefault is Load that tolerates a missing file. The bool reports
// whether the file existed.
func LoadOrDefault(path string) (Tuning, bool, error) {
	if path == "" {
		return Defaults(), false, nil
	}
	t, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Defaults(), false, nil
	}
	if err != nil {
		return t, true, err
	}
	return t, true, nil
}

func (w WorldGen) Params() gen.Params {
	return gen.Params{
		MinRoomSize:          w.MinRoomSize,
		AvgRoomSize:          w.AvgRoomSize,
		MaxRoomSize:          w.MaxRoomSize,
		RoomGap:              w.RoomGap,
		MaxRoomAttempts:      w.MaxRoomAttempts,
		StartingRoomWidth:    w.StartingRoomWidth,
		StartingRoomHeight:   w.StartingRoomHeight,
		StartingRoomShift:    w.StartingRoomShift,
		ExtraEdgeChance:      w.ExtraEdgeChance,
		TunnelCost:           w.TunnelCost,
		AwkwardMultiplier:    w.AwkwardMultiplier,
		TilesPerEntry:        w.TilesPerEntry,
		SideLengthPerSpawner: w.SideLengthPerSpawner,
		DecorationChance:     w.DecorationChance,
		ChestDistance:        w.ChestDistance,
		FeatureAttempts:      w.FeatureAttempts,
		FeatureSpacing:       w.FeatureSpacing,
		FeatureInset:         w.FeatureInset,
		BarrierChance:        w.BarrierChance,
	}
}
