package gen

// Params are the generation constants. Changing any of them changes every
// chunk, so a world is reproducible from (seed, Params).
type Params struct {
	MinRoomSize     int
	AvgRoomSize     float64
	MaxRoomSize     int
	RoomGap         int
	MaxRoomAttempts int

	StartingRoomWidth  int
	StartingRoomHeight int
	StartingRoomShift  int

	ExtraEdgeChance float64

	TunnelCost        int
	AwkwardMultiplier int
	TilesPerEntry     int

	SideLengthPerSpawner int
	DecorationChance     float64
	ChestDistance        float64
	FeatureAttempts      int
	FeatureSpacing       float64
	FeatureInset         float64

	BarrierChance float64
}

func DefaultParams() Params {
	return Params{
		MinRoomSize:     3,
		AvgRoomSize:     4.25,
		MaxRoomSize:     12,
		RoomGap:         1,
		MaxRoomAttempts: 2500,

		StartingRoomWidth:  7,
		StartingRoomHeight: 5,
		StartingRoomShift:  2,

		ExtraEdgeChance: 0.33,

		TunnelCost:        10,
		AwkwardMultiplier: 10,
		TilesPerEntry:     8,

		SideLengthPerSpawner: 4,
		DecorationChance:     0.033,
		ChestDistance:        10,
		FeatureAttempts:      10,
		FeatureSpacing:       0.75,
		FeatureInset:         0.75,

		BarrierChance: 0.5,
	}
}

// withDefaults fills zero fields so a partially specified tuning file still
// yields a usable parameter set.
func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.MinRoomSize <= 0 {
		p.MinRoomSize = d.MinRoomSize
	}
	if p.MaxRoomSize < p.MinRoomSize {
		p.MaxRoomSize = d.MaxRoomSize
	}
	if p.AvgRoomSize < float64(p.MinRoomSize) || p.AvgRoomSize > float64(p.MaxRoomSize) {
		p.AvgRoomSize = (float64(p.MinRoomSize) + float64(p.MaxRoomSize)) / 2
	}
	if p.RoomGap <= 0 {
		p.RoomGap = d.RoomGap
	}
	if p.MaxRoomAttempts <= 0 {
		p.MaxRoomAttempts = d.MaxRoomAttempts
	}
	if p.StartingRoomWidth <= 0 || p.StartingRoomHeight <= 0 {
		p.StartingRoomWidth = d.StartingRoomWidth
		p.StartingRoomHeight = d.StartingRoomHeight
	}
	if p.TunnelCost <= 1 {
		p.TunnelCost = d.TunnelCost
	}
	if p.AwkwardMultiplier <= 0 {
		p.AwkwardMultiplier = d.AwkwardMultiplier
	}
	if p.TilesPerEntry < 3 {
		p.TilesPerEntry = d.TilesPerEntry
	}
	if p.SideLengthPerSpawner <= 0 {
		p.SideLengthPerSpawner = d.SideLengthPerSpawner
	}
	if p.FeatureAttempts <= 0 {
		p.FeatureAttempts = d.FeatureAttempts
	}
	if p.FeatureSpacing <= 0 {
		p.FeatureSpacing = d.FeatureSpacing
	}
	if p.FeatureInset <= 0 {
		p.FeatureInset = d.FeatureInset
	}
	return p
}
