package store

import (
	"github.com/zyedidia/generic/mapset"

	"deepdelve.ai/internal/sim/world/logic/geom"
	"deepdelve.ai/internal/sim/world/logic/mathx"
)

// Loot is what an opened chest offers. Its contents come from the item
// system; the world only stores it.
type Loot struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
	Tier int    `json:"tier"`
}

// ItemGenerator creates loot for a chest being opened.
type ItemGenerator interface {
	Generate(at geom.Vec2) Loot
}

var lootTable = []Loot{
	{ID: "pistol", Kind: "gun"},
	{ID: "shotgun", Kind: "gun"},
	{ID: "rifle", Kind: "gun"},
	{ID: "medkit", Kind: "consumable"},
	{ID: "ammo_box", Kind: "ammo"},
}

const maxLootTier = 3

// SeededItems rolls loot from the world seed and the chest's tile, so a
// chest holds the same item every time a world is replayed.
type SeededItems struct{ Seed uint32 }

func (s SeededItems) Generate(at geom.Vec2) Loot {
	c := at.Coord()
	l := lootTable[mathx.TileVariant(s.Seed, c.X, c.Y, len(lootTable))]
	l.Tier = 1 + mathx.TileVariant(s.Seed^0x5bd1e995, c.X, c.Y, maxLootTier)
	return l
}

type Chest struct {
	position geom.Vec2
	loot     *Loot
	claimed  mapset.Set[string]
}

func NewChest(position geom.Vec2) *Chest {
	return &Chest{position: position, claimed: mapset.New[string]()}
}

func (c *Chest) Position() geom.Vec2 { return c.position }

func (c *Chest) Bounds() geom.Rect { return geom.Focused(c.position, geom.V(0.5, 0.5)) }

func (c *Chest) IsOpen() bool { return c.loot != nil }

// Loot returns the chest contents once opened.
func (c *Chest) Loot() (Loot, bool) {
	if c.loot == nil {
		return Loot{}, false
	}
	return *c.loot, true
}

// Open rolls the loot on first call; later calls do nothing.
func (c *Chest) Open(gen ItemGenerator) {
	if c.loot != nil {
		return
	}
	l := gen.Generate(c.position)
	c.loot = &l
}

func (c *Chest) CanPickup(player string) bool {
	return c.loot != nil && !c.claimed.Has(player)
}

// Pickup hands the loot to player once per player.
func (c *Chest) Pickup(player string) (Loot, bool) {
	if !c.CanPickup(player) {
		return Loot{}, false
	}
	c.claimed.Put(player)
	return *c.loot, true
}

// Claimed reports how many players took the loot.
func (c *Chest) Claimed() int { return c.claimed.Size() }
