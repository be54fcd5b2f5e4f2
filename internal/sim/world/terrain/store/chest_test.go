package store

import (
	"testing"

	"deepdelve.ai/internal/sim/world/logic/geom"
)

type countingItems struct{ n int }

func (c *countingItems) Generate(at geom.Vec2) Loot {
	c.n++
	return Loot{ID: "pistol", Kind: "gun", Tier: 1}
}

func TestChestOpenAndPickup(t *testing.T) {
	ch := NewChest(geom.V(3, 4))
	if ch.IsOpen() || ch.CanPickup("p1") {
		t.Fatalf("closed chest should offer nothing")
	}
	if _, ok := ch.Pickup("p1"); ok {
		t.Fatalf("pickup from closed chest")
	}

	items := &countingItems{}
	ch.Open(items)
	ch.Open(items)
	if items.n != 1 {
		t.Fatalf("loot rolled %d times, want 1", items.n)
	}
	if !ch.IsOpen() {
		t.Fatalf("chest should be open")
	}
	loot, ok := ch.Pickup("p1")
	if !ok || loot.ID != "pistol" {
		t.Fatalf("first pickup: %+v %v", loot, ok)
	}
	if _, ok := ch.Pickup("p1"); ok {
		t.Fatalf("second pickup by same player")
	}
	if !ch.CanPickup("p2") {
		t.Fatalf("other players can still pick up")
	}
	if ch.Claimed() != 1 {
		t.Fatalf("claimed: got %d want 1", ch.Claimed())
	}
	b := ch.Bounds()
	if !b.Contains(geom.V(3, 4)) || b.Contains(geom.V(3.3, 4)) {
		t.Fatalf("bounds: %+v", b)
	}
}

func TestSeededItemsAreStable(t *testing.T) {
	a := SeededItems{Seed: 9}
	seen := map[string]bool{}
	for x := -20; x < 20; x++ {
		at := geom.V(float64(x)+0.5, 7.25)
		l := a.Generate(at)
		if l != a.Generate(at) {
			t.Fatalf("loot at %v changed between rolls", at)
		}
		if l.ID == "" || l.Kind == "" || l.Tier < 1 || l.Tier > maxLootTier {
			t.Fatalf("bad loot at %v: %+v", at, l)
		}
		seen[l.ID] = true
	}
	if len(seen) < 2 {
		t.Fatalf("expected varied loot, got %v", seen)
	}
}
