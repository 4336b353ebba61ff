package entity

import (
	"testing"

	"chosenoffset.com/battlefx/shape"
)

func TestHitRadiusTable(t *testing.T) {
	tests := []struct {
		size SizeCategory
		want float64
	}{
		{SizeTiny, 12.5},
		{SizeSmall, 25},
		{SizeMedium, 25},
		{SizeLarge, 50},
		{SizeHuge, 75},
		{SizeGargantuan, 100},
		{SizeCategory("colossal"), 25},
	}

	for _, tt := range tests {
		if got := tt.size.HitRadius(); got != tt.want {
			t.Errorf("HitRadius(%s) = %v, want %v", tt.size, got, tt.want)
		}
	}
}

func TestParseSize(t *testing.T) {
	got, err := ParseSize(" Large ")
	if err != nil {
		t.Fatalf("ParseSize failed: %v", err)
	}
	if got != SizeLarge {
		t.Errorf("Expected large, got %s", got)
	}

	got, err = ParseSize("")
	if err != nil || got != SizeMedium {
		t.Errorf("Expected empty size to default to medium, got %s (%v)", got, err)
	}

	if _, err := ParseSize("colossal"); err == nil {
		t.Error("Expected error for unknown size")
	}
}

func TestHostility(t *testing.T) {
	hero := Actor{ID: "hero", Faction: FactionPlayer}
	goblin := Actor{ID: "goblin", Faction: FactionEnemy}
	merchant := Actor{ID: "merchant", Faction: FactionNeutral}

	if !hero.IsHostileTo(goblin) {
		t.Error("Expected player and enemy to be hostile")
	}
	if hero.IsHostileTo(merchant) || merchant.IsHostileTo(goblin) {
		t.Error("Expected neutral actors never to be hostile")
	}
	if hero.IsHostileTo(hero) {
		t.Error("Expected an actor not to be hostile to its own faction")
	}
}

func TestDistanceTo(t *testing.T) {
	a := Actor{ID: "a", Position: shape.Point{X: 100, Y: 100}}
	b := Actor{ID: "b", Position: shape.Point{X: 400, Y: 500}}

	if d := a.DistanceTo(b); d != 500 {
		t.Errorf("Expected 500, got %v", d)
	}
	if a.DistanceTo(b) != b.DistanceTo(a) {
		t.Error("Expected distance to be symmetric")
	}
	if d := a.DistanceTo(a); d != 0 {
		t.Errorf("Expected zero distance to self, got %v", d)
	}
}

func TestFind(t *testing.T) {
	pool := []Actor{
		{ID: "a", Position: shape.Point{X: 1}},
		{ID: "b", Position: shape.Point{X: 2}},
	}

	got, ok := Find(pool, "b")
	if !ok || got.Position.X != 2 {
		t.Errorf("Expected to find actor b, got %+v (%v)", got, ok)
	}
	if _, ok := Find(pool, "c"); ok {
		t.Error("Expected missing actor not to be found")
	}
}

func TestRosterReturnsCopies(t *testing.T) {
	r := NewRoster(Actor{ID: "a"}, Actor{ID: "b"})
	r.Add(Actor{ID: "a", Name: "Alpha"})

	got := r.Actors()
	if len(got) != 2 || got[0].Name != "Alpha" {
		t.Fatalf("Expected replaced actor in place, got %+v", got)
	}
	got[0].Name = "changed"
	if r.Actors()[0].Name != "Alpha" {
		t.Error("Expected roster to be unaffected by edits to the snapshot")
	}

	if !r.Move("b", shape.Point{X: 5}) || r.Actors()[1].Position.X != 5 {
		t.Error("Expected b to move")
	}
	if r.Move("zz", shape.Point{}) {
		t.Error("Expected unknown actor not to move")
	}
}
