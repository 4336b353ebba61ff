package entity

import (
	"os"
	"path/filepath"
	"testing"

	"chosenoffset.com/battlefx/shape"
)

func TestLoadLibraryYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "creatures.yaml")
	data := `
name: goblin warband
creatures:
  - id: goblin
    name: Goblin
    size: small
    tags: [humanoid]
  - id: ogre
    size: Large
    faction: enemy
    tags: [giant]
  - id: ally
    faction: player
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	lib, err := LoadLibrary(path)
	if err != nil {
		t.Fatalf("LoadLibrary failed: %v", err)
	}

	if lib.Name != "goblin warband" {
		t.Errorf("Expected library name 'goblin warband', got '%s'", lib.Name)
	}

	ogre := lib.Get("ogre")
	if ogre == nil {
		t.Fatal("Expected ogre definition")
	}
	if ogre.Size != SizeLarge {
		t.Errorf("Expected ogre to be large, got %s", ogre.Size)
	}
	if ogre.Name != "ogre" {
		t.Errorf("Expected missing name to default to id, got '%s'", ogre.Name)
	}

	ally := lib.Get("ally")
	if ally.Size != SizeMedium || ally.Faction != FactionPlayer {
		t.Errorf("Unexpected ally defaults: %+v", ally)
	}
	if goblin := lib.Get("goblin"); goblin.Faction != FactionEnemy {
		t.Errorf("Expected default faction enemy, got %s", goblin.Faction)
	}

	if got := lib.WithTag("giant"); len(got) != 1 || got[0].ID != "ogre" {
		t.Errorf("Expected only ogre tagged giant, got %v", got)
	}
}

func TestLoadLibraryJSONRejectsBadSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "creatures.json")
	data := `{"name": "bad", "creatures": [{"id": "blob", "size": "enormous"}]}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadLibrary(path); err == nil {
		t.Error("Expected error for unknown size category")
	}
}

func TestSpawn(t *testing.T) {
	lib, err := NewLibrary("test", []Definition{{ID: "wolf", Name: "Wolf", Size: SizeMedium}})
	if err != nil {
		t.Fatal(err)
	}

	actor := lib.Get("wolf").Spawn("wolf-1", shape.Point{X: 10, Y: 20})
	if actor.ID != "wolf-1" || actor.Name != "Wolf" {
		t.Errorf("Unexpected actor identity: %+v", actor)
	}
	if actor.Position != (shape.Point{X: 10, Y: 20}) {
		t.Errorf("Unexpected position: %v", actor.Position)
	}
	if actor.Faction != FactionEnemy {
		t.Errorf("Expected default enemy faction, got %s", actor.Faction)
	}
}
