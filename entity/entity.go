// Package entity provides the actor snapshots ("tokens") that actions target.
// Actors are owned by the token store; the combat core only reads them.
package entity

import (
	"fmt"
	"strings"

	"chosenoffset.com/battlefx/shape"
)

// SizeCategory is the creature size of an actor
type SizeCategory string

const (
	SizeTiny       SizeCategory = "tiny"
	SizeSmall      SizeCategory = "small"
	SizeMedium     SizeCategory = "medium"
	SizeLarge      SizeCategory = "large"
	SizeHuge       SizeCategory = "huge"
	SizeGargantuan SizeCategory = "gargantuan"
)

// GridUnit is the battlefield size of one 5-foot square.
const GridUnit = 50.0

// hitRadii maps each size category to the radius used for point selection.
var hitRadii = map[SizeCategory]float64{
	SizeTiny:       GridUnit / 4,
	SizeSmall:      GridUnit / 2,
	SizeMedium:     GridUnit / 2,
	SizeLarge:      GridUnit,
	SizeHuge:       GridUnit * 1.5,
	SizeGargantuan: GridUnit * 2,
}

// HitRadius returns the selection radius for the size category.
// Unknown sizes fall back to medium.
func (s SizeCategory) HitRadius() float64 {
	if r, ok := hitRadii[s]; ok {
		return r
	}
	return hitRadii[SizeMedium]
}

// Valid reports whether s is one of the known size categories.
func (s SizeCategory) Valid() bool {
	_, ok := hitRadii[s]
	return ok
}

// ParseSize converts a size name to a SizeCategory, case-insensitively.
// An empty name is medium.
func ParseSize(name string) (SizeCategory, error) {
	n := SizeCategory(strings.ToLower(strings.TrimSpace(name)))
	if n == "" {
		return SizeMedium, nil
	}
	if !n.Valid() {
		return "", fmt.Errorf("unknown size category: %q", name)
	}
	return n, nil
}

// Faction determines hostility relationships
type Faction string

const (
	FactionPlayer  Faction = "player"
	FactionEnemy   Faction = "enemy"
	FactionNeutral Faction = "neutral"
)

// Actor is a read-only snapshot of a token on the battlefield.
type Actor struct {
	ID       string
	Name     string
	Position shape.Point
	Size     SizeCategory
	Faction  Faction
}

// HitRadius returns the selection radius for the actor's size.
func (a Actor) HitRadius() float64 {
	return a.Size.HitRadius()
}

// DistanceTo returns the distance between actor centers.
func (a Actor) DistanceTo(other Actor) float64 {
	return shape.Distance(a.Position, other.Position)
}

// IsHostileTo returns true if this actor is hostile to another
func (a Actor) IsHostileTo(other Actor) bool {
	if a.Faction == FactionNeutral || other.Faction == FactionNeutral {
		return false
	}
	if a.Faction == "" || other.Faction == "" {
		return false
	}
	return a.Faction != other.Faction
}

// Find returns the actor with the given id from pool.
func Find(pool []Actor, id string) (Actor, bool) {
	for _, a := range pool {
		if a.ID == id {
			return a, true
		}
	}
	return Actor{}, false
}

// Source supplies the current actor snapshot
type Source interface {
	Actors() []Actor
}

// Roster is a fixed actor list that can be moved around between events
type Roster struct {
	actors []Actor
}

// NewRoster creates a roster from a copy of actors.
func NewRoster(actors ...Actor) *Roster {
	return &Roster{actors: append([]Actor(nil), actors...)}
}

// Actors returns a copy of the roster.
func (r *Roster) Actors() []Actor {
	return append([]Actor(nil), r.actors...)
}

// Add appends an actor, replacing any actor with the same id.
func (r *Roster) Add(a Actor) {
	for i := range r.actors {
		if r.actors[i].ID == a.ID {
			r.actors[i] = a
			return
		}
	}
	r.actors = append(r.actors, a)
}

// Move sets an actor's position. It reports whether the actor exists.
func (r *Roster) Move(id string, pos shape.Point) bool {
	for i := range r.actors {
		if r.actors[i].ID == id {
			r.actors[i].Position = pos
			return true
		}
	}
	return false
}
