// Package action provides the data-driven action templates used in combat.
// Templates are loaded from JSON or YAML files and describe how an action
// targets, how its effect travels and what it leaves behind. Binding a
// template to a source and target produces an Action.
package action

import (
	"fmt"
	"time"

	"chosenoffset.com/battlefx/dice"
	"chosenoffset.com/battlefx/shape"
)

// Kind is the broad type of an action
type Kind string

const (
	KindSpell       Kind = "spell"
	KindAttack      Kind = "attack"
	KindInteraction Kind = "interaction"
)

// Category selects the flavor of an action. Area actions without an explicit
// shape get their shape from the category.
type Category string

const (
	CategoryFire      Category = "fire"
	CategoryCold      Category = "cold"
	CategoryLightning Category = "lightning"
	CategoryPoison    Category = "poison"
	CategoryDivine    Category = "divine"
	CategoryForce     Category = "force"
	CategoryHealing   Category = "healing"
	CategoryWeapon    Category = "weapon"
)

// TargetingType defines how an action selects what it affects
type TargetingType string

const (
	TargetSingle TargetingType = "single" // Explicit actor ids
	TargetArea   TargetingType = "area"   // Everyone inside a shape
	TargetPoint  TargetingType = "point"  // Whoever is standing at a point
	TargetSelf   TargetingType = "self"   // The source actor
)

// Anchor places circle and square areas. Cones and lines always start at the
// source and point at the target.
type Anchor string

const (
	AnchorTarget Anchor = "target"
	AnchorSelf   Anchor = "self"
)

// Millis is a duration in milliseconds as written in template files
type Millis int

// Duration converts to a time.Duration.
func (m Millis) Duration() time.Duration {
	return time.Duration(m) * time.Millisecond
}

// Targeting defines how an action acquires its targets. Distances are
// battlefield units (50 per 5-foot square).
type Targeting struct {
	Type   TargetingType `json:"type" yaml:"type"`
	Shape  string        `json:"shape,omitempty" yaml:"shape,omitempty"`   // circle, square, cone, line; empty uses the category
	Anchor Anchor        `json:"anchor,omitempty" yaml:"anchor,omitempty"` // For circles and squares
	Range  float64       `json:"range,omitempty" yaml:"range,omitempty"`   // Cast range, or length for cones and lines
	Radius float64       `json:"radius,omitempty" yaml:"radius,omitempty"`
	Size   float64       `json:"size,omitempty" yaml:"size,omitempty"`
	Angle  float64       `json:"angle,omitempty" yaml:"angle,omitempty"` // Cone opening in degrees
	Width  float64       `json:"width,omitempty" yaml:"width,omitempty"`
}

// Motion describes how the visible effect travels and lingers
type Motion struct {
	Duration        Millis  `json:"duration_ms,omitempty" yaml:"duration_ms,omitempty"`
	Curved          bool    `json:"curved,omitempty" yaml:"curved,omitempty"`
	CurveHeight     float64 `json:"curve_height,omitempty" yaml:"curve_height,omitempty"`
	Burst           bool    `json:"burst,omitempty" yaml:"burst,omitempty"`
	BurstSize       float64 `json:"burst_size,omitempty" yaml:"burst_size,omitempty"`
	BurstDuration   Millis  `json:"burst_duration_ms,omitempty" yaml:"burst_duration_ms,omitempty"`
	PersistDuration Millis  `json:"persist_duration_ms,omitempty" yaml:"persist_duration_ms,omitempty"`
}

// DurationType is the unit a persistent effect is measured in
type DurationType string

const (
	DurationRounds DurationType = "rounds"
	DurationEvents DurationType = "events"
	DurationTime   DurationType = "time" // Milliseconds of game time
)

// Valid reports whether t is a known duration unit.
func (t DurationType) Valid() bool {
	switch t {
	case DurationRounds, DurationEvents, DurationTime:
		return true
	}
	return false
}

// Persist describes an effect that stays on the battlefield after impact
type Persist struct {
	Type          DurationType `json:"type,omitempty" yaml:"type,omitempty"`
	Value         int          `json:"value,omitempty" yaml:"value,omitempty"`
	Concentration bool         `json:"concentration,omitempty" yaml:"concentration,omitempty"`
}

// Effect defines what happens on impact
type Effect struct {
	Damage     string  `json:"damage,omitempty" yaml:"damage,omitempty"` // Dice expression
	DamageType string  `json:"damage_type,omitempty" yaml:"damage_type,omitempty"`
	Persist    Persist `json:"persist,omitempty" yaml:"persist,omitempty"`
}

// Template defines a single action that can be scheduled
type Template struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Kind        Kind      `json:"kind" yaml:"kind"`
	Category    Category  `json:"category" yaml:"category"`
	Targeting   Targeting `json:"targeting" yaml:"targeting"`
	Motion      Motion    `json:"motion" yaml:"motion"`
	Effect      Effect    `json:"effect" yaml:"effect"`
}

// Validate checks the template and returns a *ValidationError listing
// every problem found, or nil.
func (t *Template) Validate() error {
	_, err := t.validate()
	return err
}

// validate checks the template and returns its parsed damage expression,
// nil when the template deals no damage.
func (t *Template) validate() (*dice.Expr, error) {
	if t == nil {
		return nil, &ValidationError{Problems: []string{"template is nil"}}
	}

	v := &ValidationError{TemplateID: t.ID}
	if t.ID == "" {
		v.add("id is required")
	}
	switch t.Kind {
	case KindSpell, KindAttack, KindInteraction:
	case "":
		v.add("kind is required")
	default:
		v.add(fmt.Sprintf("unknown kind %q", t.Kind))
	}
	if t.Category == "" {
		v.add("category is required")
	}

	t.validateTargeting(v)

	m := t.Motion
	if m.Duration < 0 || m.BurstDuration < 0 || m.PersistDuration < 0 {
		v.add("motion durations must not be negative")
	}
	if m.CurveHeight < 0 || m.BurstSize < 0 {
		v.add("motion sizes must not be negative")
	}

	var damage *dice.Expr
	if t.Effect.Damage != "" {
		expr, err := dice.Parse(t.Effect.Damage)
		if err != nil {
			v.add(fmt.Sprintf("damage: %v", err))
		}
		damage = expr
	}
	p := t.Effect.Persist
	if p.Value < 0 {
		v.add("persist value must not be negative")
	}
	if p.Value > 0 && !p.Type.Valid() {
		v.add(fmt.Sprintf("persist type %q must be rounds, events or time", p.Type))
	}

	if err := v.orNil(); err != nil {
		return nil, err
	}
	return damage, nil
}

func (t *Template) validateTargeting(v *ValidationError) {
	tg := t.Targeting
	switch tg.Type {
	case TargetSingle, TargetPoint, TargetSelf:
		return
	case TargetArea:
	case "":
		v.add("targeting type is required")
		return
	default:
		v.add(fmt.Sprintf("unknown targeting type %q", tg.Type))
		return
	}

	switch tg.Anchor {
	case "", AnchorTarget, AnchorSelf:
	default:
		v.add(fmt.Sprintf("unknown anchor %q", tg.Anchor))
	}

	kind, _, err := t.AreaKind()
	if err != nil {
		v.add(err.Error())
		return
	}
	switch kind {
	case shape.KindCircle:
		if tg.Radius <= 0 {
			v.add("circle area needs a positive radius")
		}
	case shape.KindSquare:
		if tg.Size <= 0 && tg.Radius <= 0 {
			v.add("square area needs a positive size")
		}
	case shape.KindCone:
		if tg.Range <= 0 {
			v.add("cone area needs a positive range")
		}
		if tg.Angle <= 0 || tg.Angle > 360 {
			v.add("cone angle must be in (0, 360]")
		}
	case shape.KindLine:
		if tg.Range <= 0 {
			v.add("line area needs a positive range")
		}
		if tg.Width <= 0 {
			v.add("line area needs a positive width")
		}
	}
}

// RequiresArea reports whether the template targets an area.
func (t *Template) RequiresArea() bool {
	return t.Targeting.Type == TargetArea
}
