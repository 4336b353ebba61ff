package action

import (
	"errors"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"

	"chosenoffset.com/battlefx/dice"
	"chosenoffset.com/battlefx/entity"
	"chosenoffset.com/battlefx/shape"
)

var (
	// ErrInvalidTemplate is wrapped by every ValidationError.
	ErrInvalidTemplate = errors.New("invalid action template")
	// ErrUnknownTemplate is returned when a library lookup misses.
	ErrUnknownTemplate = errors.New("unknown action template")
)

// ValidationError lists everything wrong with a template or binding
type ValidationError struct {
	TemplateID string
	Problems   []string
}

func (e *ValidationError) Error() string {
	id := e.TemplateID
	if id == "" {
		id = "<unnamed>"
	}
	return fmt.Sprintf("template %s: %s", id, strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidTemplate
}

func (e *ValidationError) add(problem string) {
	e.Problems = append(e.Problems, problem)
}

func (e *ValidationError) orNil() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}

// Ref points at either an actor or a fixed battlefield point
type Ref struct {
	ActorID string       `json:"actor,omitempty" yaml:"actor,omitempty"`
	Point   *shape.Point `json:"point,omitempty" yaml:"point,omitempty"`
}

// IsActor reports whether the reference names an actor.
func (r Ref) IsActor() bool {
	return r.ActorID != ""
}

// Target is a bare point, a list of actor ids, or empty
type Target struct {
	Point    *shape.Point `json:"point,omitempty" yaml:"point,omitempty"`
	ActorIDs []string     `json:"actors,omitempty" yaml:"actors,omitempty"`
}

// IsEmpty reports whether nothing was targeted.
func (t Target) IsEmpty() bool {
	return t.Point == nil && len(t.ActorIDs) == 0
}

// Binding supplies the source and target a template is cast with
type Binding struct {
	Source Ref    `json:"source" yaml:"source"`
	Target Target `json:"target" yaml:"target"`
}

// Clone returns a deep copy of the binding.
func (b Binding) Clone() Binding {
	out := Binding{Source: Ref{ActorID: b.Source.ActorID}}
	if b.Source.Point != nil {
		p := *b.Source.Point
		out.Source.Point = &p
	}
	if b.Target.Point != nil {
		p := *b.Target.Point
		out.Target.Point = &p
	}
	out.Target.ActorIDs = append([]string(nil), b.Target.ActorIDs...)
	return out
}

// Validate checks the binding's shape without looking at any actors.
func (b Binding) Validate() error {
	v := &ValidationError{}
	b.validate(v)
	return v.orNil()
}

func (b Binding) validate(v *ValidationError) {
	switch {
	case b.Source.ActorID == "" && b.Source.Point == nil:
		v.add("binding needs a source actor or point")
	case b.Source.ActorID != "" && b.Source.Point != nil:
		v.add("binding source cannot be both an actor and a point")
	}
	if b.Target.Point != nil && len(b.Target.ActorIDs) > 0 {
		v.add("binding target cannot be both a point and actors")
	}
	for _, id := range b.Target.ActorIDs {
		if id == "" {
			v.add("binding target actor id is empty")
			break
		}
	}
}

// Action is a template bound to a source and target at cast time. Positions
// and the area are resolved once here and never recomputed.
type Action struct {
	ID         string
	TemplateID string
	Name       string
	Kind       Kind
	Category   Category
	Source     Ref
	Target     Target
	Area       shape.Shape // nil when the action has no area

	Origin shape.Point // Where the effect starts
	Aim    shape.Point // Where the effect lands

	Motion Motion
	Effect Effect
	Damage *dice.Expr // Parsed Effect.Damage; nil when the action deals none
}

// Instantiate binds a template. Actor references are looked up in actors to
// fix positions. Malformed templates or bindings return a *ValidationError
// and no Action. An empty id gets a fresh ULID.
func Instantiate(id string, t *Template, b Binding, actors []entity.Actor) (*Action, error) {
	damage, err := t.validate()
	if err != nil {
		return nil, err
	}

	v := &ValidationError{TemplateID: t.ID}
	b.validate(v)
	if err := v.orNil(); err != nil {
		return nil, err
	}

	var origin shape.Point
	if b.Source.IsActor() {
		src, ok := entity.Find(actors, b.Source.ActorID)
		if !ok {
			v.add(fmt.Sprintf("source actor %q not found", b.Source.ActorID))
			return nil, v
		}
		origin = src.Position
	} else {
		origin = *b.Source.Point
	}

	bound := b.Clone()
	target := bound.Target
	if t.Targeting.Type == TargetSelf && b.Source.IsActor() && target.IsEmpty() {
		target.ActorIDs = []string{b.Source.ActorID}
	}

	aim := origin
	var aimPoint *shape.Point
	switch {
	case target.Point != nil:
		aim = *target.Point
		aimPoint = target.Point
	case len(target.ActorIDs) > 0:
		if a, ok := entity.Find(actors, target.ActorIDs[0]); ok {
			aim = a.Position
		}
	}

	if id == "" {
		id = ulid.Make().String()
	}

	return &Action{
		ID:         id,
		TemplateID: t.ID,
		Name:       t.Name,
		Kind:       t.Kind,
		Category:   t.Category,
		Source:     bound.Source,
		Target:     target,
		Area:       t.BuildArea(origin, aimPoint),
		Origin:     origin,
		Aim:        aim,
		Motion:     t.Motion,
		Effect:     t.Effect,
		Damage:     damage,
	}, nil
}
