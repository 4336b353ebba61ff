// Package targeting decides which actors an action affects.
//
// Rules are applied in order and the first one that matches wins:
//  1. an explicit actor-id target list, kept in pool order
//  2. the action's area, minus the source actor when excluding self
//  3. a bare target point, hitting actors within their hit radius plus tolerance
//  4. nothing
package targeting

import (
	"go.uber.org/zap"

	"chosenoffset.com/battlefx/action"
	"chosenoffset.com/battlefx/entity"
	"chosenoffset.com/battlefx/shape"
)

// DefaultTolerance is the selection slack added to hit radii when a bare
// point is targeted.
const DefaultTolerance = 10.0

// Rule identifies which resolution rule produced a result
type Rule int

const (
	RuleNone Rule = iota
	RuleExplicit
	RuleArea
	RulePoint
)

func (r Rule) String() string {
	switch r {
	case RuleExplicit:
		return "explicit"
	case RuleArea:
		return "area"
	case RulePoint:
		return "point"
	default:
		return "none"
	}
}

type options struct {
	excludeSelf bool
	tolerance   float64
}

// Option configures a resolution
type Option func(*options)

// WithExcludeSelf controls whether the source actor is dropped from area
// results. It defaults to true.
func WithExcludeSelf(exclude bool) Option {
	return func(o *options) { o.excludeSelf = exclude }
}

// WithTolerance overrides DefaultTolerance.
func WithTolerance(tolerance float64) Option {
	return func(o *options) { o.tolerance = tolerance }
}

func buildOptions(opts []Option) options {
	o := options{excludeSelf: true, tolerance: DefaultTolerance}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Resolve returns the actors act affects. The result never contains an
// actor twice and is empty for a nil action.
func Resolve(act *action.Action, pool []entity.Actor, opts ...Option) []entity.Actor {
	actors, _ := resolve(act, pool, buildOptions(opts))
	return actors
}

func resolve(act *action.Action, pool []entity.Actor, o options) ([]entity.Actor, Rule) {
	if act == nil {
		return []entity.Actor{}, RuleNone
	}

	switch {
	case len(act.Target.ActorIDs) > 0:
		wanted := make(map[string]struct{}, len(act.Target.ActorIDs))
		for _, id := range act.Target.ActorIDs {
			wanted[id] = struct{}{}
		}
		return collect(pool, func(a entity.Actor) bool {
			_, ok := wanted[a.ID]
			return ok
		}), RuleExplicit

	case act.Area != nil:
		self := ""
		if o.excludeSelf && act.Source.IsActor() {
			self = act.Source.ActorID
		}
		return collect(pool, func(a entity.Actor) bool {
			return a.ID != self && shape.Contains(a.Position, act.Area)
		}), RuleArea

	case act.Target.Point != nil:
		p := *act.Target.Point
		return collect(pool, func(a entity.Actor) bool {
			return shape.Distance(a.Position, p) <= a.HitRadius()+o.tolerance
		}), RulePoint
	}

	return []entity.Actor{}, RuleNone
}

// collect filters pool in order, keeping the first actor seen for each id.
func collect(pool []entity.Actor, keep func(entity.Actor) bool) []entity.Actor {
	result := make([]entity.Actor, 0)
	seen := make(map[string]struct{}, len(pool))
	for _, a := range pool {
		if _, dup := seen[a.ID]; dup {
			continue
		}
		seen[a.ID] = struct{}{}
		if keep(a) {
			result = append(result, a)
		}
	}
	return result
}

// Resolver carries configured options so callers do not repeat them
type Resolver struct {
	opts   options
	logger *zap.Logger
}

// NewResolver creates a resolver. A nil logger disables logging.
func NewResolver(logger *zap.Logger, opts ...Option) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{opts: buildOptions(opts), logger: logger}
}

// Resolve applies the resolver's options, then any extra ones.
func (r *Resolver) Resolve(act *action.Action, pool []entity.Actor, extra ...Option) []entity.Actor {
	o := r.opts
	for _, opt := range extra {
		opt(&o)
	}

	actors, rule := resolve(act, pool, o)
	if act != nil {
		r.logger.Debug("resolved targets",
			zap.String("action_id", act.ID),
			zap.Stringer("rule", rule),
			zap.Int("count", len(actors)),
		)
	}
	return actors
}
