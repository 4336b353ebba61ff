// Package effect runs the visible lifecycle of a cast action: the effect
// travels from source to target, optionally bursts, optionally lingers, then
// completes. Progress is derived from elapsed clock time, never frame
// counts, so a host that stops ticking for a while resumes without skipping
// phases or changing the total duration.
package effect

import (
	"time"

	"chosenoffset.com/battlefx/action"
	"chosenoffset.com/battlefx/shape"
)

// Phase is a lifecycle stage
type Phase int

const (
	PhasePending Phase = iota // Created but not started
	PhaseTraveling
	PhaseBursting
	PhasePersisting
	PhaseComplete
	PhaseCancelled
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseTraveling:
		return "traveling"
	case PhaseBursting:
		return "bursting"
	case PhasePersisting:
		return "persisting"
	case PhaseComplete:
		return "complete"
	case PhaseCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions can happen.
func (p Phase) Terminal() bool {
	return p == PhaseComplete || p == PhaseCancelled
}

// Trail configures trail sampling
type Trail struct {
	Samples int     // Zero disables the trail
	Step    float64 // Progress between samples
}

// Spec is everything an instance needs. New copies it, so later changes to
// the caller's value have no effect.
type Spec struct {
	ActionID string
	From, To shape.Point
	Motion   action.Motion
	Trail    Trail
}

// SpecFor builds a Spec from a bound action.
func SpecFor(act *action.Action, trail Trail) Spec {
	return Spec{
		ActionID: act.ID,
		From:     act.Origin,
		To:       act.Aim,
		Motion:   act.Motion,
		Trail:    trail,
	}
}

// State is a read-only snapshot of an instance
type State struct {
	ID           string
	Phase        Phase
	PhaseElapsed time.Duration
	Progress     float64
	Position     shape.Point
	Trail        []shape.Point
}

// Instance is one running effect
type Instance struct {
	id   string
	spec Spec
	path path

	phase        Phase
	phaseStart   time.Time
	phaseElapsed time.Duration
	progress     float64
	position     shape.Point
	trail        []shape.Point

	onComplete func(*Instance)
	onCancel   func(*Instance)
	onPhase    func(inst *Instance, from, to Phase)
}

// New creates an instance in the pending phase.
func New(id string, spec Spec) *Instance {
	return &Instance{
		id:       id,
		spec:     spec,
		path:     newPath(id, spec.From, spec.To, spec.Motion.Curved, spec.Motion.CurveHeight),
		position: spec.From,
	}
}

// OnComplete registers the callback fired once on natural completion.
func (i *Instance) OnComplete(cb func(*Instance)) { i.onComplete = cb }

// OnCancel registers the callback fired once when stopped early.
func (i *Instance) OnCancel(cb func(*Instance)) { i.onCancel = cb }

// OnPhase registers a callback for every phase transition.
func (i *Instance) OnPhase(cb func(inst *Instance, from, to Phase)) { i.onPhase = cb }

func (i *Instance) ID() string                  { return i.id }
func (i *Instance) Phase() Phase                { return i.phase }
func (i *Instance) Progress() float64           { return i.progress }
func (i *Instance) Position() shape.Point       { return i.position }
func (i *Instance) PhaseElapsed() time.Duration { return i.phaseElapsed }
func (i *Instance) Spec() Spec                  { return i.spec }

// Done reports whether the instance has completed or been cancelled.
func (i *Instance) Done() bool {
	return i.phase.Terminal()
}

// Trail returns a copy of the current trail samples.
func (i *Instance) Trail() []shape.Point {
	return append([]shape.Point(nil), i.trail...)
}

// State returns a snapshot of the instance.
func (i *Instance) State() State {
	return State{
		ID:           i.id,
		Phase:        i.phase,
		PhaseElapsed: i.phaseElapsed,
		Progress:     i.progress,
		Position:     i.position,
		Trail:        i.Trail(),
	}
}

// Start begins traveling. Calling it again has no effect.
func (i *Instance) Start(now time.Time) {
	if i.phase != PhasePending {
		return
	}
	i.phase = PhaseTraveling
	i.phaseStart = now
	i.phaseElapsed = 0
	i.refresh()
}

// Update advances the instance to now. If more time passed than the current
// phase lasts, the overflow carries into the following phases in order.
func (i *Instance) Update(now time.Time) {
	if i.phase == PhasePending || i.Done() {
		return
	}

	elapsed := now.Sub(i.phaseStart)
	if elapsed < 0 {
		elapsed = 0
	}

	for {
		d := i.phaseDuration(i.phase)
		if elapsed < d {
			i.phaseElapsed = elapsed
			break
		}
		elapsed -= d
		i.phaseStart = i.phaseStart.Add(d)
		i.enter(i.next())
		if i.Done() {
			return
		}
	}
	i.refresh()
}

// Stop cancels the instance without firing the completion callback.
// Stopping twice or after completion does nothing.
func (i *Instance) Stop() {
	if i.Done() {
		return
	}
	i.phase = PhaseCancelled
	i.trail = nil
	if i.onCancel != nil {
		i.onCancel(i)
	}
}

func (i *Instance) phaseDuration(p Phase) time.Duration {
	m := i.spec.Motion
	switch p {
	case PhaseTraveling:
		return m.Duration.Duration()
	case PhaseBursting:
		return m.BurstDuration.Duration()
	case PhasePersisting:
		return m.PersistDuration.Duration()
	default:
		return 0
	}
}

func (i *Instance) next() Phase {
	m := i.spec.Motion
	switch i.phase {
	case PhaseTraveling:
		if m.Burst {
			return PhaseBursting
		}
		return PhaseComplete
	case PhaseBursting:
		if m.PersistDuration > 0 {
			return PhasePersisting
		}
		return PhaseComplete
	default:
		return PhaseComplete
	}
}

func (i *Instance) enter(p Phase) {
	from := i.phase
	i.phase = p
	i.phaseElapsed = 0

	if p == PhaseComplete {
		i.progress = 1
		i.position = i.spec.To
		i.trail = nil
	}
	if i.onPhase != nil {
		i.onPhase(i, from, p)
	}
	if p == PhaseComplete && i.onComplete != nil {
		i.onComplete(i)
	}
}

// refresh recomputes progress, position and trail from phaseElapsed.
func (i *Instance) refresh() {
	d := i.phaseDuration(i.phase)
	if d <= 0 {
		i.progress = 1
	} else {
		i.progress = shape.Clamp(float64(i.phaseElapsed)/float64(d), 0, 1)
	}

	if i.phase == PhaseTraveling {
		i.position = i.path.at(i.progress)
		i.trail = i.path.trail(i.progress, i.spec.Trail.Samples, i.spec.Trail.Step)
		return
	}
	i.position = i.spec.To
	i.trail = nil
}
