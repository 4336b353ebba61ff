// Package persist tracks effects that outlast their cast: zones, auras and
// clouds measured in rounds, events or milliseconds of game time. Effects
// expire when the combat pointer moves far enough past their creation stamp,
// and concentration effects can be dropped all at once for an owner.
package persist

import (
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"chosenoffset.com/battlefx/action"
	"chosenoffset.com/battlefx/shape"
)

// Effect is a persistent effect on the battlefield
type Effect struct {
	ID       string
	OwnerID  string
	ActionID string
	Area     shape.Shape // nil for effects tied to a position only
	Position shape.Point

	CreatedAtRound int
	CreatedAtEvent int
	CreatedAtTime  time.Time

	DurationType  action.DurationType
	DurationValue int
	Concentration bool

	// Number of forward event-pointer moves at creation.
	createdAtTick int
}

// Pointer is the scheduler's view of the combat clock
type Pointer struct {
	Round int
	Event int
	Time  time.Time
}

// Scheduler stores persistent effects in registration order
type Scheduler struct {
	effects map[string]*Effect
	order   []string

	pointer  Pointer
	ticks    int // forward event-pointer moves seen so far
	lastTime time.Time

	logger *zap.Logger
}

// NewScheduler creates an empty scheduler. A nil logger disables logging.
func NewScheduler(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		effects: make(map[string]*Effect),
		logger:  logger,
	}
}

// Register stores e. Effects without a positive duration are ignored and
// Register returns false. A missing id is filled with a ULID, and the
// creation time is raised to the latest one seen so stamps never go back.
func (s *Scheduler) Register(e Effect) (string, bool) {
	if e.DurationValue <= 0 {
		return "", false
	}
	if e.ID == "" {
		e.ID = ulid.Make().String()
	}
	if _, exists := s.effects[e.ID]; exists {
		s.remove(e.ID)
	}

	if e.CreatedAtTime.Before(s.lastTime) {
		e.CreatedAtTime = s.lastTime
	}
	s.lastTime = e.CreatedAtTime
	e.createdAtTick = s.ticks

	stored := e
	s.effects[e.ID] = &stored
	s.order = append(s.order, e.ID)

	s.logger.Debug("persistent effect registered",
		zap.String("effect_id", e.ID),
		zap.String("owner_id", e.OwnerID),
		zap.String("duration_type", string(e.DurationType)),
		zap.Int("duration", e.DurationValue),
		zap.Bool("concentration", e.Concentration),
	)
	return e.ID, true
}

// Advance moves the pointer and removes every effect whose elapsed measure
// has reached its duration. It returns the expired ids in registration order.
func (s *Scheduler) Advance(round, event int, now time.Time) []string {
	if round > s.pointer.Round || (round == s.pointer.Round && event > s.pointer.Event) {
		s.ticks++
	}
	s.pointer = Pointer{Round: round, Event: event, Time: now}
	if now.After(s.lastTime) {
		s.lastTime = now
	}

	var expired []string
	for _, id := range s.order {
		e := s.effects[id]
		if s.elapsed(e) >= e.DurationValue {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		s.remove(id)
	}

	if len(expired) > 0 {
		s.logger.Debug("persistent effects expired",
			zap.Int("round", round),
			zap.Int("event", event),
			zap.Strings("effect_ids", expired),
		)
	}
	return expired
}

func (s *Scheduler) elapsed(e *Effect) int {
	switch e.DurationType {
	case action.DurationRounds:
		return s.pointer.Round - e.CreatedAtRound
	case action.DurationEvents:
		return s.ticks - e.createdAtTick
	case action.DurationTime:
		return int(s.pointer.Time.Sub(e.CreatedAtTime) / time.Millisecond)
	default:
		return 0
	}
}

// BreakConcentration removes every concentration effect owned by ownerID
// and returns their ids. Other effects of the owner are untouched.
func (s *Scheduler) BreakConcentration(ownerID string) []string {
	var broken []string
	for _, id := range s.order {
		e := s.effects[id]
		if e.Concentration && e.OwnerID == ownerID {
			broken = append(broken, id)
		}
	}
	for _, id := range broken {
		s.remove(id)
	}

	if len(broken) > 0 {
		s.logger.Debug("concentration broken",
			zap.String("owner_id", ownerID),
			zap.Strings("effect_ids", broken),
		)
	}
	return broken
}

// Get returns a copy of one effect.
func (s *Scheduler) Get(id string) (Effect, bool) {
	e, ok := s.effects[id]
	if !ok {
		return Effect{}, false
	}
	return *e, true
}

// EffectsFor returns copies of the owner's effects in registration order.
func (s *Scheduler) EffectsFor(ownerID string) []Effect {
	out := make([]Effect, 0)
	for _, id := range s.order {
		if e := s.effects[id]; e.OwnerID == ownerID {
			out = append(out, *e)
		}
	}
	return out
}

// All returns copies of every effect in registration order.
func (s *Scheduler) All() []Effect {
	out := make([]Effect, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.effects[id])
	}
	return out
}

// Remove deletes one effect. It reports whether the id was stored.
func (s *Scheduler) Remove(id string) bool {
	if _, ok := s.effects[id]; !ok {
		return false
	}
	s.remove(id)
	return true
}

func (s *Scheduler) remove(id string) {
	delete(s.effects, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

// Clear removes every effect.
func (s *Scheduler) Clear() {
	s.effects = make(map[string]*Effect)
	s.order = nil
}

// Len returns the number of stored effects.
func (s *Scheduler) Len() int {
	return len(s.effects)
}

// Pointer returns the last pointer passed to Advance.
func (s *Scheduler) Pointer() Pointer {
	return s.pointer
}

// Remaining returns how much of e's duration is left at the current
// pointer, in e's own unit.
func (s *Scheduler) Remaining(id string) (int, bool) {
	e, ok := s.effects[id]
	if !ok {
		return 0, false
	}
	return max(e.DurationValue-s.elapsed(e), 0), true
}
