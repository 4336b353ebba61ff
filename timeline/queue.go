// Package timeline binds action templates to (round, event) slots and
// executes each slot's entries in the order they were scheduled.
//
// A slot is marked consumed once executed. Executing it again is a logged
// no-op until Rearm clears the mark.
package timeline

import (
	"fmt"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"chosenoffset.com/battlefx/action"
	"chosenoffset.com/battlefx/clock"
	"chosenoffset.com/battlefx/effect"
	"chosenoffset.com/battlefx/entity"
	"chosenoffset.com/battlefx/persist"
	"chosenoffset.com/battlefx/targeting"
)

// Key addresses a timeline slot
type Key struct {
	Round int
	Event int
}

func (k Key) String() string {
	return fmt.Sprintf("%d.%d", k.Round, k.Event)
}

// Less orders keys by round, then event.
func (k Key) Less(other Key) bool {
	if k.Round != other.Round {
		return k.Round < other.Round
	}
	return k.Event < other.Event
}

// Entry is a scheduled action
type Entry struct {
	ID       string
	Template action.Template
	Binding  action.Binding

	runs int
}

// Execution reports what running one entry did
type Execution struct {
	Key          Key
	EntryID      string
	Action       *action.Action
	Targets      []entity.Actor
	InstanceID   string
	PersistentID string // empty when the action does not persist
	Err          error  // set when the entry could not be instantiated
}

// SpawnHook runs after an entry's effect instance is created and before it
// starts, so callers can attach callbacks.
type SpawnHook func(inst *effect.Instance, act *action.Action, targets []entity.Actor)

// Config wires a queue to its collaborators. Nil fields get defaults.
type Config struct {
	Actors    entity.Source
	Runner    *effect.Runner
	Scheduler *persist.Scheduler
	Resolver  *targeting.Resolver
	Clock     clock.Clock
	Trail     effect.Trail
	Logger    *zap.Logger
}

// Queue holds scheduled entries by slot
type Queue struct {
	buckets  map[Key][]*Entry
	consumed map[Key]bool

	actors    entity.Source
	runner    *effect.Runner
	scheduler *persist.Scheduler
	resolver  *targeting.Resolver
	clock     clock.Clock
	trail     effect.Trail
	logger    *zap.Logger

	onSpawn SpawnHook
}

// New creates an empty queue.
func New(cfg Config) *Queue {
	q := &Queue{
		buckets:   make(map[Key][]*Entry),
		consumed:  make(map[Key]bool),
		actors:    cfg.Actors,
		runner:    cfg.Runner,
		scheduler: cfg.Scheduler,
		resolver:  cfg.Resolver,
		clock:     cfg.Clock,
		trail:     cfg.Trail,
		logger:    cfg.Logger,
	}
	if q.logger == nil {
		q.logger = zap.NewNop()
	}
	if q.actors == nil {
		q.actors = entity.NewRoster()
	}
	if q.runner == nil {
		q.runner = effect.NewRunner(q.logger)
	}
	if q.scheduler == nil {
		q.scheduler = persist.NewScheduler(q.logger)
	}
	if q.resolver == nil {
		q.resolver = targeting.NewResolver(q.logger)
	}
	if q.clock == nil {
		q.clock = clock.NewSystem()
	}
	return q
}

// OnSpawn sets the hook run for every new effect instance.
func (q *Queue) OnSpawn(hook SpawnHook) { q.onSpawn = hook }

// Runner returns the effect runner the queue spawns into.
func (q *Queue) Runner() *effect.Runner { return q.runner }

// Scheduler returns the persistent effect scheduler the queue registers with.
func (q *Queue) Scheduler() *persist.Scheduler { return q.scheduler }

// Schedule appends tmpl to the (round, event) slot. Nothing is executed.
// Malformed templates or bindings are rejected with a *action.ValidationError
// and nothing is stored.
func (q *Queue) Schedule(round, event int, tmpl *action.Template, b action.Binding) (string, error) {
	if err := tmpl.Validate(); err != nil {
		return "", err
	}
	if err := b.Validate(); err != nil {
		if v, ok := err.(*action.ValidationError); ok {
			v.TemplateID = tmpl.ID
		}
		return "", err
	}

	key := Key{Round: round, Event: event}
	entry := &Entry{
		ID:       ulid.Make().String(),
		Template: *tmpl,
		Binding:  b.Clone(),
	}
	q.buckets[key] = append(q.buckets[key], entry)

	q.logger.Debug("action scheduled",
		zap.String("entry_id", entry.ID),
		zap.String("template_id", tmpl.ID),
		zap.Stringer("slot", key),
	)
	return entry.ID, nil
}

// ExecuteEventsForRound runs every entry in the (round, event) slot in FIFO
// order: bind, resolve targets, start an effect instance, and register a
// persistent effect when the template persists.
func (q *Queue) ExecuteEventsForRound(round, event int) []Execution {
	key := Key{Round: round, Event: event}
	entries := q.buckets[key]
	if len(entries) == 0 {
		return nil
	}
	if q.consumed[key] {
		q.logger.Info("slot already executed, skipping", zap.Stringer("slot", key))
		return nil
	}
	q.consumed[key] = true

	now := q.clock.Now()
	actors := q.actors.Actors()
	results := make([]Execution, 0, len(entries))
	for _, entry := range entries {
		results = append(results, q.execute(key, entry, actors, now))
	}
	return results
}

func (q *Queue) execute(key Key, entry *Entry, actors []entity.Actor, now time.Time) Execution {
	exec := Execution{Key: key, EntryID: entry.ID}

	id := entry.ID
	if entry.runs > 0 {
		id = fmt.Sprintf("%s-%d", entry.ID, entry.runs)
	}
	entry.runs++

	act, err := action.Instantiate(id, &entry.Template, entry.Binding, actors)
	if err != nil {
		exec.Err = err
		q.logger.Warn("scheduled action failed validation",
			zap.String("entry_id", entry.ID),
			zap.Stringer("slot", key),
			zap.Error(err),
		)
		return exec
	}
	exec.Action = act
	exec.Targets = q.resolver.Resolve(act, actors)

	inst, err := q.runner.Spawn(act.ID, effect.SpecFor(act, q.trail))
	if err != nil {
		exec.Err = err
		return exec
	}
	exec.InstanceID = inst.ID()
	if q.onSpawn != nil {
		q.onSpawn(inst, act, exec.Targets)
	}
	inst.Start(now)

	if p := act.Effect.Persist; p.Value > 0 {
		exec.PersistentID, _ = q.scheduler.Register(persist.Effect{
			ID:             act.ID,
			OwnerID:        act.Source.ActorID,
			ActionID:       act.ID,
			Area:           act.Area,
			Position:       act.Aim,
			CreatedAtRound: key.Round,
			CreatedAtEvent: key.Event,
			CreatedAtTime:  now,
			DurationType:   p.Type,
			DurationValue:  p.Value,
			Concentration:  p.Concentration,
		})
	}

	q.logger.Info("action executed",
		zap.String("action_id", act.ID),
		zap.String("template_id", act.TemplateID),
		zap.Stringer("slot", key),
		zap.Int("targets", len(exec.Targets)),
		zap.Bool("persistent", exec.PersistentID != ""),
	)
	return exec
}

// Consumed reports whether the slot has been executed since it was last armed.
func (q *Queue) Consumed(round, event int) bool {
	return q.consumed[Key{Round: round, Event: event}]
}

// Rearm lets an executed slot run again. It reports whether the slot was
// consumed.
func (q *Queue) Rearm(round, event int) bool {
	key := Key{Round: round, Event: event}
	if !q.consumed[key] {
		return false
	}
	delete(q.consumed, key)
	return true
}

// Cancel removes a pending entry by id.
func (q *Queue) Cancel(id string) bool {
	for key, entries := range q.buckets {
		for i, e := range entries {
			if e.ID != id {
				continue
			}
			entries = append(entries[:i], entries[i+1:]...)
			if len(entries) == 0 {
				delete(q.buckets, key)
			} else {
				q.buckets[key] = entries
			}
			return true
		}
	}
	return false
}

// Pending returns copies of the entries in a slot, in execution order.
func (q *Queue) Pending(round, event int) []Entry {
	entries := q.buckets[Key{Round: round, Event: event}]
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, Entry{ID: e.ID, Template: e.Template, Binding: e.Binding.Clone()})
	}
	return out
}

// Keys returns every slot with entries, in timeline order.
func (q *Queue) Keys() []Key {
	keys := make([]Key, 0, len(q.buckets))
	for k := range q.buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

// Len returns the number of scheduled entries.
func (q *Queue) Len() int {
	n := 0
	for _, entries := range q.buckets {
		n += len(entries)
	}
	return n
}

// Clear drops every entry and consumed mark.
func (q *Queue) Clear() {
	q.buckets = make(map[Key][]*Entry)
	q.consumed = make(map[Key]bool)
}
