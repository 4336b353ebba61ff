// Package turn runs a combat encounter.
// It owns the round/event pointer and initiative order, executes the timeline
// as the pointer moves, expires persistent effects and rolls damage when
// effects land.
package turn

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"chosenoffset.com/battlefx/action"
	"chosenoffset.com/battlefx/clock"
	"chosenoffset.com/battlefx/dice"
	"chosenoffset.com/battlefx/effect"
	"chosenoffset.com/battlefx/entity"
	"chosenoffset.com/battlefx/persist"
	"chosenoffset.com/battlefx/targeting"
	"chosenoffset.com/battlefx/timeline"
)

// ActorSource supplies the actor snapshot each event is resolved against
type ActorSource = entity.Source

// ImpactReport describes an effect landing on its targets
type ImpactReport struct {
	Round, Event int
	Action       *action.Action
	InstanceID   string
	Targets      []entity.Actor
	Roll         *dice.RollResult // nil when the action deals no damage
}

// Config wires a manager. Nil fields get defaults.
type Config struct {
	Actors   ActorSource
	Clock    clock.Clock
	Roller   *dice.Roller
	Resolver *targeting.Resolver
	Library  *action.Library
	Trail    effect.Trail
	Recorder Recorder
	Logger   *zap.Logger
}

// Manager handles turn-based combat
type Manager struct {
	actors    ActorSource
	clock     clock.Clock
	roller    *dice.Roller
	library   *action.Library
	queue     *timeline.Queue
	runner    *effect.Runner
	scheduler *persist.Scheduler
	recorder  Recorder
	logger    *zap.Logger

	initiative []string
	round      int
	event      int
	started    bool
	ended      bool

	// Callbacks
	OnRoundStart func(round int)
	OnEvent      func(round, event int, executions []timeline.Execution)
	OnImpact     func(report *ImpactReport)
	OnExpired    func(ids []string)
	OnMessage    func(msg string)
}

// NewManager creates a new combat manager
func NewManager(cfg Config) *Manager {
	m := &Manager{
		actors:   cfg.Actors,
		clock:    cfg.Clock,
		roller:   cfg.Roller,
		library:  cfg.Library,
		recorder: cfg.Recorder,
		logger:   cfg.Logger,
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	if m.actors == nil {
		m.actors = entity.NewRoster()
	}
	if m.clock == nil {
		m.clock = clock.NewSystem()
	}
	if m.roller == nil {
		m.roller = dice.NewSeededRoller(time.Now().UnixNano())
	}
	if m.library == nil {
		m.library = action.DefaultLibrary()
	}
	if m.recorder == nil {
		m.recorder = nopRecorder{}
	}

	m.runner = effect.NewRunner(m.logger.Named("effects"))
	m.scheduler = persist.NewScheduler(m.logger.Named("persist"))
	m.queue = timeline.New(timeline.Config{
		Actors:    m.actors,
		Runner:    m.runner,
		Scheduler: m.scheduler,
		Resolver:  cfg.Resolver,
		Clock:     m.clock,
		Trail:     cfg.Trail,
		Logger:    m.logger.Named("timeline"),
	})
	m.queue.OnSpawn(m.watchImpact)
	return m
}

// SetInitiative sets the turn order. Each combatant acts in one event per round.
func (m *Manager) SetInitiative(ids ...string) {
	m.initiative = append([]string(nil), ids...)
}

// SetLibrary merges lib over the current template library.
func (m *Manager) SetLibrary(lib *action.Library) {
	if lib != nil {
		m.library.Merge(lib)
	}
}

func (m *Manager) Library() *action.Library      { return m.library }
func (m *Manager) Queue() *timeline.Queue        { return m.queue }
func (m *Manager) Runner() *effect.Runner        { return m.runner }
func (m *Manager) Scheduler() *persist.Scheduler { return m.scheduler }
func (m *Manager) Actors() []entity.Actor        { return m.actors.Actors() }
func (m *Manager) Initiative() []string          { return append([]string(nil), m.initiative...) }
func (m *Manager) Round() int                    { return m.round }
func (m *Manager) Event() int                    { return m.event }
func (m *Manager) Started() bool                 { return m.started }
func (m *Manager) Ended() bool                   { return m.ended }
func (m *Manager) Pointer() timeline.Key         { return timeline.Key{Round: m.round, Event: m.event} }

// CurrentActor returns the id of the combatant whose event it is.
func (m *Manager) CurrentActor() string {
	if m.event < 0 || m.event >= len(m.initiative) {
		return ""
	}
	return m.initiative[m.event]
}

// Schedule looks up a template and schedules it at (round, event).
func (m *Manager) Schedule(round, event int, templateID string, b action.Binding) (string, error) {
	tmpl, err := m.library.Lookup(templateID)
	if err != nil {
		return "", err
	}
	return m.queue.Schedule(round, event, tmpl, b)
}

// Start begins combat at round 1, event 0 and runs that event.
func (m *Manager) Start() {
	if m.started || m.ended {
		return
	}
	m.started = true
	m.round, m.event = 1, 0
	m.message("Combat begins")
	if m.OnRoundStart != nil {
		m.OnRoundStart(m.round)
	}
	m.runEvent()
}

// NextEvent moves the pointer to the next combatant, wrapping into a new
// round after the last one, and runs the new event.
func (m *Manager) NextEvent() {
	if !m.started || m.ended {
		return
	}

	m.event++
	if m.event >= max(len(m.initiative), 1) {
		m.round++
		m.event = 0
		m.message(fmt.Sprintf("--- Round %d ---", m.round))
		if m.OnRoundStart != nil {
			m.OnRoundStart(m.round)
		}
	}
	m.runEvent()
}

// runEvent expires persistent effects that ran out, then executes the
// timeline slot at the pointer.
func (m *Manager) runEvent() {
	now := m.clock.Now()

	expired := m.scheduler.Advance(m.round, m.event, now)
	if len(expired) > 0 {
		m.teardown(expired)
		m.record(Record{Kind: RecordExpired, EffectIDs: expired})
		m.message(fmt.Sprintf("%d lingering effect(s) fade", len(expired)))
		if m.OnExpired != nil {
			m.OnExpired(expired)
		}
	}

	executions := m.queue.ExecuteEventsForRound(m.round, m.event)
	for _, exec := range executions {
		m.recordExecution(exec)
		if exec.Err != nil {
			m.message(fmt.Sprintf("Action failed: %v", exec.Err))
			continue
		}
		m.message(m.describe(exec))
	}

	m.logger.Debug("event processed",
		zap.Int("round", m.round),
		zap.Int("event", m.event),
		zap.String("actor", m.CurrentActor()),
		zap.Int("executions", len(executions)),
		zap.Int("expired", len(expired)),
	)
	if m.OnEvent != nil {
		m.OnEvent(m.round, m.event, executions)
	}
}

// Tick advances every live effect to the clock's current time.
func (m *Manager) Tick() []string {
	if m.ended {
		return nil
	}
	return m.runner.Tick(m.clock.Now())
}

// BreakConcentration drops the owner's concentration effects and their
// visuals. It returns the removed effect ids.
func (m *Manager) BreakConcentration(ownerID string) []string {
	if m.ended {
		return nil
	}
	broken := m.scheduler.BreakConcentration(ownerID)
	if len(broken) == 0 {
		return nil
	}
	m.teardown(broken)
	m.record(Record{Kind: RecordConcentration, SourceID: ownerID, EffectIDs: broken})
	m.message(fmt.Sprintf("%s loses concentration", m.nameOf(ownerID)))
	return broken
}

// EndCombat stops every live effect and clears the timeline and persistent
// effects. No callbacks fire afterwards.
func (m *Manager) EndCombat() {
	if m.ended {
		return
	}
	m.ended = true

	stopped := m.runner.StopAll()
	m.queue.Clear()
	m.scheduler.Clear()
	m.record(Record{Kind: RecordEnded, Detail: fmt.Sprintf("%d effects stopped", stopped)})
	m.logger.Info("combat ended",
		zap.Int("round", m.round),
		zap.Int("stopped", stopped),
	)

	m.OnRoundStart = nil
	m.OnEvent = nil
	m.OnImpact = nil
	m.OnExpired = nil
	m.OnMessage = nil
}

// teardown stops the visuals linked to persistent effect ids.
func (m *Manager) teardown(ids []string) {
	for _, id := range ids {
		m.runner.Stop(id)
	}
}

// watchImpact rolls damage when an instance lands: on entering Bursting, or
// on completing travel when the effect does not burst.
func (m *Manager) watchImpact(inst *effect.Instance, act *action.Action, targets []entity.Actor) {
	round, event := m.round, m.event
	inst.OnPhase(func(_ *effect.Instance, from, to effect.Phase) {
		landed := to == effect.PhaseBursting || (from == effect.PhaseTraveling && to == effect.PhaseComplete)
		if !landed || m.ended {
			return
		}
		m.impact(&ImpactReport{
			Round:      round,
			Event:      event,
			Action:     act,
			InstanceID: inst.ID(),
			Targets:    targets,
		})
	})
}

func (m *Manager) impact(report *ImpactReport) {
	act := report.Action
	if act.Damage != nil {
		roll, err := m.roller.RollExpr(act.Damage)
		if err != nil {
			m.logger.Warn("damage roll failed",
				zap.String("action_id", act.ID),
				zap.String("expression", act.Effect.Damage),
				zap.Error(err),
			)
		} else {
			report.Roll = roll
		}
	}

	rec := Record{
		Kind:       RecordImpact,
		ActionID:   act.ID,
		TemplateID: act.TemplateID,
		SourceID:   act.Source.ActorID,
		Targets:    actorIDs(report.Targets),
	}
	if report.Roll != nil {
		rec.Total = report.Roll.Total
		rec.Detail = report.Roll.Breakdown
		m.message(m.describeImpact(report))
	}
	m.record(rec)

	if m.OnImpact != nil {
		m.OnImpact(report)
	}
}

func (m *Manager) describe(exec timeline.Execution) string {
	act := exec.Action
	who := "Something"
	if act.Source.IsActor() {
		who = m.nameOf(act.Source.ActorID)
	}
	switch len(exec.Targets) {
	case 0:
		return fmt.Sprintf("%s uses %s", who, act.Name)
	case 1:
		return fmt.Sprintf("%s uses %s on %s", who, act.Name, exec.Targets[0].Name)
	default:
		return fmt.Sprintf("%s uses %s, catching %d creatures", who, act.Name, len(exec.Targets))
	}
}

func (m *Manager) describeImpact(report *ImpactReport) string {
	eff := report.Action.Effect
	if eff.DamageType == "healing" {
		return fmt.Sprintf("%s restores %d hit points (%s)", report.Action.Name, report.Roll.Total, report.Roll.Breakdown)
	}
	return fmt.Sprintf("%s deals %d %s damage (%s)", report.Action.Name, report.Roll.Total, eff.DamageType, report.Roll.Breakdown)
}

func (m *Manager) nameOf(id string) string {
	if a, ok := entity.Find(m.actors.Actors(), id); ok && a.Name != "" {
		return a.Name
	}
	return id
}

func (m *Manager) message(msg string) {
	if m.OnMessage != nil {
		m.OnMessage(msg)
	}
}

func (m *Manager) recordExecution(exec timeline.Execution) {
	rec := Record{Kind: RecordExecuted, ActionID: exec.EntryID}
	if exec.Action != nil {
		rec.ActionID = exec.Action.ID
		rec.TemplateID = exec.Action.TemplateID
		rec.SourceID = exec.Action.Source.ActorID
		rec.Targets = actorIDs(exec.Targets)
	}
	if exec.PersistentID != "" {
		rec.EffectIDs = []string{exec.PersistentID}
	}
	if exec.Err != nil {
		rec.Kind = RecordFailed
		rec.Detail = exec.Err.Error()
	}
	m.record(rec)
}

func (m *Manager) record(rec Record) {
	rec.Round, rec.Event = m.round, m.event
	rec.At = m.clock.Now()
	if err := m.recorder.Record(context.Background(), rec); err != nil {
		m.logger.Warn("failed to record combat event",
			zap.String("kind", string(rec.Kind)),
			zap.Error(err),
		)
	}
}

func actorIDs(actors []entity.Actor) []string {
	ids := make([]string, len(actors))
	for i, a := range actors {
		ids[i] = a.ID
	}
	return ids
}
