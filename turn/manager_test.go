package turn

import (
	"context"
	"testing"
	"time"

	"chosenoffset.com/battlefx/action"
	"chosenoffset.com/battlefx/clock"
	"chosenoffset.com/battlefx/dice"
	"chosenoffset.com/battlefx/effect"
	"chosenoffset.com/battlefx/entity"
	"chosenoffset.com/battlefx/shape"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

type memoryRecorder struct {
	records []Record
}

func (r *memoryRecorder) Record(_ context.Context, rec Record) error {
	r.records = append(r.records, rec)
	return nil
}

func (r *memoryRecorder) kinds() []RecordKind {
	out := make([]RecordKind, len(r.records))
	for i, rec := range r.records {
		out[i] = rec.Kind
	}
	return out
}

func newTestManager(t *testing.T) (*Manager, *clock.Manual, *memoryRecorder) {
	t.Helper()
	roster := entity.NewRoster(
		entity.Actor{ID: "wizard-1", Name: "Wizard", Position: shape.Point{X: 0, Y: 0}, Faction: entity.FactionPlayer},
		entity.Actor{ID: "goblin-1", Name: "Goblin", Position: shape.Point{X: 400, Y: 0}, Size: entity.SizeSmall, Faction: entity.FactionEnemy},
		entity.Actor{ID: "goblin-2", Name: "Goblin", Position: shape.Point{X: 450, Y: 50}, Size: entity.SizeSmall, Faction: entity.FactionEnemy},
	)
	clk := clock.NewManual(t0)
	rec := &memoryRecorder{}
	m := NewManager(Config{
		Actors:   roster,
		Clock:    clk,
		Roller:   dice.NewSeededRoller(1),
		Recorder: rec,
	})
	m.SetInitiative("wizard-1", "goblin-1", "goblin-2")
	return m, clk, rec
}

func fireballAt(x, y float64) action.Binding {
	return action.Binding{
		Source: action.Ref{ActorID: "wizard-1"},
		Target: action.Target{Point: &shape.Point{X: x, Y: y}},
	}
}

func TestPointerWrapsIntoNewRound(t *testing.T) {
	m, _, _ := newTestManager(t)
	var rounds []int
	m.OnRoundStart = func(round int) { rounds = append(rounds, round) }

	m.NextEvent() // before Start: ignored
	m.Start()
	if m.Pointer().Round != 1 || m.Pointer().Event != 0 || m.CurrentActor() != "wizard-1" {
		t.Fatalf("Expected 1.0 for wizard-1, got %v %s", m.Pointer(), m.CurrentActor())
	}

	m.NextEvent()
	m.NextEvent()
	if m.CurrentActor() != "goblin-2" {
		t.Errorf("Expected goblin-2, got %s", m.CurrentActor())
	}
	m.NextEvent()
	if m.Round() != 2 || m.Event() != 0 {
		t.Errorf("Expected wrap to 2.0, got %d.%d", m.Round(), m.Event())
	}
	if len(rounds) != 2 || rounds[0] != 1 || rounds[1] != 2 {
		t.Errorf("Expected round starts [1 2], got %v", rounds)
	}
}

func TestImpactRollsDamageOnBurst(t *testing.T) {
	m, clk, rec := newTestManager(t)
	if _, err := m.Schedule(1, 0, "fireball", fireballAt(420, 20)); err != nil {
		t.Fatal(err)
	}

	var reports []*ImpactReport
	m.OnImpact = func(r *ImpactReport) { reports = append(reports, r) }

	m.Start()
	clk.Advance(500 * time.Millisecond)
	m.Tick()
	if len(reports) != 0 {
		t.Fatal("Expected no impact while traveling")
	}

	clk.Advance(500 * time.Millisecond)
	m.Tick()
	clk.Advance(2 * time.Second)
	m.Tick()

	if len(reports) != 1 {
		t.Fatalf("Expected exactly one impact, got %d", len(reports))
	}
	r := reports[0]
	if r.Roll == nil || r.Roll.Total < 8 || r.Roll.Total > 48 {
		t.Errorf("Expected 8d6 damage roll, got %+v", r.Roll)
	}
	if len(r.Targets) != 2 {
		t.Errorf("Expected two targets, got %d", len(r.Targets))
	}
	if m.Runner().Len() != 0 {
		t.Errorf("Expected finished instance to be removed, got %d live", m.Runner().Len())
	}

	kinds := rec.kinds()
	if len(kinds) != 2 || kinds[0] != RecordExecuted || kinds[1] != RecordImpact {
		t.Errorf("Expected executed then impact records, got %v", kinds)
	}
}

func TestImpactOnCompleteWithoutBurst(t *testing.T) {
	m, clk, _ := newTestManager(t)
	m.Schedule(1, 0, "magic_missile", action.Binding{
		Source: action.Ref{ActorID: "wizard-1"},
		Target: action.Target{ActorIDs: []string{"goblin-2"}},
	})

	impacts := 0
	m.OnImpact = func(r *ImpactReport) {
		impacts++
		if len(r.Targets) != 1 || r.Targets[0].ID != "goblin-2" {
			t.Errorf("Expected goblin-2 targeted, got %v", r.Targets)
		}
	}

	m.Start()
	clk.Advance(time.Second)
	m.Tick()
	if impacts != 1 {
		t.Errorf("Expected one impact, got %d", impacts)
	}
}

func TestExpiredEffectStopsVisual(t *testing.T) {
	m, _, rec := newTestManager(t)
	m.SetInitiative("wizard-1")

	lib, err := action.NewLibrary(action.Template{
		ID:        "wall_of_fire",
		Name:      "Wall of Fire",
		Kind:      action.KindSpell,
		Category:  action.CategoryFire,
		Targeting: action.Targeting{Type: action.TargetArea, Shape: "line", Range: 600, Width: 10},
		Motion:    action.Motion{Duration: 100, Burst: true, BurstDuration: 100, PersistDuration: 600000},
		Effect:    action.Effect{Persist: action.Persist{Type: action.DurationRounds, Value: 1}},
	})
	if err != nil {
		t.Fatal(err)
	}
	m.SetLibrary(lib)
	m.Schedule(1, 0, "wall_of_fire", fireballAt(400, 0))

	var expired []string
	m.OnExpired = func(ids []string) { expired = append(expired, ids...) }

	m.Start()
	if m.Scheduler().Len() != 1 || m.Runner().Len() != 1 {
		t.Fatalf("Expected one persistent effect and one visual, got %d and %d", m.Scheduler().Len(), m.Runner().Len())
	}
	id := m.Runner().Live()[0]
	inst, _ := m.Runner().Get(id)

	m.NextEvent()
	if len(expired) != 1 || expired[0] != id {
		t.Fatalf("Expected %s to expire, got %v", id, expired)
	}
	if m.Runner().Len() != 0 || inst.Phase() != effect.PhaseCancelled {
		t.Errorf("Expected linked visual to be stopped, phase %s", inst.Phase())
	}

	found := false
	for _, k := range rec.kinds() {
		if k == RecordExpired {
			found = true
		}
	}
	if !found {
		t.Error("Expected an expiry record")
	}
}

func TestBreakConcentration(t *testing.T) {
	m, _, _ := newTestManager(t)
	m.Schedule(1, 0, "spirit_guardians", action.Binding{Source: action.Ref{ActorID: "wizard-1"}})
	m.Schedule(1, 0, "cloud_of_daggers", fireballAt(400, 0))

	var msgs []string
	m.OnMessage = func(msg string) { msgs = append(msgs, msg) }

	m.Start()
	if m.Scheduler().Len() != 2 {
		t.Fatalf("Expected two concentration effects, got %d", m.Scheduler().Len())
	}

	if broken := m.BreakConcentration("goblin-1"); broken != nil {
		t.Errorf("Expected no-op for a goblin, got %v", broken)
	}
	broken := m.BreakConcentration("wizard-1")
	if len(broken) != 2 || m.Scheduler().Len() != 0 {
		t.Errorf("Expected both effects broken, got %v (left %d)", broken, m.Scheduler().Len())
	}
	if m.Runner().Len() != 0 {
		t.Errorf("Expected visuals stopped, got %d", m.Runner().Len())
	}
	if msgs[len(msgs)-1] != "Wizard loses concentration" {
		t.Errorf("Unexpected message: %s", msgs[len(msgs)-1])
	}
}

func TestEndCombatCancelsEverything(t *testing.T) {
	m, clk, _ := newTestManager(t)
	m.Schedule(1, 0, "fireball", fireballAt(420, 20))
	m.Schedule(1, 0, "spirit_guardians", action.Binding{Source: action.Ref{ActorID: "wizard-1"}})
	m.Schedule(3, 1, "fireball", fireballAt(0, 0))

	impacts := 0
	m.OnImpact = func(*ImpactReport) { impacts++ }

	m.Start()
	live := m.Runner().Live()
	m.EndCombat()

	if m.Runner().Len() != 0 || m.Queue().Len() != 0 || m.Scheduler().Len() != 0 {
		t.Errorf("Expected everything cleared, got runner=%d queue=%d persist=%d",
			m.Runner().Len(), m.Queue().Len(), m.Scheduler().Len())
	}
	for _, id := range live {
		if _, ok := m.Runner().Get(id); ok {
			t.Errorf("Expected %s to be gone", id)
		}
	}

	clk.Advance(10 * time.Second)
	m.Tick()
	m.NextEvent()
	if impacts != 0 {
		t.Errorf("Expected no callbacks after EndCombat, got %d impacts", impacts)
	}
	if m.Round() != 1 {
		t.Errorf("Expected pointer frozen after EndCombat, got round %d", m.Round())
	}
}

func TestScheduleUnknownTemplate(t *testing.T) {
	m, _, _ := newTestManager(t)
	if _, err := m.Schedule(1, 0, "wish", action.Binding{}); err == nil {
		t.Error("Expected unknown template error")
	}
}
