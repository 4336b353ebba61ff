package journal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"chosenoffset.com/battlefx/action"
	"chosenoffset.com/battlefx/clock"
	"chosenoffset.com/battlefx/dice"
	"chosenoffset.com/battlefx/entity"
	"chosenoffset.com/battlefx/shape"
	"chosenoffset.com/battlefx/turn"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func openTestJournal(t *testing.T, path string) *Journal {
	t.Helper()
	j, err := Open(path)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestRecordAndHistory(t *testing.T) {
	j := openTestJournal(t, ":memory:")
	ctx := context.Background()

	recs := []turn.Record{
		{Kind: turn.RecordExecuted, Round: 1, Event: 0, At: t0, ActionID: "a1", TemplateID: "fireball", SourceID: "wizard-1", Targets: []string{"g1", "g2"}},
		{Kind: turn.RecordImpact, Round: 1, Event: 0, At: t0.Add(time.Second), ActionID: "a1", Total: 27, Detail: "[6, 5, 4]"},
		{Kind: turn.RecordExpired, Round: 3, Event: 1, At: t0.Add(time.Minute), EffectIDs: []string{"z1"}},
	}
	for _, rec := range recs {
		if err := j.Record(ctx, rec); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	got, err := j.History(ctx)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(got) != len(recs) {
		t.Fatalf("expected %d records, got %d", len(recs), len(got))
	}
	if got[0].TemplateID != "fireball" || len(got[0].Targets) != 2 || got[0].Targets[1] != "g2" {
		t.Fatalf("unexpected first record: %+v", got[0])
	}
	if got[1].Total != 27 || got[1].Detail != "[6, 5, 4]" {
		t.Fatalf("unexpected impact record: %+v", got[1])
	}
	if !got[2].At.Equal(t0.Add(time.Minute)) || len(got[2].EffectIDs) != 1 {
		t.Fatalf("unexpected expiry record: %+v", got[2])
	}
}

func TestSessionsAreSeparate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "combat.db")
	ctx := context.Background()

	first := openTestJournal(t, path)
	if err := first.Record(ctx, turn.Record{Kind: turn.RecordEnded, At: t0}); err != nil {
		t.Fatal(err)
	}
	_ = first.Close()

	second := openTestJournal(t, path)
	if err := second.Record(ctx, turn.Record{Kind: turn.RecordExecuted, At: t0}); err != nil {
		t.Fatal(err)
	}

	sessions, err := second.Sessions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 2 || sessions[1] != second.Session() {
		t.Fatalf("expected two sessions ending with %s, got %v", second.Session(), sessions)
	}

	history, err := second.History(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || history[0].Kind != turn.RecordExecuted {
		t.Fatalf("expected only the second session's record, got %+v", history)
	}
}

func TestRecordHonorsCancelledContext(t *testing.T) {
	j := openTestJournal(t, ":memory:")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := j.Record(ctx, turn.Record{Kind: turn.RecordEnded}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestJournalRecordsCombat(t *testing.T) {
	j := openTestJournal(t, ":memory:")
	clk := clock.NewManual(t0)
	m := turn.NewManager(turn.Config{
		Actors: entity.NewRoster(
			entity.Actor{ID: "wizard-1", Position: shape.Point{}},
			entity.Actor{ID: "goblin-1", Position: shape.Point{X: 300}},
		),
		Clock:    clk,
		Roller:   dice.NewSeededRoller(3),
		Recorder: j,
	})
	m.SetInitiative("wizard-1", "goblin-1")
	_, err := m.Schedule(1, 0, "fireball", action.Binding{
		Source: action.Ref{ActorID: "wizard-1"},
		Target: action.Target{Point: &shape.Point{X: 300}},
	})
	if err != nil {
		t.Fatal(err)
	}

	m.Start()
	clk.Advance(time.Second)
	m.Tick()
	m.EndCombat()

	history, err := j.History(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	var kinds []turn.RecordKind
	for _, rec := range history {
		kinds = append(kinds, rec.Kind)
	}
	want := []turn.RecordKind{turn.RecordExecuted, turn.RecordImpact, turn.RecordEnded}
	if len(kinds) != len(want) {
		t.Fatalf("expected %v, got %v", want, kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, kinds)
		}
	}
	if history[1].Total < 8 || history[1].Total > 48 {
		t.Fatalf("expected fireball damage in range, got %d", history[1].Total)
	}
}
