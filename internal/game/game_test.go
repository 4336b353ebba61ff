package game

import (
	"errors"
	"image"
	"image/color"
	"math"
	"strings"
	"testing"
	"time"

	"chosenoffset.com/battlefx/action"
	"chosenoffset.com/battlefx/clock"
	"chosenoffset.com/battlefx/dice"
	"chosenoffset.com/battlefx/entity"
	"chosenoffset.com/battlefx/internal/config"
	"chosenoffset.com/battlefx/internal/render"
	"chosenoffset.com/battlefx/internal/scenario"
	"chosenoffset.com/battlefx/shape"
	"chosenoffset.com/battlefx/turn"
)

// fakeImage records nothing; it only has a size.
type fakeImage struct {
	w, h     int
	disposed bool
}

func (i *fakeImage) Bounds() image.Rectangle { return image.Rect(0, 0, i.w, i.h) }
func (i *fakeImage) Size() (int, int)        { return i.w, i.h }
func (i *fakeImage) Fill(color.Color)        {}
func (i *fakeImage) Clear()                  {}

func (i *fakeImage) DrawImage(render.Image, *render.DrawImageOptions) {}

func (i *fakeImage) DrawTriangles([]render.Vertex, []uint16, render.Image, *render.DrawTrianglesOptions) {
}

func (i *fakeImage) Dispose() { i.disposed = true }

// fakeRenderer counts calls by operation and keeps the text drawn.
type fakeRenderer struct {
	calls map[string]int
	texts []string
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{calls: make(map[string]int)}
}

func (r *fakeRenderer) NewImage(w, h int) render.Image {
	r.calls["NewImage"]++
	return &fakeImage{w: w, h: h}
}
func (r *fakeRenderer) FillCircle(render.Image, float32, float32, float32, color.Color) {
	r.calls["FillCircle"]++
}
func (r *fakeRenderer) StrokeCircle(render.Image, float32, float32, float32, float32, color.Color) {
	r.calls["StrokeCircle"]++
}
func (r *fakeRenderer) FillRect(render.Image, float32, float32, float32, float32, color.Color) {
	r.calls["FillRect"]++
}
func (r *fakeRenderer) StrokeRect(render.Image, float32, float32, float32, float32, float32, color.Color) {
	r.calls["StrokeRect"]++
}
func (r *fakeRenderer) StrokeLine(render.Image, float32, float32, float32, float32, float32, color.Color) {
	r.calls["StrokeLine"]++
}
func (r *fakeRenderer) FillPolygon(render.Image, []render.Vec, color.Color) {
	r.calls["FillPolygon"]++
}
func (r *fakeRenderer) StrokePolygon(render.Image, []render.Vec, float32, color.Color) {
	r.calls["StrokePolygon"]++
}
func (r *fakeRenderer) DrawText(_ render.Image, text string, _, _ int, _ color.Color, _ float64) {
	r.texts = append(r.texts, text)
}
func (r *fakeRenderer) MeasureText(text string, scale float64) (int, int) {
	return len(text) * 6, 16
}

func (r *fakeRenderer) drew(substr string) bool {
	for _, t := range r.texts {
		if strings.Contains(t, substr) {
			return true
		}
	}
	return false
}

// fakeInput reports the keys in just as pressed for one frame.
type fakeInput struct {
	just    map[render.Key]bool
	held    map[render.Key]bool
	click   bool
	cursorX int
	cursorY int
	wheel   float64
}

func newFakeInput() *fakeInput {
	return &fakeInput{just: make(map[render.Key]bool), held: make(map[render.Key]bool)}
}

func (in *fakeInput) IsKeyPressed(k render.Key) bool     { return in.held[k] }
func (in *fakeInput) IsKeyJustPressed(k render.Key) bool { return in.just[k] }
func (in *fakeInput) GetCursorPosition() (int, int)      { return in.cursorX, in.cursorY }
func (in *fakeInput) IsMouseButtonJustPressed(render.MouseButton) bool {
	return in.click
}
func (in *fakeInput) WheelDelta() float64 { return in.wheel }

// press runs one frame with key just pressed.
func (in *fakeInput) press(t *testing.T, update func() error, key render.Key) {
	t.Helper()
	in.just = map[render.Key]bool{key: true}
	if err := update(); err != nil {
		t.Fatalf("update after key %d: %v", key, err)
	}
	in.just = map[render.Key]bool{}
}

type fakeGeoM struct{ tx, ty float64 }

func (g *fakeGeoM) Translate(tx, ty float64) { g.tx += tx; g.ty += ty }
func (g *fakeGeoM) Scale(sx, sy float64)     {}
func (g *fakeGeoM) Reset()                   { g.tx, g.ty = 0, 0 }

func init() {
	render.NewGeoM = func() render.GeoM { return &fakeGeoM{} }
}

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func viewerConfig() config.ViewerConfig {
	return config.ViewerConfig{Title: "test", Width: 800, Height: 600, Scale: 1, ShowGrid: true, ShowBounds: true}
}

// newEncounter builds a cleric and two goblins with spirit guardians at 1.0
// and a fireball at 1.1.
func newEncounter(t *testing.T, manual *clock.Manual) *Encounter {
	t.Helper()
	roster := entity.NewRoster(
		entity.Actor{ID: "cleric-1", Name: "Cleric", Position: shape.Point{X: 100, Y: 100}, Faction: entity.FactionPlayer},
		entity.Actor{ID: "goblin-1", Name: "Goblin", Position: shape.Point{X: 400, Y: 100}, Size: entity.SizeSmall, Faction: entity.FactionEnemy},
		entity.Actor{ID: "goblin-2", Name: "Goblin", Position: shape.Point{X: 420, Y: 140}, Size: entity.SizeSmall, Faction: entity.FactionEnemy},
	)
	pausable := clock.NewPausable(manual)
	combat := turn.NewManager(turn.Config{Actors: roster, Clock: pausable, Roller: dice.NewSeededRoller(9)})
	combat.SetInitiative("cleric-1", "goblin-1", "goblin-2")

	if _, err := combat.Schedule(1, 0, "spirit_guardians", action.Binding{Source: action.Ref{ActorID: "cleric-1"}}); err != nil {
		t.Fatal(err)
	}
	_, err := combat.Schedule(1, 1, "fireball", action.Binding{
		Source: action.Ref{ActorID: "goblin-1"},
		Target: action.Target{Point: &shape.Point{X: 100, Y: 100}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return &Encounter{Name: "Test Fight", Combat: combat, Clock: pausable}
}

func TestSpaceStartsAndAdvancesCombat(t *testing.T) {
	manual := clock.NewManual(t0)
	enc := newEncounter(t, manual)
	in := newFakeInput()
	g := NewGame(enc, newFakeRenderer(), in, viewerConfig(), nil)

	in.press(t, g.Update, render.KeySpace)
	if !enc.Combat.Started() || enc.Combat.Round() != 1 || enc.Combat.Event() != 0 {
		t.Fatalf("Expected combat at 1.0, got %v", enc.Combat.Pointer())
	}
	if enc.Combat.Scheduler().Len() != 1 {
		t.Fatalf("Expected spirit guardians to linger, got %d", enc.Combat.Scheduler().Len())
	}

	in.press(t, g.Update, render.KeySpace)
	if enc.Combat.Event() != 1 {
		t.Fatalf("Expected event 1, got %d", enc.Combat.Event())
	}
	if len(g.casts) != 2 {
		t.Errorf("Expected both casts tracked, got %d", len(g.casts))
	}

	// Fireball travels 900ms, then bursts on the cleric
	manual.Advance(time.Second)
	if err := g.Update(); err != nil {
		t.Fatal(err)
	}
	// Spirit guardians burst with nobody but the caster inside, the
	// fireball lands on the cleric
	if len(g.Flashes) != 2 {
		t.Errorf("Expected two impact flashes, got %d", len(g.Flashes))
	}

	manual.Advance(time.Second)
	if err := g.Update(); err != nil {
		t.Fatal(err)
	}
	if len(g.casts) != 1 {
		t.Errorf("Expected the finished fireball to be forgotten, got %d casts", len(g.casts))
	}
}

func TestBreakConcentrationKey(t *testing.T) {
	manual := clock.NewManual(t0)
	enc := newEncounter(t, manual)
	in := newFakeInput()
	g := NewGame(enc, newFakeRenderer(), in, viewerConfig(), nil)

	in.press(t, g.Update, render.KeySpace)
	in.press(t, g.Update, render.KeyC)

	if enc.Combat.Scheduler().Len() != 0 {
		t.Errorf("Expected concentration effect removed, got %d", enc.Combat.Scheduler().Len())
	}
	if enc.Combat.Runner().Len() != 0 {
		t.Errorf("Expected the linked visual stopped, got %d live", enc.Combat.Runner().Len())
	}
}

func TestBreakConcentrationWithoutEffect(t *testing.T) {
	manual := clock.NewManual(t0)
	enc := newEncounter(t, manual)
	in := newFakeInput()
	g := NewGame(enc, newFakeRenderer(), in, viewerConfig(), nil)

	in.press(t, g.Update, render.KeySpace)
	in.press(t, g.Update, render.KeySpace) // goblin-1's event
	in.press(t, g.Update, render.KeyC)

	found := false
	for _, msg := range g.Messages {
		if msg.Text == "Goblin is not concentrating" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected not-concentrating message, got %+v", g.Messages)
	}
	if enc.Combat.Scheduler().Len() != 1 {
		t.Error("Expected the cleric's effect to remain")
	}
}

func TestPauseFreezesEffects(t *testing.T) {
	manual := clock.NewManual(t0)
	enc := newEncounter(t, manual)
	in := newFakeInput()
	g := NewGame(enc, newFakeRenderer(), in, viewerConfig(), nil)

	in.press(t, g.Update, render.KeySpace)
	in.press(t, g.Update, render.KeySpace)
	in.press(t, g.Update, render.KeyP)
	if !g.Paused() {
		t.Fatal("Expected paused")
	}

	var fireball string
	for _, id := range enc.Combat.Runner().Live() {
		if _, lingering := enc.Combat.Scheduler().Get(id); !lingering {
			fireball = id
		}
	}
	inst, ok := enc.Combat.Runner().Get(fireball)
	if !ok {
		t.Fatal("Expected a live fireball")
	}

	manual.Advance(5 * time.Second)
	if err := g.Update(); err != nil {
		t.Fatal(err)
	}
	if inst.Progress() != 0 {
		t.Errorf("Expected no progress while paused, got %v", inst.Progress())
	}

	in.press(t, g.Update, render.KeyP)
	manual.Advance(450 * time.Millisecond)
	if err := g.Update(); err != nil {
		t.Fatal(err)
	}
	if math.Abs(inst.Progress()-0.5) > 1e-9 {
		t.Errorf("Expected halfway after resuming, got %v", inst.Progress())
	}
}

type fakeEngine struct{ focused bool }

func (e *fakeEngine) SetWindowSize(int, int)      {}
func (e *fakeEngine) SetWindowTitle(string)       {}
func (e *fakeEngine) SetWindowResizable(bool)     {}
func (e *fakeEngine) SetRunnableOnUnfocused(bool) {}
func (e *fakeEngine) IsFocused() bool             { return e.focused }
func (e *fakeEngine) RunGame(render.Game) error   { return nil }

func TestFocusLossPauses(t *testing.T) {
	enc := newEncounter(t, clock.NewManual(t0))
	engine := &fakeEngine{focused: false}
	g := NewGame(enc, newFakeRenderer(), newFakeInput(), viewerConfig(), nil)
	g.Engine = engine

	if err := g.Update(); err != nil {
		t.Fatal(err)
	}
	if !g.Paused() {
		t.Fatal("Expected pause while unfocused")
	}
	engine.focused = true
	if err := g.Update(); err != nil {
		t.Fatal(err)
	}
	if g.Paused() {
		t.Fatal("Expected resume on focus")
	}
}

func TestEscapeEndsThenLeaves(t *testing.T) {
	enc := newEncounter(t, clock.NewManual(t0))
	in := newFakeInput()
	g := NewGame(enc, newFakeRenderer(), in, viewerConfig(), nil)

	in.press(t, g.Update, render.KeySpace)
	in.press(t, g.Update, render.KeyEscape)
	if !enc.Combat.Ended() || g.Done {
		t.Fatalf("Expected ended but not done: ended=%v done=%v", enc.Combat.Ended(), g.Done)
	}
	if enc.Combat.Runner().Len() != 0 || enc.Combat.Scheduler().Len() != 0 {
		t.Error("Expected everything stopped")
	}

	in.press(t, g.Update, render.KeySpace)
	if enc.Combat.Event() != 0 {
		t.Error("Expected no event after combat ended")
	}

	in.press(t, g.Update, render.KeyEscape)
	if !g.Done {
		t.Error("Expected done after second escape")
	}
}

func TestDrawShowsBattlefield(t *testing.T) {
	enc := newEncounter(t, clock.NewManual(t0))
	r := newFakeRenderer()
	in := newFakeInput()
	g := NewGame(enc, r, in, viewerConfig(), nil)
	screen := &fakeImage{w: 800, h: 600}

	g.Draw(screen)
	if !r.drew("Press SPACE to begin") || !r.drew("Test Fight") {
		t.Errorf("Expected title and prompt, got %v", r.texts)
	}
	if r.calls["FillCircle"] < 3 {
		t.Errorf("Expected a token per actor, got %d", r.calls["FillCircle"])
	}
	if r.calls["NewImage"] != 1 {
		t.Errorf("Expected grid image, got %d", r.calls["NewImage"])
	}

	in.press(t, g.Update, render.KeySpace)
	r.texts = nil
	g.Draw(screen)
	if !r.drew("Round 1  Event 0  Cleric's turn") {
		t.Errorf("Expected turn status, got %v", r.texts)
	}
	if !r.drew("10 rounds left (C)") {
		t.Errorf("Expected lingering label, got %v", r.texts)
	}
	if r.calls["NewImage"] != 1 {
		t.Error("Expected the grid image to be reused")
	}
}

func TestDrawConeUsesPolygon(t *testing.T) {
	manual := clock.NewManual(t0)
	roster := entity.NewRoster(
		entity.Actor{ID: "a", Position: shape.Point{}},
		entity.Actor{ID: "b", Position: shape.Point{X: 100}},
	)
	combat := turn.NewManager(turn.Config{Actors: roster, Clock: manual})
	combat.SetInitiative("a", "b")
	if _, err := combat.Schedule(1, 0, "burning_hands", action.Binding{
		Source: action.Ref{ActorID: "a"},
		Target: action.Target{Point: &shape.Point{X: 100}},
	}); err != nil {
		t.Fatal(err)
	}

	r := newFakeRenderer()
	in := newFakeInput()
	g := NewGame(&Encounter{Name: "cone", Combat: combat}, r, in, viewerConfig(), nil)
	in.press(t, g.Update, render.KeySpace)
	g.Draw(&fakeImage{w: 800, h: 600})

	if r.calls["FillPolygon"] != 1 || r.calls["StrokePolygon"] != 1 {
		t.Errorf("Expected one cone polygon, got %v", r.calls)
	}
}

func TestCameraRoundTrip(t *testing.T) {
	c := Camera{X: 100, Y: -50, Zoom: 2}
	x, y := c.ToScreen(shape.Point{X: 150, Y: 0})
	if x != 100 || y != 100 {
		t.Fatalf("Expected (100,100), got (%v,%v)", x, y)
	}
	if p := c.ToWorld(100, 100); p != (shape.Point{X: 150, Y: 0}) {
		t.Fatalf("Expected (150,0), got %+v", p)
	}

	before := c.ToWorld(200, 300)
	c.ZoomAt(4, 200, 300)
	if after := c.ToWorld(200, 300); after != before {
		t.Errorf("Expected zoom to keep %+v under the cursor, got %+v", before, after)
	}
	c.ZoomAt(100, 0, 0)
	if c.Zoom != maxZoom {
		t.Errorf("Expected zoom clamped to %v, got %v", maxZoom, c.Zoom)
	}
}

func TestGridOffset(t *testing.T) {
	tests := []struct {
		pixels, cell, want float64
	}{
		{0, 50, 0},
		{30, 50, -30},
		{-30, 50, -20},
		{120, 50, -20},
	}
	for _, tt := range tests {
		if got := gridOffset(tt.pixels, tt.cell); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("gridOffset(%v, %v) = %v, want %v", tt.pixels, tt.cell, got, tt.want)
		}
	}
}

func TestPickerNavigation(t *testing.T) {
	entries := []scenario.Entry{{Name: "Alpha"}, {Name: "Beta"}, {Name: "Gamma"}}
	in := newFakeInput()
	p := NewPicker(entries, newFakeRenderer(), in, 800, 600)

	in.just = map[render.Key]bool{render.KeyUp: true}
	if ok, _ := p.Update(); ok {
		t.Fatal("Expected no selection on navigation")
	}
	if p.Selected() != 2 {
		t.Fatalf("Expected wrap to last entry, got %d", p.Selected())
	}

	in.just = map[render.Key]bool{render.KeySpace: true}
	ok, entry := p.Update()
	if !ok || entry.Name != "Gamma" {
		t.Fatalf("Expected Gamma, got %v %+v", ok, entry)
	}

	in.just = map[render.Key]bool{}
	in.click = true
	in.cursorX, in.cursorY = 60, pickerListY+pickerEntryH+5
	if ok, _ := p.Update(); ok || p.Selected() != 1 {
		t.Fatalf("Expected first click to select Beta, got %d", p.Selected())
	}
	if ok, entry := p.Update(); !ok || entry.Name != "Beta" {
		t.Fatalf("Expected second click to start Beta, got %v %+v", ok, entry)
	}
}

func TestManagerLaunchAndReturn(t *testing.T) {
	in := newFakeInput()
	closed := 0
	launch := func(e scenario.Entry) (*Encounter, error) {
		if e.Name == "broken" {
			return nil, errors.New("bad file")
		}
		enc := newEncounter(t, clock.NewManual(t0))
		enc.Close = func() error { closed++; return nil }
		return enc, nil
	}
	entries := []scenario.Entry{{Name: "broken"}, {Name: "good"}}
	m := NewManager(entries, newFakeRenderer(), in, nil, viewerConfig(), launch, nil)

	in.press(t, m.Update, render.KeySpace)
	if m.State != StatePicker || m.Picker.err == "" {
		t.Fatalf("Expected launch failure shown in picker, state %v", m.State)
	}

	in.press(t, m.Update, render.KeyDown)
	in.press(t, m.Update, render.KeySpace)
	if m.State != StateCombat || m.Game == nil {
		t.Fatalf("Expected combat state, got %v", m.State)
	}
	if m.Game.Encounter.Name != "Test Fight" {
		t.Errorf("Expected encounter name kept, got %q", m.Game.Encounter.Name)
	}

	in.press(t, m.Update, render.KeyEscape)
	in.press(t, m.Update, render.KeyEscape)
	if m.State != StatePicker || m.Game != nil || closed != 1 {
		t.Fatalf("Expected return to picker with encounter closed, state %v closed %d", m.State, closed)
	}

	in.just = map[render.Key]bool{render.KeyEscape: true}
	if err := m.Update(); !errors.Is(err, render.ErrTerminated) {
		t.Fatalf("Expected ErrTerminated from picker escape, got %v", err)
	}
}

func TestLayoutResizes(t *testing.T) {
	m := NewManager(nil, newFakeRenderer(), newFakeInput(), nil, viewerConfig(), nil, nil)
	w, h := m.Layout(1024, 768)
	if w != 1024 || h != 768 || m.ScreenWidth != 1024 || m.Picker.screenHeight != 768 {
		t.Errorf("Expected resize to 1024x768, got %dx%d", w, h)
	}
}

func TestManagerRestartKey(t *testing.T) {
	in := newFakeInput()
	launched, closed := 0, 0
	broken := false
	launch := func(e scenario.Entry) (*Encounter, error) {
		if broken {
			return nil, errors.New("file went missing")
		}
		launched++
		enc := newEncounter(t, clock.NewManual(t0))
		enc.Close = func() error { closed++; return nil }
		return enc, nil
	}
	m := NewManager([]scenario.Entry{{Name: "fight", Path: "fight.yaml"}}, newFakeRenderer(), in, nil, viewerConfig(), launch, nil)

	in.press(t, m.Update, render.KeySpace)
	first := m.Game
	in.press(t, m.Update, render.KeySpace)
	if !first.Encounter.Combat.Started() {
		t.Fatal("Expected combat to start")
	}

	in.press(t, m.Update, render.KeyR)
	if m.State != StateCombat || m.Game == nil || m.Game == first {
		t.Fatalf("Expected a fresh game after restart, state %v", m.State)
	}
	if launched != 2 || closed != 1 {
		t.Errorf("Expected 2 launches and 1 close, got %d and %d", launched, closed)
	}
	if m.Game.Encounter.Combat.Started() {
		t.Error("Expected the restarted combat to wait for SPACE")
	}

	broken = true
	current := m.Game
	in.press(t, m.Update, render.KeyR)
	if m.Game != current || closed != 1 {
		t.Errorf("Expected a failed restart to keep the running game, closed %d", closed)
	}
	found := false
	for _, msg := range m.Game.Messages {
		if strings.Contains(msg.Text, "Restart failed") {
			found = true
		}
	}
	if !found {
		t.Error("Expected a restart failure message")
	}
}

func TestHUDShowsNearestFoe(t *testing.T) {
	enc := newEncounter(t, clock.NewManual(t0))
	r := newFakeRenderer()
	in := newFakeInput()
	g := NewGame(enc, r, in, viewerConfig(), nil)
	screen := &fakeImage{w: 800, h: 600}

	g.Draw(screen)
	if r.drew("Nearest foe") {
		t.Error("Expected no foe line before combat starts")
	}

	in.press(t, g.Update, render.KeySpace)
	r.texts = nil
	g.Draw(screen)
	if !r.drew("Nearest foe: Goblin (30 ft)") {
		t.Errorf("Expected the cleric's nearest goblin, got %v", r.texts)
	}

	in.press(t, g.Update, render.KeySpace)
	r.texts = nil
	g.Draw(screen)
	if !r.drew("Nearest foe: Cleric (30 ft)") {
		t.Errorf("Expected the goblin's nearest foe, got %v", r.texts)
	}
}

func TestHostileRingsFollowTurn(t *testing.T) {
	roster := entity.NewRoster(
		entity.Actor{ID: "fighter", Position: shape.Point{}, Faction: entity.FactionPlayer},
		entity.Actor{ID: "orc-1", Position: shape.Point{X: 200}, Faction: entity.FactionEnemy},
		entity.Actor{ID: "orc-2", Position: shape.Point{X: 300}, Faction: entity.FactionEnemy},
		entity.Actor{ID: "merchant", Position: shape.Point{X: 50}, Faction: entity.FactionNeutral},
	)
	combat := turn.NewManager(turn.Config{Actors: roster, Clock: clock.NewManual(t0)})
	combat.SetInitiative("fighter", "orc-1", "orc-2")

	r := newFakeRenderer()
	in := newFakeInput()
	g := NewGame(&Encounter{Name: "rings", Combat: combat}, r, in, viewerConfig(), nil)
	screen := &fakeImage{w: 800, h: 600}

	g.Draw(screen)
	if r.calls["StrokeCircle"] != 4 {
		t.Fatalf("Expected only token outlines before combat, got %d", r.calls["StrokeCircle"])
	}

	in.press(t, g.Update, render.KeySpace)
	r.calls = make(map[string]int)
	g.Draw(screen)
	// Four outlines, the turn ring, and one ring per orc
	if r.calls["StrokeCircle"] != 7 {
		t.Errorf("Expected 7 circles on the fighter's turn, got %d", r.calls["StrokeCircle"])
	}

	in.press(t, g.Update, render.KeySpace)
	r.calls = make(map[string]int)
	g.Draw(screen)
	// The other orc is an ally, the merchant is neutral
	if r.calls["StrokeCircle"] != 6 {
		t.Errorf("Expected 6 circles on an orc's turn, got %d", r.calls["StrokeCircle"])
	}
}

func TestNearestFoe(t *testing.T) {
	cleric := entity.Actor{ID: "cleric", Faction: entity.FactionPlayer}
	actors := []entity.Actor{
		cleric,
		{ID: "far", Position: shape.Point{X: 500}, Faction: entity.FactionEnemy},
		{ID: "near", Position: shape.Point{X: 0, Y: 150}, Faction: entity.FactionEnemy},
		{ID: "bystander", Position: shape.Point{X: 10}, Faction: entity.FactionNeutral},
		{ID: "friend", Position: shape.Point{X: 5}, Faction: entity.FactionPlayer},
	}

	foe, ok := nearestFoe(cleric, actors)
	if !ok || foe.ID != "near" {
		t.Errorf("Expected near, got %+v (%v)", foe, ok)
	}
	if _, ok := nearestFoe(cleric, actors[3:]); ok {
		t.Error("Expected no foe among neutrals and allies")
	}
}
