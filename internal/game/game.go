package game

import (
	"fmt"

	"go.uber.org/zap"

	"chosenoffset.com/battlefx/action"
	"chosenoffset.com/battlefx/clock"
	"chosenoffset.com/battlefx/entity"
	"chosenoffset.com/battlefx/internal/config"
	"chosenoffset.com/battlefx/internal/render"
	"chosenoffset.com/battlefx/shape"
	"chosenoffset.com/battlefx/timeline"
	"chosenoffset.com/battlefx/turn"
)

// Encounter is a fight ready to be shown
type Encounter struct {
	Name   string
	Combat *turn.Manager
	Clock  *clock.Pausable // Game time of the combat; paused with P or on focus loss
	Close  func() error    // Optional; releases whatever the launcher opened
}

// castMark remembers what an instance was cast as, for colors and areas.
type castMark struct {
	area     shape.Shape // nil when the action has no area
	category action.Category
}

// Game holds the battlefield view of one encounter.
type Game struct {
	ScreenWidth  int
	ScreenHeight int
	Renderer     render.Renderer
	InputMgr     render.InputManager
	Engine       render.Engine // Optional; used to pause while the window is unfocused

	Encounter *Encounter
	Camera    Camera
	Config    config.ViewerConfig

	// UI state
	Messages   []Message
	Flashes    []Flash
	ShowTrails bool
	Done       bool // The user left an ended combat

	casts       map[string]castMark
	userPaused  bool
	focusPaused bool
	grid        render.Image
	gridKey     gridKey
	logger      *zap.Logger
}

const (
	frameDT      = 1.0 / 60.0
	messageTime  = 3.0
	flashTime    = 0.6
	maxMessages  = 12
	panSpeed     = 8.0 // Pixels per frame
	zoomPerNotch = 0.1
)

// NewGame creates the view for enc and hooks the combat callbacks.
func NewGame(enc *Encounter, r render.Renderer, input render.InputManager, cfg config.ViewerConfig, logger *zap.Logger) *Game {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Game{
		ScreenWidth:  cfg.Width,
		ScreenHeight: cfg.Height,
		Renderer:     r,
		InputMgr:     input,
		Encounter:    enc,
		Camera:       Camera{Zoom: cfg.Scale},
		Config:       cfg,
		ShowTrails:   true,
		casts:        make(map[string]castMark),
		logger:       logger,
	}

	c := enc.Combat
	c.OnMessage = g.ShowMessage
	c.OnEvent = g.onEvent
	c.OnImpact = g.onImpact
	c.OnExpired = g.onExpired
	c.OnRoundStart = func(round int) {
		g.logger.Debug("round started", zap.Int("round", round))
	}

	g.centerCamera()
	return g
}

// centerCamera frames the middle of the actors.
func (g *Game) centerCamera() {
	actors := g.Encounter.Combat.Actors()
	if len(actors) == 0 {
		return
	}
	var sum shape.Point
	for _, a := range actors {
		sum = sum.Add(a.Position)
	}
	g.Camera.CenterOn(sum.Scale(1/float64(len(actors))), g.ScreenWidth, g.ScreenHeight)
}

// Update handles input, advances effects and fades UI elements.
func (g *Game) Update() error {
	g.updateMessages(frameDT)
	g.updateFlashes(frameDT)
	g.updateFocus()

	g.handleCombatKeys()
	g.handleCamera()

	combat := g.Encounter.Combat
	if combat.Started() && !combat.Ended() {
		combat.Tick()
	}
	g.pruneCasts()
	return nil
}

func (g *Game) handleCombatKeys() {
	in := g.InputMgr
	combat := g.Encounter.Combat

	if in.IsKeyJustPressed(render.KeyEscape) {
		if combat.Ended() {
			g.Done = true
			return
		}
		combat.EndCombat()
		clear(g.casts)
		g.ShowMessage("Combat ended. Press ESC again to leave.")
		return
	}
	if combat.Ended() {
		return
	}

	if in.IsKeyJustPressed(render.KeySpace) {
		if !combat.Started() {
			combat.Start()
		} else {
			combat.NextEvent()
		}
	}

	if in.IsKeyJustPressed(render.KeyC) && combat.Started() {
		actor := combat.CurrentActor()
		if actor != "" && len(combat.BreakConcentration(actor)) == 0 {
			g.ShowMessage(fmt.Sprintf("%s is not concentrating", g.nameOf(actor)))
		}
	}

	if in.IsKeyJustPressed(render.KeyP) {
		g.TogglePause()
	}
	if in.IsKeyJustPressed(render.KeyT) {
		g.ShowTrails = !g.ShowTrails
	}
}

func (g *Game) handleCamera() {
	in := g.InputMgr
	step := panSpeed / g.Camera.zoom()
	if in.IsKeyPressed(render.KeyW) || in.IsKeyPressed(render.KeyUp) {
		g.Camera.Y -= step
	}
	if in.IsKeyPressed(render.KeyS) || in.IsKeyPressed(render.KeyDown) {
		g.Camera.Y += step
	}
	if in.IsKeyPressed(render.KeyA) || in.IsKeyPressed(render.KeyLeft) {
		g.Camera.X -= step
	}
	if in.IsKeyPressed(render.KeyD) || in.IsKeyPressed(render.KeyRight) {
		g.Camera.X += step
	}

	if delta := in.WheelDelta(); delta != 0 {
		x, y := in.GetCursorPosition()
		g.Camera.ZoomAt(g.Camera.zoom()*(1+zoomPerNotch*delta), x, y)
	}
}

// TogglePause pauses or resumes game time.
func (g *Game) TogglePause() {
	g.userPaused = !g.userPaused
	g.syncPause()
}

// Paused reports whether game time is frozen.
func (g *Game) Paused() bool {
	return g.Encounter.Clock != nil && g.Encounter.Clock.IsPaused()
}

func (g *Game) updateFocus() {
	if g.Engine == nil {
		return
	}
	unfocused := !g.Engine.IsFocused()
	if unfocused != g.focusPaused {
		g.focusPaused = unfocused
		g.syncPause()
	}
}

func (g *Game) syncPause() {
	clk := g.Encounter.Clock
	if clk == nil {
		return
	}
	if g.userPaused || g.focusPaused {
		clk.Pause()
	} else {
		clk.Resume()
	}
}

// Layout returns the view's logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.ScreenWidth, g.ScreenHeight
}

func (g *Game) onEvent(round, event int, executions []timeline.Execution) {
	for _, exec := range executions {
		if exec.Err != nil || exec.Action == nil || exec.InstanceID == "" {
			continue
		}
		g.casts[exec.InstanceID] = castMark{area: exec.Action.Area, category: exec.Action.Category}
	}
}

func (g *Game) onImpact(report *turn.ImpactReport) {
	if len(report.Targets) == 0 {
		g.addFlash(report.Action.Aim, entity.GridUnit/2)
		return
	}
	for _, t := range report.Targets {
		g.addFlash(t.Position, t.HitRadius())
	}
}

func (g *Game) onExpired(ids []string) {
	for _, id := range ids {
		delete(g.casts, id)
	}
}

// pruneCasts forgets casts whose visual and lingering effect are both gone.
func (g *Game) pruneCasts() {
	combat := g.Encounter.Combat
	for id := range g.casts {
		if _, live := combat.Runner().Get(id); live {
			continue
		}
		if _, lingering := combat.Scheduler().Get(id); lingering {
			continue
		}
		delete(g.casts, id)
	}
}

func (g *Game) addFlash(pos shape.Point, radius float64) {
	g.Flashes = append(g.Flashes, Flash{Pos: pos, Radius: radius, TimeLeft: flashTime, MaxTime: flashTime})
}

func (g *Game) updateFlashes(dt float64) {
	active := g.Flashes[:0]
	for _, f := range g.Flashes {
		f.TimeLeft -= dt
		if f.TimeLeft > 0 {
			active = append(active, f)
		}
	}
	g.Flashes = active
}

func (g *Game) updateMessages(dt float64) {
	var active []Message
	for _, msg := range g.Messages {
		msg.TimeLeft -= dt
		if msg.TimeLeft > 0 {
			active = append(active, msg)
		}
	}
	g.Messages = active
}

// ShowMessage adds a new message to be displayed on screen.
func (g *Game) ShowMessage(text string) {
	g.Messages = append(g.Messages, Message{
		Text:     text,
		TimeLeft: messageTime,
		MaxTime:  messageTime,
	})
	if len(g.Messages) > maxMessages {
		g.Messages = g.Messages[len(g.Messages)-maxMessages:]
	}
	g.logger.Info("combat message", zap.String("text", text))
}

func (g *Game) nameOf(id string) string {
	if a, ok := entity.Find(g.Encounter.Combat.Actors(), id); ok && a.Name != "" {
		return a.Name
	}
	return id
}

// Close ends the combat if it is still running and releases the encounter.
func (g *Game) Close() error {
	if !g.Encounter.Combat.Ended() {
		g.Encounter.Combat.EndCombat()
	}
	if g.grid != nil {
		g.grid.Dispose()
		g.grid = nil
	}
	if g.Encounter.Close != nil {
		return g.Encounter.Close()
	}
	return nil
}
