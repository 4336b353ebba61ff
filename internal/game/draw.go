package game

import (
	"fmt"
	"image/color"
	"math"

	"chosenoffset.com/battlefx/action"
	"chosenoffset.com/battlefx/effect"
	"chosenoffset.com/battlefx/entity"
	"chosenoffset.com/battlefx/internal/render"
	"chosenoffset.com/battlefx/persist"
	"chosenoffset.com/battlefx/shape"
)

var (
	backgroundColor = color.NRGBA{24, 26, 32, 255}
	gridColor       = color.NRGBA{48, 52, 60, 255}
	boundsColor     = color.NRGBA{255, 255, 255, 90}
	turnRingColor   = color.NRGBA{255, 215, 80, 255}
	hostileRing     = color.NRGBA{230, 70, 60, 200}
	textColor       = color.NRGBA{255, 255, 255, 255}
	dimTextColor    = color.NRGBA{150, 150, 150, 255}
	pausedColor     = color.NRGBA{255, 120, 80, 255}
)

var factionColors = map[entity.Faction]color.NRGBA{
	entity.FactionPlayer:  {90, 160, 255, 255},
	entity.FactionEnemy:   {230, 80, 70, 255},
	entity.FactionNeutral: {170, 170, 170, 255},
}

var categoryColors = map[action.Category]color.NRGBA{
	action.CategoryFire:      {255, 120, 30, 255},
	action.CategoryCold:      {120, 200, 255, 255},
	action.CategoryLightning: {250, 240, 120, 255},
	action.CategoryPoison:    {120, 220, 90, 255},
	action.CategoryDivine:    {255, 240, 190, 255},
	action.CategoryForce:     {190, 130, 255, 255},
	action.CategoryHealing:   {120, 255, 170, 255},
	action.CategoryWeapon:    {220, 220, 220, 255},
}

var defaultEffectColor = color.NRGBA{255, 255, 255, 255}

const (
	areaSamples     = 96
	projectileSize  = 6 // Pixels
	defaultBurst    = entity.GridUnit / 2
	persistPulse    = 1.2 // Seconds per pulse
	areaStrokeWidth = 2
)

type gridKey struct {
	w, h int
	cell float32
}

func fade(c color.NRGBA, alpha float64) color.NRGBA {
	c.A = uint8(float64(c.A) * shape.Clamp(alpha, 0, 1))
	return c
}

func (g *Game) categoryColor(id string) color.NRGBA {
	if c, ok := categoryColors[g.casts[id].category]; ok {
		return c
	}
	return defaultEffectColor
}

// Draw renders the battlefield to the screen.
func (g *Game) Draw(screen render.Image) {
	screen.Fill(backgroundColor)

	if g.Config.ShowGrid {
		g.drawGrid(screen)
	}
	g.drawPersistent(screen)
	g.drawCastAreas(screen)
	g.drawActors(screen)
	g.drawEffects(screen)
	g.drawFlashes(screen)
	g.drawHUD(screen)
	g.drawUI(screen)
}

// drawGrid draws one 5-foot square per cell. The grid is rendered once per
// size and zoom and shifted with the camera.
func (g *Game) drawGrid(screen render.Image) {
	cell := g.Camera.Length(entity.GridUnit)
	if cell < 4 {
		return
	}

	w, h := screen.Size()
	key := gridKey{w: w, h: h, cell: cell}
	if g.grid == nil || g.gridKey != key {
		if g.grid != nil {
			g.grid.Dispose()
		}
		gw, gh := w+int(cell)+1, h+int(cell)+1
		g.grid = g.Renderer.NewImage(gw, gh)
		for x := float32(0); x <= float32(gw); x += cell {
			g.Renderer.StrokeLine(g.grid, x, 0, x, float32(gh), 1, gridColor)
		}
		for y := float32(0); y <= float32(gh); y += cell {
			g.Renderer.StrokeLine(g.grid, 0, y, float32(gw), y, 1, gridColor)
		}
		g.gridKey = key
	}

	opts := &render.DrawImageOptions{GeoM: render.NewGeoM()}
	opts.GeoM.Translate(gridOffset(g.Camera.X*g.Camera.zoom(), float64(cell)), gridOffset(g.Camera.Y*g.Camera.zoom(), float64(cell)))
	screen.DrawImage(g.grid, opts)
}

// gridOffset returns the shift in (-cell, 0] that lines the grid up with a
// camera scrolled by pixels.
func gridOffset(pixels, cell float64) float64 {
	off := -math.Mod(pixels, cell)
	if off > 0 {
		off -= cell
	}
	return off
}

func (g *Game) drawArea(screen render.Image, s shape.Shape, clr color.NRGBA, alpha float64) {
	fill := fade(clr, 0.25*alpha)
	stroke := fade(clr, alpha)

	switch a := s.(type) {
	case shape.Circle:
		x, y := g.Camera.ToScreen(a.Center)
		r := g.Camera.Length(a.Radius)
		g.Renderer.FillCircle(screen, x, y, r, fill)
		g.Renderer.StrokeCircle(screen, x, y, r, areaStrokeWidth, stroke)
	case shape.Square:
		b := a.Bounds()
		x, y := g.Camera.ToScreen(b.Min)
		w, h := g.Camera.Length(b.Width()), g.Camera.Length(b.Height())
		g.Renderer.FillRect(screen, x, y, w, h, fill)
		g.Renderer.StrokeRect(screen, x, y, w, h, areaStrokeWidth, stroke)
	default:
		pts := g.screenPoints(shape.PerimeterSamples(s, areaSamples))
		g.Renderer.FillPolygon(screen, pts, fill)
		g.Renderer.StrokePolygon(screen, pts, areaStrokeWidth, stroke)
	}

	if g.Config.ShowBounds {
		b := shape.BoundsOf(s)
		x, y := g.Camera.ToScreen(b.Min)
		g.Renderer.StrokeRect(screen, x, y, g.Camera.Length(b.Width()), g.Camera.Length(b.Height()), 1, boundsColor)
	}
}

func (g *Game) screenPoints(pts []shape.Point) []render.Vec {
	out := make([]render.Vec, len(pts))
	for i, p := range pts {
		out[i].X, out[i].Y = g.Camera.ToScreen(p)
	}
	return out
}

// drawPersistent draws lingering effects with their remaining duration.
func (g *Game) drawPersistent(screen render.Image) {
	sched := g.Encounter.Combat.Scheduler()
	for _, e := range sched.All() {
		clr := g.categoryColor(e.ID)
		area := e.Area
		if area == nil {
			area = shape.Circle{Center: e.Position, Radius: defaultBurst}
		}
		g.drawArea(screen, area, clr, 0.8)

		label := string(e.DurationType)
		if left, ok := sched.Remaining(e.ID); ok {
			label = remainingLabel(e.DurationType, left)
		}
		if e.Concentration {
			label += " (C)"
		}
		x, y := g.Camera.ToScreen(shape.CenterOf(area))
		g.drawCenteredText(screen, label, x, y, clr)
	}
}

func remainingLabel(t action.DurationType, left int) string {
	if t == action.DurationTime {
		return fmt.Sprintf("%.1fs left", float64(left)/1000)
	}
	return fmt.Sprintf("%d %s left", left, t)
}

// drawCastAreas outlines the areas of casts that are still animating.
func (g *Game) drawCastAreas(screen render.Image) {
	sched := g.Encounter.Combat.Scheduler()
	for id, mark := range g.casts {
		if mark.area == nil {
			continue
		}
		if _, lingering := sched.Get(id); lingering {
			continue
		}
		g.drawArea(screen, mark.area, g.categoryColor(id), 0.5)
	}
}

func (g *Game) drawActors(screen render.Image) {
	combat := g.Encounter.Combat
	current := combat.CurrentActor()
	actors := combat.Actors()
	turnActor, hasTurn := entity.Find(actors, current)
	hasTurn = hasTurn && combat.Started() && !combat.Ended()
	for _, a := range actors {
		x, y := g.Camera.ToScreen(a.Position)
		r := g.Camera.Length(a.HitRadius())

		clr, ok := factionColors[a.Faction]
		if !ok {
			clr = factionColors[entity.FactionNeutral]
		}
		g.Renderer.FillCircle(screen, x, y, r, fade(clr, 0.85))
		g.Renderer.StrokeCircle(screen, x, y, r, 2, clr)
		switch {
		case hasTurn && a.ID == current:
			g.Renderer.StrokeCircle(screen, x, y, r+4, 3, turnRingColor)
		case hasTurn && turnActor.IsHostileTo(a):
			g.Renderer.StrokeCircle(screen, x, y, r+4, 2, hostileRing)
		}

		g.drawCenteredText(screen, displayName(a), x, y+r+4, textColor)
	}
}

// drawEffects draws every live instance according to its phase.
func (g *Game) drawEffects(screen render.Image) {
	runner := g.Encounter.Combat.Runner()
	for _, st := range runner.States() {
		inst, ok := runner.Get(st.ID)
		if !ok {
			continue
		}
		motion := inst.Spec().Motion
		clr := g.categoryColor(st.ID)

		switch st.Phase {
		case effect.PhaseTraveling:
			if g.ShowTrails {
				for i, p := range st.Trail {
					x, y := g.Camera.ToScreen(p)
					t := float64(i) / float64(len(st.Trail))
					g.Renderer.FillCircle(screen, x, y, projectileSize*float32(1-t*0.7), fade(clr, 0.7*(1-t)))
				}
			}
			x, y := g.Camera.ToScreen(st.Position)
			g.Renderer.FillCircle(screen, x, y, projectileSize, clr)

		case effect.PhaseBursting:
			t := phaseFraction(st.PhaseElapsed.Seconds(), motion.BurstDuration.Duration().Seconds())
			size := motion.BurstSize
			if size <= 0 {
				size = defaultBurst
			}
			x, y := g.Camera.ToScreen(st.Position)
			r := g.Camera.Length(size * (0.3 + 0.7*t))
			g.Renderer.FillCircle(screen, x, y, r, fade(clr, 0.5*(1-t)))
			g.Renderer.StrokeCircle(screen, x, y, r, 3, fade(clr, 1-t))

		case effect.PhasePersisting:
			pulse := 0.5 + 0.5*math.Sin(2*math.Pi*st.PhaseElapsed.Seconds()/persistPulse)
			size := motion.BurstSize
			if size <= 0 {
				size = defaultBurst
			}
			x, y := g.Camera.ToScreen(st.Position)
			r := g.Camera.Length(size * (0.9 + 0.1*pulse))
			g.Renderer.StrokeCircle(screen, x, y, r, 2, fade(clr, 0.4+0.4*pulse))
		}
	}
}

func phaseFraction(elapsed, total float64) float64 {
	if total <= 0 {
		return 1
	}
	return shape.Clamp(elapsed/total, 0, 1)
}

func (g *Game) drawFlashes(screen render.Image) {
	for _, f := range g.Flashes {
		t := 1 - f.TimeLeft/f.MaxTime
		x, y := g.Camera.ToScreen(f.Pos)
		r := g.Camera.Length(f.Radius * (1 + 0.5*t))
		g.Renderer.StrokeCircle(screen, x, y, r, 3, fade(color.NRGBA{255, 255, 255, 255}, 1-t))
	}
}

func (g *Game) drawHUD(screen render.Image) {
	combat := g.Encounter.Combat

	status := "Press SPACE to begin"
	switch {
	case combat.Ended():
		status = fmt.Sprintf("Combat over after round %d", combat.Round())
	case combat.Started():
		status = fmt.Sprintf("Round %d  Event %d  %s's turn", combat.Round(), combat.Event(), g.nameOf(combat.CurrentActor()))
	}

	g.Renderer.DrawText(screen, g.Encounter.Name, 10, 8, textColor, 1.2)
	g.Renderer.DrawText(screen, status, 10, 26, textColor, 1.0)
	g.Renderer.DrawText(screen, persistSummary(combat.Runner().Len(), combat.Scheduler()), 10, 44, dimTextColor, 1.0)
	if combat.Started() && !combat.Ended() {
		actors := combat.Actors()
		if cur, ok := entity.Find(actors, combat.CurrentActor()); ok {
			if foe, ok := nearestFoe(cur, actors); ok {
				feet := math.Round(cur.DistanceTo(foe) / entity.GridUnit * 5)
				g.Renderer.DrawText(screen, fmt.Sprintf("Nearest foe: %s (%.0f ft)", displayName(foe), feet), 10, 62, dimTextColor, 1.0)
			}
		}
	}
	if g.Paused() {
		g.Renderer.DrawText(screen, "PAUSED", g.ScreenWidth-70, 8, pausedColor, 1.2)
	}

	help := "SPACE next event  C break concentration  P pause  T trails  R restart  ESC end combat"
	if combat.Ended() {
		help = "R restart  ESC back to scenarios"
	}
	g.Renderer.DrawText(screen, help, 10, g.ScreenHeight-24, dimTextColor, 1.0)
}

// nearestFoe returns the closest actor hostile to cur.
func nearestFoe(cur entity.Actor, actors []entity.Actor) (entity.Actor, bool) {
	var best entity.Actor
	found := false
	for _, a := range actors {
		if !cur.IsHostileTo(a) {
			continue
		}
		if !found || cur.DistanceTo(a) < cur.DistanceTo(best) {
			best, found = a, true
		}
	}
	return best, found
}

func displayName(a entity.Actor) string {
	if a.Name == "" {
		return a.ID
	}
	return a.Name
}

func persistSummary(live int, sched *persist.Scheduler) string {
	return fmt.Sprintf("Effects: %d animating, %d lingering", live, sched.Len())
}

func (g *Game) drawUI(screen render.Image) {
	// Draw on-screen messages
	y := 88.0
	for _, msg := range g.Messages {
		alpha := msg.TimeLeft / msg.MaxTime
		g.Renderer.DrawText(screen, msg.Text, 10, int(y), fade(color.NRGBA{255, 255, 255, 255}, alpha), 1.0)
		y += 18
	}
}

func (g *Game) drawCenteredText(screen render.Image, text string, x, y float32, clr color.Color) {
	w, _ := g.Renderer.MeasureText(text, 1.0)
	g.Renderer.DrawText(screen, text, int(x)-w/2, int(y), clr, 1.0)
}
