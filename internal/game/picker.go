package game

import (
	"fmt"
	"image/color"

	"chosenoffset.com/battlefx/internal/render"
	"chosenoffset.com/battlefx/internal/scenario"
)

// Picker lists the scenarios found in the data directory.
type Picker struct {
	entries      []scenario.Entry
	selected     int
	renderer     render.Renderer
	input        render.InputManager
	screenWidth  int
	screenHeight int
	err          string // Last launch failure, shown under the list
}

const (
	pickerListY      = 100
	pickerEntryH     = 40
	pickerEntryWidth = 500
)

// NewPicker creates a scenario picker.
func NewPicker(entries []scenario.Entry, r render.Renderer, input render.InputManager, width, height int) *Picker {
	return &Picker{
		entries:      entries,
		renderer:     r,
		input:        input,
		screenWidth:  width,
		screenHeight: height,
	}
}

// SetSize updates the screen size after a resize.
func (p *Picker) SetSize(width, height int) {
	p.screenWidth = width
	p.screenHeight = height
}

// SetError shows a launch failure under the list.
func (p *Picker) SetError(msg string) {
	p.err = msg
}

// Selected returns the highlighted entry index.
func (p *Picker) Selected() int {
	return p.selected
}

// Update handles input. It returns true with the entry to launch when the
// user starts a scenario.
func (p *Picker) Update() (bool, scenario.Entry) {
	if len(p.entries) == 0 {
		return false, scenario.Entry{}
	}

	if p.input.IsKeyJustPressed(render.KeyUp) || p.input.IsKeyJustPressed(render.KeyW) {
		p.selected = (p.selected - 1 + len(p.entries)) % len(p.entries)
	}
	if p.input.IsKeyJustPressed(render.KeyDown) || p.input.IsKeyJustPressed(render.KeyS) {
		p.selected = (p.selected + 1) % len(p.entries)
	}

	if p.input.IsMouseButtonJustPressed(render.MouseButtonLeft) {
		mouseX, mouseY := p.input.GetCursorPosition()
		for i := range p.entries {
			r := rect{x: 50, y: pickerListY + i*pickerEntryH, w: pickerEntryWidth, h: pickerEntryH - 5}
			if pointInRect(mouseX, mouseY, r) {
				if i == p.selected {
					return true, p.entries[i]
				}
				p.selected = i
				break
			}
		}
	}

	if p.input.IsKeyJustPressed(render.KeySpace) {
		return true, p.entries[p.selected]
	}
	return false, scenario.Entry{}
}

// Draw renders the picker to the screen.
func (p *Picker) Draw(screen render.Image) {
	screen.Fill(color.RGBA{20, 20, 30, 255})

	titleColor := color.RGBA{255, 255, 255, 255}
	p.renderer.DrawText(screen, "BATTLEFX", 50, 30, titleColor, 3.0)
	p.renderer.DrawText(screen, "Select a scenario", 50, 70, titleColor, 1.5)

	if len(p.entries) == 0 {
		noneColor := color.RGBA{255, 100, 100, 255}
		p.renderer.DrawText(screen, "No scenarios found!", 50, 120, noneColor, 1.2)
		p.renderer.DrawText(screen, "Add scenario files to the scenarios directory.", 50, 145, noneColor, 1.0)
		return
	}

	for i, e := range p.entries {
		y := pickerListY + i*pickerEntryH
		nameColor := color.RGBA{200, 200, 255, 255}
		if i == p.selected {
			nameColor = color.RGBA{255, 255, 100, 255}
			p.renderer.DrawText(screen, ">", 35, y, nameColor, 1.2)
		}
		p.renderer.DrawText(screen, e.Name, 50, y, nameColor, 1.5)
		if e.Description != "" {
			p.renderer.DrawText(screen, e.Description, 70, y+16, color.RGBA{160, 160, 160, 255}, 1.0)
		}
	}

	if p.err != "" {
		y := pickerListY + len(p.entries)*pickerEntryH + 20
		p.renderer.DrawText(screen, fmt.Sprintf("Failed to start: %s", p.err), 50, y, color.RGBA{255, 100, 100, 255}, 1.0)
	}

	instructionY := p.screenHeight - 60
	instructionColor := color.RGBA{150, 150, 150, 255}
	p.renderer.DrawText(screen, "Up/Down or click to choose a scenario.", 20, instructionY, instructionColor, 1.0)
	p.renderer.DrawText(screen, "Press SPACE or click again to begin.", 20, instructionY+20, instructionColor, 1.0)
}

// Helper types and functions

type rect struct {
	x, y, w, h int
}

func pointInRect(px, py int, r rect) bool {
	return px >= r.x && px <= r.x+r.w && py >= r.y && py <= r.y+r.h
}
