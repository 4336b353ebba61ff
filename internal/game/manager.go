package game

import (
	"fmt"
	"image/color"

	"go.uber.org/zap"

	"chosenoffset.com/battlefx/internal/config"
	"chosenoffset.com/battlefx/internal/render"
	"chosenoffset.com/battlefx/internal/scenario"
)

// State is the screen the viewer is showing
type State int

const (
	StatePicker State = iota
	StateCombat
)

// Launcher builds a ready-to-run encounter from a scenario entry.
type Launcher func(entry scenario.Entry) (*Encounter, error)

// Manager switches between the scenario picker and a running combat.
type Manager struct {
	ScreenWidth  int
	ScreenHeight int
	State        State
	Picker       *Picker
	Game         *Game
	Renderer     render.Renderer
	InputMgr     render.InputManager
	Engine       render.Engine

	config  config.ViewerConfig
	launch  Launcher
	current scenario.Entry // Entry the running Game was launched from
	logger  *zap.Logger
}

// NewManager creates a viewer manager showing the picker.
func NewManager(entries []scenario.Entry, r render.Renderer, input render.InputManager, engine render.Engine,
	cfg config.ViewerConfig, launch Launcher, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		ScreenWidth:  cfg.Width,
		ScreenHeight: cfg.Height,
		State:        StatePicker,
		Picker:       NewPicker(entries, r, input, cfg.Width, cfg.Height),
		Renderer:     r,
		InputMgr:     input,
		Engine:       engine,
		config:       cfg,
		launch:       launch,
		logger:       logger,
	}
}

// Start launches entry and switches to the combat view.
func (m *Manager) Start(entry scenario.Entry) error {
	enc, err := m.launch(entry)
	if err != nil {
		return fmt.Errorf("launch %s: %w", entry.Name, err)
	}
	if enc.Name == "" {
		enc.Name = entry.Name
	}

	m.closeGame()
	g := NewGame(enc, m.Renderer, m.InputMgr, m.config, m.logger.Named("viewer"))
	g.Engine = m.Engine
	g.ScreenWidth, g.ScreenHeight = m.ScreenWidth, m.ScreenHeight
	g.centerCamera()
	m.Game = g
	m.current = entry
	m.State = StateCombat
	m.logger.Info("scenario started", zap.String("scenario", enc.Name), zap.String("path", entry.Path))
	return nil
}

// Update updates the current screen.
func (m *Manager) Update() error {
	switch m.State {
	case StatePicker:
		if m.InputMgr.IsKeyJustPressed(render.KeyEscape) {
			return render.ErrTerminated
		}
		if selected, entry := m.Picker.Update(); selected {
			if err := m.Start(entry); err != nil {
				m.logger.Warn("failed to start scenario", zap.Error(err))
				m.Picker.SetError(err.Error())
			}
		}
	case StateCombat:
		if m.Game == nil {
			m.State = StatePicker
			return nil
		}
		if m.InputMgr.IsKeyJustPressed(render.KeyR) {
			m.restart()
			return nil
		}
		if err := m.Game.Update(); err != nil {
			return err
		}
		if m.Game.Done {
			m.closeGame()
			m.State = StatePicker
		}
	}
	return nil
}

// restart relaunches the running scenario from its file. The old encounter
// keeps running if the relaunch fails.
func (m *Manager) restart() {
	if err := m.Start(m.current); err != nil {
		m.logger.Warn("failed to restart scenario", zap.Error(err))
		m.Game.ShowMessage("Restart failed: " + err.Error())
		return
	}
	m.logger.Info("scenario restarted", zap.String("scenario", m.Game.Encounter.Name))
}

func (m *Manager) closeGame() {
	if m.Game == nil {
		return
	}
	if err := m.Game.Close(); err != nil {
		m.logger.Warn("failed to close encounter", zap.Error(err))
	}
	m.Game = nil
}

// Draw draws the current screen.
func (m *Manager) Draw(screen render.Image) {
	switch m.State {
	case StatePicker:
		m.Picker.Draw(screen)
	case StateCombat:
		if m.Game != nil {
			m.Game.Draw(screen)
		} else {
			screen.Fill(color.RGBA{20, 20, 30, 255})
		}
	}
}

// Layout handles window resize.
func (m *Manager) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != m.ScreenWidth || outsideHeight != m.ScreenHeight {
		m.ScreenWidth = outsideWidth
		m.ScreenHeight = outsideHeight
		m.Picker.SetSize(outsideWidth, outsideHeight)
		if m.Game != nil {
			m.Game.ScreenWidth = outsideWidth
			m.Game.ScreenHeight = outsideHeight
		}
	}
	return outsideWidth, outsideHeight
}

// Shutdown closes any running encounter.
func (m *Manager) Shutdown() {
	m.closeGame()
}
