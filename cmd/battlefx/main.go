package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"chosenoffset.com/battlefx/action"
	"chosenoffset.com/battlefx/clock"
	"chosenoffset.com/battlefx/dice"
	"chosenoffset.com/battlefx/effect"
	"chosenoffset.com/battlefx/internal/config"
	"chosenoffset.com/battlefx/internal/game"
	"chosenoffset.com/battlefx/internal/journal"
	"chosenoffset.com/battlefx/internal/logging"
	ebitenrender "chosenoffset.com/battlefx/internal/render/ebiten"
	"chosenoffset.com/battlefx/internal/scenario"
	"chosenoffset.com/battlefx/targeting"
	"chosenoffset.com/battlefx/turn"
)

func main() {
	configPath := flag.String("config", "battlefx.yaml", "settings file (YAML or JSON); missing is fine")
	scenarioName := flag.String("scenario", "", "scenario name or file to start with")
	headless := flag.Bool("headless", false, "run the scenario without a window and print the combat log")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		logger.Error("startup failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *headless {
		err = a.runHeadless(ctx, *scenarioName, os.Stdout)
	} else {
		err = a.runViewer(*scenarioName)
	}
	if err != nil {
		logger.Error("battlefx stopped", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

// app holds what every encounter is built from.
type app struct {
	cfg       *config.Config
	templates *action.Library // From cfg.Combat.Templates; nil when unset
	logger    *zap.Logger
}

func newApp(cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logging.OrNop(logger)}
	if cfg.Combat.Templates != "" {
		lib, err := action.LoadLibrary(cfg.Combat.Templates)
		if err != nil {
			return nil, fmt.Errorf("load templates: %w", err)
		}
		a.templates = lib
		a.logger.Info("templates loaded",
			zap.String("path", cfg.Combat.Templates),
			zap.Int("count", len(lib.All())),
		)
	}
	return a, nil
}

// session is a loaded scenario wired to its own combat manager.
type session struct {
	scenario *scenario.Scenario
	combat   *turn.Manager
	journal  *journal.Journal // nil when the journal is disabled
}

// Close ends the combat and closes the journal.
func (s *session) Close() error {
	s.combat.EndCombat()
	return s.journal.Close()
}

// open loads the scenario at path and builds a manager running on clk.
func (a *app) open(path string, clk clock.Clock) (*session, error) {
	sc, err := scenario.Load(path)
	if err != nil {
		return nil, err
	}
	enc, err := sc.Prepare()
	if err != nil {
		return nil, fmt.Errorf("prepare %s: %w", sc.Name, err)
	}

	j, err := journal.Open(a.cfg.Journal.Path)
	if err != nil && !errors.Is(err, journal.ErrNotConfigured) {
		return nil, err
	}

	lib := action.DefaultLibrary()
	if a.templates != nil {
		lib.Merge(a.templates)
	}

	seed := a.cfg.Combat.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	logger := a.logger.With(zap.String("scenario", sc.Name))
	tc := turn.Config{
		Actors: enc.Roster,
		Clock:  clk,
		Roller: dice.NewSeededRoller(seed),
		Resolver: targeting.NewResolver(logger.Named("targeting"),
			targeting.WithTolerance(a.cfg.Targeting.Tolerance),
			targeting.WithExcludeSelf(a.cfg.Targeting.ExcludeSelf),
		),
		Library: lib,
		Trail:   effect.Trail{Samples: a.cfg.Motion.TrailSamples, Step: a.cfg.Motion.TrailStep},
		Logger:  logger.Named("combat"),
	}
	if j != nil {
		tc.Recorder = j
	}

	combat := turn.NewManager(tc)
	if err := enc.Apply(combat); err != nil {
		_ = j.Close()
		return nil, fmt.Errorf("schedule %s: %w", sc.Name, err)
	}

	fields := []zap.Field{
		zap.String("path", path),
		zap.Int("actors", len(enc.Roster.Actors())),
		zap.Int("actions", combat.Queue().Len()),
		zap.Int64("seed", seed),
	}
	if j != nil {
		fields = append(fields, zap.String("journal_session", j.Session()))
	}
	logger.Info("scenario loaded", fields...)
	return &session{scenario: sc, combat: combat, journal: j}, nil
}

// findScenario resolves a -scenario value: a name from the scenario
// directory, or a path to a scenario file.
func (a *app) findScenario(name string) (scenario.Entry, error) {
	if entries, err := scenario.Scan(a.cfg.Combat.Scenarios); err == nil {
		if e, ok := scenario.Find(entries, name); ok {
			return e, nil
		}
	}
	if info, err := os.Stat(name); err == nil && !info.IsDir() {
		return scenario.Entry{Name: name, Path: name}, nil
	}
	return scenario.Entry{}, fmt.Errorf("scenario %q not found in %s", name, a.cfg.Combat.Scenarios)
}

// runViewer opens the battlefield window. With name set the scenario starts
// right away, otherwise the picker is shown.
func (a *app) runViewer(name string) error {
	entries, err := scenario.Scan(a.cfg.Combat.Scenarios)
	if err != nil {
		a.logger.Warn("no scenario directory", zap.String("dir", a.cfg.Combat.Scenarios), zap.Error(err))
	}
	a.logger.Info("scenarios found", zap.Int("count", len(entries)))

	renderer := ebitenrender.NewRenderer()
	inputMgr := ebitenrender.NewInputManager()
	engine := ebitenrender.NewEngine()

	launch := func(e scenario.Entry) (*game.Encounter, error) {
		clk := clock.NewPausable(nil)
		s, err := a.open(e.Path, clk)
		if err != nil {
			return nil, err
		}
		return &game.Encounter{Name: s.scenario.Name, Combat: s.combat, Clock: clk, Close: s.Close}, nil
	}

	viewer := game.NewManager(entries, renderer, inputMgr, engine, a.cfg.Viewer, launch, a.logger.Named("viewer"))
	defer viewer.Shutdown()

	if name != "" {
		entry, err := a.findScenario(name)
		if err != nil {
			return err
		}
		if err := viewer.Start(entry); err != nil {
			return err
		}
	}

	engine.SetWindowSize(a.cfg.Viewer.Width, a.cfg.Viewer.Height)
	engine.SetWindowTitle(a.cfg.Viewer.Title)
	engine.SetWindowResizable(true)
	engine.SetRunnableOnUnfocused(true)

	a.logger.Info("starting viewer")
	return engine.RunGame(viewer)
}
