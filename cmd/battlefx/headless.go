package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"chosenoffset.com/battlefx/clock"
	"chosenoffset.com/battlefx/turn"
)

// roundLength is the game time one full round of initiative takes.
const roundLength = 6 * time.Second

// summary is what a headless run reports at the end.
type summary struct {
	Rounds  int
	Impacts int
	Damage  int
	Records int // Journal rows written this session; zero without a journal
}

// runHeadless plays the scenario named name on a manual clock, one event at
// a time, and writes the combat log to out.
func (a *app) runHeadless(ctx context.Context, name string, out io.Writer) error {
	if name == "" {
		return errors.New("-headless needs -scenario")
	}
	entry, err := a.findScenario(name)
	if err != nil {
		return err
	}
	sum, err := a.play(ctx, entry.Path, out)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Combat over after round %d: %d impacts, %d damage\n", sum.Rounds, sum.Impacts, sum.Damage)
	return nil
}

func (a *app) play(ctx context.Context, path string, out io.Writer) (summary, error) {
	clk := clock.NewManual(time.Now())
	s, err := a.open(path, clk)
	if err != nil {
		return summary{}, err
	}
	defer func() {
		if err := s.Close(); err != nil {
			a.logger.Warn("failed to close session", zap.Error(err))
		}
	}()

	var sum summary
	combat := s.combat
	combat.OnMessage = func(msg string) {
		fmt.Fprintln(out, msg)
	}
	combat.OnImpact = func(report *turn.ImpactReport) {
		sum.Impacts++
		if report.Roll != nil && report.Action.Effect.DamageType != "healing" {
			sum.Damage += report.Roll.Total
		}
	}

	events := max(len(combat.Initiative()), 1)
	step := roundLength / time.Duration(events)
	last := s.scenario.LastRound()

	combat.Start()
	for {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		// Let the event's effects play out before the next combatant acts
		clk.Advance(step)
		combat.Tick()

		if combat.Round() >= last && combat.Event() >= events-1 {
			break
		}
		combat.NextEvent()
	}
	sum.Rounds = combat.Round()

	if s.journal != nil {
		history, err := s.journal.History(ctx)
		if err != nil {
			return sum, fmt.Errorf("read journal: %w", err)
		}
		sum.Records = len(history)
	}

	a.logger.Info("headless run finished",
		zap.String("scenario", s.scenario.Name),
		zap.Int("rounds", sum.Rounds),
		zap.Int("impacts", sum.Impacts),
		zap.Int("damage", sum.Damage),
		zap.Int("records", sum.Records),
	)
	return sum, nil
}
