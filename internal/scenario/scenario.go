// Package scenario loads encounter files: the actors on the battlefield, their
// initiative order and the actions scheduled on the timeline.
package scenario

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"chosenoffset.com/battlefx/action"
	"chosenoffset.com/battlefx/entity"
	"chosenoffset.com/battlefx/shape"
	"chosenoffset.com/battlefx/turn"
)

// ActorSpec places one token
type ActorSpec struct {
	ID       string      `json:"id" yaml:"id"`
	Name     string      `json:"name,omitempty" yaml:"name,omitempty"`
	Creature string      `json:"creature,omitempty" yaml:"creature,omitempty"` // Definition id from the creature library
	Position shape.Point `json:"position" yaml:"position"`
	Size     string      `json:"size,omitempty" yaml:"size,omitempty"`
	Faction  string      `json:"faction,omitempty" yaml:"faction,omitempty"`
}

// ActionSpec schedules one template on the timeline
type ActionSpec struct {
	Round    int    `json:"round" yaml:"round"`
	Event    int    `json:"event" yaml:"event"`
	Template string `json:"template" yaml:"template"`

	action.Binding `yaml:",inline"`
}

// Scenario is a loaded encounter file
type Scenario struct {
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Creatures   string       `json:"creatures,omitempty" yaml:"creatures,omitempty"` // Creature library, relative to the file
	Templates   string       `json:"templates,omitempty" yaml:"templates,omitempty"` // Extra templates, relative to the file
	Rounds      int          `json:"rounds,omitempty" yaml:"rounds,omitempty"`       // How many rounds a headless run steps
	Actors      []ActorSpec  `json:"actors" yaml:"actors"`
	Initiative  []string     `json:"initiative,omitempty" yaml:"initiative,omitempty"`
	Actions     []ActionSpec `json:"actions,omitempty" yaml:"actions,omitempty"`

	// Path is the file the scenario was loaded from
	Path string `json:"-" yaml:"-"`
}

// Encounter is a scenario with its libraries loaded and actors built
type Encounter struct {
	Scenario *Scenario
	Roster   *entity.Roster
	Library  *action.Library // Templates from the scenario file only; nil when none
}

// Load reads a scenario from a YAML or JSON file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario %s: %w", path, err)
	}

	var s Scenario
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &s)
	default:
		err = json.Unmarshal(data, &s)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse scenario %s: %w", path, err)
	}

	s.Path = path
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &s, nil
}

// Validate checks the scenario without loading any libraries.
func (s *Scenario) Validate() error {
	var errs []error

	if len(s.Actors) == 0 {
		errs = append(errs, errors.New("scenario has no actors"))
	}
	if s.Rounds < 0 {
		errs = append(errs, fmt.Errorf("rounds must not be negative, got %d", s.Rounds))
	}

	ids := make(map[string]bool, len(s.Actors))
	for i, a := range s.Actors {
		switch {
		case a.ID == "":
			errs = append(errs, fmt.Errorf("actor %d has no id", i))
		case ids[a.ID]:
			errs = append(errs, fmt.Errorf("duplicate actor id %q", a.ID))
		}
		ids[a.ID] = true
		if _, err := entity.ParseSize(a.Size); err != nil {
			errs = append(errs, fmt.Errorf("actor %s: %w", a.ID, err))
		}
	}

	for _, id := range s.Initiative {
		if !ids[id] {
			errs = append(errs, fmt.Errorf("initiative names unknown actor %q", id))
		}
	}

	for i, a := range s.Actions {
		if a.Template == "" {
			errs = append(errs, fmt.Errorf("action %d has no template", i))
		}
		if a.Round < 1 || a.Event < 0 {
			errs = append(errs, fmt.Errorf("action %d: slot %d.%d is before combat starts", i, a.Round, a.Event))
		}
		if err := a.Binding.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("action %d: %w", i, err))
		}
	}

	return errors.Join(errs...)
}

// TurnOrder returns the initiative order, defaulting to actor file order.
func (s *Scenario) TurnOrder() []string {
	if len(s.Initiative) > 0 {
		return append([]string(nil), s.Initiative...)
	}
	order := make([]string, len(s.Actors))
	for i, a := range s.Actors {
		order[i] = a.ID
	}
	return order
}

// resolve makes a path from the scenario file relative to its directory.
func (s *Scenario) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || s.Path == "" {
		return p
	}
	return filepath.Join(filepath.Dir(s.Path), p)
}

// Prepare loads the creature and template libraries the scenario names and
// builds its roster.
func (s *Scenario) Prepare() (*Encounter, error) {
	var creatures *entity.Library
	if s.Creatures != "" {
		lib, err := entity.LoadLibrary(s.resolve(s.Creatures))
		if err != nil {
			return nil, err
		}
		creatures = lib
	}

	roster, err := s.roster(creatures)
	if err != nil {
		return nil, err
	}

	enc := &Encounter{Scenario: s, Roster: roster}
	if s.Templates != "" {
		lib, err := action.LoadLibrary(s.resolve(s.Templates))
		if err != nil {
			return nil, err
		}
		enc.Library = lib
	}
	return enc, nil
}

func (s *Scenario) roster(creatures *entity.Library) (*entity.Roster, error) {
	roster := entity.NewRoster()
	for _, spec := range s.Actors {
		var actor entity.Actor
		if spec.Creature != "" {
			def := creatures.Get(spec.Creature)
			if def == nil {
				return nil, fmt.Errorf("actor %s: unknown creature %q", spec.ID, spec.Creature)
			}
			actor = def.Spawn(spec.ID, spec.Position)
		} else {
			actor = entity.Actor{ID: spec.ID, Position: spec.Position, Faction: entity.FactionNeutral}
		}

		if spec.Name != "" {
			actor.Name = spec.Name
		}
		if actor.Name == "" {
			actor.Name = spec.ID
		}
		if spec.Size != "" || actor.Size == "" {
			size, err := entity.ParseSize(spec.Size)
			if err != nil {
				return nil, fmt.Errorf("actor %s: %w", spec.ID, err)
			}
			actor.Size = size
		}
		if spec.Faction != "" {
			actor.Faction = entity.Faction(spec.Faction)
		}
		roster.Add(actor)
	}
	return roster, nil
}

// Apply merges the encounter's templates into the manager, sets initiative
// and schedules every action. It stops at the first action that cannot be
// scheduled.
func (e *Encounter) Apply(m *turn.Manager) error {
	m.SetLibrary(e.Library)
	m.SetInitiative(e.Scenario.TurnOrder()...)

	for i, a := range e.Scenario.Actions {
		if _, err := m.Schedule(a.Round, a.Event, a.Template, a.Binding); err != nil {
			return fmt.Errorf("action %d (%s at %d.%d): %w", i, a.Template, a.Round, a.Event, err)
		}
	}
	return nil
}

// LastRound returns the round a headless run should stop after: the
// scenario's rounds setting, or the latest scheduled round.
func (s *Scenario) LastRound() int {
	if s.Rounds > 0 {
		return s.Rounds
	}
	last := 1
	for _, a := range s.Actions {
		last = max(last, a.Round)
	}
	return last
}
