package action

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Library holds all loaded templates
type Library struct {
	Templates  map[string]*Template     // All templates by ID
	Categories map[Category][]*Template // Templates grouped by category
	Order      []string                 // Ordered list of template IDs (for stable UI)
}

// TemplatesFile is the JSON/YAML file structure
type TemplatesFile struct {
	Templates []Template `json:"templates" yaml:"templates"`
}

// NewLibrary builds a library from templates, validating each one.
func NewLibrary(templates ...Template) (*Library, error) {
	library := &Library{
		Templates:  make(map[string]*Template),
		Categories: make(map[Category][]*Template),
		Order:      make([]string, 0, len(templates)),
	}

	for i := range templates {
		tmpl := templates[i]
		if err := tmpl.Validate(); err != nil {
			return nil, err
		}
		library.put(&tmpl)
	}

	return library, nil
}

// LoadLibrary loads templates from a JSON or YAML file
func LoadLibrary(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read templates file: %w", err)
	}

	var file TemplatesFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &file)
	default:
		err = json.Unmarshal(data, &file)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates file: %w", err)
	}

	library, err := NewLibrary(file.Templates...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return library, nil
}

func (lib *Library) put(tmpl *Template) {
	if existing, ok := lib.Templates[tmpl.ID]; ok {
		lib.removeFromCategory(existing)
	} else {
		lib.Order = append(lib.Order, tmpl.ID)
	}
	lib.Templates[tmpl.ID] = tmpl
	lib.Categories[tmpl.Category] = append(lib.Categories[tmpl.Category], tmpl)
}

// Get returns a template by ID
func (lib *Library) Get(id string) *Template {
	return lib.Templates[id]
}

// Lookup returns a template by ID or an error wrapping ErrUnknownTemplate.
func (lib *Library) Lookup(id string) (*Template, error) {
	tmpl, ok := lib.Templates[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, id)
	}
	return tmpl, nil
}

// ByCategory returns all templates in a category
func (lib *Library) ByCategory(category Category) []*Template {
	return lib.Categories[category]
}

// All returns all templates in stable order
func (lib *Library) All() []*Template {
	result := make([]*Template, 0, len(lib.Order))
	for _, id := range lib.Order {
		if tmpl, ok := lib.Templates[id]; ok {
			result = append(result, tmpl)
		}
	}
	return result
}

// Merge adds templates from another library, overwriting duplicates.
// New templates are added in the order they appear in the other library.
func (lib *Library) Merge(other *Library) {
	for _, id := range other.Order {
		tmpl := other.Templates[id]
		if tmpl == nil {
			continue
		}
		lib.put(tmpl)
	}
}

func (lib *Library) removeFromCategory(tmpl *Template) {
	templates := lib.Categories[tmpl.Category]
	for i, t := range templates {
		if t.ID == tmpl.ID {
			lib.Categories[tmpl.Category] = append(templates[:i], templates[i+1:]...)
			return
		}
	}
}

// DefaultLibrary creates a library with the built-in templates.
// These can be overridden by data files.
func DefaultLibrary() *Library {
	library, err := NewLibrary(defaultTemplates()...)
	if err != nil {
		panic(fmt.Sprintf("built-in templates are invalid: %v", err))
	}
	return library
}

func defaultTemplates() []Template {
	return []Template{
		{
			ID:          "fireball",
			Name:        "Fireball",
			Description: "A bright streak that blossoms into a 20-foot sphere of flame",
			Kind:        KindSpell,
			Category:    CategoryFire,
			Targeting:   Targeting{Type: TargetArea, Range: 7500, Radius: 200},
			Motion: Motion{
				Duration:      900,
				Burst:         true,
				BurstSize:     200,
				BurstDuration: 600,
			},
			Effect: Effect{Damage: "8d6", DamageType: "fire"},
		},
		{
			ID:          "magic_missile",
			Name:        "Magic Missile",
			Description: "A glowing dart of force that always finds its mark",
			Kind:        KindSpell,
			Category:    CategoryForce,
			Targeting:   Targeting{Type: TargetSingle, Range: 6000},
			Motion:      Motion{Duration: 700, Curved: true, CurveHeight: 60},
			Effect:      Effect{Damage: "1d4+1", DamageType: "force"},
		},
		{
			ID:          "burning_hands",
			Name:        "Burning Hands",
			Description: "A thin sheet of flames shoots from outstretched fingertips",
			Kind:        KindSpell,
			Category:    CategoryFire,
			Targeting:   Targeting{Type: TargetArea, Shape: "cone", Range: 150, Angle: 60},
			Motion:      Motion{Duration: 200, Burst: true, BurstSize: 150, BurstDuration: 400},
			Effect:      Effect{Damage: "3d6", DamageType: "fire"},
		},
		{
			ID:          "lightning_bolt",
			Name:        "Lightning Bolt",
			Description: "A stroke of lightning 100 feet long and 5 feet wide",
			Kind:        KindSpell,
			Category:    CategoryLightning,
			Targeting:   Targeting{Type: TargetArea, Range: 1000, Width: 50},
			Motion:      Motion{Duration: 250, Burst: true, BurstDuration: 300},
			Effect:      Effect{Damage: "8d6", DamageType: "lightning"},
		},
		{
			ID:          "spirit_guardians",
			Name:        "Spirit Guardians",
			Description: "Protective spirits flit around the caster",
			Kind:        KindSpell,
			Category:    CategoryDivine,
			Targeting:   Targeting{Type: TargetArea, Radius: 150},
			Motion: Motion{
				Duration:        300,
				Burst:           true,
				BurstSize:       150,
				BurstDuration:   400,
				PersistDuration: 1500,
			},
			Effect: Effect{
				Damage:     "3d8",
				DamageType: "radiant",
				Persist:    Persist{Type: DurationRounds, Value: 10, Concentration: true},
			},
		},
		{
			ID:          "cloud_of_daggers",
			Name:        "Cloud of Daggers",
			Description: "Spinning daggers fill a 5-foot cube",
			Kind:        KindSpell,
			Category:    CategoryForce,
			Targeting:   Targeting{Type: TargetArea, Shape: "square", Range: 600, Size: 50},
			Motion: Motion{
				Duration:        400,
				Burst:           true,
				BurstSize:       50,
				BurstDuration:   300,
				PersistDuration: 1200,
			},
			Effect: Effect{
				Damage:     "4d4",
				DamageType: "slashing",
				Persist:    Persist{Type: DurationRounds, Value: 10, Concentration: true},
			},
		},
		{
			ID:          "cure_wounds",
			Name:        "Cure Wounds",
			Description: "A touch that mends flesh",
			Kind:        KindSpell,
			Category:    CategoryHealing,
			Targeting:   Targeting{Type: TargetSingle, Range: 50},
			Motion:      Motion{Duration: 300},
			Effect:      Effect{Damage: "1d8+3", DamageType: "healing"},
		},
		{
			ID:          "melee_strike",
			Name:        "Melee Strike",
			Description: "A weapon attack against an adjacent creature",
			Kind:        KindAttack,
			Category:    CategoryWeapon,
			Targeting:   Targeting{Type: TargetSingle, Range: 50},
			Motion:      Motion{Duration: 200},
			Effect:      Effect{Damage: "1d8+3", DamageType: "slashing"},
		},
	}
}
