package entity

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"chosenoffset.com/battlefx/shape"
)

// Definition describes a creature type that scenarios can place as tokens
type Definition struct {
	ID          string       `json:"id" yaml:"id"`
	Name        string       `json:"name" yaml:"name"`
	Size        SizeCategory `json:"size,omitempty" yaml:"size,omitempty"`
	Faction     Faction      `json:"faction,omitempty" yaml:"faction,omitempty"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Tags        []string     `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Library contains the creature definitions for an encounter set
type Library struct {
	Name      string       `json:"name" yaml:"name"`
	Creatures []Definition `json:"creatures" yaml:"creatures"`

	byID map[string]*Definition
}

// NewLibrary builds a library from definitions, applying defaults.
func NewLibrary(name string, defs []Definition) (*Library, error) {
	lib := &Library{Name: name, Creatures: defs}
	if err := lib.index(); err != nil {
		return nil, err
	}
	return lib, nil
}

// LoadLibrary loads creature definitions from a JSON or YAML file
func LoadLibrary(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read creature library: %w", err)
	}

	var lib Library
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &lib)
	default:
		err = json.Unmarshal(data, &lib)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse creature library: %w", err)
	}

	if err := lib.index(); err != nil {
		return nil, err
	}
	return &lib, nil
}

func (lib *Library) index() error {
	lib.byID = make(map[string]*Definition, len(lib.Creatures))
	for i := range lib.Creatures {
		def := &lib.Creatures[i]
		if def.ID == "" {
			return fmt.Errorf("creature %d has no id", i)
		}
		size, err := ParseSize(string(def.Size))
		if err != nil {
			return fmt.Errorf("creature %s: %w", def.ID, err)
		}
		def.Size = size
		if def.Faction == "" {
			def.Faction = FactionEnemy
		}
		if def.Name == "" {
			def.Name = def.ID
		}
		lib.byID[def.ID] = def
	}
	return nil
}

// Get returns a definition by ID
func (lib *Library) Get(id string) *Definition {
	if lib == nil {
		return nil
	}
	return lib.byID[id]
}

// WithTag returns definitions that have a specific tag
func (lib *Library) WithTag(tag string) []*Definition {
	var result []*Definition
	for i := range lib.Creatures {
		def := &lib.Creatures[i]
		for _, t := range def.Tags {
			if t == tag {
				result = append(result, def)
				break
			}
		}
	}
	return result
}

// Spawn creates an actor snapshot from a definition
func (def *Definition) Spawn(id string, pos shape.Point) Actor {
	return Actor{
		ID:       id,
		Name:     def.Name,
		Position: pos,
		Size:     def.Size,
		Faction:  def.Faction,
	}
}
