package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Entry is a discoverable scenario in the data directory
type Entry struct {
	Name        string // Scenario name, or the file name without extension
	Description string
	Path        string
}

// scenarioExts are the file extensions Scan treats as scenarios.
var scenarioExts = map[string]bool{".yaml": true, ".yml": true, ".json": true}

// Scan lists the scenarios in dir. Files directly in dir are scenarios;
// a subdirectory counts when it holds a scenario.yaml (or .yml/.json).
// Files that fail to load are skipped. Entries are sorted by name.
func Scan(dir string) ([]Entry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}

	var found []Entry
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		path := filepath.Join(dir, name)
		if entry.IsDir() {
			if p, ok := findScenarioFile(path); ok {
				path = p
			} else {
				continue
			}
		} else if !scenarioExts[strings.ToLower(filepath.Ext(name))] {
			continue
		}

		s, err := Load(path)
		if err != nil {
			// Creature and template libraries share the extensions
			continue
		}
		found = append(found, Entry{Name: s.Name, Description: s.Description, Path: path})
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Name < found[j].Name })
	return found, nil
}

func findScenarioFile(dir string) (string, bool) {
	for _, ext := range []string{".yaml", ".yml", ".json"} {
		p := filepath.Join(dir, "scenario"+ext)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, true
		}
	}
	return "", false
}

// Find returns the scenario whose name or file name matches name.
func Find(entries []Entry, name string) (Entry, bool) {
	for _, e := range entries {
		base := strings.TrimSuffix(filepath.Base(e.Path), filepath.Ext(e.Path))
		if e.Name == name || base == name {
			return e, true
		}
	}
	return Entry{}, false
}
