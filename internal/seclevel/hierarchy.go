// Package seclevel defines the security classification hierarchy shared by
// the contracts and knowledge-base domains.
package seclevel

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownLevel indicates a level name absent from the loaded hierarchy.
// Encountering it outside of load time is a configuration defect.
var ErrUnknownLevel = errors.New("seclevel: unknown level")

// Level is one ordinal classification. Lower rank is more privileged.
type Level struct {
	Name string `yaml:"name"`
	Rank int    `yaml:"rank"`
}

// Hierarchy is the total order over classification levels. It is immutable
// after construction and safe for concurrent use.
type Hierarchy struct {
	byName map[string]Level
	levels []Level
}

type levelsFile struct {
	Levels []Level `yaml:"levels"`
}

// LoadFile reads the hierarchy from a YAML file. Validation failures are
// fatal configuration errors, surfaced once at process start.
func LoadFile(path string) (*Hierarchy, error) {
	// #nosec G304 -- path comes from operator configuration.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seclevel: read %s: %w", path, err)
	}
	var file levelsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("seclevel: parse %s: %w", path, err)
	}
	return New(file.Levels)
}

// New builds a hierarchy from explicit levels, enforcing a strict total
// order: unique names, unique ranks.
func New(levels []Level) (*Hierarchy, error) {
	if len(levels) == 0 {
		return nil, errors.New("seclevel: at least one level required")
	}
	byName := make(map[string]Level, len(levels))
	byRank := make(map[int]string, len(levels))
	ordered := make([]Level, 0, len(levels))
	for _, lvl := range levels {
		name := strings.TrimSpace(lvl.Name)
		if name == "" {
			return nil, errors.New("seclevel: level name required")
		}
		if _, ok := byName[name]; ok {
			return nil, fmt.Errorf("seclevel: duplicate level %q", name)
		}
		if other, ok := byRank[lvl.Rank]; ok {
			return nil, fmt.Errorf("seclevel: levels %q and %q share rank %d", other, name, lvl.Rank)
		}
		normalized := Level{Name: name, Rank: lvl.Rank}
		byName[name] = normalized
		byRank[lvl.Rank] = name
		ordered = append(ordered, normalized)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Rank < ordered[j].Rank })
	return &Hierarchy{byName: byName, levels: ordered}, nil
}

// Lookup resolves a level by name.
func (h *Hierarchy) Lookup(name string) (Level, error) {
	lvl, ok := h.byName[strings.TrimSpace(name)]
	if !ok {
		return Level{}, fmt.Errorf("%w: %q", ErrUnknownLevel, name)
	}
	return lvl, nil
}

// Satisfies reports whether an actor with the given clearance may view
// content classified at the required level. Lower rank is more privileged,
// so clearance satisfies any requirement at its own rank or above.
func (h *Hierarchy) Satisfies(clearance, required Level) bool {
	return clearance.Rank <= required.Rank
}

// Levels returns the hierarchy ordered from most to least privileged.
func (h *Hierarchy) Levels() []Level {
	out := make([]Level, len(h.levels))
	copy(out, h.levels)
	return out
}
