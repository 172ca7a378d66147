package session

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
)

//go:embed capabilities.yaml
var defaultCapabilities []byte

// Affordance is what the console renders for one capability.
type Affordance struct {
	Key   string `yaml:"key" json:"key"`
	Label string `yaml:"label" json:"label"`
	Route string `yaml:"route" json:"route"`
	Icon  string `yaml:"icon" json:"icon"`
}

type registryFile struct {
	Capabilities []Affordance `yaml:"capabilities"`
}

// Registry maps stable capability keys to affordances.
type Registry struct {
	ordered []Affordance
	byKey   map[string]Affordance
}

// DefaultRegistry loads the capability set shipped with the console.
func DefaultRegistry() (*Registry, error) {
	return ParseRegistry(defaultCapabilities)
}

func ParseRegistry(doc []byte) (*Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(doc, &file); err != nil {
		return nil, fmt.Errorf("failed to parse capability registry: %w", err)
	}

	r := &Registry{byKey: make(map[string]Affordance, len(file.Capabilities))}
	for i, a := range file.Capabilities {
		a.Key = normaliseKey(a.Key)
		if a.Key == "" || a.Label == "" || a.Route == "" {
			return nil, fmt.Errorf("capability #%d: key, label and route are required", i)
		}
		if _, dup := r.byKey[a.Key]; dup {
			return nil, fmt.Errorf("capability %s declared twice", a.Key)
		}
		r.byKey[a.Key] = a
		r.ordered = append(r.ordered, a)
	}
	return r, nil
}

func (r *Registry) Lookup(key string) (Affordance, error) {
	a, ok := r.byKey[normaliseKey(key)]
	if !ok {
		return Affordance{}, fmt.Errorf("%w: %q", models.ErrUnknownCapability, key)
	}
	return a, nil
}

// Menu turns backend permission rows into affordances. Unknown tags are
// dropped and logged, duplicates collapse, and the result follows registry
// order. Backend icon names are ignored.
func (r *Registry) Menu(perms []models.Permission) []Affordance {
	granted := make(map[string]bool, len(perms))
	for _, p := range perms {
		key := normaliseKey(p.Capability)
		if _, ok := r.byKey[key]; !ok {
			utils.InfoLogger.Warnf("Ignoring unknown capability %q", p.Capability)
			continue
		}
		granted[key] = true
	}

	menu := make([]Affordance, 0, len(granted))
	for _, a := range r.ordered {
		if granted[a.Key] {
			menu = append(menu, a)
		}
	}
	return menu
}

func normaliseKey(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}
