package smell

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// catalog is the process-wide set of known rule definitions.
var catalog = &Catalog{
	defs: make(map[string]Definition),
}

// Catalog stores registered rule definitions for discovery.
type Catalog struct {
	mu   sync.RWMutex
	defs map[string]Definition // keyed by ID
}

// Register adds a rule definition to the catalog.
// Call this from init() functions in rule packages. It panics on a missing
// factory or a duplicate ID since both are programming errors.
func Register(def Definition) {
	if def.Meta.ID == "" || def.New == nil {
		panic("smell: Register requires an ID and a factory")
	}

	catalog.mu.Lock()
	defer catalog.mu.Unlock()
	if _, exists := catalog.defs[def.Meta.ID]; exists {
		panic(fmt.Sprintf("smell: %v: %s", ErrDuplicateRule, def.Meta.ID))
	}
	catalog.defs[def.Meta.ID] = def
}

// Definitions returns all registered definitions ordered by code, then ID.
func Definitions() []Definition {
	catalog.mu.RLock()
	defer catalog.mu.RUnlock()

	defs := make([]Definition, 0, len(catalog.defs))
	for _, def := range catalog.defs {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool {
		if defs[i].Meta.Code != defs[j].Meta.Code {
			return defs[i].Meta.Code < defs[j].Meta.Code
		}
		return defs[i].Meta.ID < defs[j].Meta.ID
	})
	return defs
}

// Lookup returns a definition by rule ID or message code.
func Lookup(idOrCode string) (Definition, bool) {
	catalog.mu.RLock()
	defer catalog.mu.RUnlock()

	if def, ok := catalog.defs[idOrCode]; ok {
		return def, true
	}
	for _, def := range catalog.defs {
		if def.Meta.Code == idOrCode {
			return def, true
		}
	}
	return Definition{}, false
}

// Known reports whether a rule ID is registered.
func Known(id string) bool {
	catalog.mu.RLock()
	defer catalog.mu.RUnlock()
	_, ok := catalog.defs[id]
	return ok
}

// Count returns the number of registered definitions.
func Count() int {
	catalog.mu.RLock()
	defer catalog.mu.RUnlock()
	return len(catalog.defs)
}

// ValidateConfig checks cfg against the catalog: rule IDs must be registered
// and rule options must be among the rule's ConfigKeys.
func ValidateConfig(cfg *Config) error {
	if err := cfg.Validate(Known); err != nil {
		return err
	}
	if cfg == nil {
		return nil
	}

	var problems []string
	for _, id := range sortedKeys(cfg.RuleOptions) {
		def, _ := Lookup(id)
		problems = append(problems, cfg.RuleOptions[id].checkUnknown(id, def.Meta.ConfigKeys)...)
	}
	if len(problems) > 0 {
		return &ConfigError{Problems: problems}
	}
	return nil
}

// Build creates a fresh registry holding one new instance of every enabled
// rule, in catalog order.
func Build(cfg *Config, logger *slog.Logger) (*Registry, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	reg := NewRegistry(WithConfig(cfg), WithLogger(logger))
	for _, def := range Definitions() {
		if cfg.IsDisabled(def.Meta.ID) {
			continue
		}
		rule, err := def.New(cfg.GetRuleOptions(def.Meta.ID))
		if err != nil {
			return nil, &ConfigError{
				Problems: []string{fmt.Sprintf("rules.%s", def.Meta.ID)},
				Err:      err,
			}
		}
		if err := reg.Register(rule); err != nil {
			return nil, err
		}
	}

	if reg.Len() == 0 {
		return nil, &ConfigError{Err: ErrEmptyRuleSet}
	}
	return reg, nil
}
