package config

import (
	"cmp"
	"slices"

	"github.com/flemzord/careerai/internal/core"
)

// loadStage orders module namespaces: stores first, then providers, then
// the surfaces that consume them. Unknown namespaces load last.
var loadStage = map[string]int{
	"store":    0,
	"provider": 1,
	"gateway":  2,
}

// Resolve returns the configured module IDs in load order: by stage, then
// by ID within a stage.
func Resolve(cfg *Config) []string {
	ids := make([]string, 0, len(cfg.Modules))
	for id := range cfg.Modules {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b string) int {
		return cmp.Or(
			cmp.Compare(stage(a), stage(b)),
			cmp.Compare(a, b),
		)
	})
	return ids
}

func stage(id string) int {
	if s, ok := loadStage[core.ModuleID(id).Namespace()]; ok {
		return s
	}
	return len(loadStage)
}
