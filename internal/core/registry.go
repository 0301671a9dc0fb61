package core

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// registry holds every module compiled into the binary.
var registry = struct {
	sync.RWMutex
	byID map[ModuleID]ModuleInfo
}{byID: make(map[ModuleID]ModuleInfo)}

// RegisterModule adds a module to the registry. Call it from init(). It
// panics when the module info is invalid or the ID is already taken.
func RegisterModule(instance Module) {
	info := instance.ModuleInfo()
	if err := checkInfo(info); err != nil {
		panic(err)
	}

	registry.Lock()
	defer registry.Unlock()

	if _, exists := registry.byID[info.ID]; exists {
		panic(fmt.Sprintf("core: module already registered: %s", info.ID))
	}
	registry.byID[info.ID] = info
}

// checkInfo requires a "namespace.name" ID and a constructor. The
// namespace is what configuration validation keys on (provider, store...).
func checkInfo(info ModuleInfo) error {
	switch {
	case info.ID == "":
		return errors.New("core: module ID must not be empty")
	case info.ID.Namespace() == "" || info.ID.Name() == "":
		return fmt.Errorf("core: module ID %q must have the form namespace.name", info.ID)
	case info.New == nil:
		return fmt.Errorf("core: module %s: New function must not be nil", info.ID)
	}
	return nil
}

// GetModule returns the ModuleInfo for the given ID, or false if not found.
func GetModule(id string) (ModuleInfo, bool) {
	registry.RLock()
	defer registry.RUnlock()
	info, ok := registry.byID[ModuleID(id)]
	return info, ok
}

// GetModules returns all registered modules sorted by ID.
func GetModules() []ModuleInfo {
	registry.RLock()
	defer registry.RUnlock()
	return slices.SortedFunc(maps.Values(registry.byID), func(a, b ModuleInfo) int {
		return cmp.Compare(a.ID, b.ID)
	})
}

// resetRegistry clears the registry. Only for testing.
func resetRegistry() {
	registry.Lock()
	defer registry.Unlock()
	registry.byID = make(map[ModuleID]ModuleInfo)
}
