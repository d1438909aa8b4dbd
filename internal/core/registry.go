package core

import (
	"fmt"
	"sort"
	"sync"
)

// Profile is a named, reusable set of pipeline options for a known file
// layout (a CRM export, a newsletter list, ...).
type Profile struct {
	Key         string  `json:"key"`
	Group       string  `json:"group"`
	Label       string  `json:"label"`
	Description string  `json:"description,omitempty"`
	Options     Options `json:"-"`
}

var (
	registry   = make(map[string]Profile)
	registryMu sync.RWMutex
)

// Register adds a profile to the registry.
// Panics if a profile with the same key is already registered or its
// options are invalid.
func Register(p Profile) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[p.Key]; exists {
		panic(fmt.Sprintf("profile already registered: %s", p.Key))
	}
	if err := p.Options.Validate(); err != nil {
		panic(fmt.Sprintf("profile %s: %v", p.Key, err))
	}

	registry[p.Key] = p
}

// Get returns a profile by key.
func Get(key string) (Profile, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	p, ok := registry[key]
	return p, ok
}

// All returns every registered profile, sorted by group then key.
func All() []Profile {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]Profile, 0, len(registry))
	for _, p := range registry {
		result = append(result, p)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Group != result[j].Group {
			return result[i].Group < result[j].Group
		}
		return result[i].Key < result[j].Key
	})

	return result
}

// Groups returns all unique group names, sorted.
func Groups() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	seen := make(map[string]bool)
	for _, p := range registry {
		seen[p.Group] = true
	}

	groups := make([]string, 0, len(seen))
	for g := range seen {
		groups = append(groups, g)
	}

	sort.Strings(groups)
	return groups
}

// Clear removes all registered profiles.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]Profile)
}
