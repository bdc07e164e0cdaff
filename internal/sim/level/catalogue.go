package level

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
)

// Entry is a registered level.
type Entry struct {
	Priority int
	Name     string
	Factory  func() Level
}

var catalogue struct {
	mu      sync.Mutex
	entries []Entry
}

// Register adds a level; levels usually register from init. Lower priority
// comes first.
func Register(priority int, name string, factory func() Level) {
	catalogue.mu.Lock()
	defer catalogue.mu.Unlock()
	for _, e := range catalogue.entries {
		if e.Name == name {
			panic(fmt.Sprintf("level: %q registered twice", name))
		}
	}
	catalogue.entries = append(catalogue.entries, Entry{Priority: priority, Name: name, Factory: factory})
	slices.SortFunc(catalogue.entries, func(a, b Entry) int {
		if c := cmp.Compare(a.Priority, b.Priority); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
}

// All lists the registered levels by priority, then name.
func All() []Entry {
	catalogue.mu.Lock()
	defer catalogue.mu.Unlock()
	return slices.Clone(catalogue.entries)
}

// First is the level to start with; false if none is registered.
func First() (Entry, bool) {
	all := All()
	if len(all) == 0 {
		return Entry{}, false
	}
	return all[0], true
}

// Lookup finds a level by name. The empty name selects First.
func Lookup(name string) (Entry, bool) {
	if name == "" {
		return First()
	}
	for _, e := range All() {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}
