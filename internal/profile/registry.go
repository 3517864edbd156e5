package profile

import (
	"fmt"
	"sort"
	"strings"
)

// Registry holds profiles by name.
type Registry struct {
	profiles map[string]*Profile
}

// NewRegistry creates an empty profile registry.
func NewRegistry() *Registry {
	return &Registry{profiles: make(map[string]*Profile)}
}

// Register adds a profile. Panics on a duplicate name.
func (r *Registry) Register(p *Profile) {
	if err := r.Add(p); err != nil {
		panic(err)
	}
}

// Add adds a profile, failing on a duplicate name.
func (r *Registry) Add(p *Profile) error {
	key := strings.ToLower(p.Name)
	if _, ok := r.profiles[key]; ok {
		return fmt.Errorf("duplicate profile: %s", key)
	}
	r.profiles[key] = p
	return nil
}

// AddDefinitions builds and registers each definition.
func (r *Registry) AddDefinitions(defs []Definition) error {
	for _, def := range defs {
		p, err := Build(def)
		if err != nil {
			return err
		}
		if err := r.Add(p); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the profile for name, or nil.
func (r *Registry) Get(name string) *Profile {
	return r.profiles[strings.ToLower(strings.TrimSpace(name))]
}

// Names returns the registered profile names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.profiles))
	for n := range r.profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry returns a registry with all built-in profiles.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, def := range Builtins() {
		r.Register(MustBuild(def))
	}
	return r
}
