package registry

import (
	"errors"
	"fmt"
)

// ErrUnknownModel is returned when a requested model name is not registered.
var ErrUnknownModel = errors.New("unknown model")

type entry struct {
	name       string
	providerID string
}

// Registry maps user-facing model names to open-meteo model identifiers.
// It is populated once at construction and is safe for concurrent reads.
type Registry struct {
	entries []entry
	byName  map[string]string
}

// Default returns the registry of supported forecast models.
func Default() *Registry {
	return New([][2]string{
		{"GFS", "gfs_seamless"},
		{"ICON", "icon_seamless"},
		{"ECMWF", "ecmwf_ifs025"},
		{"JMA", "jma_seamless"},
		{"GEM", "gem_seamless"},
		{"UKMO", "ukmo_seamless"},
		{"MeteoFrance", "meteofrance_seamless"},
		{"ACCESS-G", "bom_access_global"},
	})
}

// New builds a Registry from (name, provider id) pairs, preserving order.
func New(pairs [][2]string) *Registry {
	r := &Registry{byName: make(map[string]string, len(pairs))}
	for _, p := range pairs {
		if _, dup := r.byName[p[0]]; dup {
			continue
		}
		r.entries = append(r.entries, entry{name: p[0], providerID: p[1]})
		r.byName[p[0]] = p[1]
	}
	return r
}

// Resolve returns the provider model identifier for a user-facing name.
func (r *Registry) Resolve(name string) (string, error) {
	id, ok := r.byName[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownModel, name)
	}
	return id, nil
}

// Names returns the registered model names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.name
	}
	return names
}
