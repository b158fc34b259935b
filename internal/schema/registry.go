// Package schema builds the type registry and expands type references into
// schema trees.
package schema

import "github.com/i2y/apicatalog/internal/domain"

// FieldMap is the ordered field list of a declared type.
type FieldMap []domain.Member

// Registry maps declared type names to their fields. It is immutable once
// returned by a Builder.
//
// The namespace is flat: two declarations with the same simple name in
// different packages collide, and the later one wins.
type Registry struct {
	types map[string]FieldMap
}

// Lookup returns the fields registered for name.
func (r *Registry) Lookup(name string) (FieldMap, bool) {
	if r == nil {
		return nil, false
	}
	fields, ok := r.types[name]
	return fields, ok
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.types)
}

// Names returns the registered type names in no particular order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	return names
}

// Overwrite records a declaration that replaced an earlier one with the same name.
type Overwrite struct {
	Name     string
	Unit     string
	Previous string
}

// Builder accumulates declarations and produces a Registry.
type Builder struct {
	types      map[string]FieldMap
	origin     map[string]string
	overwrites []Overwrite
	built      bool
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		types:  make(map[string]FieldMap),
		origin: make(map[string]string),
	}
}

// Add registers name with fields, replacing any earlier entry of the same name.
// unit identifies the declaring source unit for collision reporting.
func (b *Builder) Add(unit, name string, fields []domain.Member) {
	if b.built {
		panic("schema: Add called after Build")
	}
	if prev, ok := b.origin[name]; ok {
		b.overwrites = append(b.overwrites, Overwrite{Name: name, Unit: unit, Previous: prev})
	}
	copied := make(FieldMap, len(fields))
	copy(copied, fields)
	b.types[name] = copied
	b.origin[name] = unit
}

// Overwrites returns every name collision seen so far, in the order they happened.
func (b *Builder) Overwrites() []Overwrite {
	return b.overwrites
}

// Build freezes the builder and returns the registry. The builder must not be
// used afterwards.
func (b *Builder) Build() *Registry {
	b.built = true
	return &Registry{types: b.types}
}

// NewRegistry is a convenience for building a registry from a literal map.
// Field order within each entry is preserved.
func NewRegistry(types map[string][]domain.Member) *Registry {
	b := NewBuilder()
	for name, fields := range types {
		b.Add("", name, fields)
	}
	return b.Build()
}
