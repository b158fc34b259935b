package schema

import "github.com/i2y/apicatalog/internal/domain"

// DefaultResponseWrappers are the envelope types stripped from handler return types.
var DefaultResponseWrappers = []string{"ResponseEntity"}

// Resolve expands name against registry into a schema tree.
//
// Primitive names come back verbatim, List<T> and Set<T> become sequences of
// the resolved T, registered types become objects and anything else is an
// opaque leaf. A type that refers back to itself, directly or through other
// types, is cut off with a cyclic leaf at the point of re-entry.
//
// Resolve has no side effects and is safe for concurrent use.
func Resolve(registry *Registry, name string) domain.SchemaNode {
	r := resolution{registry: registry, path: make(map[string]struct{})}
	return r.resolve(name)
}

type resolution struct {
	registry *Registry
	// path holds the registered types currently being expanded.
	path map[string]struct{}
}

func (r *resolution) resolve(name string) domain.SchemaNode {
	if IsPrimitive(name) {
		return domain.Primitive(name)
	}
	if elem, ok := containerElem(name); ok {
		return domain.Sequence(r.resolve(elem))
	}
	fields, ok := r.registry.Lookup(name)
	if !ok {
		return domain.Opaque(name)
	}
	if _, active := r.path[name]; active {
		return domain.Cyclic(name)
	}

	r.path[name] = struct{}{}
	defer delete(r.path, name)

	out := make([]domain.SchemaField, 0, len(fields))
	for _, f := range fields {
		out = append(out, domain.SchemaField{Name: f.Name, Schema: r.resolve(f.Type)})
	}
	return domain.Object(out...)
}

// ResolveReturn resolves a handler return type, first unwrapping a
// single-argument response envelope such as ResponseEntity<T>.
func ResolveReturn(registry *Registry, returnType string, wrappers []string) domain.SchemaNode {
	if inner, ok := envelopeElem(returnType, wrappers); ok {
		return Resolve(registry, inner)
	}
	return Resolve(registry, returnType)
}
