package schema

import "strings"

// stdlibPrefix marks names qualified with the Java standard-library namespace.
const stdlibPrefix = "java."

var primitives = map[string]struct{}{
	"int":           {},
	"Long":          {},
	"double":        {},
	"float":         {},
	"boolean":       {},
	"char":          {},
	"byte":          {},
	"short":         {},
	"String":        {},
	"Date":          {},
	"LocalDate":     {},
	"LocalDateTime": {},
	"Instant":       {},
	"UUID":          {},
	"Object":        {},
}

// IsPrimitive reports whether name is returned verbatim as a leaf.
func IsPrimitive(name string) bool {
	if _, ok := primitives[name]; ok {
		return true
	}
	if _, ok := containerElem(name); ok {
		return false
	}
	return strings.HasPrefix(name, stdlibPrefix)
}

// PrimitiveNames returns the fixed primitive set, excluding the prefix rule.
func PrimitiveNames() []string {
	names := make([]string, 0, len(primitives))
	for name := range primitives {
		names = append(names, name)
	}
	return names
}
