package domain

// MappingKind is the closed set of route-mapping annotations the scanner understands.
type MappingKind int

const (
	MappingRequest MappingKind = iota + 1
	MappingGet
	MappingPost
	MappingPut
	MappingPatch
	MappingDelete
)

var mappingNames = map[string]MappingKind{
	"RequestMapping": MappingRequest,
	"GetMapping":     MappingGet,
	"PostMapping":    MappingPost,
	"PutMapping":     MappingPut,
	"PatchMapping":   MappingPatch,
	"DeleteMapping":  MappingDelete,
}

// String returns the annotation name for the kind.
func (k MappingKind) String() string {
	for name, kind := range mappingNames {
		if kind == k {
			return name
		}
	}
	return "Unknown"
}

// Verb returns the HTTP method a verb-specific mapping implies. The generic
// request mapping implies none.
func (k MappingKind) Verb() (HTTPMethod, bool) {
	switch k {
	case MappingGet:
		return MethodGet, true
	case MappingPost:
		return MethodPost, true
	case MappingPut:
		return MethodPut, true
	case MappingPatch:
		return MethodPatch, true
	case MappingDelete:
		return MethodDelete, true
	default:
		return "", false
	}
}

// Mapping is a route-mapping annotation reduced to the members the scanner uses.
type Mapping struct {
	Kind MappingKind
	Form AnnotationForm
	// Path is the value/path member (normal form) or the string argument
	// (single-member form). Nil when absent or not a string literal.
	Path *string
	// MethodToken is the raw source text of a normal-form method member.
	MethodToken *string
	// FirstLiteral is the first string literal anywhere in the annotation.
	FirstLiteral *string
}

// ClassifyMapping reduces an annotation to a Mapping when its name is one of
// the six mapping annotations.
func ClassifyMapping(a Annotation) (Mapping, bool) {
	kind, ok := mappingNames[a.Name]
	if !ok {
		return Mapping{}, false
	}
	m := Mapping{Kind: kind, Form: a.Form}
	if len(a.Literals) > 0 {
		first := a.Literals[0]
		m.FirstLiteral = &first
	}
	switch a.Form {
	case AnnotationSingleMember:
		if s, ok := a.Value.StringValue(); ok {
			m.Path = &s
		}
	case AnnotationNormal:
		for _, member := range a.Members {
			switch member.Name {
			case "value", "path":
				if member.Value.IsString {
					s := member.Value.String
					m.Path = &s
				}
			case "method":
				token := member.Value.Text
				m.MethodToken = &token
			}
		}
	}
	return m, true
}

// ClassifyMappings returns the mappings found in annotations, in source order.
func ClassifyMappings(annotations []Annotation) []Mapping {
	var out []Mapping
	for _, a := range annotations {
		if m, ok := ClassifyMapping(a); ok {
			out = append(out, m)
		}
	}
	return out
}

// FindMapping returns the first mapping of the given kind.
func FindMapping(mappings []Mapping, kind MappingKind) (Mapping, bool) {
	for _, m := range mappings {
		if m.Kind == kind {
			return m, true
		}
	}
	return Mapping{}, false
}
