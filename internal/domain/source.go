package domain

// SourceUnit is the structural tree of a single source file, as produced by a
// SourceStructurer. The catalog builder never looks at raw source text.
type SourceUnit struct {
	// Name identifies the unit in the catalog (the file's base name).
	Name string
	// Path is the location the unit was loaded from, relative to the scan root.
	Path string
	// Records holds record-like declarations (name plus ordered components).
	Records []RecordDecl
	// Types holds class and interface declarations, nested ones included.
	Types []TypeDecl
}

// RecordDecl is a record-like declaration with its components in declaration order.
type RecordDecl struct {
	Name       string
	Components []Member
}

// TypeKind distinguishes class-like from interface-like declarations.
type TypeKind string

const (
	TypeKindClass     TypeKind = "class"
	TypeKindInterface TypeKind = "interface"
)

// TypeDecl is a class or interface declaration.
type TypeDecl struct {
	Name string
	Kind TypeKind
	// TopLevel is false for declarations nested inside another type.
	TopLevel    bool
	Annotations []Annotation
	// Routes are the mapping annotations found on the type, classified once at
	// structuring time.
	Routes []Mapping
	// Fields are the fields declared directly on this type.
	Fields  []Member
	Methods []MethodDecl
}

// Member is a named, typed slot: a field, a record component or a parameter.
type Member struct {
	Name string
	Type string
}

// MethodDecl is a method declared directly on a type.
type MethodDecl struct {
	Name        string
	Annotations []Annotation
	Routes      []Mapping
	Params      []Member
	ReturnType  string
}

// AnnotationForm is the syntactic shape of an annotation.
type AnnotationForm int

const (
	// AnnotationMarker has no arguments: @RestController.
	AnnotationMarker AnnotationForm = iota
	// AnnotationSingleMember has one unnamed argument: @GetMapping("/x").
	AnnotationSingleMember
	// AnnotationNormal has named members: @RequestMapping(path = "/x").
	AnnotationNormal
)

// Annotation is an annotation attached to a declaration.
type Annotation struct {
	Name string
	Form AnnotationForm
	// Value is the argument of a single-member annotation.
	Value *Value
	// Members are the named pairs of a normal annotation, in source order.
	Members []AnnotationMember
	// Literals lists every string literal appearing anywhere inside the
	// annotation's arguments, in source order.
	Literals []string
}

// AnnotationMember is one name = value pair of a normal annotation.
type AnnotationMember struct {
	Name  string
	Value Value
}

// Value is an annotation argument expression.
type Value struct {
	// Text is the expression as written in source, e.g. RequestMethod.POST.
	Text string
	// IsString reports whether the expression is a single string literal.
	IsString bool
	// String is the unquoted literal value when IsString is set.
	String string
}

// StringValue returns the literal value when v is a string literal.
func (v *Value) StringValue() (string, bool) {
	if v == nil || !v.IsString {
		return "", false
	}
	return v.String, true
}

// Annotation returns the first annotation named name, if present.
func (t TypeDecl) Annotation(name string) (Annotation, bool) {
	return findAnnotation(t.Annotations, name)
}

func findAnnotation(annotations []Annotation, name string) (Annotation, bool) {
	for _, a := range annotations {
		if a.Name == name {
			return a, true
		}
	}
	return Annotation{}, false
}

// SourceFile is raw source content awaiting structuring.
type SourceFile struct {
	// Name is the file's base name, used as the catalog FileName.
	Name string
	// Path is relative to the scan root.
	Path    string
	Content []byte
}
