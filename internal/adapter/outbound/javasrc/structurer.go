// Package javasrc turns Java source files into structural trees using the
// tree-sitter Java grammar.
package javasrc

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	"github.com/i2y/apicatalog/internal/domain"
)

// Structurer implements usecase.SourceStructurer for Java.
type Structurer struct {
	logger *slog.Logger
}

// NewStructurer creates a new Java Structurer.
func NewStructurer(logger *slog.Logger) *Structurer {
	return &Structurer{logger: logger.With("component", "java_structurer")}
}

// Structure parses file and returns its records and class/interface
// declarations. Files with syntax errors are rejected.
func (s *Structurer) Structure(ctx context.Context, file domain.SourceFile) (domain.SourceUnit, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(java.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, file.Content)
	if err != nil {
		return domain.SourceUnit{}, fmt.Errorf("failed to parse %s: %w", file.Path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return domain.SourceUnit{}, syntaxError(root)
	}

	w := &walker{src: file.Content}
	unit := domain.SourceUnit{Name: file.Name, Path: file.Path}
	for _, child := range namedChildren(root) {
		w.declaration(&unit, child, true)
	}

	s.logger.Debug("Structured source file",
		slog.String("file", file.Path),
		slog.Int("records", len(unit.Records)),
		slog.Int("types", len(unit.Types)))
	return unit, nil
}

// syntaxError reports the position of the first error or missing node.
func syntaxError(root *sitter.Node) error {
	var first *sitter.Node
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		if first != nil || n == nil {
			return
		}
		if n.Type() == "ERROR" || n.IsMissing() {
			first = n
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			visit(n.Child(i))
		}
	}
	visit(root)
	if first == nil {
		return fmt.Errorf("syntax error")
	}
	p := first.StartPoint()
	return fmt.Errorf("syntax error at %d:%d", p.Row+1, p.Column+1)
}

type walker struct {
	src []byte
}

func (w *walker) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(w.src)
}

// declaration records n when it is a record, class or interface declaration,
// then descends into its body for nested declarations.
func (w *walker) declaration(unit *domain.SourceUnit, n *sitter.Node, topLevel bool) {
	switch n.Type() {
	case "record_declaration":
		rec := domain.RecordDecl{Name: w.text(n.ChildByFieldName("name"))}
		if params := n.ChildByFieldName("parameters"); params != nil {
			rec.Components = w.parameters(params)
		}
		unit.Records = append(unit.Records, rec)
		w.nested(unit, n.ChildByFieldName("body"))

	case "class_declaration", "interface_declaration":
		kind := domain.TypeKindClass
		if n.Type() == "interface_declaration" {
			kind = domain.TypeKindInterface
		}
		annotations := w.annotations(modifiers(n))
		decl := domain.TypeDecl{
			Name:        w.text(n.ChildByFieldName("name")),
			Kind:        kind,
			TopLevel:    topLevel,
			Annotations: annotations,
			Routes:      domain.ClassifyMappings(annotations),
		}
		body := n.ChildByFieldName("body")
		// Nested declarations follow their enclosing type.
		idx := len(unit.Types)
		unit.Types = append(unit.Types, decl)
		w.members(&unit.Types[idx], body)
		w.nested(unit, body)

	case "enum_declaration":
		// Enums are not registered; classes declared in their body are.
		for _, child := range namedChildren(n.ChildByFieldName("body")) {
			if child.Type() == "enum_body_declarations" {
				w.nested(unit, child)
			}
		}
	}
}

// nested registers the declarations of a type body, including local
// classes declared inside method and constructor bodies.
func (w *walker) nested(unit *domain.SourceUnit, body *sitter.Node) {
	for _, child := range namedChildren(body) {
		switch child.Type() {
		case "method_declaration", "constructor_declaration", "compact_constructor_declaration":
			w.local(unit, child.ChildByFieldName("body"))
		case "block", "static_initializer":
			w.local(unit, child)
		default:
			w.declaration(unit, child, false)
		}
	}
}

// local searches a block for local class, interface and record declarations.
func (w *walker) local(unit *domain.SourceUnit, block *sitter.Node) {
	for _, child := range namedChildren(block) {
		switch child.Type() {
		case "class_declaration", "interface_declaration", "record_declaration", "enum_declaration":
			w.declaration(unit, child, false)
		default:
			w.local(unit, child)
		}
	}
}

// members collects the fields and methods declared directly in body.
func (w *walker) members(decl *domain.TypeDecl, body *sitter.Node) {
	for _, child := range namedChildren(body) {
		switch child.Type() {
		case "field_declaration", "constant_declaration":
			typ := typeText(w.text(child.ChildByFieldName("type")))
			for _, d := range namedChildren(child) {
				if d.Type() != "variable_declarator" {
					continue
				}
				decl.Fields = append(decl.Fields, domain.Member{
					Name: w.text(d.ChildByFieldName("name")),
					Type: typ + dims(w.text(d.ChildByFieldName("dimensions"))),
				})
			}
		case "method_declaration":
			annotations := w.annotations(modifiers(child))
			m := domain.MethodDecl{
				Name:        w.text(child.ChildByFieldName("name")),
				Annotations: annotations,
				Routes:      domain.ClassifyMappings(annotations),
				ReturnType:  typeText(w.text(child.ChildByFieldName("type"))),
			}
			if params := child.ChildByFieldName("parameters"); params != nil {
				m.Params = w.parameters(params)
			}
			decl.Methods = append(decl.Methods, m)
		}
	}
}

// parameters reads a formal_parameters list. Record components use the same node.
func (w *walker) parameters(n *sitter.Node) []domain.Member {
	var out []domain.Member
	for _, p := range namedChildren(n) {
		switch p.Type() {
		case "formal_parameter":
			out = append(out, domain.Member{
				Name: w.text(p.ChildByFieldName("name")),
				Type: typeText(w.text(p.ChildByFieldName("type"))) + dims(w.text(p.ChildByFieldName("dimensions"))),
			})
		case "spread_parameter":
			var typ, name string
			for _, c := range namedChildren(p) {
				switch {
				case c.Type() == "variable_declarator":
					name = w.text(c.ChildByFieldName("name"))
				case c.Type() != "modifiers" && typ == "":
					typ = typeText(w.text(c))
				}
			}
			// A varargs parameter records its element type.
			out = append(out, domain.Member{Name: name, Type: typ})
		}
	}
	return out
}

// annotations reads the annotations of a modifiers node.
func (w *walker) annotations(mods *sitter.Node) []domain.Annotation {
	var out []domain.Annotation
	for _, child := range namedChildren(mods) {
		switch child.Type() {
		case "marker_annotation":
			out = append(out, domain.Annotation{
				Name: simpleName(w.text(child.ChildByFieldName("name"))),
				Form: domain.AnnotationMarker,
			})
		case "annotation":
			out = append(out, w.annotation(child))
		}
	}
	return out
}

func (w *walker) annotation(n *sitter.Node) domain.Annotation {
	a := domain.Annotation{Name: simpleName(w.text(n.ChildByFieldName("name")))}
	args := n.ChildByFieldName("arguments")
	a.Literals = w.literals(args)

	var values []*sitter.Node
	for _, c := range namedChildren(args) {
		if isComment(c) {
			continue
		}
		values = append(values, c)
	}

	switch {
	case len(values) == 0:
		a.Form = domain.AnnotationMarker
	case len(values) == 1 && values[0].Type() != "element_value_pair":
		a.Form = domain.AnnotationSingleMember
		v := w.value(values[0])
		a.Value = &v
	default:
		a.Form = domain.AnnotationNormal
		for _, pair := range values {
			if pair.Type() != "element_value_pair" {
				continue
			}
			a.Members = append(a.Members, domain.AnnotationMember{
				Name:  w.text(pair.ChildByFieldName("key")),
				Value: w.value(pair.ChildByFieldName("value")),
			})
		}
	}
	return a
}

func (w *walker) value(n *sitter.Node) domain.Value {
	v := domain.Value{Text: w.text(n)}
	if n != nil && n.Type() == "string_literal" {
		v.IsString = true
		v.String = unquote(v.Text)
	}
	return v
}

// literals returns every string literal below n in source order.
func (w *walker) literals(n *sitter.Node) []string {
	var out []string
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		if n.Type() == "string_literal" {
			out = append(out, unquote(w.text(n)))
			return
		}
		for _, c := range namedChildren(n) {
			visit(c)
		}
	}
	if n != nil {
		visit(n)
	}
	return out
}

func namedChildren(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	count := int(n.NamedChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, n.NamedChild(i))
	}
	return out
}

// modifiers returns the modifiers child of a declaration, which is not a named field.
func modifiers(n *sitter.Node) *sitter.Node {
	for _, c := range namedChildren(n) {
		if c.Type() == "modifiers" {
			return c
		}
	}
	return nil
}

func isComment(n *sitter.Node) bool {
	switch n.Type() {
	case "line_comment", "block_comment", "comment":
		return true
	}
	return false
}

// simpleName drops the package qualifier of an annotation name.
func simpleName(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}

// typeText collapses whitespace inside a type as written in source.
func typeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func dims(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func unquote(lit string) string {
	if strings.HasPrefix(lit, `"""`) && strings.HasSuffix(lit, `"""`) && len(lit) >= 6 {
		return strings.TrimPrefix(strings.TrimSpace(lit[3:len(lit)-3]), "\n")
	}
	if s, err := strconv.Unquote(lit); err == nil {
		return s
	}
	return strings.TrimSuffix(strings.TrimPrefix(lit, `"`), `"`)
}
