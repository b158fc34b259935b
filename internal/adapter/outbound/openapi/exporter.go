// Package openapi exports endpoint catalogs as OpenAPI 3 documents.
package openapi

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/i2y/apicatalog/internal/domain"
)

// Version is the OpenAPI version of exported documents.
const Version = "3.0.3"

// Exporter converts catalogs into OpenAPI documents.
type Exporter struct {
	logger *slog.Logger
}

// NewExporter creates a new OpenAPI Exporter.
func NewExporter(logger *slog.Logger) *Exporter {
	return &Exporter{
		logger: logger.With("component", "openapi_exporter"),
	}
}

// Export builds an OpenAPI document describing catalog's endpoints. Endpoints
// whose verb cannot be mapped to an HTTP method, and repeats of an already
// exported method and path, are left out and logged.
func (e *Exporter) Export(catalog domain.Catalog) *openapi3.T {
	log := e.logger.With(slog.String("catalog_id", catalog.ID), slog.String("repo_url", catalog.RepoURL))

	version := catalog.Tag
	if version == "" {
		version = catalog.Commit
	}
	if version == "" {
		version = "unversioned"
	}
	title := catalog.RepoURL
	if title == "" {
		title = "API catalog"
	}
	doc := &openapi3.T{
		OpenAPI: Version,
		Info:    &openapi3.Info{Title: title, Version: version},
		Paths:   openapi3.NewPaths(),
	}

	usedIDs := make(map[string]int)
	exported, skipped := 0, 0
	for _, ep := range catalog.Endpoints {
		method, ok := httpMethod(ep.Method)
		path := pathTemplate(ep.Path)
		log := log.With(slog.String("method", string(ep.Method)), slog.String("path", ep.Path))
		if !ok {
			log.Warn("Skipping endpoint without a concrete HTTP method")
			skipped++
			continue
		}

		item := doc.Paths.Value(path)
		if item == nil {
			item = &openapi3.PathItem{}
			doc.Paths.Set(path, item)
		}
		if item.GetOperation(method) != nil {
			log.Warn("Skipping duplicate operation")
			skipped++
			continue
		}

		item.SetOperation(method, e.operation(ep, method, path, usedIDs))
		exported++
	}

	log.Info("Exported catalog as OpenAPI document", slog.Int("exported_count", exported), slog.Int("skipped_count", skipped))
	return doc
}

func (e *Exporter) operation(ep domain.Endpoint, method, path string, usedIDs map[string]int) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.OperationID = operationID(method, path, usedIDs)
	op.Summary = fmt.Sprintf("%s %s", method, path)
	op.Extensions = map[string]any{"x-source-file": ep.SourceFile}

	pathParams := templateParams(path)
	declared := make(map[string]domain.SchemaNode, len(ep.Params))
	for _, p := range ep.Params {
		declared[p.Name] = p.Schema
	}
	for _, name := range pathParams {
		s := openapi3.NewStringSchema()
		if node, ok := declared[name]; ok {
			s = Schema(node)
		}
		op.AddParameter(openapi3.NewPathParameter(name).WithSchema(s))
	}

	bodyAllowed := method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch
	for _, p := range ep.Params {
		if contains(pathParams, p.Name) {
			continue
		}
		structured := p.Schema.Kind == domain.SchemaObject || p.Schema.Kind == domain.SchemaSequence
		if bodyAllowed && structured && op.RequestBody == nil {
			op.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().
				WithDescription(p.Name).
				WithRequired(true).
				WithJSONSchema(Schema(p.Schema))}
			continue
		}
		op.AddParameter(openapi3.NewQueryParameter(p.Name).WithSchema(Schema(p.Schema)))
	}

	resp := openapi3.NewResponse().WithDescription("OK")
	if !isVoid(ep.Return) {
		resp = resp.WithJSONSchema(Schema(ep.Return))
	}
	op.Responses = openapi3.NewResponses(openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{Value: resp}))
	return op
}

// Schema converts a schema node into an OpenAPI schema.
func Schema(node domain.SchemaNode) *openapi3.Schema {
	switch node.Kind {
	case domain.SchemaPrimitive:
		return primitiveSchema(node.Name)
	case domain.SchemaSequence:
		items := openapi3.NewSchema()
		if node.Elem != nil {
			items = Schema(*node.Elem)
		}
		return openapi3.NewArraySchema().WithItems(items)
	case domain.SchemaObject:
		s := openapi3.NewObjectSchema()
		for _, f := range node.Fields {
			s.WithProperty(f.Name, Schema(f.Schema))
		}
		return s
	case domain.SchemaCyclic:
		s := openapi3.NewObjectSchema()
		s.Description = "Recursive reference to " + node.Name
		s.Extensions = map[string]any{"x-cyclic-ref": node.Name}
		return s
	default:
		s := openapi3.NewSchema()
		s.Description = node.Name
		s.Extensions = map[string]any{"x-java-type": node.Name}
		return s
	}
}

func primitiveSchema(name string) *openapi3.Schema {
	switch name {
	case "int", "short", "byte":
		return openapi3.NewInt32Schema()
	case "Long":
		return openapi3.NewInt64Schema()
	case "double":
		return openapi3.NewFloat64Schema()
	case "float":
		return openapi3.NewFloat64Schema().WithFormat("float")
	case "boolean":
		return openapi3.NewBoolSchema()
	case "char", "String":
		return openapi3.NewStringSchema()
	case "Date", "LocalDateTime", "Instant":
		return openapi3.NewDateTimeSchema()
	case "LocalDate":
		return openapi3.NewStringSchema().WithFormat("date")
	case "UUID":
		return openapi3.NewUUIDSchema()
	case "java.math.BigDecimal", "java.math.BigInteger":
		s := openapi3.NewFloat64Schema()
		s.Format = ""
		return s
	}
	s := openapi3.NewSchema()
	if name != "Object" {
		s.Extensions = map[string]any{"x-java-type": name}
	}
	return s
}

func isVoid(node domain.SchemaNode) bool {
	return node.Kind == domain.SchemaOpaque && (node.Name == "void" || node.Name == "Void")
}

// httpMethod maps an endpoint verb, including raw override tokens such as
// RequestMethod.POST, to an HTTP method.
func httpMethod(m domain.HTTPMethod) (string, bool) {
	token := string(m)
	if i := strings.LastIndex(token, "."); i >= 0 {
		token = token[i+1:]
	}
	switch token = strings.ToUpper(strings.TrimSpace(token)); token {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete,
		http.MethodHead, http.MethodOptions, http.MethodTrace:
		return token, true
	}
	return "", false
}

// pathTemplate makes an endpoint path usable as an OpenAPI path key: it adds
// the leading slash and drops regular expressions from {name:regex} segments.
func pathTemplate(p string) string {
	var b strings.Builder
	if !strings.HasPrefix(p, "/") {
		b.WriteByte('/')
	}
	for len(p) > 0 {
		open := strings.IndexByte(p, '{')
		if open < 0 {
			b.WriteString(p)
			break
		}
		end := strings.IndexByte(p[open:], '}')
		if end < 0 {
			b.WriteString(p)
			break
		}
		b.WriteString(p[:open])
		name := p[open+1 : open+end]
		if colon := strings.IndexByte(name, ':'); colon >= 0 {
			name = name[:colon]
		}
		b.WriteString("{" + strings.TrimSpace(name) + "}")
		p = p[open+end+1:]
	}
	return b.String()
}

// templateParams lists the {name} parameters of a path template in order.
func templateParams(path string) []string {
	var names []string
	for {
		open := strings.IndexByte(path, '{')
		if open < 0 {
			return names
		}
		end := strings.IndexByte(path[open:], '}')
		if end < 0 {
			return names
		}
		if name := path[open+1 : open+end]; name != "" && !contains(names, name) {
			names = append(names, name)
		}
		path = path[open+end+1:]
	}
}

// operationID derives a unique identifier from method and path.
func operationID(method, path string, used map[string]int) string {
	var parts []string
	parts = append(parts, strings.ToLower(method))
	for _, part := range strings.Split(strings.Trim(path, "/"), "/") {
		if part = strings.Trim(part, "{}"); part != "" {
			parts = append(parts, sanitizeName(part))
		}
	}
	id := strings.Join(parts, "_")
	used[id]++
	if n := used[id]; n > 1 {
		id = fmt.Sprintf("%s_%d", id, n)
	}
	return id
}

// sanitizeName removes characters unsuitable for identifiers and replaces them.
func sanitizeName(name string) string {
	name = strings.ToLower(name)
	replacer := strings.NewReplacer(" ", "_", "-", "_", "/", "_", ".", "_")
	name = replacer.Replace(name)
	for strings.Contains(name, "__") {
		name = strings.ReplaceAll(name, "__", "_")
	}
	return strings.Trim(name, "_")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
