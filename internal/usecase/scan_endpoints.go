package usecase

import (
	"fmt"
	"log/slog"

	"github.com/i2y/apicatalog/internal/domain"
	"github.com/i2y/apicatalog/internal/schema"
)

// DefaultControllerMarkers are the annotations that mark a type as exposing
// HTTP handler methods.
var DefaultControllerMarkers = []string{"RestController", "Controller"}

// verbMappings are checked in this order; the first one present on a method wins.
var verbMappings = []domain.MappingKind{
	domain.MappingGet,
	domain.MappingPost,
	domain.MappingPut,
	domain.MappingPatch,
	domain.MappingDelete,
}

// EndpointScanner finds the handler methods of controller types and describes
// them as endpoints.
type EndpointScanner struct {
	markers  []string
	wrappers []string
	logger   *slog.Logger
}

// NewEndpointScanner creates a new EndpointScanner. Nil markers or wrappers
// select the defaults.
func NewEndpointScanner(markers, wrappers []string, logger *slog.Logger) *EndpointScanner {
	if len(markers) == 0 {
		markers = DefaultControllerMarkers
	}
	if len(wrappers) == 0 {
		wrappers = schema.DefaultResponseWrappers
	}
	return &EndpointScanner{
		markers:  markers,
		wrappers: wrappers,
		logger:   logger.With("component", "endpoint_scanner"),
	}
}

// Scan returns the endpoints declared in unit, in declaration order, resolving
// parameter and return types against reg.
func (s *EndpointScanner) Scan(unit domain.SourceUnit, reg *schema.Registry) (endpoints []domain.Endpoint, err error) {
	defer func() {
		if r := recover(); r != nil {
			endpoints, err = nil, fmt.Errorf("panic while scanning endpoints: %v", r)
		}
	}()

	for _, typ := range unit.Types {
		marker, ok := s.controllerMarker(typ)
		if !ok {
			continue
		}
		base := basePath(typ, marker)
		log := s.logger.With(slog.String("unit", unit.Path), slog.String("controller", typ.Name), slog.String("base_path", base))

		for _, method := range typ.Methods {
			verb, path, ok := methodRoute(method.Routes)
			if !ok {
				continue
			}
			ep := domain.Endpoint{
				Method:     verb,
				Path:       base + path,
				Params:     make(domain.Params, 0, len(method.Params)),
				Return:     schema.ResolveReturn(reg, method.ReturnType, s.wrappers),
				SourceFile: unit.Name,
			}
			for _, p := range method.Params {
				ep.Params = append(ep.Params, domain.SchemaField{Name: p.Name, Schema: schema.Resolve(reg, p.Type)})
			}
			log.Debug("Found endpoint", slog.String("method", string(ep.Method)), slog.String("path", ep.Path), slog.String("handler", method.Name))
			endpoints = append(endpoints, ep)
		}
	}
	return endpoints, nil
}

func (s *EndpointScanner) controllerMarker(typ domain.TypeDecl) (domain.Annotation, bool) {
	if !typ.TopLevel {
		return domain.Annotation{}, false
	}
	for _, name := range s.markers {
		if a, ok := typ.Annotation(name); ok {
			return a, true
		}
	}
	return domain.Annotation{}, false
}

// basePath prefers a class-level request mapping. Without one, a string
// argument on the controller marker itself is used.
func basePath(typ domain.TypeDecl, marker domain.Annotation) string {
	if m, ok := domain.FindMapping(typ.Routes, domain.MappingRequest); ok {
		if m.Path != nil {
			return *m.Path
		}
		return ""
	}
	if s, ok := marker.Value.StringValue(); ok {
		return s
	}
	for _, member := range marker.Members {
		if member.Name == "value" && member.Value.IsString {
			return member.Value.String
		}
	}
	return ""
}

// methodRoute derives the verb and method-level path from a method's mappings.
// A generic request mapping overrides what a verb-specific one set: its path
// member replaces the path and its method member replaces the verb with the
// raw source token. ok is false when the method has no mapping at all.
func methodRoute(routes []domain.Mapping) (verb domain.HTTPMethod, path string, ok bool) {
	verb = domain.MethodUnknown
	for _, kind := range verbMappings {
		m, found := domain.FindMapping(routes, kind)
		if !found {
			continue
		}
		verb, _ = kind.Verb()
		path = "/"
		if m.FirstLiteral != nil {
			path = *m.FirstLiteral
		}
		ok = true
		break
	}

	if m, found := domain.FindMapping(routes, domain.MappingRequest); found {
		ok = true
		if m.Path != nil {
			path = *m.Path
		}
		if m.Form == domain.AnnotationNormal && m.MethodToken != nil {
			verb = domain.HTTPMethod(*m.MethodToken)
		}
	}
	return verb, path, ok
}
