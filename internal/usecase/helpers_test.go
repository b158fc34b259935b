package usecase_test

import (
	"io"
	"log/slog"
	"os"

	"github.com/i2y/apicatalog/internal/domain"
)

func testLogger() *slog.Logger {
	if os.Getenv("APICATALOG_TEST_LOGS") != "" {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func marker(name string) domain.Annotation {
	return domain.Annotation{Name: name, Form: domain.AnnotationMarker}
}

func single(name, value string) domain.Annotation {
	return domain.Annotation{
		Name:     name,
		Form:     domain.AnnotationSingleMember,
		Value:    &domain.Value{Text: `"` + value + `"`, IsString: true, String: value},
		Literals: []string{value},
	}
}

func normal(name string, members ...domain.AnnotationMember) domain.Annotation {
	a := domain.Annotation{Name: name, Form: domain.AnnotationNormal, Members: members}
	for _, m := range members {
		if m.Value.IsString {
			a.Literals = append(a.Literals, m.Value.String)
		}
	}
	return a
}

func strMember(name, value string) domain.AnnotationMember {
	return domain.AnnotationMember{Name: name, Value: domain.Value{Text: `"` + value + `"`, IsString: true, String: value}}
}

func exprMember(name, text string) domain.AnnotationMember {
	return domain.AnnotationMember{Name: name, Value: domain.Value{Text: text}}
}

func param(name, typ string) domain.Member {
	return domain.Member{Name: name, Type: typ}
}

func method(name, returnType string, annotations []domain.Annotation, params ...domain.Member) domain.MethodDecl {
	return domain.MethodDecl{
		Name:        name,
		Annotations: annotations,
		Routes:      domain.ClassifyMappings(annotations),
		Params:      params,
		ReturnType:  returnType,
	}
}

func controller(name string, annotations []domain.Annotation, methods ...domain.MethodDecl) domain.TypeDecl {
	return domain.TypeDecl{
		Name:        name,
		Kind:        domain.TypeKindClass,
		TopLevel:    true,
		Annotations: annotations,
		Routes:      domain.ClassifyMappings(annotations),
		Methods:     methods,
	}
}

func class(name string, fields ...domain.Member) domain.TypeDecl {
	return domain.TypeDecl{Name: name, Kind: domain.TypeKindClass, TopLevel: true, Fields: fields}
}

func annotations(a ...domain.Annotation) []domain.Annotation { return a }
