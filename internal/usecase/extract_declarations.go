package usecase

import (
	"fmt"
	"log/slog"

	"github.com/i2y/apicatalog/internal/domain"
	"github.com/i2y/apicatalog/internal/schema"
)

// Declaration is a type name with its directly declared fields.
type Declaration struct {
	Name   string
	Fields []domain.Member
}

// DeclarationExtractor collects the record and class/interface declarations of
// a source unit for the type registry.
type DeclarationExtractor struct {
	logger *slog.Logger
}

// NewDeclarationExtractor creates a new DeclarationExtractor.
func NewDeclarationExtractor(logger *slog.Logger) *DeclarationExtractor {
	return &DeclarationExtractor{
		logger: logger.With("component", "declaration_extractor"),
	}
}

// Extract returns the declarations of unit: records first, then classes and
// interfaces, each in declaration order. Only fields declared directly on a
// type are included. A malformed unit yields an error and no declarations.
func (e *DeclarationExtractor) Extract(unit domain.SourceUnit) (decls []Declaration, err error) {
	defer func() {
		if r := recover(); r != nil {
			decls, err = nil, fmt.Errorf("panic while extracting declarations: %v", r)
		}
	}()

	for _, rec := range unit.Records {
		if rec.Name == "" {
			return nil, fmt.Errorf("record declaration without a name in %s", unit.Name)
		}
		decls = append(decls, Declaration{Name: rec.Name, Fields: rec.Components})
	}
	for _, typ := range unit.Types {
		if typ.Name == "" {
			return nil, fmt.Errorf("%s declaration without a name in %s", typ.Kind, unit.Name)
		}
		decls = append(decls, Declaration{Name: typ.Name, Fields: typ.Fields})
	}
	e.logger.Debug("Extracted declarations", slog.String("unit", unit.Path), slog.Int("count", len(decls)))
	return decls, nil
}

// Register adds decls to the registry builder on behalf of unit.
func (e *DeclarationExtractor) Register(b *schema.Builder, unit domain.SourceUnit, decls []Declaration) {
	for _, d := range decls {
		b.Add(unitID(unit), d.Name, d.Fields)
	}
}

func unitID(unit domain.SourceUnit) string {
	if unit.Path != "" {
		return unit.Path
	}
	return unit.Name
}
