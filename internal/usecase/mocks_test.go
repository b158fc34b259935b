package usecase_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/i2y/apicatalog/internal/domain"
	"github.com/i2y/apicatalog/internal/usecase"
)

// MockRepoFetcher is a mock implementation of the RepoFetcher interface.
type MockRepoFetcher struct {
	mock.Mock
}

func (m *MockRepoFetcher) Checkout(ctx context.Context, repoURL, commit string) (usecase.Checkout, error) {
	args := m.Called(ctx, repoURL, commit)
	return args.Get(0).(usecase.Checkout), args.Error(1)
}

// MockSourceLoader is a mock implementation of the SourceLoader interface.
type MockSourceLoader struct {
	mock.Mock
}

func (m *MockSourceLoader) Load(ctx context.Context, root string) ([]domain.SourceFile, []domain.Diagnostic, error) {
	args := m.Called(ctx, root)
	var files []domain.SourceFile
	var diags []domain.Diagnostic
	if v := args.Get(0); v != nil {
		files = v.([]domain.SourceFile)
	}
	if v := args.Get(1); v != nil {
		diags = v.([]domain.Diagnostic)
	}
	return files, diags, args.Error(2)
}

// MockSourceStructurer is a mock implementation of the SourceStructurer interface.
type MockSourceStructurer struct {
	mock.Mock
}

func (m *MockSourceStructurer) Structure(ctx context.Context, file domain.SourceFile) (domain.SourceUnit, error) {
	args := m.Called(ctx, file)
	return args.Get(0).(domain.SourceUnit), args.Error(1)
}

// MockCatalogPublisher is a mock implementation of the CatalogPublisher interface.
type MockCatalogPublisher struct {
	mock.Mock
}

func (m *MockCatalogPublisher) Publish(ctx context.Context, catalog domain.Catalog) error {
	args := m.Called(ctx, catalog)
	return args.Error(0)
}

// MockCatalogRepository is a mock implementation of the CatalogRepository interface.
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) Save(ctx context.Context, record domain.CatalogRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockCatalogRepository) List(ctx context.Context, filter usecase.CatalogFilter) ([]domain.CatalogRecord, error) {
	args := m.Called(ctx, filter)
	var records []domain.CatalogRecord
	if v := args.Get(0); v != nil {
		records = v.([]domain.CatalogRecord)
	}
	return records, args.Error(1)
}

func (m *MockCatalogRepository) FindByID(ctx context.Context, id string) (*domain.CatalogRecord, error) {
	args := m.Called(ctx, id)
	var record *domain.CatalogRecord
	if v := args.Get(0); v != nil {
		record = v.(*domain.CatalogRecord)
	}
	return record, args.Error(1)
}
