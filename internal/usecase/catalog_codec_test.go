package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i2y/apicatalog/internal/domain"
	"github.com/i2y/apicatalog/internal/usecase"
)

func TestDecodeCatalog_RoundTrip(t *testing.T) {
	result, err := newBuilder(1).Build(context.Background(), orderUnits())
	require.NoError(t, err)

	catalog := domain.Catalog{
		ID:        "catalog-1",
		RepoURL:   "https://github.com/acme/shop",
		Commit:    "abc123",
		Tag:       "v1.0.0",
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Endpoints: result.Endpoints,
		Diagnostics: []domain.Diagnostic{
			{Unit: "Broken.java", Phase: domain.PhaseStructure, Message: "syntax error at 1:1", Skipped: true},
		},
	}
	record, err := catalog.Record()
	require.NoError(t, err)

	got, err := usecase.DecodeCatalog(record.Payload)
	require.NoError(t, err)
	assert.Equal(t, catalog.ID, got.ID)
	assert.Equal(t, catalog.Tag, got.Tag)
	assert.True(t, catalog.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, catalog.Diagnostics, got.Diagnostics)
	require.Len(t, got.Endpoints, 3)
	for i := range catalog.Endpoints {
		want := catalog.Endpoints[i]
		if want.Params == nil {
			want.Params = domain.Params{}
		}
		assert.Equal(t, want, got.Endpoints[i])
	}
}

func TestDecodeCatalog_Invalid(t *testing.T) {
	_, err := usecase.DecodeCatalog([]byte(`{"data":[{"Output":42}]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode output of endpoint 0")

	_, err = usecase.DecodeCatalog([]byte(`not json`))
	assert.ErrorContains(t, err, "failed to decode catalog")
}

func TestGetCatalogUseCase_Catalog(t *testing.T) {
	ctx := context.Background()
	catalog := domain.Catalog{ID: "abc", RepoURL: "r", Commit: "c", Endpoints: []domain.Endpoint{
		{Method: domain.MethodGet, Path: "/a", Params: domain.Params{}, Return: domain.Primitive("String"), SourceFile: "A.java"},
	}}
	record, err := catalog.Record()
	require.NoError(t, err)

	repo := new(MockCatalogRepository)
	repo.On("FindByID", ctx, "abc").Return(&record, nil).Once()
	got, err := usecase.NewGetCatalogUseCase(repo, testLogger()).Catalog(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, catalog.Endpoints, got.Endpoints)

	repo.On("FindByID", ctx, "bad").Return(&domain.CatalogRecord{ID: "bad", Payload: []byte(`[]`)}, nil).Once()
	_, err = usecase.NewGetCatalogUseCase(repo, testLogger()).Catalog(ctx, "bad")
	assert.Error(t, err)
	repo.AssertExpectations(t)
}
