package publisher_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/i2y/apicatalog/internal/adapter/outbound/publisher"
	"github.com/i2y/apicatalog/internal/domain"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, catalog domain.Catalog) error {
	return m.Called(ctx, catalog).Error(0)
}

func TestFanOut_Publish(t *testing.T) {
	ctx := context.Background()
	catalog := domain.Catalog{ID: "c1"}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("all targets succeed", func(t *testing.T) {
		a, b := new(MockPublisher), new(MockPublisher)
		a.On("Publish", ctx, catalog).Return(nil).Once()
		b.On("Publish", ctx, catalog).Return(nil).Once()

		f := publisher.NewFanOut(logger, publisher.Target{Name: "file", Publisher: a}, publisher.Target{Name: "skip"}, publisher.Target{Name: "http", Publisher: b})
		assert.Equal(t, 2, f.Len())
		require.NoError(t, f.Publish(ctx, catalog))
		a.AssertExpectations(t)
		b.AssertExpectations(t)
	})

	t.Run("failure does not stop later targets", func(t *testing.T) {
		a, b := new(MockPublisher), new(MockPublisher)
		boom := errors.New("connection refused")
		a.On("Publish", ctx, catalog).Return(boom).Once()
		b.On("Publish", ctx, catalog).Return(nil).Once()

		err := publisher.NewFanOut(logger, publisher.Target{Name: "http", Publisher: a}, publisher.Target{Name: "file", Publisher: b}).Publish(ctx, catalog)
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.EqualError(t, err, "http: connection refused")
		b.AssertExpectations(t)
	})

	t.Run("no targets", func(t *testing.T) {
		assert.NoError(t, publisher.NewFanOut(logger).Publish(ctx, catalog))
	})
}
