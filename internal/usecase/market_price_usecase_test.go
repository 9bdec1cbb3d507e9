package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmlink/internal/domain/entity"
	"farmlink/pkg/errors"
)

func newMarketPriceFixture(users []*entity.User, prices ...*entity.MarketPrice) (*MarketPriceUseCase, *memMarketPriceRepo) {
	priceRepo := newMemMarketPriceRepo(prices...)
	return NewMarketPriceUseCase(priceRepo, newMemUserRepo(users...)), priceRepo
}

func TestUpsertPriceAdminOnly(t *testing.T) {
	uc, _ := newMarketPriceFixture([]*entity.User{
		{ID: "farmer", Role: entity.RoleFarmer},
	})

	_, err := uc.UpsertPrice(context.Background(), "farmer", UpsertMarketPriceInput{Name: "Rice", Price: 1.2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, "FORBIDDEN"))
}

func TestUpsertPriceValidatesInput(t *testing.T) {
	uc, _ := newMarketPriceFixture([]*entity.User{
		{ID: "admin", Role: entity.RoleAdmin},
	})

	_, err := uc.UpsertPrice(context.Background(), "admin", UpsertMarketPriceInput{Name: "", Price: 1.2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))

	_, err = uc.UpsertPrice(context.Background(), "admin", UpsertMarketPriceInput{Name: "Rice", Price: 0})
	require.Error(t, err)
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))
}

func TestUpsertPriceCreatesThenUpdates(t *testing.T) {
	uc, _ := newMarketPriceFixture([]*entity.User{
		{ID: "admin", Role: entity.RoleAdmin},
	})

	created, err := uc.UpsertPrice(context.Background(), "admin", UpsertMarketPriceInput{
		Name: "Rice", Category: "Grains", Price: 1.2,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	updated, err := uc.UpsertPrice(context.Background(), "admin", UpsertMarketPriceInput{
		ID: created.ID, Name: "Rice", Category: "Grains", Price: 1.5,
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, 1.5, updated.Price)

	prices, err := uc.ListPrices(context.Background())
	require.NoError(t, err)
	require.Len(t, prices, 1)
	assert.Equal(t, 1.5, prices[0].Price)

	_, err = uc.UpsertPrice(context.Background(), "admin", UpsertMarketPriceInput{
		ID: "missing", Name: "Corn", Price: 2,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestPriceSubscribeSeesCreatesAndUpdates(t *testing.T) {
	uc, priceRepo := newMarketPriceFixture([]*entity.User{
		{ID: "admin", Role: entity.RoleAdmin},
	})

	changes, err := priceRepo.Subscribe(context.Background())
	require.NoError(t, err)

	created, err := uc.UpsertPrice(context.Background(), "admin", UpsertMarketPriceInput{Name: "Rice", Price: 1.2})
	require.NoError(t, err)

	first := <-changes
	assert.Equal(t, created.ID, first.ID)
	assert.Equal(t, 1.2, first.Price)

	_, err = uc.UpsertPrice(context.Background(), "admin", UpsertMarketPriceInput{ID: created.ID, Name: "Rice", Price: 1.5})
	require.NoError(t, err)

	second := <-changes
	assert.Equal(t, created.ID, second.ID)
	assert.Equal(t, 1.5, second.Price)
}
