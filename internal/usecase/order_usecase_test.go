package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmlink/internal/domain/entity"
	"farmlink/pkg/errors"
)

func newOrderFixture() (*OrderUseCase, *memOrderRepo, *memNotificationRepo) {
	orderRepo := newMemOrderRepo()
	productRepo := newMemProductRepo(&entity.Product{
		ID:       "p1",
		FarmerID: "farmer",
		Name:     "Potatoes",
		Price:    2.5,
		Quantity: 100,
	})
	notificationRepo := newMemNotificationRepo()
	return NewOrderUseCase(orderRepo, productRepo, notificationRepo), orderRepo, notificationRepo
}

func TestCreateOrderComputesTotal(t *testing.T) {
	uc, _, notificationRepo := newOrderFixture()

	order, err := uc.CreateOrder(context.Background(), "buyer", CreateOrderInput{ProductID: "p1", Quantity: 4})
	require.NoError(t, err)

	assert.Equal(t, entity.OrderStatusPending, order.Status)
	assert.Equal(t, 10.0, order.TotalPrice)
	assert.Equal(t, "farmer", order.FarmerID)

	feed, err := notificationRepo.ListByUser(context.Background(), "farmer", 0)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, entity.NotificationOrderUpdate, feed[0].Type)
}

func TestCreateOrderRejectsBadInput(t *testing.T) {
	uc, _, _ := newOrderFixture()

	_, err := uc.CreateOrder(context.Background(), "buyer", CreateOrderInput{ProductID: "p1", Quantity: 0})
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))

	_, err = uc.CreateOrder(context.Background(), "buyer", CreateOrderInput{ProductID: "p1", Quantity: 500})
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))

	_, err = uc.CreateOrder(context.Background(), "farmer", CreateOrderInput{ProductID: "p1", Quantity: 1})
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))
}

func TestOrderStatusTransitions(t *testing.T) {
	uc, _, _ := newOrderFixture()

	order, err := uc.CreateOrder(context.Background(), "buyer", CreateOrderInput{ProductID: "p1", Quantity: 2})
	require.NoError(t, err)

	// Buyer cannot confirm.
	_, err = uc.UpdateStatus(context.Background(), "buyer", order.ID, entity.OrderStatusConfirmed)
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	// Pending cannot jump straight to completed.
	_, err = uc.UpdateStatus(context.Background(), "farmer", order.ID, entity.OrderStatusCompleted)
	assert.True(t, errors.Is(err, "PRECONDITION_FAILED"))

	confirmed, err := uc.UpdateStatus(context.Background(), "farmer", order.ID, entity.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusConfirmed, confirmed.Status)

	completed, err := uc.UpdateStatus(context.Background(), "farmer", order.ID, entity.OrderStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCompleted, completed.Status)

	// Completed is terminal.
	_, err = uc.UpdateStatus(context.Background(), "farmer", order.ID, entity.OrderStatusCancelled)
	assert.True(t, errors.Is(err, "PRECONDITION_FAILED"))
}

func TestBuyerCanCancelOpenOrder(t *testing.T) {
	uc, _, notificationRepo := newOrderFixture()

	order, err := uc.CreateOrder(context.Background(), "buyer", CreateOrderInput{ProductID: "p1", Quantity: 2})
	require.NoError(t, err)

	cancelled, err := uc.UpdateStatus(context.Background(), "buyer", order.ID, entity.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCancelled, cancelled.Status)

	// The farmer hears about both the order and the cancellation.
	feed, err := notificationRepo.ListByUser(context.Background(), "farmer", 0)
	require.NoError(t, err)
	assert.Len(t, feed, 2)
}

func TestGetOrderRestrictedToParties(t *testing.T) {
	uc, _, _ := newOrderFixture()

	order, err := uc.CreateOrder(context.Background(), "buyer", CreateOrderInput{ProductID: "p1", Quantity: 1})
	require.NoError(t, err)

	_, err = uc.GetOrder(context.Background(), "stranger", order.ID)
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	got, err := uc.GetOrder(context.Background(), "farmer", order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
}
