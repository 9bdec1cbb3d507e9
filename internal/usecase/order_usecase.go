package usecase

import (
	"context"
	"fmt"
	"log"

	"farmlink/internal/domain/entity"
	"farmlink/internal/domain/repository"
	"farmlink/pkg/errors"
)

type OrderUseCase struct {
	orderRepo        repository.OrderRepository
	productRepo      repository.ProductRepository
	notificationRepo repository.NotificationRepository
}

func NewOrderUseCase(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	notificationRepo repository.NotificationRepository,
) *OrderUseCase {
	return &OrderUseCase{
		orderRepo:        orderRepo,
		productRepo:      productRepo,
		notificationRepo: notificationRepo,
	}
}

type CreateOrderInput struct {
	ProductID string
	Quantity  int
}

func (uc *OrderUseCase) CreateOrder(ctx context.Context, buyerID string, input CreateOrderInput) (*entity.Order, error) {
	if input.Quantity <= 0 {
		return nil, errors.BadRequest("Quantity must be greater than zero", nil)
	}

	product, err := uc.productRepo.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	if product.FarmerID == buyerID {
		return nil, errors.BadRequest("Cannot order your own product", nil)
	}
	if input.Quantity > product.Quantity {
		return nil, errors.BadRequest("Quantity exceeds available stock", nil)
	}

	order := &entity.Order{
		BuyerID:    buyerID,
		FarmerID:   product.FarmerID,
		ProductID:  product.ID,
		Quantity:   input.Quantity,
		TotalPrice: float64(input.Quantity) * product.Price,
		Status:     entity.OrderStatusPending,
	}

	if err := uc.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	uc.notifyOrderUpdate(ctx, product.FarmerID, order, fmt.Sprintf("New order for %s", product.Name))

	return order, nil
}

func (uc *OrderUseCase) GetOrder(ctx context.Context, userID, orderID string) (*entity.Order, error) {
	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.BuyerID != userID && order.FarmerID != userID {
		return nil, errors.Forbidden("You don't have permission to view this order", nil)
	}

	return order, nil
}

func (uc *OrderUseCase) ListMyOrders(ctx context.Context, userID, role string, limit, offset int) ([]*entity.Order, int64, error) {
	if role == entity.RoleFarmer {
		return uc.orderRepo.ListByFarmerID(ctx, userID, limit, offset)
	}
	return uc.orderRepo.ListByBuyerID(ctx, userID, limit, offset)
}

// validTransitions is the order state machine. Terminal states have no
// outgoing edges.
var validTransitions = map[string][]string{
	entity.OrderStatusPending:   {entity.OrderStatusConfirmed, entity.OrderStatusCancelled},
	entity.OrderStatusConfirmed: {entity.OrderStatusCompleted, entity.OrderStatusCancelled},
}

// UpdateStatus moves an order along the state machine. The farmer confirms
// and completes; either party may cancel while the order is still open.
func (uc *OrderUseCase) UpdateStatus(ctx context.Context, userID, orderID, newStatus string) (*entity.Order, error) {
	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch newStatus {
	case entity.OrderStatusConfirmed, entity.OrderStatusCompleted:
		if order.FarmerID != userID {
			return nil, errors.Forbidden("Only the farmer can update this order", nil)
		}
	case entity.OrderStatusCancelled:
		if order.BuyerID != userID && order.FarmerID != userID {
			return nil, errors.Forbidden("You don't have permission to cancel this order", nil)
		}
	default:
		return nil, errors.BadRequest("Invalid order status", nil)
	}

	allowed := false
	for _, next := range validTransitions[order.Status] {
		if next == newStatus {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, errors.PreconditionFailed(fmt.Sprintf("Cannot move order from %s to %s", order.Status, newStatus), nil)
	}

	order.Status = newStatus
	if err := uc.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	recipient := order.BuyerID
	if userID == order.BuyerID {
		recipient = order.FarmerID
	}
	uc.notifyOrderUpdate(ctx, recipient, order, fmt.Sprintf("Your order is now %s", newStatus))

	return order, nil
}

func (uc *OrderUseCase) notifyOrderUpdate(ctx context.Context, userID string, order *entity.Order, message string) {
	notification := &entity.Notification{
		UserID:    userID,
		Type:      entity.NotificationOrderUpdate,
		Title:     "Order Update",
		Message:   message,
		RelatedID: order.ID,
	}
	if err := uc.notificationRepo.Create(ctx, notification); err != nil {
		log.Printf("Failed to create order notification for %s: %v", userID, err)
	}
}
