package handler

import (
	"farmlink/internal/realtime"
	"farmlink/internal/usecase"
)

var (
	authHandler         *AuthHandler
	userHandler         *UserHandler
	chatHandler         *ChatHandler
	notificationHandler *NotificationHandler
	productHandler      *ProductHandler
	orderHandler        *OrderHandler
	reviewHandler       *ReviewHandler
	marketPriceHandler  *MarketPriceHandler
)

func Setup(
	authUseCase *usecase.AuthUseCase,
	userUseCase *usecase.UserUseCase,
	chatUseCase *usecase.ChatUseCase,
	offerUseCase *usecase.OfferUseCase,
	notificationUseCase *usecase.NotificationUseCase,
	productUseCase *usecase.ProductUseCase,
	orderUseCase *usecase.OrderUseCase,
	reviewUseCase *usecase.ReviewUseCase,
	marketPriceUseCase *usecase.MarketPriceUseCase,
	hub *realtime.Hub,
) {
	authHandler = NewAuthHandler(authUseCase)
	userHandler = NewUserHandler(userUseCase)
	chatHandler = NewChatHandler(chatUseCase, offerUseCase, hub)
	notificationHandler = NewNotificationHandler(notificationUseCase)
	productHandler = NewProductHandler(productUseCase)
	orderHandler = NewOrderHandler(orderUseCase, userUseCase)
	reviewHandler = NewReviewHandler(reviewUseCase)
	marketPriceHandler = NewMarketPriceHandler(marketPriceUseCase)
}

func GetAuthHandler() *AuthHandler {
	return authHandler
}

func GetUserHandler() *UserHandler {
	return userHandler
}

func GetChatHandler() *ChatHandler {
	return chatHandler
}

func GetNotificationHandler() *NotificationHandler {
	return notificationHandler
}

func GetProductHandler() *ProductHandler {
	return productHandler
}

func GetOrderHandler() *OrderHandler {
	return orderHandler
}

func GetReviewHandler() *ReviewHandler {
	return reviewHandler
}

func GetMarketPriceHandler() *MarketPriceHandler {
	return marketPriceHandler
}
