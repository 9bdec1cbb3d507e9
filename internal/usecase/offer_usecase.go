package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"farmlink/internal/domain/entity"
	"farmlink/internal/domain/repository"
	"farmlink/internal/infrastructure/ratelimit"
	"farmlink/pkg/errors"
)

const (
	offerAcceptedReply = "I've accepted your offer! You can now see my contact information for direct communication."
	offerDeclinedReply = "I've declined your offer. Feel free to make another offer or discuss further."
)

type OfferUseCase struct {
	messageRepo      repository.MessageRepository
	productRepo      repository.ProductRepository
	notificationRepo repository.NotificationRepository
	rateLimiter      *ratelimit.RateLimiter
}

func NewOfferUseCase(
	messageRepo repository.MessageRepository,
	productRepo repository.ProductRepository,
	notificationRepo repository.NotificationRepository,
) *OfferUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	return &OfferUseCase{
		messageRepo:      messageRepo,
		productRepo:      productRepo,
		notificationRepo: notificationRepo,
		rateLimiter:      rateLimiter,
	}
}

type CreateOfferInput struct {
	ConversationID string
	ReceiverID     string
	ProductID      string
	Quantity       int
	UnitPrice      float64
}

// CreateOffer appends an offer message with a structured body and a pending
// status. The total is computed here, never taken from the caller.
func (uc *OfferUseCase) CreateOffer(ctx context.Context, senderID string, input CreateOfferInput) (*entity.Message, error) {
	if allowed, waitTime := uc.rateLimiter.Allow(senderID, "create_offer"); !allowed {
		return nil, errors.TooManyRequests(fmt.Sprintf("Offer rate limit exceeded. Try again in %v", waitTime.Round(time.Second)), waitTime)
	}

	if input.Quantity <= 0 {
		return nil, errors.BadRequest("Quantity must be greater than zero", nil)
	}
	if input.UnitPrice <= 0 {
		return nil, errors.BadRequest("Unit price must be greater than zero", nil)
	}

	product, err := uc.productRepo.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	total := float64(input.Quantity) * input.UnitPrice
	body := entity.FormatOfferBody(entity.OfferDetails{
		ProductName: product.Name,
		Quantity:    input.Quantity,
		Unit:        product.Unit,
		UnitPrice:   input.UnitPrice,
		Total:       total,
	})

	message := &entity.Message{
		ConversationID: input.ConversationID,
		SenderID:       senderID,
		ReceiverID:     input.ReceiverID,
		ProductID:      input.ProductID,
		Body:           body,
		IsOffer:        true,
		OfferStatus:    entity.OfferStatusPending,
	}

	if err := uc.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	return message, nil
}

// OfferResponse reports the outcome of responding to an offer. Warnings carry
// side effects that failed after the status change committed; the status
// itself is never rolled back for them.
type OfferResponse struct {
	Message  *entity.Message `json:"message"`
	Warnings []string        `json:"warnings,omitempty"`
}

// Respond resolves a pending offer. Only the offer's receiver may respond,
// and only once. On accept it appends a confirmation reply, reveals the
// product owner's contact info and notifies the buyer; on decline it appends
// the confirmation reply only.
func (uc *OfferUseCase) Respond(ctx context.Context, responderID, messageID string, decision entity.OfferStatus) (*OfferResponse, error) {
	if decision != entity.OfferStatusAccepted && decision != entity.OfferStatusDeclined {
		return nil, errors.BadRequest("Decision must be accepted or declined", nil)
	}

	message, err := uc.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}

	if !message.IsOffer {
		return nil, errors.BadRequest("Message is not an offer", nil)
	}
	if message.ReceiverID != responderID {
		return nil, errors.Forbidden("Only the offer's receiver can respond to it", nil)
	}

	updated, err := uc.messageRepo.UpdateOfferStatus(ctx, messageID, decision)
	if err != nil {
		return nil, err
	}

	// The status is committed; everything below is best effort and reported
	// as warnings rather than rolled back.
	result := &OfferResponse{Message: updated}

	reply := offerDeclinedReply
	if decision == entity.OfferStatusAccepted {
		reply = offerAcceptedReply
	}

	confirmation := &entity.Message{
		ConversationID: message.ConversationID,
		SenderID:       responderID,
		ReceiverID:     message.SenderID,
		ProductID:      message.ProductID,
		Body:           reply,
	}
	if err := uc.messageRepo.Create(ctx, confirmation); err != nil {
		log.Printf("Failed to send offer confirmation in %s: %v", message.ConversationID, err)
		result.Warnings = append(result.Warnings, "Confirmation message could not be sent")
	}

	if decision != entity.OfferStatusAccepted {
		return result, nil
	}

	if message.ProductID != "" {
		product, err := uc.productRepo.GetByID(ctx, message.ProductID)
		if err != nil {
			log.Printf("Failed to load product %s after offer accept: %v", message.ProductID, err)
			result.Warnings = append(result.Warnings, "Contact information could not be revealed")
		} else {
			// Ownership is enforced store-side too; this keeps a buyer-side
			// accept from leaking someone else's contact info.
			if err := uc.productRepo.SetContactVisible(ctx, product.ID, responderID, true); err != nil {
				log.Printf("Failed to reveal contact for product %s: %v", product.ID, err)
				result.Warnings = append(result.Warnings, "Contact information could not be revealed")
			}

			notification := &entity.Notification{
				UserID:    message.SenderID,
				Type:      entity.NotificationOrderUpdate,
				Title:     "Offer Accepted!",
				Message:   fmt.Sprintf("Your offer for %s has been accepted. The farmer's contact information is now available in the chat.", product.Name),
				RelatedID: messageID,
			}
			if err := uc.notificationRepo.Create(ctx, notification); err != nil {
				log.Printf("Failed to notify %s of accepted offer: %v", message.SenderID, err)
				result.Warnings = append(result.Warnings, "Buyer notification could not be created")
			}
		}
	}

	return result, nil
}
