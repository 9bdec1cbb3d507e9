package repository

import (
	"context"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"farmlink/internal/domain/entity"
	"farmlink/internal/domain/repository"
	"farmlink/pkg/errors"
)

// writeTimeout bounds every store write so a stalled backend surfaces an
// error instead of hanging the caller.
const writeTimeout = 15 * time.Second

type firestoreMessageRepository struct {
	client *firestore.Client
}

func NewFirestoreMessageRepository(client *firestore.Client) repository.MessageRepository {
	return &firestoreMessageRepository{
		client: client,
	}
}

func (r *firestoreMessageRepository) Create(ctx context.Context, message *entity.Message) error {
	if message.ConversationID == "" {
		return errors.BadRequest("Message conversation is required", nil)
	}
	if message.SenderID == "" || message.ReceiverID == "" {
		return errors.BadRequest("Message sender and receiver are required", nil)
	}

	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	message.Participants = []string{message.SenderID, message.ReceiverID}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	_, err := r.client.Collection("messages").Doc(message.ID).Set(ctx, message)
	if err != nil {
		return errors.Unavailable("Failed to create message", err)
	}

	return nil
}

func (r *firestoreMessageRepository) GetByID(ctx context.Context, id string) (*entity.Message, error) {
	doc, err := r.client.Collection("messages").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Message", err)
		}
		return nil, errors.Unavailable("Failed to get message", err)
	}

	var message entity.Message
	if err := doc.DataTo(&message); err != nil {
		return nil, errors.Internal("Failed to parse message data", err)
	}
	return &message, nil
}

func (r *firestoreMessageRepository) ListByConversation(ctx context.Context, conversationID string) ([]*entity.Message, error) {
	query := r.client.Collection("messages").
		Where("conversationId", "==", conversationID).
		OrderBy("createdAt", firestore.Asc)

	iter := query.Documents(ctx)
	defer iter.Stop()

	var messages []*entity.Message
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.Printf("Firestore error while iterating messages for conversation %s: %v", conversationID, err)
			return nil, errors.Unavailable("Failed to list conversation messages", err)
		}

		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			log.Printf("Error parsing message data for conversation %s: %v", conversationID, err)
			continue
		}
		messages = append(messages, &message)
	}

	return messages, nil
}

func (r *firestoreMessageRepository) ListForUser(ctx context.Context, userID string) ([]*entity.Message, error) {
	query := r.client.Collection("messages").
		Where("participants", "array-contains", userID).
		OrderBy("createdAt", firestore.Desc)

	iter := query.Documents(ctx)
	defer iter.Stop()

	var messages []*entity.Message
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.Printf("Firestore error while iterating messages for user %s: %v", userID, err)
			return nil, errors.Unavailable("Failed to list user messages", err)
		}

		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			log.Printf("Error parsing message data for user %s: %v", userID, err)
			continue
		}
		messages = append(messages, &message)
	}

	return messages, nil
}

func (r *firestoreMessageRepository) MarkConversationRead(ctx context.Context, conversationID, receiverID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	query := r.client.Collection("messages").
		Where("conversationId", "==", conversationID).
		Where("receiverId", "==", receiverID).
		Where("isRead", "==", false)

	iter := query.Documents(ctx)
	defer iter.Stop()

	updated := 0
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return updated, errors.Unavailable("Failed to query unread messages", err)
		}

		_, err = doc.Ref.Update(ctx, []firestore.Update{
			{Path: "isRead", Value: true},
		})
		if err != nil {
			log.Printf("MarkConversationRead: failed to update message %s: %v", doc.Ref.ID, err)
			return updated, errors.Unavailable("Failed to mark messages read", err)
		}
		updated++
	}

	return updated, nil
}

// UpdateOfferStatus runs as a transaction so the pending precondition holds
// even when two responses race.
func (r *firestoreMessageRepository) UpdateOfferStatus(ctx context.Context, messageID string, offerStatus entity.OfferStatus) (*entity.Message, error) {
	if offerStatus != entity.OfferStatusAccepted && offerStatus != entity.OfferStatusDeclined {
		return nil, errors.BadRequest("Offer status must be accepted or declined", nil)
	}

	ref := r.client.Collection("messages").Doc(messageID)
	var updated entity.Message

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return errors.NotFound("Offer message", err)
			}
			return errors.Unavailable("Failed to get offer message", err)
		}

		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			return errors.Internal("Failed to parse message data", err)
		}
		if !message.IsOffer {
			return errors.BadRequest("Message is not an offer", nil)
		}
		if message.OfferStatus != entity.OfferStatusPending {
			return errors.PreconditionFailed("Offer is not pending", nil)
		}

		message.OfferStatus = offerStatus
		updated = message
		return tx.Set(ref, &message)
	})
	if err != nil {
		if _, ok := err.(*errors.AppError); ok {
			return nil, err
		}
		return nil, errors.Unavailable("Failed to update offer status", err)
	}

	return &updated, nil
}

// Subscribe opens a snapshot listener over the user's messages. The first
// snapshot replays existing documents as inserts; consumers dedupe by id, so
// the replay is harmless.
func (r *firestoreMessageRepository) Subscribe(ctx context.Context, userID string) (<-chan entity.MessageEvent, error) {
	query := r.client.Collection("messages").
		Where("participants", "array-contains", userID).
		OrderBy("createdAt", firestore.Asc)

	events := make(chan entity.MessageEvent, 64)

	go func() {
		defer close(events)

		snapIter := query.Snapshots(ctx)
		defer snapIter.Stop()

		for {
			snap, err := snapIter.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					log.Printf("Message subscription for user %s ended: %v", userID, err)
				}
				return
			}

			for _, change := range snap.Changes {
				var message entity.Message
				if err := change.Doc.DataTo(&message); err != nil {
					log.Printf("Error parsing message change for user %s: %v", userID, err)
					continue
				}

				var kind entity.MessageEventKind
				switch change.Kind {
				case firestore.DocumentAdded:
					kind = entity.MessageInserted
				case firestore.DocumentModified:
					kind = entity.MessageUpdated
				default:
					continue
				}

				select {
				case events <- entity.MessageEvent{Kind: kind, Message: &message}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return events, nil
}
