package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmlink/internal/domain/entity"
	"farmlink/pkg/errors"
)

func newTestChatUseCase(messageRepo *memMessageRepo, userRepo *memUserRepo, productRepo *memProductRepo, notificationRepo *memNotificationRepo) *ChatUseCase {
	return NewChatUseCase(messageRepo, userRepo, productRepo, notificationRepo)
}

func seedMessage(t *testing.T, repo *memMessageRepo, conv, sender, receiver, product, body string, at time.Time, read bool) *entity.Message {
	t.Helper()
	m := &entity.Message{
		ConversationID: conv,
		SenderID:       sender,
		ReceiverID:     receiver,
		ProductID:      product,
		Body:           body,
		IsRead:         read,
		CreatedAt:      at,
	}
	require.NoError(t, repo.Create(context.Background(), m))
	return m
}

func TestBuildConversationsUnreadCount(t *testing.T) {
	messageRepo := newMemMessageRepo()
	userRepo := newMemUserRepo(
		&entity.User{ID: "buyer", FullName: "Ben Buyer", Role: entity.RoleBuyer},
		&entity.User{ID: "farmer", FullName: "Fay Farmer", Role: entity.RoleFarmer},
	)
	uc := newTestChatUseCase(messageRepo, userRepo, newMemProductRepo(), newMemNotificationRepo())

	base := time.Now().Add(-time.Hour)
	seedMessage(t, messageRepo, "c1", "buyer", "farmer", "", "hi", base, true)
	seedMessage(t, messageRepo, "c1", "farmer", "buyer", "", "hello", base.Add(time.Minute), false)
	seedMessage(t, messageRepo, "c1", "farmer", "buyer", "", "still there?", base.Add(2*time.Minute), false)
	seedMessage(t, messageRepo, "c2", "farmer", "buyer", "", "new stock", base.Add(3*time.Minute), true)

	conversations, err := uc.ListConversations(context.Background(), "buyer")
	require.NoError(t, err)
	require.Len(t, conversations, 2)

	byID := map[string]*entity.Conversation{}
	for _, c := range conversations {
		byID[c.ID] = c
	}
	assert.Equal(t, 2, byID["c1"].UnreadCount)
	assert.Equal(t, 0, byID["c2"].UnreadCount)
	assert.Equal(t, "Fay Farmer", byID["c1"].Participant.FullName)
}

func TestBuildConversationsOrderedByLastMessage(t *testing.T) {
	messageRepo := newMemMessageRepo()
	userRepo := newMemUserRepo(&entity.User{ID: "u2", FullName: "Other"})
	uc := newTestChatUseCase(messageRepo, userRepo, newMemProductRepo(), newMemNotificationRepo())

	base := time.Now().Add(-time.Hour)
	seedMessage(t, messageRepo, "old", "u2", "u1", "", "a", base, true)
	seedMessage(t, messageRepo, "new", "u2", "u1", "", "b", base.Add(10*time.Minute), true)
	seedMessage(t, messageRepo, "mid", "u2", "u1", "", "c", base.Add(5*time.Minute), true)

	conversations, err := uc.ListConversations(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, conversations, 3)

	assert.Equal(t, "new", conversations[0].ID)
	assert.Equal(t, "mid", conversations[1].ID)
	assert.Equal(t, "old", conversations[2].ID)
}

func TestBuildConversationsStableOnEqualTimestamps(t *testing.T) {
	messageRepo := newMemMessageRepo()
	userRepo := newMemUserRepo(&entity.User{ID: "u2", FullName: "Other"})
	uc := newTestChatUseCase(messageRepo, userRepo, newMemProductRepo(), newMemNotificationRepo())

	at := time.Now().Add(-time.Hour)
	seedMessage(t, messageRepo, "a", "u2", "u1", "", "x", at, true)
	seedMessage(t, messageRepo, "b", "u2", "u1", "", "y", at, true)

	first, err := uc.ListConversations(context.Background(), "u1")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := uc.ListConversations(context.Background(), "u1")
		require.NoError(t, err)
		require.Len(t, again, len(first))
		for j := range first {
			assert.Equal(t, first[j].ID, again[j].ID)
		}
	}
}

func TestBuildConversationsKeepsDrafts(t *testing.T) {
	messageRepo := newMemMessageRepo()
	userRepo := newMemUserRepo(&entity.User{ID: "u2", FullName: "Other"})
	uc := newTestChatUseCase(messageRepo, userRepo, newMemProductRepo(), newMemNotificationRepo())

	base := time.Now().Add(-time.Hour)
	seedMessage(t, messageRepo, "existing", "u2", "u1", "", "hey", base, true)

	drafts := []*entity.Conversation{
		{ID: "fresh", Participant: entity.Participant{ID: "u3", FullName: "New Contact"}},
		{ID: "existing", Participant: entity.Participant{ID: "u2"}},
	}

	messages, err := messageRepo.ListForUser(context.Background(), "u1")
	require.NoError(t, err)

	conversations := uc.BuildConversations(context.Background(), "u1", messages, drafts)
	require.Len(t, conversations, 2)

	// The message-less draft sorts first; the draft shadowed by real
	// messages is dropped in favor of the derived conversation.
	assert.Equal(t, "fresh", conversations[0].ID)
	assert.Nil(t, conversations[0].LastMessage)
	assert.Equal(t, 0, conversations[0].UnreadCount)
	assert.Equal(t, "existing", conversations[1].ID)
	assert.NotNil(t, conversations[1].LastMessage)
}

func TestBuildConversationsPlaceholderOnMissingProfile(t *testing.T) {
	messageRepo := newMemMessageRepo()
	uc := newTestChatUseCase(messageRepo, newMemUserRepo(), newMemProductRepo(), newMemNotificationRepo())

	seedMessage(t, messageRepo, "c1", "ghost", "u1", "", "boo", time.Now(), false)

	conversations, err := uc.ListConversations(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.Equal(t, entity.PlaceholderName, conversations[0].Participant.FullName)
}

func TestBuildConversationsResolvesProduct(t *testing.T) {
	messageRepo := newMemMessageRepo()
	userRepo := newMemUserRepo(&entity.User{ID: "u2", FullName: "Other"})
	productRepo := newMemProductRepo(&entity.Product{ID: "p1", FarmerID: "u2", Name: "Tomatoes", Unit: "kg", Price: 4})
	uc := newTestChatUseCase(messageRepo, userRepo, productRepo, newMemNotificationRepo())

	base := time.Now().Add(-time.Hour)
	seedMessage(t, messageRepo, "c1", "u2", "u1", "p1", "about the tomatoes", base, true)
	seedMessage(t, messageRepo, "c1", "u1", "u2", "", "yes?", base.Add(time.Minute), true)

	conversations, err := uc.ListConversations(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	require.NotNil(t, conversations[0].Product)
	assert.Equal(t, "Tomatoes", conversations[0].Product.Name)
}

func TestSendMessageValidatesBody(t *testing.T) {
	uc := newTestChatUseCase(newMemMessageRepo(), newMemUserRepo(), newMemProductRepo(), newMemNotificationRepo())

	_, err := uc.SendMessage(context.Background(), "u1", SendMessageInput{
		ConversationID: "c1",
		ReceiverID:     "u2",
		Body:           "   ",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))
}

func TestSendMessageNotifiesReceiver(t *testing.T) {
	messageRepo := newMemMessageRepo()
	notificationRepo := newMemNotificationRepo()
	userRepo := newMemUserRepo(&entity.User{ID: "u1", FullName: "Sender Sam"})
	uc := newTestChatUseCase(messageRepo, userRepo, newMemProductRepo(), notificationRepo)

	message, err := uc.SendMessage(context.Background(), "u1", SendMessageInput{
		ConversationID: "c1",
		ReceiverID:     "u2",
		Body:           "hello there",
	})
	require.NoError(t, err)
	assert.False(t, message.IsOffer)
	assert.NotEmpty(t, message.ID)

	notifications, err := notificationRepo.ListByUser(context.Background(), "u2", 0)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, entity.NotificationNewMessage, notifications[0].Type)
	assert.Contains(t, notifications[0].Message, "Sender Sam")
}

func TestMarkConversationRead(t *testing.T) {
	messageRepo := newMemMessageRepo()
	userRepo := newMemUserRepo(&entity.User{ID: "u2", FullName: "Other"})
	uc := newTestChatUseCase(messageRepo, userRepo, newMemProductRepo(), newMemNotificationRepo())

	base := time.Now().Add(-time.Hour)
	seedMessage(t, messageRepo, "c1", "u2", "u1", "", "one", base, false)
	seedMessage(t, messageRepo, "c1", "u2", "u1", "", "two", base.Add(time.Minute), false)
	seedMessage(t, messageRepo, "c1", "u1", "u2", "", "mine", base.Add(2*time.Minute), false)

	count, err := uc.MarkConversationRead(context.Background(), "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	conversations, err := uc.ListConversations(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.Equal(t, 0, conversations[0].UnreadCount)
}

func TestStartConversationReusesExistingThread(t *testing.T) {
	messageRepo := newMemMessageRepo()
	userRepo := newMemUserRepo(&entity.User{ID: "u2", FullName: "Other"})
	uc := newTestChatUseCase(messageRepo, userRepo, newMemProductRepo(&entity.Product{ID: "p1", FarmerID: "u2", Name: "Corn"}), newMemNotificationRepo())

	seedMessage(t, messageRepo, "c1", "u1", "u2", "p1", "hi", time.Now().Add(-time.Minute), true)
	seedMessage(t, messageRepo, "c1", "u2", "u1", "p1", "hello back", time.Now(), false)

	conv, err := uc.StartConversation(context.Background(), "u1", StartConversationInput{
		ReceiverID: "u2",
		ProductID:  "p1",
	})
	require.NoError(t, err)
	assert.Equal(t, "c1", conv.ID)

	// A reused thread carries its last message and unread count; only a
	// fresh one is a draft.
	require.NotNil(t, conv.LastMessage)
	assert.Equal(t, "hello back", conv.LastMessage.Body)
	assert.Equal(t, 1, conv.UnreadCount)

	fresh, err := uc.StartConversation(context.Background(), "u1", StartConversationInput{
		ReceiverID: "u2",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "c1", fresh.ID)
	assert.Equal(t, "Other", fresh.Participant.FullName)
	assert.Nil(t, fresh.LastMessage)
	assert.Zero(t, fresh.UnreadCount)
}

func TestStartConversationRejectsSelf(t *testing.T) {
	uc := newTestChatUseCase(newMemMessageRepo(), newMemUserRepo(), newMemProductRepo(), newMemNotificationRepo())

	_, err := uc.StartConversation(context.Background(), "u1", StartConversationInput{ReceiverID: "u1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))
}

func TestGetMessagesRequiresParticipation(t *testing.T) {
	messageRepo := newMemMessageRepo()
	uc := newTestChatUseCase(messageRepo, newMemUserRepo(), newMemProductRepo(), newMemNotificationRepo())

	seedMessage(t, messageRepo, "c1", "u1", "u2", "", "private", time.Now(), false)

	_, err := uc.GetMessages(context.Background(), "intruder", "c1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	messages, err := uc.GetMessages(context.Background(), "u1", "c1")
	require.NoError(t, err)
	assert.Len(t, messages, 1)
}
