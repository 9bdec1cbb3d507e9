package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"farmlink/internal/domain/entity"
	"farmlink/pkg/errors"
)

// In-memory repository fakes. They mirror the Firestore adapters' contracts,
// including the store-side ownership check on contact visibility and the
// pending precondition on offer status.

type memMessageRepo struct {
	mu       sync.Mutex
	messages []*entity.Message
	subs     []chan entity.MessageEvent
	failNext error
}

func newMemMessageRepo() *memMessageRepo {
	return &memMessageRepo{}
}

func (r *memMessageRepo) Create(ctx context.Context, message *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return err
	}

	if message.ConversationID == "" || message.SenderID == "" || message.ReceiverID == "" {
		return errors.BadRequest("Conversation, sender and receiver are required", nil)
	}

	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	message.Participants = []string{message.SenderID, message.ReceiverID}

	copied := *message
	r.messages = append(r.messages, &copied)
	r.broadcastLocked(entity.MessageEvent{Kind: entity.MessageInserted, Message: &copied})
	return nil
}

func (r *memMessageRepo) GetByID(ctx context.Context, id string) (*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.messages {
		if m.ID == id {
			copied := *m
			return &copied, nil
		}
	}
	return nil, errors.NotFound("Message", nil)
}

func (r *memMessageRepo) ListByConversation(ctx context.Context, conversationID string) ([]*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.Message
	for _, m := range r.messages {
		if m.ConversationID == conversationID {
			copied := *m
			out = append(out, &copied)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memMessageRepo) ListForUser(ctx context.Context, userID string) ([]*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.Message
	for _, m := range r.messages {
		if m.InvolvedWith(userID) {
			copied := *m
			out = append(out, &copied)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memMessageRepo) MarkConversationRead(ctx context.Context, conversationID, receiverID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, m := range r.messages {
		if m.ConversationID == conversationID && m.ReceiverID == receiverID && !m.IsRead {
			m.IsRead = true
			count++
			copied := *m
			r.broadcastLocked(entity.MessageEvent{Kind: entity.MessageUpdated, Message: &copied})
		}
	}
	return count, nil
}

func (r *memMessageRepo) UpdateOfferStatus(ctx context.Context, messageID string, status entity.OfferStatus) (*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.messages {
		if m.ID == messageID {
			if !m.IsOffer {
				return nil, errors.BadRequest("Message is not an offer", nil)
			}
			if m.OfferStatus != entity.OfferStatusPending {
				return nil, errors.PreconditionFailed("Offer has already been resolved", nil)
			}
			m.OfferStatus = status
			copied := *m
			r.broadcastLocked(entity.MessageEvent{Kind: entity.MessageUpdated, Message: &copied})
			return &copied, nil
		}
	}
	return nil, errors.NotFound("Message", nil)
}

func (r *memMessageRepo) Subscribe(ctx context.Context, userID string) (<-chan entity.MessageEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch := make(chan entity.MessageEvent, 64)
	r.subs = append(r.subs, ch)
	return ch, nil
}

func (r *memMessageRepo) broadcastLocked(event entity.MessageEvent) {
	for _, ch := range r.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newMemUserRepo(users ...*entity.User) *memUserRepo {
	r := &memUserRepo{users: make(map[string]*entity.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *memUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, errors.NotFound("User", nil)
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, errors.NotFound("User", nil)
}

func (r *memUserRepo) Update(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) FindByField(ctx context.Context, field, value string, limit, offset int) ([]*entity.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*entity.User
	for _, u := range r.users {
		if field == "role" && u.Role == value {
			copied := *u
			matched = append(matched, &copied)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := int64(len(matched))
	start := offset
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if limit > 0 && start+limit < end {
		end = start + limit
	}
	return matched[start:end], total, nil
}

type memProductRepo struct {
	mu       sync.Mutex
	products map[string]*entity.Product
}

func newMemProductRepo(products ...*entity.Product) *memProductRepo {
	r := &memProductRepo{products: make(map[string]*entity.Product)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *memProductRepo) Create(ctx context.Context, product *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	r.products[product.ID] = product
	return nil
}

func (r *memProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, errors.NotFound("Product", nil)
}

func (r *memProductRepo) List(ctx context.Context, filter map[string]interface{}, limit, offset int) ([]*entity.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Product
	for _, p := range r.products {
		copied := *p
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (r *memProductRepo) ListByFarmerID(ctx context.Context, farmerID string, limit, offset int) ([]*entity.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Product
	for _, p := range r.products {
		if p.FarmerID == farmerID {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memProductRepo) Update(ctx context.Context, product *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[product.ID] = product
	return nil
}

func (r *memProductRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, id)
	return nil
}

func (r *memProductRepo) SetContactVisible(ctx context.Context, id, ownerID string, visible bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return errors.NotFound("Product", nil)
	}
	if p.FarmerID != ownerID {
		return errors.Forbidden("You don't own this product", nil)
	}
	p.ShowContactNumber = visible
	return nil
}

type memNotificationRepo struct {
	mu            sync.Mutex
	notifications []*entity.Notification
	subs          []chan *entity.Notification
	failNext      error
}

func newMemNotificationRepo() *memNotificationRepo {
	return &memNotificationRepo{}
}

func (r *memNotificationRepo) Create(ctx context.Context, notification *entity.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return err
	}

	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	copied := *notification
	r.notifications = append(r.notifications, &copied)

	for _, ch := range r.subs {
		select {
		case ch <- &copied:
		default:
		}
	}
	return nil
}

func (r *memNotificationRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*entity.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.Notification
	for _, n := range r.notifications {
		if n.UserID == userID {
			copied := *n
			out = append(out, &copied)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memNotificationRepo) MarkRead(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, n := range r.notifications {
		if n.ID == id {
			n.IsRead = true
			return nil
		}
	}
	return errors.NotFound("Notification", nil)
}

func (r *memNotificationRepo) MarkAllRead(ctx context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, n := range r.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			count++
		}
	}
	return count, nil
}

func (r *memNotificationRepo) Subscribe(ctx context.Context, userID string) (<-chan *entity.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch := make(chan *entity.Notification, 16)
	r.subs = append(r.subs, ch)
	return ch, nil
}

type memOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*entity.Order
}

func newMemOrderRepo(orders ...*entity.Order) *memOrderRepo {
	r := &memOrderRepo{orders: make(map[string]*entity.Order)}
	for _, o := range orders {
		r.orders[o.ID] = o
	}
	return r
}

func (r *memOrderRepo) Create(ctx context.Context, order *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	r.orders[order.ID] = order
	return nil
}

func (r *memOrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.orders[id]; ok {
		copied := *o
		return &copied, nil
	}
	return nil, errors.NotFound("Order", nil)
}

func (r *memOrderRepo) ListByBuyerID(ctx context.Context, buyerID string, limit, offset int) ([]*entity.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Order
	for _, o := range r.orders {
		if o.BuyerID == buyerID {
			copied := *o
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memOrderRepo) ListByFarmerID(ctx context.Context, farmerID string, limit, offset int) ([]*entity.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Order
	for _, o := range r.orders {
		if o.FarmerID == farmerID {
			copied := *o
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memOrderRepo) Update(ctx context.Context, order *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = order
	return nil
}

type memReviewRepo struct {
	mu      sync.Mutex
	reviews []*entity.Review
}

func newMemReviewRepo() *memReviewRepo {
	return &memReviewRepo{}
}

func (r *memReviewRepo) Create(ctx context.Context, review *entity.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	copied := *review
	r.reviews = append(r.reviews, &copied)
	return nil
}

func (r *memReviewRepo) GetByOrderID(ctx context.Context, orderID string) (*entity.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rv := range r.reviews {
		if rv.OrderID == orderID {
			copied := *rv
			return &copied, nil
		}
	}
	return nil, errors.NotFound("Review", nil)
}

func (r *memReviewRepo) ListByFarmerID(ctx context.Context, farmerID string, limit, offset int) ([]*entity.Review, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Review
	for _, rv := range r.reviews {
		if rv.FarmerID == farmerID {
			copied := *rv
			out = append(out, &copied)
		}
	}
	total := int64(len(out))
	start := offset
	if start > len(out) {
		start = len(out)
	}
	end := len(out)
	if limit > 0 && start+limit < end {
		end = start + limit
	}
	return out[start:end], total, nil
}

type memMarketPriceRepo struct {
	mu     sync.Mutex
	prices map[string]*entity.MarketPrice
	subs   []chan *entity.MarketPrice
}

func newMemMarketPriceRepo(prices ...*entity.MarketPrice) *memMarketPriceRepo {
	r := &memMarketPriceRepo{prices: make(map[string]*entity.MarketPrice)}
	for _, p := range prices {
		copied := *p
		r.prices[p.ID] = &copied
	}
	return r
}

func (r *memMarketPriceRepo) broadcastLocked(price *entity.MarketPrice) {
	for _, ch := range r.subs {
		select {
		case ch <- price:
		default:
		}
	}
}

func (r *memMarketPriceRepo) Create(ctx context.Context, price *entity.MarketPrice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if price.ID == "" {
		price.ID = uuid.New().String()
	}
	now := time.Now()
	price.CreatedAt = now
	price.UpdatedAt = now

	copied := *price
	r.prices[price.ID] = &copied
	r.broadcastLocked(&copied)
	return nil
}

func (r *memMarketPriceRepo) GetByID(ctx context.Context, id string) (*entity.MarketPrice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	price, ok := r.prices[id]
	if !ok {
		return nil, errors.NotFound("Market price", nil)
	}
	copied := *price
	return &copied, nil
}

func (r *memMarketPriceRepo) List(ctx context.Context) ([]*entity.MarketPrice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.MarketPrice
	for _, p := range r.prices {
		copied := *p
		out = append(out, &copied)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memMarketPriceRepo) Update(ctx context.Context, price *entity.MarketPrice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.prices[price.ID]; !ok {
		return errors.NotFound("Market price", nil)
	}
	price.UpdatedAt = time.Now()
	copied := *price
	r.prices[price.ID] = &copied
	r.broadcastLocked(&copied)
	return nil
}

func (r *memMarketPriceRepo) Subscribe(ctx context.Context) (<-chan *entity.MarketPrice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch := make(chan *entity.MarketPrice, 16)
	r.subs = append(r.subs, ch)
	return ch, nil
}
