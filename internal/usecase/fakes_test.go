package usecase

import (
	"context"
	"fmt"
	"time"

	"unimarket/internal/domain/entity"
	"unimarket/internal/domain/repository"
	"unimarket/internal/infrastructure/firebase"
	"unimarket/pkg/errors"
)

// In-memory repositories backing the use case tests. They follow the store
// adapters' observable behavior: ids are assigned on create, lookups miss
// with a NOT_FOUND error and list results come back sorted.

type fakeUserRepo struct {
	users map[string]*entity.UserProfile
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*entity.UserProfile)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.UserProfile) error {
	user.CreatedAt = time.Now()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.UserProfile, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.UserProfile, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, errors.NotFound("User", nil)
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.UserProfile) error {
	if _, ok := r.users[user.ID]; !ok {
		return errors.NotFound("User", nil)
	}
	r.users[user.ID] = user
	return nil
}

type fakeOfferRepo struct {
	offers map[string]*entity.ExchangeOffer
	nextID int
}

func newFakeOfferRepo() *fakeOfferRepo {
	return &fakeOfferRepo{offers: make(map[string]*entity.ExchangeOffer)}
}

func (r *fakeOfferRepo) Create(ctx context.Context, offer *entity.ExchangeOffer) error {
	r.nextID++
	offer.ID = fmt.Sprintf("offer-%d", r.nextID)
	offer.CreatedAt = time.Now()
	r.offers[offer.ID] = offer
	return nil
}

func (r *fakeOfferRepo) GetByID(ctx context.Context, id string) (*entity.ExchangeOffer, error) {
	offer, ok := r.offers[id]
	if !ok {
		return nil, errors.NotFound("Offer", nil)
	}
	return offer, nil
}

func (r *fakeOfferRepo) ListActive(ctx context.Context, offerType string, limit int) ([]*entity.ExchangeOffer, error) {
	var out []*entity.ExchangeOffer
	for _, offer := range r.offers {
		if offer.Status != entity.OfferStatusActive {
			continue
		}
		if offerType != "" && offer.Type != offerType {
			continue
		}
		out = append(out, offer)
	}
	return out, nil
}

func (r *fakeOfferRepo) ListByUserID(ctx context.Context, userID string) ([]*entity.ExchangeOffer, error) {
	var out []*entity.ExchangeOffer
	for _, offer := range r.offers {
		if offer.UserID == userID {
			out = append(out, offer)
		}
	}
	return out, nil
}

func (r *fakeOfferRepo) UpdateStatus(ctx context.Context, id, status string) error {
	offer, ok := r.offers[id]
	if !ok {
		return errors.NotFound("Offer", nil)
	}
	offer.Status = status
	return nil
}

func (r *fakeOfferRepo) Delete(ctx context.Context, id string) error {
	delete(r.offers, id)
	return nil
}

func (r *fakeOfferRepo) SubscribeActive(ctx context.Context, offerType string, limit int, fn func([]*entity.ExchangeOffer)) (repository.CancelFunc, error) {
	offers, _ := r.ListActive(ctx, offerType, limit)
	fn(offers)
	return func() {}, nil
}

type fakeRoomRepo struct {
	listings map[string]*entity.RoomListing
	nextID   int
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{listings: make(map[string]*entity.RoomListing)}
}

func (r *fakeRoomRepo) Create(ctx context.Context, listing *entity.RoomListing) error {
	r.nextID++
	listing.ID = fmt.Sprintf("room-%d", r.nextID)
	if listing.Status == "" {
		listing.Status = entity.RoomStatusActive
	}
	listing.CreatedAt = time.Now()
	r.listings[listing.ID] = listing
	return nil
}

func (r *fakeRoomRepo) GetByID(ctx context.Context, id string) (*entity.RoomListing, error) {
	listing, ok := r.listings[id]
	if !ok {
		return nil, errors.NotFound("Listing", nil)
	}
	return listing, nil
}

func (r *fakeRoomRepo) ListActive(ctx context.Context, filter repository.RoomFilter, limit int) ([]*entity.RoomListing, error) {
	var out []*entity.RoomListing
	for _, l := range r.listings {
		if l.Status != entity.RoomStatusActive {
			continue
		}
		if filter.Area != "" && l.Area != filter.Area {
			continue
		}
		if filter.MinRent > 0 && l.Rent < filter.MinRent {
			continue
		}
		if filter.MaxRent > 0 && l.Rent > filter.MaxRent {
			continue
		}
		if filter.Gender != "" && l.Gender != filter.Gender && l.Gender != entity.GenderAny {
			continue
		}
		if filter.RoomType != "" && l.Type != filter.RoomType {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (r *fakeRoomRepo) ListByUserID(ctx context.Context, userID string) ([]*entity.RoomListing, error) {
	var out []*entity.RoomListing
	for _, l := range r.listings {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeRoomRepo) UpdateStatus(ctx context.Context, id, status string) error {
	listing, ok := r.listings[id]
	if !ok {
		return errors.NotFound("Listing", nil)
	}
	listing.Status = status
	return nil
}

func (r *fakeRoomRepo) Delete(ctx context.Context, id string) error {
	delete(r.listings, id)
	return nil
}

func (r *fakeRoomRepo) SubscribeActive(ctx context.Context, filter repository.RoomFilter, limit int, fn func([]*entity.RoomListing)) (repository.CancelFunc, error) {
	listings, _ := r.ListActive(ctx, filter, limit)
	fn(listings)
	return func() {}, nil
}

type fakeConvRepo struct {
	convs  map[string]*entity.Conversation
	nextID int
}

func newFakeConvRepo() *fakeConvRepo {
	return &fakeConvRepo{convs: make(map[string]*entity.Conversation)}
}

func (r *fakeConvRepo) Create(ctx context.Context, conv *entity.Conversation) error {
	r.nextID++
	conv.ID = fmt.Sprintf("conv-%d", r.nextID)
	conv.CreatedAt = time.Now()
	r.convs[conv.ID] = conv
	return nil
}

func (r *fakeConvRepo) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	conv, ok := r.convs[id]
	if !ok {
		return nil, errors.NotFound("Conversation", nil)
	}
	return conv, nil
}

func (r *fakeConvRepo) ListByParticipant(ctx context.Context, userID string, limit int) ([]*entity.Conversation, error) {
	var out []*entity.Conversation
	for _, conv := range r.convs {
		if conv.HasParticipant(userID) {
			out = append(out, conv)
		}
	}
	return out, nil
}

func (r *fakeConvRepo) SetLastMessage(ctx context.Context, id, text string) error {
	conv, ok := r.convs[id]
	if !ok {
		return errors.NotFound("Conversation", nil)
	}
	conv.LastMessage = text
	conv.LastMessageAt = time.Now()
	return nil
}

func (r *fakeConvRepo) SetUnreadCount(ctx context.Context, id, userID string, count int) error {
	conv, ok := r.convs[id]
	if !ok {
		return errors.NotFound("Conversation", nil)
	}
	conv.UnreadCount[userID] = count
	return nil
}

func (r *fakeConvRepo) SubscribeByParticipant(ctx context.Context, userID string, limit int, fn func([]*entity.Conversation)) (repository.CancelFunc, error) {
	convs, _ := r.ListByParticipant(ctx, userID, limit)
	fn(convs)
	return func() {}, nil
}

type fakeMessageRepo struct {
	messages map[string]*entity.Message
	nextID   int
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{messages: make(map[string]*entity.Message)}
}

func (r *fakeMessageRepo) Create(ctx context.Context, message *entity.Message) error {
	r.nextID++
	message.ID = fmt.Sprintf("msg-%d", r.nextID)
	message.CreatedAt = time.Now()
	r.messages[message.ID] = message
	return nil
}

func (r *fakeMessageRepo) ListByConversation(ctx context.Context, conversationID string, limit int) ([]*entity.Message, error) {
	var out []*entity.Message
	for _, m := range r.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) ListUnreadForReceiver(ctx context.Context, conversationID, receiverID string) ([]*entity.Message, error) {
	var out []*entity.Message
	for _, m := range r.messages {
		if m.ConversationID == conversationID && m.ReceiverID == receiverID && m.Status != entity.MessageStatusRead {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) UpdateStatus(ctx context.Context, id, status string) error {
	m, ok := r.messages[id]
	if !ok {
		return errors.NotFound("Message", nil)
	}
	m.Status = status
	return nil
}

func (r *fakeMessageRepo) SubscribeByConversation(ctx context.Context, conversationID string, limit int, fn func([]*entity.Message)) (repository.CancelFunc, error) {
	messages, _ := r.ListByConversation(ctx, conversationID, limit)
	fn(messages)
	return func() {}, nil
}

// fakeAuthClient stands in for the identity provider. Tokens are "token-" +
// uid so VerifyIDToken can invert SignInWithEmailPassword.
type fakeAuthClient struct {
	identities map[string]*firebase.Identity // uid -> identity
	passwords  map[string]string             // email -> password
	uidByEmail map[string]string
	sentVerify int
	sentReset  []string
	nextUID    int
}

func newFakeAuthClient() *fakeAuthClient {
	return &fakeAuthClient{
		identities: make(map[string]*firebase.Identity),
		passwords:  make(map[string]string),
		uidByEmail: make(map[string]string),
	}
}

func (f *fakeAuthClient) addIdentity(id *firebase.Identity) string {
	f.identities[id.UID] = id
	f.uidByEmail[id.Email] = id.UID
	return "token-" + id.UID
}

func (f *fakeAuthClient) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	if _, ok := f.uidByEmail[email]; ok {
		return "", errors.Conflict("This email is already registered", nil)
	}
	f.nextUID++
	uid := fmt.Sprintf("uid-%d", f.nextUID)
	f.addIdentity(&firebase.Identity{UID: uid, Email: email, DisplayName: displayName})
	f.passwords[email] = password
	return uid, nil
}

func (f *fakeAuthClient) VerifyIDToken(ctx context.Context, idToken string) (*firebase.Identity, error) {
	for uid, id := range f.identities {
		if idToken == "token-"+uid {
			return id, nil
		}
	}
	return nil, errors.Unauthorized("Invalid or expired token", nil)
}

func (f *fakeAuthClient) UpdateDisplayName(ctx context.Context, uid, displayName string) error {
	id, ok := f.identities[uid]
	if !ok {
		return errors.NotFound("User", nil)
	}
	id.DisplayName = displayName
	return nil
}

func (f *fakeAuthClient) SignInWithEmailPassword(ctx context.Context, email, password string) (string, error) {
	uid, ok := f.uidByEmail[email]
	if !ok || f.passwords[email] != password {
		return "", errors.Unauthorized("Invalid email or password", nil)
	}
	return "token-" + uid, nil
}

func (f *fakeAuthClient) SendVerificationEmail(ctx context.Context, idToken string) error {
	f.sentVerify++
	return nil
}

func (f *fakeAuthClient) SendPasswordResetEmail(ctx context.Context, email string) error {
	f.sentReset = append(f.sentReset, email)
	return nil
}
