package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"unimarket/internal/domain/entity"
	"unimarket/internal/domain/repository"
	"unimarket/pkg/errors"
	"unimarket/pkg/logger"
)

const offersCollection = "exchanges"

type firestoreOfferRepository struct {
	client *firestore.Client
}

func NewFirestoreOfferRepository(client *firestore.Client) repository.OfferRepository {
	return &firestoreOfferRepository{
		client: client,
	}
}

func (r *firestoreOfferRepository) Create(ctx context.Context, offer *entity.ExchangeOffer) error {
	if offer.ID == "" {
		offer.ID = r.client.Collection(offersCollection).NewDoc().ID
	}
	if offer.Status == "" {
		offer.Status = entity.OfferStatusActive
	}

	// CreatedAt/UpdatedAt stay zero here; the serverTimestamp tag makes the
	// store assign its commit time.
	_, err := r.client.Collection(offersCollection).Doc(offer.ID).Set(ctx, offer)
	if err != nil {
		return errors.Internal("Failed to create offer", err)
	}

	return nil
}

func (r *firestoreOfferRepository) GetByID(ctx context.Context, id string) (*entity.ExchangeOffer, error) {
	doc, err := r.client.Collection(offersCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Offer", err)
		}
		return nil, errors.Internal("Failed to get offer", err)
	}

	var offer entity.ExchangeOffer
	if err := doc.DataTo(&offer); err != nil {
		return nil, errors.Internal("Failed to parse offer data", err)
	}

	return &offer, nil
}

// activeQuery carries the equality filters and the result cap but no ordering;
// the ordering clause is added or dropped depending on index availability.
func (r *firestoreOfferRepository) activeQuery(offerType string, limit int) firestore.Query {
	query := r.client.Collection(offersCollection).Query.Where("status", "==", entity.OfferStatusActive)
	if offerType != "" {
		query = query.Where("type", "==", offerType)
	}
	return query.Limit(limit)
}

func (r *firestoreOfferRepository) ListActive(ctx context.Context, offerType string, limit int) ([]*entity.ExchangeOffer, error) {
	base := r.activeQuery(offerType, limit)

	docs, err := base.OrderBy("createdAt", firestore.Desc).Documents(ctx).GetAll()
	if err != nil {
		if !isMissingIndex(err) {
			return nil, errors.Internal("Failed to fetch offers", err)
		}
		logger.Warn("Offer index missing, falling back to client-side sort")
		docs, err = base.Documents(ctx).GetAll()
		if err != nil {
			return nil, errors.Internal("Failed to fetch offers", err)
		}
		offers, err := decodeOffers(docs)
		if err != nil {
			return nil, err
		}
		sortOffersNewestFirst(offers)
		return offers, nil
	}

	return decodeOffers(docs)
}

func (r *firestoreOfferRepository) ListByUserID(ctx context.Context, userID string) ([]*entity.ExchangeOffer, error) {
	docs, err := r.client.Collection(offersCollection).Where("userId", "==", userID).Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to fetch user offers", err)
	}

	offers, err := decodeOffers(docs)
	if err != nil {
		return nil, err
	}
	sortOffersNewestFirst(offers)
	return offers, nil
}

func (r *firestoreOfferRepository) UpdateStatus(ctx context.Context, id, status string) error {
	_, err := r.client.Collection(offersCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "status", Value: status},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		return errors.Internal("Failed to update offer status", err)
	}

	return nil
}

func (r *firestoreOfferRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection(offersCollection).Doc(id).Delete(ctx)
	if err != nil {
		return errors.Internal("Failed to delete offer", err)
	}

	return nil
}

func (r *firestoreOfferRepository) SubscribeActive(ctx context.Context, offerType string, limit int, fn func([]*entity.ExchangeOffer)) (repository.CancelFunc, error) {
	ctx, cancel := context.WithCancel(ctx)
	go r.streamActive(ctx, offerType, limit, false, fn)
	return repository.CancelFunc(cancel), nil
}

// streamActive delivers the full current result set on every snapshot. When
// the ordered listener fails with a missing-index error it restarts itself
// once on the unordered query with client-side sorting.
func (r *firestoreOfferRepository) streamActive(ctx context.Context, offerType string, limit int, clientSort bool, fn func([]*entity.ExchangeOffer)) {
	query := r.activeQuery(offerType, limit)
	if !clientSort {
		query = query.OrderBy("createdAt", firestore.Desc)
	}

	snaps := query.Snapshots(ctx)
	defer snaps.Stop()

	for {
		snap, err := snaps.Next()
		if err != nil {
			if status.Code(err) == codes.Canceled || err == iterator.Done {
				return
			}
			if isMissingIndex(err) && !clientSort {
				logger.Warn("Offer subscription index missing, resubscribing with client-side sort")
				r.streamActive(ctx, offerType, limit, true, fn)
				return
			}
			logger.Error("Offer subscription failed: %v", err)
			return
		}

		docs, err := snap.Documents.GetAll()
		if err != nil {
			logger.Error("Failed to read offer snapshot: %v", err)
			continue
		}

		offers, err := decodeOffers(docs)
		if err != nil {
			logger.Error("Failed to decode offer snapshot: %v", err)
			continue
		}
		if clientSort {
			sortOffersNewestFirst(offers)
		}
		fn(offers)
	}
}

func decodeOffers(docs []*firestore.DocumentSnapshot) ([]*entity.ExchangeOffer, error) {
	offers := make([]*entity.ExchangeOffer, 0, len(docs))
	for _, doc := range docs {
		var offer entity.ExchangeOffer
		if err := doc.DataTo(&offer); err != nil {
			return nil, errors.Internal("Failed to parse offer data", err)
		}
		offer.ID = doc.Ref.ID
		offers = append(offers, &offer)
	}
	return offers, nil
}
