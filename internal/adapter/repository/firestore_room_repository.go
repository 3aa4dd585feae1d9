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

const roomsCollection = "rooms"

type firestoreRoomRepository struct {
	client *firestore.Client
}

func NewFirestoreRoomRepository(client *firestore.Client) repository.RoomRepository {
	return &firestoreRoomRepository{
		client: client,
	}
}

func (r *firestoreRoomRepository) Create(ctx context.Context, listing *entity.RoomListing) error {
	if listing.ID == "" {
		listing.ID = r.client.Collection(roomsCollection).NewDoc().ID
	}
	if listing.Status == "" {
		listing.Status = entity.RoomStatusActive
	}

	_, err := r.client.Collection(roomsCollection).Doc(listing.ID).Set(ctx, listing)
	if err != nil {
		return errors.Internal("Failed to create listing", err)
	}

	return nil
}

func (r *firestoreRoomRepository) GetByID(ctx context.Context, id string) (*entity.RoomListing, error) {
	doc, err := r.client.Collection(roomsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Listing", err)
		}
		return nil, errors.Internal("Failed to get listing", err)
	}

	var listing entity.RoomListing
	if err := doc.DataTo(&listing); err != nil {
		return nil, errors.Internal("Failed to parse listing data", err)
	}

	return &listing, nil
}

func (r *firestoreRoomRepository) ListActive(ctx context.Context, filter repository.RoomFilter, limit int) ([]*entity.RoomListing, error) {
	base := r.client.Collection(roomsCollection).Query.
		Where("status", "==", entity.RoomStatusActive).
		Limit(limit)

	docs, err := base.OrderBy("createdAt", firestore.Desc).Documents(ctx).GetAll()
	if err != nil {
		if !isMissingIndex(err) {
			return nil, errors.Internal("Failed to fetch listings", err)
		}
		logger.Warn("Listing index missing, falling back to client-side sort")
		docs, err = base.Documents(ctx).GetAll()
		if err != nil {
			return nil, errors.Internal("Failed to fetch listings", err)
		}
		listings, err := decodeListings(docs)
		if err != nil {
			return nil, err
		}
		sortListingsNewestFirst(listings)
		return applyRoomFilter(listings, filter), nil
	}

	listings, err := decodeListings(docs)
	if err != nil {
		return nil, err
	}
	return applyRoomFilter(listings, filter), nil
}

func (r *firestoreRoomRepository) ListByUserID(ctx context.Context, userID string) ([]*entity.RoomListing, error) {
	docs, err := r.client.Collection(roomsCollection).Where("userId", "==", userID).Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to fetch user listings", err)
	}

	listings, err := decodeListings(docs)
	if err != nil {
		return nil, err
	}
	sortListingsNewestFirst(listings)
	return listings, nil
}

func (r *firestoreRoomRepository) UpdateStatus(ctx context.Context, id, status string) error {
	_, err := r.client.Collection(roomsCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "status", Value: status},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		return errors.Internal("Failed to update listing status", err)
	}

	return nil
}

func (r *firestoreRoomRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection(roomsCollection).Doc(id).Delete(ctx)
	if err != nil {
		return errors.Internal("Failed to delete listing", err)
	}

	return nil
}

func (r *firestoreRoomRepository) SubscribeActive(ctx context.Context, filter repository.RoomFilter, limit int, fn func([]*entity.RoomListing)) (repository.CancelFunc, error) {
	ctx, cancel := context.WithCancel(ctx)
	go r.streamActive(ctx, filter, limit, false, fn)
	return repository.CancelFunc(cancel), nil
}

func (r *firestoreRoomRepository) streamActive(ctx context.Context, filter repository.RoomFilter, limit int, clientSort bool, fn func([]*entity.RoomListing)) {
	query := r.client.Collection(roomsCollection).Query.
		Where("status", "==", entity.RoomStatusActive).
		Limit(limit)
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
				logger.Warn("Listing subscription index missing, resubscribing with client-side sort")
				r.streamActive(ctx, filter, limit, true, fn)
				return
			}
			logger.Error("Listing subscription failed: %v", err)
			return
		}

		docs, err := snap.Documents.GetAll()
		if err != nil {
			logger.Error("Failed to read listing snapshot: %v", err)
			continue
		}

		listings, err := decodeListings(docs)
		if err != nil {
			logger.Error("Failed to decode listing snapshot: %v", err)
			continue
		}
		if clientSort {
			sortListingsNewestFirst(listings)
		}
		fn(applyRoomFilter(listings, filter))
	}
}

// applyRoomFilter narrows results by attributes the store does not index.
// A listing with gender "Any" matches every gender filter.
func applyRoomFilter(listings []*entity.RoomListing, filter repository.RoomFilter) []*entity.RoomListing {
	filtered := make([]*entity.RoomListing, 0, len(listings))
	for _, l := range listings {
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
		filtered = append(filtered, l)
	}
	return filtered
}

func decodeListings(docs []*firestore.DocumentSnapshot) ([]*entity.RoomListing, error) {
	listings := make([]*entity.RoomListing, 0, len(docs))
	for _, doc := range docs {
		var listing entity.RoomListing
		if err := doc.DataTo(&listing); err != nil {
			return nil, errors.Internal("Failed to parse listing data", err)
		}
		listing.ID = doc.Ref.ID
		listings = append(listings, &listing)
	}
	return listings, nil
}
