package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"unimarket/internal/domain/entity"
	"unimarket/internal/domain/repository"
)

func TestIsMissingIndex(t *testing.T) {
	assert.True(t, isMissingIndex(status.Error(codes.FailedPrecondition, "The query requires an index.")))
	assert.False(t, isMissingIndex(status.Error(codes.PermissionDenied, "denied")))
	assert.False(t, isMissingIndex(nil))
}

func TestSortOffersNewestFirst(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	offers := []*entity.ExchangeOffer{
		{ID: "old", CreatedAt: base.Add(-time.Hour)},
		{ID: "new", CreatedAt: base},
		{ID: "pending", CreatedAt: time.Time{}}, // server timestamp not yet resolved
	}

	sortOffersNewestFirst(offers)

	// An unresolved timestamp sorts as "now", ahead of every resolved one.
	assert.Equal(t, "pending", offers[0].ID)
	assert.Equal(t, "new", offers[1].ID)
	assert.Equal(t, "old", offers[2].ID)
}

func TestSortMessagesOldestFirst(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	messages := []*entity.Message{
		{ID: "pending", CreatedAt: time.Time{}},
		{ID: "second", CreatedAt: base},
		{ID: "first", CreatedAt: base.Add(-time.Minute)},
	}

	sortMessagesOldestFirst(messages)

	assert.Equal(t, "first", messages[0].ID)
	assert.Equal(t, "second", messages[1].ID)
	assert.Equal(t, "pending", messages[2].ID)
}

func TestSortConversationsNewestFirst(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	convs := []*entity.Conversation{
		{ID: "stale", LastMessageAt: base.Add(-24 * time.Hour)},
		{ID: "fresh", LastMessageAt: base},
	}

	sortConversationsNewestFirst(convs)

	assert.Equal(t, "fresh", convs[0].ID)
	assert.Equal(t, "stale", convs[1].ID)
}

func TestSortIsStableForEqualTimestamps(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	offers := []*entity.ExchangeOffer{
		{ID: "a", CreatedAt: at},
		{ID: "b", CreatedAt: at},
		{ID: "c", CreatedAt: at},
	}

	sortOffersNewestFirst(offers)

	assert.Equal(t, "a", offers[0].ID)
	assert.Equal(t, "b", offers[1].ID)
	assert.Equal(t, "c", offers[2].ID)
}

func TestApplyRoomFilter(t *testing.T) {
	listings := []*entity.RoomListing{
		{ID: "cheap-any", Area: "Koramangala", Rent: 6000, Gender: entity.GenderAny, Type: entity.RoomTypeShared},
		{ID: "mid-female", Area: "Indiranagar", Rent: 12000, Gender: entity.GenderFemaleOnly, Type: entity.RoomTypeSingle},
		{ID: "pricey-male", Area: "Koramangala", Rent: 22000, Gender: entity.GenderMaleOnly, Type: entity.RoomTypeStudio},
	}

	got := applyRoomFilter(listings, repository.RoomFilter{Area: "Koramangala"})
	assert.Len(t, got, 2)

	got = applyRoomFilter(listings, repository.RoomFilter{MinRent: 5000, MaxRent: 15000})
	assert.Len(t, got, 2)

	// "Any" listings survive a gender filter; gender-restricted ones must match.
	got = applyRoomFilter(listings, repository.RoomFilter{Gender: entity.GenderMaleOnly})
	assert.Len(t, got, 2)
	got = applyRoomFilter(listings, repository.RoomFilter{Gender: entity.GenderFemaleOnly})
	assert.Len(t, got, 2)

	got = applyRoomFilter(listings, repository.RoomFilter{RoomType: entity.RoomTypeStudio, MaxRent: 10000})
	assert.Empty(t, got)

	got = applyRoomFilter(listings, repository.RoomFilter{})
	assert.Len(t, got, 3)
}
