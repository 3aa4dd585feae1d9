package repository

import (
	"math"
	"sort"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"unimarket/internal/domain/entity"
)

// isMissingIndex reports whether the store rejected a query because the
// composite index backing its ordering clause does not exist. This is the only
// error condition that triggers a retry; everything else propagates.
func isMissingIndex(err error) bool {
	return status.Code(err) == codes.FailedPrecondition
}

// timestampKey maps a document timestamp to a sortable key. A zero value is a
// server-assign placeholder that has not resolved yet; it sorts as "now",
// newer than every resolved instant, so just-written items keep a
// deterministic position on the fallback path.
func timestampKey(t time.Time) int64 {
	if t.IsZero() {
		return math.MaxInt64
	}
	return t.UnixNano()
}

func sortOffersNewestFirst(offers []*entity.ExchangeOffer) {
	sort.SliceStable(offers, func(i, j int) bool {
		return timestampKey(offers[i].CreatedAt) > timestampKey(offers[j].CreatedAt)
	})
}

func sortListingsNewestFirst(listings []*entity.RoomListing) {
	sort.SliceStable(listings, func(i, j int) bool {
		return timestampKey(listings[i].CreatedAt) > timestampKey(listings[j].CreatedAt)
	})
}

func sortConversationsNewestFirst(convs []*entity.Conversation) {
	sort.SliceStable(convs, func(i, j int) bool {
		return timestampKey(convs[i].LastMessageAt) > timestampKey(convs[j].LastMessageAt)
	})
}

func sortMessagesOldestFirst(messages []*entity.Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		return timestampKey(messages[i].CreatedAt) < timestampKey(messages[j].CreatedAt)
	})
}
