package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"toolmart/internal/domain/entity"
)

func offerAt(id string, at time.Time) *entity.Offer {
	return &entity.Offer{ID: id, CreatedAt: at}
}

func TestOrderAndPageOffersMergesBothSides(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Buyer-side and seller-side query blocks, each sorted newest first on
	// its own, interleaved in time.
	merged := []*entity.Offer{
		offerAt("buy-2", base.Add(4*time.Minute)),
		offerAt("buy-1", base),
		offerAt("sell-2", base.Add(5*time.Minute)),
		offerAt("sell-1", base.Add(2*time.Minute)),
	}

	offers, total := orderAndPageOffers(merged, 0, 0)

	assert.Equal(t, int64(4), total)
	ids := make([]string, 0, len(offers))
	for _, o := range offers {
		ids = append(ids, o.ID)
	}
	assert.Equal(t, []string{"sell-2", "buy-2", "sell-1", "buy-1"}, ids)
}

func TestOrderAndPageOffersOffsetsAreConsistent(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	var merged []*entity.Offer
	for i := 0; i < 6; i++ {
		merged = append(merged, offerAt(fmt.Sprintf("offer-%d", i), base.Add(time.Duration(i)*time.Minute)))
	}

	// Walking the list two at a time must visit every row exactly once.
	var seen []string
	for offset := 0; offset < 6; offset += 2 {
		page, total := orderAndPageOffers(merged, 2, offset)
		assert.Equal(t, int64(6), total)
		assert.Len(t, page, 2)
		for _, o := range page {
			seen = append(seen, o.ID)
		}
	}
	assert.Equal(t, []string{"offer-5", "offer-4", "offer-3", "offer-2", "offer-1", "offer-0"}, seen)
}

func TestOrderAndPageOffersOffsetPastEnd(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	merged := []*entity.Offer{offerAt("offer-0", base)}

	page, total := orderAndPageOffers(merged, 10, 5)
	assert.Equal(t, int64(1), total)
	assert.Empty(t, page)
}
