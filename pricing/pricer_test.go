package pricing_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/tourguide/pricing"
	"github.com/warp/tourguide/tourguide"
)

func TestPrice_TenDistinctProviders(t *testing.T) {
	// GIVEN: A pricer without latency
	// WHEN: A trip is priced
	// THEN: Ten offers from ten different providers are returned for that trip

	p := pricing.New(0)
	tripID := uuid.New()

	deals, err := p.Price(context.Background(), "test-server-api-key", tripID, 2, 3, 4, 0)
	require.NoError(t, err)
	require.Len(t, deals, pricing.DealCount)

	names := make(map[string]bool)
	for _, d := range deals {
		assert.False(t, names[d.Name], "duplicate provider %s", d.Name)
		names[d.Name] = true
		assert.Equal(t, tripID, d.TripID)
		assert.False(t, d.Price.IsNegative())
	}
}

func TestPrice_RejectsBlankAPIKey(t *testing.T) {
	_, err := pricing.New(0).Price(context.Background(), "", uuid.New(), 1, 0, 1, 0)
	assert.ErrorIs(t, err, tourguide.ErrInvalidArgument)
}

func TestPrice_RejectsNegativeParty(t *testing.T) {
	_, err := pricing.New(0).Price(context.Background(), "key", uuid.New(), -1, 0, 1, 0)
	assert.ErrorIs(t, err, tourguide.ErrInvalidArgument)
}

func TestTripPrice(t *testing.T) {
	tests := []struct {
		name                                       string
		multiple, adults, children, nights, points int
		want                                       string
	}{
		{"one adult", 100, 1, 0, 1, 0, "100.99"},
		{"two children pay two thirds per night", 100, 1, 2, 5, 0, "434.32"},
		{"one child pays a third per night", 300, 1, 1, 3, 0, "600.99"},
		{"three children pay once per night", 200, 2, 3, 2, 0, "800.99"},
		{"points discount", 100, 1, 0, 1, 50, "50.99"},
		{"never negative", 100, 1, 0, 1, 5000, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pricing.TripPrice(tt.multiple, tt.adults, tt.children, tt.nights, tt.points)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}
