/*
Package pricing simulates the trip pricing service.

PURPOSE:
  Given a party (adults, children), a trip length and the points a user has
  collected, return ten priced offers from distinct travel providers. Reward
  points are taken off the price, which never drops below zero.

PRICE FORMULA (per provider):
  multiple = random integer in [100, 700)
  price    = multiple*adults + multiple*(children/3)*nights + 0.99 - points
  children/3 is a fraction; the result is rounded to cents.

SEE ALSO:
  - tourguide/ports.go: TripPricer interface
  - service/tourguide.go: TripDeals uses this to refresh a user's offers
*/
package pricing

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/tourguide/tourguide"
)

// DealCount is the number of offers returned per request.
const DealCount = 10

const (
	minMultiple = 100
	maxMultiple = 700
)

var providerNames = []string{
	"Holiday Travels",
	"Enterprize Ventures Limited",
	"Sunny Days",
	"FlyAway Trips",
	"United Partners Vacations",
	"Dream Trips",
	"Live Free",
	"Dancing Waves Cruselines and Partners",
	"AdventureCo",
	"Cure-Your-Blues",
}

// Pricer is a simulated TripPricer.
type Pricer struct {
	// MaxLatency bounds the simulated round trip. Zero disables it.
	MaxLatency time.Duration
}

var _ tourguide.TripPricer = (*Pricer)(nil)

func New(maxLatency time.Duration) *Pricer {
	return &Pricer{MaxLatency: maxLatency}
}

// Price returns DealCount offers, one per provider, in random provider order.
func (p *Pricer) Price(ctx context.Context, apiKey string, tripID uuid.UUID, adults, children, nights, rewardPoints int) ([]tourguide.Provider, error) {
	if apiKey == "" {
		return nil, tourguide.InvalidArgument("api key", "must not be empty")
	}
	if adults < 0 || children < 0 || nights < 0 {
		return nil, tourguide.InvalidArgument("party", "counts must not be negative")
	}
	if err := wait(ctx, p.MaxLatency); err != nil {
		return nil, err
	}

	names := make([]string, len(providerNames))
	copy(names, providerNames)
	rand.Shuffle(len(names), func(i, j int) { names[i], names[j] = names[j], names[i] })

	deals := make([]tourguide.Provider, 0, DealCount)
	for _, name := range names[:DealCount] {
		multiple := minMultiple + rand.IntN(maxMultiple-minMultiple)
		deals = append(deals, tourguide.Provider{
			TripID: tripID,
			Name:   name,
			Price:  TripPrice(multiple, adults, children, nights, rewardPoints),
		})
	}
	return deals, nil
}

// TripPrice applies the price formula for one provider multiple.
func TripPrice(multiple, adults, children, nights, rewardPoints int) decimal.Decimal {
	m := decimal.NewFromInt(int64(multiple))
	childShare := m.Mul(decimal.NewFromInt(int64(children))).
		Mul(decimal.NewFromInt(int64(nights))).
		Div(decimal.NewFromInt(3))
	price := m.Mul(decimal.NewFromInt(int64(adults))).
		Add(childShare).
		Add(decimal.RequireFromString("0.99")).
		Sub(decimal.NewFromInt(int64(rewardPoints))).
		Round(2)

	if price.IsNegative() {
		return decimal.Zero
	}
	return price
}

func wait(ctx context.Context, max time.Duration) error {
	if max <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(rand.N(max))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
