package booking

import (
	"github.com/stayloop/service-booking/internal/domain/daterange"
	"github.com/stayloop/service-booking/pkg/apperror"
)

// Quote is the price of a candidate stay at a listing's current nightly
// price. The total is snapshotted onto the booking at creation; later price
// changes never affect it.
type Quote struct {
	Nights        int   `json:"nights"`
	PricePerNight int64 `json:"price_per_night"`
	Total         int64 `json:"total"`
}

// NewQuote prices a stay at pricePerNight tokens per night.
func NewQuote(stay daterange.DateRange, pricePerNight int64) (Quote, error) {
	nights := stay.Nights()
	if nights < 1 {
		return Quote{}, apperror.NewValidationError("stay must be at least one night")
	}
	if pricePerNight <= 0 {
		return Quote{}, apperror.NewValidationError("price per night must be positive")
	}
	return Quote{
		Nights:        nights,
		PricePerNight: pricePerNight,
		Total:         int64(nights) * pricePerNight,
	}, nil
}

// Matches reports whether a caller-supplied quoted total equals the
// server-side computation. The ledger rejects mismatching quotes instead of
// trusting the client's arithmetic.
func (q Quote) Matches(quotedTotal int64) bool {
	return q.Total == quotedTotal
}
