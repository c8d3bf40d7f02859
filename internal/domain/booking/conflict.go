package booking

import (
	"github.com/stayloop/service-booking/internal/domain/availability"
	"github.com/stayloop/service-booking/internal/domain/daterange"
	"github.com/stayloop/service-booking/pkg/apperror"
)

// CheckStay decides bookability of a candidate stay against the listing's
// declared periods and its existing bookings. The stay must sit inside a
// single declared period and must not overlap any active booking.
//
// The result is advisory until re-checked inside the ledger transaction: a
// UI-side check can be stale by commit time.
func CheckStay(stay daterange.DateRange, periods []*availability.Period, existing []*Booking) error {
	covered := false
	for _, p := range periods {
		if p.CoversStay(stay) {
			covered = true
			break
		}
	}
	if !covered {
		return apperror.NewConflictError("requested dates are not within a declared availability period")
	}

	for _, b := range existing {
		if b.OccupiesDates(stay) {
			return apperror.NewConflictError("requested dates overlap an existing booking")
		}
	}
	return nil
}

// IsStayBookable is the boolean form of CheckStay.
func IsStayBookable(stay daterange.DateRange, periods []*availability.Period, existing []*Booking) bool {
	return CheckStay(stay, periods, existing) == nil
}
