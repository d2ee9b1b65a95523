package usecase

import (
	"time"

	"stay-nest/internal/data/entity"
	"stay-nest/pkg/apperror"
)

// stayOverlaps reports whether two stays share at least one night. Ranges are
// half-open: checking out on the day another guest checks in is not an overlap.
func stayOverlaps(aIn, aOut, bIn, bOut time.Time) bool {
	return aIn.Before(bOut) && aOut.After(bIn)
}

// checkGuestLimit rejects a single request larger than the property.
func checkGuestLimit(maxGuests, requested int) error {
	if requested > maxGuests {
		return apperror.CapacityExceeded("This property can only accommodate up to %d guests", maxGuests)
	}
	return nil
}

// occupiedGuests sums the guests of active bookings that intersect [checkIn, checkOut).
func occupiedGuests(bookings []*entity.Booking, checkIn, checkOut time.Time) int {
	total := 0
	for _, b := range bookings {
		if !b.Status.IsActive() || !stayOverlaps(b.CheckIn, b.CheckOut, checkIn, checkOut) {
			continue
		}
		total += b.Guests
	}
	return total
}

// checkAggregateCapacity rejects a request whose guests, added to everyone
// already staying on those dates, exceed the property maximum.
func checkAggregateCapacity(maxGuests, requested int, overlapping []*entity.Booking, checkIn, checkOut time.Time) error {
	if occupiedGuests(overlapping, checkIn, checkOut)+requested > maxGuests {
		return apperror.InsufficientCapacity(
			"The property does not have enough capacity for the selected dates (maximum %d guests)", maxGuests)
	}
	return nil
}
