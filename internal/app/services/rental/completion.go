package rental

import (
	"context"
	"sort"

	domainbooking "carrental/internal/domain/booking"
)

// CompleteFinishedBookings marks confirmed bookings whose return date has passed
// as completed and returns how many were closed.
func (s *Service) CompleteFinishedBookings(ctx context.Context) (int, error) {
	if err := s.ensureDependencies(); err != nil {
		return 0, err
	}
	items, err := s.Bookings.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	now := s.now()
	completed := 0
	for _, b := range items {
		if b.Status != domainbooking.StatusConfirmed || !b.Range.EndedBy(now) {
			continue
		}
		if err := b.Complete(now); err != nil {
			continue
		}
		if err := s.Bookings.Save(ctx, b); err != nil {
			return completed, err
		}
		s.publish(ctx, b)
		completed++
	}
	if completed > 0 && s.Logger != nil {
		s.Logger.Info("bookings completed", "count", completed)
	}
	return completed, nil
}

func sortNewestFirst(items []*domainbooking.Booking) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}
