package order

import (
	"context"
	"errors"
	"log"
	"time"
)

// Sweeper periodically cancels RESERVED orders whose payment never arrived,
// releasing the items back to FOR_SALE. Without it an abandoned checkout
// would lock inventory forever.
type Sweeper struct {
	service  Service
	repo     Repository
	ttl      time.Duration
	interval time.Duration
}

func NewSweeper(service Service, repo Repository, ttl, interval time.Duration) *Sweeper {
	return &Sweeper{service: service, repo: repo, ttl: ttl, interval: interval}
}

// Run blocks until ctx is cancelled. Callers start it in its own goroutine.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("reservation sweeper running (ttl=%s interval=%s)", s.ttl, s.interval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-s.ttl)
	ids, err := s.repo.ListStaleReserved(ctx, cutoff)
	if err != nil {
		log.Printf("sweep: list stale reservations: %v", err)
		return
	}
	for _, id := range ids {
		if _, err := s.service.CancelOrder(ctx, id); err != nil {
			// A concurrent payment confirmation can complete the order
			// between listing and cancelling; that is not a failure.
			if errors.Is(err, ErrInvalidOrderState) {
				continue
			}
			log.Printf("sweep: cancel order %s: %v", id, err)
			continue
		}
		log.Printf("sweep: cancelled stale reservation %s", id)
	}
}
