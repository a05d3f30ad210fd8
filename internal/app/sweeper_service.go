package app

import (
	"context"
	"log"
	"time"

	"github.com/example/haggle/internal/ports/primary"
	"github.com/example/haggle/internal/ports/secondary"
)

// DefaultSweepInterval is how often the background sweeper runs when the
// config does not say otherwise.
const DefaultSweepInterval = time.Minute

// SweeperServiceImpl implements the SweeperService interface. It is the
// safety net behind the engine's lazy expiry check: negotiations nobody
// touches still reach the expired state.
type SweeperServiceImpl struct {
	negotiationRepo secondary.NegotiationRepository
	now             func() time.Time
}

// NewSweeperService creates a new SweeperService with injected dependencies.
func NewSweeperService(negotiationRepo secondary.NegotiationRepository) *SweeperServiceImpl {
	return &SweeperServiceImpl{
		negotiationRepo: negotiationRepo,
		now:             time.Now,
	}
}

// SweepOnce force-expires all stale open negotiations in one conditional
// update. Rows another writer already moved simply no longer match, so
// re-running a sweep is harmless.
func (s *SweeperServiceImpl) SweepOnce(ctx context.Context) (int64, error) {
	return s.negotiationRepo.SweepExpired(ctx, s.now())
}

// Run sweeps on the given interval until the context is cancelled. A
// failed sweep is logged and retried on the next tick.
func (s *SweeperServiceImpl) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n, err := s.SweepOnce(ctx)
			if err != nil {
				log.Printf("expiry sweep failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("expiry sweep: %d negotiation(s) expired", n)
			}
		}
	}
}

// Ensure SweeperServiceImpl implements the interface
var _ primary.SweeperService = (*SweeperServiceImpl)(nil)
