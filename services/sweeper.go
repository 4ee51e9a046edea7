package services

import (
	"context"
	"log"
	"time"
)

// Decision timeout tuning. Clients report an expired reveal wait after
// 30 seconds; the sweeper's own deadline is more generous so a slow but
// live client always beats it. The ticker runs often enough that the
// partner is never left hanging for more than deadline+interval.
const (
	ClientDecisionTimeoutMs = 30 * 1000
	DecisionDeadlineMs      = 60 * 1000
	SweepInterval           = 15 * time.Second
)

// Sweeper force-ends sessions stuck in waiting_reveal. Clients report
// timeouts opportunistically, but a client that closes its tab reports
// nothing; the sweeper is the authoritative backstop.
type Sweeper struct {
	Decisions *DecisionService
}

// Run sweeps on a fixed interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(SweepInterval)
	defer ticker.Stop()
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
	cutoff := nowMillis() - DecisionDeadlineMs
	stuck, err := s.Decisions.Store.ListWaitingRevealBefore(ctx, cutoff)
	if err != nil {
		log.Printf("sweeper: failed to list stuck sessions: %v", err)
		return
	}
	for _, session := range stuck {
		if err := s.Decisions.timeoutSession(ctx, session, DecisionDeadlineMs); err != nil {
			log.Printf("sweeper: failed to end session %s: %v", session.SessionID, err)
		}
	}
	if len(stuck) > 0 {
		log.Printf("sweeper: ended %d stuck sessions", len(stuck))
	}
}
