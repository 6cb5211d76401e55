package dispatch

import (
	"context"
	"time"

	"github.com/yerzhank/ride-dispatch/internal/domain/types"
	wrap "github.com/yerzhank/ride-dispatch/pkg/logger/wrapper"
	"github.com/yerzhank/ride-dispatch/pkg/metrics"
)

// StartSweeper runs the background maintenance loop until ctx ends:
// it drops sessions that missed their heartbeat window and evicts
// terminal rides past the retention window.
func (s *Service) StartSweeper(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SweepInterval)
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

func (s *Service) sweep(ctx context.Context) {
	ctx = wrap.WithAction(ctx, types.ActionHeartbeatTimeout)

	// solicit pongs from clients that are quiet but alive
	s.hub.PingAll()

	for _, sess := range s.hub.Stale(s.cfg.HeartbeatTimeout) {
		id := sess.EntityID()
		s.log.Warn(ctx, "session missed heartbeat window, removing",
			"participant_id", id.String(),
			"role", sess.Role.String(),
			"last_seen", sess.LastSeen(),
		)

		metrics.HeartbeatTimeoutsTotal.WithLabelValues(serviceName).Inc()
		_ = s.hub.Delete(id)

		if sess.Role == types.DriverRole {
			s.DriverGone(id)
		}
	}

	if n := s.ledger.EvictTerminal(s.cfg.RetentionWindow); n > 0 {
		s.log.Debug(ctx, "evicted archived rides from memory", "count", n)
	}

	metrics.WebSocketConnectionsGauge.WithLabelValues(serviceName).Set(float64(s.hub.Len()))
	metrics.DriversOnlineGauge.WithLabelValues(serviceName).Set(float64(len(s.hub.Drivers())))
}
