package dispatch

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yerzhank/ride-dispatch/internal/domain/models"
	"github.com/yerzhank/ride-dispatch/internal/domain/types"
	"github.com/yerzhank/ride-dispatch/internal/ledger"
	wrap "github.com/yerzhank/ride-dispatch/pkg/logger/wrapper"
	"github.com/yerzhank/ride-dispatch/pkg/metrics"
	ws "github.com/yerzhank/ride-dispatch/pkg/wsHub"
)

// finalize runs after a ledger operation changed a ride: it delivers
// the collected notification intents, publishes the lifecycle event
// and archives terminal rides. Never called under the ledger lock.
func (s *Service) finalize(ctx context.Context, res ledger.Result) {
	if res.Ride.Status.IsTerminal() {
		s.stopDeadline(res.Ride.ID)
		metrics.RidesTotal.WithLabelValues(serviceName, res.Ride.Status.String()).Inc()
	}
	metrics.ActiveRidesGauge.WithLabelValues(serviceName).Set(float64(s.ledger.ActiveCount()))

	s.deliver(ctx, res.Notify)
	s.publishStatus(ctx, res.Ride)

	if s.archiver != nil && res.Ride.Status.IsTerminal() {
		actx := wrap.WithAction(ctx, types.ActionRideArchived)
		if err := s.archiver.Archive(actx, res.Ride, res.Offers); err != nil {
			s.log.Error(wrap.ErrorCtx(actx, err), "failed to archive ride", err)
		}
	}
}

// deliver pushes each intent to its participant. Delivery is
// best-effort: a missing session just drops the message.
func (s *Service) deliver(ctx context.Context, intents []ledger.NotifyIntent) {
	for _, in := range intents {
		push := models.RideResponsePush{
			Type: models.MsgTypeRideResponse,
			Payload: models.RideResponsePayload{
				RideID:     in.RideID,
				Status:     wireStatus(in.Status),
				DriverID:   in.DriverID,
				DriverName: in.DriverName,
			},
		}

		if err := s.hub.SendTo(in.To, push); err != nil && !errors.Is(err, ws.ErrConnIsNotFound) {
			s.log.Warn(ctx, "failed to deliver notification",
				"participant_id", in.To.String(),
				"err", err.Error(),
			)
		}
	}
}

// publishStatus emits the ride's current status to the broker, when
// one is configured.
func (s *Service) publishStatus(ctx context.Context, ride models.Ride) {
	if s.events == nil {
		return
	}

	msg := models.RideStatusMessage{
		RideID:    ride.ID,
		RiderID:   ride.RiderID,
		Status:    ride.Status.String(),
		Fare:      ride.Fare,
		Timestamp: time.Now(),
	}
	if ride.DriverID != nil {
		msg.DriverID = ride.DriverID.String()
	}

	if err := s.events.PublishRideStatus(ctx, msg); err != nil {
		s.log.Warn(ctx, "failed to publish ride status event", "err", err.Error())
	}
}

// wireStatus maps a ledger status to the status string pushed over
// the websocket. Clients see "accepted", never the internal ASSIGNED.
func wireStatus(status types.RideStatus) string {
	if status == types.StatusAssigned {
		return "accepted"
	}
	return strings.ToLower(status.String())
}
