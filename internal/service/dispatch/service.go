package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/yerzhank/ride-dispatch/config"
	"github.com/yerzhank/ride-dispatch/internal/domain/models"
	"github.com/yerzhank/ride-dispatch/internal/domain/types"
	"github.com/yerzhank/ride-dispatch/internal/ledger"
	"github.com/yerzhank/ride-dispatch/pkg/logger"
	wrap "github.com/yerzhank/ride-dispatch/pkg/logger/wrapper"
	"github.com/yerzhank/ride-dispatch/pkg/metrics"
	"github.com/yerzhank/ride-dispatch/pkg/uuid"
)

const serviceName = "dispatch"

// Service coordinates offers, arbitration and notifications around
// the ride ledger. All ledger calls are pure state changes; every
// network send happens here, after the ledger released its lock.
type Service struct {
	ledger   *ledger.Ledger
	hub      SessionRegistry
	events   EventPublisher
	archiver Archiver
	cfg      config.DispatchConfig
	log      logger.Logger

	timersMu sync.Mutex
	timers   map[uuid.UUID]*time.Timer
}

func NewService(l *ledger.Ledger, hub SessionRegistry, events EventPublisher, archiver Archiver, cfg config.DispatchConfig, log logger.Logger) *Service {
	return &Service{
		ledger:   l,
		hub:      hub,
		events:   events,
		archiver: archiver,
		cfg:      cfg,
		log:      log,
		timers:   make(map[uuid.UUID]*time.Timer),
	}
}

// Respond arbitrates one driver's answer to an offer.
func (s *Service) Respond(ctx context.Context, rideID, driverID uuid.UUID, driverName string, accept bool) (types.ResponseOutcome, models.Ride, error) {
	ctx = wrap.WithAction(ctx, types.ActionOfferResponse)
	ctx = wrap.WithRideID(ctx, rideID.String())

	var (
		res ledger.Result
		err error
	)
	if accept {
		res, err = s.ledger.Accept(rideID, driverID, driverName)
	} else {
		res, err = s.ledger.Reject(rideID, driverID)
	}
	if err != nil {
		return "", models.Ride{}, wrap.Error(ctx, err)
	}

	metrics.RecordOfferResponse(serviceName, res.Outcome.String())
	s.log.Info(ctx, "offer response arbitrated",
		"driver_id", driverID.String(),
		"accept", accept,
		"outcome", res.Outcome.String(),
	)

	if res.Changed {
		s.finalize(ctx, res)
	}
	return res.Outcome, res.Ride, nil
}

// Cancel closes the ride on the rider's behalf and clears its offers.
func (s *Service) Cancel(ctx context.Context, rideID, riderID uuid.UUID) (models.Ride, error) {
	ctx = wrap.WithAction(ctx, types.ActionRideCancelled)
	ctx = wrap.WithRideID(ctx, rideID.String())

	res, err := s.ledger.Cancel(rideID, riderID)
	if err != nil {
		return models.Ride{}, wrap.Error(ctx, err)
	}

	s.log.Info(ctx, "ride cancelled by rider")
	s.finalize(ctx, res)
	return res.Ride, nil
}

// DriverGone rejects every pending offer held by a dropped driver.
func (s *Service) DriverGone(driverID uuid.UUID) {
	ctx := wrap.WithAction(context.Background(), types.ActionOfferResponse)

	for _, res := range s.ledger.DriverGone(driverID) {
		if res.Changed {
			s.log.Info(wrap.WithRideID(ctx, res.Ride.ID.String()),
				"ride unmatched after driver disconnect",
				"driver_id", driverID.String(),
			)
			s.finalize(ctx, res)
		}
	}
}

// OnlineDrivers counts connected drivers serving the given vehicle type.
func (s *Service) OnlineDrivers(vehicleType types.VehicleType) int {
	n := 0
	for _, sess := range s.hub.Drivers() {
		if sess.VehicleType == vehicleType {
			n++
		}
	}
	return n
}
