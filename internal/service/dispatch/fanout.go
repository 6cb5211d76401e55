package dispatch

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/yerzhank/ride-dispatch/internal/adapter/routing"
	"github.com/yerzhank/ride-dispatch/internal/domain/models"
	"github.com/yerzhank/ride-dispatch/internal/domain/types"
	wrap "github.com/yerzhank/ride-dispatch/pkg/logger/wrapper"
	"github.com/yerzhank/ride-dispatch/pkg/metrics"
	"github.com/yerzhank/ride-dispatch/pkg/uuid"
)

type candidate struct {
	driverID   uuid.UUID
	distanceKm float64
}

// Dispatch finds candidate drivers for a fresh ride, opens their
// offers and pushes the request to each of them. With no candidates
// the ride closes as UNMATCHED right away.
func (s *Service) Dispatch(ride models.Ride) {
	ctx := wrap.WithAction(context.Background(), types.ActionOfferFanout)
	ctx = wrap.WithRideID(ctx, ride.ID.String())

	candidates := s.candidates(ride)
	if len(candidates) == 0 {
		s.log.Info(ctx, "no candidate drivers, ride unmatched")
		res, err := s.ledger.Unmatch(ride.ID)
		if err != nil {
			s.log.Error(ctx, "failed to unmatch ride", err)
			return
		}
		if res.Changed {
			s.finalize(ctx, res)
		}
		return
	}

	offers := make([]models.Offer, 0, len(candidates))
	for _, c := range candidates {
		offers = append(offers, models.Offer{
			DriverID:           c.driverID,
			DistanceToPickupKm: c.distanceKm,
		})
	}

	if err := s.ledger.OpenOffers(ride.ID, offers); err != nil {
		// ride left REQUESTED before fan-out, e.g. cancelled
		s.log.Warn(ctx, "fan-out aborted", "reason", err.Error())
		return
	}

	push := models.RideRequestPush{
		Type: models.MsgTypeRideRequest,
		Payload: models.RideRequestPayload{
			RideID:   ride.ID,
			RiderID:  ride.RiderID,
			Pickup:   [2]float64{ride.Pickup.Latitude, ride.Pickup.Longitude},
			Distance: ride.DistanceKm,
			Fare:     ride.Fare,
		},
	}

	sent := 0
	for _, c := range candidates {
		if err := s.hub.SendTo(c.driverID, push); err != nil {
			s.log.Warn(ctx, "failed to push offer",
				"driver_id", c.driverID.String(),
				"err", err.Error(),
			)
			continue
		}
		sent++
	}
	metrics.OffersPushedTotal.WithLabelValues(serviceName).Add(float64(sent))

	s.publishStatus(ctx, s.mustGet(ride.ID))
	s.armDeadline(ride.ID)

	s.log.Info(ctx, "offers fanned out",
		"candidates", len(candidates),
		"pushed", sent,
	)
}

// candidates returns connected drivers of the right vehicle type with
// a known position inside the search radius, closest first. Drivers
// already holding a pending offer are skipped: one offer at a time.
func (s *Service) candidates(ride models.Ride) []candidate {
	var out []candidate
	for _, sess := range s.hub.Drivers() {
		if sess.VehicleType != ride.VehicleType {
			continue
		}
		if s.ledger.HasPendingOffer(sess.EntityID()) {
			continue
		}
		lat, lng, ok := sess.Location()
		if !ok {
			continue
		}

		d := routing.HaversineKm(models.Location{Latitude: lat, Longitude: lng}, ride.Pickup)
		if s.cfg.SearchRadiusKm > 0 && d > s.cfg.SearchRadiusKm {
			continue
		}
		out = append(out, candidate{driverID: sess.EntityID(), distanceKm: d})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].distanceKm < out[j].distanceKm
	})

	if s.cfg.MaxCandidates > 0 && len(out) > s.cfg.MaxCandidates {
		out = out[:s.cfg.MaxCandidates]
	}
	return out
}

// armDeadline schedules the offer round to expire.
func (s *Service) armDeadline(rideID uuid.UUID) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()

	if _, ok := s.timers[rideID]; ok {
		return
	}
	s.timers[rideID] = time.AfterFunc(s.cfg.OfferTimeout, func() {
		s.expire(rideID)
	})
}

func (s *Service) stopDeadline(rideID uuid.UUID) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()

	if t, ok := s.timers[rideID]; ok {
		t.Stop()
		delete(s.timers, rideID)
	}
}

// expire fires when the offer deadline passes. Losing the race against
// early-unmatch or another close is expected and stays quiet.
func (s *Service) expire(rideID uuid.UUID) {
	ctx := wrap.WithAction(context.Background(), types.ActionOfferDeadline)
	ctx = wrap.WithRideID(ctx, rideID.String())

	res, err := s.ledger.Expire(rideID)
	if err != nil {
		if errors.Is(err, types.ErrRideConflict) {
			s.log.Debug(ctx, "offer deadline fired after ride closed")
			return
		}
		s.log.Error(ctx, "failed to expire ride", err)
		return
	}
	if !res.Changed {
		return
	}

	metrics.OfferDeadlinesTotal.WithLabelValues(serviceName).Inc()
	s.log.Info(ctx, "offer deadline reached, ride unmatched")
	s.finalize(ctx, res)
}

func (s *Service) mustGet(rideID uuid.UUID) models.Ride {
	ride, err := s.ledger.Get(rideID)
	if err != nil {
		return models.Ride{ID: rideID}
	}
	return ride
}
