package ride

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/yerzhank/ride-dispatch/config"
	"github.com/yerzhank/ride-dispatch/internal/domain/models"
	"github.com/yerzhank/ride-dispatch/internal/domain/types"
	"github.com/yerzhank/ride-dispatch/internal/ledger"
	"github.com/yerzhank/ride-dispatch/pkg/logger"
	wrap "github.com/yerzhank/ride-dispatch/pkg/logger/wrapper"
	"github.com/yerzhank/ride-dispatch/pkg/uuid"
)

// Service owns the rider-facing side of a ride: validation, pricing
// and handing the ride over to the dispatcher.
type Service struct {
	ledger     *ledger.Ledger
	router     Router
	dispatcher Dispatcher
	archive    Archive
	area       config.ServiceAreaConfig
	pricing    config.PricingConfig
	log        logger.Logger
}

// NewService builds the rider-facing service. archive may be nil when
// no database is configured.
func NewService(l *ledger.Ledger, router Router, dispatcher Dispatcher, archive Archive, area config.ServiceAreaConfig, pricing config.PricingConfig, log logger.Logger) *Service {
	return &Service{
		ledger:     l,
		router:     router,
		dispatcher: dispatcher,
		archive:    archive,
		area:       area,
		pricing:    pricing,
		log:        log,
	}
}

// Create validates and prices a new ride request, stores it and kicks
// off the offer fan-out in the background.
func (s *Service) Create(ctx context.Context, riderID uuid.UUID, pickup, destination models.Location, vehicleType types.VehicleType) (models.Ride, error) {
	ctx = wrap.WithAction(ctx, types.ActionRideRequested)

	if !slices.Contains(types.VehicleTypes, vehicleType) {
		return models.Ride{}, wrap.Error(ctx, types.ErrInvalidVehicleType)
	}
	if !validCoordinates(pickup) || !validCoordinates(destination) {
		return models.Ride{}, wrap.Error(ctx, types.ErrInvalidCoordinates)
	}
	if !s.inArea(pickup) || !s.inArea(destination) {
		return models.Ride{}, wrap.Error(ctx, types.ErrOutOfServiceArea)
	}

	distanceKm, durationMin, err := s.router.Route(ctx, pickup, destination)
	if err != nil {
		return models.Ride{}, wrap.Error(ctx, fmt.Errorf("could not resolve route: %w", err))
	}

	demand := s.ledger.ActiveCount()
	supply := s.dispatcher.OnlineDrivers(vehicleType)
	surge := surgeMultiplier(demand, supply, s.pricing.MaxSurge)

	ride := models.Ride{
		ID:          uuid.New(),
		RiderID:     riderID,
		VehicleType: vehicleType,
		Pickup:      pickup,
		Destination: destination,
		DistanceKm:  distanceKm,
		DurationMin: durationMin,
		Surge:       surge,
		Fare:        calculateFare(vehicleType, distanceKm, surge),
		CreatedAt:   time.Now(),
	}

	s.ledger.Create(ride)
	ride.Status = types.StatusRequested

	s.log.Info(wrap.WithRideID(ctx, ride.ID.String()), "ride requested",
		"distance_km", distanceKm,
		"fare", ride.Fare,
		"surge", surge,
	)

	// fan-out happens off the request path
	go s.dispatcher.Dispatch(ride)

	return ride, nil
}

// Get returns the ride if the requester is the rider or the assigned driver.
func (s *Service) Get(ctx context.Context, rideID, requesterID uuid.UUID) (models.Ride, error) {
	ride, err := s.ledger.Get(rideID)
	if err != nil && s.archive != nil {
		// evicted terminal rides live in the archive
		ride, err = s.archive.Get(ctx, rideID)
	}
	if err != nil {
		return models.Ride{}, wrap.Error(ctx, err)
	}

	if ride.RiderID != requesterID && (ride.DriverID == nil || *ride.DriverID != requesterID) {
		return models.Ride{}, wrap.Error(ctx, types.ErrNotRideOwner)
	}
	return ride, nil
}

// Cancel closes the ride on the rider's behalf.
func (s *Service) Cancel(ctx context.Context, rideID, riderID uuid.UUID) (models.Ride, error) {
	ctx = wrap.WithAction(ctx, types.ActionRideCancelled)
	return s.dispatcher.Cancel(ctx, rideID, riderID)
}

func validCoordinates(loc models.Location) bool {
	return loc.Latitude >= -90 && loc.Latitude <= 90 &&
		loc.Longitude >= -180 && loc.Longitude <= 180
}

func (s *Service) inArea(loc models.Location) bool {
	return loc.Latitude >= s.area.MinLat && loc.Latitude <= s.area.MaxLat &&
		loc.Longitude >= s.area.MinLng && loc.Longitude <= s.area.MaxLng
}
