package ride

import (
	"context"

	"github.com/yerzhank/ride-dispatch/internal/domain/models"
	"github.com/yerzhank/ride-dispatch/internal/domain/types"
	"github.com/yerzhank/ride-dispatch/pkg/uuid"
)

// Router resolves driving distance (km) and duration (minutes).
type Router interface {
	Route(ctx context.Context, from, to models.Location) (distanceKm, durationMin float64, err error)
}

// Dispatcher runs the offer fan-out and closes rides.
type Dispatcher interface {
	Dispatch(ride models.Ride)
	Cancel(ctx context.Context, rideID, riderID uuid.UUID) (models.Ride, error)
	OnlineDrivers(vehicleType types.VehicleType) int
}

// Archive reads terminal rides the ledger already evicted. Optional.
type Archive interface {
	Get(ctx context.Context, rideID uuid.UUID) (models.Ride, error)
}
