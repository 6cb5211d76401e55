package models

import (
	"time"

	"github.com/yerzhank/ride-dispatch/internal/domain/types"
	"github.com/yerzhank/ride-dispatch/pkg/uuid"
)

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Ride is the authoritative in-memory record of a dispatch attempt.
type Ride struct {
	ID          uuid.UUID
	RiderID     uuid.UUID
	Status      types.RideStatus
	VehicleType types.VehicleType
	Pickup      Location
	Destination Location

	// Quote fields computed at request time
	DistanceKm  float64
	DurationMin float64
	Fare        float64
	Surge       float64

	// Set when a driver wins arbitration
	DriverID   *uuid.UUID
	DriverName string

	CreatedAt  time.Time
	OfferedAt  *time.Time
	AssignedAt *time.Time
	ClosedAt   *time.Time
}

// Quote is the fare estimate returned on ride creation.
type Quote struct {
	DistanceKm  float64 `json:"distance"`
	DurationMin float64 `json:"duration"`
	Fare        float64 `json:"fare"`
	Surge       float64 `json:"surge"`
}

func (r Ride) Quote() Quote {
	return Quote{
		DistanceKm:  r.DistanceKm,
		DurationMin: r.DurationMin,
		Fare:        r.Fare,
		Surge:       r.Surge,
	}
}
