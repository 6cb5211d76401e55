package dto

import (
	"time"

	"github.com/yerzhank/ride-dispatch/internal/domain/models"
	"github.com/yerzhank/ride-dispatch/pkg/uuid"
	"github.com/yerzhank/ride-dispatch/pkg/validator"
)

type CreateRideRequest struct {
	StartLat    *float64 `json:"start_lat"`
	StartLng    *float64 `json:"start_lng"`
	EndLat      *float64 `json:"end_lat"`
	EndLng      *float64 `json:"end_lng"`
	VehicleType string   `json:"vehicle_type"`
}

// Validate only checks field presence. Coordinate and vehicle class
// semantics belong to the ride service, whose errors map to 400.
func (r *CreateRideRequest) Validate(v *validator.Validator) {
	v.Check(r.StartLat != nil, "start_lat", "must be provided")
	v.Check(r.StartLng != nil, "start_lng", "must be provided")
	v.Check(r.EndLat != nil, "end_lat", "must be provided")
	v.Check(r.EndLng != nil, "end_lng", "must be provided")
	v.Check(r.VehicleType != "", "vehicle_type", "must be provided")
}

func (r *CreateRideRequest) Pickup() models.Location {
	return models.Location{Latitude: *r.StartLat, Longitude: *r.StartLng}
}

func (r *CreateRideRequest) Destination() models.Location {
	return models.Location{Latitude: *r.EndLat, Longitude: *r.EndLng}
}

type CreateRideResponse struct {
	RideID uuid.UUID `json:"ride_id"`
	Status string    `json:"status"`
	models.Quote
}

type RespondRequest struct {
	Accept *bool `json:"accept"`
}

func (r *RespondRequest) Validate(v *validator.Validator) {
	v.Check(r.Accept != nil, "accept", "must be provided")
}

// RideView is the read model returned by ride detail lookups.
type RideView struct {
	RideID      uuid.UUID       `json:"ride_id"`
	Status      string          `json:"status"`
	VehicleType string          `json:"vehicle_type"`
	Pickup      models.Location `json:"pickup"`
	Destination models.Location `json:"destination"`
	DistanceKm  float64         `json:"distance"`
	DurationMin float64         `json:"duration"`
	Fare        float64         `json:"fare"`
	DriverID    string          `json:"driver_id,omitempty"`
	DriverName  string          `json:"driver_name,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	ClosedAt    *time.Time      `json:"closed_at,omitempty"`
}

func ToRideView(ride models.Ride) RideView {
	view := RideView{
		RideID:      ride.ID,
		Status:      ride.Status.String(),
		VehicleType: ride.VehicleType.String(),
		Pickup:      ride.Pickup,
		Destination: ride.Destination,
		DistanceKm:  ride.DistanceKm,
		DurationMin: ride.DurationMin,
		Fare:        ride.Fare,
		DriverName:  ride.DriverName,
		CreatedAt:   ride.CreatedAt,
		ClosedAt:    ride.ClosedAt,
	}
	if ride.DriverID != nil {
		view.DriverID = ride.DriverID.String()
	}
	return view
}
