package models

import (
	"time"

	"github.com/yerzhank/ride-dispatch/pkg/uuid"
)

type OfferState string

const (
	OfferPending  OfferState = "PENDING"
	OfferAccepted OfferState = "ACCEPTED"
	OfferRejected OfferState = "REJECTED"
	OfferExpired  OfferState = "EXPIRED"
)

// Offer tracks one driver's pending copy of a ride request.
type Offer struct {
	RideID             uuid.UUID
	DriverID           uuid.UUID
	State              OfferState
	DistanceToPickupKm float64
	SentAt             time.Time
	RespondedAt        *time.Time
}
