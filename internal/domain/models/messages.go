package models

import (
	"encoding/json"
	"time"

	"github.com/yerzhank/ride-dispatch/pkg/uuid"
)

// Websocket message types
const (
	MsgTypeRideRequest  = "ride_request"
	MsgTypeRideResponse = "ride_response"
	MsgTypeLocation     = "location"
	MsgTypePing         = "ping"
	MsgTypePong         = "pong"
)

// WSMessage is the inbound envelope read from a websocket session.
type WSMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// RideRequestPush is sent to candidate drivers during fan-out.
// Pickup is a [lat, lng] pair.
type RideRequestPush struct {
	Type    string             `json:"type"`
	Payload RideRequestPayload `json:"payload"`
}

type RideRequestPayload struct {
	RideID   uuid.UUID  `json:"ride_id"`
	RiderID  uuid.UUID  `json:"rider_id"`
	Pickup   [2]float64 `json:"pickup"`
	Distance float64    `json:"distance"`
	Fare     float64    `json:"fare"`
}

// RideResponsePush tells a rider (or a losing driver) how a ride ended up.
type RideResponsePush struct {
	Type    string              `json:"type"`
	Payload RideResponsePayload `json:"payload"`
}

type RideResponsePayload struct {
	RideID     uuid.UUID `json:"ride_id"`
	Status     string    `json:"status"`
	DriverID   string    `json:"driver_id,omitempty"`
	DriverName string    `json:"driver_name,omitempty"`
}

// LocationPayload is a driver's position streamed over the session.
type LocationPayload struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

/* ======================= rabbitmq ======================= */

// RideStatusMessage is published on every lifecycle transition.
type RideStatusMessage struct {
	RideID    uuid.UUID `json:"ride_id"`
	RiderID   uuid.UUID `json:"rider_id"`
	Status    string    `json:"status"`
	DriverID  string    `json:"driver_id,omitempty"`
	Fare      float64   `json:"fare"`
	Timestamp time.Time `json:"timestamp"`
}
