package models

import (
	"github.com/yerzhank/ride-dispatch/pkg/uuid"
	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims carries participant identity inside a signed JWT.
type CustomClaims struct {
	ID          uuid.UUID `json:"ID"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	VehicleType string    `json:"vehicle_type,omitempty"`
	jwt.RegisteredClaims
}
