package types

import "errors"

var (
	ErrRideNotFound       = errors.New("ride not found")
	ErrRideConflict       = errors.New("ride is in a conflicting state")
	ErrRideTerminal       = errors.New("ride already reached a terminal state")
	ErrNoPendingOffer     = errors.New("no pending offer for this driver")
	ErrNotFound           = errors.New("requested item not found")
	ErrOutOfServiceArea   = errors.New("coordinates outside the service area")
	ErrInvalidVehicleType = errors.New("invalid vehicle type")
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	ErrNotRideOwner       = errors.New("ride belongs to another rider")

	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("operation not permitted for this role")
)
