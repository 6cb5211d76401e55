package auth

import "errors"

var (
	ErrInvalidToken         = errors.New("invalid token")
	ErrExpToken             = errors.New("expired token")
	ErrTokenGenerateFail    = errors.New("failed to generate token")
	ErrBadProvisionSecret   = errors.New("invalid provisioning secret")
	ErrUnknownRole          = errors.New("unknown participant role")
	ErrDriverNeedsVehicle   = errors.New("driver token requires a vehicle type")
	ErrVehicleWithoutDriver = errors.New("vehicle type is only valid for drivers")
)
