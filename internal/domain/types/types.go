package types

// ParticipantRole separates the two sides of a ride.
type ParticipantRole string

func (r ParticipantRole) String() string {
	return string(r)
}

const (
	RiderRole  ParticipantRole = "RIDER"
	DriverRole ParticipantRole = "DRIVER"
)

// VehicleType enumerates the fare classes drivers can serve.
type VehicleType string

func (v VehicleType) String() string {
	return string(v)
}

const (
	TwoWheeler   VehicleType = "two_wheeler"
	ThreeWheeler VehicleType = "three_wheeler"
	Car          VehicleType = "car"
	PremiumCar   VehicleType = "premium_car"
)

// VehicleTypes lists every valid vehicle type.
var VehicleTypes = []VehicleType{TwoWheeler, ThreeWheeler, Car, PremiumCar}

// RideStatus is the lifecycle state of a ride.
type RideStatus string

func (s RideStatus) String() string {
	return string(s)
}

const (
	StatusRequested RideStatus = "REQUESTED"
	StatusOffered   RideStatus = "OFFERED"
	StatusAssigned  RideStatus = "ASSIGNED"
	StatusUnmatched RideStatus = "UNMATCHED"
	StatusCancelled RideStatus = "CANCELLED"
)

// IsTerminal reports whether a ride in this status can never change again.
func (s RideStatus) IsTerminal() bool {
	switch s {
	case StatusAssigned, StatusUnmatched, StatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether the lifecycle permits moving from s to next.
func (s RideStatus) CanTransitionTo(next RideStatus) bool {
	switch s {
	case StatusRequested:
		return next == StatusOffered || next == StatusUnmatched || next == StatusCancelled
	case StatusOffered:
		return next == StatusAssigned || next == StatusUnmatched || next == StatusCancelled
	default:
		return false
	}
}

// ResponseOutcome is the arbitration result of a single driver response.
type ResponseOutcome string

func (o ResponseOutcome) String() string {
	return string(o)
}

const (
	// OutcomeWon: the first sequenced accept for a ride still open for offers.
	OutcomeWon ResponseOutcome = "WON"
	// OutcomeTooLate: a valid accept that lost the race to an earlier one.
	OutcomeTooLate ResponseOutcome = "TOO_LATE"
	// OutcomeStale: a response for a ride that is cancelled, expired or unknown.
	OutcomeStale ResponseOutcome = "STALE"
	// OutcomeAcknowledged: a reject was recorded.
	OutcomeAcknowledged ResponseOutcome = "ACKNOWLEDGED"
)
