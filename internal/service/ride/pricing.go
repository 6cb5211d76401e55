package ride

import "github.com/yerzhank/ride-dispatch/internal/domain/types"

// Per-km base rates by vehicle type.
var baseRatePerKm = map[types.VehicleType]float64{
	types.TwoWheeler:   10,
	types.ThreeWheeler: 14,
	types.Car:          20,
	types.PremiumCar:   35,
}

const minimumFare = 30

// surgeMultiplier grows with the ratio of waiting rides to online
// drivers. No supply at all prices at the cap.
func surgeMultiplier(demand, supply int, maxSurge float64) float64 {
	if supply <= 0 {
		return maxSurge
	}
	surge := 1 + 0.5*float64(demand)/float64(supply)
	if surge > maxSurge {
		return maxSurge
	}
	return surge
}

// calculateFare prices a ride: per-km rate for the vehicle type,
// scaled by the surge multiplier, never below the minimum fare.
func calculateFare(vehicleType types.VehicleType, distanceKm, surge float64) float64 {
	fare := baseRatePerKm[vehicleType] * distanceKm * surge
	if fare < minimumFare {
		fare = minimumFare
	}
	return fare
}
