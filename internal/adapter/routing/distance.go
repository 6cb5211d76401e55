package routing

import (
	"math"

	"github.com/yerzhank/ride-dispatch/internal/domain/models"
)

const EarthRadiusKm = 6371.0

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// HaversineKm calculates the great-circle distance between two points.
func HaversineKm(from, to models.Location) float64 {
	lat1Rad := degreesToRadians(from.Latitude)
	lon1Rad := degreesToRadians(from.Longitude)
	lat2Rad := degreesToRadians(to.Latitude)
	lon2Rad := degreesToRadians(to.Longitude)

	deltaLat := lat2Rad - lat1Rad
	deltaLon := lon2Rad - lon1Rad

	a := math.Pow(math.Sin(deltaLat/2), 2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Pow(math.Sin(deltaLon/2), 2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}
