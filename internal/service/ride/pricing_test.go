package ride

import (
	"testing"

	"github.com/yerzhank/ride-dispatch/internal/domain/types"
)

func TestSurgeMultiplier(t *testing.T) {
	tests := []struct {
		name   string
		demand int
		supply int
		want   float64
	}{
		{"no demand", 0, 10, 1.0},
		{"balanced", 10, 10, 1.5},
		{"double demand", 20, 10, 2.0},
		{"capped", 100, 10, 3.0},
		{"zero supply", 1, 0, 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := surgeMultiplier(tt.demand, tt.supply, 3.0); got != tt.want {
				t.Errorf("surgeMultiplier(%d, %d) = %v, want %v", tt.demand, tt.supply, got, tt.want)
			}
		})
	}
}

func TestCalculateFare(t *testing.T) {
	// 10 km by car at no surge
	if got := calculateFare(types.Car, 10, 1.0); got != 200 {
		t.Errorf("car fare = %v, want 200", got)
	}

	// same trip at 2x surge
	if got := calculateFare(types.Car, 10, 2.0); got != 400 {
		t.Errorf("surged car fare = %v, want 400", got)
	}

	// premium rides cost more than economy ones
	if calculateFare(types.PremiumCar, 10, 1.0) <= calculateFare(types.TwoWheeler, 10, 1.0) {
		t.Error("premium fare should exceed two wheeler fare")
	}

	// a tiny hop still pays the minimum
	if got := calculateFare(types.TwoWheeler, 0.1, 1.0); got != minimumFare {
		t.Errorf("short trip fare = %v, want minimum %v", got, minimumFare)
	}
}
