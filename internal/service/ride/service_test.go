package ride

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/yerzhank/ride-dispatch/config"
	"github.com/yerzhank/ride-dispatch/internal/domain/models"
	"github.com/yerzhank/ride-dispatch/internal/domain/types"
	"github.com/yerzhank/ride-dispatch/internal/ledger"
	"github.com/yerzhank/ride-dispatch/pkg/logger"
	"github.com/yerzhank/ride-dispatch/pkg/uuid"
)

type fakeRouter struct {
	distanceKm  float64
	durationMin float64
	err         error
}

func (f *fakeRouter) Route(ctx context.Context, from, to models.Location) (float64, float64, error) {
	return f.distanceKm, f.durationMin, f.err
}

type fakeDispatcher struct {
	mu         sync.Mutex
	dispatched []models.Ride
	online     int
}

func (f *fakeDispatcher) Dispatch(ride models.Ride) {
	f.mu.Lock()
	f.dispatched = append(f.dispatched, ride)
	f.mu.Unlock()
}

func (f *fakeDispatcher) Cancel(ctx context.Context, rideID, riderID uuid.UUID) (models.Ride, error) {
	return models.Ride{}, nil
}

func (f *fakeDispatcher) OnlineDrivers(vehicleType types.VehicleType) int {
	return f.online
}

func (f *fakeDispatcher) dispatchedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.dispatched)
}

var testArea = config.ServiceAreaConfig{MinLat: 12.8, MaxLat: 13.2, MinLng: 77.4, MaxLng: 77.8}

func newTestService(router Router, dispatcher Dispatcher) *Service {
	return NewService(
		ledger.New(),
		router,
		dispatcher,
		nil,
		testArea,
		config.PricingConfig{MaxSurge: 3.0},
		logger.InitLogger("test", logger.LevelError),
	)
}

func TestCreate(t *testing.T) {
	dispatcher := &fakeDispatcher{online: 5}
	s := newTestService(&fakeRouter{distanceKm: 10, durationMin: 25}, dispatcher)

	rider := uuid.New()
	pickup := models.Location{Latitude: 12.97, Longitude: 77.59}
	dest := models.Location{Latitude: 13.0, Longitude: 77.64}

	ride, err := s.Create(context.Background(), rider, pickup, dest, types.Car)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if ride.Status != types.StatusRequested {
		t.Errorf("status = %s, want REQUESTED", ride.Status)
	}
	if ride.DistanceKm != 10 || ride.DurationMin != 25 {
		t.Errorf("quote distance=%v duration=%v, want 10/25", ride.DistanceKm, ride.DurationMin)
	}
	// 10 km by car, idle system, no surge
	if ride.Fare != 200 {
		t.Errorf("fare = %v, want 200", ride.Fare)
	}

	if _, err := s.Get(context.Background(), ride.ID, rider); err != nil {
		t.Fatalf("get after create: %v", err)
	}

	// dispatch runs async, give it a moment
	deadline := time.Now().Add(time.Second)
	for dispatcher.dispatchedCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("ride never handed to dispatcher")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestCreate_InvalidVehicleType(t *testing.T) {
	s := newTestService(&fakeRouter{distanceKm: 1}, &fakeDispatcher{})

	pickup := models.Location{Latitude: 12.97, Longitude: 77.59}
	_, err := s.Create(context.Background(), uuid.New(), pickup, pickup, types.VehicleType("hovercraft"))
	if !errors.Is(err, types.ErrInvalidVehicleType) {
		t.Fatalf("err = %v, want ErrInvalidVehicleType", err)
	}
}

func TestCreate_InvalidCoordinates(t *testing.T) {
	s := newTestService(&fakeRouter{distanceKm: 1}, &fakeDispatcher{})

	inside := models.Location{Latitude: 12.97, Longitude: 77.59}
	nowhere := models.Location{Latitude: 200, Longitude: 77.59}

	if _, err := s.Create(context.Background(), uuid.New(), nowhere, inside, types.Car); !errors.Is(err, types.ErrInvalidCoordinates) {
		t.Fatalf("pickup: err = %v, want ErrInvalidCoordinates", err)
	}
	if _, err := s.Create(context.Background(), uuid.New(), inside, nowhere, types.Car); !errors.Is(err, types.ErrInvalidCoordinates) {
		t.Fatalf("destination: err = %v, want ErrInvalidCoordinates", err)
	}
}

func TestCreate_OutOfServiceArea(t *testing.T) {
	s := newTestService(&fakeRouter{distanceKm: 1}, &fakeDispatcher{})

	inside := models.Location{Latitude: 12.97, Longitude: 77.59}
	almaty := models.Location{Latitude: 43.24, Longitude: 76.89}

	if _, err := s.Create(context.Background(), uuid.New(), almaty, inside, types.Car); !errors.Is(err, types.ErrOutOfServiceArea) {
		t.Fatalf("pickup outside: err = %v, want ErrOutOfServiceArea", err)
	}
	if _, err := s.Create(context.Background(), uuid.New(), inside, almaty, types.Car); !errors.Is(err, types.ErrOutOfServiceArea) {
		t.Fatalf("destination outside: err = %v, want ErrOutOfServiceArea", err)
	}
}

func TestCreate_RoutingFailure(t *testing.T) {
	s := newTestService(&fakeRouter{err: errors.New("routing down")}, &fakeDispatcher{})

	pickup := models.Location{Latitude: 12.97, Longitude: 77.59}
	if _, err := s.Create(context.Background(), uuid.New(), pickup, pickup, types.Car); err == nil {
		t.Fatal("expected error when routing fails")
	}
}

func TestGet_StrangerDenied(t *testing.T) {
	s := newTestService(&fakeRouter{distanceKm: 5, durationMin: 10}, &fakeDispatcher{online: 1})

	rider := uuid.New()
	pickup := models.Location{Latitude: 12.97, Longitude: 77.59}
	ride, err := s.Create(context.Background(), rider, pickup, pickup, types.Car)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := s.Get(context.Background(), ride.ID, uuid.New()); !errors.Is(err, types.ErrNotRideOwner) {
		t.Fatalf("err = %v, want ErrNotRideOwner", err)
	}
}
