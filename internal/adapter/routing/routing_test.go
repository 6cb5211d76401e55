package routing

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yerzhank/ride-dispatch/config"
	"github.com/yerzhank/ride-dispatch/internal/domain/models"
)

var (
	majesticBangalore  = models.Location{Latitude: 12.9767, Longitude: 77.5713}
	whitefieldBanglore = models.Location{Latitude: 12.9698, Longitude: 77.7500}
)

func TestHaversineKm(t *testing.T) {
	if d := HaversineKm(majesticBangalore, majesticBangalore); d != 0 {
		t.Fatalf("distance to self = %v, want 0", d)
	}

	d := HaversineKm(majesticBangalore, whitefieldBanglore)
	// roughly 19 km across the city
	if d < 18 || d > 21 {
		t.Fatalf("distance = %v km, want around 19", d)
	}
}

func TestRoute_FallbackWithoutEndpoint(t *testing.T) {
	c := New(config.RoutingConfig{Timeout: time.Second})

	distance, duration, err := c.Route(context.Background(), majesticBangalore, whitefieldBanglore)
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if distance <= 0 || duration <= 0 {
		t.Fatalf("estimate distance=%v duration=%v, want positive values", distance, duration)
	}

	wantDuration := distance / fallbackSpeedKmh * 60
	if math.Abs(duration-wantDuration) > 1e-9 {
		t.Fatalf("duration = %v, want %v", duration, wantDuration)
	}
}

func TestRoute_UsesEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"routes": []map[string]float64{
				{"distance": 19500, "duration": 2460},
			},
		})
	}))
	defer srv.Close()

	c := New(config.RoutingConfig{BaseURL: srv.URL, Timeout: time.Second})

	distance, duration, err := c.Route(context.Background(), majesticBangalore, whitefieldBanglore)
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if distance != 19.5 {
		t.Fatalf("distance = %v, want 19.5", distance)
	}
	if duration != 41 {
		t.Fatalf("duration = %v, want 41", duration)
	}
}

func TestRoute_EmptyRoutes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"routes": []any{}})
	}))
	defer srv.Close()

	c := New(config.RoutingConfig{BaseURL: srv.URL, Timeout: time.Second})

	if _, _, err := c.Route(context.Background(), majesticBangalore, whitefieldBanglore); err == nil {
		t.Fatal("expected error for empty routes")
	}
}
