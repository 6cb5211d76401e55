package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/yerzhank/ride-dispatch/config"
	"github.com/yerzhank/ride-dispatch/internal/domain/models"
	"github.com/yerzhank/ride-dispatch/internal/domain/types"
	wrap "github.com/yerzhank/ride-dispatch/pkg/logger/wrapper"
)

var ErrNoRoute = fmt.Errorf("no route found")

// Client resolves driving distance and duration between two points.
// It talks to an OSRM-compatible routing endpoint and falls back to a
// haversine estimate when no endpoint is configured or the call fails.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func New(cfg config.RoutingConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

type routeResponse struct {
	Routes []struct {
		DistanceMeters  float64 `json:"distance"`
		DurationSeconds float64 `json:"duration"`
	} `json:"routes"`
}

// Route returns the driving distance in km and duration in minutes.
func (c *Client) Route(ctx context.Context, from, to models.Location) (distanceKm, durationMin float64, err error) {
	if c.baseURL == "" {
		return c.estimate(from, to)
	}

	url := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=false",
		c.baseURL, from.Longitude, from.Latitude, to.Longitude, to.Latitude)
	if c.apiKey != "" {
		url += "&access_token=" + c.apiKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, 0, wrap.Error(ctx, fmt.Errorf("failed to build routing request: %w", err))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// routing endpoint unreachable, estimate locally
		_ = wrap.Error(wrap.WithAction(ctx, types.ActionExternalServiceFailed), err)
		return c.estimate(from, to)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		ctx = wrap.WithAction(ctx, types.ActionExternalServiceFailed)
		return 0, 0, wrap.Error(ctx, fmt.Errorf("unexpected routing response status %d", resp.StatusCode))
	}

	var payload routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, 0, wrap.Error(ctx, fmt.Errorf("failed to decode routing response: %w", err))
	}
	if len(payload.Routes) == 0 {
		return 0, 0, wrap.Error(ctx, ErrNoRoute)
	}

	distanceKm = payload.Routes[0].DistanceMeters / 1000
	durationMin = payload.Routes[0].DurationSeconds / 60
	return distanceKm, durationMin, nil
}

// assumed average city speed for the fallback estimate
const fallbackSpeedKmh = 30.0

func (c *Client) estimate(from, to models.Location) (float64, float64, error) {
	distanceKm := HaversineKm(from, to)
	durationMin := distanceKm / fallbackSpeedKmh * 60
	return distanceKm, durationMin, nil
}
