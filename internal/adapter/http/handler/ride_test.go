package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yerzhank/ride-dispatch/internal/domain/models"
	"github.com/yerzhank/ride-dispatch/internal/domain/types"
	"github.com/yerzhank/ride-dispatch/pkg/logger"
	"github.com/yerzhank/ride-dispatch/pkg/uuid"
)

type fakeRideService struct {
	ride models.Ride
	err  error

	cancelled bool
}

func (f *fakeRideService) Create(ctx context.Context, riderID uuid.UUID, pickup, destination models.Location, vehicleType types.VehicleType) (models.Ride, error) {
	if f.err != nil {
		return models.Ride{}, f.err
	}
	return f.ride, nil
}

func (f *fakeRideService) Get(ctx context.Context, rideID, requesterID uuid.UUID) (models.Ride, error) {
	if f.err != nil {
		return models.Ride{}, f.err
	}
	return f.ride, nil
}

func (f *fakeRideService) Cancel(ctx context.Context, rideID, riderID uuid.UUID) (models.Ride, error) {
	if f.err != nil {
		return models.Ride{}, f.err
	}
	f.cancelled = true
	return f.ride, nil
}

type fakeDispatchService struct {
	outcome types.ResponseOutcome
	ride    models.Ride
	err     error
}

func (f *fakeDispatchService) Respond(ctx context.Context, rideID, driverID uuid.UUID, driverName string, accept bool) (types.ResponseOutcome, models.Ride, error) {
	if f.err != nil {
		return "", models.Ride{}, f.err
	}
	return f.outcome, f.ride, nil
}

func newTestRideHandler(rides RideService, dispatch DispatchService) *Ride {
	return NewRide(rides, dispatch, logger.InitLogger("test", logger.LevelError))
}

func asParticipant(r *http.Request, role types.ParticipantRole) *http.Request {
	p := &models.Participant{ID: uuid.New(), Name: "Aida", Role: role}
	return r.WithContext(models.WithParticipant(r.Context(), p))
}

func TestCreateRide_ValidRequest(t *testing.T) {
	want := models.Ride{
		ID:          uuid.New(),
		Status:      types.StatusRequested,
		DistanceKm:  12.5,
		DurationMin: 25,
		Fare:        250,
		Surge:       1,
	}
	h := newTestRideHandler(&fakeRideService{ride: want}, &fakeDispatchService{})

	body := `{"start_lat": 12.97, "start_lng": 77.59, "end_lat": 13.0, "end_lng": 77.64, "vehicle_type": "car"}`
	req := asParticipant(httptest.NewRequest(http.MethodPost, "/rides/", bytes.NewBufferString(body)), types.RiderRole)
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Ride struct {
			RideID uuid.UUID `json:"ride_id"`
			Fare   float64   `json:"fare"`
		} `json:"ride"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Ride.RideID != want.ID || resp.Ride.Fare != want.Fare {
		t.Fatalf("response = %+v, want id %s fare %v", resp.Ride, want.ID, want.Fare)
	}
}

func TestCreateRide_MissingFields(t *testing.T) {
	h := newTestRideHandler(&fakeRideService{}, &fakeDispatchService{})

	body := `{"start_lat": 12.97}`
	req := asParticipant(httptest.NewRequest(http.MethodPost, "/rides/", bytes.NewBufferString(body)), types.RiderRole)
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestCreateRide_UnknownVehicleType(t *testing.T) {
	h := newTestRideHandler(&fakeRideService{err: types.ErrInvalidVehicleType}, &fakeDispatchService{})

	body := `{"start_lat": 12.97, "start_lng": 77.59, "end_lat": 13.0, "end_lng": 77.64, "vehicle_type": "helicopter"}`
	req := asParticipant(httptest.NewRequest(http.MethodPost, "/rides/", bytes.NewBufferString(body)), types.RiderRole)
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateRide_BadCoordinates(t *testing.T) {
	h := newTestRideHandler(&fakeRideService{err: types.ErrInvalidCoordinates}, &fakeDispatchService{})

	body := `{"start_lat": 200, "start_lng": 77.59, "end_lat": 13.0, "end_lng": 77.64, "vehicle_type": "car"}`
	req := asParticipant(httptest.NewRequest(http.MethodPost, "/rides/", bytes.NewBufferString(body)), types.RiderRole)
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateRide_OutOfServiceArea(t *testing.T) {
	h := newTestRideHandler(&fakeRideService{err: types.ErrOutOfServiceArea}, &fakeDispatchService{})

	body := `{"start_lat": 43.24, "start_lng": 76.89, "end_lat": 43.26, "end_lng": 76.95, "vehicle_type": "car"}`
	req := asParticipant(httptest.NewRequest(http.MethodPost, "/rides/", bytes.NewBufferString(body)), types.RiderRole)
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRespond_Won(t *testing.T) {
	rideID := uuid.New()
	h := newTestRideHandler(&fakeRideService{}, &fakeDispatchService{
		outcome: types.OutcomeWon,
		ride:    models.Ride{ID: rideID, Status: types.StatusAssigned},
	})

	req := asParticipant(httptest.NewRequest(http.MethodPost, "/rides/"+rideID.String()+"/respond",
		bytes.NewBufferString(`{"accept": true}`)), types.DriverRole)
	req.SetPathValue("ride_id", rideID.String())
	rec := httptest.NewRecorder()

	h.Respond(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Outcome string `json:"outcome"`
		Status  string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Outcome != "WON" || resp.Status != "ASSIGNED" {
		t.Fatalf("response = %+v, want WON/ASSIGNED", resp)
	}
}

func TestRespond_TooLateIsConflict(t *testing.T) {
	rideID := uuid.New()
	h := newTestRideHandler(&fakeRideService{}, &fakeDispatchService{
		outcome: types.OutcomeTooLate,
		ride:    models.Ride{ID: rideID, Status: types.StatusAssigned},
	})

	req := asParticipant(httptest.NewRequest(http.MethodPost, "/rides/"+rideID.String()+"/respond",
		bytes.NewBufferString(`{"accept": true}`)), types.DriverRole)
	req.SetPathValue("ride_id", rideID.String())
	rec := httptest.NewRecorder()

	h.Respond(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409 for a losing accept", rec.Code)
	}

	var resp struct {
		Outcome string `json:"outcome"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Outcome != "TOO_LATE" {
		t.Fatalf("outcome = %s, want TOO_LATE", resp.Outcome)
	}
}

func TestRespond_StaleIsConflict(t *testing.T) {
	rideID := uuid.New()
	h := newTestRideHandler(&fakeRideService{}, &fakeDispatchService{
		outcome: types.OutcomeStale,
		ride:    models.Ride{ID: rideID, Status: types.StatusCancelled},
	})

	req := asParticipant(httptest.NewRequest(http.MethodPost, "/rides/"+rideID.String()+"/respond",
		bytes.NewBufferString(`{"accept": true}`)), types.DriverRole)
	req.SetPathValue("ride_id", rideID.String())
	rec := httptest.NewRecorder()

	h.Respond(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409 for a stale response", rec.Code)
	}
}

func TestRespond_NoPendingOffer(t *testing.T) {
	rideID := uuid.New()
	h := newTestRideHandler(&fakeRideService{}, &fakeDispatchService{err: types.ErrNoPendingOffer})

	req := asParticipant(httptest.NewRequest(http.MethodPost, "/rides/"+rideID.String()+"/respond",
		bytes.NewBufferString(`{"accept": true}`)), types.DriverRole)
	req.SetPathValue("ride_id", rideID.String())
	rec := httptest.NewRecorder()

	h.Respond(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestRespond_MissingAccept(t *testing.T) {
	rideID := uuid.New()
	h := newTestRideHandler(&fakeRideService{}, &fakeDispatchService{})

	req := asParticipant(httptest.NewRequest(http.MethodPost, "/rides/"+rideID.String()+"/respond",
		bytes.NewBufferString(`{}`)), types.DriverRole)
	req.SetPathValue("ride_id", rideID.String())
	rec := httptest.NewRecorder()

	h.Respond(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestRespond_BadRideID(t *testing.T) {
	h := newTestRideHandler(&fakeRideService{}, &fakeDispatchService{})

	req := asParticipant(httptest.NewRequest(http.MethodPost, "/rides/nope/respond",
		bytes.NewBufferString(`{"accept": false}`)), types.DriverRole)
	req.SetPathValue("ride_id", "nope")
	rec := httptest.NewRecorder()

	h.Respond(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetRide_StrangerSees404(t *testing.T) {
	rideID := uuid.New()
	h := newTestRideHandler(&fakeRideService{err: types.ErrNotRideOwner}, &fakeDispatchService{})

	req := asParticipant(httptest.NewRequest(http.MethodGet, "/rides/"+rideID.String(), nil), types.RiderRole)
	req.SetPathValue("ride_id", rideID.String())
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 for foreign ride", rec.Code)
	}
}

func TestCancelRide_Terminal(t *testing.T) {
	rideID := uuid.New()
	h := newTestRideHandler(&fakeRideService{err: types.ErrRideTerminal}, &fakeDispatchService{})

	req := asParticipant(httptest.NewRequest(http.MethodPost, "/rides/"+rideID.String()+"/cancel", nil), types.RiderRole)
	req.SetPathValue("ride_id", rideID.String())
	rec := httptest.NewRecorder()

	h.Cancel(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestCancelRide_OK(t *testing.T) {
	rideID := uuid.New()
	svc := &fakeRideService{ride: models.Ride{ID: rideID, Status: types.StatusCancelled}}
	h := newTestRideHandler(svc, &fakeDispatchService{})

	req := asParticipant(httptest.NewRequest(http.MethodPost, "/rides/"+rideID.String()+"/cancel", nil), types.RiderRole)
	req.SetPathValue("ride_id", rideID.String())
	rec := httptest.NewRecorder()

	h.Cancel(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !svc.cancelled {
		t.Fatal("cancel never reached the service")
	}
}
