package handler

import (
	"context"
	"net/http"

	"github.com/yerzhank/ride-dispatch/internal/adapter/http/handler/dto"
	"github.com/yerzhank/ride-dispatch/internal/domain/models"
	"github.com/yerzhank/ride-dispatch/internal/domain/types"
	"github.com/yerzhank/ride-dispatch/pkg/logger"
	wrap "github.com/yerzhank/ride-dispatch/pkg/logger/wrapper"
	"github.com/yerzhank/ride-dispatch/pkg/uuid"
	"github.com/yerzhank/ride-dispatch/pkg/validator"
)

type RideService interface {
	Create(ctx context.Context, riderID uuid.UUID, pickup, destination models.Location, vehicleType types.VehicleType) (models.Ride, error)
	Get(ctx context.Context, rideID, requesterID uuid.UUID) (models.Ride, error)
	Cancel(ctx context.Context, rideID, riderID uuid.UUID) (models.Ride, error)
}

type DispatchService interface {
	Respond(ctx context.Context, rideID, driverID uuid.UUID, driverName string, accept bool) (types.ResponseOutcome, models.Ride, error)
}

type Ride struct {
	rides    RideService
	dispatch DispatchService
	l        logger.Logger
}

func NewRide(rides RideService, dispatch DispatchService, l logger.Logger) *Ride {
	return &Ride{
		rides:    rides,
		dispatch: dispatch,
		l:        l,
	}
}

// Create godoc
// @Summary      Request a ride
// @Description  Validates the request, prices the trip and starts the offer fan-out
// @Tags         Rides
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateRideRequest true "ride request"
// @Success      201  {object}  dto.CreateRideResponse
// @Router       /rides/ [post]
func (h *Ride) Create(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "create_ride")

	rider := models.ParticipantFromContext(ctx)

	req := &dto.CreateRideRequest{}
	if err := readJSON(w, r, req); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to read request JSON data", err)
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	req.Validate(v)
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	ride, err := h.rides.Create(ctx, rider.ID, req.Pickup(), req.Destination(), types.VehicleType(req.VehicleType))
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to create ride", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{"ride": dto.CreateRideResponse{
		RideID: ride.ID,
		Status: ride.Status.String(),
		Quote:  ride.Quote(),
	}}

	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write JSON response", err)
		internalErrorResponse(w, "failed to write JSON response")
	}
}

// Get godoc
// @Summary      Ride details
// @Description  Returns a ride visible to its rider or assigned driver
// @Tags         Rides
// @Produce      json
// @Param        ride_id path string true "ride id"
// @Success      200  {object}  dto.RideView
// @Router       /rides/{ride_id} [get]
func (h *Ride) Get(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_ride")

	rideID, err := uuid.Parse(r.PathValue("ride_id"))
	if err != nil {
		badRequestResponse(w, "invalid ride uuid format")
		return
	}
	ctx = wrap.WithRideID(ctx, rideID.String())

	participant := models.ParticipantFromContext(ctx)

	ride, err := h.rides.Get(ctx, rideID, participant.ID)
	if err != nil {
		// ownership failures read as 404 so ride ids cannot be enumerated
		code := GetCode(err)
		if IsOneOf(err, types.ErrNotRideOwner) {
			code = http.StatusNotFound
		}
		h.l.Warn(ctx, "ride lookup refused", "err", err.Error())
		errorResponse(w, code, types.ErrRideNotFound.Error())
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"ride": dto.ToRideView(ride)}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write JSON response", err)
		internalErrorResponse(w, "failed to write JSON response")
	}
}

// Cancel godoc
// @Summary      Cancel a ride
// @Description  Rider withdraws a ride before a driver is assigned
// @Tags         Rides
// @Produce      json
// @Param        ride_id path string true "ride id"
// @Success      200  {object}  dto.RideView
// @Router       /rides/{ride_id}/cancel [post]
func (h *Ride) Cancel(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "cancel_ride")

	rideID, err := uuid.Parse(r.PathValue("ride_id"))
	if err != nil {
		badRequestResponse(w, "invalid ride uuid format")
		return
	}
	ctx = wrap.WithRideID(ctx, rideID.String())

	rider := models.ParticipantFromContext(ctx)

	ride, err := h.rides.Cancel(ctx, rideID, rider.ID)
	if err != nil {
		h.l.Warn(ctx, "ride cancel refused", "err", err.Error())
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	h.l.Info(ctx, "ride cancelled by rider")

	if err := writeJSON(w, http.StatusOK, envelope{"ride": dto.ToRideView(ride)}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write JSON response", err)
		internalErrorResponse(w, "failed to write JSON response")
	}
}

// Respond godoc
// @Summary      Answer a ride offer
// @Description  Driver accepts or rejects an offered ride; losing a race is a normal outcome
// @Tags         Rides
// @Accept       json
// @Produce      json
// @Param        ride_id path string true "ride id"
// @Param        request body dto.RespondRequest true "driver decision"
// @Success      200  {object}  map[string]string
// @Router       /rides/{ride_id}/respond [post]
func (h *Ride) Respond(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "respond_to_offer")

	rideID, err := uuid.Parse(r.PathValue("ride_id"))
	if err != nil {
		badRequestResponse(w, "invalid ride uuid format")
		return
	}
	ctx = wrap.WithRideID(ctx, rideID.String())

	driver := models.ParticipantFromContext(ctx)

	req := &dto.RespondRequest{}
	if err := readJSON(w, r, req); err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	req.Validate(v)
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	outcome, ride, err := h.dispatch.Respond(ctx, rideID, driver.ID, driver.Name, *req.Accept)
	if err != nil {
		h.l.Warn(ctx, "offer response refused", "err", err.Error())
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{
		"ride_id": rideID,
		"outcome": outcome.String(),
		"status":  ride.Status.String(),
	}

	// losing the race is a conflict on the wire, not a success
	code := http.StatusOK
	if outcome == types.OutcomeTooLate || outcome == types.OutcomeStale {
		code = http.StatusConflict
	}

	if err := writeJSON(w, code, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write JSON response", err)
		internalErrorResponse(w, "failed to write JSON response")
	}
}
