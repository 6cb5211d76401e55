package handler

import (
	"context"
	"net/http"

	"github.com/yerzhank/ride-dispatch/internal/adapter/http/handler/dto"
	"github.com/yerzhank/ride-dispatch/internal/domain/models"
	"github.com/yerzhank/ride-dispatch/internal/domain/types"
	"github.com/yerzhank/ride-dispatch/internal/ledger"
	"github.com/yerzhank/ride-dispatch/internal/service/auth"
	"github.com/yerzhank/ride-dispatch/pkg/logger"
	wrap "github.com/yerzhank/ride-dispatch/pkg/logger/wrapper"
	"github.com/yerzhank/ride-dispatch/pkg/validator"
)

type AuthService interface {
	Issue(ctx context.Context, provisionSecret, name string, role types.ParticipantRole, vehicleType types.VehicleType) (*models.Participant, string, error)
	Validate(ctx context.Context, token string) (*models.CustomClaims, error)
}

type Auth struct {
	auth   AuthService
	ledger *ledger.Ledger
	l      logger.Logger
}

func NewAuth(service AuthService, l *ledger.Ledger, log logger.Logger) *Auth {
	return &Auth{
		auth:   service,
		ledger: l,
		l:      log,
	}
}

// IssueToken godoc
// @Summary      Provision a participant token
// @Description  Mints a bearer token for a rider or driver; guarded by the shared provisioning secret
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body dto.IssueTokenRequest true "participant details"
// @Success      201  {object}  map[string]string
// @Router       /auth/token [post]
func (h *Auth) IssueToken(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "issue_token")

	req := &dto.IssueTokenRequest{}
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

	participant, token, err := h.auth.Issue(ctx, req.ProvisionSecret, req.Name,
		types.ParticipantRole(req.Role), types.VehicleType(req.VehicleType))
	if err != nil {
		h.l.Warn(ctx, "token issue refused", "err", err.Error())
		errorResponse(w, authErrCode(err), err.Error())
		return
	}

	response := envelope{
		"participant": participant,
		"token":       token,
	}

	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write JSON response", err)
		internalErrorResponse(w, "failed to write JSON response")
	}
}

// Profile godoc
// @Summary      Participant profile
// @Description  Returns the authenticated participant and their active ride, if any
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /profile [get]
func (h *Auth) Profile(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_profile")

	participant := models.ParticipantFromContext(ctx)
	if participant == nil {
		errorResponse(w, http.StatusUnauthorized, "authorization required")
		return
	}

	response := envelope{"participant": participant}
	if active, ok := h.ledger.ActiveFor(participant.ID); ok {
		response["active_ride"] = dto.ToRideView(active)
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(ctx, "failed to write JSON response", err)
		internalErrorResponse(w, "failed to write JSON response")
	}
}

func authErrCode(err error) int {
	switch {
	case IsOneOf(err, auth.ErrBadProvisionSecret, auth.ErrInvalidToken, auth.ErrExpToken):
		return http.StatusUnauthorized
	case IsOneOf(err, auth.ErrUnknownRole, auth.ErrDriverNeedsVehicle, auth.ErrVehicleWithoutDriver):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
