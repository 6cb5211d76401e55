package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/yerzhank/ride-dispatch/internal/domain/models"
	"github.com/yerzhank/ride-dispatch/internal/domain/types"
	"github.com/yerzhank/ride-dispatch/pkg/logger"
	wrap "github.com/yerzhank/ride-dispatch/pkg/logger/wrapper"
	"github.com/yerzhank/ride-dispatch/pkg/uuid"
	"github.com/golang-jwt/jwt/v5"
)

// TokenService issues and validates participant tokens. There is one
// token kind: it identifies a rider or a driver for both the HTTP API
// and the websocket upgrade.
type TokenService struct {
	secret          string
	provisionSecret string
	tokenTTL        time.Duration
	log             logger.Logger
}

func NewTokenService(secret, provisionSecret string, tokenTTL time.Duration, log logger.Logger) *TokenService {
	return &TokenService{
		secret:          secret,
		provisionSecret: provisionSecret,
		tokenTTL:        tokenTTL,
		log:             log,
	}
}

// Issue mints a token for a new participant. The caller proves it may
// provision participants by presenting the shared provisioning secret.
func (s *TokenService) Issue(ctx context.Context, provisionSecret, name string, role types.ParticipantRole, vehicleType types.VehicleType) (*models.Participant, string, error) {
	ctx = wrap.WithAction(ctx, "issue_token")

	if subtle.ConstantTimeCompare([]byte(provisionSecret), []byte(s.provisionSecret)) != 1 {
		return nil, "", wrap.Error(ctx, ErrBadProvisionSecret)
	}

	switch role {
	case types.RiderRole:
		if vehicleType != "" {
			return nil, "", wrap.Error(ctx, ErrVehicleWithoutDriver)
		}
	case types.DriverRole:
		if vehicleType == "" {
			return nil, "", wrap.Error(ctx, ErrDriverNeedsVehicle)
		}
	default:
		return nil, "", wrap.Error(ctx, ErrUnknownRole)
	}

	participant := &models.Participant{
		ID:          uuid.New(),
		Name:        name,
		Role:        role,
		VehicleType: vehicleType,
	}

	issuedAt := time.Now().UTC()
	claims := jwt.MapClaims{
		"ID":           participant.ID.String(),
		"name":         participant.Name,
		"role":         participant.Role.String(),
		"vehicle_type": participant.VehicleType.String(),
		"iat":          issuedAt.Unix(),
		"exp":          issuedAt.Add(s.tokenTTL).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secret))
	if err != nil {
		return nil, "", wrap.Error(ctx, fmt.Errorf("%w: %w", ErrTokenGenerateFail, err))
	}

	return participant, token, nil
}

// Validate parses the token string and returns the participant claims.
func (s *TokenService) Validate(ctx context.Context, token string) (*models.CustomClaims, error) {
	ctx = wrap.WithAction(ctx, "validate_token")

	parsedToken, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return []byte(s.secret), nil
	})
	if err != nil || !parsedToken.Valid {
		return nil, wrap.Error(ctx, ErrInvalidToken)
	}

	mc, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok {
		return nil, wrap.Error(ctx, ErrInvalidToken)
	}

	idStr, _ := mc["ID"].(string)
	if idStr == "" {
		return nil, wrap.Error(ctx, fmt.Errorf("invalid or missing 'ID' in token claims"))
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("invalid 'ID' in token claims"))
	}

	role, _ := mc["role"].(string)
	if role != types.RiderRole.String() && role != types.DriverRole.String() {
		return nil, wrap.Error(ctx, ErrUnknownRole)
	}

	name, _ := mc["name"].(string)
	vehicleType, _ := mc["vehicle_type"].(string)

	expFloat, ok := mc["exp"].(float64)
	if !ok {
		return nil, wrap.Error(ctx, fmt.Errorf("invalid or missing 'exp' in token claims"))
	}
	expTime := time.Unix(int64(expFloat), 0)
	if time.Now().UTC().After(expTime) {
		return nil, wrap.Error(ctx, ErrExpToken)
	}

	claims := &models.CustomClaims{
		ID:          id,
		Name:        name,
		Role:        role,
		VehicleType: vehicleType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expTime),
		},
	}

	return claims, nil
}
