package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/yerzhank/ride-dispatch/internal/domain/models"
	"github.com/yerzhank/ride-dispatch/internal/domain/types"
	wrap "github.com/yerzhank/ride-dispatch/pkg/logger/wrapper"
)

// Auth validates the bearer token and injects the participant into the
// context. Requests without a header pass through anonymously so public
// endpoints keep working; protected handlers are wrapped in RequireRoles.
func (h *Middleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		token, err := extractBearerToken(header)
		if err != nil {
			errorResponse(w, http.StatusUnauthorized, err.Error())
			return
		}

		claims, err := h.auth.Validate(ctx, token)
		if err != nil {
			h.log.Warn(ctx, "failed to authenticate participant", "err", err.Error())
			errorResponse(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		participant := &models.Participant{
			ID:          claims.ID,
			Name:        claims.Name,
			Role:        types.ParticipantRole(claims.Role),
			VehicleType: types.VehicleType(claims.VehicleType),
		}

		ctx = models.WithParticipant(ctx, participant)
		ctx = wrap.WithParticipantID(ctx, participant.ID.String())

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles allows only authenticated participants with one of the
// given roles. With no roles listed, any authenticated participant passes.
func (h *Middleware) RequireRoles(next http.HandlerFunc, allowedRoles ...types.ParticipantRole) http.Handler {
	allowed := make(map[types.ParticipantRole]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		participant := models.ParticipantFromContext(r.Context())
		if participant == nil {
			errorResponse(w, http.StatusUnauthorized, "authorization required")
			return
		}
		if len(allowed) > 0 {
			if _, ok := allowed[participant.Role]; !ok {
				errorResponse(w, http.StatusForbidden, "forbidden: insufficient role")
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func extractBearerToken(header string) (string, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", fmt.Errorf("invalid Authorization header format")
	}
	return parts[1], nil
}
