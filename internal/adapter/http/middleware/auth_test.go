package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yerzhank/ride-dispatch/internal/domain/models"
	"github.com/yerzhank/ride-dispatch/internal/domain/types"
	"github.com/yerzhank/ride-dispatch/pkg/logger"
	"github.com/yerzhank/ride-dispatch/pkg/uuid"
)

type fakeValidator struct {
	claims *models.CustomClaims
	err    error
}

func (f *fakeValidator) Validate(ctx context.Context, token string) (*models.CustomClaims, error) {
	return f.claims, f.err
}

func newTestMiddleware(v TokenValidator) *Middleware {
	return NewMiddleware(v, logger.InitLogger("test", logger.LevelError))
}

func TestAuth_ValidTokenInjectsParticipant(t *testing.T) {
	id := uuid.New()
	m := newTestMiddleware(&fakeValidator{claims: &models.CustomClaims{
		ID:   id,
		Name: "Dana",
		Role: types.DriverRole.String(),
	}})

	var got *models.Participant
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = models.ParticipantFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	m.Auth(next).ServeHTTP(httptest.NewRecorder(), req)

	if got == nil || got.ID != id || got.Role != types.DriverRole {
		t.Fatalf("participant = %+v, want driver %s", got, id)
	}
}

func TestAuth_InvalidTokenIs401(t *testing.T) {
	m := newTestMiddleware(&fakeValidator{err: errors.New("bad token")})

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	rec := httptest.NewRecorder()
	m.Auth(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAuth_MalformedHeaderIs401(t *testing.T) {
	m := newTestMiddleware(&fakeValidator{})

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	m.Auth(http.NotFoundHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireRoles_AnonymousIs401(t *testing.T) {
	m := newTestMiddleware(&fakeValidator{})

	handler := m.RequireRoles(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}, types.RiderRole)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/rides/", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireRoles_WrongRoleIs403(t *testing.T) {
	m := newTestMiddleware(&fakeValidator{})

	handler := m.RequireRoles(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}, types.RiderRole)

	req := httptest.NewRequest(http.MethodPost, "/rides/", nil)
	driver := &models.Participant{ID: uuid.New(), Role: types.DriverRole}
	req = req.WithContext(models.WithParticipant(req.Context(), driver))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestRequireRoles_MatchingRolePasses(t *testing.T) {
	m := newTestMiddleware(&fakeValidator{})

	called := false
	handler := m.RequireRoles(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}, types.RiderRole)

	req := httptest.NewRequest(http.MethodPost, "/rides/", nil)
	rider := &models.Participant{ID: uuid.New(), Role: types.RiderRole}
	req = req.WithContext(models.WithParticipant(req.Context(), rider))

	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !called {
		t.Fatal("handler never ran for an authorized rider")
	}
}
