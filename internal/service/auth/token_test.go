package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yerzhank/ride-dispatch/internal/domain/types"
	"github.com/yerzhank/ride-dispatch/pkg/logger"
)

func newTestService(ttl time.Duration) *TokenService {
	log := logger.InitLogger("test", logger.LevelError)
	return NewTokenService("test-secret", "prov-secret", ttl, log)
}

func TestIssueAndValidate(t *testing.T) {
	s := newTestService(time.Hour)
	ctx := context.Background()

	participant, token, err := s.Issue(ctx, "prov-secret", "Dastan", types.DriverRole, types.Car)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}

	claims, err := s.Validate(ctx, token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.ID != participant.ID {
		t.Fatalf("claims ID = %s, want %s", claims.ID, participant.ID)
	}
	if claims.Role != types.DriverRole.String() {
		t.Fatalf("claims role = %s, want DRIVER", claims.Role)
	}
	if claims.VehicleType != types.Car.String() {
		t.Fatalf("claims vehicle = %s, want car", claims.VehicleType)
	}
}

func TestIssue_BadProvisionSecret(t *testing.T) {
	s := newTestService(time.Hour)

	if _, _, err := s.Issue(context.Background(), "wrong", "Aida", types.RiderRole, ""); !errors.Is(err, ErrBadProvisionSecret) {
		t.Fatalf("err = %v, want ErrBadProvisionSecret", err)
	}
}

func TestIssue_RoleVehicleRules(t *testing.T) {
	s := newTestService(time.Hour)
	ctx := context.Background()

	if _, _, err := s.Issue(ctx, "prov-secret", "Aida", types.RiderRole, types.Car); !errors.Is(err, ErrVehicleWithoutDriver) {
		t.Fatalf("rider with vehicle: err = %v, want ErrVehicleWithoutDriver", err)
	}
	if _, _, err := s.Issue(ctx, "prov-secret", "Dastan", types.DriverRole, ""); !errors.Is(err, ErrDriverNeedsVehicle) {
		t.Fatalf("driver without vehicle: err = %v, want ErrDriverNeedsVehicle", err)
	}
	if _, _, err := s.Issue(ctx, "prov-secret", "X", types.ParticipantRole("ADMIN"), ""); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("unknown role: err = %v, want ErrUnknownRole", err)
	}
}

func TestValidate_Garbage(t *testing.T) {
	s := newTestService(time.Hour)

	if _, err := s.Validate(context.Background(), "not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestValidate_Expired(t *testing.T) {
	s := newTestService(-time.Minute)

	_, token, err := s.Issue(context.Background(), "prov-secret", "Aida", types.RiderRole, "")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	_, err = s.Validate(context.Background(), token)
	if err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	s := newTestService(time.Hour)
	other := NewTokenService("other-secret", "prov-secret", time.Hour, logger.InitLogger("test", logger.LevelError))

	_, token, err := other.Issue(context.Background(), "prov-secret", "Aida", types.RiderRole, "")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := s.Validate(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}
