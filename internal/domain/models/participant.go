package models

import (
	"context"

	"github.com/yerzhank/ride-dispatch/internal/domain/types"
	"github.com/yerzhank/ride-dispatch/pkg/uuid"
)

// Participant is a rider or driver known to the coordinator.
type Participant struct {
	ID          uuid.UUID             `json:"id"`
	Name        string                `json:"name"`
	Role        types.ParticipantRole `json:"role"`
	VehicleType types.VehicleType     `json:"vehicle_type,omitempty"`
}

func (p *Participant) IsDriver() bool {
	return p != nil && p.Role == types.DriverRole
}

type participantKey struct{}

// WithParticipant stores the authenticated participant in the context.
func WithParticipant(ctx context.Context, p *Participant) context.Context {
	return context.WithValue(ctx, participantKey{}, p)
}

// ParticipantFromContext returns the authenticated participant, or nil
// when the request was anonymous.
func ParticipantFromContext(ctx context.Context) *Participant {
	p, _ := ctx.Value(participantKey{}).(*Participant)
	return p
}
