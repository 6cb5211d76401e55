package dispatch

import (
	"context"
	"time"

	"github.com/yerzhank/ride-dispatch/internal/domain/models"
	"github.com/yerzhank/ride-dispatch/pkg/uuid"
	ws "github.com/yerzhank/ride-dispatch/pkg/wsHub"
)

// SessionRegistry is the view of the connection hub the dispatcher needs.
type SessionRegistry interface {
	Drivers() []*ws.Session
	SendTo(id uuid.UUID, msg any) error
	Stale(olderThan time.Duration) []*ws.Session
	Delete(id uuid.UUID) error
	PingAll()
	Len() int
}

// EventPublisher pushes lifecycle events to the message broker.
type EventPublisher interface {
	PublishRideStatus(ctx context.Context, msg models.RideStatusMessage) error
}

// Archiver persists closed rides outside the in-memory ledger.
type Archiver interface {
	Archive(ctx context.Context, ride models.Ride, offers []models.Offer) error
}
