package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yerzhank/ride-dispatch/internal/domain/models"
	"github.com/yerzhank/ride-dispatch/internal/domain/types"
	wrap "github.com/yerzhank/ride-dispatch/pkg/logger/wrapper"
	"github.com/yerzhank/ride-dispatch/pkg/metrics"
	pg "github.com/yerzhank/ride-dispatch/pkg/postgres"
	"github.com/yerzhank/ride-dispatch/pkg/trm"
	"github.com/yerzhank/ride-dispatch/pkg/uuid"
)

// ArchiveRepo persists terminal rides together with their offer history.
// The in-memory ledger stays authoritative for active rides. Rows land
// here only after a ride reaches a terminal status.
type ArchiveRepo struct {
	db  *pgxpool.Pool
	trm trm.TxManager
}

func NewArchiveRepo(db *pgxpool.Pool, trManager trm.TxManager) *ArchiveRepo {
	return &ArchiveRepo{db: db, trm: trManager}
}

const serviceName = "dispatch"

// errAlreadyArchived aborts the transaction when the ride row exists.
// A unique violation poisons the transaction, so the duplicate cannot
// be swallowed inside the callback.
var errAlreadyArchived = errors.New("ride already archived")

const schema = `
CREATE TABLE IF NOT EXISTS rides (
    id              UUID PRIMARY KEY,
    rider_id        UUID NOT NULL,
    status          TEXT NOT NULL,
    vehicle_type    TEXT NOT NULL,
    pickup_lat      DOUBLE PRECISION NOT NULL,
    pickup_lng      DOUBLE PRECISION NOT NULL,
    dest_lat        DOUBLE PRECISION NOT NULL,
    dest_lng        DOUBLE PRECISION NOT NULL,
    distance_km     DOUBLE PRECISION NOT NULL,
    duration_min    DOUBLE PRECISION NOT NULL,
    fare            DOUBLE PRECISION NOT NULL,
    surge           DOUBLE PRECISION NOT NULL,
    driver_id       UUID,
    driver_name     TEXT NOT NULL DEFAULT '',
    created_at      TIMESTAMPTZ NOT NULL,
    offered_at      TIMESTAMPTZ,
    assigned_at     TIMESTAMPTZ,
    closed_at       TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS ride_offers (
    ride_id               UUID NOT NULL REFERENCES rides(id),
    driver_id             UUID NOT NULL,
    state                 TEXT NOT NULL,
    distance_to_pickup_km DOUBLE PRECISION NOT NULL,
    sent_at               TIMESTAMPTZ NOT NULL,
    responded_at          TIMESTAMPTZ,
    PRIMARY KEY (ride_id, driver_id)
);

CREATE INDEX IF NOT EXISTS idx_rides_rider_id ON rides (rider_id);
CREATE INDEX IF NOT EXISTS idx_rides_closed_at ON rides (closed_at);`

// EnsureSchema creates the archive tables if they are missing.
// Called once at startup so the archive works against an empty database.
func (r *ArchiveRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("archive repo: EnsureSchema: %w", err)
	}
	return nil
}

// Archive writes a terminal ride and its offers in one transaction.
// Re-archiving the same ride is a no-op.
func (r *ArchiveRepo) Archive(ctx context.Context, ride models.Ride, offers []models.Offer) error {
	start := time.Now()
	err := r.trm.Do(ctx, func(ctx context.Context) error {
		q := TxorDB(ctx, r.db)

		rideQuery := `
		INSERT INTO rides (id, rider_id, status, vehicle_type,
		                   pickup_lat, pickup_lng, dest_lat, dest_lng,
		                   distance_km, duration_min, fare, surge,
		                   driver_id, driver_name,
		                   created_at, offered_at, assigned_at, closed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);`

		_, err := q.Exec(ctx, rideQuery,
			ride.ID, ride.RiderID, ride.Status, ride.VehicleType,
			ride.Pickup.Latitude, ride.Pickup.Longitude,
			ride.Destination.Latitude, ride.Destination.Longitude,
			ride.DistanceKm, ride.DurationMin, ride.Fare, ride.Surge,
			ride.DriverID, ride.DriverName,
			ride.CreatedAt, ride.OfferedAt, ride.AssignedAt, ride.ClosedAt,
		)
		if err != nil {
			if pg.IsUniqueViolation(err) {
				return errAlreadyArchived
			}
			return wrap.Error(wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed),
				fmt.Errorf("archive repo: Archive (ride): %w", err))
		}

		offerQuery := `
		INSERT INTO ride_offers (ride_id, driver_id, state, distance_to_pickup_km, sent_at, responded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (ride_id, driver_id) DO NOTHING;`

		for _, offer := range offers {
			_, err := q.Exec(ctx, offerQuery,
				offer.RideID, offer.DriverID, offer.State,
				offer.DistanceToPickupKm, offer.SentAt, offer.RespondedAt,
			)
			if err != nil {
				return wrap.Error(wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed),
					fmt.Errorf("archive repo: Archive (offer): %w", err))
			}
		}

		return nil
	})
	if errors.Is(err, errAlreadyArchived) {
		// Offers are immutable once terminal, nothing left to write.
		err = nil
	}

	metrics.RecordDatabaseQuery(serviceName, "archive_ride", err, time.Since(start))
	return err
}

// Get returns an archived ride. Used as a fallback when the ledger
// has already evicted the terminal record.
func (r *ArchiveRepo) Get(ctx context.Context, rideID uuid.UUID) (models.Ride, error) {
	q := TxorDB(ctx, r.db)

	query := `
	SELECT id, rider_id, status, vehicle_type,
	       pickup_lat, pickup_lng, dest_lat, dest_lng,
	       distance_km, duration_min, fare, surge,
	       driver_id, driver_name,
	       created_at, offered_at, assigned_at, closed_at
	FROM rides
	WHERE id = $1;`

	start := time.Now()

	var ride models.Ride
	err := q.QueryRow(ctx, query, rideID).Scan(
		&ride.ID, &ride.RiderID, &ride.Status, &ride.VehicleType,
		&ride.Pickup.Latitude, &ride.Pickup.Longitude,
		&ride.Destination.Latitude, &ride.Destination.Longitude,
		&ride.DistanceKm, &ride.DurationMin, &ride.Fare, &ride.Surge,
		&ride.DriverID, &ride.DriverName,
		&ride.CreatedAt, &ride.OfferedAt, &ride.AssignedAt, &ride.ClosedAt,
	)
	metrics.RecordDatabaseQuery(serviceName, "get_archived_ride", err, time.Since(start))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Ride{}, types.ErrRideNotFound
		}
		return models.Ride{}, fmt.Errorf("archive repo: Get: %w", err)
	}

	return ride, nil
}
