package ledger

import (
	"sync"
	"time"

	"github.com/yerzhank/ride-dispatch/internal/domain/models"
	"github.com/yerzhank/ride-dispatch/internal/domain/types"
	"github.com/yerzhank/ride-dispatch/pkg/uuid"
)

// NotifyIntent is a notification decided under the ledger lock and
// delivered by the caller after the lock is released. The ledger never
// performs network I/O itself.
type NotifyIntent struct {
	To         uuid.UUID
	RideID     uuid.UUID
	Status     types.RideStatus
	DriverID   string
	DriverName string
}

// Result reports the effect of one ledger operation. Offers is a
// snapshot taken when the operation closed the ride, for archival.
type Result struct {
	Outcome types.ResponseOutcome
	Changed bool
	Ride    models.Ride
	Offers  []models.Offer
	Notify  []NotifyIntent
}

type entry struct {
	ride   models.Ride
	offers map[uuid.UUID]*models.Offer

	// participants that already received their one outcome notification
	notified map[uuid.UUID]struct{}
}

// Ledger is the authoritative store of rides and offers. A single
// mutex serializes every state change, which makes each ride's
// transitions and arbitration totally ordered.
type Ledger struct {
	mu       sync.Mutex
	rides    map[uuid.UUID]*entry
	byDriver map[uuid.UUID]map[uuid.UUID]struct{} // driver -> rides with a pending offer
}

func New() *Ledger {
	return &Ledger{
		rides:    make(map[uuid.UUID]*entry),
		byDriver: make(map[uuid.UUID]map[uuid.UUID]struct{}),
	}
}

// Create stores a new ride in REQUESTED state.
func (l *Ledger) Create(ride models.Ride) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if ride.CreatedAt.IsZero() {
		ride.CreatedAt = time.Now()
	}
	ride.Status = types.StatusRequested

	l.rides[ride.ID] = &entry{
		ride:     ride,
		offers:   make(map[uuid.UUID]*models.Offer),
		notified: make(map[uuid.UUID]struct{}),
	}
}

// Get returns a copy of the ride.
func (l *Ledger) Get(id uuid.UUID) (models.Ride, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.rides[id]
	if !ok {
		return models.Ride{}, types.ErrRideNotFound
	}
	return e.ride, nil
}

// OpenOffers moves the ride from REQUESTED to OFFERED and records one
// pending offer per candidate driver. Fails with ErrRideConflict when
// the ride left REQUESTED in the meantime (e.g. cancelled mid fan-out).
func (l *Ledger) OpenOffers(rideID uuid.UUID, offers []models.Offer) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.rides[rideID]
	if !ok {
		return types.ErrRideNotFound
	}
	if e.ride.Status != types.StatusRequested || len(offers) == 0 {
		return types.ErrRideConflict
	}

	now := time.Now()
	e.ride.Status = types.StatusOffered
	e.ride.OfferedAt = &now

	for i := range offers {
		o := offers[i]
		o.RideID = rideID
		o.State = models.OfferPending
		if o.SentAt.IsZero() {
			o.SentAt = now
		}
		e.offers[o.DriverID] = &o
		l.indexOffer(o.DriverID, rideID)
	}

	return nil
}

// Accept arbitrates one driver's accept. The first accept on an
// OFFERED ride wins; an accept on an ASSIGNED ride is too late; any
// other state is stale. Notifications for the rider and the losing
// pending drivers are returned as intents.
func (l *Ledger) Accept(rideID, driverID uuid.UUID, driverName string) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.rides[rideID]
	if !ok {
		return Result{}, types.ErrRideNotFound
	}

	switch e.ride.Status {
	case types.StatusOffered:
		offer, ok := e.offers[driverID]
		if !ok || offer.State != models.OfferPending {
			return Result{}, types.ErrNoPendingOffer
		}

		now := time.Now()
		offer.State = models.OfferAccepted
		offer.RespondedAt = &now

		id := driverID
		e.ride.Status = types.StatusAssigned
		e.ride.DriverID = &id
		e.ride.DriverName = driverName
		e.ride.AssignedAt = &now
		e.ride.ClosedAt = &now

		res := Result{Outcome: types.OutcomeWon, Changed: true, Ride: e.ride}
		res.Notify = l.closeOffersLocked(e, now, driverID)
		res.Notify = append(res.Notify, l.riderIntentLocked(e, true)...)
		res.Offers = offersSnapshotLocked(e)
		return res, nil

	case types.StatusAssigned:
		return Result{Outcome: types.OutcomeTooLate, Ride: e.ride}, nil

	default:
		// REQUESTED, CANCELLED or UNMATCHED
		return Result{Outcome: types.OutcomeStale, Ride: e.ride}, nil
	}
}

// Reject records one driver's reject. When the last pending offer is
// rejected the ride closes as UNMATCHED without waiting for the deadline.
func (l *Ledger) Reject(rideID, driverID uuid.UUID) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.rides[rideID]
	if !ok {
		return Result{}, types.ErrRideNotFound
	}

	if e.ride.Status.IsTerminal() {
		// the offer was invalidated when the ride closed
		return Result{Outcome: types.OutcomeStale, Ride: e.ride}, nil
	}

	res := Result{Outcome: types.OutcomeAcknowledged, Ride: e.ride}

	offer, ok := e.offers[driverID]
	if !ok || offer.State != models.OfferPending {
		return res, nil
	}

	now := time.Now()
	offer.State = models.OfferRejected
	offer.RespondedAt = &now
	l.unindexOffer(driverID, rideID)

	if l.pendingCountLocked(e) == 0 && e.ride.Status == types.StatusOffered {
		e.ride.Status = types.StatusUnmatched
		e.ride.ClosedAt = &now
		res.Changed = true
		res.Notify = l.riderIntentLocked(e, false)
		res.Offers = offersSnapshotLocked(e)
	}

	res.Ride = e.ride
	return res, nil
}

// Cancel closes the ride on the rider's behalf. Only the requesting
// rider may cancel, and only before the ride reaches a terminal state.
func (l *Ledger) Cancel(rideID, riderID uuid.UUID) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.rides[rideID]
	if !ok {
		return Result{}, types.ErrRideNotFound
	}
	if e.ride.RiderID != riderID {
		return Result{}, types.ErrNotRideOwner
	}
	if e.ride.Status.IsTerminal() {
		return Result{}, types.ErrRideTerminal
	}

	now := time.Now()
	e.ride.Status = types.StatusCancelled
	e.ride.ClosedAt = &now

	res := Result{Changed: true, Ride: e.ride}
	res.Notify = l.closeOffersLocked(e, now, uuid.Nil)
	res.Offers = offersSnapshotLocked(e)
	return res, nil
}

// Expire closes an OFFERED ride as UNMATCHED when the offer deadline
// fires. Only the first of {deadline, early-unmatch, other close} takes
// effect; any later call observes the race as ErrRideConflict.
func (l *Ledger) Expire(rideID uuid.UUID) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.rides[rideID]
	if !ok {
		// ride already evicted, nothing to do
		return Result{}, nil
	}
	if e.ride.Status != types.StatusOffered {
		return Result{Ride: e.ride}, types.ErrRideConflict
	}

	now := time.Now()
	e.ride.Status = types.StatusUnmatched
	e.ride.ClosedAt = &now

	res := Result{Changed: true, Ride: e.ride}
	res.Notify = l.closeOffersLocked(e, now, uuid.Nil)
	res.Notify = append(res.Notify, l.riderIntentLocked(e, false)...)
	res.Offers = offersSnapshotLocked(e)
	return res, nil
}

// Unmatch closes a REQUESTED ride that produced no candidates.
func (l *Ledger) Unmatch(rideID uuid.UUID) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.rides[rideID]
	if !ok {
		return Result{}, types.ErrRideNotFound
	}
	if e.ride.Status != types.StatusRequested {
		return Result{Ride: e.ride}, nil
	}

	now := time.Now()
	e.ride.Status = types.StatusUnmatched
	e.ride.ClosedAt = &now

	res := Result{Changed: true, Ride: e.ride}
	res.Notify = l.riderIntentLocked(e, false)
	return res, nil
}

// DriverGone treats a dropped driver session as a reject of every
// pending offer that driver holds.
func (l *Ledger) DriverGone(driverID uuid.UUID) []Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	rideIDs := make([]uuid.UUID, 0, len(l.byDriver[driverID]))
	for rideID := range l.byDriver[driverID] {
		rideIDs = append(rideIDs, rideID)
	}

	var results []Result
	for _, rideID := range rideIDs {
		e, ok := l.rides[rideID]
		if !ok {
			continue
		}
		offer, ok := e.offers[driverID]
		if !ok || offer.State != models.OfferPending || e.ride.Status.IsTerminal() {
			continue
		}

		now := time.Now()
		offer.State = models.OfferRejected
		offer.RespondedAt = &now
		l.unindexOffer(driverID, rideID)

		res := Result{Outcome: types.OutcomeAcknowledged, Ride: e.ride}
		if l.pendingCountLocked(e) == 0 && e.ride.Status == types.StatusOffered {
			e.ride.Status = types.StatusUnmatched
			e.ride.ClosedAt = &now
			res.Changed = true
			res.Notify = l.riderIntentLocked(e, false)
			res.Offers = offersSnapshotLocked(e)
			res.Ride = e.ride
		}
		results = append(results, res)
	}
	return results
}

// HasPendingOffer reports whether the driver currently holds a pending
// offer on any ride. Fan-out skips such drivers: one offer at a time.
func (l *Ledger) HasPendingOffer(driverID uuid.UUID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byDriver[driverID]) > 0
}

// ActiveFor returns the participant's current non-terminal ride:
// for a rider the ride they requested, for a driver a ride holding
// their pending offer.
func (l *Ledger) ActiveFor(participantID uuid.UUID) (models.Ride, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for rideID := range l.byDriver[participantID] {
		if e, ok := l.rides[rideID]; ok {
			return e.ride, true
		}
	}
	for _, e := range l.rides {
		if e.ride.RiderID == participantID && !e.ride.Status.IsTerminal() {
			return e.ride, true
		}
	}
	return models.Ride{}, false
}

// ActiveCount returns the number of rides in a non-terminal state.
func (l *Ledger) ActiveCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for _, e := range l.rides {
		if !e.ride.Status.IsTerminal() {
			n++
		}
	}
	return n
}

// EvictTerminal drops terminal rides that closed before the retention
// window and returns how many were removed.
func (l *Ledger) EvictTerminal(olderThan time.Duration) int {
	cutoff := time.Now().Add(-olderThan)

	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for id, e := range l.rides {
		if e.ride.Status.IsTerminal() && e.ride.ClosedAt != nil && e.ride.ClosedAt.Before(cutoff) {
			for driverID, offer := range e.offers {
				if offer.State == models.OfferPending {
					l.unindexOffer(driverID, id)
				}
			}
			delete(l.rides, id)
			n++
		}
	}
	return n
}

/* ======================= locked helpers ======================= */

// closeOffersLocked expires every pending offer except the winner's
// and returns intents for the affected drivers, without driver details.
func (l *Ledger) closeOffersLocked(e *entry, now time.Time, winner uuid.UUID) []NotifyIntent {
	var intents []NotifyIntent
	for driverID, offer := range e.offers {
		if driverID == winner || offer.State != models.OfferPending {
			continue
		}
		offer.State = models.OfferExpired
		offer.RespondedAt = &now
		l.unindexOffer(driverID, e.ride.ID)

		if _, done := e.notified[driverID]; done {
			continue
		}
		e.notified[driverID] = struct{}{}
		intents = append(intents, NotifyIntent{
			To:     driverID,
			RideID: e.ride.ID,
			Status: e.ride.Status,
		})
	}
	if winner != uuid.Nil {
		l.unindexOffer(winner, e.ride.ID)
	}
	return intents
}

// riderIntentLocked builds the rider's single outcome notification,
// with driver details when the ride was assigned.
func (l *Ledger) riderIntentLocked(e *entry, withDriver bool) []NotifyIntent {
	if _, done := e.notified[e.ride.RiderID]; done {
		return nil
	}
	e.notified[e.ride.RiderID] = struct{}{}

	intent := NotifyIntent{
		To:     e.ride.RiderID,
		RideID: e.ride.ID,
		Status: e.ride.Status,
	}
	if withDriver && e.ride.DriverID != nil {
		intent.DriverID = e.ride.DriverID.String()
		intent.DriverName = e.ride.DriverName
	}
	return []NotifyIntent{intent}
}

func offersSnapshotLocked(e *entry) []models.Offer {
	offers := make([]models.Offer, 0, len(e.offers))
	for _, o := range e.offers {
		offers = append(offers, *o)
	}
	return offers
}

func (l *Ledger) pendingCountLocked(e *entry) int {
	n := 0
	for _, offer := range e.offers {
		if offer.State == models.OfferPending {
			n++
		}
	}
	return n
}

func (l *Ledger) indexOffer(driverID, rideID uuid.UUID) {
	rides, ok := l.byDriver[driverID]
	if !ok {
		rides = make(map[uuid.UUID]struct{})
		l.byDriver[driverID] = rides
	}
	rides[rideID] = struct{}{}
}

func (l *Ledger) unindexOffer(driverID, rideID uuid.UUID) {
	if rides, ok := l.byDriver[driverID]; ok {
		delete(rides, rideID)
		if len(rides) == 0 {
			delete(l.byDriver, driverID)
		}
	}
}
