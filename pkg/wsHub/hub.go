package ws

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/yerzhank/ride-dispatch/internal/domain/types"
	"github.com/yerzhank/ride-dispatch/pkg/logger"
	wrap "github.com/yerzhank/ride-dispatch/pkg/logger/wrapper"
	"github.com/yerzhank/ride-dispatch/pkg/uuid"
)

var (
	ErrEmptyConn      = errors.New("connection is empty")
	ErrConnIsNotFound = errors.New("connection not found")
)

// Session is one participant's live websocket connection plus the
// dispatch metadata attached to it.
type Session struct {
	*Conn
	Role        types.ParticipantRole
	Name        string
	VehicleType types.VehicleType

	locMu  sync.Mutex
	lat    float64
	lng    float64
	hasLoc bool
}

func NewSession(conn *Conn, role types.ParticipantRole, name string, vehicleType types.VehicleType) *Session {
	return &Session{
		Conn:        conn,
		Role:        role,
		Name:        name,
		VehicleType: vehicleType,
	}
}

// SetLocation stores the driver's latest reported position.
func (s *Session) SetLocation(lat, lng float64) {
	s.locMu.Lock()
	s.lat, s.lng = lat, lng
	s.hasLoc = true
	s.locMu.Unlock()
}

// Location returns the last reported position. ok is false until the
// session has reported at least once.
func (s *Session) Location() (lat, lng float64, ok bool) {
	s.locMu.Lock()
	defer s.locMu.Unlock()
	return s.lat, s.lng, s.hasLoc
}

// ConnectionHub keeps every active websocket session keyed by participant.
type ConnectionHub struct {
	clients map[uuid.UUID]*Session
	l       logger.Logger
	mu      sync.Mutex
	wg      sync.WaitGroup
}

func NewConnHub(l logger.Logger) *ConnectionHub {
	return &ConnectionHub{
		clients: make(map[uuid.UUID]*Session),
		l:       l,
	}
}

// Add registers a new session. A previous session for the same
// participant is closed and replaced: the last connection wins.
func (h *ConnectionHub) Add(newSess *Session) error {
	if newSess == nil || newSess.Conn == nil {
		return ErrEmptyConn
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ctx := wrap.WithAction(context.Background(), types.ActionSessionRegistered)

	if existing, ok := h.clients[newSess.EntityID()]; ok {
		h.l.Warn(ctx,
			"replacing existing connection",
			"participant_id", existing.EntityID(),
		)
		if err := existing.Close(); err != nil {
			h.l.Warn(ctx,
				"failed to close existing conn",
				"participant_id", existing.EntityID(),
				"err", err.Error(),
			)
		}
	} else {
		h.wg.Add(1)
	}

	h.clients[newSess.EntityID()] = newSess

	return nil
}

// Delete removes and closes the session of the given participant.
func (h *ConnectionHub) Delete(entityID uuid.UUID) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	ctx := wrap.WithAction(context.Background(), types.ActionSessionRemoved)

	sess, ok := h.clients[entityID]
	if !ok {
		h.l.Warn(ctx,
			"delete called for unknown participant",
			"participant_id", entityID,
		)
		return ErrConnIsNotFound
	}

	if err := sess.Close(); err != nil {
		h.l.Warn(ctx,
			"failed to close conn",
			"participant_id", entityID,
			"err", err.Error(),
		)
	}

	delete(h.clients, entityID)
	h.wg.Done()

	return nil
}

// Remove deletes sess only while it is still the registered session
// for its participant. A session already replaced by a newer
// connection is left alone, so the replacement survives the old
// connection's cleanup. Reports whether sess was deregistered.
func (h *ConnectionHub) Remove(sess *Session) bool {
	if sess == nil || sess.Conn == nil {
		return false
	}

	h.mu.Lock()
	current, ok := h.clients[sess.EntityID()]
	if !ok || current != sess {
		h.mu.Unlock()
		return false
	}
	delete(h.clients, sess.EntityID())
	h.mu.Unlock()

	ctx := wrap.WithAction(context.Background(), types.ActionSessionRemoved)
	if err := sess.Close(); err != nil {
		h.l.Warn(ctx,
			"failed to close conn",
			"participant_id", sess.EntityID(),
			"err", err.Error(),
		)
	}
	h.wg.Done()

	return true
}

// SendTo delivers one message to the participant's session.
// Returns ErrConnIsNotFound when the participant has no live session.
func (h *ConnectionHub) SendTo(id uuid.UUID, msg any) error {
	h.mu.Lock()
	sess, ok := h.clients[id]
	h.mu.Unlock()

	if !ok {
		return ErrConnIsNotFound
	}
	return sess.Send(msg)
}

// Get returns the session of the given participant.
func (h *ConnectionHub) Get(id uuid.UUID) (*Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sess, ok := h.clients[id]
	if !ok {
		return nil, ErrConnIsNotFound
	}
	return sess, nil
}

// Drivers returns a snapshot of every connected driver session.
func (h *ConnectionHub) Drivers() []*Session {
	h.mu.Lock()
	defer h.mu.Unlock()

	drivers := make([]*Session, 0, len(h.clients))
	for _, sess := range h.clients {
		if sess.Role == types.DriverRole {
			drivers = append(drivers, sess)
		}
	}
	return drivers
}

// Stale returns sessions whose last inbound activity is older than cutoff.
func (h *ConnectionHub) Stale(olderThan time.Duration) []*Session {
	cutoff := time.Now().Add(-olderThan)

	h.mu.Lock()
	defer h.mu.Unlock()

	var stale []*Session
	for _, sess := range h.clients {
		if sess.LastSeen().Before(cutoff) {
			stale = append(stale, sess)
		}
	}
	return stale
}

// PingAll sends a control ping to every session. Clients that answer
// refresh their heartbeat through the pong handler; failures are left
// for the staleness sweep to collect.
func (h *ConnectionHub) PingAll() {
	h.mu.Lock()
	clients := make([]*Session, 0, len(h.clients))
	for _, sess := range h.clients {
		clients = append(clients, sess)
	}
	h.mu.Unlock()

	for _, sess := range clients {
		if err := sess.Ping(); err != nil {
			h.l.Debug(context.Background(), "ping failed",
				"entity_id", sess.EntityID().String(),
				"err", err.Error(),
			)
		}
	}
}

// Len returns the number of live sessions.
func (h *ConnectionHub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close closes every websocket session and waits for them to drain.
func (h *ConnectionHub) Close() {
	ctx := wrap.WithAction(context.Background(), "hub_close")

	// snapshot under lock, close outside of it
	h.mu.Lock()
	clients := make([]*Session, 0, len(h.clients))
	for _, sess := range h.clients {
		clients = append(clients, sess)
	}
	h.mu.Unlock()

	for _, sess := range clients {
		_ = h.Delete(sess.EntityID())
	}

	h.wg.Wait()

	h.l.Info(ctx, "all websocket connections closed gracefully")
}
